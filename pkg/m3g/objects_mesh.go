package m3g

import "fmt"

// Submesh pairs an index buffer with the appearance used to draw it.
type Submesh struct {
	IndexBuffer Ref
	Appearance  Ref
}

// Mesh is a polygonal surface node.
type Mesh struct {
	Node
	VertexBuffer Ref
	Submeshes    []Submesh
}

func (*Mesh) Type() ObjectType { return TypeMesh }

// SubmeshCount returns the number of submeshes.
func (m *Mesh) SubmeshCount() int {
	return len(m.Submeshes)
}

// IndexBuffer returns the index buffer reference of submesh i.
func (m *Mesh) IndexBuffer(i int) (Ref, error) {
	if i < 0 || i >= len(m.Submeshes) {
		return Ref{}, fmt.Errorf("%w: submesh %d of %d", ErrIndexOutOfRange, i, len(m.Submeshes))
	}
	return m.Submeshes[i].IndexBuffer, nil
}

// Appearance returns the appearance reference of submesh i.
func (m *Mesh) Appearance(i int) (Ref, error) {
	if i < 0 || i >= len(m.Submeshes) {
		return Ref{}, fmt.Errorf("%w: submesh %d of %d", ErrIndexOutOfRange, i, len(m.Submeshes))
	}
	return m.Submeshes[i].Appearance, nil
}

func (m *Mesh) readMesh(r *reader) {
	m.readNode(r)

	m.VertexBuffer = r.ref()
	n := r.count(8)
	m.Submeshes = make([]Submesh, n)
	for i := range m.Submeshes {
		m.Submeshes[i].IndexBuffer = r.ref()
		m.Submeshes[i].Appearance = r.ref()
	}
}

func (m *Mesh) writeMesh(w *writer) {
	m.writeNode(w)

	w.ref(m.VertexBuffer)
	w.u32(uint32(len(m.Submeshes)))
	for _, s := range m.Submeshes {
		w.ref(s.IndexBuffer)
		w.ref(s.Appearance)
	}
}

func (m *Mesh) meshRefs() []*Ref {
	refs := append(m.nodeRefs(), &m.VertexBuffer)
	for i := range m.Submeshes {
		refs = append(refs, &m.Submeshes[i].IndexBuffer, &m.Submeshes[i].Appearance)
	}
	return refs
}

func (m *Mesh) decode(r *reader) { m.readMesh(r) }
func (m *Mesh) encode(w *writer) { m.writeMesh(w) }
func (m *Mesh) refs() []*Ref     { return m.meshRefs() }

// MorphTarget is a vertex buffer blended into a MorphingMesh.
type MorphTarget struct {
	Target        Ref
	InitialWeight float32
}

// MorphingMesh is a Mesh whose vertices are blended from morph targets.
type MorphingMesh struct {
	Mesh
	Targets []MorphTarget
}

func (*MorphingMesh) Type() ObjectType { return TypeMorphingMesh }

func (m *MorphingMesh) decode(r *reader) {
	m.readMesh(r)
	n := r.count(8)
	m.Targets = make([]MorphTarget, n)
	for i := range m.Targets {
		m.Targets[i].Target = r.ref()
		m.Targets[i].InitialWeight = r.f32()
	}
}

func (m *MorphingMesh) encode(w *writer) {
	m.writeMesh(w)
	w.u32(uint32(len(m.Targets)))
	for _, t := range m.Targets {
		w.ref(t.Target)
		w.f32(t.InitialWeight)
	}
}

func (m *MorphingMesh) refs() []*Ref {
	refs := m.meshRefs()
	for i := range m.Targets {
		refs = append(refs, &m.Targets[i].Target)
	}
	return refs
}

// BoneReference binds a range of vertices to a transform node.
type BoneReference struct {
	TransformNode Ref
	FirstVertex   uint32
	VertexCount   uint32
	Weight        int32
}

// SkinnedMesh is a Mesh deformed by a skeleton.
type SkinnedMesh struct {
	Mesh
	Skeleton Ref
	Bones    []BoneReference
}

func (*SkinnedMesh) Type() ObjectType { return TypeSkinnedMesh }

func (m *SkinnedMesh) decode(r *reader) {
	m.readMesh(r)
	m.Skeleton = r.ref()
	n := r.count(16)
	m.Bones = make([]BoneReference, n)
	for i := range m.Bones {
		b := &m.Bones[i]
		b.TransformNode = r.ref()
		b.FirstVertex = r.u32()
		b.VertexCount = r.u32()
		b.Weight = r.i32()
	}
}

func (m *SkinnedMesh) encode(w *writer) {
	m.writeMesh(w)
	w.ref(m.Skeleton)
	w.u32(uint32(len(m.Bones)))
	for _, b := range m.Bones {
		w.ref(b.TransformNode)
		w.u32(b.FirstVertex)
		w.u32(b.VertexCount)
		w.i32(b.Weight)
	}
}

func (m *SkinnedMesh) refs() []*Ref {
	refs := append(m.meshRefs(), &m.Skeleton)
	for i := range m.Bones {
		refs = append(refs, &m.Bones[i].TransformNode)
	}
	return refs
}
