package m3g

import "fmt"

// TexCoordArray is one texture coordinate channel of a VertexBuffer.
type TexCoordArray struct {
	Array Ref
	Bias  [3]float32
	Scale float32
}

// VertexBuffer groups the vertex arrays that make up a set of vertices.
type VertexBuffer struct {
	Object3D
	DefaultColor  ColorRGBA
	Positions     Ref
	PositionBias  [3]float32
	PositionScale float32
	Normals       Ref
	Colors        Ref // null when there are no per-vertex colors
	TexCoords     []TexCoordArray
}

func (*VertexBuffer) Type() ObjectType { return TypeVertexBuffer }

// ColorArray returns the per-vertex color array. ok is false when the
// buffer has no per-vertex colors and DefaultColor applies.
func (v *VertexBuffer) ColorArray() (ref Ref, ok bool) {
	if v.Colors.IsNull() {
		return Ref{}, false
	}
	return v.Colors, true
}

// TexCoordArrayCount returns the number of texture coordinate channels.
func (v *VertexBuffer) TexCoordArrayCount() int {
	return len(v.TexCoords)
}

// TexCoordRefs returns the array reference of every channel.
func (v *VertexBuffer) TexCoordRefs() []Ref {
	out := make([]Ref, len(v.TexCoords))
	for i, tc := range v.TexCoords {
		out[i] = tc.Array
	}
	return out
}

// TexCoordBiases returns the bias of every channel.
func (v *VertexBuffer) TexCoordBiases() [][3]float32 {
	out := make([][3]float32, len(v.TexCoords))
	for i, tc := range v.TexCoords {
		out[i] = tc.Bias
	}
	return out
}

// TexCoordScales returns the scale of every channel.
func (v *VertexBuffer) TexCoordScales() []float32 {
	out := make([]float32, len(v.TexCoords))
	for i, tc := range v.TexCoords {
		out[i] = tc.Scale
	}
	return out
}

func (v *VertexBuffer) decode(r *reader) {
	v.readObject3D(r)

	v.DefaultColor = r.rgba()
	v.Positions = r.ref()
	v.PositionBias = r.vec3()
	v.PositionScale = r.f32()
	v.Normals = r.ref()
	v.Colors = r.ref()

	n := r.count(20)
	v.TexCoords = make([]TexCoordArray, n)
	for i := range v.TexCoords {
		tc := &v.TexCoords[i]
		tc.Array = r.ref()
		tc.Bias = r.vec3()
		tc.Scale = r.f32()
	}
}

func (v *VertexBuffer) encode(w *writer) {
	v.writeObject3D(w)

	w.rgba(v.DefaultColor)
	w.ref(v.Positions)
	w.vec3(v.PositionBias)
	w.f32(v.PositionScale)
	w.ref(v.Normals)
	w.ref(v.Colors)

	w.u32(uint32(len(v.TexCoords)))
	for _, tc := range v.TexCoords {
		w.ref(tc.Array)
		w.vec3(tc.Bias)
		w.f32(tc.Scale)
	}
}

func (v *VertexBuffer) refs() []*Ref {
	refs := []*Ref{&v.Positions, &v.Normals, &v.Colors}
	for i := range v.TexCoords {
		refs = append(refs, &v.TexCoords[i].Array)
	}
	return refs
}

// Vertex array encodings.
const (
	VertexEncodingRaw   uint8 = 0
	VertexEncodingDelta uint8 = 1
)

// VertexArray holds integer vertex attribute data. Components are stored
// delta-decoded, vertex by vertex.
type VertexArray struct {
	Object3D
	ComponentSize  uint8 // bytes per component, 1 or 2
	ComponentCount uint8 // 2 to 4
	Encoding       uint8
	Components     []int16
}

func (*VertexArray) Type() ObjectType { return TypeVertexArray }

// VertexCount returns the number of vertices.
func (a *VertexArray) VertexCount() int {
	if a.ComponentCount == 0 {
		return 0
	}
	return len(a.Components) / int(a.ComponentCount)
}

// Vertex returns the components of vertex i.
func (a *VertexArray) Vertex(i int) ([]int16, error) {
	if n := a.VertexCount(); i < 0 || i >= n {
		return nil, fmt.Errorf("%w: vertex %d of %d", ErrIndexOutOfRange, i, n)
	}
	cc := int(a.ComponentCount)
	return a.Components[i*cc : (i+1)*cc], nil
}

func (a *VertexArray) decode(r *reader) {
	a.readObject3D(r)

	a.ComponentSize = r.u8()
	a.ComponentCount = r.u8()
	a.Encoding = r.u8()
	vertexCount := int(r.u16())
	if r.err != nil {
		return
	}
	if a.ComponentSize != 1 && a.ComponentSize != 2 {
		r.fail(ErrInvalidValue, "vertex array component size %d", a.ComponentSize)
		return
	}
	if a.ComponentCount < 2 || a.ComponentCount > 4 {
		r.fail(ErrInvalidValue, "vertex array component count %d", a.ComponentCount)
		return
	}
	if a.Encoding != VertexEncodingRaw && a.Encoding != VertexEncodingDelta {
		r.fail(ErrInvalidValue, "vertex array encoding %d", a.Encoding)
		return
	}

	total := vertexCount * int(a.ComponentCount)
	if total*int(a.ComponentSize) > r.Remaining() {
		r.fail(ErrRecordLengthMismatch, "%d vertices need %d bytes, %d left",
			vertexCount, total*int(a.ComponentSize), r.Remaining())
		return
	}

	cc := int(a.ComponentCount)
	a.Components = make([]int16, total)
	for i := range a.Components {
		var v int16
		if a.ComponentSize == 1 {
			v = int16(int8(r.u8()))
		} else {
			v = int16(r.u16())
		}
		if a.Encoding == VertexEncodingDelta && i >= cc {
			v = a.wrap(a.Components[i-cc] + v)
		}
		a.Components[i] = v
	}
}

func (a *VertexArray) encode(w *writer) {
	a.writeObject3D(w)

	cc := int(a.ComponentCount)
	if cc < 2 || cc > 4 || len(a.Components)%cc != 0 {
		w.fail("vertex array has %d components for component count %d", len(a.Components), cc)
		return
	}
	if a.ComponentSize != 1 && a.ComponentSize != 2 {
		w.fail("vertex array component size %d", a.ComponentSize)
		return
	}
	if a.Encoding != VertexEncodingRaw && a.Encoding != VertexEncodingDelta {
		w.fail("vertex array encoding %d", a.Encoding)
		return
	}
	vertexCount := len(a.Components) / cc
	if vertexCount > 0xFFFF {
		w.fail("vertex array has %d vertices", vertexCount)
		return
	}

	w.u8(a.ComponentSize)
	w.u8(a.ComponentCount)
	w.u8(a.Encoding)
	w.u16(uint16(vertexCount))
	for i, v := range a.Components {
		if a.Encoding == VertexEncodingDelta && i >= cc {
			v = a.wrap(v - a.Components[i-cc])
		}
		if a.ComponentSize == 1 {
			w.u8(uint8(v))
		} else {
			w.u16(uint16(v))
		}
	}
}

// wrap truncates v to the component width so delta arithmetic wraps the
// same way on decode and encode.
func (a *VertexArray) wrap(v int16) int16 {
	if a.ComponentSize == 1 {
		return int16(int8(v))
	}
	return v
}

func (a *VertexArray) refs() []*Ref { return nil }

// Triangle strip index encodings. The low bits select the index width;
// the high bit selects explicit indices over an implicit start index.
const (
	StripImplicitUint32 uint8 = 0
	StripImplicitUint8  uint8 = 1
	StripImplicitUint16 uint8 = 2
	StripExplicitUint32 uint8 = 128
	StripExplicitUint8  uint8 = 129
	StripExplicitUint16 uint8 = 130
)

// TriangleStripArray is an index buffer made of triangle strips.
type TriangleStripArray struct {
	Object3D
	Encoding     uint8
	StartIndex   uint32   // implicit encodings only
	Indices      []uint32 // explicit encodings only
	StripLengths []uint32
}

func (*TriangleStripArray) Type() ObjectType { return TypeTriangleStripArray }

// Explicit reports whether the indices are stored rather than implied.
func (s *TriangleStripArray) Explicit() bool {
	return s.Encoding&0x80 != 0
}

// IndexCount returns the number of indices covered by the strips.
func (s *TriangleStripArray) IndexCount() int {
	n := 0
	for _, l := range s.StripLengths {
		n += int(l)
	}
	return n
}

func (s *TriangleStripArray) decode(r *reader) {
	s.readObject3D(r)

	s.Encoding = r.u8()
	switch s.Encoding {
	case StripImplicitUint32:
		s.StartIndex = r.u32()
	case StripImplicitUint8:
		s.StartIndex = uint32(r.u8())
	case StripImplicitUint16:
		s.StartIndex = uint32(r.u16())
	case StripExplicitUint32:
		n := r.count(4)
		s.Indices = make([]uint32, n)
		for i := range s.Indices {
			s.Indices[i] = r.u32()
		}
	case StripExplicitUint8:
		n := r.count(1)
		s.Indices = make([]uint32, n)
		for i := range s.Indices {
			s.Indices[i] = uint32(r.u8())
		}
	case StripExplicitUint16:
		n := r.count(2)
		s.Indices = make([]uint32, n)
		for i := range s.Indices {
			s.Indices[i] = uint32(r.u16())
		}
	default:
		r.fail(ErrInvalidValue, "triangle strip encoding %d", s.Encoding)
		return
	}

	n := r.count(4)
	s.StripLengths = make([]uint32, n)
	for i := range s.StripLengths {
		s.StripLengths[i] = r.u32()
	}
}

func (s *TriangleStripArray) encode(w *writer) {
	s.writeObject3D(w)

	w.u8(s.Encoding)
	switch s.Encoding {
	case StripImplicitUint32:
		w.u32(s.StartIndex)
	case StripImplicitUint8:
		w.index8("start index", s.StartIndex)
	case StripImplicitUint16:
		w.index16("start index", s.StartIndex)
	case StripExplicitUint32:
		w.u32(uint32(len(s.Indices)))
		for _, i := range s.Indices {
			w.u32(i)
		}
	case StripExplicitUint8:
		w.u32(uint32(len(s.Indices)))
		for _, i := range s.Indices {
			w.index8("strip index", i)
		}
	case StripExplicitUint16:
		w.u32(uint32(len(s.Indices)))
		for _, i := range s.Indices {
			w.index16("strip index", i)
		}
	default:
		w.fail("triangle strip encoding %d", s.Encoding)
		return
	}

	w.u32(uint32(len(s.StripLengths)))
	for _, l := range s.StripLengths {
		w.u32(l)
	}
}

func (s *TriangleStripArray) refs() []*Ref { return nil }
