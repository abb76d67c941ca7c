package m3g

import "github.com/chewxy/math32"

// UserParameter is an application-defined blob attached to an object.
type UserParameter struct {
	ID    uint32
	Value []byte
}

// Object3D holds the fields every Object3D-derived record starts with.
type Object3D struct {
	UserID uint32
	// AnimationTracks are raw table indices. They are kept opaque and are
	// not rewritten by the linker.
	AnimationTracks []uint32
	// UserParameters are kept in file order so the record re-encodes
	// byte for byte.
	UserParameters []UserParameter
}

// Param returns the value of the user parameter with the given id.
func (o *Object3D) Param(id uint32) ([]byte, bool) {
	for _, p := range o.UserParameters {
		if p.ID == id {
			return p.Value, true
		}
	}
	return nil, false
}

// Base returns the embedded Object3D fields.
func (o *Object3D) Base() *Object3D {
	return o
}

func (o *Object3D) readObject3D(r *reader) {
	o.UserID = r.u32()

	n := r.count(4)
	o.AnimationTracks = make([]uint32, n)
	for i := range o.AnimationTracks {
		o.AnimationTracks[i] = r.u32()
	}

	n = r.count(8)
	o.UserParameters = make([]UserParameter, n)
	for i := range o.UserParameters {
		o.UserParameters[i].ID = r.u32()
		o.UserParameters[i].Value = r.blob()
	}
}

func (o *Object3D) writeObject3D(w *writer) {
	w.u32(o.UserID)

	w.u32(uint32(len(o.AnimationTracks)))
	for _, t := range o.AnimationTracks {
		w.u32(t)
	}

	w.u32(uint32(len(o.UserParameters)))
	for _, p := range o.UserParameters {
		w.u32(p.ID)
		w.blob(p.Value)
	}
}

// ComponentTransform is translation, scale and an axis-angle orientation.
type ComponentTransform struct {
	Translation      [3]float32
	Scale            [3]float32
	OrientationAngle float32 // degrees
	OrientationAxis  [3]float32
}

// Transformable adds the optional component and general transforms.
// Both may be present at once; a nil pointer means the block is absent.
// With neither present the transform is the identity.
type Transformable struct {
	Object3D
	Component *ComponentTransform
	General   *Matrix
}

// HasIdentityTransform reports whether neither transform block is present.
func (t *Transformable) HasIdentityTransform() bool {
	return t.Component == nil && t.General == nil
}

func (t *Transformable) readTransformable(r *reader) {
	t.readObject3D(r)

	if r.boolean() {
		t.Component = &ComponentTransform{
			Translation:      r.vec3(),
			Scale:            r.vec3(),
			OrientationAngle: r.f32(),
			OrientationAxis:  r.vec3(),
		}
	}
	if r.boolean() {
		t.General = r.matrix()
	}
}

func (t *Transformable) writeTransformable(w *writer) {
	t.writeObject3D(w)

	w.boolean(t.Component != nil)
	if c := t.Component; c != nil {
		w.vec3(c.Translation)
		w.vec3(c.Scale)
		w.f32(c.OrientationAngle)
		w.vec3(c.OrientationAxis)
	}
	w.boolean(t.General != nil)
	if t.General != nil {
		w.matrix(t.General)
	}
}

// Alignment targets a node's Z and Y axes at other nodes. The target
// values are passed through as opaque enumerations.
type Alignment struct {
	ZTarget    uint8
	YTarget    uint8
	ZReference Ref
	YReference Ref
}

// Node holds the scene graph node fields.
type Node struct {
	Transformable
	RenderingEnabled bool
	PickingEnabled   bool
	AlphaFactor      float32 // in [0,1], stored as a byte
	Scope            uint32
	Alignment        *Alignment // nil when the block is absent
}

// AlphaToByte quantises an alpha factor to its on-disk byte. It is the
// exact inverse of byte/255 for all 256 byte values. NaN maps to 0.
func AlphaToByte(a float32) uint8 {
	if math32.IsNaN(a) {
		return 0
	}
	a = math32.Max(0, math32.Min(1, a))
	return uint8(math32.Floor(a*255 + 0.5))
}

// AlphaFromByte converts an on-disk alpha byte to a factor in [0,1].
func AlphaFromByte(b uint8) float32 {
	return float32(b) / 255.0
}

func (n *Node) readNode(r *reader) {
	n.readTransformable(r)

	n.RenderingEnabled = r.boolean()
	n.PickingEnabled = r.boolean()
	n.AlphaFactor = AlphaFromByte(r.u8())
	n.Scope = r.u32()
	if r.boolean() {
		n.Alignment = &Alignment{
			ZTarget:    r.u8(),
			YTarget:    r.u8(),
			ZReference: r.ref(),
			YReference: r.ref(),
		}
	}
}

func (n *Node) writeNode(w *writer) {
	n.writeTransformable(w)

	w.boolean(n.RenderingEnabled)
	w.boolean(n.PickingEnabled)
	w.u8(AlphaToByte(n.AlphaFactor))
	w.u32(n.Scope)
	w.boolean(n.Alignment != nil)
	if a := n.Alignment; a != nil {
		w.u8(a.ZTarget)
		w.u8(a.YTarget)
		w.ref(a.ZReference)
		w.ref(a.YReference)
	}
}

func (n *Node) nodeRefs() []*Ref {
	if n.Alignment == nil {
		return nil
	}
	return []*Ref{&n.Alignment.ZReference, &n.Alignment.YReference}
}
