// Package m3g decodes and encodes M3G (JSR-184) scene files.
package m3g

import "fmt"

// ObjectType is the type tag that starts every object record.
type ObjectType uint8

const (
	TypeHeader              ObjectType = 0
	TypeAnimationController ObjectType = 1
	TypeAnimationTrack      ObjectType = 2
	TypeAppearance          ObjectType = 3
	TypeBackground          ObjectType = 4
	TypeCamera              ObjectType = 5
	TypeCompositingMode     ObjectType = 6
	TypeFog                 ObjectType = 7
	TypePolygonMode         ObjectType = 8
	TypeGroup               ObjectType = 9
	TypeImage2D             ObjectType = 10
	TypeTriangleStripArray  ObjectType = 11
	TypeLight               ObjectType = 12
	TypeMaterial            ObjectType = 13
	TypeMesh                ObjectType = 14
	TypeMorphingMesh        ObjectType = 15
	TypeSkinnedMesh         ObjectType = 16
	TypeTexture2D           ObjectType = 17
	TypeSprite3D            ObjectType = 18
	TypeKeyframeSequence    ObjectType = 19
	TypeVertexArray         ObjectType = 20
	TypeVertexBuffer        ObjectType = 21
	TypeWorld               ObjectType = 22
	TypeExternalReference   ObjectType = 255
)

var typeNames = map[ObjectType]string{
	TypeHeader:              "Header",
	TypeAnimationController: "AnimationController",
	TypeAnimationTrack:      "AnimationTrack",
	TypeAppearance:          "Appearance",
	TypeBackground:          "Background",
	TypeCamera:              "Camera",
	TypeCompositingMode:     "CompositingMode",
	TypeFog:                 "Fog",
	TypePolygonMode:         "PolygonMode",
	TypeGroup:               "Group",
	TypeImage2D:             "Image2D",
	TypeTriangleStripArray:  "TriangleStripArray",
	TypeLight:               "Light",
	TypeMaterial:            "Material",
	TypeMesh:                "Mesh",
	TypeMorphingMesh:        "MorphingMesh",
	TypeSkinnedMesh:         "SkinnedMesh",
	TypeTexture2D:           "Texture2D",
	TypeSprite3D:            "Sprite3D",
	TypeKeyframeSequence:    "KeyframeSequence",
	TypeVertexArray:         "VertexArray",
	TypeVertexBuffer:        "VertexBuffer",
	TypeWorld:               "World",
	TypeExternalReference:   "ExternalReference",
}

// String returns the JSR-184 class name for the tag.
func (t ObjectType) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Unknown(%d)", uint8(t))
}

// Known reports whether the tag has a decoder.
func (t ObjectType) Known() bool {
	_, ok := registry[t]
	return ok
}

// ParseObjectType looks a type up by its class name.
func ParseObjectType(name string) (ObjectType, bool) {
	for t, n := range typeNames {
		if n == name {
			return t, true
		}
	}
	return 0, false
}

// Object is a decoded object record. The set of implementations is closed:
// one pointer type per ObjectType plus *Unknown for records that could not
// be decoded in lenient mode.
type Object interface {
	Type() ObjectType

	decode(r *reader)
	encode(w *writer)
	// refs returns pointers to every reference field, in byte order.
	refs() []*Ref
}

// registry maps each type tag to its decode function.
var registry = map[ObjectType]func(*reader) Object{
	TypeHeader:              decodeAs[Header],
	TypeAnimationController: decodeAs[AnimationController],
	TypeAnimationTrack:      decodeAs[AnimationTrack],
	TypeAppearance:          decodeAs[Appearance],
	TypeBackground:          decodeAs[Background],
	TypeCamera:              decodeAs[Camera],
	TypeCompositingMode:     decodeAs[CompositingMode],
	TypeFog:                 decodeAs[Fog],
	TypePolygonMode:         decodeAs[PolygonMode],
	TypeGroup:               decodeAs[Group],
	TypeImage2D:             decodeAs[Image2D],
	TypeTriangleStripArray:  decodeAs[TriangleStripArray],
	TypeLight:               decodeAs[Light],
	TypeMaterial:            decodeAs[Material],
	TypeMesh:                decodeAs[Mesh],
	TypeMorphingMesh:        decodeAs[MorphingMesh],
	TypeSkinnedMesh:         decodeAs[SkinnedMesh],
	TypeTexture2D:           decodeAs[Texture2D],
	TypeSprite3D:            decodeAs[Sprite3D],
	TypeKeyframeSequence:    decodeAs[KeyframeSequence],
	TypeVertexArray:         decodeAs[VertexArray],
	TypeVertexBuffer:        decodeAs[VertexBuffer],
	TypeWorld:               decodeAs[World],
	TypeExternalReference:   decodeAs[ExternalReference],
}

// decodeAs allocates a fresh T and decodes it, so no container is ever
// shared between two decoded objects.
func decodeAs[T any, P interface {
	*T
	Object
}](r *reader) Object {
	obj := P(new(T))
	obj.decode(r)
	return obj
}

// Ref is a reference from one object to another by table index.
// Index 0 is the null reference. After linking, Object returns the target.
type Ref struct {
	Index  uint32
	target Object
}

// RefTo returns a reference bound to obj. Its index is assigned when the
// owning scene is encoded.
func RefTo(obj Object) Ref {
	return Ref{target: obj}
}

// IsNull reports whether the reference points nowhere.
func (r Ref) IsNull() bool {
	return r.target == nil && r.Index == 0
}

// Object returns the resolved target, or nil for a null or unresolved
// reference.
func (r Ref) Object() Object {
	return r.target
}

// Resolve returns the target of r as a T.
func Resolve[T Object](r Ref) (T, bool) {
	t, ok := r.target.(T)
	return t, ok
}

// References returns a copy of every reference field of obj in the order
// they appear in its record, null references included.
func References(obj Object) []Ref {
	ptrs := obj.refs()
	out := make([]Ref, len(ptrs))
	for i, p := range ptrs {
		out[i] = *p
	}
	return out
}

// Matrix is a row-major 4x4 matrix.
type Matrix [16]float32

// IdentityMatrix returns the 4x4 identity.
func IdentityMatrix() Matrix {
	return Matrix{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// ColorRGB is a 24-bit color.
type ColorRGB [3]uint8

// ColorRGBA is a 32-bit color with alpha.
type ColorRGBA [4]uint8
