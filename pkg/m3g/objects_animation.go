package m3g

import (
	"math"

	"github.com/chewxy/math32"
)

// AnimationController controls the speed, weight and timing of the
// animation tracks attached to it.
type AnimationController struct {
	Object3D
	Speed                 float32
	Weight                float32
	ActiveIntervalStart   int32
	ActiveIntervalEnd     int32
	ReferenceSequenceTime float32
	ReferenceWorldTime    int32
}

func (*AnimationController) Type() ObjectType { return TypeAnimationController }

func (a *AnimationController) decode(r *reader) {
	a.readObject3D(r)
	a.Speed = r.f32()
	a.Weight = r.f32()
	a.ActiveIntervalStart = r.i32()
	a.ActiveIntervalEnd = r.i32()
	a.ReferenceSequenceTime = r.f32()
	a.ReferenceWorldTime = r.i32()
}

func (a *AnimationController) encode(w *writer) {
	a.writeObject3D(w)
	w.f32(a.Speed)
	w.f32(a.Weight)
	w.i32(a.ActiveIntervalStart)
	w.i32(a.ActiveIntervalEnd)
	w.f32(a.ReferenceSequenceTime)
	w.i32(a.ReferenceWorldTime)
}

func (a *AnimationController) refs() []*Ref { return nil }

// AnimationTrack binds a keyframe sequence to an animatable property.
type AnimationTrack struct {
	Object3D
	KeyframeSequence    Ref
	AnimationController Ref
	PropertyID          uint32
}

func (*AnimationTrack) Type() ObjectType { return TypeAnimationTrack }

func (a *AnimationTrack) decode(r *reader) {
	a.readObject3D(r)
	a.KeyframeSequence = r.ref()
	a.AnimationController = r.ref()
	a.PropertyID = r.u32()
}

func (a *AnimationTrack) encode(w *writer) {
	a.writeObject3D(w)
	w.ref(a.KeyframeSequence)
	w.ref(a.AnimationController)
	w.u32(a.PropertyID)
}

func (a *AnimationTrack) refs() []*Ref {
	return []*Ref{&a.KeyframeSequence, &a.AnimationController}
}

// Keyframe encodings.
const (
	KeyframeFloat32 uint8 = 0
	KeyframeUint8   uint8 = 1
	KeyframeUint16  uint8 = 2
)

// Keyframe is one time-stamped vector. For the quantised encodings Value
// holds the stored integers converted to float32, not the dequantised
// value.
type Keyframe struct {
	Time  uint32
	Value []float32
}

// KeyframeSequence is a sequence of vector-valued keyframes.
// Interpolation and RepeatMode are passed through as stored.
type KeyframeSequence struct {
	Object3D
	Interpolation   uint8
	RepeatMode      uint8
	Encoding        uint8
	Duration        uint32
	ValidRangeFirst uint32
	ValidRangeLast  uint32
	ComponentCount  uint32
	VectorBias      []float32 // quantised encodings only
	VectorScale     []float32 // quantised encodings only
	Keyframes       []Keyframe
}

func (*KeyframeSequence) Type() ObjectType { return TypeKeyframeSequence }

// componentBytes returns the stored width of one keyframe component.
func (k *KeyframeSequence) componentBytes() int {
	switch k.Encoding {
	case KeyframeFloat32:
		return 4
	case KeyframeUint8:
		return 1
	case KeyframeUint16:
		return 2
	}
	return 0
}

func (k *KeyframeSequence) decode(r *reader) {
	k.readObject3D(r)
	k.Interpolation = r.u8()
	k.RepeatMode = r.u8()
	k.Encoding = r.u8()
	k.Duration = r.u32()
	k.ValidRangeFirst = r.u32()
	k.ValidRangeLast = r.u32()
	k.ComponentCount = r.u32()
	keyCount := r.u32()
	if r.err != nil {
		return
	}

	width := k.componentBytes()
	if width == 0 {
		r.fail(ErrInvalidValue, "keyframe encoding %d", k.Encoding)
		return
	}

	cc := uint64(k.ComponentCount)
	left := uint64(r.Remaining())
	perKey := 4 + cc*uint64(width)
	need := 8 * cc
	if k.Encoding == KeyframeFloat32 {
		need = 0
	}
	if keyCount > 0 {
		if perKey > left {
			need = left + 1
		} else {
			need += uint64(keyCount) * perKey
		}
	}
	if need > left {
		r.fail(ErrRecordLengthMismatch, "%d keyframes of %d components need %d bytes, %d left",
			keyCount, cc, need, r.Remaining())
		return
	}

	if k.Encoding != KeyframeFloat32 {
		k.VectorBias = make([]float32, cc)
		for i := range k.VectorBias {
			k.VectorBias[i] = r.f32()
		}
		k.VectorScale = make([]float32, cc)
		for i := range k.VectorScale {
			k.VectorScale[i] = r.f32()
		}
	}

	k.Keyframes = make([]Keyframe, keyCount)
	for i := range k.Keyframes {
		kf := &k.Keyframes[i]
		kf.Time = r.u32()
		kf.Value = make([]float32, cc)
		for j := range kf.Value {
			switch k.Encoding {
			case KeyframeFloat32:
				kf.Value[j] = r.f32()
			case KeyframeUint8:
				kf.Value[j] = float32(r.u8())
			case KeyframeUint16:
				kf.Value[j] = float32(r.u16())
			}
		}
	}
}

func (k *KeyframeSequence) encode(w *writer) {
	k.writeObject3D(w)
	if k.componentBytes() == 0 {
		w.fail("keyframe encoding %d", k.Encoding)
		return
	}

	cc := int(k.ComponentCount)
	w.u8(k.Interpolation)
	w.u8(k.RepeatMode)
	w.u8(k.Encoding)
	w.u32(k.Duration)
	w.u32(k.ValidRangeFirst)
	w.u32(k.ValidRangeLast)
	w.u32(k.ComponentCount)
	w.u32(uint32(len(k.Keyframes)))

	if k.Encoding != KeyframeFloat32 {
		if len(k.VectorBias) != cc || len(k.VectorScale) != cc {
			w.fail("keyframe bias/scale length %d/%d, want %d", len(k.VectorBias), len(k.VectorScale), cc)
			return
		}
		for _, v := range k.VectorBias {
			w.f32(v)
		}
		for _, v := range k.VectorScale {
			w.f32(v)
		}
	}

	for i, kf := range k.Keyframes {
		if len(kf.Value) != cc {
			w.fail("keyframe %d has %d components, want %d", i, len(kf.Value), cc)
			return
		}
		w.u32(kf.Time)
		for _, v := range kf.Value {
			switch k.Encoding {
			case KeyframeFloat32:
				w.f32(v)
			case KeyframeUint8:
				if !quantised(v, math.MaxUint8) {
					w.fail("keyframe %d value %g is not an 8-bit integer", i, v)
					return
				}
				w.u8(uint8(v))
			case KeyframeUint16:
				if !quantised(v, math.MaxUint16) {
					w.fail("keyframe %d value %g is not a 16-bit integer", i, v)
					return
				}
				w.u16(uint16(v))
			}
		}
	}
}

// quantised reports whether v is a whole number in [0, limit].
func quantised(v, limit float32) bool {
	return v >= 0 && v <= limit && v == math32.Trunc(v)
}

func (k *KeyframeSequence) refs() []*Ref { return nil }
