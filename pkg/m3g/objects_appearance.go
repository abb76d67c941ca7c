package m3g

// Appearance groups the rendering attributes of a submesh or sprite.
type Appearance struct {
	Object3D
	Layer           uint8
	CompositingMode Ref
	Fog             Ref
	PolygonMode     Ref
	Material        Ref
	Textures        []Ref
}

func (*Appearance) Type() ObjectType { return TypeAppearance }

func (a *Appearance) decode(r *reader) {
	a.readObject3D(r)
	a.Layer = r.u8()
	a.CompositingMode = r.ref()
	a.Fog = r.ref()
	a.PolygonMode = r.ref()
	a.Material = r.ref()
	a.Textures = r.refs()
}

func (a *Appearance) encode(w *writer) {
	a.writeObject3D(w)
	w.u8(a.Layer)
	w.ref(a.CompositingMode)
	w.ref(a.Fog)
	w.ref(a.PolygonMode)
	w.ref(a.Material)
	w.refs(a.Textures)
}

func (a *Appearance) refs() []*Ref {
	refs := []*Ref{&a.CompositingMode, &a.Fog, &a.PolygonMode, &a.Material}
	for i := range a.Textures {
		refs = append(refs, &a.Textures[i])
	}
	return refs
}

// Material holds lighting coefficients.
type Material struct {
	Object3D
	AmbientColor               ColorRGB
	DiffuseColor               ColorRGBA
	EmissiveColor              ColorRGB
	SpecularColor              ColorRGB
	Shininess                  float32
	VertexColorTrackingEnabled bool
}

func (*Material) Type() ObjectType { return TypeMaterial }

func (m *Material) decode(r *reader) {
	m.readObject3D(r)
	m.AmbientColor = r.rgb()
	m.DiffuseColor = r.rgba()
	m.EmissiveColor = r.rgb()
	m.SpecularColor = r.rgb()
	m.Shininess = r.f32()
	m.VertexColorTrackingEnabled = r.boolean()
}

func (m *Material) encode(w *writer) {
	m.writeObject3D(w)
	w.rgb(m.AmbientColor)
	w.rgba(m.DiffuseColor)
	w.rgb(m.EmissiveColor)
	w.rgb(m.SpecularColor)
	w.f32(m.Shininess)
	w.boolean(m.VertexColorTrackingEnabled)
}

func (m *Material) refs() []*Ref { return nil }

// PolygonMode holds culling, shading and winding settings.
type PolygonMode struct {
	Object3D
	Culling                      uint8
	Shading                      uint8
	Winding                      uint8
	TwoSidedLightingEnabled      bool
	LocalCameraLightingEnabled   bool
	PerspectiveCorrectionEnabled bool
}

func (*PolygonMode) Type() ObjectType { return TypePolygonMode }

func (p *PolygonMode) decode(r *reader) {
	p.readObject3D(r)
	p.Culling = r.u8()
	p.Shading = r.u8()
	p.Winding = r.u8()
	p.TwoSidedLightingEnabled = r.boolean()
	p.LocalCameraLightingEnabled = r.boolean()
	p.PerspectiveCorrectionEnabled = r.boolean()
}

func (p *PolygonMode) encode(w *writer) {
	p.writeObject3D(w)
	w.u8(p.Culling)
	w.u8(p.Shading)
	w.u8(p.Winding)
	w.boolean(p.TwoSidedLightingEnabled)
	w.boolean(p.LocalCameraLightingEnabled)
	w.boolean(p.PerspectiveCorrectionEnabled)
}

func (p *PolygonMode) refs() []*Ref { return nil }

// CompositingMode holds per-pixel compositing settings.
type CompositingMode struct {
	Object3D
	DepthTestEnabled  bool
	DepthWriteEnabled bool
	ColorWriteEnabled bool
	AlphaWriteEnabled bool
	Blending          uint8
	AlphaThreshold    uint8
	DepthOffsetFactor float32
	DepthOffsetUnits  float32
}

func (*CompositingMode) Type() ObjectType { return TypeCompositingMode }

func (c *CompositingMode) decode(r *reader) {
	c.readObject3D(r)
	c.DepthTestEnabled = r.boolean()
	c.DepthWriteEnabled = r.boolean()
	c.ColorWriteEnabled = r.boolean()
	c.AlphaWriteEnabled = r.boolean()
	c.Blending = r.u8()
	c.AlphaThreshold = r.u8()
	c.DepthOffsetFactor = r.f32()
	c.DepthOffsetUnits = r.f32()
}

func (c *CompositingMode) encode(w *writer) {
	c.writeObject3D(w)
	w.boolean(c.DepthTestEnabled)
	w.boolean(c.DepthWriteEnabled)
	w.boolean(c.ColorWriteEnabled)
	w.boolean(c.AlphaWriteEnabled)
	w.u8(c.Blending)
	w.u8(c.AlphaThreshold)
	w.f32(c.DepthOffsetFactor)
	w.f32(c.DepthOffsetUnits)
}

func (c *CompositingMode) refs() []*Ref { return nil }

// Fog modes. They select which fields follow in the record.
const (
	FogExponential uint8 = 80
	FogLinear      uint8 = 81
)

// Fog holds fogging attributes.
type Fog struct {
	Object3D
	Color   ColorRGB
	Mode    uint8
	Density float32 // FogExponential
	Near    float32 // FogLinear
	Far     float32 // FogLinear
}

func (*Fog) Type() ObjectType { return TypeFog }

func (f *Fog) decode(r *reader) {
	f.readObject3D(r)
	f.Color = r.rgb()
	f.Mode = r.u8()
	switch f.Mode {
	case FogExponential:
		f.Density = r.f32()
	case FogLinear:
		f.Near = r.f32()
		f.Far = r.f32()
	default:
		r.fail(ErrInvalidValue, "fog mode %d", f.Mode)
	}
}

func (f *Fog) encode(w *writer) {
	f.writeObject3D(w)
	w.rgb(f.Color)
	w.u8(f.Mode)
	switch f.Mode {
	case FogExponential:
		w.f32(f.Density)
	case FogLinear:
		w.f32(f.Near)
		w.f32(f.Far)
	default:
		w.fail("fog mode %d", f.Mode)
	}
}

func (f *Fog) refs() []*Ref { return nil }

// Texture2D applies an Image2D to submeshes. It is Transformable but not
// a Node.
type Texture2D struct {
	Transformable
	Image       Ref
	BlendColor  ColorRGB
	Blending    uint8
	WrappingS   uint8
	WrappingT   uint8
	LevelFilter uint8
	ImageFilter uint8
}

func (*Texture2D) Type() ObjectType { return TypeTexture2D }

func (t *Texture2D) decode(r *reader) {
	t.readTransformable(r)
	t.Image = r.ref()
	t.BlendColor = r.rgb()
	t.Blending = r.u8()
	t.WrappingS = r.u8()
	t.WrappingT = r.u8()
	t.LevelFilter = r.u8()
	t.ImageFilter = r.u8()
}

func (t *Texture2D) encode(w *writer) {
	t.writeTransformable(w)
	w.ref(t.Image)
	w.rgb(t.BlendColor)
	w.u8(t.Blending)
	w.u8(t.WrappingS)
	w.u8(t.WrappingT)
	w.u8(t.LevelFilter)
	w.u8(t.ImageFilter)
}

func (t *Texture2D) refs() []*Ref { return []*Ref{&t.Image} }

// Image2D is a 2D image. Pixel data is kept as stored; decoding it into
// colors is left to consumers.
type Image2D struct {
	Object3D
	Format  uint8
	Mutable bool
	Width   uint32
	Height  uint32
	Palette []byte // immutable images only
	Pixels  []byte // immutable images only
}

func (*Image2D) Type() ObjectType { return TypeImage2D }

func (m *Image2D) decode(r *reader) {
	m.readObject3D(r)
	m.Format = r.u8()
	m.Mutable = r.boolean()
	m.Width = r.u32()
	m.Height = r.u32()
	if !m.Mutable {
		m.Palette = r.blob()
		m.Pixels = r.blob()
	}
}

func (m *Image2D) encode(w *writer) {
	m.writeObject3D(w)
	w.u8(m.Format)
	w.boolean(m.Mutable)
	w.u32(m.Width)
	w.u32(m.Height)
	if !m.Mutable {
		w.blob(m.Palette)
		w.blob(m.Pixels)
	}
}

func (m *Image2D) refs() []*Ref { return nil }

// Background defines how the viewport is cleared.
type Background struct {
	Object3D
	Color             ColorRGBA
	Image             Ref
	ImageModeX        uint8
	ImageModeY        uint8
	CropX             int32
	CropY             int32
	CropWidth         int32
	CropHeight        int32
	DepthClearEnabled bool
	ColorClearEnabled bool
}

func (*Background) Type() ObjectType { return TypeBackground }

func (b *Background) decode(r *reader) {
	b.readObject3D(r)
	b.Color = r.rgba()
	b.Image = r.ref()
	b.ImageModeX = r.u8()
	b.ImageModeY = r.u8()
	b.CropX = r.i32()
	b.CropY = r.i32()
	b.CropWidth = r.i32()
	b.CropHeight = r.i32()
	b.DepthClearEnabled = r.boolean()
	b.ColorClearEnabled = r.boolean()
}

func (b *Background) encode(w *writer) {
	b.writeObject3D(w)
	w.rgba(b.Color)
	w.ref(b.Image)
	w.u8(b.ImageModeX)
	w.u8(b.ImageModeY)
	w.i32(b.CropX)
	w.i32(b.CropY)
	w.i32(b.CropWidth)
	w.i32(b.CropHeight)
	w.boolean(b.DepthClearEnabled)
	w.boolean(b.ColorClearEnabled)
}

func (b *Background) refs() []*Ref { return []*Ref{&b.Image} }
