package m3g

// Group is a node with an unordered set of child nodes.
type Group struct {
	Node
	Children []Ref
}

func (*Group) Type() ObjectType { return TypeGroup }

func (g *Group) readGroup(r *reader) {
	g.readNode(r)
	g.Children = r.refs()
}

func (g *Group) writeGroup(w *writer) {
	g.writeNode(w)
	w.refs(g.Children)
}

func (g *Group) groupRefs() []*Ref {
	refs := g.nodeRefs()
	for i := range g.Children {
		refs = append(refs, &g.Children[i])
	}
	return refs
}

func (g *Group) decode(r *reader) { g.readGroup(r) }
func (g *Group) encode(w *writer) { g.writeGroup(w) }
func (g *Group) refs() []*Ref     { return g.groupRefs() }

// World is the top-level Group of a scene.
type World struct {
	Group
	ActiveCamera Ref
	Background   Ref
}

func (*World) Type() ObjectType { return TypeWorld }

func (wd *World) decode(r *reader) {
	wd.readGroup(r)
	wd.ActiveCamera = r.ref()
	wd.Background = r.ref()
}

func (wd *World) encode(w *writer) {
	wd.writeGroup(w)
	w.ref(wd.ActiveCamera)
	w.ref(wd.Background)
}

func (wd *World) refs() []*Ref {
	return append(wd.groupRefs(), &wd.ActiveCamera, &wd.Background)
}

// ProjectionGeneric selects an explicit projection matrix. Any other
// projection type is stored as fovy, aspect ratio, near and far.
const ProjectionGeneric uint8 = 48

// Camera is a viewpoint node.
type Camera struct {
	Node
	ProjectionType uint8
	Projection     *Matrix // set for ProjectionGeneric only
	FovY           float32
	AspectRatio    float32
	Near           float32
	Far            float32
}

func (*Camera) Type() ObjectType { return TypeCamera }

func (c *Camera) decode(r *reader) {
	c.readNode(r)
	c.ProjectionType = r.u8()
	if c.ProjectionType == ProjectionGeneric {
		c.Projection = r.matrix()
		return
	}
	c.FovY = r.f32()
	c.AspectRatio = r.f32()
	c.Near = r.f32()
	c.Far = r.f32()
}

func (c *Camera) encode(w *writer) {
	c.writeNode(w)
	w.u8(c.ProjectionType)
	if c.ProjectionType == ProjectionGeneric {
		if c.Projection == nil {
			w.fail("generic camera without projection matrix")
			return
		}
		w.matrix(c.Projection)
		return
	}
	w.f32(c.FovY)
	w.f32(c.AspectRatio)
	w.f32(c.Near)
	w.f32(c.Far)
}

func (c *Camera) refs() []*Ref { return c.nodeRefs() }

// Light is a light source node. Mode is passed through as stored.
type Light struct {
	Node
	AttenuationConstant  float32
	AttenuationLinear    float32
	AttenuationQuadratic float32
	Color                ColorRGB
	Mode                 uint8
	Intensity            float32
	SpotAngle            float32
	SpotExponent         float32
}

func (*Light) Type() ObjectType { return TypeLight }

func (l *Light) decode(r *reader) {
	l.readNode(r)
	l.AttenuationConstant = r.f32()
	l.AttenuationLinear = r.f32()
	l.AttenuationQuadratic = r.f32()
	l.Color = r.rgb()
	l.Mode = r.u8()
	l.Intensity = r.f32()
	l.SpotAngle = r.f32()
	l.SpotExponent = r.f32()
}

func (l *Light) encode(w *writer) {
	l.writeNode(w)
	w.f32(l.AttenuationConstant)
	w.f32(l.AttenuationLinear)
	w.f32(l.AttenuationQuadratic)
	w.rgb(l.Color)
	w.u8(l.Mode)
	w.f32(l.Intensity)
	w.f32(l.SpotAngle)
	w.f32(l.SpotExponent)
}

func (l *Light) refs() []*Ref { return l.nodeRefs() }

// Sprite3D is a screen-aligned image node.
type Sprite3D struct {
	Node
	Image      Ref
	Appearance Ref
	Scaled     bool
	CropX      int32
	CropY      int32
	CropWidth  int32
	CropHeight int32
}

func (*Sprite3D) Type() ObjectType { return TypeSprite3D }

func (s *Sprite3D) decode(r *reader) {
	s.readNode(r)
	s.Image = r.ref()
	s.Appearance = r.ref()
	s.Scaled = r.boolean()
	s.CropX = r.i32()
	s.CropY = r.i32()
	s.CropWidth = r.i32()
	s.CropHeight = r.i32()
}

func (s *Sprite3D) encode(w *writer) {
	s.writeNode(w)
	w.ref(s.Image)
	w.ref(s.Appearance)
	w.boolean(s.Scaled)
	w.i32(s.CropX)
	w.i32(s.CropY)
	w.i32(s.CropWidth)
	w.i32(s.CropHeight)
}

func (s *Sprite3D) refs() []*Ref {
	return append(s.nodeRefs(), &s.Image, &s.Appearance)
}
