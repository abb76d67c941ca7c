//go:build ignore

// This program generates a small textured, animated M3G scene for tests.
// Run with: go run generate.go
package main

import (
	"log"

	"github.com/Faultbox/m3g/pkg/m3g"
)

func main() {
	node := m3g.Node{RenderingEnabled: true, PickingEnabled: true, AlphaFactor: 1, Scope: 0xFFFFFFFF}

	// A unit quad facing +Z.
	positions := &m3g.VertexArray{ComponentSize: 2, ComponentCount: 3, Components: []int16{
		-1, -1, 0,
		1, -1, 0,
		-1, 1, 0,
		1, 1, 0,
	}}
	normals := &m3g.VertexArray{ComponentSize: 1, ComponentCount: 3, Components: []int16{
		0, 0, 127,
		0, 0, 127,
		0, 0, 127,
		0, 0, 127,
	}}
	uvs := &m3g.VertexArray{ComponentSize: 1, ComponentCount: 2, Components: []int16{
		0, 1,
		1, 1,
		0, 0,
		1, 0,
	}}
	vb := &m3g.VertexBuffer{
		DefaultColor:  m3g.ColorRGBA{255, 255, 255, 255},
		Positions:     m3g.RefTo(positions),
		PositionScale: 1,
		Normals:       m3g.RefTo(normals),
		TexCoords:     []m3g.TexCoordArray{{Array: m3g.RefTo(uvs), Scale: 1}},
	}
	strips := &m3g.TriangleStripArray{Encoding: m3g.StripImplicitUint8, StripLengths: []uint32{4}}

	// 2x2 RGB checkerboard.
	image := &m3g.Image2D{Format: 99, Width: 2, Height: 2, Palette: []byte{}, Pixels: []byte{
		255, 255, 255, 0, 0, 0,
		0, 0, 0, 255, 255, 255,
	}}
	texture := &m3g.Texture2D{
		Image:       m3g.RefTo(image),
		Blending:    227,
		WrappingS:   240,
		WrappingT:   240,
		LevelFilter: 208,
		ImageFilter: 210,
	}
	material := &m3g.Material{
		AmbientColor:  m3g.ColorRGB{51, 51, 51},
		DiffuseColor:  m3g.ColorRGBA{204, 204, 204, 255},
		SpecularColor: m3g.ColorRGB{0, 0, 0},
		Shininess:     1,
	}
	appearance := &m3g.Appearance{Material: m3g.RefTo(material), Textures: []m3g.Ref{m3g.RefTo(texture)}}
	mesh := &m3g.Mesh{
		Node:         node,
		VertexBuffer: m3g.RefTo(vb),
		Submeshes:    []m3g.Submesh{{IndexBuffer: m3g.RefTo(strips), Appearance: m3g.RefTo(appearance)}},
	}

	camera := &m3g.Camera{Node: node, ProjectionType: 49, FovY: 60, AspectRatio: 4.0 / 3.0, Near: 0.1, Far: 100}
	light := &m3g.Light{Node: node, AttenuationConstant: 1, Color: m3g.ColorRGB{255, 255, 255}, Mode: 129, Intensity: 1, SpotAngle: 45}

	// Spin the mesh once a second.
	keys := &m3g.KeyframeSequence{
		Interpolation:   176,
		RepeatMode:      193,
		Encoding:        m3g.KeyframeFloat32,
		Duration:        1000,
		ValidRangeFirst: 0,
		ValidRangeLast:  1,
		ComponentCount:  4,
		Keyframes: []m3g.Keyframe{
			{Time: 0, Value: []float32{0, 0, 0, 1}},
			{Time: 1000, Value: []float32{0, 1, 0, 0}},
		},
	}
	controller := &m3g.AnimationController{Speed: 1, Weight: 1}
	track := &m3g.AnimationTrack{KeyframeSequence: m3g.RefTo(keys), AnimationController: m3g.RefTo(controller), PropertyID: 274}

	background := &m3g.Background{Color: m3g.ColorRGBA{32, 32, 64, 255}, ImageModeX: 32, ImageModeY: 32, DepthClearEnabled: true, ColorClearEnabled: true}
	world := &m3g.World{
		Group:        m3g.Group{Node: node, Children: []m3g.Ref{m3g.RefTo(camera), m3g.RefTo(light), m3g.RefTo(mesh)}},
		ActiveCamera: m3g.RefTo(camera),
		Background:   m3g.RefTo(background),
	}

	scene, err := m3g.NewScene(&m3g.Header{Version: m3g.Version{Major: 1, Minor: 0}, AuthoringField: "m3g testdata"},
		world, background, camera, light, mesh, appearance, material, texture, image,
		vb, positions, normals, uvs, strips, track, keys, controller)
	if err != nil {
		log.Fatal(err)
	}

	if err := m3g.EncodeFile("sample.m3g", scene, m3g.WithCompression(9)); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote sample.m3g (%d objects)", scene.Len())
}
