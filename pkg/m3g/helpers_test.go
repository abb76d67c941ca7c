package m3g

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"hash/adler32"
	"math"
)

// builder assembles little-endian test fixtures by hand, independently of
// the package's own writer.
type builder struct {
	b []byte
}

func (b *builder) u8(vs ...uint8) *builder {
	b.b = append(b.b, vs...)
	return b
}

func (b *builder) u16(vs ...uint16) *builder {
	for _, v := range vs {
		b.b = binary.LittleEndian.AppendUint16(b.b, v)
	}
	return b
}

func (b *builder) u32(vs ...uint32) *builder {
	for _, v := range vs {
		b.b = binary.LittleEndian.AppendUint32(b.b, v)
	}
	return b
}

func (b *builder) f32(vs ...float32) *builder {
	for _, v := range vs {
		b.b = binary.LittleEndian.AppendUint32(b.b, math.Float32bits(v))
	}
	return b
}

func (b *builder) raw(p []byte) *builder {
	b.b = append(b.b, p...)
	return b
}

func (b *builder) bytes() []byte {
	return b.b
}

// object3D writes an Object3D block with no tracks and no parameters.
func (b *builder) object3D(userID uint32) *builder {
	return b.u32(userID, 0, 0)
}

// transformable writes an Object3D block followed by two false flags.
func (b *builder) transformable(userID uint32) *builder {
	return b.object3D(userID).u8(0, 0)
}

// node writes a rendering, pickable, opaque node with no alignment.
func (b *builder) node(userID uint32) *builder {
	return b.transformable(userID).u8(1, 1, 255).u32(0xFFFFFFFF).u8(0)
}

func record(tag ObjectType, body []byte) []byte {
	out := []byte{uint8(tag)}
	out = binary.LittleEndian.AppendUint32(out, uint32(len(body)))
	return append(out, body...)
}

func headerRecordVersion(major, minor uint8) []byte {
	var b builder
	b.u8(major, minor, 0).u32(0, 0).raw([]byte("test\x00"))
	return record(TypeHeader, b.bytes())
}

func headerRecord() []byte {
	return headerRecordVersion(1, 0)
}

// groupRecord is a Group with the default node fields and the given
// children.
func groupRecord(children ...uint32) []byte {
	var b builder
	b.node(0).u32(uint32(len(children))).u32(children...)
	return record(TypeGroup, b.bytes())
}

// sectionBytes frames payload, optionally zlib-compressed.
func sectionBytes(payload []byte, compress bool) []byte {
	stored := payload
	scheme := uint8(0)
	if compress {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		zw.Write(payload)
		zw.Close()
		stored = z.Bytes()
		scheme = 1
	}

	var b builder
	b.u8(scheme).u32(uint32(len(stored)+13), uint32(len(payload))).raw(stored)
	return b.u32(adler32.Checksum(b.bytes())).bytes()
}

func fileBytes(sections ...[]byte) []byte {
	out := append([]byte(nil), Signature[:]...)
	for _, s := range sections {
		out = append(out, s...)
	}
	return out
}

// sceneFile puts a header in its own section and records in a second one.
func sceneFile(records ...[]byte) []byte {
	return fileBytes(sectionBytes(headerRecord(), false), sectionBytes(bytes.Join(records, nil), false))
}
