package m3g

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
)

// Scene is a decoded and linked M3G file. It owns every object; callers
// should treat the objects as read-only unless they intend to re-encode.
type Scene struct {
	Header *Header

	table *Table
	diags []*DecodeError
	raw   [][]byte
}

// Decode reads a complete M3G stream and links it.
//
// In strict mode the first error of any kind is returned and no scene is
// produced. In lenient mode bad records and dangling references are
// reported through Diagnostics instead; section-level errors are always
// fatal.
func Decode(ctx context.Context, r io.Reader, opts ...Option) (*Scene, error) {
	o := buildOptions(opts)
	sr := NewSectionReader(r, opts...)
	d := newDecoder(o)

	if o.parallel > 1 {
		err := sr.Stream(ctx, func(s *Section) error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return d.decodeSection(s)
		})
		if err != nil {
			return nil, err
		}
	} else {
		for {
			s, err := sr.Next(ctx)
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return nil, err
			}
			if err := d.decodeSection(s); err != nil {
				return nil, err
			}
		}
	}

	if err := d.finish(); err != nil {
		return nil, err
	}
	d.table.Close()

	linkDiags, err := link(ctx, d.table, o)
	if err != nil {
		return nil, err
	}

	header, _ := d.table.Get(1)
	return &Scene{
		Header: header.(*Header),
		table:  d.table,
		diags:  append(d.diags, linkDiags...),
		raw:    d.raw,
	}, nil
}

// DecodeBytes decodes an in-memory M3G file.
func DecodeBytes(ctx context.Context, data []byte, opts ...Option) (*Scene, error) {
	return Decode(ctx, bytes.NewReader(data), opts...)
}

// DecodeFile decodes the M3G file at path.
func DecodeFile(ctx context.Context, path string, opts ...Option) (*Scene, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening m3g file: %w", err)
	}
	defer f.Close()

	return Decode(ctx, f, opts...)
}

// NewScene builds a scene from objects made in code. header becomes
// object 1 and objs follow in order. References made with RefTo get their
// indices here and must point at objects in the scene; non-zero plain
// indices are resolved against the new table.
func NewScene(header *Header, objs ...Object) (*Scene, error) {
	if header == nil {
		return nil, fmt.Errorf("m3g: scene needs a header")
	}
	t := NewTable()
	t.Append(header)
	for _, obj := range objs {
		if _, dup := t.IndexOf(obj); dup {
			return nil, fmt.Errorf("m3g: %s added to scene twice", obj.Type())
		}
		t.Append(obj)
	}
	t.Close()

	if err := bind(t); err != nil {
		return nil, err
	}
	return &Scene{Header: header, table: t}, nil
}

// Len returns the number of objects, header included.
func (s *Scene) Len() int {
	return s.table.Len()
}

// Get returns the object at table index i. Index 0 is the null reference
// and always reports false.
func (s *Scene) Get(i uint32) (Object, bool) {
	return s.table.Get(i)
}

// IndexOf returns the table index of obj.
func (s *Scene) IndexOf(obj Object) (uint32, bool) {
	return s.table.IndexOf(obj)
}

// Objects yields every object with its table index, in table order. Each
// call starts a fresh pass.
func (s *Scene) Objects() iter.Seq2[uint32, Object] {
	return s.table.All()
}

// Roots returns the objects that no other object references, in table
// order. The header is not part of the graph and is never a root.
func (s *Scene) Roots() []Object {
	referenced := make(map[Object]bool)
	for _, obj := range s.table.All() {
		for _, ref := range obj.refs() {
			if t := ref.Object(); t != nil && t != obj {
				referenced[t] = true
			}
		}
	}

	var roots []Object
	for _, obj := range s.table.All() {
		if _, isHeader := obj.(*Header); isHeader || referenced[obj] {
			continue
		}
		roots = append(roots, obj)
	}
	return roots
}

// Diagnostics returns the problems recovered from in lenient mode, in the
// order they were found. It is empty for a strict decode.
func (s *Scene) Diagnostics() []*DecodeError {
	return s.diags
}

// RawRecord returns the body object i was decoded from. It is only
// available when decoding with WithRawRecords.
func (s *Scene) RawRecord(i uint32) ([]byte, bool) {
	if i == 0 || uint64(i) > uint64(len(s.raw)) {
		return nil, false
	}
	return s.raw[i-1], true
}
