package m3g

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/adler32"
	"io"
	"math"
	"os"
)

// EncodeObject encodes obj as one record: type tag, length and body.
// References are written as their stored Index.
func EncodeObject(obj Object) ([]byte, error) {
	return appendRecord(nil, obj, nil)
}

func appendRecord(dst []byte, obj Object, index func(Ref) uint32) ([]byte, error) {
	w := &writer{index: index}
	obj.encode(w)
	if w.err != nil {
		var fe *fieldError
		if errors.As(w.err, &fe) {
			return nil, &DecodeError{Err: fe.kind, Offset: -1, Detail: fmt.Sprintf("encoding %s: %s", obj.Type(), fe.detail)}
		}
		return nil, w.err
	}
	body := w.Bytes()
	if uint64(len(body)) > math.MaxUint32 {
		return nil, fmt.Errorf("m3g: %s record of %d bytes is too large", obj.Type(), len(body))
	}

	dst = append(dst, uint8(obj.Type()))
	dst = binary.LittleEndian.AppendUint32(dst, uint32(len(body)))
	return append(dst, body...), nil
}

// Encode writes s as a complete M3G file. The header goes in its own
// uncompressed section and every other object in a second section,
// zlib-compressed when WithCompression is given. Resolved references are
// written as the target's current table index. The header's
// TotalFileSize is recomputed; s.Header itself is not modified.
func Encode(w io.Writer, s *Scene, opts ...Option) error {
	o := buildOptions(opts)

	var refErr error
	index := func(r Ref) uint32 {
		if r.target == nil {
			return r.Index
		}
		i, ok := s.table.IndexOf(r.target)
		if !ok && refErr == nil {
			refErr = fmt.Errorf("m3g: %w: reference to a %s outside the scene", ErrDanglingReference, r.target.Type())
		}
		return i
	}

	var objects []byte
	for i, obj := range s.table.All() {
		if i == 1 {
			continue
		}
		var err error
		objects, err = appendRecord(objects, obj, index)
		if err != nil {
			if de, ok := err.(*DecodeError); ok {
				de.Object = i
				de.Type = obj.Type()
			}
			return err
		}
		if refErr != nil {
			return fmt.Errorf("object %d: %w", i, refErr)
		}
	}

	var objSection []byte
	if len(objects) > 0 {
		var err error
		if objSection, err = appendSection(nil, objects, o.compress, o.level); err != nil {
			return err
		}
	}

	// The header record has the same size whatever TotalFileSize holds,
	// so encode it once to learn the size and again with the real value.
	h := *s.Header
	rec, err := appendRecord(nil, &h, nil)
	if err != nil {
		return err
	}
	total := len(Signature) + sectionOverhead + len(rec) + len(objSection)
	if uint64(total) > math.MaxUint32 {
		return fmt.Errorf("m3g: file of %d bytes is too large", total)
	}
	h.TotalFileSize = uint32(total)
	if rec, err = appendRecord(nil, &h, nil); err != nil {
		return err
	}

	out := append([]byte(nil), Signature[:]...)
	if out, err = appendSection(out, rec, false, 0); err != nil {
		return err
	}
	out = append(out, objSection...)

	_, err = w.Write(out)
	return err
}

// EncodeFile writes s to path, replacing any existing file.
func EncodeFile(path string, s *Scene, opts ...Option) error {
	var buf bytes.Buffer
	if err := Encode(&buf, s, opts...); err != nil {
		return err
	}
	return os.WriteFile(path, buf.Bytes(), 0o644)
}

// appendSection frames payload as one section.
func appendSection(dst, payload []byte, compress bool, level int) ([]byte, error) {
	stored := payload
	scheme := CompressionNone
	if compress {
		var b bytes.Buffer
		zw, err := zlib.NewWriterLevel(&b, level)
		if err != nil {
			return nil, fmt.Errorf("m3g: zlib level %d: %w", level, err)
		}
		if _, err := zw.Write(payload); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		stored = b.Bytes()
		scheme = CompressionZlib
	}
	if uint64(len(stored))+sectionOverhead > math.MaxUint32 {
		return nil, fmt.Errorf("m3g: section payload of %d bytes is too large", len(stored))
	}

	var hdr [sectionHeaderSize]byte
	hdr[0] = uint8(scheme)
	binary.LittleEndian.PutUint32(hdr[1:5], uint32(len(stored)+sectionOverhead))
	binary.LittleEndian.PutUint32(hdr[5:9], uint32(len(payload)))

	h := adler32.New()
	h.Write(hdr[:])
	h.Write(stored)

	dst = append(dst, hdr[:]...)
	dst = append(dst, stored...)
	return binary.LittleEndian.AppendUint32(dst, h.Sum32()), nil
}
