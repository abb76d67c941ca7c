package m3g

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// recordHeaderSize is the type tag plus the u32 body length.
const recordHeaderSize = 5

// decoder turns section payloads into table entries. It is the table's
// only writer.
type decoder struct {
	opts  options
	log   *zap.Logger
	table *Table
	diags []*DecodeError
	raw   [][]byte
}

func newDecoder(o options) *decoder {
	return &decoder{
		opts:  o,
		log:   o.logger,
		table: NewTable(),
	}
}

// decodeSection appends every record of one section payload to the table.
// Records cannot be located without their predecessors' lengths, so the
// walk is strictly sequential.
func (d *decoder) decodeSection(s *Section) error {
	p := s.Payload
	pos := 0
	for pos < len(p) {
		start := pos
		if len(p)-pos < recordHeaderSize {
			return &DecodeError{
				Err:     ErrTruncatedInput,
				Section: s.Index,
				Offset:  int64(start),
				Detail:  fmt.Sprintf("record header cut short, %d bytes left in section", len(p)-pos),
			}
		}
		tag := ObjectType(p[pos])
		length := binary.LittleEndian.Uint32(p[pos+1 : pos+recordHeaderSize])
		pos += recordHeaderSize
		if uint64(length) > uint64(len(p)-pos) {
			return &DecodeError{
				Err:     ErrTruncatedInput,
				Section: s.Index,
				Offset:  int64(start),
				Object:  uint32(d.table.Len() + 1),
				Type:    tag,
				Detail:  fmt.Sprintf("record declares %d bytes, %d left in section", length, len(p)-pos),
			}
		}
		body := p[pos : pos+int(length)]
		pos += int(length)

		if err := d.appendRecord(s.Index, int64(start), tag, body); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) appendRecord(section int, offset int64, tag ObjectType, body []byte) error {
	idx := uint32(d.table.Len() + 1)

	obj, derr := decodeRecord(tag, body)
	if derr != nil {
		derr.Section = section
		derr.Offset = offset
		derr.Object = idx
		derr.Type = tag
		if d.opts.mode == Strict {
			return derr
		}
		d.diagnose(derr, "record skipped")
		obj = &Unknown{Tag: tag, Data: bytes.Clone(body), Err: derr}
	}

	if err := d.checkHeader(idx, obj, section, offset); err != nil {
		return err
	}

	d.table.Append(obj)
	if d.opts.keepRaw {
		d.raw = append(d.raw, bytes.Clone(body))
	}
	return nil
}

// checkHeader enforces that the file starts with a supported Header and
// holds no other.
func (d *decoder) checkHeader(idx uint32, obj Object, section int, offset int64) error {
	h, isHeader := obj.(*Header)
	switch {
	case idx == 1 && !isHeader:
		return &DecodeError{
			Err:     ErrStructuralFraming,
			Section: section,
			Offset:  offset,
			Object:  idx,
			Type:    obj.Type(),
			Detail:  "first object is not a Header",
		}
	case idx == 1 && !h.Version.Supported():
		return &DecodeError{
			Err:     ErrUnsupportedVersion,
			Section: section,
			Offset:  offset,
			Object:  idx,
			Type:    TypeHeader,
			Detail:  "version " + h.Version.String(),
		}
	case idx > 1 && isHeader:
		err := &DecodeError{
			Err:     ErrInvalidValue,
			Section: section,
			Offset:  offset,
			Object:  idx,
			Type:    TypeHeader,
			Detail:  "second Header object",
		}
		if d.opts.mode == Strict {
			return err
		}
		d.diagnose(err, "duplicate header kept")
	}
	return nil
}

// finish reports files that ended before a Header was seen.
func (d *decoder) finish() error {
	if d.table.Len() == 0 {
		return &DecodeError{Err: ErrStructuralFraming, Offset: -1, Detail: "file holds no objects"}
	}
	return nil
}

func (d *decoder) diagnose(err *DecodeError, action string) {
	d.diags = append(d.diags, err)
	d.log.Warn(action,
		zap.String("kind", err.Err.Error()),
		zap.Int("section", err.Section),
		zap.Int64("offset", err.Offset),
		zap.Uint32("object", err.Object),
		zap.Stringer("type", err.Type),
		zap.String("detail", err.Detail))
}

// decodeRecord decodes one record body. The returned error has no
// position; the caller fills it in.
func decodeRecord(tag ObjectType, body []byte) (Object, *DecodeError) {
	fn, ok := registry[tag]
	if !ok {
		return nil, &DecodeError{
			Err:    ErrUnknownObjectKind,
			Offset: -1,
			Detail: fmt.Sprintf("type tag %d, %d byte body", uint8(tag), len(body)),
		}
	}

	r := newReader(body)
	obj := fn(r)
	if r.err == nil && r.Remaining() > 0 {
		r.fail(ErrRecordLengthMismatch, "%s consumed %d of %d declared bytes", tag, r.Pos(), len(body))
	}
	if r.err != nil {
		var fe *fieldError
		if errors.As(r.err, &fe) {
			return nil, &DecodeError{Err: fe.kind, Offset: -1, Detail: fe.detail}
		}
		return nil, &DecodeError{Err: ErrInvalidValue, Offset: -1, Cause: r.err}
	}
	return obj, nil
}

// DecodeObject decodes a single record (type tag, length and body) with
// every reference left unresolved. Trailing bytes after the record are an
// error.
func DecodeObject(record []byte) (Object, error) {
	if len(record) < recordHeaderSize {
		return nil, &DecodeError{Err: ErrTruncatedInput, Offset: 0, Detail: "record header cut short"}
	}
	tag := ObjectType(record[0])
	length := binary.LittleEndian.Uint32(record[1:recordHeaderSize])
	body := record[recordHeaderSize:]
	if uint64(length) > uint64(len(body)) {
		return nil, &DecodeError{
			Err:    ErrTruncatedInput,
			Offset: 0,
			Type:   tag,
			Detail: fmt.Sprintf("record declares %d bytes, %d present", length, len(body)),
		}
	}
	if uint64(length) < uint64(len(body)) {
		return nil, &DecodeError{
			Err:    ErrRecordLengthMismatch,
			Offset: 0,
			Type:   tag,
			Detail: fmt.Sprintf("record declares %d bytes, %d present", length, len(body)),
		}
	}

	obj, derr := decodeRecord(tag, body)
	if derr != nil {
		derr.Offset = 0
		return nil, derr
	}
	return obj, nil
}
