package m3g

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"math"
	"strings"
	"unicode/utf8"
)

// reader is a bounded little-endian cursor over one record body.
// The first failure is sticky: later reads return zero values and the
// record decoder checks err once the leaf layer has run.
type reader struct {
	buf []byte
	pos int
	err error
}

func newReader(buf []byte) *reader {
	return &reader{buf: buf}
}

// Pos returns the number of bytes consumed so far.
func (r *reader) Pos() int {
	return r.pos
}

// Remaining returns the number of unread bytes.
func (r *reader) Remaining() int {
	return len(r.buf) - r.pos
}

func (r *reader) fail(kind error, format string, args ...any) {
	if r.err == nil {
		r.err = &fieldError{kind: kind, detail: fmt.Sprintf(format, args...)}
	}
}

// take returns the next n bytes, or nil once the record is exhausted.
func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || n > r.Remaining() {
		r.fail(ErrRecordLengthMismatch, "need %d bytes at record offset %d, %d left", n, r.pos, r.Remaining())
		return nil
	}
	b := r.buf[r.pos : r.pos+n]
	r.pos += n
	return b
}

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) i32() int32 {
	return int32(r.u32())
}

func (r *reader) f32() float32 {
	return math.Float32frombits(r.u32())
}

// boolean reads an M3G Boolean, which must be exactly 0 or 1.
func (r *reader) boolean() bool {
	at := r.pos
	v := r.u8()
	if v > 1 {
		r.fail(ErrInvalidValue, "boolean byte 0x%02x at record offset %d", v, at)
	}
	return v == 1
}

func (r *reader) vec3() [3]float32 {
	return [3]float32{r.f32(), r.f32(), r.f32()}
}

func (r *reader) matrix() *Matrix {
	var m Matrix
	for i := range m {
		m[i] = r.f32()
	}
	return &m
}

func (r *reader) rgb() ColorRGB {
	return ColorRGB{r.u8(), r.u8(), r.u8()}
}

func (r *reader) rgba() ColorRGBA {
	return ColorRGBA{r.u8(), r.u8(), r.u8(), r.u8()}
}

func (r *reader) ref() Ref {
	return Ref{Index: r.u32()}
}

// count reads a u32 element count and checks that count elements of at
// least elemSize bytes can still fit in the record. This keeps hostile
// counts from driving large allocations.
func (r *reader) count(elemSize int) int {
	at := r.pos
	n := r.u32()
	if r.err != nil {
		return 0
	}
	if elemSize > 0 && uint64(n)*uint64(elemSize) > uint64(r.Remaining()) {
		r.fail(ErrRecordLengthMismatch, "count %d at record offset %d needs %d bytes, %d left",
			n, at, uint64(n)*uint64(elemSize), r.Remaining())
		return 0
	}
	return int(n)
}

// blob reads a u32-length-prefixed byte array into a fresh slice.
func (r *reader) blob() []byte {
	n := r.count(1)
	b := r.take(n)
	if b == nil {
		return nil
	}
	return bytes.Clone(b)
}

func (r *reader) refs() []Ref {
	n := r.count(4)
	out := make([]Ref, n)
	for i := range out {
		out[i] = r.ref()
	}
	return out
}

// str reads a NUL-terminated UTF-8 string.
func (r *reader) str() string {
	if r.err != nil {
		return ""
	}
	end := bytes.IndexByte(r.buf[r.pos:], 0)
	if end < 0 {
		r.fail(ErrRecordLengthMismatch, "unterminated string at record offset %d", r.pos)
		return ""
	}
	b := r.take(end + 1)
	s := string(b[:end])
	if !utf8.ValidString(s) {
		r.fail(ErrInvalidValue, "string at record offset %d is not valid UTF-8", r.pos-end-1)
	}
	return s
}

// writer is the encoding counterpart of reader.
type writer struct {
	buf []byte
	// index maps a reference to the index written on disk. nil writes
	// Ref.Index unchanged.
	index func(Ref) uint32
	err   error
}

func (w *writer) Bytes() []byte {
	return w.buf
}

// fail records the first field that cannot be represented on disk.
func (w *writer) fail(format string, args ...any) {
	if w.err == nil {
		w.err = &fieldError{kind: ErrInvalidValue, detail: fmt.Sprintf(format, args...)}
	}
}

func (w *writer) u8(v uint8) {
	w.buf = append(w.buf, v)
}

func (w *writer) u16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

func (w *writer) u32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

func (w *writer) i32(v int32) {
	w.u32(uint32(v))
}

func (w *writer) f32(v float32) {
	w.u32(math.Float32bits(v))
}

func (w *writer) boolean(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}

func (w *writer) vec3(v [3]float32) {
	for _, f := range v {
		w.f32(f)
	}
}

func (w *writer) matrix(m *Matrix) {
	for _, f := range m {
		w.f32(f)
	}
}

func (w *writer) rgb(c ColorRGB) {
	w.buf = append(w.buf, c[:]...)
}

func (w *writer) rgba(c ColorRGBA) {
	w.buf = append(w.buf, c[:]...)
}

func (w *writer) ref(r Ref) {
	if w.index != nil {
		w.u32(w.index(r))
		return
	}
	w.u32(r.Index)
}

func (w *writer) blob(b []byte) {
	w.u32(uint32(len(b)))
	w.buf = append(w.buf, b...)
}

func (w *writer) refs(rs []Ref) {
	w.u32(uint32(len(rs)))
	for _, r := range rs {
		w.ref(r)
	}
}

// str writes s NUL-terminated. A string that the reader would cut short
// or reject is an error.
func (w *writer) str(s string) {
	if strings.IndexByte(s, 0) >= 0 {
		w.fail("string %q contains NUL", s)
		return
	}
	if !utf8.ValidString(s) {
		w.fail("string %q is not valid UTF-8", s)
		return
	}
	w.buf = append(w.buf, s...)
	w.u8(0)
}

// index8 and index16 write a value that must fit the narrower field.
func (w *writer) index8(what string, v uint32) {
	if v > math.MaxUint8 {
		w.fail("%s %d does not fit in 8 bits", what, v)
		return
	}
	w.u8(uint8(v))
}

func (w *writer) index16(what string, v uint32) {
	if v > math.MaxUint16 {
		w.fail("%s %d does not fit in 16 bits", what, v)
		return
	}
	w.u16(uint16(v))
}
