package m3g

import (
	"errors"
	"fmt"
	"strings"
)

// Decode errors. Every error returned by the decoder matches exactly one of
// these with errors.Is.
var (
	ErrStructuralFraming    = errors.New("structural framing error")
	ErrChecksumMismatch     = errors.New("section checksum mismatch")
	ErrTruncatedInput       = errors.New("truncated input")
	ErrRecordLengthMismatch = errors.New("record length mismatch")
	ErrUnknownObjectKind    = errors.New("unknown object kind")
	ErrDanglingReference    = errors.New("dangling reference")
	ErrUnsupportedVersion   = errors.New("unsupported version")
	ErrInvalidValue         = errors.New("invalid field value")
)

// ErrIndexOutOfRange is returned by bounds-checked accessors such as
// Mesh.IndexBuffer.
var ErrIndexOutOfRange = errors.New("index out of range")

// DecodeError describes where a decode or link failure happened.
// Offset is a file offset for section-level errors and an offset into the
// decompressed section payload for record-level errors.
type DecodeError struct {
	Err     error      // one of the Err* sentinels
	Section int        // 1-based section number, 0 when not applicable
	Offset  int64      // byte offset, -1 when not applicable
	Object  uint32     // table index of the object involved, 0 when not applicable
	Type    ObjectType // type tag of the record, when Object is set
	Detail  string
	Cause   error
}

// Error implements the error interface.
func (e *DecodeError) Error() string {
	var b strings.Builder

	b.WriteString("m3g: ")
	b.WriteString(e.Err.Error())

	var where []string
	if e.Section > 0 {
		where = append(where, fmt.Sprintf("section %d", e.Section))
	}
	if e.Offset >= 0 {
		where = append(where, fmt.Sprintf("offset %d", e.Offset))
	}
	if e.Object > 0 {
		where = append(where, fmt.Sprintf("object %d (%s)", e.Object, e.Type))
	}
	if len(where) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(where, ", "))
	}

	if e.Detail != "" {
		b.WriteString(": ")
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Is reports whether target is the sentinel of this error's kind.
func (e *DecodeError) Is(target error) bool {
	return e.Err == target
}

// Unwrap returns the underlying cause.
func (e *DecodeError) Unwrap() error {
	return e.Cause
}

// Fatal reports whether the error aborts decoding regardless of mode.
// Corrupted sections cannot be resynchronised.
func (e *DecodeError) Fatal() bool {
	switch e.Err {
	case ErrStructuralFraming, ErrChecksumMismatch, ErrUnsupportedVersion:
		return true
	}
	return false
}

func sectionError(kind error, section int, offset int64, format string, args ...any) *DecodeError {
	return &DecodeError{
		Err:     kind,
		Section: section,
		Offset:  offset,
		Detail:  fmt.Sprintf(format, args...),
	}
}

// fieldError is raised by the field cursor. It carries the sentinel kind so
// the record decoder can translate it into a DecodeError.
type fieldError struct {
	kind   error
	detail string
}

func (e *fieldError) Error() string {
	return e.kind.Error() + ": " + e.detail
}

func (e *fieldError) Unwrap() error {
	return e.kind
}
