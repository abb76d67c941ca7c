package m3g

import (
	"bytes"
	"fmt"
)

// Version is the file format version stored in the Header object.
type Version struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v Version) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// Supported reports whether the decoder understands this version.
// Only the 1.x layouts are implemented.
func (v Version) Supported() bool {
	return v.Major == 1
}

// Header is the file metadata record. It is not an Object3D.
type Header struct {
	Version                Version
	HasExternalReferences  bool
	TotalFileSize          uint32
	ApproximateContentSize uint32
	AuthoringField         string
}

func (*Header) Type() ObjectType { return TypeHeader }

func (h *Header) decode(r *reader) {
	h.Version = Version{Major: r.u8(), Minor: r.u8()}
	h.HasExternalReferences = r.boolean()
	h.TotalFileSize = r.u32()
	h.ApproximateContentSize = r.u32()
	h.AuthoringField = r.str()
}

func (h *Header) encode(w *writer) {
	w.u8(h.Version.Major)
	w.u8(h.Version.Minor)
	w.boolean(h.HasExternalReferences)
	w.u32(h.TotalFileSize)
	w.u32(h.ApproximateContentSize)
	w.str(h.AuthoringField)
}

func (h *Header) refs() []*Ref { return nil }

// ExternalReference names another file whose root object stands in for
// this record. Loading it is left to consumers.
type ExternalReference struct {
	URI string
}

func (*ExternalReference) Type() ObjectType { return TypeExternalReference }

func (e *ExternalReference) decode(r *reader) {
	e.URI = r.str()
}

func (e *ExternalReference) encode(w *writer) {
	w.str(e.URI)
}

func (e *ExternalReference) refs() []*Ref { return nil }

// Unknown is a record that was skipped in lenient mode, either because its
// tag has no decoder or because its body failed to decode. It keeps the
// table index stable and re-encodes to the original bytes.
type Unknown struct {
	Tag  ObjectType
	Data []byte
	Err  error // why the record was skipped
}

func (u *Unknown) Type() ObjectType { return u.Tag }

func (u *Unknown) decode(r *reader) {
	u.Data = bytes.Clone(r.take(r.Remaining()))
}

func (u *Unknown) encode(w *writer) {
	w.buf = append(w.buf, u.Data...)
}

func (u *Unknown) refs() []*Ref { return nil }
