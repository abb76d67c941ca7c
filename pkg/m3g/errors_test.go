package m3g

import (
	"errors"
	"io"
	"testing"
)

func TestDecodeErrorString(t *testing.T) {
	tests := []struct {
		name string
		err  *DecodeError
		want string
	}{
		{
			name: "section level",
			err:  &DecodeError{Err: ErrChecksumMismatch, Section: 2, Offset: 40, Detail: "stored 0x1, computed 0x2"},
			want: "m3g: section checksum mismatch at section 2, offset 40: stored 0x1, computed 0x2",
		},
		{
			name: "object level",
			err:  &DecodeError{Err: ErrDanglingReference, Offset: -1, Object: 4, Type: TypeMesh, Detail: "reference field 1 points at 9, table holds 5"},
			want: "m3g: dangling reference at object 4 (Mesh): reference field 1 points at 9, table holds 5",
		},
		{
			name: "with cause",
			err:  &DecodeError{Err: ErrStructuralFraming, Section: 1, Offset: 12, Detail: "bad zlib stream", Cause: io.ErrUnexpectedEOF},
			want: "m3g: structural framing error at section 1, offset 12: bad zlib stream (caused by: unexpected EOF)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeErrorMatching(t *testing.T) {
	err := error(&DecodeError{Err: ErrStructuralFraming, Offset: -1, Cause: io.ErrUnexpectedEOF})

	if !errors.Is(err, ErrStructuralFraming) {
		t.Error("errors.Is(err, ErrStructuralFraming) = false")
	}
	if errors.Is(err, ErrChecksumMismatch) {
		t.Error("errors.Is(err, ErrChecksumMismatch) = true")
	}
	if !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Error("cause is not reachable through Unwrap")
	}
}

func TestDecodeErrorFatal(t *testing.T) {
	tests := []struct {
		kind  error
		fatal bool
	}{
		{ErrStructuralFraming, true},
		{ErrChecksumMismatch, true},
		{ErrUnsupportedVersion, true},
		{ErrRecordLengthMismatch, false},
		{ErrUnknownObjectKind, false},
		{ErrDanglingReference, false},
		{ErrInvalidValue, false},
	}

	for _, tt := range tests {
		e := &DecodeError{Err: tt.kind}
		if got := e.Fatal(); got != tt.fatal {
			t.Errorf("Fatal() for %v = %v, want %v", tt.kind, got, tt.fatal)
		}
	}
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    Mode
		wantErr bool
	}{
		{"", Strict, false},
		{"strict", Strict, false},
		{"Lenient", Lenient, false},
		{" lenient ", Lenient, false},
		{"loose", Strict, true},
	}

	for _, tt := range tests {
		got, err := ParseMode(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseMode(%q) err = %v, wantErr %v", tt.in, err, tt.wantErr)
		}
		if got != tt.want {
			t.Errorf("ParseMode(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}

	if Lenient.String() != "lenient" || Mode(9).String() != "Mode(9)" {
		t.Errorf("Mode.String() = %q, %q", Lenient.String(), Mode(9).String())
	}
}
