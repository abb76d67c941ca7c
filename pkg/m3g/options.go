package m3g

import (
	"compress/zlib"
	"fmt"
	"strings"

	"go.uber.org/zap"
)

// Mode selects how record-level and reference-level errors are handled.
type Mode int

const (
	// Strict aborts the decode on the first error of any kind.
	Strict Mode = iota
	// Lenient skips bad records and nulls dangling references, reporting
	// each as a diagnostic.
	Lenient
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Strict:
		return "strict"
	case Lenient:
		return "lenient"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode parses "strict" or "lenient", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "strict":
		return Strict, nil
	case "lenient":
		return Lenient, nil
	}
	return Strict, fmt.Errorf("unknown decode mode %q", s)
}

// Option configures decoding and encoding.
type Option func(*options)

type options struct {
	mode     Mode
	logger   *zap.Logger
	parallel int

	compress bool
	level    int

	keepRaw bool
}

func defaultOptions() options {
	return options{
		mode:     Strict,
		logger:   zap.NewNop(),
		parallel: 1,
		level:    zlib.DefaultCompression,
	}
}

func buildOptions(opts []Option) options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithMode selects strict or lenient decoding.
func WithMode(m Mode) Option {
	return func(o *options) {
		o.mode = m
	}
}

// WithLogger sets the logger diagnostics are emitted on. The default
// discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithParallel sets how many sections are inflated, and how many objects
// are linked, concurrently. Values below 1 mean 1.
func WithParallel(n int) Option {
	return func(o *options) {
		if n < 1 {
			n = 1
		}
		o.parallel = n
	}
}

// WithCompression makes Encode zlib-compress the object section at the
// given level.
func WithCompression(level int) Option {
	return func(o *options) {
		o.compress = true
		o.level = level
	}
}

// WithRawRecords keeps a copy of every record body so that callers can
// compare re-encoded objects against the bytes they were decoded from.
func WithRawRecords() Option {
	return func(o *options) {
		o.keepRaw = true
	}
}
