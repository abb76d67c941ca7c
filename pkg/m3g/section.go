package m3g

import (
	"bufio"
	"bytes"
	"compress/zlib"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"hash/adler32"
	"io"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Signature is the file identifier every M3G file starts with.
var Signature = [12]byte{0xAB, 0x4A, 0x53, 0x52, 0x31, 0x38, 0x34, 0xBB, 0x0D, 0x0A, 0x1A, 0x0A}

const (
	sectionHeaderSize = 9
	checksumSize      = 4
	// sectionOverhead is the part of TotalLength that is not payload.
	sectionOverhead = sectionHeaderSize + checksumSize
)

// Compression is the per-section compression scheme.
type Compression uint8

const (
	CompressionNone Compression = 0
	CompressionZlib Compression = 1
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	}
	return fmt.Sprintf("Compression(%d)", uint8(c))
}

// Section is one framed chunk of the file.
type Section struct {
	Index              int   // 1-based
	Offset             int64 // file offset of the section header
	Compression        Compression
	TotalLength        uint32
	UncompressedLength uint32
	Checksum           uint32

	// Stored is the payload as it appears in the file.
	Stored []byte
	// Payload is the decompressed payload. It is nil until the section
	// has been verified and inflated.
	Payload []byte

	header [sectionHeaderSize]byte
}

// verify checks the Adler-32 checksum over the header and stored payload.
func (s *Section) verify() error {
	h := adler32.New()
	h.Write(s.header[:])
	h.Write(s.Stored)
	if sum := h.Sum32(); sum != s.Checksum {
		return sectionError(ErrChecksumMismatch, s.Index, s.Offset,
			"stored 0x%08x, computed 0x%08x", s.Checksum, sum)
	}
	return nil
}

// inflate fills Payload from Stored.
func (s *Section) inflate() error {
	switch s.Compression {
	case CompressionNone:
		if uint32(len(s.Stored)) != s.UncompressedLength {
			return sectionError(ErrStructuralFraming, s.Index, s.Offset,
				"uncompressed section holds %d bytes, header declares %d", len(s.Stored), s.UncompressedLength)
		}
		s.Payload = s.Stored
		return nil

	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(s.Stored))
		if err != nil {
			e := sectionError(ErrStructuralFraming, s.Index, s.Offset, "bad zlib stream")
			e.Cause = err
			return e
		}
		defer zr.Close()

		// One byte past the declared length is enough to detect excess.
		var buf bytes.Buffer
		n, err := io.Copy(&buf, io.LimitReader(zr, int64(s.UncompressedLength)+1))
		if err != nil {
			e := sectionError(ErrStructuralFraming, s.Index, s.Offset, "inflate failed after %d bytes", n)
			e.Cause = err
			return e
		}
		if n != int64(s.UncompressedLength) {
			return sectionError(ErrStructuralFraming, s.Index, s.Offset,
				"inflated to %d bytes, header declares %d", n, s.UncompressedLength)
		}
		s.Payload = buf.Bytes()
		return nil
	}

	return sectionError(ErrStructuralFraming, s.Index, s.Offset, "compression scheme %d", uint8(s.Compression))
}

// SectionReader iterates the sections of an M3G stream in a single forward
// pass. Every error it returns is fatal.
type SectionReader struct {
	r        *bufio.Reader
	offset   int64
	index    int
	started  bool
	err      error
	parallel int
	log      *zap.Logger
}

// NewSectionReader returns a reader positioned before the file signature.
func NewSectionReader(r io.Reader, opts ...Option) *SectionReader {
	o := buildOptions(opts)
	return &SectionReader{
		r:        bufio.NewReader(r),
		parallel: o.parallel,
		log:      o.logger,
	}
}

// Next returns the next verified and inflated section, or io.EOF once the
// stream is exhausted. ctx is checked before each section.
func (sr *SectionReader) Next(ctx context.Context) (*Section, error) {
	s, err := sr.readRaw(ctx)
	if err != nil {
		return nil, err
	}
	if err := sr.process(s); err != nil {
		sr.err = err
		return nil, err
	}
	return s, nil
}

// ReadAll reads every remaining section. The result is in file order and
// the reported error is the one from the earliest failing section.
func (sr *SectionReader) ReadAll(ctx context.Context) ([]*Section, error) {
	var sections []*Section
	err := sr.Stream(ctx, func(s *Section) error {
		sections = append(sections, s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return sections, nil
}

// Stream hands every remaining section to fn in file order. Up to
// WithParallel sections are verified and inflated ahead of fn, but errors
// surface as a Next loop would report them: fn has seen section i before
// any problem with section i+1 is returned. The first error, from the
// reader or from fn, stops the stream and is returned.
func (sr *SectionReader) Stream(ctx context.Context, fn func(*Section) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	type pending struct {
		s    *Section
		err  error
		done chan struct{}
	}
	queue := make(chan *pending, sr.parallel)
	finished := make(chan struct{})

	go func() {
		defer close(finished)
		defer close(queue)

		var g errgroup.Group
		g.SetLimit(sr.parallel)
		defer g.Wait()

		for {
			s, err := sr.readRaw(ctx)
			if errors.Is(err, io.EOF) {
				return
			}
			p := &pending{s: s, err: err, done: make(chan struct{})}
			if err != nil {
				close(p.done)
			} else {
				g.Go(func() error {
					p.err = sr.process(p.s)
					close(p.done)
					return nil
				})
			}

			select {
			case queue <- p:
			case <-ctx.Done():
				return
			}
			if err != nil {
				return
			}
		}
	}()

	var err error
	for p := range queue {
		<-p.done
		if p.err != nil {
			err = p.err
			break
		}
		if err = fn(p.s); err != nil {
			break
		}
	}
	if err == nil {
		err = ctx.Err()
	}

	// Stop the read-ahead and wait for it so sr is ours again.
	cancel()
	<-finished
	if err != nil {
		sr.err = err
	}
	return err
}

func (sr *SectionReader) process(s *Section) error {
	if err := s.verify(); err != nil {
		return err
	}
	if err := s.inflate(); err != nil {
		return err
	}
	sr.log.Debug("section",
		zap.Int("index", s.Index),
		zap.Int64("offset", s.Offset),
		zap.Stringer("compression", s.Compression),
		zap.Uint32("total_length", s.TotalLength),
		zap.Uint32("uncompressed_length", s.UncompressedLength))
	return nil
}

// readRaw reads the framing of the next section without verifying it.
func (sr *SectionReader) readRaw(ctx context.Context) (*Section, error) {
	if sr.err != nil {
		return nil, sr.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !sr.started {
		if err := sr.readSignature(); err != nil {
			sr.err = err
			return nil, err
		}
		sr.started = true
	}

	s, err := sr.readFrame()
	if err != nil {
		sr.err = err
		return nil, err
	}
	return s, nil
}

func (sr *SectionReader) readSignature() error {
	var sig [len(Signature)]byte
	n, err := io.ReadFull(sr.r, sig[:])
	sr.offset += int64(n)
	if err != nil {
		if n == 0 {
			return sectionError(ErrStructuralFraming, 0, 0, "empty input")
		}
		return sectionError(ErrTruncatedInput, 0, 0, "file signature cut short after %d bytes", n)
	}
	if sig != Signature {
		return sectionError(ErrStructuralFraming, 0, 0, "bad file signature % x", sig[:])
	}
	return nil
}

func (sr *SectionReader) readFrame() (*Section, error) {
	s := &Section{Index: sr.index + 1, Offset: sr.offset}

	n, err := io.ReadFull(sr.r, s.header[:])
	sr.offset += int64(n)
	if err == io.EOF {
		return nil, io.EOF
	}
	if err != nil {
		return nil, sectionError(ErrTruncatedInput, s.Index, s.Offset, "section header cut short after %d bytes", n)
	}
	sr.index++

	s.Compression = Compression(s.header[0])
	s.TotalLength = binary.LittleEndian.Uint32(s.header[1:5])
	s.UncompressedLength = binary.LittleEndian.Uint32(s.header[5:9])

	if s.Compression != CompressionNone && s.Compression != CompressionZlib {
		return nil, sectionError(ErrStructuralFraming, s.Index, s.Offset, "compression scheme %d", s.header[0])
	}
	if s.TotalLength < sectionOverhead {
		return nil, sectionError(ErrStructuralFraming, s.Index, s.Offset,
			"total length %d is shorter than the section framing", s.TotalLength)
	}

	// Copy rather than allocate up front so a hostile length cannot
	// reserve more memory than the input actually holds.
	var buf bytes.Buffer
	want := int64(s.TotalLength - sectionOverhead)
	got, err := io.CopyN(&buf, sr.r, want)
	sr.offset += got
	if err != nil {
		return nil, sectionError(ErrTruncatedInput, s.Index, s.Offset,
			"section payload has %d of %d bytes", got, want)
	}
	s.Stored = buf.Bytes()

	var sum [checksumSize]byte
	n, err = io.ReadFull(sr.r, sum[:])
	sr.offset += int64(n)
	if err != nil {
		return nil, sectionError(ErrTruncatedInput, s.Index, s.Offset, "section checksum cut short")
	}
	s.Checksum = binary.LittleEndian.Uint32(sum[:])
	return s, nil
}
