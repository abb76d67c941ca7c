package main

import (
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/m3g/internal/config"
	"github.com/Faultbox/m3g/internal/logger"
	"github.com/Faultbox/m3g/pkg/m3g"
)

// decode reads path with the configured decode options plus extra.
func (a *app) decode(ctx context.Context, path string, extra ...m3g.Option) (*m3g.Scene, error) {
	opts, err := a.cfg.DecodeOptions(logger.For("decode"))
	if err != nil {
		return nil, err
	}
	scene, err := m3g.DecodeFile(ctx, path, append(opts, extra...)...)
	if err != nil {
		return nil, err
	}
	a.log.Debug("decoded scene",
		zap.String("path", path),
		zap.Int("objects", scene.Len()),
		zap.Int("diagnostics", len(scene.Diagnostics())))
	return scene, nil
}

func (a *app) cmdInfo(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: m3gtool info <file.m3g>")
	}
	path := args[0]

	sections, err := a.sections(ctx, path)
	if err != nil {
		return err
	}
	scene, err := a.decode(ctx, path)
	if err != nil {
		return err
	}

	h := scene.Header
	fmt.Fprintln(a.out, a.style.title.Render(filepath.Base(path)))
	fmt.Fprintf(a.out, "%s %s\n", a.style.label.Render("Version: "), h.Version)
	fmt.Fprintf(a.out, "%s %d bytes\n", a.style.label.Render("Size:    "), h.TotalFileSize)
	fmt.Fprintf(a.out, "%s %d bytes\n", a.style.label.Render("Content: "), h.ApproximateContentSize)
	fmt.Fprintf(a.out, "%s %v\n", a.style.label.Render("External:"), h.HasExternalReferences)
	if h.AuthoringField != "" {
		fmt.Fprintf(a.out, "%s %s\n", a.style.label.Render("Author:  "), h.AuthoringField)
	}
	fmt.Fprintf(a.out, "%s %d\n", a.style.label.Render("Objects: "), scene.Len())
	fmt.Fprintf(a.out, "%s %d\n", a.style.label.Render("Roots:   "), len(scene.Roots()))

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, a.style.label.Render("Sections:"))
	for _, s := range sections {
		fmt.Fprintf(a.out, "  #%d at %-8d %-4s stored %-8d payload %d\n",
			s.Index, s.Offset, s.Compression, len(s.Stored), s.UncompressedLength)
	}

	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, a.style.label.Render("Objects by type:"))

	counts := make(map[m3g.ObjectType]int)
	for _, obj := range scene.Objects() {
		counts[obj.Type()]++
	}
	type kindStat struct {
		kind  m3g.ObjectType
		count int
	}
	var stats []kindStat
	for kind, count := range counts {
		stats = append(stats, kindStat{kind, count})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].count != stats[j].count {
			return stats[i].count > stats[j].count
		}
		return stats[i].kind < stats[j].kind
	})
	for _, s := range stats {
		fmt.Fprintf(a.out, "  %-22s %d\n", a.style.kind.Render(s.kind.String()), s.count)
	}

	a.printDiagnostics(scene)
	return nil
}

// sections frames the file without decoding any records.
func (a *app) sections(ctx context.Context, path string) ([]*m3g.Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening m3g file: %w", err)
	}
	defer f.Close()

	sr := m3g.NewSectionReader(f,
		m3g.WithParallel(a.cfg.Decode.Parallel),
		m3g.WithLogger(logger.For("section")))
	return sr.ReadAll(ctx)
}

func (a *app) printDiagnostics(scene *m3g.Scene) {
	diags := scene.Diagnostics()
	if len(diags) == 0 {
		return
	}
	fmt.Fprintln(a.out)
	fmt.Fprintln(a.out, a.style.warn.Render(fmt.Sprintf("%d problems recovered:", len(diags))))
	for _, d := range diags {
		fmt.Fprintf(a.out, "  %s\n", a.style.warn.Render(d.Error()))
	}
}

func (a *app) cmdDump(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("dump", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	kindName := fs.String("kind", "", "Only list objects of this class (e.g. Mesh)")
	limit := fs.Int("n", 0, "Limit output to N objects (0 = all)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return errors.New("usage: m3gtool dump [-kind K] [-n N] <file.m3g>")
	}

	var kind m3g.ObjectType
	if *kindName != "" {
		k, ok := m3g.ParseObjectType(*kindName)
		if !ok {
			return fmt.Errorf("unknown object class %q", *kindName)
		}
		kind = k
	}

	scene, err := a.decode(ctx, fs.Arg(0))
	if err != nil {
		return err
	}

	count := 0
	for i, obj := range scene.Objects() {
		if *kindName != "" && obj.Type() != kind {
			continue
		}
		fmt.Fprintf(a.out, "%5d  %-22s%s\n", i, a.style.kind.Render(obj.Type().String()), a.describe(obj))
		count++
		if *limit > 0 && count >= *limit {
			break
		}
	}

	if *kindName != "" {
		fmt.Fprintf(os.Stderr, "\n(%d objects matched)\n", count)
	}
	a.printDiagnostics(scene)
	return nil
}

// describe renders the interesting part of one object on a single line.
func (a *app) describe(obj m3g.Object) string {
	switch o := obj.(type) {
	case *m3g.Header:
		return " version " + o.Version.String()
	case *m3g.ExternalReference:
		return " " + o.URI
	case *m3g.Unknown:
		if o.Err != nil {
			return " " + a.style.warn.Render(fmt.Sprintf("%d bytes kept: %v", len(o.Data), o.Err))
		}
		return fmt.Sprintf(" %d bytes kept", len(o.Data))
	}

	var desc string
	if t, ok := obj.(transformable); ok && !t.HasIdentityTransform() {
		p := t.LocalMatrix().TransformPoint([3]float32{})
		desc = fmt.Sprintf(" at (%g, %g, %g)", p[0], p[1], p[2])
	}

	refs := m3g.References(obj)
	if len(refs) == 0 {
		return desc
	}
	parts := make([]string, len(refs))
	for i, r := range refs {
		if r.IsNull() {
			parts[i] = "-"
		} else {
			parts[i] = fmt.Sprint(r.Index)
		}
	}
	return desc + " " + a.style.ref.Render("-> "+strings.Join(parts, " "))
}

// transformable is satisfied by every node and by Texture2D.
type transformable interface {
	HasIdentityTransform() bool
	LocalMatrix() m3g.Matrix
}

func (a *app) cmdVerify(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("usage: m3gtool verify <file.m3g>")
	}

	scene, err := a.decode(ctx, args[0], m3g.WithRawRecords())
	if err != nil {
		return err
	}

	var bad int
	for i, obj := range scene.Objects() {
		raw, _ := scene.RawRecord(i)
		rec, err := m3g.EncodeObject(obj)
		if err != nil {
			bad++
			fmt.Fprintf(a.out, "%5d  %-22s %s\n", i, obj.Type(), a.style.err.Render(err.Error()))
			continue
		}
		// Skip the tag and length; raw holds the body only.
		if body := rec[5:]; !bytes.Equal(body, raw) {
			bad++
			fmt.Fprintf(a.out, "%5d  %-22s %s\n", i, obj.Type(),
				a.style.err.Render(fmt.Sprintf("re-encodes to %d bytes, stored %d", len(body), len(raw))))
		}
	}

	if bad > 0 {
		return fmt.Errorf("%d of %d records do not round-trip", bad, scene.Len())
	}
	fmt.Fprintln(a.out, a.style.ok.Render(fmt.Sprintf("OK: %d records round-trip", scene.Len())))
	return nil
}

func (a *app) cmdRewrite(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("rewrite", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	store := fs.Bool("store", !a.cfg.Encode.Compress, "Write the object section uncompressed")
	level := fs.Int("level", a.cfg.Encode.Level, "zlib level, -2 to 9")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return errors.New("usage: m3gtool rewrite [-store] [-level N] <in.m3g> <out.m3g>")
	}
	in, out := fs.Arg(0), fs.Arg(1)

	cfg := *a.cfg
	cfg.Encode.Compress = !*store
	cfg.Encode.Level = *level
	if err := cfg.Validate(); err != nil {
		return err
	}

	scene, err := a.decode(ctx, in)
	if err != nil {
		return err
	}
	if err := m3g.EncodeFile(out, scene, cfg.EncodeOptions()...); err != nil {
		return err
	}

	info, err := os.Stat(out)
	if err != nil {
		return err
	}
	a.log.Info("rewrote scene", zap.String("in", in), zap.String("out", out), zap.Bool("compressed", cfg.Encode.Compress))
	fmt.Fprintf(a.out, "Wrote: %s (%d objects, %d bytes)\n", out, scene.Len(), info.Size())
	return nil
}

func (a *app) cmdConfig(args []string) error {
	path := filepath.Join(config.ConfigDir(), config.FileName)
	save := a.cfg.Save
	if len(args) > 0 {
		path = args[0]
		save = func() error { return a.cfg.SaveTo(path) }
	}
	if err := save(); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	fmt.Fprintf(a.out, "Saved: %s\n", path)
	return nil
}
