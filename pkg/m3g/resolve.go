package m3g

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// linkResult is what linking one object produced.
type linkResult struct {
	err   *DecodeError
	diags []*DecodeError
}

// link binds every reference field in the closed table to its target.
// It runs strictly after decode so forward references resolve like any
// other. Objects are independent, so with parallel > 1 they are linked
// concurrently; results are merged in table order so the first error and
// the diagnostics order do not depend on scheduling.
func link(ctx context.Context, t *Table, o options) ([]*DecodeError, error) {
	if !t.Closed() {
		return nil, fmt.Errorf("m3g: link on open table")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	results := make([]linkResult, t.Len())
	if o.parallel <= 1 {
		for i, obj := range t.All() {
			results[i-1] = linkObject(t, i, obj, o.mode)
		}
	} else {
		var g errgroup.Group
		g.SetLimit(o.parallel)
		for i, obj := range t.All() {
			g.Go(func() error {
				results[i-1] = linkObject(t, i, obj, o.mode)
				return nil
			})
		}
		g.Wait()
	}

	var diags []*DecodeError
	for _, res := range results {
		if res.err != nil {
			return nil, res.err
		}
		for _, d := range res.diags {
			o.logger.Warn("reference nulled",
				zap.Uint32("object", d.Object),
				zap.Stringer("type", d.Type),
				zap.String("detail", d.Detail))
		}
		diags = append(diags, res.diags...)
	}
	return diags, nil
}

// linkObject resolves the reference fields of one object. It writes only
// to those fields.
func linkObject(t *Table, idx uint32, obj Object, mode Mode) linkResult {
	var res linkResult
	for n, ref := range obj.refs() {
		err := linkRef(t, idx, obj, n, ref)
		if err == nil {
			continue
		}
		if mode == Strict {
			res.err = err
			return res
		}
		*ref = Ref{}
		res.diags = append(res.diags, err)
	}
	return res
}

// bind gives every reference in a hand-built table both an index and a
// target. References made with RefTo must point into the table; plain
// indices are resolved as in strict decoding.
func bind(t *Table) error {
	for idx, obj := range t.All() {
		for n, ref := range obj.refs() {
			if ref.target != nil {
				i, ok := t.IndexOf(ref.target)
				if !ok {
					return &DecodeError{
						Err:    ErrDanglingReference,
						Offset: -1,
						Object: idx,
						Type:   obj.Type(),
						Detail: fmt.Sprintf("reference field %d points at a %s outside the scene", n, ref.target.Type()),
					}
				}
				ref.Index = i
				continue
			}
			if err := linkRef(t, idx, obj, n, ref); err != nil {
				return err
			}
		}
	}
	return nil
}

func linkRef(t *Table, idx uint32, obj Object, n int, ref *Ref) *DecodeError {
	if ref.Index == 0 {
		return nil
	}
	target, ok := t.Get(ref.Index)
	if !ok {
		return &DecodeError{
			Err:    ErrDanglingReference,
			Offset: -1,
			Object: idx,
			Type:   obj.Type(),
			Detail: fmt.Sprintf("reference field %d points at %d, table holds %d", n, ref.Index, t.Len()),
		}
	}
	ref.target = target
	return nil
}
