// ABOUTME: Normalises whatever a handler returns into a flat list of results
// ABOUTME: Scalars become titled results, nils are dropped, deferred values are awaited concurrently

package plugin

import (
	"context"
	"fmt"
	"slices"

	"golang.org/x/sync/errgroup"
)

// Normalize converts a handler's return value into results. Accepted
// values: nil, Result, *Result, strings, numbers, bools, fmt.Stringer,
// Deferred, and slices of these.
func Normalize(ctx context.Context, v any) ([]Result, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case Deferred:
		return await(ctx, x)
	case func(context.Context) (any, error):
		return await(ctx, x)
	case Result:
		return []Result{x}, nil
	case *Result:
		if x == nil {
			return nil, nil
		}
		return []Result{*x}, nil
	case []Result:
		return slices.Clone(x), nil
	case []*Result:
		out := make([]Result, 0, len(x))
		for _, r := range x {
			if r != nil {
				out = append(out, *r)
			}
		}
		return out, nil
	case []string:
		out := make([]Result, len(x))
		for i, s := range x {
			out[i] = Result{Title: s}
		}
		return out, nil
	case []Deferred:
		items := make([]any, len(x))
		for i, d := range x {
			items[i] = d
		}
		return normalizeList(ctx, items)
	case []any:
		return normalizeList(ctx, x)
	}

	if title, ok := scalarTitle(v); ok {
		return []Result{{Title: title}}, nil
	}
	return nil, fmt.Errorf("unsupported search result type %T", v)
}

func await(ctx context.Context, d Deferred) ([]Result, error) {
	if d == nil {
		return nil, nil
	}
	v, err := d(ctx)
	if err != nil {
		return nil, err
	}
	return Normalize(ctx, v)
}

// normalizeList keeps item order while running deferred items concurrently.
func normalizeList(ctx context.Context, items []any) ([]Result, error) {
	parts := make([][]Result, len(items))
	g, gctx := errgroup.WithContext(ctx)

	var firstErr error
	for i, item := range items {
		d, deferred := asDeferred(item)
		if deferred {
			g.Go(func() error {
				rs, err := await(gctx, d)
				parts[i] = rs
				return err
			})
			continue
		}
		if firstErr != nil {
			continue
		}
		rs, err := Normalize(ctx, item)
		if err != nil {
			firstErr = err
			continue
		}
		parts[i] = rs
	}

	if err := g.Wait(); err != nil && firstErr == nil {
		firstErr = err
	}
	if firstErr != nil {
		return nil, firstErr
	}
	return slices.Concat(parts...), nil
}

func asDeferred(v any) (Deferred, bool) {
	switch x := v.(type) {
	case Deferred:
		return x, x != nil
	case func(context.Context) (any, error):
		return x, x != nil
	}
	return nil, false
}

func scalarTitle(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case bool, int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64, float32, float64:
		return fmt.Sprint(x), true
	case fmt.Stringer:
		return x.String(), true
	}
	return "", false
}
