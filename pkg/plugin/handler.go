// ABOUTME: Search handler wrappers with an explicit arity chosen at registration
// ABOUTME: Deferred values let a handler hand back work the dispatcher awaits

package plugin

import (
	"context"
	"fmt"
)

// Arity says which arguments a search handler takes.
type Arity int

const (
	TakesNothing Arity = iota
	TakesQuery
	TakesQueryAndToken
)

func (a Arity) String() string {
	switch a {
	case TakesNothing:
		return "nothing"
	case TakesQuery:
		return "query"
	case TakesQueryAndToken:
		return "query+token"
	default:
		return fmt.Sprintf("Arity(%d)", int(a))
	}
}

// Deferred is a result that is not ready yet. The dispatcher calls it and
// uses whatever it returns in its place; a slice may mix Deferred values
// with ready ones.
type Deferred func(ctx context.Context) (any, error)

// SearchHandler produces results for a matched query. Build one with
// Nullary, Unary, or Binary.
type SearchHandler struct {
	arity   Arity
	nothing func(context.Context) (any, error)
	query   func(context.Context, Query) (any, error)
	both    func(context.Context, Query, *CancellationToken) (any, error)
}

// Nullary wraps a handler that ignores the query.
func Nullary(fn func(ctx context.Context) (any, error)) SearchHandler {
	return SearchHandler{arity: TakesNothing, nothing: fn}
}

// Unary wraps a handler that takes the query.
func Unary(fn func(ctx context.Context, q Query) (any, error)) SearchHandler {
	return SearchHandler{arity: TakesQuery, query: fn}
}

// Binary wraps a handler that takes the query and the cycle's token.
func Binary(fn func(ctx context.Context, q Query, tok *CancellationToken) (any, error)) SearchHandler {
	return SearchHandler{arity: TakesQueryAndToken, both: fn}
}

// Arity returns the declared arity.
func (h SearchHandler) Arity() Arity { return h.arity }

func (h SearchHandler) valid() bool {
	switch h.arity {
	case TakesNothing:
		return h.nothing != nil
	case TakesQuery:
		return h.query != nil
	case TakesQueryAndToken:
		return h.both != nil
	}
	return false
}

func (h SearchHandler) invoke(ctx context.Context, q Query, tok *CancellationToken) (any, error) {
	switch h.arity {
	case TakesNothing:
		return h.nothing(ctx)
	case TakesQuery:
		return h.query(ctx, q)
	case TakesQueryAndToken:
		return h.both(ctx, q, tok)
	}
	return nil, fmt.Errorf("search handler with unknown arity %v", h.arity)
}
