// ABOUTME: Query dispatcher: supersedes the previous cycle, picks a rule, debounces, invokes
// ABOUTME: Each cycle ends in an Outcome (matched, no match, or cancelled during debounce)

package plugin

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/mauromedda/flow-plugin-go/internal/eventbus"
)

// OutcomeKind is the terminal state of a query cycle.
type OutcomeKind int

const (
	// Matched means a rule matched and its handler ran.
	Matched OutcomeKind = iota
	// NoMatch means no rule accepted the search text.
	NoMatch
	// CancelledDuringDebounce means a newer query superseded the cycle
	// before its handler started.
	CancelledDuringDebounce
)

func (k OutcomeKind) String() string {
	switch k {
	case Matched:
		return "matched"
	case NoMatch:
		return "no_match"
	case CancelledDuringDebounce:
		return "cancelled"
	default:
		return fmt.Sprintf("OutcomeKind(%d)", int(k))
	}
}

// Outcome reports how one query cycle ended.
type Outcome struct {
	Kind    OutcomeKind
	CycleID string
	Seq     uint64
	// Rule is the position of the matched rule in try order, -1 for NoMatch.
	Rule        int
	Restriction Restriction
	Results     []Result
	// Err is set when the handler, or normalising its value, failed.
	Err     error
	Elapsed time.Duration
}

// QueryRequest is one incoming query.
type QueryRequest struct {
	// Seq orders queries by arrival. Zero lets the dispatcher number it.
	Seq      uint64
	Payload  QueryPayload
	Settings Settings
}

// Dispatcher runs query cycles against a registry. At most one cycle is
// current; starting a cycle cancels the token of the one before it.
type Dispatcher struct {
	registry *Registry
	events   *eventbus.Bus[Outcome]

	mu    sync.Mutex
	token *CancellationToken
	seq   uint64
}

// NewDispatcher returns a dispatcher over r. events may be nil.
func NewDispatcher(r *Registry, events *eventbus.Bus[Outcome]) *Dispatcher {
	return &Dispatcher{registry: r, events: events}
}

// begin installs a fresh token for the cycle numbered seq. A cycle that
// arrives after a newer one already began gets a cancelled token.
func (d *Dispatcher) begin(seq uint64) (*CancellationToken, uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()

	tok := NewCancellationToken()
	if seq == 0 {
		seq = d.seq + 1
	}
	if seq < d.seq {
		tok.Cancel()
		return tok, seq
	}
	if d.token != nil {
		d.token.Cancel()
	}
	d.token = tok
	d.seq = seq
	return tok, seq
}

// Dispatch runs one cycle to completion.
func (d *Dispatcher) Dispatch(ctx context.Context, req QueryRequest) Outcome {
	start := time.Now()
	tok, seq := d.begin(req.Seq)
	out := d.run(ctx, req, tok)
	out.CycleID = uuid.NewString()
	out.Seq = seq
	out.Elapsed = time.Since(start)
	d.events.Publish(out)
	return out
}

func (d *Dispatcher) run(ctx context.Context, req QueryRequest, tok *CancellationToken) Outcome {
	search := norm.NFC.String(req.Payload.Search)
	rule, idx, m, ok := d.registry.match(search)
	if !ok {
		return Outcome{Kind: NoMatch, Rule: -1}
	}

	out := Outcome{Kind: Matched, Rule: idx, Restriction: rule.Restriction}
	delay := rule.Restriction.DebounceDelay()
	if rule.Restriction.Kind() == MatchAlways {
		// Unconditional rules never wait.
		delay = 0
	}
	if !debounce(ctx, tok, delay) {
		out.Kind = CancelledDuringDebounce
		return out
	}

	q := newQuery(req.Payload, search, m, req.Settings)
	v, err := rule.Handler.invoke(ctx, q, tok)
	if err != nil {
		out.Err = err
		return out
	}
	out.Results, out.Err = Normalize(ctx, v)
	return out
}

// debounce waits out delay and reports whether the cycle may proceed.
func debounce(ctx context.Context, tok *CancellationToken, delay time.Duration) bool {
	if tok.IsCancelled() {
		return false
	}
	if delay <= 0 {
		return true
	}

	t := time.NewTimer(delay)
	defer t.Stop()
	select {
	case <-t.C:
		return !tok.IsCancelled()
	case <-tok.Done():
		return false
	case <-ctx.Done():
		return false
	}
}
