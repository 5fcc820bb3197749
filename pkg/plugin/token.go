// ABOUTME: One-shot cancellation flag handed to search handlers for each query cycle
// ABOUTME: A newer query cancels the previous cycle's token; tokens never reset

package plugin

import "sync"

// CancellationToken signals that the query cycle it belongs to has been
// superseded. Handlers poll IsCancelled or select on Done; nothing is
// interrupted forcibly.
type CancellationToken struct {
	once sync.Once
	done chan struct{}
}

// NewCancellationToken returns a live token.
func NewCancellationToken() *CancellationToken {
	return &CancellationToken{done: make(chan struct{})}
}

// Cancel marks the token cancelled. Subsequent calls do nothing.
func (t *CancellationToken) Cancel() {
	t.once.Do(func() { close(t.done) })
}

// IsCancelled reports whether Cancel has been called.
func (t *CancellationToken) IsCancelled() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}

// Done returns a channel closed on cancellation.
func (t *CancellationToken) Done() <-chan struct{} {
	return t.done
}
