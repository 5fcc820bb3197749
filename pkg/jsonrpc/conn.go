// ABOUTME: Duplex JSON-RPC connection over a line-delimited reader/writer pair
// ABOUTME: Correlates our requests with host replies and serves host requests concurrently

package jsonrpc

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mauromedda/flow-plugin-go/internal/log"
)

// DefaultMaxLineBytes caps a single incoming line. Longer lines are dropped.
const DefaultMaxLineBytes = 10 * 1024 * 1024 // 10MB

var errLineTooLong = errors.New("line exceeds maximum length")

// Inbound is an incoming request as seen by a Handler.
type Inbound struct {
	// Seq is the arrival order of the request on this connection, starting at 1.
	Seq    uint64
	ID     *int64
	Method string
	Params []json.RawMessage
}

// IsNotification reports whether the host expects no reply.
func (in *Inbound) IsNotification() bool { return in.ID == nil }

// Handler serves one incoming method. The returned value becomes the
// "result" of the reply; a returned error becomes an error reply.
type Handler func(ctx context.Context, in *Inbound) (any, error)

// Option configures a Conn.
type Option func(*Conn)

// WithMaxLineBytes sets the longest incoming line the connection accepts.
func WithMaxLineBytes(n int) Option {
	return func(c *Conn) {
		if n > 0 {
			c.maxLine = n
		}
	}
}

// WithCallTimeout bounds every Call. Zero (the default) waits for the host
// indefinitely.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Conn) { c.callTimeout = d }
}

// Conn is one end of the host protocol.
type Conn struct {
	r           io.Reader
	maxLine     int
	callTimeout time.Duration

	wmu sync.Mutex
	w   *bufio.Writer

	mu       sync.Mutex
	nextID   int64
	pending  map[int64]chan *Message
	handlers map[string]Handler

	seq       atomic.Uint64
	inflight  sync.WaitGroup
	done      chan struct{}
	closeOnce sync.Once
}

// New creates a connection reading lines from r and writing lines to w.
func New(r io.Reader, w io.Writer, opts ...Option) *Conn {
	c := &Conn{
		r:        r,
		maxLine:  DefaultMaxLineBytes,
		w:        bufio.NewWriter(w),
		pending:  make(map[int64]chan *Message),
		handlers: make(map[string]Handler),
		done:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// OnRequest registers the handler for method. The last registration wins.
func (c *Conn) OnRequest(method string, h Handler) {
	c.mu.Lock()
	c.handlers[method] = h
	c.mu.Unlock()
}

// Listen reads lines until the input ends or ctx is done. Lines that fail
// to decode are dropped. When input ends, pending calls fail with ErrClosed
// and Listen waits for in-flight handlers to reply before returning.
func (c *Conn) Listen(ctx context.Context) error {
	defer func() {
		c.close()
		c.inflight.Wait()
	}()

	br := bufio.NewReaderSize(c.r, c.maxLine)
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		line, err := readLine(br)
		if errors.Is(err, errLineTooLong) {
			log.Warn("jsonrpc: dropping line longer than %d bytes", c.maxLine)
			continue
		}
		if len(line) > 0 {
			c.process(ctx, line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return fmt.Errorf("reading input: %w", err)
		}
	}
}

// Call sends a request and waits for the matching reply. A reply carrying
// an error is returned as *Error.
func (c *Conn) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if c.isClosed() {
		return nil, ErrClosed
	}

	ch := make(chan *Message, 1)
	c.mu.Lock()
	id := c.nextID
	c.nextID++
	c.pending[id] = ch
	c.mu.Unlock()

	if err := c.write(newRequest(&id, method, params)); err != nil {
		c.forget(id)
		return nil, fmt.Errorf("calling %s: %w", method, err)
	}

	if c.callTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.callTimeout)
		defer cancel()
	}

	select {
	case msg := <-ch:
		if msg.Error != nil {
			return nil, msg.Error
		}
		return msg.Result, nil
	case <-ctx.Done():
		c.forget(id)
		return nil, ctx.Err()
	case <-c.done:
		c.forget(id)
		return nil, ErrClosed
	}
}

// Notify sends a request without an id and returns without waiting.
func (c *Conn) Notify(method string, params ...any) error {
	if c.isClosed() {
		return ErrClosed
	}
	return c.write(newRequest(nil, method, params))
}

// Pending returns the number of calls still waiting for a reply.
func (c *Conn) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

func (c *Conn) process(ctx context.Context, line []byte) {
	msg, err := Decode(line)
	if err != nil {
		log.Debug("jsonrpc: dropping line: %v", err)
		return
	}

	if msg.Kind() == KindResponse {
		c.resolve(msg)
		return
	}

	params, err := SplitParams(msg.Params)
	if err != nil {
		log.Debug("jsonrpc: dropping %s: %v", msg.Method, err)
		return
	}

	in := &Inbound{
		Seq:    c.seq.Add(1),
		ID:     msg.ID,
		Method: msg.Method,
		Params: params,
	}
	c.inflight.Add(1)
	go func() {
		defer c.inflight.Done()
		c.serve(ctx, in)
	}()
}

// resolve hands a reply to its waiting caller exactly once.
func (c *Conn) resolve(msg *Message) {
	c.mu.Lock()
	ch, ok := c.pending[*msg.ID]
	if ok {
		delete(c.pending, *msg.ID)
	}
	c.mu.Unlock()

	if !ok {
		log.Debug("jsonrpc: ignoring reply for unknown id %d", *msg.ID)
		return
	}
	ch <- msg
}

func (c *Conn) serve(ctx context.Context, in *Inbound) {
	c.mu.Lock()
	h, ok := c.handlers[in.Method]
	c.mu.Unlock()

	if !ok {
		if !in.IsNotification() {
			c.reply(*in.ID, placeholderResult)
		}
		return
	}

	result, err := invoke(ctx, h, in)
	if in.IsNotification() {
		if err != nil {
			log.Warn("jsonrpc: notification %s failed: %v", in.Method, err)
		}
		return
	}
	if err != nil {
		log.Warn("jsonrpc: %s failed: %v", in.Method, err)
		// Every handler failure is reported as an internal error, including
		// wrapped *Error values from the host.
		c.replyError(*in.ID, NewInternalError(err.Error()))
		return
	}
	c.reply(*in.ID, result)
}

// invoke runs h, turning a panic into an ordinary error.
func invoke(ctx context.Context, h Handler, in *Inbound) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v", r)
		}
	}()
	return h(ctx, in)
}

func (c *Conn) reply(id int64, result any) {
	if err := c.write(newResponse(id, result)); err != nil {
		log.Warn("jsonrpc: reply %d: %v", id, err)
		c.replyError(id, NewInternalError(err.Error()))
	}
}

func (c *Conn) replyError(id int64, e *Error) {
	if err := c.write(newErrorResponse(id, e)); err != nil {
		log.Error("jsonrpc: error reply %d: %v", id, err)
	}
}

// write emits one complete line and flushes it.
func (c *Conn) write(v any) error {
	c.wmu.Lock()
	defer c.wmu.Unlock()
	if err := Encode(c.w, v); err != nil {
		return err
	}
	return c.w.Flush()
}

func (c *Conn) forget(id int64) {
	c.mu.Lock()
	delete(c.pending, id)
	c.mu.Unlock()
}

func (c *Conn) close() {
	c.closeOnce.Do(func() { close(c.done) })
}

func (c *Conn) isClosed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

// readLine returns the next line without its terminator. A line longer than
// the reader's buffer is consumed and reported as errLineTooLong.
func readLine(br *bufio.Reader) ([]byte, error) {
	line, err := br.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = br.ReadSlice('\n')
		}
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, errLineTooLong
	}
	// ReadSlice's buffer is reused by the next read.
	return append([]byte(nil), line...), err
}
