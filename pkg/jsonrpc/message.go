// ABOUTME: Line codec for the host protocol: request, response, and error envelopes
// ABOUTME: Decode classifies a line as request, notification, or response; Encode writes one line

package jsonrpc

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// Version is the protocol version stamped on every outgoing envelope.
const Version = "2.0"

// placeholderResult answers requests for methods nobody registered.
var placeholderResult = map[string]string{"hi": "hi"}

// Kind classifies a decoded line.
type Kind int

const (
	// KindRequest is an incoming request that expects a reply.
	KindRequest Kind = iota
	// KindNotification is an incoming request without an id.
	KindNotification
	// KindResponse is a reply (result or error) to one of our requests.
	KindResponse
)

func (k Kind) String() string {
	switch k {
	case KindRequest:
		return "request"
	case KindNotification:
		return "notification"
	case KindResponse:
		return "response"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Message is any single decoded line.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      *int64          `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// Kind reports how the connection should route the message.
func (m *Message) Kind() Kind {
	if m.Method != "" {
		if m.ID == nil {
			return KindNotification
		}
		return KindRequest
	}
	return KindResponse
}

// Request is an outgoing request or notification. A nil ID marks a
// notification.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	ID      *int64 `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

// Response is an outgoing success reply. Result is always present on the
// wire, even when nil.
type Response struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Result  any    `json:"result"`
}

// ErrorResponse is an outgoing failure reply.
type ErrorResponse struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int64  `json:"id"`
	Error   *Error `json:"error"`
}

var errNotEnvelope = errors.New("line is neither a request nor a response")

// Decode parses one line. Lines that are not JSON objects, or objects that
// carry neither a method nor an id, return an error and should be dropped.
func Decode(line []byte) (*Message, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 || line[0] != '{' {
		return nil, errNotEnvelope
	}

	var msg Message
	if err := json.Unmarshal(line, &msg); err != nil {
		return nil, fmt.Errorf("decoding line: %w", err)
	}
	if msg.Method == "" && msg.ID == nil {
		return nil, errNotEnvelope
	}
	return &msg, nil
}

// SplitParams returns the positional parameters of a request. An absent or
// null params field yields none; a non-array value is treated as a single
// positional argument.
func SplitParams(raw json.RawMessage) ([]json.RawMessage, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}
	if raw[0] != '[' {
		return []json.RawMessage{raw}, nil
	}

	var params []json.RawMessage
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, fmt.Errorf("decoding params: %w", err)
	}
	return params, nil
}

// Encode writes v as a single line terminated by '\n'.
func Encode(w io.Writer, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding message: %w", err)
	}
	data = append(data, '\n')
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("writing message: %w", err)
	}
	return nil
}

func newRequest(id *int64, method string, params []any) *Request {
	if params == nil {
		params = []any{}
	}
	return &Request{JSONRPC: Version, ID: id, Method: method, Params: params}
}

func newResponse(id int64, result any) *Response {
	return &Response{JSONRPC: Version, ID: id, Result: result}
}

func newErrorResponse(id int64, e *Error) *ErrorResponse {
	return &ErrorResponse{JSONRPC: Version, ID: id, Error: e}
}
