// ABOUTME: JSON-RPC error object, standard error codes, and sentinel errors
// ABOUTME: Error tolerates hosts that send a bare string in the "error" slot

package jsonrpc

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Standard JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
)

// ErrClosed is returned by Call and Notify once the input stream has ended.
var ErrClosed = errors.New("jsonrpc: connection closed")

// Error is a JSON-RPC error object. It doubles as a Go error so a failed
// outgoing call surfaces the host's error to the caller unchanged.
type Error struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("jsonrpc error %d: %s", e.Code, e.Message)
}

// UnmarshalJSON accepts either an error object or a plain string.
func (e *Error) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*e = Error{Code: CodeInternalError, Message: text}
		return nil
	}

	type plain Error
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*e = Error(p)
	return nil
}

// NewInternalError returns an Error with the internal-error code.
func NewInternalError(msg string) *Error {
	return &Error{Code: CodeInternalError, Message: msg}
}

