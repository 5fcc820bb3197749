// ABOUTME: Response modes deciding what a finished query cycle sends back to the host
// ABOUTME: Legacy answers every cycle with a fixed internal-error payload; Results sends the results

package plugin

import (
	"fmt"
	"strings"

	"github.com/mauromedda/flow-plugin-go/pkg/jsonrpc"
)

// ResponseMode selects the reply to a query that did not fail.
type ResponseMode int

const (
	// LegacyResponses replies to every query with a fixed internal-error
	// payload in the result slot, whatever the cycle produced.
	LegacyResponses ResponseMode = iota
	// ResultResponses replies with {"result": [...]} for matched and
	// unmatched queries and {} for a cycle cancelled during debounce.
	ResultResponses
)

func (m ResponseMode) String() string {
	switch m {
	case LegacyResponses:
		return "legacy"
	case ResultResponses:
		return "results"
	default:
		return fmt.Sprintf("ResponseMode(%d)", int(m))
	}
}

// ParseResponseMode maps a config value to a mode. The empty string means
// legacy.
func ParseResponseMode(s string) (ResponseMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "legacy":
		return LegacyResponses, nil
	case "results":
		return ResultResponses, nil
	}
	return LegacyResponses, fmt.Errorf("unknown response mode %q", s)
}

type queryError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// legacyReply is the payload LegacyResponses sends for every query.
type legacyReply struct {
	Error queryError `json:"error"`
}

type resultsReply struct {
	Result []nativeResult `json:"result"`
}

func newLegacyReply() legacyReply {
	return legacyReply{Error: queryError{Code: jsonrpc.CodeInternalError, Message: "Internal error"}}
}

// reply builds the payload for a cycle that did not fail. natives is the
// wire form of out.Results.
func (m ResponseMode) reply(out Outcome, natives []nativeResult) any {
	if m != ResultResponses {
		return newLegacyReply()
	}
	switch out.Kind {
	case CancelledDuringDebounce:
		return struct{}{}
	case NoMatch:
		return resultsReply{Result: []nativeResult{}}
	}
	if natives == nil {
		natives = []nativeResult{}
	}
	return resultsReply{Result: natives}
}
