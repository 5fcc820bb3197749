// ABOUTME: Action descriptor attached to results, telling the host what activation does
// ABOUTME: Serialises as {method, parameters:[name, data, hide]} via a hand-written easyjson marshaler

package plugin

import (
	"encoding/json"

	"github.com/mailru/easyjson/jwriter"
)

// Callback methods the host invokes when a result with an Action is chosen.
const (
	// HostCallback forwards Method(Data...) back to the host itself.
	HostCallback = "FlowLauncher.Action"
	// PluginCallback runs the plugin action registered under Method.
	PluginCallback = "Plugin.Action"
)

// Action describes what happens when the user activates a result.
type Action struct {
	Callback string
	Method   string
	Data     []any
	// Hide closes the launcher after the action runs.
	Hide bool
}

// HostAction asks the host to call one of its own API methods.
func HostAction(method string, args ...any) *Action {
	return &Action{Callback: HostCallback, Method: method, Data: args, Hide: true}
}

// PluginAction asks the host to call back the plugin action registered
// under name.
func PluginAction(name string, args ...any) *Action {
	return &Action{Callback: PluginCallback, Method: name, Data: args, Hide: true}
}

// DontHide keeps the launcher open after the action runs.
func (a *Action) DontHide() *Action {
	a.Hide = false
	return a
}

// MarshalEasyJSON writes the host's wire shape rather than the field names.
func (a Action) MarshalEasyJSON(w *jwriter.Writer) {
	w.RawString(`{"method":`)
	w.String(a.Callback)
	w.RawString(`,"parameters":[`)
	w.String(a.Method)
	w.RawByte(',')
	if len(a.Data) == 0 {
		w.RawString("[]")
	} else {
		w.Raw(json.Marshal(a.Data))
	}
	w.RawByte(',')
	w.Bool(a.Hide)
	w.RawString("]}")
}

// MarshalJSON implements json.Marshaler.
func (a Action) MarshalJSON() ([]byte, error) {
	w := jwriter.Writer{}
	a.MarshalEasyJSON(&w)
	return w.BuildBytes()
}

// actionCall is the [name, data, hide] tuple the host sends back.
type actionCall struct {
	Name string
	Args []json.RawMessage
	Hide bool
}

// parseActionCall accepts the tuple either as the whole params list or
// wrapped as the first parameter.
func parseActionCall(params []json.RawMessage) (actionCall, bool) {
	params = unwrapTuple(params)
	if len(params) < 2 || len(params) > 3 {
		return actionCall{}, false
	}

	var call actionCall
	if err := json.Unmarshal(params[0], &call.Name); err != nil {
		return actionCall{}, false
	}
	if err := json.Unmarshal(params[1], &call.Args); err != nil || call.Args == nil {
		return actionCall{}, false
	}
	if len(params) == 3 && string(params[2]) != "null" {
		if err := json.Unmarshal(params[2], &call.Hide); err != nil {
			return actionCall{}, false
		}
	}
	return call, true
}

// unwrapTuple returns the inner array when params holds a single array.
func unwrapTuple(params []json.RawMessage) []json.RawMessage {
	if len(params) != 1 || len(params[0]) == 0 || params[0][0] != '[' {
		return params
	}
	var inner []json.RawMessage
	if err := json.Unmarshal(params[0], &inner); err != nil {
		return params
	}
	return inner
}
