// ABOUTME: Plugin runtime wiring the registry and dispatcher to the host connection
// ABOUTME: Serves initialize, query, context_menu, Plugin.Action, and FlowLauncher.Action

package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"sync"
	"time"

	"github.com/mauromedda/flow-plugin-go/internal/eventbus"
	"github.com/mauromedda/flow-plugin-go/internal/log"
	"github.com/mauromedda/flow-plugin-go/pkg/jsonrpc"
)

// Methods the host calls on the plugin.
const (
	MethodInitialize   = "initialize"
	MethodQuery        = "query"
	MethodContextMenu  = "context_menu"
	MethodPluginAction = PluginCallback
	MethodHostAction   = HostCallback
)

// Options configures a Plugin.
type Options struct {
	Mode ResponseMode
	// ContextMenuTTL bounds how long inline context menus stay available.
	ContextMenuTTL time.Duration
}

// Plugin serves one host connection.
type Plugin struct {
	conn       *jsonrpc.Conn
	registry   *Registry
	dispatcher *Dispatcher
	events     *eventbus.Bus[Outcome]
	menus      *menuStore
	mode       ResponseMode
	api        *HostAPI

	mu          sync.RWMutex
	initialized bool
	meta        Metadata
	settings    Settings
}

var errMissingPayload = errors.New("missing payload")

type hideReply struct {
	Hide bool `json:"hide"`
}

// New registers the plugin's methods on conn.
func New(conn *jsonrpc.Conn, reg *Registry, opts Options) *Plugin {
	events := eventbus.New[Outcome]()
	p := &Plugin{
		conn:       conn,
		registry:   reg,
		dispatcher: NewDispatcher(reg, events),
		events:     events,
		menus:      newMenuStore(opts.ContextMenuTTL),
		mode:       opts.Mode,
	}
	p.api = &HostAPI{p: p}
	events.Subscribe(logOutcome)

	conn.OnRequest(MethodInitialize, p.handleInitialize)
	conn.OnRequest(MethodQuery, p.handleQuery)
	conn.OnRequest(MethodContextMenu, p.handleContextMenu)
	conn.OnRequest(MethodPluginAction, p.handlePluginAction)
	conn.OnRequest(MethodHostAction, p.handleHostAction)
	return p
}

// Run serves the connection until the host closes it or ctx is done.
func (p *Plugin) Run(ctx context.Context) error {
	sweepCtx, stop := context.WithCancel(ctx)
	defer stop()
	go p.menus.sweep(sweepCtx)
	return p.conn.Listen(ctx)
}

// Metadata returns the host's description of the plugin. ok is false
// before initialize.
func (p *Plugin) Metadata() (md Metadata, ok bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.meta.clone(), p.initialized
}

// Settings returns a copy of the settings sent with the latest query.
func (p *Plugin) Settings() Settings {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return maps.Clone(p.settings)
}

// API returns the typed host API.
func (p *Plugin) API() *HostAPI { return p.api }

// Subscribe calls fn with the outcome of every finished query cycle.
func (p *Plugin) Subscribe(fn func(Outcome)) (unsubscribe func()) {
	return p.events.Subscribe(fn)
}

func (p *Plugin) handleInitialize(ctx context.Context, in *jsonrpc.Inbound) (any, error) {
	if len(in.Params) == 0 {
		return nil, fmt.Errorf("initialize: %w", errMissingPayload)
	}
	md, err := decodeMetadata(in.Params[0])
	if err != nil {
		return nil, err
	}

	p.mu.Lock()
	first := !p.initialized
	if first {
		p.meta = md
		p.initialized = true
	}
	p.mu.Unlock()

	if !first {
		log.Debug("plugin: ignoring repeated initialize")
		return struct{}{}, nil
	}

	log.Info("plugin: initialized %s %s (%s)", md.Name, md.Version, md.ID)
	defer p.registry.Finalize()
	for _, fn := range p.registry.initializers() {
		if err := fn(ctx, md.clone()); err != nil {
			return nil, fmt.Errorf("plugin initializer: %w", err)
		}
	}
	return struct{}{}, nil
}

func (p *Plugin) handleQuery(ctx context.Context, in *jsonrpc.Inbound) (any, error) {
	if len(in.Params) == 0 {
		return nil, fmt.Errorf("query: %w", errMissingPayload)
	}
	var payload QueryPayload
	if err := json.Unmarshal(in.Params[0], &payload); err != nil {
		return nil, fmt.Errorf("query: %w", err)
	}
	var settings Settings
	if len(in.Params) > 1 {
		if err := json.Unmarshal(in.Params[1], &settings); err != nil {
			return nil, fmt.Errorf("query settings: %w", err)
		}
	}

	p.mu.Lock()
	p.settings = settings
	p.mu.Unlock()

	out := p.dispatcher.Dispatch(ctx, QueryRequest{Seq: in.Seq, Payload: payload, Settings: settings})
	if out.Err != nil {
		return nil, out.Err
	}

	var natives []nativeResult
	if p.mode == ResultResponses {
		natives = toNative(out.Results, p.icon(), p.menus)
	}
	return p.mode.reply(out, natives), nil
}

func (p *Plugin) handleContextMenu(ctx context.Context, in *jsonrpc.Inbound) (any, error) {
	call, ok := parseMenuCall(in.Params)
	if !ok {
		return nil, nil
	}

	var v any
	if call.Name == inlineMenuName {
		results, ok := p.inlineMenu(call.Args)
		if !ok {
			return nil, nil
		}
		v = results
	} else {
		h, ok := p.registry.menu(call.Name)
		if !ok {
			log.Debug("plugin: no context menu named %q", call.Name)
			return nil, nil
		}
		var err error
		if v, err = h(ctx, call.Args); err != nil {
			return nil, err
		}
	}

	results, err := Normalize(ctx, v)
	if err != nil {
		return nil, err
	}
	return resultsReply{Result: toNative(results, p.icon(), p.menus)}, nil
}

func (p *Plugin) inlineMenu(args []json.RawMessage) ([]Result, bool) {
	if len(args) != 1 {
		return nil, false
	}
	var key string
	if err := json.Unmarshal(args[0], &key); err != nil {
		return nil, false
	}
	return p.menus.get(key)
}

func (p *Plugin) handlePluginAction(ctx context.Context, in *jsonrpc.Inbound) (any, error) {
	call, ok := parseActionCall(in.Params)
	if !ok {
		return nil, nil
	}
	h, ok := p.registry.action(call.Name)
	if !ok {
		log.Debug("plugin: no action named %q", call.Name)
		return hideReply{Hide: true}, nil
	}
	hide, err := h(ctx, call.Args)
	if err != nil {
		return nil, err
	}
	return hideReply{Hide: hide}, nil
}

func (p *Plugin) handleHostAction(ctx context.Context, in *jsonrpc.Inbound) (any, error) {
	call, ok := parseActionCall(in.Params)
	if !ok {
		return nil, nil
	}
	args := make([]any, len(call.Args))
	for i, a := range call.Args {
		args[i] = a
	}
	if _, err := p.conn.Call(ctx, call.Name, args...); err != nil {
		return nil, fmt.Errorf("%s: %w", call.Name, err)
	}
	return hideReply{Hide: call.Hide}, nil
}

func (p *Plugin) icon() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.meta.IcoPath
}

// parseMenuCall reads the [name, args] pair of a context_menu request.
func parseMenuCall(params []json.RawMessage) (actionCall, bool) {
	params = unwrapTuple(params)
	if len(params) != 2 {
		return actionCall{}, false
	}
	return parseActionCall(params)
}

func logOutcome(out Outcome) {
	if out.Err != nil {
		log.Warn("query seq=%d cycle=%s rule=%d %s failed after %s: %v",
			out.Seq, out.CycleID, out.Rule, out.Restriction, out.Elapsed, out.Err)
		return
	}
	log.Debug("query seq=%d cycle=%s %s rule=%d %s results=%d in %s",
		out.Seq, out.CycleID, out.Kind, out.Rule, out.Restriction, len(out.Results), out.Elapsed)
}
