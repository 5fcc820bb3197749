// ABOUTME: Ordered search rule registry plus named context menus, actions, and initializers
// ABOUTME: Finalize reverses the rule order once so later registrations are tried first

package plugin

import (
	"context"
	"encoding/json"
	"slices"
	"sync"
)

// Rule pairs a restriction with the handler it guards.
type Rule struct {
	Restriction Restriction
	Handler     SearchHandler
}

// MenuHandler builds a context menu from the arguments recorded by MenuRef.
// It may return any value a search handler may return.
type MenuHandler func(ctx context.Context, args []json.RawMessage) (any, error)

// ActionHandler runs a plugin action. Returning false keeps the launcher
// open.
type ActionHandler func(ctx context.Context, args []json.RawMessage) (bool, error)

// InitFunc runs once after the host's initialize request has been read.
type InitFunc func(ctx context.Context, md Metadata) error

// Registry holds everything a plugin declares before it starts serving.
// Rules are append-only until Finalize and read-only afterwards.
type Registry struct {
	mu        sync.RWMutex
	rules     []Rule
	finalized bool
	menus     map[string]MenuHandler
	actions   map[string]ActionHandler
	inits     []InitFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		menus:   make(map[string]MenuHandler),
		actions: make(map[string]ActionHandler),
	}
}

// Search appends a rule. It panics if the registry is finalized or the
// handler was not built with Nullary, Unary, or Binary.
func (r *Registry) Search(res Restriction, h SearchHandler) *Registry {
	if !h.valid() {
		panic("plugin: Search requires a handler built with Nullary, Unary, or Binary")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		panic("plugin: Search called after Finalize")
	}
	r.rules = append(r.rules, Rule{Restriction: res, Handler: h})
	return r
}

// ContextMenu registers a named context menu. The last registration wins.
func (r *Registry) ContextMenu(name string, h MenuHandler) *Registry {
	r.mu.Lock()
	r.menus[name] = h
	r.mu.Unlock()
	return r
}

// Action registers a named plugin action. The last registration wins.
func (r *Registry) Action(name string, h ActionHandler) *Registry {
	r.mu.Lock()
	r.actions[name] = h
	r.mu.Unlock()
	return r
}

// OnInit registers a function to run during initialize.
func (r *Registry) OnInit(fn InitFunc) *Registry {
	r.mu.Lock()
	r.inits = append(r.inits, fn)
	r.mu.Unlock()
	return r
}

// Finalize reverses the rule order. Only the first call has an effect.
func (r *Registry) Finalize() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.finalized {
		return
	}
	slices.Reverse(r.rules)
	r.finalized = true
}

// Finalized reports whether Finalize has run.
func (r *Registry) Finalized() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.finalized
}

// Rules returns the rules in the order they are tried.
func (r *Registry) Rules() []Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.rules)
}

// match returns the first rule satisfied by search and its position.
func (r *Registry) match(search string) (Rule, int, match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i, rule := range r.rules {
		if m, ok := rule.Restriction.match(search); ok {
			return rule, i, m, true
		}
	}
	return Rule{}, -1, match{}, false
}

func (r *Registry) menu(name string) (MenuHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.menus[name]
	return h, ok
}

func (r *Registry) action(name string) (ActionHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.actions[name]
	return h, ok
}

func (r *Registry) initializers() []InitFunc {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.inits)
}
