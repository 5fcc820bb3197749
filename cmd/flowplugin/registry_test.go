// ABOUTME: Tests for the example plugin's search rules through the dispatcher
// ABOUTME: Confirms which rule answers each query once the registry is finalized

package main

import (
	"context"
	"testing"

	"github.com/mauromedda/flow-plugin-go/pkg/plugin"
)

func dispatch(t *testing.T, d *plugin.Dispatcher, search string) plugin.Outcome {
	t.Helper()
	out := d.Dispatch(context.Background(), plugin.QueryRequest{
		Payload: plugin.QueryPayload{RawQuery: "fp " + search, Search: search, ActionKeyword: "fp"},
	})
	if out.Err != nil {
		t.Fatalf("query %q: %v", search, out.Err)
	}
	return out
}

func TestExampleRegistry(t *testing.T) {
	t.Parallel()

	reg := newRegistry()
	reg.Finalize()
	d := plugin.NewDispatcher(reg, nil)

	tests := []struct {
		search    string
		wantKind  plugin.MatchKind
		wantTitle string
	}{
		{search: "help", wantKind: plugin.MatchEqualTo, wantTitle: "help: List what this plugin understands"},
		{search: "greet Ada", wantKind: plugin.MatchStartsWith, wantTitle: "Hello, Ada!"},
		{search: "12 + 30", wantKind: plugin.MatchRegex, wantTitle: "42"},
		{search: "-2+2", wantKind: plugin.MatchRegex, wantTitle: "0"},
		{search: "gre", wantKind: plugin.MatchAlways, wantTitle: "greet"},
	}

	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			out := dispatch(t, d, tt.search)
			if out.Kind != plugin.Matched || out.Restriction.Kind() != tt.wantKind {
				t.Fatalf("outcome %v via %v; want matched via %v", out.Kind, out.Restriction, tt.wantKind)
			}
			if len(out.Results) == 0 || out.Results[0].Title != tt.wantTitle {
				t.Errorf("first result = %+v; want title %q", out.Results, tt.wantTitle)
			}
		})
	}
}

func TestExampleRegistry_GreetNeedsAName(t *testing.T) {
	t.Parallel()

	reg := newRegistry()
	reg.Finalize()
	out := dispatch(t, plugin.NewDispatcher(reg, nil), "greet ")
	if out.Restriction.Kind() == plugin.MatchStartsWith {
		t.Errorf("greet rule accepted an empty name")
	}
}

func TestExampleRegistry_SlowSplitsTerms(t *testing.T) {
	t.Parallel()

	reg := newRegistry()
	reg.Finalize()
	out := dispatch(t, plugin.NewDispatcher(reg, nil), "slow one two")
	if len(out.Results) != 2 || out.Results[0].Title != "ONE" || out.Results[1].Title != "TWO" {
		t.Errorf("results = %+v", out.Results)
	}
	if out.Results[0].ContextMenu == nil {
		t.Error("slow results should carry an inline context menu")
	}
}
