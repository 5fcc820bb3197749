// ABOUTME: Search rules, context menus, and actions of the example plugin
// ABOUTME: Rules register from most general to most specific; the registry tries them in reverse

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mauromedda/flow-plugin-go/internal/log"
	"github.com/mauromedda/flow-plugin-go/pkg/plugin"
)

var commands = []plugin.Result{
	{Title: "help", Subtitle: "List what this plugin understands", AutocompleteText: "help"},
	{Title: "greet", Subtitle: "greet <name>", AutocompleteText: "greet "},
	{Title: "sum", Subtitle: "<a> + <b>", AutocompleteText: "1 + 2"},
	{Title: "slow", Subtitle: "slow <text>: debounced lookup", AutocompleteText: "slow "},
}

var sumPattern = plugin.MustRegex(`(?P<a>-?\d+)\s*\+\s*(?P<b>-?\d+)\s*$`, plugin.DefaultRegexFlags)

func newRegistry() *plugin.Registry {
	return plugin.NewRegistry().
		Search(plugin.Always(), plugin.Unary(searchCommands)).
		Search(plugin.EqualTo("help"), plugin.Nullary(help)).
		Search(plugin.StartsWith("greet ", plugin.MinLength(len("greet ")+1)), plugin.Unary(greet)).
		Search(sumPattern, plugin.Unary(sum)).
		Search(plugin.StartsWith("slow ", plugin.Debounce(300*time.Millisecond)), plugin.Binary(slow)).
		ContextMenu("greetings", greetingsMenu).
		OnInit(func(_ context.Context, md plugin.Metadata) error {
			log.Debug("example plugin running from %s", md.PluginDirectory)
			return nil
		})
}

func searchCommands(_ context.Context, q plugin.Query) (any, error) {
	return plugin.Rank(q.Search, commands), nil
}

func help(context.Context) (any, error) {
	lines := make([]string, len(commands))
	for i, c := range commands {
		lines[i] = c.Title + ": " + c.Subtitle
	}
	return lines, nil
}

func greet(_ context.Context, q plugin.Query) (any, error) {
	name := q.Search
	return plugin.Result{
		Title:       "Hello, " + name + "!",
		Subtitle:    "Press enter to say it out loud",
		Action:      plugin.PluginAction("greet", name),
		ContextMenu: plugin.MenuRef("greetings", name),
	}, nil
}

func sum(_ context.Context, q plugin.Query) (any, error) {
	a, err := strconv.Atoi(q.Group("a"))
	if err != nil {
		return nil, fmt.Errorf("left operand: %w", err)
	}
	b, err := strconv.Atoi(q.Group("b"))
	if err != nil {
		return nil, fmt.Errorf("right operand: %w", err)
	}
	total := strconv.Itoa(a + b)
	return plugin.Result{
		Title:    total,
		Subtitle: fmt.Sprintf("%d + %d, enter copies the sum", a, b),
		CopyText: total,
		Action:   plugin.HostAction("CopyToClipboard", total, false, true),
	}, nil
}

// slow stands in for a lookup that is too expensive to run per keystroke.
func slow(_ context.Context, q plugin.Query, tok *plugin.CancellationToken) (any, error) {
	words := q.SearchTerms
	items := make([]plugin.Deferred, 0, len(words))
	for _, w := range words {
		items = append(items, func(ctx context.Context) (any, error) {
			select {
			case <-time.After(50 * time.Millisecond):
			case <-tok.Done():
				return nil, nil
			case <-ctx.Done():
				return nil, ctx.Err()
			}
			return plugin.Result{
				Title:       strings.ToUpper(w),
				Subtitle:    fmt.Sprintf("%d characters", len([]rune(w))),
				ContextMenu: plugin.InlineMenu(plugin.Result{Title: strings.ToLower(w), CopyText: w}),
			}, nil
		})
	}
	return items, nil
}

func greetingsMenu(_ context.Context, args []json.RawMessage) (any, error) {
	var name string
	if len(args) > 0 {
		if err := json.Unmarshal(args[0], &name); err != nil {
			return nil, fmt.Errorf("greetings menu: %w", err)
		}
	}
	return []plugin.Result{
		{Title: "Good morning, " + name, Action: plugin.HostAction("ChangeQuery", "greet "+name, true).DontHide()},
		{Title: "Copy name", CopyText: name, Action: plugin.HostAction("CopyToClipboard", name, false, true)},
	}, nil
}

// registerActions adds the actions that call back into the host.
func registerActions(r *plugin.Registry, api *plugin.HostAPI) {
	r.Action("greet", greetAction(api))
}

func greetAction(api *plugin.HostAPI) plugin.ActionHandler {
	return func(ctx context.Context, args []json.RawMessage) (bool, error) {
		var name string
		if len(args) > 0 {
			_ = json.Unmarshal(args[0], &name)
		}
		if err := api.ShowMsg(ctx, "Hello", name, ""); err != nil {
			return false, err
		}
		return true, nil
	}
}
