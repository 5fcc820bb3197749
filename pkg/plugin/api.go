// ABOUTME: Typed wrappers over the host's public API, called as JSON-RPC requests
// ABOUTME: Every call fails with ErrNotInitialized until the host sent initialize

package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNotInitialized is returned by host API calls made before initialize.
var ErrNotInitialized = errors.New("plugin: host has not initialized the plugin")

// HostAPI calls back into the launcher.
type HostAPI struct {
	p *Plugin
}

// Call sends an arbitrary host API request and returns its raw result.
func (a *HostAPI) Call(ctx context.Context, method string, params ...any) (json.RawMessage, error) {
	if _, ok := a.p.Metadata(); !ok {
		return nil, ErrNotInitialized
	}
	raw, err := a.p.conn.Call(ctx, method, params...)
	if err != nil {
		return nil, fmt.Errorf("host %s: %w", method, err)
	}
	return raw, nil
}

func (a *HostAPI) exec(ctx context.Context, method string, params ...any) error {
	_, err := a.Call(ctx, method, params...)
	return err
}

func callAs[T any](ctx context.Context, a *HostAPI, method string, params ...any) (T, error) {
	var v T
	raw, err := a.Call(ctx, method, params...)
	if err != nil {
		return v, err
	}
	if len(raw) == 0 || string(raw) == "null" {
		return v, nil
	}
	if err := json.Unmarshal(raw, &v); err != nil {
		return v, fmt.Errorf("host %s: decode result: %w", method, err)
	}
	return v, nil
}

// ChangeQuery replaces the launcher's query text.
func (a *HostAPI) ChangeQuery(ctx context.Context, query string, requery bool) error {
	return a.exec(ctx, "ChangeQuery", query, requery)
}

// ShowMsg shows a notification. iconPath may be empty.
func (a *HostAPI) ShowMsg(ctx context.Context, title, subtitle, iconPath string) error {
	return a.exec(ctx, "ShowMsg", title, subtitle, iconPath)
}

// ShowMsgError shows an error notification.
func (a *HostAPI) ShowMsgError(ctx context.Context, title, subtitle string) error {
	return a.exec(ctx, "ShowMsgError", title, subtitle)
}

// CopyToClipboard copies text, or the file at path text when copyFile is set.
func (a *HostAPI) CopyToClipboard(ctx context.Context, text string, copyFile, notify bool) error {
	return a.exec(ctx, "CopyToClipboard", text, copyFile, notify)
}

// OpenURL opens url in the default browser.
func (a *HostAPI) OpenURL(ctx context.Context, url string) error {
	return a.exec(ctx, "OpenUrl", url)
}

// OpenDirectory opens dir in the file manager, selecting file when set.
func (a *HostAPI) OpenDirectory(ctx context.Context, dir, file string) error {
	if file == "" {
		return a.exec(ctx, "OpenDirectory", dir)
	}
	return a.exec(ctx, "OpenDirectory", dir, file)
}

// ReQuery runs the current query again.
func (a *HostAPI) ReQuery(ctx context.Context, reselect bool) error {
	return a.exec(ctx, "ReQuery", reselect)
}

// HideMainWindow hides the launcher window.
func (a *HostAPI) HideMainWindow(ctx context.Context) error {
	return a.exec(ctx, "HideMainWindow")
}

// ShowMainWindow brings the launcher window up.
func (a *HostAPI) ShowMainWindow(ctx context.Context) error {
	return a.exec(ctx, "ShowMainWindow")
}

// IsMainWindowVisible reports whether the launcher window is showing.
func (a *HostAPI) IsMainWindowVisible(ctx context.Context) (bool, error) {
	return callAs[bool](ctx, a, "IsMainWindowVisible")
}

// GetTranslation looks key up in the host's language resources.
func (a *HostAPI) GetTranslation(ctx context.Context, key string) (string, error) {
	return callAs[string](ctx, a, "GetTranslation", key)
}

// FuzzySearch scores needle against haystack with the host's matcher.
func (a *HostAPI) FuzzySearch(ctx context.Context, needle, haystack string) (int, error) {
	return callAs[int](ctx, a, "FuzzySearch", needle, haystack)
}

// LogDebug writes message to the host log under class.
func (a *HostAPI) LogDebug(ctx context.Context, class, message string) error {
	return a.exec(ctx, "LogDebug", class, message)
}

// LogInfo is LogDebug at info level.
func (a *HostAPI) LogInfo(ctx context.Context, class, message string) error {
	return a.exec(ctx, "LogInfo", class, message)
}

// LogWarn is LogDebug at warning level.
func (a *HostAPI) LogWarn(ctx context.Context, class, message string) error {
	return a.exec(ctx, "LogWarn", class, message)
}

// UpdateResults pushes results for rawQuery outside a query cycle. v is
// normalised like a handler's return value.
func (a *HostAPI) UpdateResults(ctx context.Context, rawQuery string, v any) error {
	if _, ok := a.p.Metadata(); !ok {
		return ErrNotInitialized
	}
	results, err := Normalize(ctx, v)
	if err != nil {
		return err
	}
	payload := resultsReply{Result: toNative(results, a.p.icon(), a.p.menus)}
	return a.exec(ctx, "UpdateResults", rawQuery, payload)
}
