// ABOUTME: Result items returned by handlers and their native wire shape for the host
// ABOUTME: Absent fields are omitted so the host applies its own defaults

package plugin

import "github.com/google/uuid"

// Preview is the content of the host's preview panel for a result.
type Preview struct {
	ImagePath string `json:"previewImagePath,omitempty"`
	// IsMedia lets the preview image take the full panel width.
	IsMedia     bool   `json:"isMedia,omitempty"`
	Description string `json:"description,omitempty"`
	FilePath    string `json:"filePath,omitempty"`
}

// Result is one item shown by the launcher. Every field is optional.
type Result struct {
	Title            string
	Subtitle         string
	CopyText         string
	AutocompleteText string
	// IconPath defaults to the plugin icon from the host metadata.
	IconPath    string
	RoundedIcon bool
	Score       int
	// TitleHighlight holds character positions of Title to emphasise.
	TitleHighlight   []int
	TitleTooltip     string
	SubtitleTooltip  string
	Progress         *int
	ProgressBarColor string
	Preview          *Preview
	Action           *Action
	ContextMenu      *ContextMenu
}

// ContextMenu is the secondary list shown for a result. It either names a
// registered MenuHandler or carries its items inline.
type ContextMenu struct {
	name   string
	args   []any
	inline []Result
}

// MenuRef refers to the context menu registered under name; args are
// handed to it when the host asks for the menu.
func MenuRef(name string, args ...any) *ContextMenu {
	return &ContextMenu{name: name, args: args}
}

// InlineMenu carries the context menu items directly.
func InlineMenu(results ...Result) *ContextMenu {
	return &ContextMenu{name: inlineMenuName, inline: results}
}

// inlineMenuName is the context menu name under which inline menus are
// looked up by key.
const inlineMenuName = "flowplugin.inline"

// nativeResult is the result shape the host deserialises.
type nativeResult struct {
	Title              string   `json:"title,omitempty"`
	Subtitle           string   `json:"subtitle,omitempty"`
	CopyText           string   `json:"copyText,omitempty"`
	AutoCompleteText   string   `json:"autoCompleteText,omitempty"`
	IcoPath            string   `json:"icoPath,omitempty"`
	RoundedIcon        bool     `json:"roundedIcon,omitempty"`
	Score              int      `json:"score,omitempty"`
	TitleHighlightData []int    `json:"titleHighlightData,omitempty"`
	ContextData        []any    `json:"contextData,omitempty"`
	TitleTooltip       string   `json:"titleTooltip,omitempty"`
	SubtitleTooltip    string   `json:"subtitleTooltip,omitempty"`
	ProgressBar        *int     `json:"progressBar,omitempty"`
	ProgressBarColor   string   `json:"progressBarColor,omitempty"`
	JSONRPCAction      *Action  `json:"jsonRPCAction,omitempty"`
	Preview            *Preview `json:"preview,omitempty"`
}

// toNative converts results for the wire. Inline context menus are parked
// in menus and replaced by a reference to their key.
func toNative(results []Result, defaultIcon string, menus *menuStore) []nativeResult {
	out := make([]nativeResult, len(results))
	for i, r := range results {
		icon := r.IconPath
		if icon == "" {
			icon = defaultIcon
		}
		out[i] = nativeResult{
			Title:              r.Title,
			Subtitle:           r.Subtitle,
			CopyText:           r.CopyText,
			AutoCompleteText:   r.AutocompleteText,
			IcoPath:            icon,
			RoundedIcon:        r.RoundedIcon,
			Score:              r.Score,
			TitleHighlightData: r.TitleHighlight,
			ContextData:        contextData(r.ContextMenu, menus),
			TitleTooltip:       r.TitleTooltip,
			SubtitleTooltip:    r.SubtitleTooltip,
			ProgressBar:        r.Progress,
			ProgressBarColor:   r.ProgressBarColor,
			JSONRPCAction:      r.Action,
			Preview:            r.Preview,
		}
	}
	return out
}

func contextData(cm *ContextMenu, menus *menuStore) []any {
	if cm == nil {
		return nil
	}
	if cm.name == inlineMenuName {
		if menus == nil {
			return nil
		}
		key := uuid.NewString()
		menus.put(key, cm.inline)
		return []any{inlineMenuName, []any{key}}
	}
	args := cm.args
	if args == nil {
		args = []any{}
	}
	return []any{cm.name, args}
}
