// ABOUTME: Read-only plugin metadata taken from the host's initialize request
// ABOUTME: Decodes the currentPluginMetadata object into an immutable value

package plugin

import (
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

// Metadata describes the plugin as the host knows it.
type Metadata struct {
	ID              string
	Name            string
	Author          string
	Version         string
	Language        string
	Description     string
	Website         string
	Disabled        bool
	ExecuteFilePath string
	ExecuteFileName string
	PluginDirectory string
	ActionKeyword   string
	ActionKeywords  []string
	IcoPath         string
}

type metadataPayload struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Author          string   `json:"author"`
	Version         string   `json:"version"`
	Language        string   `json:"language"`
	Description     string   `json:"description"`
	Website         string   `json:"website"`
	Disabled        bool     `json:"disabled"`
	ExecuteFilePath string   `json:"executeFilePath"`
	ExecuteFileName string   `json:"executeFileName"`
	PluginDirectory string   `json:"pluginDirectory"`
	ActionKeyword   string   `json:"actionKeyword"`
	ActionKeywords  []string `json:"actionKeywords"`
	IcoPath         string   `json:"icoPath"`
}

type initPayload struct {
	CurrentPluginMetadata *metadataPayload `json:"currentPluginMetadata"`
}

var errNoMetadata = errors.New("initialize payload has no currentPluginMetadata")

func decodeMetadata(raw json.RawMessage) (Metadata, error) {
	var p initPayload
	if err := json.Unmarshal(raw, &p); err != nil {
		return Metadata{}, fmt.Errorf("decoding initialize payload: %w", err)
	}
	if p.CurrentPluginMetadata == nil {
		return Metadata{}, errNoMetadata
	}
	m := p.CurrentPluginMetadata
	return Metadata{
		ID:              m.ID,
		Name:            m.Name,
		Author:          m.Author,
		Version:         m.Version,
		Language:        m.Language,
		Description:     m.Description,
		Website:         m.Website,
		Disabled:        m.Disabled,
		ExecuteFilePath: m.ExecuteFilePath,
		ExecuteFileName: m.ExecuteFileName,
		PluginDirectory: m.PluginDirectory,
		ActionKeyword:   m.ActionKeyword,
		ActionKeywords:  m.ActionKeywords,
		IcoPath:         m.IcoPath,
	}, nil
}

// clone returns a copy that shares no mutable state with m.
func (m Metadata) clone() Metadata {
	m.ActionKeywords = slices.Clone(m.ActionKeywords)
	return m
}
