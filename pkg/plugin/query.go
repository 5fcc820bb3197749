// ABOUTME: Query passed to search handlers, built from the host's query payload
// ABOUTME: Strips the matched prefix, trims, and splits search terms on spaces

package plugin

import (
	"maps"
	"strings"
)

// QueryPayload is the first parameter of the host's "query" request.
type QueryPayload struct {
	RawQuery      string   `json:"rawQuery"`
	IsReQuery     bool     `json:"isReQuery"`
	Search        string   `json:"search"`
	SearchTerms   []string `json:"searchTerms"`
	ActionKeyword string   `json:"actionKeyword"`
}

// Settings is the plugin settings object the host sends with each query.
type Settings map[string]any

// String returns the setting as a string, or "" when absent or not a string.
func (s Settings) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Bool returns the setting as a bool, or false when absent or not a bool.
func (s Settings) Bool(key string) bool {
	v, _ := s[key].(bool)
	return v
}

// Query is what a search handler sees of one host query.
type Query struct {
	// Raw is the full text typed by the user, action keyword included.
	Raw       string
	IsReQuery bool
	// Search is the text after the action keyword, with the part consumed
	// by the matching restriction removed and surrounding space trimmed.
	// It is in Unicode NFC form, as matched; Raw is left as sent.
	Search        string
	SearchTerms   []string
	ActionKeyword string

	// RegexMatches holds the whole match followed by each capture group
	// when the rule used a Regex restriction; nil otherwise.
	RegexMatches []string
	regexGroups  map[string]string

	Settings Settings
}

// Group returns the named capture group from a Regex restriction.
func (q Query) Group(name string) string {
	return q.regexGroups[name]
}

func newQuery(p QueryPayload, search string, m match, settings Settings) Query {
	text := strings.TrimSpace(search[m.start:])
	return Query{
		Raw:           p.RawQuery,
		IsReQuery:     p.IsReQuery,
		Search:        text,
		SearchTerms:   splitTerms(text),
		ActionKeyword: p.ActionKeyword,
		RegexMatches:  m.groups,
		regexGroups:   m.named,
		Settings:      maps.Clone(settings),
	}
}

func splitTerms(s string) []string {
	parts := strings.Split(s, " ")
	terms := make([]string, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			terms = append(terms, p)
		}
	}
	return terms
}
