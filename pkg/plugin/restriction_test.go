// ABOUTME: Tests for restriction matching: case folding, prefixes, anchored regex, length bounds
// ABOUTME: Table-driven over search strings; checks the stripped offset handed to handlers

package plugin

import (
	"testing"
	"time"
)

func TestRestriction_Match(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		r         Restriction
		search    string
		wantOK    bool
		wantStart int
	}{
		{name: "always", r: Always(), search: "anything", wantOK: true},
		{name: "always empty", r: Always(), search: "", wantOK: true},
		{name: "zero value", r: Restriction{}, search: "x", wantOK: true},

		{name: "equal folded", r: EqualTo("abc"), search: "ABC", wantOK: true, wantStart: 3},
		{name: "equal case sensitive miss", r: EqualTo("abc", CaseSensitive()), search: "ABC"},
		{name: "equal case sensitive hit", r: EqualTo("abc", CaseSensitive()), search: "abc", wantOK: true, wantStart: 3},
		{name: "equal not prefix", r: EqualTo("abc"), search: "abcd"},
		{name: "equal unicode folded", r: EqualTo("straße"), search: "STRASSE", wantOK: true, wantStart: 7},

		{name: "prefix folded", r: StartsWith("ab"), search: "AB search", wantOK: true, wantStart: 2},
		{name: "prefix case sensitive miss", r: StartsWith("ab", CaseSensitive()), search: "AB search"},
		{name: "prefix case sensitive hit", r: StartsWith("ab", CaseSensitive()), search: "ab search", wantOK: true, wantStart: 2},
		{name: "prefix miss", r: StartsWith("ab"), search: "xab"},
		{name: "prefix longer than search", r: StartsWith("abc"), search: "ab"},
		{name: "prefix non-ascii", r: StartsWith("ÄB"), search: "äb rest", wantOK: true, wantStart: len("äb")},
		{name: "empty prefix", r: StartsWith(""), search: "abc", wantOK: true},

		{name: "regex anchored hit", r: MustRegex("ab", DefaultRegexFlags), search: "abx", wantOK: true},
		{name: "regex anchored miss", r: MustRegex("ab", DefaultRegexFlags), search: "xab"},
		{name: "regex alternation anchored", r: MustRegex("b|ab", DefaultRegexFlags), search: "xb"},
		{name: "regex ignore case", r: MustRegex("ab", DefaultRegexFlags), search: "AB", wantOK: true},
		{name: "regex case sensitive", r: MustRegex("ab", 0), search: "AB"},

		{name: "min length miss", r: Always(MinLength(3)), search: "ab"},
		{name: "min length counts runes", r: Always(MinLength(2)), search: "éé", wantOK: true},
		{name: "max length miss", r: StartsWith("a", MaxLength(3)), search: "abcd"},
		{name: "max length hit", r: StartsWith("a", MaxLength(4)), search: "abcd", wantOK: true, wantStart: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m, ok := tt.r.match(tt.search)
			if ok != tt.wantOK {
				t.Fatalf("%s.match(%q) ok = %v; want %v", tt.r, tt.search, ok, tt.wantOK)
			}
			if ok && m.start != tt.wantStart {
				t.Errorf("start = %d; want %d", m.start, tt.wantStart)
			}
		})
	}
}

func TestRestriction_RegexGroups(t *testing.T) {
	t.Parallel()

	r := MustRegex(`(?P<a>\d+)\s*\+\s*(?P<b>\d+)`, DefaultRegexFlags)
	m, ok := r.match("12 + 30 and more")
	if !ok {
		t.Fatal("expected match")
	}
	want := []string{"12 + 30", "12", "30"}
	if len(m.groups) != len(want) {
		t.Fatalf("groups = %q; want %q", m.groups, want)
	}
	for i := range want {
		if m.groups[i] != want[i] {
			t.Errorf("group %d = %q; want %q", i, m.groups[i], want[i])
		}
	}
	if m.named["a"] != "12" || m.named["b"] != "30" {
		t.Errorf("named = %v", m.named)
	}
}

func TestRegex_InvalidPattern(t *testing.T) {
	t.Parallel()

	if _, err := Regex("(unclosed", DefaultRegexFlags); err == nil {
		t.Fatal("expected compile error")
	}

	defer func() {
		if recover() == nil {
			t.Error("MustRegex did not panic")
		}
	}()
	MustRegex("(unclosed", DefaultRegexFlags)
}

func TestRegexFlag_Prefix(t *testing.T) {
	t.Parallel()

	tests := []struct {
		flags RegexFlag
		want  string
	}{
		{0, ""},
		{IgnoreCase, "(?i)"},
		{IgnoreCase | MultiLine | DotAll | Ungreedy, "(?imsU)"},
	}
	for _, tt := range tests {
		if got := tt.flags.prefix(); got != tt.want {
			t.Errorf("prefix(%d) = %q; want %q", tt.flags, got, tt.want)
		}
	}
}

func TestRestriction_Accessors(t *testing.T) {
	t.Parallel()

	r := StartsWith("go ", Debounce(150*time.Millisecond))
	if r.Kind() != MatchStartsWith {
		t.Errorf("Kind = %v; want %v", r.Kind(), MatchStartsWith)
	}
	if r.DebounceDelay() != 150*time.Millisecond {
		t.Errorf("DebounceDelay = %v; want 150ms", r.DebounceDelay())
	}
	if got, want := r.String(), `starts_with("go ")`; got != want {
		t.Errorf("String = %s; want %s", got, want)
	}
	if Always().DebounceDelay() != 0 {
		t.Error("Always should have no debounce")
	}
}
