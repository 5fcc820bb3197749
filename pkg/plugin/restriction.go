// ABOUTME: Search restrictions: unconditional, equal-to, starts-with, and anchored regex
// ABOUTME: Case-insensitive matching uses Unicode case folding on NFC-normalised text

package plugin

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// MatchKind identifies the condition a Restriction applies.
type MatchKind int

const (
	MatchAlways MatchKind = iota
	MatchEqualTo
	MatchStartsWith
	MatchRegex
)

func (k MatchKind) String() string {
	switch k {
	case MatchAlways:
		return "always"
	case MatchEqualTo:
		return "equal_to"
	case MatchStartsWith:
		return "starts_with"
	case MatchRegex:
		return "regex"
	default:
		return fmt.Sprintf("MatchKind(%d)", int(k))
	}
}

// RegexFlag modifies how a Regex restriction's pattern is compiled.
type RegexFlag uint8

const (
	IgnoreCase RegexFlag = 1 << iota
	MultiLine
	DotAll
	Ungreedy
)

// DefaultRegexFlags is used when a pattern is registered without flags.
const DefaultRegexFlags = IgnoreCase

func (f RegexFlag) prefix() string {
	var b strings.Builder
	if f&IgnoreCase != 0 {
		b.WriteByte('i')
	}
	if f&MultiLine != 0 {
		b.WriteByte('m')
	}
	if f&DotAll != 0 {
		b.WriteByte('s')
	}
	if f&Ungreedy != 0 {
		b.WriteByte('U')
	}
	if b.Len() == 0 {
		return ""
	}
	return "(?" + b.String() + ")"
}

// Restriction decides whether a search rule applies to a query's search
// text. The zero value matches everything.
type Restriction struct {
	kind          MatchKind
	text          string
	caseSensitive bool
	pattern       string
	re            *regexp.Regexp
	minLength     int
	maxLength     int
	debounce      time.Duration
}

// RestrictionOption adjusts a Restriction.
type RestrictionOption func(*Restriction)

// CaseSensitive makes EqualTo and StartsWith compare text exactly.
// Without it they compare case-folded text.
func CaseSensitive() RestrictionOption {
	return func(r *Restriction) { r.caseSensitive = true }
}

// Debounce delays the handler by d. A newer query arriving during the
// delay aborts the handler before it starts.
func Debounce(d time.Duration) RestrictionOption {
	return func(r *Restriction) { r.debounce = d }
}

// MinLength requires the search text to have at least n runes.
func MinLength(n int) RestrictionOption {
	return func(r *Restriction) { r.minLength = n }
}

// MaxLength requires the search text to have at most n runes.
func MaxLength(n int) RestrictionOption {
	return func(r *Restriction) { r.maxLength = n }
}

// Always matches every query.
func Always(opts ...RestrictionOption) Restriction {
	return build(Restriction{kind: MatchAlways}, opts)
}

// EqualTo matches when the whole search text equals text.
func EqualTo(text string, opts ...RestrictionOption) Restriction {
	return build(Restriction{kind: MatchEqualTo, text: norm.NFC.String(text)}, opts)
}

// StartsWith matches when the search text begins with prefix. The prefix
// is stripped from the search text handed to the handler.
func StartsWith(prefix string, opts ...RestrictionOption) Restriction {
	return build(Restriction{kind: MatchStartsWith, text: norm.NFC.String(prefix)}, opts)
}

// Regex matches when pattern matches at the start of the search text. The
// match does not have to consume the whole text.
func Regex(pattern string, flags RegexFlag, opts ...RestrictionOption) (Restriction, error) {
	re, err := regexp.Compile(flags.prefix() + `\A(?:` + pattern + `)`)
	if err != nil {
		return Restriction{}, fmt.Errorf("compiling search pattern %q: %w", pattern, err)
	}
	return build(Restriction{kind: MatchRegex, pattern: pattern, re: re}, opts), nil
}

// MustRegex is like Regex but panics if pattern does not compile.
func MustRegex(pattern string, flags RegexFlag, opts ...RestrictionOption) Restriction {
	r, err := Regex(pattern, flags, opts...)
	if err != nil {
		panic(err)
	}
	return r
}

func build(r Restriction, opts []RestrictionOption) Restriction {
	for _, opt := range opts {
		opt(&r)
	}
	return r
}

// Kind returns the restriction's match kind.
func (r Restriction) Kind() MatchKind { return r.kind }

// DebounceDelay returns the configured debounce, zero when none.
func (r Restriction) DebounceDelay() time.Duration { return r.debounce }

func (r Restriction) String() string {
	switch r.kind {
	case MatchEqualTo, MatchStartsWith:
		return fmt.Sprintf("%s(%q)", r.kind, r.text)
	case MatchRegex:
		return fmt.Sprintf("%s(%q)", r.kind, r.pattern)
	default:
		return r.kind.String()
	}
}

// match describes a satisfied restriction.
type match struct {
	// start is the byte offset where the handler's search text begins.
	start  int
	groups []string
	named  map[string]string
}

// match tests search, which must already be NFC-normalised.
func (r Restriction) match(search string) (match, bool) {
	if !r.withinBounds(search) {
		return match{}, false
	}

	switch r.kind {
	case MatchEqualTo:
		if r.caseSensitive {
			return match{start: len(search)}, search == r.text
		}
		return match{start: len(search)}, fold(search) == fold(r.text)

	case MatchStartsWith:
		if r.caseSensitive {
			return match{start: len(r.text)}, strings.HasPrefix(search, r.text)
		}
		n, ok := foldedPrefixLen(search, r.text)
		return match{start: n}, ok

	case MatchRegex:
		loc := r.re.FindStringSubmatchIndex(search)
		if loc == nil {
			return match{}, false
		}
		return regexMatch(r.re, search, loc), true
	}

	return match{}, true
}

func (r Restriction) withinBounds(search string) bool {
	if r.minLength <= 0 && r.maxLength <= 0 {
		return true
	}
	n := utf8.RuneCountInString(search)
	if r.minLength > 0 && n < r.minLength {
		return false
	}
	if r.maxLength > 0 && n > r.maxLength {
		return false
	}
	return true
}

func regexMatch(re *regexp.Regexp, search string, loc []int) match {
	m := match{groups: make([]string, len(loc)/2)}
	for i := range m.groups {
		if loc[2*i] >= 0 {
			m.groups[i] = search[loc[2*i]:loc[2*i+1]]
		}
	}
	for i, name := range re.SubexpNames() {
		if name == "" {
			continue
		}
		if m.named == nil {
			m.named = make(map[string]string)
		}
		m.named[name] = m.groups[i]
	}
	return m
}

// fold returns the Unicode case folding of s. A Caser is stateful, so a
// fresh one is used per call.
func fold(s string) string {
	return cases.Fold().String(s)
}

// foldedPrefixLen reports whether s starts with prefix ignoring case, and
// the byte length of the matching head of s. The head can differ in length
// from prefix when folding changes the byte count.
func foldedPrefixLen(s, prefix string) (int, bool) {
	want := fold(prefix)
	if want == "" {
		return 0, true
	}
	for end := 0; end < len(s); {
		_, size := utf8.DecodeRuneInString(s[end:])
		end += size
		got := fold(s[:end])
		if got == want {
			return end, true
		}
		if len(got) >= len(want) || !strings.HasPrefix(want, got) {
			return 0, false
		}
	}
	return 0, false
}
