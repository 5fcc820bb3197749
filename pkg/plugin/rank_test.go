// ABOUTME: Tests for fuzzy ranking of results and UTF-16 highlight positions
// ABOUTME: Verifies filtering, best-first order, and offsets past non-BMP characters

package plugin

import (
	"slices"
	"testing"
)

func TestRank(t *testing.T) {
	t.Parallel()

	results := []Result{
		{Title: "Open Settings"},
		{Title: "Shutdown"},
		{Title: "settings"},
	}

	ranked := Rank("set", results)
	if len(ranked) != 2 {
		t.Fatalf("Rank kept %d results (%q); want 2", len(ranked), titles(ranked))
	}
	for _, r := range ranked {
		if r.Title == "Shutdown" {
			t.Errorf("non-matching result kept")
		}
		if len(r.TitleHighlight) != 3 {
			t.Errorf("%q highlight = %v; want 3 positions", r.Title, r.TitleHighlight)
		}
	}
	if ranked[0].Score < ranked[1].Score {
		t.Errorf("scores not best first: %d < %d", ranked[0].Score, ranked[1].Score)
	}
	if results[0].Score != 0 || results[0].TitleHighlight != nil {
		t.Error("Rank modified its input")
	}
}

func TestRank_EmptyPattern(t *testing.T) {
	t.Parallel()

	results := []Result{{Title: "a"}, {Title: "b"}}
	if got := Rank("", results); len(got) != 2 {
		t.Errorf("Rank(\"\") kept %d; want all", len(got))
	}
}

func TestHostPositions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		s       string
		offsets []int
		want    []int
	}{
		{name: "ascii", s: "abc", offsets: []int{0, 2}, want: []int{0, 2}},
		{name: "two-byte rune", s: "éa", offsets: []int{2}, want: []int{1}},
		{name: "astral rune", s: "😀ab", offsets: []int{4, 5}, want: []int{2, 3}},
		{name: "none", s: "abc", offsets: nil, want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := hostPositions(tt.s, tt.offsets); !slices.Equal(got, tt.want) {
				t.Errorf("hostPositions = %v; want %v", got, tt.want)
			}
		})
	}
}
