// ABOUTME: Fuzzy ranking of results against the user's search text via sahilm/fuzzy
// ABOUTME: Fills Score and TitleHighlight with host (UTF-16) character positions

package plugin

import (
	"unicode/utf16"
	"unicode/utf8"

	"github.com/sahilm/fuzzy"
)

// resultTitles adapts a result slice to fuzzy.Source.
type resultTitles []Result

func (r resultTitles) String(i int) string { return r[i].Title }
func (r resultTitles) Len() int            { return len(r) }

// Rank keeps the results whose titles fuzzy-match pattern, best first, and
// records the match score and highlighted characters. An empty pattern
// returns results unchanged.
func Rank(pattern string, results []Result) []Result {
	if pattern == "" {
		return results
	}

	matches := fuzzy.FindFrom(pattern, resultTitles(results))
	ranked := make([]Result, len(matches))
	for i, m := range matches {
		r := results[m.Index]
		r.Score = m.Score
		r.TitleHighlight = hostPositions(r.Title, m.MatchedIndexes)
		ranked[i] = r
	}
	return ranked
}

// hostPositions converts byte offsets into s to UTF-16 code unit offsets,
// which is how the host indexes strings.
func hostPositions(s string, byteOffsets []int) []int {
	if len(byteOffsets) == 0 {
		return nil
	}
	out := make([]int, 0, len(byteOffsets))
	units, next := 0, 0
	for off := 0; off < len(s) && next < len(byteOffsets); {
		r, size := utf8.DecodeRuneInString(s[off:])
		if off == byteOffsets[next] {
			out = append(out, units)
			next++
		}
		units += utf16.RuneLen(r)
		off += size
	}
	return out
}
