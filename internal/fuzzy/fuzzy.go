// Package fuzzy implements the partial-ratio string similarity used
// throughout the knowledge graph and navigator to compare game text
// against stored descriptions: KnowledgeGraph.MostSimilarLocation,
// the Navigator's relocalisation check, and Location.EntityByDescription.
//
// PartialRatio is a sliding-window "best substring" Jaro-Winkler
// comparison, the same shape as the fuzzywuzzy/RapidFuzz
// partial_ratio algorithm, built on top of
// github.com/antzucaro/matchr's Jaro-Winkler implementation so that
// descriptions of differing length still compare fairly.
package fuzzy

import (
	"strings"

	"github.com/antzucaro/matchr"
)

// PartialRatio returns a 0-100 similarity score between a and b. When
// the two strings differ in length, the shorter string is slid as a
// window across the longer one and the best Jaro-Winkler score over
// all alignments is returned; when equal length, it is a direct
// Jaro-Winkler comparison. Comparison is case-insensitive.
func PartialRatio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	if a == "" || b == "" {
		if a == b {
			return 100
		}
		return 0
	}

	shorter, longer := a, b
	if len(a) > len(b) {
		shorter, longer = b, a
	}

	if len(shorter) == len(longer) {
		return matchr.JaroWinkler(shorter, longer, false) * 100
	}

	best := 0.0
	windowLen := len(shorter)
	for start := 0; start+windowLen <= len(longer); start++ {
		window := longer[start : start+windowLen]
		score := matchr.JaroWinkler(shorter, window, false) * 100
		if score > best {
			best = score
		}
	}
	return best
}

// Ratio returns a plain 0-100 Jaro-Winkler similarity between a and b,
// with no sliding window, for callers that want to compare two strings
// of comparable, expected-equal length (e.g. two entity names).
func Ratio(a, b string) float64 {
	a = strings.ToLower(strings.TrimSpace(a))
	b = strings.ToLower(strings.TrimSpace(b))
	return matchr.JaroWinkler(a, b, false) * 100
}
