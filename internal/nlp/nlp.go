// Package nlp implements entity-candidate extraction from observation
// text: scanning a game's response for noun phrases the Examiner
// module should consider examining, using
// github.com/tsawler/prose/v3 for tokenisation and Penn Treebank POS
// tagging as the basis for a simple noun-chunk heuristic.
package nlp

import (
	"strings"

	"github.com/tsawler/prose/v3"
)

// nounTags is the set of Penn Treebank part-of-speech tags that mark a
// token as (part of) a noun phrase candidate.
var nounTags = map[string]bool{
	"NN": true, "NNS": true, "NNP": true, "NNPS": true,
}

var adjTags = map[string]bool{
	"JJ": true, "JJR": true, "JJS": true, "DT": true,
}

// Extractor detects noun-phrase candidates in observation text.
type Extractor struct{}

// NewExtractor returns a ready-to-use Extractor. It has no state and
// is safe for concurrent use.
func NewExtractor() *Extractor { return &Extractor{} }

// Candidates returns the distinct noun-phrase strings found in text,
// lower-cased, in first-occurrence order. Consecutive adjective/
// determiner/noun tokens are merged into a single multi-word
// candidate (e.g. "the brass lamp" -> "brass lamp"), matching the
// noun-chunk shape spaCy's detector relied on.
func (x *Extractor) Candidates(text string) []string {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	doc, err := prose.NewDocument(text)
	if err != nil {
		return nil
	}

	var (
		candidates []string
		seen       = map[string]bool{}
		current    []string
	)

	flush := func() {
		if len(current) == 0 {
			return
		}
		phrase := strings.ToLower(strings.Join(trimDeterminers(current), " "))
		if phrase != "" && !seen[phrase] {
			seen[phrase] = true
			candidates = append(candidates, phrase)
		}
		current = nil
	}

	for _, tok := range doc.Tokens() {
		switch {
		case nounTags[tok.Tag]:
			current = append(current, tok.Text)
		case adjTags[tok.Tag] && len(current) == 0:
			current = append(current, tok.Text)
		default:
			flush()
		}
	}
	flush()

	return candidates
}

func trimDeterminers(tokens []string) []string {
	for len(tokens) > 0 {
		lower := strings.ToLower(tokens[0])
		if lower == "the" || lower == "a" || lower == "an" {
			tokens = tokens[1:]
			continue
		}
		break
	}
	return tokens
}
