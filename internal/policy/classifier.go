// Package policy implements the per-turn decision pipeline: prompt
// classification, temperature selection, reasoning-budget calculation,
// cost-spike guarding, cap enforcement and generation-config assembly.
// Every component is pure and deterministic; the only state read is
// the previous turn's usage, supplied by the caller.
package policy

import (
	"strings"
	"unicode/utf8"

	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/lexicon"
)

// Classifier derives lexical signals from a prompt.
type Classifier struct {
	lex *lexicon.Lexicon
}

// NewClassifier creates a new classifier.
func NewClassifier(lex *lexicon.Lexicon) *Classifier {
	return &Classifier{lex: lex}
}

// Classify normalizes the prompt and matches it against the hint sets.
// It is total: an empty or unmatched prompt yields all flags false.
func (c *Classifier) Classify(prompt string) domain.Classification {
	normalized := strings.ToLower(strings.TrimSpace(prompt))

	hardHits := countHits(normalized, c.lex.HardHints)

	return domain.Classification{
		Creative: matchesAny(normalized, c.lex.CreativeHints),
		Factual:  matchesAny(normalized, c.lex.FactualHints),
		Hard:     hardHits > 0,
		Simple:   matchesAny(normalized, c.lex.SimpleHints),
		HardHits: hardHits,
		// Length is measured in characters, not bytes, so non-Latin
		// scripts are not over-counted against the length thresholds.
		Length: utf8.RuneCountInString(normalized),
	}
}

func matchesAny(text string, hints []string) bool {
	for _, hint := range hints {
		if hint != "" && strings.Contains(text, hint) {
			return true
		}
	}
	return false
}

func countHits(text string, hints []string) int {
	hits := 0
	for _, hint := range hints {
		if hint != "" && strings.Contains(text, hint) {
			hits++
		}
	}
	return hits
}
