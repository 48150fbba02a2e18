// Package lexicon holds the keyword sets and numeric thresholds that
// drive prompt classification and budget selection. The lexicon is
// data, not logic: deployments tune it through a versioned YAML file
// without touching the policy code.
package lexicon

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Lexicon contains the classification hint sets and policy constants.
// Hints are lowercase substrings matched against normalized prompts.
type Lexicon struct {
	Version string `yaml:"version"`

	CreativeHints []string `yaml:"creative_hints"`
	FactualHints  []string `yaml:"factual_hints"`
	HardHints     []string `yaml:"hard_hints"`
	SimpleHints   []string `yaml:"simple_hints"`

	// LongPromptChars is the normalized length above which a prompt is
	// treated as long regardless of keyword matches.
	LongPromptChars int `yaml:"long_prompt_chars"`

	// AutoMediumBudget is the default reasoning-token allowance.
	AutoMediumBudget int `yaml:"auto_medium_budget"`

	// MaxThoughtBudgetCap is the hard ceiling on any fixed budget.
	MaxThoughtBudgetCap int `yaml:"max_thought_budget_cap"`

	// CostSpikeTotalTokens is the previous-turn total above which the
	// spike guard forces the medium budget.
	CostSpikeTotalTokens int `yaml:"cost_spike_total_tokens"`

	// HardSignalMinHits is the number of distinct hard-hint matches
	// that upgrades a hard prompt to an open budget.
	HardSignalMinHits int `yaml:"hard_signal_min_hits"`
}

// Default returns the built-in lexicon.
func Default() *Lexicon {
	return &Lexicon{
		Version: "builtin",
		CreativeHints: []string{
			"brainstorm", "imagine", "write a story", "poem", "creative",
			"invent", "slogan", "fictional", "role-play",
		},
		FactualHints: []string{
			"define", "what is", "who is", "when was", "where is",
			"capital of", "meaning of", "how many",
		},
		HardHints: []string{
			"analyze", "prove", "optimize", "debug", "architect",
			"trade-off", "complexity", "refactor", "algorithm", "root cause",
		},
		SimpleHints: []string{
			"define", "translate", "summarize", "yes or no", "convert",
			"spell", "rephrase",
		},
		LongPromptChars:      400,
		AutoMediumBudget:     1024,
		MaxThoughtBudgetCap:  8192,
		CostSpikeTotalTokens: 20000,
		HardSignalMinHits:    2,
	}
}

// Load reads a lexicon file and overlays it on the defaults, so a file
// may override only the fields it cares about.
func Load(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read lexicon file: %w", err)
	}

	lex := Default()
	if err := yaml.Unmarshal(data, lex); err != nil {
		return nil, fmt.Errorf("failed to parse lexicon file: %w", err)
	}

	return lex, nil
}
