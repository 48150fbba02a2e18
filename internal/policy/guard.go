package policy

import (
	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/lexicon"
)

// CostSpikeGuard reacts to the previous turn's token consumption. After
// an expensive turn it forces the medium budget regardless of what the
// calculator produced: it lowers an open budget and raises a disabled
// one alike. It overrides, it does not cap.
type CostSpikeGuard struct {
	lex *lexicon.Lexicon
}

// NewCostSpikeGuard creates a new cost-spike guard.
func NewCostSpikeGuard(lex *lexicon.Lexicon) *CostSpikeGuard {
	return &CostSpikeGuard{lex: lex}
}

// Apply returns the guarded budget. A missing last usage (first turn of
// a conversation) is treated as no spike.
func (g *CostSpikeGuard) Apply(budget domain.ThoughtBudget, last domain.UsageRecord, hasLast bool) domain.ThoughtBudget {
	if !hasLast {
		return budget
	}

	if last.TotalTokens > g.lex.CostSpikeTotalTokens {
		return domain.FixedBudget(g.lex.AutoMediumBudget)
	}

	return budget
}
