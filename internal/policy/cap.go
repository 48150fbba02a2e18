package policy

import (
	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/lexicon"
)

// CapEnforcer clamps fixed budgets to the configured hard ceiling.
//
// Open (model-chosen) budgets are exempt from numeric clamping: they
// are passed through to the client, which relies on the provider
// honoring its own absolute ceiling. A malformed negative fixed budget
// is resolved to disabled rather than rejected.
type CapEnforcer struct {
	lex *lexicon.Lexicon
}

// NewCapEnforcer creates a new cap enforcer.
func NewCapEnforcer(lex *lexicon.Lexicon) *CapEnforcer {
	return &CapEnforcer{lex: lex}
}

// Enforce returns the capped budget.
func (e *CapEnforcer) Enforce(budget domain.ThoughtBudget) domain.ThoughtBudget {
	if budget.Kind != domain.BudgetFixed {
		return budget
	}

	if budget.Tokens <= 0 {
		return domain.DisabledBudget()
	}

	if budget.Tokens > e.lex.MaxThoughtBudgetCap {
		return domain.FixedBudget(e.lex.MaxThoughtBudgetCap)
	}

	return budget
}
