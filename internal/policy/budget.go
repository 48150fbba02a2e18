package policy

import (
	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/lexicon"
)

// BudgetCalculator maps a classification to an initial thought budget,
// before the spike guard and cap run.
type BudgetCalculator struct {
	lex *lexicon.Lexicon
}

// NewBudgetCalculator creates a new budget calculator.
func NewBudgetCalculator(lex *lexicon.Lexicon) *BudgetCalculator {
	return &BudgetCalculator{lex: lex}
}

// Compute applies the budget rules in order; the first applicable rule
// wins:
//  1. long prompt: open budget
//  2. simple hint: reasoning disabled
//  3. hard hint: open budget when the signal is strong (enough distinct
//     hard hits, or a prompt longer than half the long threshold),
//     medium otherwise
//  4. default: medium
func (b *BudgetCalculator) Compute(cls domain.Classification) domain.ThoughtBudget {
	switch {
	case cls.Length > b.lex.LongPromptChars:
		return domain.ModelChosenBudget()
	case cls.Simple:
		return domain.DisabledBudget()
	case cls.Hard:
		if cls.HardHits >= b.lex.HardSignalMinHits || cls.Length > b.lex.LongPromptChars/2 {
			return domain.ModelChosenBudget()
		}
		return domain.FixedBudget(b.lex.AutoMediumBudget)
	default:
		return domain.FixedBudget(b.lex.AutoMediumBudget)
	}
}
