package policy

import (
	"github.com/davidbz/cinder/internal/domain"
	"github.com/davidbz/cinder/internal/lexicon"
)

// Planner composes the full decision pipeline for one turn:
// classify, select temperature, compute budget, guard, cap, build.
type Planner struct {
	classifier *Classifier
	calculator *BudgetCalculator
	guard      *CostSpikeGuard
	cap        *CapEnforcer
	builder    *ConfigBuilder
}

// NewPlanner creates a planner over the given lexicon (DI constructor).
func NewPlanner(lex *lexicon.Lexicon, maxOutputTokens int) *Planner {
	return &Planner{
		classifier: NewClassifier(lex),
		calculator: NewBudgetCalculator(lex),
		guard:      NewCostSpikeGuard(lex),
		cap:        NewCapEnforcer(lex),
		builder:    NewConfigBuilder(maxOutputTokens),
	}
}

// Plan produces the generation config for a prompt, given the previous
// turn's usage (hasLast=false on the first turn of a conversation).
// The classification is returned alongside for logging.
func (p *Planner) Plan(prompt string, last domain.UsageRecord, hasLast bool) (domain.GenerationConfig, domain.Classification) {
	cls := p.classifier.Classify(prompt)

	temperature := SelectTemperature(cls)

	budget := p.calculator.Compute(cls)
	budget = p.guard.Apply(budget, last, hasLast)
	budget = p.cap.Enforce(budget)

	return p.builder.Build(temperature, budget), cls
}
