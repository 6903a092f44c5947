// Package deal decides whether a resolved quote is worth alerting on.
package deal

import "github.com/juankaspain/vuelosrobot-sub001/internal/domain"

// Evaluator compares quotes against a configured alert threshold.
type Evaluator struct{}

// NewEvaluator creates a new deal evaluator.
func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// Evaluate produces a DealVerdict for the quote. Pure and deterministic.
// A price exactly equal to the threshold is NOT a deal: the strict
// inequality avoids boundary flapping on repeated identical estimates.
// A non-positive threshold yields SavingsPct of 0 while the raw
// comparison still decides IsDeal.
func (e *Evaluator) Evaluate(quote domain.PriceQuote, threshold float64) domain.DealVerdict {
	verdict := domain.DealVerdict{
		Quote:         quote,
		Threshold:     threshold,
		IsDeal:        quote.Price < threshold,
		SavingsAmount: threshold - quote.Price,
	}
	if threshold > 0 {
		verdict.SavingsPct = verdict.SavingsAmount / threshold * 100
	}
	return verdict
}
