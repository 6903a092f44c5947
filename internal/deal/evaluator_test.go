package deal

import (
	"testing"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
)

func quoteAt(price float64) domain.PriceQuote {
	return domain.PriceQuote{
		Route:      domain.Route{Origin: "MAD", Destination: "MIA", DisplayName: "MAD → MIA"},
		Price:      price,
		Source:     domain.SourceTravelPayouts,
		Confidence: 1.0,
		ObservedAt: time.Date(2026, 8, 28, 12, 0, 0, 0, time.UTC),
	}
}

func TestEvaluate_BelowThresholdIsDeal(t *testing.T) {
	evaluator := NewEvaluator()

	verdict := evaluator.Evaluate(quoteAt(450), 500)

	if !verdict.IsDeal {
		t.Error("Expected deal for 450 against threshold 500")
	}
	if verdict.SavingsAmount != 50 {
		t.Errorf("SavingsAmount mismatch: got %.2f, want 50", verdict.SavingsAmount)
	}
	if verdict.SavingsPct != 10.0 {
		t.Errorf("SavingsPct mismatch: got %.2f, want 10.0", verdict.SavingsPct)
	}
}

func TestEvaluate_ExactThresholdIsNotDeal(t *testing.T) {
	evaluator := NewEvaluator()

	verdict := evaluator.Evaluate(quoteAt(500), 500)

	if verdict.IsDeal {
		t.Error("Price equal to threshold must not be a deal")
	}
	if verdict.SavingsAmount != 0 {
		t.Errorf("SavingsAmount mismatch: got %.2f, want 0", verdict.SavingsAmount)
	}
	if verdict.SavingsPct != 0 {
		t.Errorf("SavingsPct mismatch: got %.2f, want 0", verdict.SavingsPct)
	}
}

func TestEvaluate_JustUnderThresholdIsDeal(t *testing.T) {
	evaluator := NewEvaluator()

	verdict := evaluator.Evaluate(quoteAt(499.99), 500)

	if !verdict.IsDeal {
		t.Error("Price one cent under threshold must be a deal")
	}
}

func TestEvaluate_AboveThresholdNegativeSavings(t *testing.T) {
	evaluator := NewEvaluator()

	verdict := evaluator.Evaluate(quoteAt(650), 500)

	if verdict.IsDeal {
		t.Error("Price above threshold must not be a deal")
	}
	if verdict.SavingsAmount != -150 {
		t.Errorf("SavingsAmount mismatch: got %.2f, want -150", verdict.SavingsAmount)
	}
	if verdict.SavingsPct != -30.0 {
		t.Errorf("SavingsPct mismatch: got %.2f, want -30.0", verdict.SavingsPct)
	}
}

func TestEvaluate_NonPositiveThresholdGuardsPct(t *testing.T) {
	evaluator := NewEvaluator()

	verdict := evaluator.Evaluate(quoteAt(450), 0)

	if verdict.IsDeal {
		t.Error("No price is below a zero threshold")
	}
	if verdict.SavingsPct != 0 {
		t.Errorf("SavingsPct must be 0 for zero threshold, got %.2f", verdict.SavingsPct)
	}
}
