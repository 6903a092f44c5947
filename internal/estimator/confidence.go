package estimator

import "github.com/juankaspain/vuelosrobot-sub001/internal/domain"

// Confidence scoring adjustments. Estimates inside well-understood
// windows (sweet spot, economy, nonstop) score higher; last-minute and
// premium-cabin estimates score lower because the model has less signal.
const (
	confidenceBase = 0.85

	confSweetSpotBonus   = 0.10 // 45-60 days ahead
	confLastMinutePen    = 0.20 // under 7 days ahead
	confFarFuturePen     = 0.10 // over 120 days ahead
	confNonstopBonus     = 0.05
	confMultiStopPen     = 0.05 // two or more stops
	confEconomyBonus     = 0.05
	confPremiumCabinPen  = 0.10 // business or first
	confLowcostTierBonus = 0.05
	confCharterTierPen   = 0.10

	confidenceMin = 0.3
	confidenceMax = 0.99
)

// confidence computes the clamped score for an estimated quote.
func (e *Estimator) confidence(days int, hasDate bool, params domain.TripParameters) float64 {
	score := confidenceBase

	if hasDate {
		switch {
		case days >= 45 && days <= 60:
			score += confSweetSpotBonus
		case days < 7:
			score -= confLastMinutePen
		case days > 120:
			score -= confFarFuturePen
		}
	}

	switch {
	case params.Stops == domain.StopsNonstop:
		score += confNonstopBonus
	case params.Stops >= domain.StopsTwo:
		score -= confMultiStopPen
	}

	switch params.CabinClass {
	case domain.CabinEconomy:
		score += confEconomyBonus
	case domain.CabinBusiness, domain.CabinFirst:
		score -= confPremiumCabinPen
	}

	switch params.AirlineTier {
	case domain.TierLowcost:
		score += confLowcostTierBonus
	case domain.TierCharter:
		score -= confCharterTierPen
	}

	if score < confidenceMin {
		return confidenceMin
	}
	if score > confidenceMax {
		return confidenceMax
	}
	return score
}
