package estimator

import (
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
)

// AdvanceBand maps an advance-purchase window to a price multiplier.
// A band applies to days >= MinDays; the highest matching band wins.
type AdvanceBand struct {
	MinDays int
	Mult    float64
}

// Config holds every multiplier table of the pricing model.
// All values are empirical, tunable configuration, not business law.
type Config struct {
	// BasePrices maps a route key ("MAD-MIA") to its curated historical
	// average fare. Unknown routes fall back to DefaultBasePrice.
	BasePrices       map[string]float64
	DefaultBasePrice float64

	// PastDepartureMult applies when the departure date is already gone.
	PastDepartureMult float64
	// AdvanceBands is the advance-purchase step function ("U-curve"),
	// sorted by MinDays ascending.
	AdvanceBands []AdvanceBand

	// Season multipliers by calendar month of departure. Months absent
	// from all three sets are priced at the neutral multiplier.
	HighSeasonMonths     map[time.Month]bool
	ShoulderSeasonMonths map[time.Month]bool
	LowSeasonMonths      map[time.Month]bool
	HighSeasonMult       float64
	ShoulderSeasonMult   float64
	LowSeasonMult        float64

	// Weekday multipliers; weekdays absent from the map are neutral.
	WeekdayMults map[time.Weekday]float64

	StopMults  map[domain.StopCount]float64
	CabinMults map[domain.CabinClass]float64

	// TierMults applies only when the search carries an airline tier.
	TierMults map[domain.AirlineTier]float64

	// UseDemand enables the optional demand decision-tree multiplier.
	UseDemand   bool
	DemandMults [5]float64 // indexed by demand score 0-4

	// Noise bounds for the uniform random factor.
	NoiseLow  float64
	NoiseHigh float64

	// FloorPrice is the minimum final price.
	FloorPrice float64
}

// DefaultConfig returns the canonical rule set.
func DefaultConfig() Config {
	return Config{
		BasePrices: map[string]float64{
			"MAD-MIA": 620,
			"MAD-JFK": 580,
			"MAD-MEX": 710,
			"MAD-BOG": 640,
			"MAD-EZE": 820,
			"MAD-LIM": 750,
			"MAD-HAV": 690,
			"MAD-SCL": 830,
			"BCN-JFK": 560,
			"BCN-MIA": 640,
			"MAD-BKK": 640,
			"MAD-NRT": 780,
			"MAD-LHR": 150,
			"MAD-CDG": 140,
			"BCN-LHR": 130,
		},
		DefaultBasePrice: 650,

		PastDepartureMult: 2.5,
		AdvanceBands: []AdvanceBand{
			{MinDays: 0, Mult: 2.0},
			{MinDays: 3, Mult: 1.7},
			{MinDays: 7, Mult: 1.4},
			{MinDays: 14, Mult: 1.15},
			{MinDays: 30, Mult: 1.05},
			{MinDays: 45, Mult: 1.0},
			{MinDays: 61, Mult: 1.1},
			{MinDays: 90, Mult: 1.20},
			{MinDays: 120, Mult: 1.30},
		},

		HighSeasonMonths: map[time.Month]bool{
			time.June: true, time.July: true, time.August: true, time.December: true,
		},
		ShoulderSeasonMonths: map[time.Month]bool{
			time.March: true, time.April: true, time.May: true,
		},
		LowSeasonMonths: map[time.Month]bool{
			time.January: true, time.February: true, time.September: true,
			time.October: true, time.November: true,
		},
		HighSeasonMult:     1.35,
		ShoulderSeasonMult: 1.15,
		LowSeasonMult:      0.85,

		WeekdayMults: map[time.Weekday]float64{
			time.Friday:    1.15,
			time.Sunday:    1.2,
			time.Tuesday:   0.95,
			time.Wednesday: 0.95,
		},

		StopMults: map[domain.StopCount]float64{
			domain.StopsNonstop: 1.35,
			domain.StopsOne:     1.0,
			domain.StopsTwo:     0.82,
			domain.StopsThree:   0.75,
		},

		CabinMults: map[domain.CabinClass]float64{
			domain.CabinEconomy:        1.0,
			domain.CabinPremiumEconomy: 1.75,
			domain.CabinBusiness:       4.2,
			domain.CabinFirst:          6.5,
		},

		TierMults: map[domain.AirlineTier]float64{
			domain.TierLegacy:  1.35,
			domain.TierLowcost: 0.75,
			domain.TierPremium: 1.85,
			domain.TierCharter: 0.65,
		},

		UseDemand:   false,
		DemandMults: [5]float64{0.95, 1.0, 1.05, 1.15, 1.25},

		NoiseLow:  0.92,
		NoiseHigh: 1.08,

		FloorPrice: 100,
	}
}
