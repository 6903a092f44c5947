// Package estimator implements the synthetic fare model: a multiplicative
// chain of advance-purchase, season, weekday, stop, cabin and optional
// tier/demand factors over a per-route base price, plus a confidence score.
package estimator

import (
	"math"
	"math/rand"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
)

// Estimator produces synthetic fare estimates. It never fails and never
// blocks: pure computation over the configured tables.
type Estimator struct {
	cfg    Config
	randFn func() float64 // uniform [0, 1)
	nowFn  func() time.Time
}

// Option configures an Estimator.
type Option func(*Estimator)

// WithRand sets the uniform random source. The default is the global
// math/rand source, which is safe for concurrent use.
func WithRand(fn func() float64) Option {
	return func(e *Estimator) {
		e.randFn = fn
	}
}

// WithNow sets the clock used to compute advance-purchase days.
func WithNow(fn func() time.Time) Option {
	return func(e *Estimator) {
		e.nowFn = fn
	}
}

// New creates an Estimator with the given config.
func New(cfg Config, opts ...Option) *Estimator {
	e := &Estimator{
		cfg:    cfg,
		randFn: rand.Float64,
		nowFn:  time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Estimate returns a synthetic price (whole EUR, never below the floor)
// and a confidence score in [0.3, 0.99] for the given trip.
func (e *Estimator) Estimate(route domain.Route, params domain.TripParameters) (float64, float64) {
	base := e.cfg.DefaultBasePrice
	if p, ok := e.cfg.BasePrices[route.Key()]; ok {
		base = p
	}

	days, hasDate := params.DaysAhead(e.nowFn())

	mult := 1.0
	if hasDate {
		mult *= e.advanceMult(days)
		mult *= e.seasonMult(params.DepartureDate.Month())
		mult *= e.weekdayMult(params.DepartureDate.Weekday())
	}
	mult *= e.stopMult(params.Stops)
	mult *= e.cabinMult(params.CabinClass)
	if params.AirlineTier != domain.TierUnspecified {
		mult *= e.tierMult(params.AirlineTier)
	}
	if e.cfg.UseDemand && hasDate {
		mult *= e.cfg.DemandMults[e.demandScore(days, *params.DepartureDate)]
	}

	noise := e.cfg.NoiseLow + e.randFn()*(e.cfg.NoiseHigh-e.cfg.NoiseLow)
	price := math.Round(base * mult * noise)
	if price < e.cfg.FloorPrice {
		price = e.cfg.FloorPrice
	}

	return price, e.confidence(days, hasDate, params)
}

// advanceMult returns the advance-purchase step multiplier for days ahead.
func (e *Estimator) advanceMult(days int) float64 {
	if days < 0 {
		return e.cfg.PastDepartureMult
	}
	mult := 1.0
	for _, band := range e.cfg.AdvanceBands {
		if days >= band.MinDays {
			mult = band.Mult
		}
	}
	return mult
}

func (e *Estimator) seasonMult(month time.Month) float64 {
	switch {
	case e.cfg.HighSeasonMonths[month]:
		return e.cfg.HighSeasonMult
	case e.cfg.ShoulderSeasonMonths[month]:
		return e.cfg.ShoulderSeasonMult
	case e.cfg.LowSeasonMonths[month]:
		return e.cfg.LowSeasonMult
	}
	return 1.0
}

func (e *Estimator) weekdayMult(day time.Weekday) float64 {
	if m, ok := e.cfg.WeekdayMults[day]; ok {
		return m
	}
	return 1.0
}

func (e *Estimator) stopMult(stops domain.StopCount) float64 {
	if m, ok := e.cfg.StopMults[stops]; ok {
		return m
	}
	return 1.0
}

func (e *Estimator) cabinMult(cabin domain.CabinClass) float64 {
	if m, ok := e.cfg.CabinMults[cabin]; ok {
		return m
	}
	return 1.0
}

func (e *Estimator) tierMult(tier domain.AirlineTier) float64 {
	if m, ok := e.cfg.TierMults[tier]; ok {
		return m
	}
	return 1.0
}

// demandScore combines high season, last-minute and weekend departure
// into a discrete 0-4 score. Last-minute bookings weigh double.
func (e *Estimator) demandScore(days int, departure time.Time) int {
	score := 0
	if e.cfg.HighSeasonMonths[departure.Month()] {
		score++
	}
	if days < 14 {
		score += 2
	}
	if wd := departure.Weekday(); wd == time.Saturday || wd == time.Sunday {
		score++
	}
	return score
}
