package domain

import "time"

// TripType distinguishes one-way from round-trip searches.
type TripType string

const (
	TripOneWay    TripType = "ONE_WAY"
	TripRoundTrip TripType = "ROUND_TRIP"
)

// String returns the string representation of TripType.
func (t TripType) String() string {
	return string(t)
}

// IsValid checks if the trip type is a valid value.
func (t TripType) IsValid() bool {
	return t == TripOneWay || t == TripRoundTrip
}

// CabinClass is the booking cabin.
type CabinClass string

const (
	CabinEconomy        CabinClass = "ECONOMY"
	CabinPremiumEconomy CabinClass = "PREMIUM_ECONOMY"
	CabinBusiness       CabinClass = "BUSINESS"
	CabinFirst          CabinClass = "FIRST"
)

// String returns the string representation of CabinClass.
func (c CabinClass) String() string {
	return string(c)
}

// IsValid checks if the cabin class is a valid value.
func (c CabinClass) IsValid() bool {
	switch c {
	case CabinEconomy, CabinPremiumEconomy, CabinBusiness, CabinFirst:
		return true
	}
	return false
}

// StopCount buckets the number of stops. Three or more stops share one bucket.
type StopCount int

const (
	StopsNonstop StopCount = 0
	StopsOne     StopCount = 1
	StopsTwo     StopCount = 2
	StopsThree   StopCount = 3 // three or more
)

// IsValid checks if the stop count is a valid bucket.
func (s StopCount) IsValid() bool {
	return s >= StopsNonstop && s <= StopsThree
}

// AirlineTier is an optional carrier classification.
// The zero value means the tier is not modeled for this search.
type AirlineTier string

const (
	TierUnspecified AirlineTier = ""
	TierLegacy      AirlineTier = "LEGACY"
	TierLowcost     AirlineTier = "LOWCOST"
	TierPremium     AirlineTier = "PREMIUM"
	TierCharter     AirlineTier = "CHARTER"
)

// String returns the string representation of AirlineTier.
func (a AirlineTier) String() string {
	return string(a)
}

// IsValid checks if the tier is a valid value, including unspecified.
func (a AirlineTier) IsValid() bool {
	switch a {
	case TierUnspecified, TierLegacy, TierLowcost, TierPremium, TierCharter:
		return true
	}
	return false
}

// TripParameters describes one requested search. Dates are optional;
// a round trip without an explicit return date is left to the caller
// to default (the config layer applies departure + 15 days).
type TripParameters struct {
	DepartureDate *time.Time
	ReturnDate    *time.Time
	TripType      TripType
	CabinClass    CabinClass
	Stops         StopCount
	AirlineTier   AirlineTier
}

// DaysAhead returns whole days between now and the departure date.
// ok is false when no departure date is set.
func (p TripParameters) DaysAhead(now time.Time) (int, bool) {
	if p.DepartureDate == nil {
		return 0, false
	}
	nowDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	depDay := time.Date(p.DepartureDate.Year(), p.DepartureDate.Month(), p.DepartureDate.Day(), 0, 0, 0, 0, time.UTC)
	return int(depDay.Sub(nowDay).Hours() / 24), true
}
