package domain

import "time"

// QuoteSource identifies where a resolved price came from.
type QuoteSource string

const (
	SourceTravelPayouts QuoteSource = "TRAVELPAYOUTS"
	SourceTequila       QuoteSource = "TEQUILA"
	SourceFeed          QuoteSource = "FEED"
	SourceEstimated     QuoteSource = "ESTIMATED"
)

// String returns the string representation of QuoteSource.
func (s QuoteSource) String() string {
	return string(s)
}

// IsExternal reports whether the quote came from a real provider
// rather than the synthetic estimator.
func (s QuoteSource) IsExternal() bool {
	return s != SourceEstimated
}

// PriceQuote is the immutable result of one price resolution.
// A repeated resolution produces a new quote; quotes are never updated.
type PriceQuote struct {
	ID         string
	Route      Route
	Price      float64 // EUR
	Source     QuoteSource
	Confidence float64 // 1.0 for external sources, computed for estimates
	ObservedAt time.Time
}
