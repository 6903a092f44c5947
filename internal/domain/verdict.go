package domain

// DealVerdict is the ephemeral outcome of comparing a quote to the
// configured alert threshold. Derived, never stored without its quote.
type DealVerdict struct {
	Quote         PriceQuote
	Threshold     float64
	IsDeal        bool    // price strictly below threshold
	SavingsAmount float64 // threshold - price, may be negative
	SavingsPct    float64 // 0 when threshold is not positive
}
