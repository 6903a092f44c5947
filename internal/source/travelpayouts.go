// Package source implements fare providers behind the resolver's
// SourceAdapter interface, plus generic resiliency decorators and the
// live fare feed.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/resolver"
)

// Default configuration values.
const (
	DefaultTimeout  = 15 * time.Second
	DefaultCurrency = "eur"
	DefaultLimit    = 15
)

// TravelPayouts fetches fares from the TravelPayouts prices-for-dates API.
type TravelPayouts struct {
	endpoint string
	token    string
	currency string
	limit    int
	client   *http.Client
}

// TravelPayoutsOption configures the adapter.
type TravelPayoutsOption func(*TravelPayouts)

// WithTPHTTPClient sets a custom http.Client.
func WithTPHTTPClient(client *http.Client) TravelPayoutsOption {
	return func(s *TravelPayouts) {
		s.client = client
	}
}

// WithTPCurrency sets the quote currency.
func WithTPCurrency(currency string) TravelPayoutsOption {
	return func(s *TravelPayouts) {
		s.currency = currency
	}
}

// NewTravelPayouts creates the adapter for the given endpoint and token.
func NewTravelPayouts(endpoint, token string, opts ...TravelPayoutsOption) *TravelPayouts {
	s := &TravelPayouts{
		endpoint: endpoint,
		token:    token,
		currency: DefaultCurrency,
		limit:    DefaultLimit,
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ resolver.SourceAdapter = (*TravelPayouts)(nil)

// Source tags quotes from this adapter.
func (s *TravelPayouts) Source() domain.QuoteSource {
	return domain.SourceTravelPayouts
}

// tpResponse is the provider's response envelope.
type tpResponse struct {
	Data []struct {
		Origin      string  `json:"origin"`
		Destination string  `json:"destination"`
		DepartureAt string  `json:"departure_at"`
		Price       float64 `json:"price"`
		Airline     string  `json:"airline"`
		Transfers   int     `json:"transfers"`
	} `json:"data"`
	Error   string `json:"error"`
	Success bool   `json:"success"`
}

// TryFetch returns the cheapest matching fare, or ErrNoFare when the
// provider has no usable offer for the trip.
func (s *TravelPayouts) TryFetch(ctx context.Context, route domain.Route, params domain.TripParameters) (float64, error) {
	query := url.Values{}
	query.Add("origin", route.Origin)
	query.Add("destination", route.Destination)
	query.Add("currency", s.currency)
	query.Add("sorting", "price")
	query.Add("limit", fmt.Sprintf("%d", s.limit))
	query.Add("token", s.token)
	query.Add("direct", fmt.Sprintf("%t", params.Stops == domain.StopsNonstop))
	query.Add("one_way", fmt.Sprintf("%t", params.TripType != domain.TripRoundTrip))
	if params.DepartureDate != nil {
		query.Add("departure_at", params.DepartureDate.Format("2006-01-02"))
	}
	if params.TripType == domain.TripRoundTrip && params.ReturnDate != nil {
		query.Add("return_at", params.ReturnDate.Format("2006-01-02"))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload tpResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}
	if !payload.Success {
		return 0, fmt.Errorf("provider error: %s", payload.Error)
	}

	best := 0.0
	for _, offer := range payload.Data {
		if offer.Price <= 0 {
			continue
		}
		// StopsThree is an open bucket: three or more transfers are fine.
		if params.Stops < domain.StopsThree && offer.Transfers > int(params.Stops) {
			continue
		}
		if best == 0 || offer.Price < best {
			best = offer.Price
		}
	}
	if best == 0 {
		return 0, resolver.ErrNoFare
	}
	return best, nil
}
