package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/resolver"
)

// tequilaCabins maps cabin classes to the provider's one-letter codes.
var tequilaCabins = map[domain.CabinClass]string{
	domain.CabinEconomy:        "M",
	domain.CabinPremiumEconomy: "W",
	domain.CabinBusiness:       "C",
	domain.CabinFirst:          "F",
}

// Tequila fetches fares from a Kiwi Tequila-style search API.
type Tequila struct {
	endpoint string
	apiKey   string
	currency string
	client   *http.Client
}

// TequilaOption configures the adapter.
type TequilaOption func(*Tequila)

// WithTequilaHTTPClient sets a custom http.Client.
func WithTequilaHTTPClient(client *http.Client) TequilaOption {
	return func(s *Tequila) {
		s.client = client
	}
}

// NewTequila creates the adapter for the given endpoint and API key.
func NewTequila(endpoint, apiKey string, opts ...TequilaOption) *Tequila {
	s := &Tequila{
		endpoint: endpoint,
		apiKey:   apiKey,
		currency: "EUR",
		client:   &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Compile-time interface check.
var _ resolver.SourceAdapter = (*Tequila)(nil)

// Source tags quotes from this adapter.
func (s *Tequila) Source() domain.QuoteSource {
	return domain.SourceTequila
}

type tequilaResponse struct {
	Data []struct {
		Price float64 `json:"price"`
	} `json:"data"`
}

// TryFetch returns the cheapest matching fare, or ErrNoFare when the
// provider has no usable offer for the trip.
func (s *Tequila) TryFetch(ctx context.Context, route domain.Route, params domain.TripParameters) (float64, error) {
	query := url.Values{}
	query.Add("fly_from", route.Origin)
	query.Add("fly_to", route.Destination)
	query.Add("curr", s.currency)
	query.Add("sort", "price")
	query.Add("limit", "10")
	if cabin, ok := tequilaCabins[params.CabinClass]; ok {
		query.Add("selected_cabins", cabin)
	}
	if params.Stops < domain.StopsThree {
		query.Add("max_stopovers", fmt.Sprintf("%d", int(params.Stops)))
	}
	if params.DepartureDate != nil {
		date := params.DepartureDate.Format("02/01/2006")
		query.Add("date_from", date)
		query.Add("date_to", date)
	}
	if params.TripType == domain.TripRoundTrip && params.ReturnDate != nil {
		ret := params.ReturnDate.Format("02/01/2006")
		query.Add("return_from", ret)
		query.Add("return_to", ret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("apikey", s.apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected status %s", resp.Status)
	}

	var payload tequilaResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, fmt.Errorf("decode response: %w", err)
	}

	best := 0.0
	for _, offer := range payload.Data {
		if offer.Price <= 0 {
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
