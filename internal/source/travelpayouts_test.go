package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/resolver"
)

func testRoute(t *testing.T) domain.Route {
	t.Helper()
	route, err := domain.NewRoute("MAD", "MIA", "")
	if err != nil {
		t.Fatalf("NewRoute failed: %v", err)
	}
	return route
}

func TestTravelPayouts_TryFetch_CheapestOffer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("origin"); got != "MAD" {
			t.Errorf("origin mismatch: %s", got)
		}
		if got := r.URL.Query().Get("token"); got != "secret" {
			t.Errorf("token mismatch: %s", got)
		}
		w.Write([]byte(`{
			"success": true,
			"data": [
				{"origin":"MAD","destination":"MIA","price":512,"transfers":1},
				{"origin":"MAD","destination":"MIA","price":433,"transfers":0},
				{"origin":"MAD","destination":"MIA","price":0,"transfers":0}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewTravelPayouts(server.URL, "secret")
	price, err := adapter.TryFetch(context.Background(), testRoute(t), domain.TripParameters{Stops: domain.StopsOne})
	if err != nil {
		t.Fatalf("TryFetch failed: %v", err)
	}
	if price != 433 {
		t.Errorf("Price mismatch: got %.2f, want 433", price)
	}
}

func TestTravelPayouts_TryFetch_FiltersTransfers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{
			"success": true,
			"data": [
				{"price":300,"transfers":2},
				{"price":470,"transfers":0}
			]
		}`))
	}))
	defer server.Close()

	adapter := NewTravelPayouts(server.URL, "secret")
	price, err := adapter.TryFetch(context.Background(), testRoute(t), domain.TripParameters{Stops: domain.StopsNonstop})
	if err != nil {
		t.Fatalf("TryFetch failed: %v", err)
	}
	if price != 470 {
		t.Errorf("Nonstop search must ignore connecting offers: got %.2f, want 470", price)
	}
}

func TestTravelPayouts_TryFetch_NoUsableFare(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": true, "data": []}`))
	}))
	defer server.Close()

	adapter := NewTravelPayouts(server.URL, "secret")
	_, err := adapter.TryFetch(context.Background(), testRoute(t), domain.TripParameters{})
	if !errors.Is(err, resolver.ErrNoFare) {
		t.Errorf("Expected ErrNoFare, got %v", err)
	}
}

func TestTravelPayouts_TryFetch_ProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success": false, "error": "rate limited"}`))
	}))
	defer server.Close()

	adapter := NewTravelPayouts(server.URL, "secret")
	if _, err := adapter.TryFetch(context.Background(), testRoute(t), domain.TripParameters{}); err == nil {
		t.Error("Expected error for provider failure")
	}
}

func TestTravelPayouts_TryFetch_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	adapter := NewTravelPayouts(server.URL, "secret")
	if _, err := adapter.TryFetch(context.Background(), testRoute(t), domain.TripParameters{}); err == nil {
		t.Error("Expected error for HTTP 502")
	}
}

func TestTequila_TryFetch_CheapestOffer(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("apikey"); got != "key123" {
			t.Errorf("apikey mismatch: %s", got)
		}
		if got := r.URL.Query().Get("fly_from"); got != "MAD" {
			t.Errorf("fly_from mismatch: %s", got)
		}
		if got := r.URL.Query().Get("selected_cabins"); got != "C" {
			t.Errorf("selected_cabins mismatch: %s", got)
		}
		w.Write([]byte(`{"data": [{"price": 1890}, {"price": 1740}]}`))
	}))
	defer server.Close()

	adapter := NewTequila(server.URL, "key123")
	params := domain.TripParameters{CabinClass: domain.CabinBusiness, Stops: domain.StopsOne}
	price, err := adapter.TryFetch(context.Background(), testRoute(t), params)
	if err != nil {
		t.Fatalf("TryFetch failed: %v", err)
	}
	if price != 1740 {
		t.Errorf("Price mismatch: got %.2f, want 1740", price)
	}
}

func TestTequila_TryFetch_DateWindow(t *testing.T) {
	dep := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.URL.Query().Get("date_from"); got != "17/10/2026" {
			t.Errorf("date_from mismatch: %s", got)
		}
		w.Write([]byte(`{"data": [{"price": 420}]}`))
	}))
	defer server.Close()

	adapter := NewTequila(server.URL, "key123")
	params := domain.TripParameters{DepartureDate: &dep, Stops: domain.StopsOne}
	if _, err := adapter.TryFetch(context.Background(), testRoute(t), params); err != nil {
		t.Fatalf("TryFetch failed: %v", err)
	}
}

func TestTequila_TryFetch_Empty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"data": []}`))
	}))
	defer server.Close()

	adapter := NewTequila(server.URL, "key123")
	_, err := adapter.TryFetch(context.Background(), testRoute(t), domain.TripParameters{})
	if !errors.Is(err, resolver.ErrNoFare) {
		t.Errorf("Expected ErrNoFare, got %v", err)
	}
}
