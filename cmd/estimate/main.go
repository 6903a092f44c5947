// Package main prints a synthetic fare estimate for one trip without
// touching any external source.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
	"github.com/juankaspain/vuelosrobot-sub001/internal/estimator"
)

func main() {
	origin := flag.String("origin", "", "Origin IATA code (required)")
	destination := flag.String("destination", "", "Destination IATA code (required)")
	departure := flag.String("departure", "", "Departure date, 2006-01-02 (optional)")
	tripType := flag.String("trip", "ONE_WAY", "Trip type: ONE_WAY or ROUND_TRIP")
	cabin := flag.String("cabin", "ECONOMY", "Cabin: ECONOMY, PREMIUM_ECONOMY, BUSINESS, FIRST")
	stops := flag.Int("stops", 1, "Stops bucket: 0-3 (3 means three or more)")
	tier := flag.String("tier", "", "Airline tier: LEGACY, LOWCOST, PREMIUM, CHARTER (optional)")
	samples := flag.Int("samples", 1, "Number of noisy samples to print")
	flag.Parse()

	route, err := domain.NewRoute(*origin, *destination, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.Usage()
		os.Exit(1)
	}

	params := domain.TripParameters{
		TripType:    domain.TripType(*tripType),
		CabinClass:  domain.CabinClass(*cabin),
		Stops:       domain.StopCount(*stops),
		AirlineTier: domain.AirlineTier(*tier),
	}
	if !params.TripType.IsValid() || !params.CabinClass.IsValid() || !params.Stops.IsValid() || !params.AirlineTier.IsValid() {
		fmt.Fprintln(os.Stderr, "Error: invalid trip parameters")
		flag.Usage()
		os.Exit(1)
	}

	if *departure != "" {
		dep, err := time.Parse("2006-01-02", *departure)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: parse departure date: %v\n", err)
			os.Exit(1)
		}
		params.DepartureDate = &dep
	}

	est := estimator.New(estimator.DefaultConfig())

	fmt.Printf("Estimate for %s (%s, %s, %d stops)\n", route.Key(), params.TripType, params.CabinClass, *stops)
	for i := 0; i < *samples; i++ {
		price, confidence := est.Estimate(route, params)
		fmt.Printf("  %8.0f EUR  (confidence %.2f)\n", price, confidence)
	}
}
