// Package config loads runtime configuration from the environment.
// A .env file in the working directory is honored when present.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
)

// DefaultReturnOffset is applied when a round trip has no explicit
// return date.
const DefaultReturnOffset = 15 * 24 * time.Hour

type Config struct {
	Watch    WatchConfig
	Sources  SourcesConfig
	Storage  StorageConfig
	Telegram TelegramConfig
}

type WatchConfig struct {
	// Routes is a comma-separated list of ORG-DST pairs, e.g. "MAD-MIA,BCN-JFK".
	Routes        string        `envconfig:"WATCH_ROUTES" required:"true"`
	Threshold     float64       `envconfig:"DEAL_THRESHOLD_EUR" default:"500"`
	Workers       int           `envconfig:"RESOLVE_WORKERS" default:"20"`
	FetchTimeout  time.Duration `envconfig:"SOURCE_FETCH_TIMEOUT" default:"12s"`
	CheckInterval time.Duration `envconfig:"CHECK_INTERVAL" default:"1h"`

	DepartureDate string `envconfig:"DEPARTURE_DATE"` // 2006-01-02, optional
	ReturnDate    string `envconfig:"RETURN_DATE"`    // 2006-01-02, optional
	TripType      string `envconfig:"TRIP_TYPE" default:"ONE_WAY"`
	CabinClass    string `envconfig:"CABIN_CLASS" default:"ECONOMY"`
	Stops         int    `envconfig:"MAX_STOPS" default:"1"`
	AirlineTier   string `envconfig:"AIRLINE_TIER"` // optional
}

type SourcesConfig struct {
	TravelPayoutsToken string `envconfig:"TRAVELPAYOUTS_TOKEN"`
	TravelPayoutsURL   string `envconfig:"TRAVELPAYOUTS_URL" default:"https://api.travelpayouts.com/aviasales/v3/prices_for_dates"`
	TequilaAPIKey      string `envconfig:"TEQUILA_API_KEY"`
	TequilaURL         string `envconfig:"TEQUILA_URL" default:"https://api.tequila.kiwi.com/v2/search"`
	FeedEndpoint       string `envconfig:"FARE_FEED_ENDPOINT"` // ws:// or wss://, optional

	// CacheTTL and the breaker settings apply to every enabled adapter.
	CacheTTL        time.Duration `envconfig:"SOURCE_CACHE_TTL" default:"5m"`
	BreakerFailures int           `envconfig:"SOURCE_BREAKER_FAILURES" default:"3"`
	BreakerCooldown time.Duration `envconfig:"SOURCE_BREAKER_COOLDOWN" default:"2m"`
}

type StorageConfig struct {
	// Backend selects the quote store: memory, csv, postgres or clickhouse.
	Backend       string `envconfig:"STORAGE_BACKEND" default:"memory"`
	PostgresDSN   string `envconfig:"POSTGRES_DSN"`
	ClickhouseDSN string `envconfig:"CLICKHOUSE_DSN"`
	CSVPath       string `envconfig:"CSV_PATH" default:"quotes.csv"`
}

type TelegramConfig struct {
	BotToken string  `envconfig:"TELEGRAM_BOT_TOKEN"`
	ChatIDs  []int64 `envconfig:"TELEGRAM_CHAT_IDS"`
}

// Load reads .env (when present) and the environment.
func Load() (*Config, error) {
	// Missing .env is fine; the environment still applies.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("process env config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks cross-field constraints envconfig cannot express.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Watch.Routes) == "" {
		return fmt.Errorf("WATCH_ROUTES must list at least one route")
	}
	if c.Watch.Threshold <= 0 {
		return fmt.Errorf("DEAL_THRESHOLD_EUR must be positive, got %.2f", c.Watch.Threshold)
	}
	if c.Watch.Workers <= 0 {
		return fmt.Errorf("RESOLVE_WORKERS must be positive, got %d", c.Watch.Workers)
	}
	switch c.Storage.Backend {
	case "memory", "csv", "postgres", "clickhouse":
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	if c.Storage.Backend == "postgres" && c.Storage.PostgresDSN == "" {
		return fmt.Errorf("POSTGRES_DSN is required for the postgres backend")
	}
	if c.Storage.Backend == "clickhouse" && c.Storage.ClickhouseDSN == "" {
		return fmt.Errorf("CLICKHOUSE_DSN is required for the clickhouse backend")
	}
	return nil
}

// ParseWatches expands the route list into watches sharing the
// configured trip parameters. A round trip without an explicit return
// date gets departure + 15 days.
func (c *Config) ParseWatches() ([]domain.Watch, error) {
	params, err := c.tripParameters()
	if err != nil {
		return nil, err
	}

	var watches []domain.Watch
	for _, item := range strings.Split(c.Watch.Routes, ",") {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}

		parts := strings.Split(item, "-")
		if len(parts) != 2 {
			return nil, fmt.Errorf("malformed route %q, want ORG-DST", item)
		}
		route, err := domain.NewRoute(strings.ToUpper(parts[0]), strings.ToUpper(parts[1]), "")
		if err != nil {
			return nil, fmt.Errorf("route %q: %w", item, err)
		}
		watches = append(watches, domain.Watch{Route: route, Params: params})
	}

	if len(watches) == 0 {
		return nil, fmt.Errorf("WATCH_ROUTES must list at least one route")
	}
	return watches, nil
}

func (c *Config) tripParameters() (domain.TripParameters, error) {
	params := domain.TripParameters{
		TripType:    domain.TripType(c.Watch.TripType),
		CabinClass:  domain.CabinClass(c.Watch.CabinClass),
		Stops:       domain.StopCount(c.Watch.Stops),
		AirlineTier: domain.AirlineTier(c.Watch.AirlineTier),
	}

	if !params.TripType.IsValid() {
		return params, fmt.Errorf("unknown TRIP_TYPE %q", c.Watch.TripType)
	}
	if !params.CabinClass.IsValid() {
		return params, fmt.Errorf("unknown CABIN_CLASS %q", c.Watch.CabinClass)
	}
	if !params.Stops.IsValid() {
		return params, fmt.Errorf("MAX_STOPS %d out of range 0-3", c.Watch.Stops)
	}
	if !params.AirlineTier.IsValid() {
		return params, fmt.Errorf("unknown AIRLINE_TIER %q", c.Watch.AirlineTier)
	}

	if c.Watch.DepartureDate != "" {
		dep, err := time.Parse("2006-01-02", c.Watch.DepartureDate)
		if err != nil {
			return params, fmt.Errorf("parse DEPARTURE_DATE: %w", err)
		}
		params.DepartureDate = &dep
	}
	if c.Watch.ReturnDate != "" {
		ret, err := time.Parse("2006-01-02", c.Watch.ReturnDate)
		if err != nil {
			return params, fmt.Errorf("parse RETURN_DATE: %w", err)
		}
		params.ReturnDate = &ret
	}

	if params.TripType == domain.TripRoundTrip && params.ReturnDate == nil && params.DepartureDate != nil {
		ret := params.DepartureDate.Add(DefaultReturnOffset)
		params.ReturnDate = &ret
	}

	return params, nil
}
