// Package app wires configuration into runnable components. The cmd
// binaries share these builders instead of repeating the plumbing.
package app

import (
	"context"
	"fmt"
	"log"

	"github.com/juankaspain/vuelosrobot-sub001/internal/config"
	"github.com/juankaspain/vuelosrobot-sub001/internal/estimator"
	"github.com/juankaspain/vuelosrobot-sub001/internal/notify"
	"github.com/juankaspain/vuelosrobot-sub001/internal/resolver"
	"github.com/juankaspain/vuelosrobot-sub001/internal/source"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage/clickhouse"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage/csvlog"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage/memory"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage/migrations"
	"github.com/juankaspain/vuelosrobot-sub001/internal/storage/postgres"
)

// BuildStore creates the configured quote store. The returned cleanup
// must be called on shutdown; for backends without connections it is a
// no-op.
func BuildStore(ctx context.Context, cfg *config.Config) (storage.QuoteStore, func(), error) {
	noop := func() {}

	switch cfg.Storage.Backend {
	case "memory":
		return memory.NewQuoteStore(), noop, nil

	case "csv":
		store, err := csvlog.NewQuoteStore(cfg.Storage.CSVPath)
		if err != nil {
			return nil, nil, fmt.Errorf("open csv store: %w", err)
		}
		return store, noop, nil

	case "postgres":
		pool, err := postgres.NewPool(ctx, cfg.Storage.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		return postgres.NewQuoteStore(pool), pool.Close, nil

	case "clickhouse":
		conn, err := clickhouse.NewConn(ctx, cfg.Storage.ClickhouseDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect clickhouse: %w", err)
		}
		if err := migrations.RunClickhouseMigrations(ctx, conn); err != nil {
			conn.Close()
			return nil, nil, fmt.Errorf("migrate clickhouse: %w", err)
		}
		return clickhouse.NewQuoteStore(conn), func() { _ = conn.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// BuildResolver assembles the adapter chain and estimator fallback.
// Adapters without credentials are left out; each enabled adapter is
// wrapped in a cache and a circuit breaker.
func BuildResolver(cfg *config.Config, logger *log.Logger) *resolver.Resolver {
	var sources []resolver.SourceAdapter

	if cfg.Sources.TravelPayoutsToken != "" {
		sources = append(sources, decorate(
			source.NewTravelPayouts(cfg.Sources.TravelPayoutsURL, cfg.Sources.TravelPayoutsToken), cfg))
	}
	if cfg.Sources.TequilaAPIKey != "" {
		sources = append(sources, decorate(
			source.NewTequila(cfg.Sources.TequilaURL, cfg.Sources.TequilaAPIKey), cfg))
	}

	return resolver.New(resolver.Options{
		Sources:      sources,
		Estimator:    estimator.New(estimator.DefaultConfig()),
		FetchTimeout: cfg.Watch.FetchTimeout,
		Logger:       logger,
	})
}

func decorate(adapter resolver.SourceAdapter, cfg *config.Config) resolver.SourceAdapter {
	cached := source.NewCached(adapter, cfg.Sources.CacheTTL)
	return source.NewBreaker(cached, cfg.Sources.BreakerFailures, cfg.Sources.BreakerCooldown)
}

// BuildSink prefers Telegram when configured, console otherwise.
func BuildSink(cfg *config.Config, logger *log.Logger) (notify.Sink, error) {
	if cfg.Telegram.BotToken != "" && len(cfg.Telegram.ChatIDs) > 0 {
		return notify.NewTelegramSink(cfg.Telegram.BotToken, cfg.Telegram.ChatIDs, logger)
	}
	return notify.NewConsoleSink(logger), nil
}
