// Package main runs the continuous deal watcher: periodic checks,
// optional live feed consumption and the Telegram command bot.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/juankaspain/vuelosrobot-sub001/internal/app"
	"github.com/juankaspain/vuelosrobot-sub001/internal/bot"
	"github.com/juankaspain/vuelosrobot-sub001/internal/config"
	"github.com/juankaspain/vuelosrobot-sub001/internal/orchestrator"
	"github.com/juankaspain/vuelosrobot-sub001/internal/source"
	"github.com/juankaspain/vuelosrobot-sub001/internal/watch"
)

func main() {
	verbose := flag.Bool("verbose", false, "Verbose output")
	flag.Parse()

	logger := log.New(os.Stderr, "", log.LstdFlags)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("received signal %v, shutting down", sig)
		cancel()
	}()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	watches, err := cfg.ParseWatches()
	if err != nil {
		logger.Fatalf("parse watches: %v", err)
	}

	store, cleanup, err := app.BuildStore(ctx, cfg)
	if err != nil {
		logger.Fatalf("build store: %v", err)
	}
	defer cleanup()

	sink, err := app.BuildSink(cfg, logger)
	if err != nil {
		logger.Fatalf("build sink: %v", err)
	}

	orch := orchestrator.New(orchestrator.Options{
		Resolver:  app.BuildResolver(cfg, logger),
		Store:     store,
		Sink:      sink,
		Threshold: cfg.Watch.Threshold,
		Workers:   cfg.Watch.Workers,
		Logger:    logger,
		Verbose:   *verbose,
	})

	var feed *source.Feed
	if cfg.Sources.FeedEndpoint != "" {
		feed = source.NewFeed(cfg.Sources.FeedEndpoint, nil, logger)
		defer feed.Close()
	}

	if cfg.Telegram.BotToken != "" {
		b, err := bot.New(bot.Options{
			Token:        cfg.Telegram.BotToken,
			Checker:      orch,
			Watches:      watches,
			Threshold:    cfg.Watch.Threshold,
			AllowedUsers: cfg.Telegram.ChatIDs,
			Logger:       logger,
		})
		if err != nil {
			logger.Fatalf("start bot: %v", err)
		}
		go func() {
			if err := b.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Printf("bot stopped: %v", err)
			}
		}()
	}

	runner := watch.NewRunner(watch.Options{
		Checker:   orch,
		Store:     store,
		Watches:   watches,
		Feed:      feed,
		Sink:      sink,
		Threshold: cfg.Watch.Threshold,
		Interval:  cfg.Watch.CheckInterval,
		Logger:    logger,
	})

	if err := runner.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatalf("watch runner: %v", err)
	}
}
