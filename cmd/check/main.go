// Package main runs one check over the watched routes and prints the
// verdicts.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/juankaspain/vuelosrobot-sub001/internal/app"
	"github.com/juankaspain/vuelosrobot-sub001/internal/config"
	"github.com/juankaspain/vuelosrobot-sub001/internal/orchestrator"
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
		logger.Printf("received signal %v, cancelling", sig)
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

	result, err := orch.Run(ctx, watches)
	if err != nil {
		logger.Fatalf("check failed: %v", err)
	}

	fmt.Printf("Run %s: %d routes checked, %d deals found\n", result.RunID, result.RoutesChecked, result.DealsFound)
	for _, v := range result.Verdicts {
		marker := " "
		if v.IsDeal {
			marker = "*"
		}
		fmt.Printf("  %s %-8s %8.2f EUR  (%s", marker, v.Quote.Route.Key(), v.Quote.Price, v.Quote.Source)
		if !v.Quote.Source.IsExternal() {
			fmt.Printf(", confidence %.2f", v.Quote.Confidence)
		}
		fmt.Println(")")
	}

	if len(result.Errors) > 0 {
		fmt.Printf("Errors: %d\n", len(result.Errors))
		for _, e := range result.Errors {
			fmt.Printf("  - %s\n", e)
		}
		os.Exit(1)
	}
}
