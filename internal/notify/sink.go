// Package notify delivers deal alerts to their destinations.
package notify

import (
	"context"
	"log"

	"github.com/juankaspain/vuelosrobot-sub001/internal/domain"
)

// Sink receives verdicts that crossed the alert threshold. Delivery
// failures are reported, never retried here; the caller decides.
type Sink interface {
	Notify(ctx context.Context, verdict domain.DealVerdict) error
}

// ConsoleSink writes alerts to a logger. Used as the default sink and
// in development runs without a Telegram token.
type ConsoleSink struct {
	logger *log.Logger
}

// NewConsoleSink creates a sink writing to logger (log.Default() if nil).
func NewConsoleSink(logger *log.Logger) *ConsoleSink {
	if logger == nil {
		logger = log.Default()
	}
	return &ConsoleSink{logger: logger}
}

// Compile-time interface check.
var _ Sink = (*ConsoleSink)(nil)

// Notify logs the verdict in a single line.
func (s *ConsoleSink) Notify(_ context.Context, verdict domain.DealVerdict) error {
	q := verdict.Quote
	s.logger.Printf("DEAL %s %.2f EUR (threshold %.2f, save %.2f / %.1f%%) via %s",
		q.Route.Key(), q.Price, verdict.Threshold, verdict.SavingsAmount, verdict.SavingsPct, q.Source)
	return nil
}
