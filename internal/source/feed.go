package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// FareUpdate is one pushed fare observation from the live feed.
type FareUpdate struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	Price       float64 `json:"price"`
	Currency    string  `json:"currency"`
}

// FeedConfig configures feed client behavior.
type FeedConfig struct {
	// ReconnectDelay is initial delay before reconnect attempt.
	ReconnectDelay time.Duration
	// MaxReconnectDelay is maximum delay between reconnect attempts.
	MaxReconnectDelay time.Duration
	// ReadTimeout is timeout for reading messages.
	ReadTimeout time.Duration
}

// DefaultFeedConfig returns default feed configuration.
func DefaultFeedConfig() FeedConfig {
	return FeedConfig{
		ReconnectDelay:    1 * time.Second,
		MaxReconnectDelay: 30 * time.Second,
		ReadTimeout:       90 * time.Second,
	}
}

// Feed consumes pushed fare updates over a WebSocket connection,
// reconnecting with exponential backoff when the peer drops.
type Feed struct {
	endpoint string
	config   FeedConfig
	logger   *log.Logger

	closed chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// NewFeed creates a feed client for the endpoint. Logger may be nil.
func NewFeed(endpoint string, config *FeedConfig, logger *log.Logger) *Feed {
	cfg := DefaultFeedConfig()
	if config != nil {
		cfg = *config
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Feed{
		endpoint: endpoint,
		config:   cfg,
		logger:   logger,
		closed:   make(chan struct{}),
	}
}

// Subscribe connects and returns a channel of fare updates. The channel
// closes when the context is cancelled or the feed is closed.
func (f *Feed) Subscribe(ctx context.Context) (<-chan FareUpdate, error) {
	conn, err := f.dial(ctx)
	if err != nil {
		return nil, err
	}

	updates := make(chan FareUpdate, 64)
	f.wg.Add(1)
	go f.readLoop(ctx, conn, updates)

	return updates, nil
}

// Close stops the feed and waits for the read loop to finish.
func (f *Feed) Close() {
	f.once.Do(func() { close(f.closed) })
	f.wg.Wait()
}

func (f *Feed) dial(ctx context.Context) (*websocket.Conn, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, f.endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("feed dial: %w", err)
	}
	return conn, nil
}

// readLoop reads updates until shutdown, reconnecting on failure.
func (f *Feed) readLoop(ctx context.Context, conn *websocket.Conn, updates chan<- FareUpdate) {
	defer f.wg.Done()
	defer close(updates)
	defer func() {
		if conn != nil {
			conn.Close()
		}
	}()

	delay := f.config.ReconnectDelay

	for {
		select {
		case <-ctx.Done():
			return
		case <-f.closed:
			return
		default:
		}

		conn.SetReadDeadline(time.Now().Add(f.config.ReadTimeout))
		_, data, err := conn.ReadMessage()
		if err != nil {
			conn.Close()
			conn = nil

			// Reconnect with exponential backoff.
			for {
				select {
				case <-ctx.Done():
					return
				case <-f.closed:
					return
				case <-time.After(delay):
				}

				next, dialErr := f.dial(ctx)
				if dialErr == nil {
					conn = next
					delay = f.config.ReconnectDelay
					break
				}
				f.logger.Printf("feed reconnect failed: %v", dialErr)
				delay *= 2
				if delay > f.config.MaxReconnectDelay {
					delay = f.config.MaxReconnectDelay
				}
			}
			continue
		}

		var update FareUpdate
		if err := json.Unmarshal(data, &update); err != nil {
			f.logger.Printf("feed: malformed update dropped: %v", err)
			continue
		}
		if update.Price <= 0 || update.Origin == "" || update.Destination == "" {
			continue
		}

		select {
		case updates <- update:
		case <-ctx.Done():
			return
		case <-f.closed:
			return
		}
	}
}
