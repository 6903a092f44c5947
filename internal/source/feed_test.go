package source

import (
	"context"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

// startFeedServer runs a websocket server that pushes the given raw
// messages, then keeps the connection open.
func startFeedServer(t *testing.T, messages []string) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Logf("upgrade failed: %v", err)
			return
		}
		defer conn.Close()

		for _, msg := range messages {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return
			}
		}
		// Hold the connection until the client goes away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}))
}

func wsURL(server *httptest.Server) string {
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestFeed_DeliversUpdates(t *testing.T) {
	server := startFeedServer(t, []string{
		`{"origin":"MAD","destination":"MIA","price":455,"currency":"EUR"}`,
		`{"origin":"BCN","destination":"JFK","price":389,"currency":"EUR"}`,
	})
	defer server.Close()

	feed := NewFeed(wsURL(server), nil, log.New(io.Discard, "", 0))
	defer feed.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	first := <-updates
	if first.Origin != "MAD" || first.Price != 455 {
		t.Errorf("First update mismatch: %+v", first)
	}

	second := <-updates
	if second.Destination != "JFK" || second.Price != 389 {
		t.Errorf("Second update mismatch: %+v", second)
	}

	cancel()
}

func TestFeed_DropsMalformedAndNonPositive(t *testing.T) {
	server := startFeedServer(t, []string{
		`not json`,
		`{"origin":"MAD","destination":"MIA","price":0}`,
		`{"origin":"","destination":"MIA","price":100}`,
		`{"origin":"MAD","destination":"MIA","price":475,"currency":"EUR"}`,
	})
	defer server.Close()

	feed := NewFeed(wsURL(server), nil, log.New(io.Discard, "", 0))
	defer feed.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	updates, err := feed.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe failed: %v", err)
	}

	got := <-updates
	if got.Price != 475 {
		t.Errorf("Expected only the valid update, got %+v", got)
	}

	cancel()
}

func TestFeed_SubscribeFailsOnBadEndpoint(t *testing.T) {
	feed := NewFeed("ws://127.0.0.1:1/feed", nil, log.New(io.Discard, "", 0))

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := feed.Subscribe(ctx); err == nil {
		t.Error("Expected dial error for unreachable endpoint")
	}
}
