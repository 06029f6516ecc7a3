package datasource

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        5,
		InitialBackoff:    10 * time.Millisecond,
		MaxBackoff:        50 * time.Millisecond,
		BackoffMultiplier: 2.0,
	}
}

// newStreamServer upgrades each request and hands the connection plus its
// ordinal to handle. handle runs on the server side and owns the connection.
func newStreamServer(handle func(conn *websocket.Conn, connNum int)) *httptest.Server {
	var connCount int32
	upgrader := websocket.Upgrader{}

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		handle(conn, int(atomic.AddInt32(&connCount, 1)))
	}))
}

func wsAddr(srv *httptest.Server) string {
	return "ws" + strings.TrimPrefix(srv.URL, "http") + "/stream"
}

func waitForMove(t *testing.T, moves <-chan LineMove) LineMove {
	t.Helper()
	select {
	case move := <-moves:
		return move
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for line move")
		return LineMove{}
	}
}

func TestStreamClientReconnectsAfterDrop(t *testing.T) {
	srv := newStreamServer(func(conn *websocket.Conn, connNum int) {
		defer conn.Close()
		if connNum == 1 {
			// Drop the connection right after the first message.
			_ = conn.WriteJSON(LineMove{Op: "lineMove", GameSourceID: "g1", Provider: "consensus", Market: "spread", Line: -3.0, CapturedAt: "2024-11-03T17:00:00Z"})
			return
		}
		_ = conn.WriteJSON(LineMove{Op: "lineMove", GameSourceID: "g2", Provider: "consensus", Market: "spread", Line: -3.5, CapturedAt: "2024-11-03T17:05:00Z"})
		time.Sleep(500 * time.Millisecond)
	})
	defer srv.Close()

	moves := make(chan LineMove, 4)
	client := NewStreamClient(wsAddr(srv), "test-key", nil)
	client.SetReconnectConfig(testReconnectConfig())
	client.AddHandler(func(move LineMove) error {
		moves <- move
		return nil
	})

	require.NoError(t, client.Connect(context.Background()))
	defer client.Close()

	assert.Equal(t, "g1", waitForMove(t, moves).GameSourceID)
	// The second move proves the client re-dialed after the server drop.
	assert.Equal(t, "g2", waitForMove(t, moves).GameSourceID)
	assert.True(t, client.IsConnected())
}

func TestStreamClientGivesUpAfterRetryBudget(t *testing.T) {
	srv := newStreamServer(func(conn *websocket.Conn, _ int) {
		conn.Close()
	})

	client := NewStreamClient(wsAddr(srv), "test-key", nil)
	client.SetReconnectConfig(ReconnectConfig{
		MaxRetries:        1,
		InitialBackoff:    5 * time.Millisecond,
		MaxBackoff:        10 * time.Millisecond,
		BackoffMultiplier: 2.0,
	})

	require.NoError(t, client.Connect(context.Background()))

	// With the server gone every re-dial fails and the budget runs out.
	srv.Close()

	assert.Eventually(t, func() bool {
		return !client.IsConnected()
	}, 2*time.Second, 20*time.Millisecond)
}

func TestStreamClientCloseStopsReconnect(t *testing.T) {
	var conns int32
	srv := newStreamServer(func(conn *websocket.Conn, connNum int) {
		atomic.StoreInt32(&conns, int32(connNum))
		conn.Close()
	})
	defer srv.Close()

	client := NewStreamClient(wsAddr(srv), "test-key", nil)
	client.SetReconnectConfig(testReconnectConfig())

	require.NoError(t, client.Connect(context.Background()))
	require.NoError(t, client.Close())

	// An explicitly closed client must not dial again.
	time.Sleep(100 * time.Millisecond)
	assert.LessOrEqual(t, atomic.LoadInt32(&conns), int32(1))
	assert.False(t, client.IsConnected())
}

func TestStreamClientSubscribeRequiresConnection(t *testing.T) {
	client := NewStreamClient("stream.example.com", "test-key", nil)

	assert.Error(t, client.Subscribe(context.Background(), []string{"g1"}))
}
