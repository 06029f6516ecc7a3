package datasource

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// StreamClient handles the WebSocket connection to the line movement stream
type StreamClient struct {
	conn            *websocket.Conn
	apiKey          string
	streamURL       string
	mu              sync.RWMutex
	isConnected     bool
	closed          bool
	handlers        []LineMoveHandler
	subscribedIDs   []string
	reconnectConfig ReconnectConfig
	lastMessageTime time.Time
	logger          *log.Logger
}

// ReconnectConfig controls reconnection behavior after a dropped connection
type ReconnectConfig struct {
	MaxRetries        int
	InitialBackoff    time.Duration
	MaxBackoff        time.Duration
	BackoffMultiplier float64
}

// LineMoveHandler is called when a line movement message is received
type LineMoveHandler func(move LineMove) error

// LineMove represents a single line movement message from the stream
type LineMove struct {
	Op           string  `json:"op"`
	GameSourceID string  `json:"gameId"`
	Provider     string  `json:"book"`
	Market       string  `json:"market"`
	Line         float64 `json:"line"`
	CapturedAt   string  `json:"capturedAt"`
	Heartbeat    bool    `json:"heartbeat,omitempty"`
}

// DefaultReconnectConfig returns default reconnection configuration
func DefaultReconnectConfig() ReconnectConfig {
	return ReconnectConfig{
		MaxRetries:        10,
		InitialBackoff:    1 * time.Second,
		MaxBackoff:        30 * time.Second,
		BackoffMultiplier: 1.5,
	}
}

// NewStreamClient creates a new line movement stream client
func NewStreamClient(streamURL, apiKey string, logger *log.Logger) *StreamClient {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}

	return &StreamClient{
		apiKey:          apiKey,
		streamURL:       streamURL,
		handlers:        make([]LineMoveHandler, 0),
		reconnectConfig: DefaultReconnectConfig(),
		logger:          logger,
	}
}

// SetReconnectConfig overrides the reconnection behavior. Call before Connect.
func (s *StreamClient) SetReconnectConfig(cfg ReconnectConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reconnectConfig = cfg
}

// Connect establishes the WebSocket connection and starts the read loop.
// Dropped connections are re-dialed per the reconnect configuration until
// ctx is cancelled, Close is called, or the retry budget runs out.
func (s *StreamClient) Connect(ctx context.Context) error {
	s.mu.Lock()
	if s.isConnected {
		s.mu.Unlock()
		return fmt.Errorf("already connected")
	}
	s.closed = false
	s.mu.Unlock()

	s.logger.Printf("Connecting to stream: %s", s.streamURL)

	if err := s.dial(ctx); err != nil {
		return err
	}

	s.logger.Printf("Connected to stream successfully")

	go s.readLoop(ctx)

	return nil
}

// dial establishes a single WebSocket connection
func (s *StreamClient) dial(ctx context.Context) error {
	wsURL := s.streamURL
	if !strings.Contains(wsURL, "://") {
		wsURL = fmt.Sprintf("wss://%s/stream", wsURL)
	}

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
	}

	conn, _, err := dialer.DialContext(ctx, wsURL, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to stream: %w", err)
	}

	s.mu.Lock()
	s.conn = conn
	s.isConnected = true
	s.lastMessageTime = time.Now()
	s.mu.Unlock()

	return nil
}

// Subscribe sends the subscription message for the given games. The set is
// remembered so a reconnect can restore it.
func (s *StreamClient) Subscribe(ctx context.Context, gameSourceIDs []string) error {
	s.mu.Lock()
	if !s.isConnected || s.conn == nil {
		s.mu.Unlock()
		return fmt.Errorf("not connected to stream")
	}
	s.subscribedIDs = append([]string(nil), gameSourceIDs...)
	s.mu.Unlock()

	subMsg := map[string]interface{}{
		"op":        "subscribe",
		"authToken": s.apiKey,
		"gameIds":   gameSourceIDs,
		"heartbeat": true,
	}

	s.logger.Printf("Subscribing to %d games", len(gameSourceIDs))
	return s.sendMessage(subMsg)
}

// AddHandler registers a line movement handler
func (s *StreamClient) AddHandler(handler LineMoveHandler) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, handler)
}

// readLoop pumps messages until the connection drops, then reconnects
func (s *StreamClient) readLoop(ctx context.Context) {
	for {
		s.readMessages()

		if ctx.Err() != nil || s.isClosed() {
			return
		}

		if err := s.reconnect(ctx); err != nil {
			s.logger.Printf("Stream reconnect failed: %v", err)
			s.Close()
			return
		}
	}
}

// reconnect re-dials with exponential backoff and restores subscriptions
func (s *StreamClient) reconnect(ctx context.Context) error {
	s.mu.RLock()
	cfg := s.reconnectConfig
	s.mu.RUnlock()

	backoff := cfg.InitialBackoff
	for attempt := 1; attempt <= cfg.MaxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}

		if s.isClosed() {
			return fmt.Errorf("stream closed")
		}

		if err := s.dial(ctx); err != nil {
			s.logger.Printf("Reconnect attempt %d/%d failed: %v", attempt, cfg.MaxRetries, err)
			backoff = time.Duration(float64(backoff) * cfg.BackoffMultiplier)
			if backoff > cfg.MaxBackoff {
				backoff = cfg.MaxBackoff
			}
			continue
		}

		s.logger.Printf("Stream reconnected after %d attempt(s)", attempt)

		s.mu.RLock()
		ids := append([]string(nil), s.subscribedIDs...)
		s.mu.RUnlock()
		if len(ids) > 0 {
			if err := s.Subscribe(ctx, ids); err != nil {
				s.logger.Printf("Failed to restore subscriptions: %v", err)
			}
		}

		return nil
	}

	return fmt.Errorf("gave up after %d reconnect attempts", cfg.MaxRetries)
}

// readMessages reads messages from the current connection until it fails
func (s *StreamClient) readMessages() {
	s.mu.RLock()
	conn := s.conn
	s.mu.RUnlock()
	if conn == nil {
		return
	}

	for {
		var raw json.RawMessage
		err := conn.ReadJSON(&raw)
		if err != nil {
			s.logger.Printf("Error reading message: %v", err)
			s.mu.Lock()
			s.isConnected = false
			s.mu.Unlock()
			conn.Close()
			return
		}

		s.mu.Lock()
		s.lastMessageTime = time.Now()
		s.mu.Unlock()

		var move LineMove
		if err := json.Unmarshal(raw, &move); err != nil {
			s.logger.Printf("Failed to decode stream message: %v", err)
			continue
		}

		if move.Heartbeat {
			continue
		}

		s.mu.RLock()
		handlers := s.handlers
		s.mu.RUnlock()

		for _, handler := range handlers {
			if err := handler(move); err != nil {
				s.logger.Printf("Handler error: %v", err)
			}
		}
	}
}

// sendMessage sends a JSON message to the stream
func (s *StreamClient) sendMessage(msg interface{}) error {
	s.mu.RLock()
	if !s.isConnected || s.conn == nil {
		s.mu.RUnlock()
		return fmt.Errorf("not connected")
	}
	conn := s.conn
	s.mu.RUnlock()

	return conn.WriteJSON(msg)
}

// IsConnected returns whether the stream is connected
func (s *StreamClient) IsConnected() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isConnected
}

func (s *StreamClient) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

// LastMessageTime returns the time of the last received message
func (s *StreamClient) LastMessageTime() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastMessageTime
}

// Close closes the stream connection and stops reconnection
func (s *StreamClient) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	s.isConnected = false

	if s.conn == nil {
		return nil
	}
	return s.conn.Close()
}

// Ping sends a ping message to keep the connection alive
func (s *StreamClient) Ping() error {
	return s.sendMessage(map[string]interface{}{
		"op": "ping",
	})
}
