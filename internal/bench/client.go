package bench

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Config holds SparkBench client configuration.
type Config struct {
	URL              string
	HandshakeTimeout time.Duration
}

// ConnectionState represents the client's connection lifecycle.
type ConnectionState int32

const (
	StateDisconnected ConnectionState = iota
	StateConnecting
	StateConnected
	StateClosing
)

// Client manages one persistent WebSocket connection to the SparkBench
// API and translates between wire frames and typed events/commands.
//
// A connection that breaks mid-session does not move the client out of
// StateConnected: sends start failing (and are suppressed by callers)
// while the simulation keeps advancing on the last known throttle.
// Only Close transitions back to StateDisconnected.
type Client struct {
	config Config
	log    *zap.Logger

	mu      sync.Mutex // guards conn and session
	conn    *websocket.Conn
	session SessionInfo

	state   atomic.Int32
	writeMu sync.Mutex
}

// NewClient creates a disconnected client.
func NewClient(cfg Config, log *zap.Logger) *Client {
	c := &Client{config: cfg, log: log}
	c.state.Store(int32(StateDisconnected))
	return c
}

// State returns the current connection state.
func (c *Client) State() ConnectionState {
	return ConnectionState(c.state.Load())
}

// Session returns the session info received in the ready frame.
// Valid once Connect has returned nil.
func (c *Client) Session() SessionInfo {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.session
}

// Connect dials the bench API and blocks until the ready frame arrives
// or the handshake timeout elapses. On timeout the connection is torn
// down and ErrHandshakeTimeout is returned.
func (c *Client) Connect(ctx context.Context) error {
	timeout := c.config.HandshakeTimeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}

	c.state.Store(int32(StateConnecting))

	dialer := websocket.Dialer{HandshakeTimeout: timeout}
	conn, _, err := dialer.DialContext(ctx, c.config.URL, nil)
	if err != nil {
		c.state.Store(int32(StateDisconnected))
		return fmt.Errorf("bench dial %s: %w", c.config.URL, err)
	}

	return c.awaitReady(conn, timeout)
}

// awaitReady reads frames off a fresh connection until the ready
// acknowledgment arrives, then publishes the connection.
func (c *Client) awaitReady(conn *websocket.Conn, timeout time.Duration) error {
	_ = conn.SetReadDeadline(time.Now().Add(timeout))

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			_ = conn.Close()
			c.state.Store(int32(StateDisconnected))
			if isTimeout(err) {
				return fmt.Errorf("%w (after %s)", ErrHandshakeTimeout, timeout)
			}
			return fmt.Errorf("bench handshake: %w", err)
		}

		ev := DecodeEvent(raw)
		if ev.Type != EventReady {
			// Anything before the ready ack is dropped.
			continue
		}

		_ = conn.SetReadDeadline(time.Time{})

		c.mu.Lock()
		c.conn = conn
		c.session = ev.Session
		c.mu.Unlock()
		c.state.Store(int32(StateConnected))

		c.log.Info("connected to bench",
			zap.String("project", ev.Session.Project),
			zap.Int("parts", len(ev.Session.Parts)))
		return nil
	}
}

// ReadNext reads and decodes the next inbound frame. Malformed frames
// come back as EventUnrecognized with a nil error; only transport
// failures return an error.
func (c *Client) ReadNext() (Event, error) {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil || c.State() != StateConnected {
		return Event{}, ErrNotConnected
	}

	_, raw, err := conn.ReadMessage()
	if err != nil {
		return Event{}, fmt.Errorf("bench read: %w", err)
	}
	return DecodeEvent(raw), nil
}

// Send serializes one outbound command and writes it as a text frame.
// Callers treat failures as best-effort telemetry and carry on.
func (c *Client) Send(cmd any) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()

	if conn == nil || c.State() != StateConnected {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	if err := conn.WriteJSON(cmd); err != nil {
		return fmt.Errorf("bench send: %w", err)
	}
	return nil
}

// Close terminates the connection. Idempotent.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.conn == nil {
		c.state.Store(int32(StateDisconnected))
		return nil
	}

	c.state.Store(int32(StateClosing))

	// Best-effort close frame; the peer may already be gone.
	c.writeMu.Lock()
	_ = c.conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second))
	c.writeMu.Unlock()

	err := c.conn.Close()
	c.conn = nil
	c.state.Store(int32(StateDisconnected))
	return err
}

func isTimeout(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return os.IsTimeout(err)
}
