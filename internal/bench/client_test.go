package bench

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.uber.org/zap"
)

const readyFrame = `{"type":"ready","project":"autothrottle","parts":[{"id":"throttle","type":"wokwi-servo"}]}`

// newBenchServer starts a WebSocket test server and hands each
// accepted connection to handler. Returns a ws:// URL.
func newBenchServer(t *testing.T, handler func(conn *websocket.Conn)) string {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return "ws" + strings.TrimPrefix(srv.URL, "http")
}

func testConfig(url string) Config {
	return Config{URL: url, HandshakeTimeout: 2 * time.Second}
}

func TestConnectReceivesReadyAck(t *testing.T) {
	url := newBenchServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(readyFrame))
		time.Sleep(100 * time.Millisecond)
	})

	c := NewClient(testConfig(url), zap.NewNop())
	assert.Equal(t, StateDisconnected, c.State())

	err := c.Connect(context.Background())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, StateConnected, c.State())
	assert.Equal(t, "autothrottle", c.Session().Project)
	require.Len(t, c.Session().Parts, 1)
	assert.Equal(t, "throttle", c.Session().Parts[0].ID)
}

func TestConnectDropsFramesBeforeReady(t *testing.T) {
	url := newBenchServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"type":"state","parts":{}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`garbage`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(readyFrame))
		time.Sleep(100 * time.Millisecond)
	})

	c := NewClient(testConfig(url), zap.NewNop())
	err := c.Connect(context.Background())
	require.NoError(t, err)
	defer c.Close()

	assert.Equal(t, StateConnected, c.State())
}

func TestConnectTimesOutWithoutReady(t *testing.T) {
	url := newBenchServer(t, func(conn *websocket.Conn) {
		// Accept and stay silent: the client must give up.
		time.Sleep(time.Second)
	})

	c := NewClient(Config{URL: url, HandshakeTimeout: 100 * time.Millisecond}, zap.NewNop())
	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandshakeTimeout)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestConnectFailsWhenServerUnreachable(t *testing.T) {
	c := NewClient(Config{URL: "ws://127.0.0.1:1", HandshakeTimeout: 500 * time.Millisecond}, zap.NewNop())
	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Equal(t, StateDisconnected, c.State())
}

func TestSendWritesCommandFrame(t *testing.T) {
	got := make(chan string, 1)
	url := newBenchServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(readyFrame))
		_, raw, err := conn.ReadMessage()
		if err != nil {
			return
		}
		got <- string(raw)
	})

	c := NewClient(testConfig(url), zap.NewNop())
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	require.NoError(t, c.Send(NewPressureCommand("pitot", 101325.4)))

	select {
	case raw := <-got:
		assert.JSONEq(t,
			`{"cmd":"set-control","partId":"pitot","control":"pressure","value":101325}`,
			raw)
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for command frame")
	}
}

func TestSendWhenNotConnected(t *testing.T) {
	c := NewClient(Config{URL: "ws://127.0.0.1:1"}, zap.NewNop())
	err := c.Send(NewStatePoll())
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestReadNextDecodesInboundFrames(t *testing.T) {
	url := newBenchServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(readyFrame))
		_ = conn.WriteMessage(websocket.TextMessage,
			[]byte(`{"type":"state","parts":{"throttle":{"type":"wokwi-servo","angle":90}}}`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`not json at all`))
		time.Sleep(200 * time.Millisecond)
	})

	c := NewClient(testConfig(url), zap.NewNop())
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	ev, err := c.ReadNext()
	require.NoError(t, err)
	assert.Equal(t, EventState, ev.Type)
	assert.True(t, ev.HasThrottle)
	assert.Equal(t, 90.0, ev.ThrottleAngle)

	// Malformed frames are dropped silently, not escalated.
	ev, err = c.ReadNext()
	require.NoError(t, err)
	assert.Equal(t, EventUnrecognized, ev.Type)
}

func TestReadNextWhenNotConnected(t *testing.T) {
	c := NewClient(Config{URL: "ws://127.0.0.1:1"}, zap.NewNop())
	_, err := c.ReadNext()
	assert.ErrorIs(t, err, ErrNotConnected)
}

func TestReadNextReportsTransportFailure(t *testing.T) {
	url := newBenchServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(readyFrame))
		// Close immediately: the next read must fail.
	})

	c := NewClient(testConfig(url), zap.NewNop())
	require.NoError(t, c.Connect(context.Background()))
	defer c.Close()

	_, err := c.ReadNext()
	require.Error(t, err)
	// The client stays formally connected; sends simply start failing.
	assert.Equal(t, StateConnected, c.State())
}

func TestCloseIsIdempotent(t *testing.T) {
	url := newBenchServer(t, func(conn *websocket.Conn) {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(readyFrame))
		time.Sleep(100 * time.Millisecond)
	})

	c := NewClient(testConfig(url), zap.NewNop())
	require.NoError(t, c.Connect(context.Background()))

	assert.NoError(t, c.Close())
	assert.Equal(t, StateDisconnected, c.State())
	assert.NoError(t, c.Close())
	assert.Equal(t, StateDisconnected, c.State())
}
