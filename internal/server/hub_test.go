package server

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

	"github.com/magefree/mage-sim/internal/game/rules"
	"github.com/magefree/mage-sim/internal/simulation"
)

func startHub(t *testing.T) (*Hub, string, context.CancelFunc) {
	t.Helper()
	hub := NewHub(zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	go hub.Run(ctx)

	srv := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	t.Cleanup(func() {
		cancel()
		srv.Close()
	})
	return hub, "ws" + strings.TrimPrefix(srv.URL, "http"), cancel
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func exchange(t *testing.T, conn *websocket.Conn, msg Message) Message {
	t.Helper()
	require.NoError(t, conn.WriteJSON(msg))
	return read(t, conn)
}

func read(t *testing.T, conn *websocket.Conn) Message {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var msg Message
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func gameEvent(runID string, game, turn int) simulation.GameEvent {
	return simulation.GameEvent{
		RunID: runID,
		Game:  game,
		Event: rules.Event{Type: rules.EventTurnStarted, Turn: turn, PlayerID: "p1"},
	}
}

func TestHubBroadcastsEvents(t *testing.T) {
	hub, url, _ := startHub(t)
	conn := dial(t, url)

	reply := exchange(t, conn, Message{Type: "watch"})
	assert.Equal(t, "watching", reply.Type)

	hub.Observe(gameEvent("run-1", 3, 5))

	msg := read(t, conn)
	assert.Equal(t, "event", msg.Type)
	assert.Equal(t, "run-1", msg.RunID)
	require.NotNil(t, msg.Game)
	assert.Equal(t, 3, *msg.Game)
	require.NotNil(t, msg.Event)
	assert.Equal(t, string(rules.EventTurnStarted), msg.Event.Type)
	assert.Equal(t, 5, msg.Event.Turn)
	assert.Equal(t, "p1", msg.Event.PlayerID)
}

func TestHubFiltersByGame(t *testing.T) {
	hub, url, _ := startHub(t)
	conn := dial(t, url)

	game := 1
	reply := exchange(t, conn, Message{Type: "watch", RunID: "run-1", Game: &game})
	require.Equal(t, "watching", reply.Type)
	require.NotNil(t, reply.Game)
	assert.Equal(t, 1, *reply.Game)

	hub.Observe(gameEvent("run-1", 0, 1))
	hub.Observe(gameEvent("run-2", 1, 1))
	hub.Observe(gameEvent("run-1", 1, 2))

	msg := read(t, conn)
	assert.Equal(t, "run-1", msg.RunID)
	assert.Equal(t, 1, *msg.Game)
	assert.Equal(t, 2, msg.Event.Turn)
}

func TestHubAnswersPingAndUnknownMessages(t *testing.T) {
	_, url, _ := startHub(t)
	conn := dial(t, url)

	assert.Equal(t, "pong", exchange(t, conn, Message{Type: "ping"}).Type)

	reply := exchange(t, conn, Message{Type: "shuffle"})
	assert.Equal(t, "error", reply.Type)
	assert.Contains(t, reply.Error, "shuffle")
}

func TestHubDropsEventsAfterStop(t *testing.T) {
	hub, url, cancel := startHub(t)
	conn := dial(t, url)
	require.Equal(t, "pong", exchange(t, conn, Message{Type: "ping"}).Type)

	cancel()
	<-hub.done

	done := make(chan struct{})
	go func() {
		for i := 0; i < 2*sendBufferSize; i++ {
			hub.Observe(gameEvent("run-1", 0, i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Observe blocked after the hub stopped")
	}
}

func TestHubObserveDoesNotBlockWithoutRun(t *testing.T) {
	hub := NewHub(zap.NewNop())

	done := make(chan struct{})
	go func() {
		for i := 0; i < sendBufferSize+10; i++ {
			hub.Observe(gameEvent("run-1", 0, i))
		}
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Observe blocked on a hub that was never started")
	}
	assert.Equal(t, int64(10), hub.Dropped())
}
