package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/magefree/mage-sim/internal/simulation"
)

const (
	writeWait      = 10 * time.Second
	sendBufferSize = 256
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // observers are read-only
	},
}

// Message is the JSON envelope exchanged with websocket observers.
//
// Clients send "watch" (optionally with run_id and game to filter) and
// "ping". The hub answers with "watching", "pong" and "event" messages.
type Message struct {
	Type  string        `json:"type"`
	RunID string        `json:"run_id,omitempty"`
	Game  *int          `json:"game,omitempty"`
	Event *EventPayload `json:"event,omitempty"`
	Error string        `json:"error,omitempty"`
}

// EventPayload is a game event as sent to observers.
type EventPayload struct {
	Type        string `json:"type"`
	Turn        int    `json:"turn"`
	Phase       string `json:"phase"`
	Step        string `json:"step"`
	PlayerID    string `json:"player_id,omitempty"`
	SourceID    string `json:"source_id,omitempty"`
	TargetID    string `json:"target_id,omitempty"`
	Amount      int    `json:"amount,omitempty"`
	Description string `json:"description,omitempty"`
}

type filter struct {
	runID string
	game  *int
}

func (f filter) matches(e simulation.GameEvent) bool {
	if f.runID != "" && f.runID != e.RunID {
		return false
	}
	return f.game == nil || *f.game == e.Game
}

// Client is one websocket observer.
type Client struct {
	conn   *websocket.Conn
	send   chan []byte
	filter filter
}

// request is a client message answered from the run loop, which owns
// every client's filter and send channel.
type request struct {
	client *Client
	filter *filter
	reply  Message
}

type broadcast struct {
	event simulation.GameEvent
	data  []byte
}

// Hub fans game events out to websocket observers. It implements
// simulation.Observer.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan broadcast
	register   chan *Client
	unregister chan *Client
	requests   chan request
	done       chan struct{}
	dropped    atomic.Int64
	logger     *zap.Logger
}

// NewHub returns a hub; call Run to start delivering events.
func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan broadcast, sendBufferSize),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		requests:   make(chan request),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run delivers events until ctx is done, then disconnects every client.
func (h *Hub) Run(ctx context.Context) {
	defer func() {
		close(h.done)
		for client := range h.clients {
			close(client.send)
			delete(h.clients, client)
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Debug("observer registered", zap.Int("observers", len(h.clients)))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Debug("observer unregistered", zap.Int("observers", len(h.clients)))
			}

		case req := <-h.requests:
			if _, ok := h.clients[req.client]; !ok {
				continue
			}
			if req.filter != nil {
				req.client.filter = *req.filter
			}
			data, err := json.Marshal(req.reply)
			if err != nil {
				h.logger.Error("failed to encode reply", zap.Error(err))
				continue
			}
			h.deliver(req.client, data)

		case msg := <-h.broadcast:
			for client := range h.clients {
				if client.filter.matches(msg.event) {
					h.deliver(client, msg.data)
				}
			}
		}
	}
}

// deliver queues data for client, dropping clients that cannot keep up.
func (h *Hub) deliver(client *Client, data []byte) {
	select {
	case client.send <- data:
	default:
		close(client.send)
		delete(h.clients, client)
		h.logger.Warn("dropped slow observer")
	}
}

// Observe implements simulation.Observer. It never blocks: events are
// dropped when the broadcast buffer is full or the hub has stopped.
func (h *Hub) Observe(e simulation.GameEvent) {
	game := e.Game
	data, err := json.Marshal(Message{
		Type:  "event",
		RunID: e.RunID,
		Game:  &game,
		Event: &EventPayload{
			Type:        string(e.Event.Type),
			Turn:        e.Event.Turn,
			Phase:       e.Event.Phase.String(),
			Step:        e.Event.Step.String(),
			PlayerID:    e.Event.PlayerID,
			SourceID:    e.Event.SourceID,
			TargetID:    e.Event.TargetID,
			Amount:      e.Event.Amount,
			Description: e.Event.Description,
		},
	})
	if err != nil {
		h.logger.Error("failed to encode event", zap.Error(err))
		return
	}
	select {
	case <-h.done:
		return
	default:
	}
	select {
	case h.broadcast <- broadcast{event: e, data: data}:
	default:
		if h.dropped.Add(1) == 1 {
			h.logger.Warn("event buffer full, dropping events", zap.String("run_id", e.RunID))
		}
	}
}

// Dropped returns the number of events discarded because the broadcast
// buffer was full.
func (h *Hub) Dropped() int64 {
	return h.dropped.Load()
}

// ServeWS upgrades the request and registers the connection as an observer.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}

	client := &Client{
		conn: conn,
		send: make(chan []byte, sendBufferSize),
	}
	select {
	case h.register <- client:
	case <-h.done:
		conn.Close()
		return
	}

	go client.writePump()
	go client.readPump(h)
}

func (c *Client) readPump(hub *Hub) {
	defer func() {
		select {
		case hub.unregister <- c:
		case <-hub.done:
		}
		c.conn.Close()
	}()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			hub.logger.Debug("invalid observer message", zap.Error(err))
			continue
		}
		hub.handleMessage(c, msg)
	}
}

func (h *Hub) handleMessage(c *Client, msg Message) {
	req := request{client: c}
	switch msg.Type {
	case "watch":
		req.filter = &filter{runID: msg.RunID, game: msg.Game}
		req.reply = Message{Type: "watching", RunID: msg.RunID, Game: msg.Game}
	case "ping":
		req.reply = Message{Type: "pong"}
	default:
		req.reply = Message{Type: "error", Error: "unknown message type: " + msg.Type}
	}
	select {
	case h.requests <- req:
	case <-h.done:
	}
}

func (c *Client) writePump() {
	defer c.conn.Close()

	for message := range c.send {
		c.conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
			break
		}
	}
	c.conn.WriteMessage(websocket.CloseMessage, []byte{})
}
