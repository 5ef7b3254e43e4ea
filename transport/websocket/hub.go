package websocket

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/loot-road-game/internal/model"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// DogView is the subset of a dog's state broadcast to spectators.
type DogView struct {
	ID      int     `json:"id"`
	Name    string  `json:"name"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Dir     string  `json:"dir"`
	Score   int     `json:"score"`
	BagSize int     `json:"bagSize"`
}

// StateUpdate summarizes one session's world right after a tick.
type StateUpdate struct {
	Dogs            []DogView `json:"dogs"`
	GroundLootCount int       `json:"groundLootCount"`
}

// Message is the envelope every broadcast travels in.
type Message struct {
	SessionID int          `json:"sessionId"`
	State     *StateUpdate `json:"state,omitempty"`
	Event     string       `json:"event,omitempty"`
	Data      interface{}  `json:"data,omitempty"`
}

// Client is one spectator connection subscribed to a single session.
type Client struct {
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	sessionID int
}

// Hub fans out per-session state updates to every subscribed spectator
// connection. Messages are dropped, never queued, for a client whose send
// buffer is full.
type Hub struct {
	sessions map[int]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
}

// NewHub creates an idle Hub. Call Run to start its event loop.
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[int]map[*Client]bool),
		broadcast:  make(chan *Message),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run services register/unregister/broadcast until the process exits.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case message := <-h.broadcast:
			h.broadcastMessage(message)
		}
	}
}

// ServeWS upgrades r to a WebSocket connection and subscribes it to
// sessionID.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request, sessionID int) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("websocket: upgrade failed: %v", err)
		return
	}

	client := &Client{hub: h, conn: conn, send: make(chan []byte, 256), sessionID: sessionID}
	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// BroadcastState summarizes dogs and groundLootCount and sends it to every
// client subscribed to sessionID. Dropped silently if no client is
// subscribed.
func (h *Hub) BroadcastState(sessionID int, dogs []*model.Dog, groundLootCount int) {
	views := make([]DogView, 0, len(dogs))
	for _, d := range dogs {
		views = append(views, DogView{
			ID:      d.ID,
			Name:    d.Name,
			X:       d.Position.X,
			Y:       d.Position.Y,
			Dir:     string(d.Direction),
			Score:   d.Score,
			BagSize: len(d.Bag),
		})
	}

	message := &Message{
		SessionID: sessionID,
		Event:     "state_update",
		State:     &StateUpdate{Dogs: views, GroundLootCount: groundLootCount},
	}

	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("websocket: marshal state update: %v", err)
		return
	}

	if clients, ok := h.sessions[sessionID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				h.unregisterClient(client)
			}
		}
	}
}

func (h *Hub) registerClient(client *Client) {
	if h.sessions[client.sessionID] == nil {
		h.sessions[client.sessionID] = make(map[*Client]bool)
	}
	h.sessions[client.sessionID][client] = true
}

func (h *Hub) unregisterClient(client *Client) {
	clients, ok := h.sessions[client.sessionID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.send)
	if len(clients) == 0 {
		delete(h.sessions, client.sessionID)
	}
}

func (h *Hub) broadcastMessage(message *Message) {
	data, err := json.Marshal(message)
	if err != nil {
		log.Printf("websocket: marshal broadcast: %v", err)
		return
	}

	if clients, ok := h.sessions[message.SessionID]; ok {
		for client := range clients {
			select {
			case client.send <- data:
			default:
				h.unregisterClient(client)
			}
		}
	}
}

func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			w, err := c.conn.NextWriter(websocket.TextMessage)
			if err != nil {
				return
			}
			w.Write(message)

			n := len(c.send)
			for i := 0; i < n; i++ {
				w.Write([]byte{'\n'})
				w.Write(<-c.send)
			}

			if err := w.Close(); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
