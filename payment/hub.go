package payment

import (
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"tillpoint/middleware"

	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

// StageEvent is pushed to the register screen while a card charge runs,
// so the cashier sees the terminal move through its states.
type StageEvent struct {
	SessionID string `json:"sessionId"`
	OrderID   string `json:"orderId,omitempty"`
	Stage     string `json:"stage"` // initializing, sending, waiting, processing, approving, success, failed
	Code      string `json:"code,omitempty"`
	Message   string `json:"message,omitempty"`
	Timestamp int64  `json:"timestamp"`
}

type client struct {
	conn *websocket.Conn
	send chan []byte
	room string
}

type broadcastMsg struct {
	room string
	data []byte
}

// Hub fans payment progress out to every register screen watching a
// session. Rooms are keyed by session ID.
type Hub struct {
	rooms      map[string]map[*client]bool
	register   chan *client
	unregister chan *client
	broadcast  chan broadcastMsg
	mu         sync.Mutex
}

func NewHub() *Hub {
	return &Hub{
		rooms:      make(map[string]map[*client]bool),
		register:   make(chan *client),
		unregister: make(chan *client),
		broadcast:  make(chan broadcastMsg),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case c := <-h.register:
			h.mu.Lock()
			if h.rooms[c.room] == nil {
				h.rooms[c.room] = make(map[*client]bool)
			}
			h.rooms[c.room][c] = true
			h.mu.Unlock()

		case c := <-h.unregister:
			h.mu.Lock()
			// The broadcast path may already have dropped this client
			// and closed its channel; only close once.
			if conns := h.rooms[c.room]; conns != nil {
				if _, ok := conns[c]; ok {
					delete(conns, c)
					close(c.send)
				}
			}
			h.mu.Unlock()

		case m := <-h.broadcast:
			h.mu.Lock()
			for c := range h.rooms[m.room] {
				select {
				case c.send <- m.data:
				default:
					close(c.send)
					delete(h.rooms[m.room], c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Publish sends a stage event to every client watching the session.
// A session with no watchers drops the event silently.
func (h *Hub) Publish(evt StageEvent) {
	evt.Timestamp = time.Now().Unix()
	data, err := json.Marshal(evt)
	if err != nil {
		log.Println("Publish marshal:", err)
		return
	}
	h.broadcast <- broadcastMsg{room: evt.SessionID, data: data}
}

var upgrader = websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}

// ProgressSocket upgrades the register screen's connection and streams
// stage events for its session until the socket closes. Browser
// websocket clients cannot set headers, so the token rides a query
// parameter and is validated here before the upgrade.
func ProgressSocket(hub *Hub) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
		sessionID := ps.ByName("sessionid")

		if _, err := middleware.ValidateJWTRaw(r.URL.Query().Get("token")); err != nil {
			http.Error(w, "Invalid token", http.StatusUnauthorized)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Println("progress upgrade:", err)
			return
		}
		c := &client{
			conn: conn,
			send: make(chan []byte, 256),
			room: sessionID,
		}

		hub.register <- c
		go writePump(c)
		go readPump(c, hub)
	}
}

func writePump(c *client) {
	defer c.conn.Close()
	for msg := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			break
		}
	}
}

// readPump discards inbound frames; the progress socket is one-way. It
// exists to notice the close frame and unregister the client.
func readPump(c *client, hub *Hub) {
	defer func() {
		hub.unregister <- c
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}
