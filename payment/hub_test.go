package payment

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"tillpoint/globals"
	"tillpoint/middleware"

	"github.com/golang-jwt/jwt/v5"
	"github.com/gorilla/websocket"
	"github.com/julienschmidt/httprouter"
)

func TestHubRegisterBroadcastUnregister(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &client{
		send: make(chan []byte, 10),
		room: "sess-1",
	}
	hub.register <- c

	evt := StageEvent{SessionID: "sess-1", Stage: "waiting"}
	hub.Publish(evt)

	select {
	case got := <-c.send:
		var decoded StageEvent
		if err := json.Unmarshal(got, &decoded); err != nil {
			t.Fatalf("bad payload: %v", err)
		}
		if decoded.Stage != "waiting" || decoded.SessionID != "sess-1" {
			t.Fatalf("unexpected event: %+v", decoded)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for broadcast")
	}

	hub.unregister <- c
}

func TestHubSlowConsumerThenUnregister(t *testing.T) {
	hub := NewHub()
	panicked := make(chan interface{}, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				panicked <- r
			}
		}()
		hub.Run()
	}()

	// Unbuffered send channel with no reader: the broadcast path drops
	// the client and closes its channel.
	c := &client{
		send: make(chan []byte),
		room: "sess-1",
	}
	hub.register <- c
	hub.Publish(StageEvent{SessionID: "sess-1", Stage: "waiting"})

	// The read side still reports the close. This used to close the
	// channel a second time and crash the run loop.
	hub.unregister <- c

	// The loop must still be serving other clients.
	c2 := &client{
		send: make(chan []byte, 10),
		room: "sess-1",
	}
	hub.register <- c2
	hub.Publish(StageEvent{SessionID: "sess-1", Stage: "success"})

	select {
	case r := <-panicked:
		t.Fatalf("hub run loop panicked: %v", r)
	case <-c2.send:
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for broadcast after unregister")
	}
}

func TestProgressSocketRejectsBadToken(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	router := httprouter.New()
	router.GET("/ws/payments/:sessionid", ProgressSocket(hub))
	srv := httptest.NewServer(router)
	defer srv.Close()

	for _, q := range []string{"", "?token=not-a-jwt"} {
		resp, err := http.Get(srv.URL + "/ws/payments/sess-1" + q)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		resp.Body.Close()
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("token %q: status = %d, want 401", q, resp.StatusCode)
		}
	}
}

func TestProgressSocketAcceptsSignedToken(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	router := httprouter.New()
	router.GET("/ws/payments/:sessionid", ProgressSocket(hub))
	srv := httptest.NewServer(router)
	defer srv.Close()

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, middleware.Claims{
		Username: "cashier1",
		UserID:   "usr-1",
		Role:     []string{"cashier"},
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString(globals.JwtSecret)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	wsURL := strings.Replace(srv.URL, "http", "ws", 1) + "/ws/payments/sess-1?token=" + token
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	// give the handler a beat to register the client with the hub
	time.Sleep(50 * time.Millisecond)
	hub.Publish(StageEvent{SessionID: "sess-1", Stage: "waiting"})
	conn.SetReadDeadline(time.Now().Add(1 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var decoded StageEvent
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("bad payload: %v", err)
	}
	if decoded.Stage != "waiting" {
		t.Fatalf("unexpected event: %+v", decoded)
	}
}

func TestHubDropsOtherRooms(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	c := &client{
		send: make(chan []byte, 10),
		room: "sess-a",
	}
	hub.register <- c

	hub.Publish(StageEvent{SessionID: "sess-b", Stage: "waiting"})
	hub.Publish(StageEvent{SessionID: "sess-a", Stage: "success"})

	select {
	case got := <-c.send:
		var decoded StageEvent
		_ = json.Unmarshal(got, &decoded)
		if decoded.Stage != "success" {
			t.Fatalf("received event for wrong room: %+v", decoded)
		}
	case <-time.After(1 * time.Second):
		t.Fatal("timeout waiting for broadcast")
	}
}
