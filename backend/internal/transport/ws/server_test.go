package ws

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gorilla/websocket"

	"player-controller/backend/internal/config"
	"player-controller/backend/internal/physics"
	"player-controller/backend/internal/physics/dynamics"
)

type failingRuntime struct{}

func (failingRuntime) Name() string { return "failing" }

func (failingRuntime) NewDynamicsWorld(mgl64.Vec3) (physics.DynamicsWorld, error) {
	return nil, errors.New("instantiate failed")
}

type envelope struct {
	Type       string          `json:"type"`
	Message    string          `json:"message"`
	Session    string          `json:"session"`
	ObjectType string          `json:"object_type"`
	Player     bool            `json:"player"`
	ClientTime int64           `json:"client_time"`
	Frame      json.RawMessage `json:"frame"`
}

func startServer(t *testing.T, runtime physics.Runtime) (*Server, *websocket.Conn) {
	t.Helper()

	server := NewServer(config.Default(), runtime, log.New(io.Discard, "", 0))
	server.SetPingInterval(0)

	httpServer := httptest.NewServer(http.HandlerFunc(server.HandleWS))
	t.Cleanup(httpServer.Close)

	wsURL := "ws" + strings.TrimPrefix(httpServer.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket server: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	return server, conn
}

func readEnvelope(t *testing.T, conn *websocket.Conn) envelope {
	t.Helper()

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		t.Fatalf("Unmarshal %s: %v", data, err)
	}
	return env
}

// readUntil читает сообщения, пока не встретит нужный тип
func readUntil(t *testing.T, conn *websocket.Conn, messageType string, match func(envelope) bool) envelope {
	t.Helper()

	for i := 0; i < 500; i++ {
		env := readEnvelope(t, conn)
		if env.Type == messageType && (match == nil || match(env)) {
			return env
		}
	}
	t.Fatalf("message %s not received", messageType)
	return envelope{}
}

func TestServer_SessionLifecycle(t *testing.T) {
	server, conn := startServer(t, dynamics.New())

	info := readEnvelope(t, conn)
	if info.Type != MessageTypeInfo || info.Session == "" {
		t.Fatalf("first message must be info with session id: %+v", info)
	}

	// пол, 4 стены, 5 кубов и игрок
	creates := 0
	players := 0
	for creates < 11 {
		env := readEnvelope(t, conn)
		if env.Type != MessageTypeCreate {
			t.Fatalf("expected create message, got %s", env.Type)
		}
		creates++
		if env.Player {
			players++
		}
	}
	if players != 1 {
		t.Errorf("expected exactly one player mesh, got %d", players)
	}
	if server.SessionCount() != 1 {
		t.Errorf("expected 1 session, got %d", server.SessionCount())
	}

	frame := readUntil(t, conn, MessageTypeFrame, nil)
	var decoded struct {
		Player *struct {
			Position []float64 `json:"position"`
		} `json:"player"`
	}
	if err := json.Unmarshal(frame.Frame, &decoded); err != nil {
		t.Fatalf("Unmarshal frame: %v", err)
	}
	if decoded.Player == nil || len(decoded.Player.Position) != 3 {
		t.Fatalf("frame must carry the player: %s", frame.Frame)
	}

	if err := conn.WriteJSON(map[string]interface{}{"type": MessageTypeKeyDown, "key": "w"}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if err := conn.WriteJSON(map[string]interface{}{"type": MessageTypePing, "client_time": 42}); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	readUntil(t, conn, MessageTypePong, func(env envelope) bool { return env.ClientTime == 42 })

	stats := server.Stats()
	if stats["sessions_count"] != 1 {
		t.Errorf("stats: %v", stats)
	}

	conn.Close()
	deadline := time.Now().Add(3 * time.Second)
	for server.SessionCount() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("session not removed after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestServer_RuntimeUnavailable(t *testing.T) {
	server, conn := startServer(t, failingRuntime{})

	info := readEnvelope(t, conn)
	if info.Type != MessageTypeInfo || !strings.Contains(info.Message, "unavailable") {
		t.Fatalf("expected unavailable notice, got %+v", info)
	}

	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("connection must be closed without a scene")
	}
	if server.SessionCount() != 0 {
		t.Errorf("no session is registered, got %d", server.SessionCount())
	}
}
