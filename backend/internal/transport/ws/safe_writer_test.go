package ws

import (
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"player-controller/backend/internal/game"
)

// echoServer поднимает WebSocket сервер и отдает прочитанные сообщения в канал
func echoServer(t *testing.T, received chan<- []byte) (*httptest.Server, string) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upgrader := websocket.Upgrader{}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("Failed to upgrade connection: %v", err)
			return
		}
		defer conn.Close()

		for {
			_, msg, err := conn.ReadMessage()
			if err != nil {
				return
			}
			received <- msg
		}
	}))

	return server, "ws" + strings.TrimPrefix(server.URL, "http")
}

func TestSafeWriter_WriteJSON_Concurrency(t *testing.T) {
	received := make(chan []byte, 10)
	server, wsURL := echoServer(t, received)
	defer server.Close()

	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket server: %v", err)
	}
	writer := NewSafeWriter(wsConn)
	defer writer.Close()

	// 10 горутин пишут одновременно: кадры, пинги и понги в реальной сессии
	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(id int) {
			defer wg.Done()

			time.Sleep(time.Duration(id) * time.Millisecond)

			msg := struct {
				ID  int    `json:"id"`
				Msg string `json:"msg"`
			}{
				ID:  id,
				Msg: "Test message",
			}

			if err := writer.WriteJSON(msg); err != nil {
				t.Errorf("Error writing message: %v", err)
			}
		}(i)
	}
	wg.Wait()

	uniq := make(map[string]struct{})
	for i := 0; i < 10; i++ {
		select {
		case msg := <-received:
			uniq[string(msg)] = struct{}{}
		case <-time.After(2 * time.Second):
			t.Fatalf("received only %d messages", i)
		}
	}
	if len(uniq) != 10 {
		t.Errorf("Expected 10 unique messages, got %d", len(uniq))
	}
}

func TestSafeWriter_SendFrame(t *testing.T) {
	received := make(chan []byte, 1)
	server, wsURL := echoServer(t, received)
	defer server.Close()

	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket server: %v", err)
	}
	writer := NewSafeWriter(wsConn)
	defer writer.Close()

	var sink game.FrameSink = writer
	if err := sink.SendFrame(game.Frame{Tick: 3}); err != nil {
		t.Fatalf("SendFrame: %v", err)
	}

	select {
	case raw := <-received:
		var msg struct {
			Type  string `json:"type"`
			Frame struct {
				Tick uint64 `json:"tick"`
			} `json:"frame"`
		}
		if err := json.Unmarshal(raw, &msg); err != nil {
			t.Fatalf("Unmarshal: %v", err)
		}
		if msg.Type != MessageTypeFrame || msg.Frame.Tick != 3 {
			t.Errorf("unexpected frame message %s", raw)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("frame not received")
	}
}

func TestSafeWriter_SanitizesNaN(t *testing.T) {
	received := make(chan []byte, 1)
	server, wsURL := echoServer(t, received)
	defer server.Close()

	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket server: %v", err)
	}
	writer := NewSafeWriter(wsConn)
	defer writer.Close()

	nan := math.NaN()
	msg := map[string]interface{}{
		"type":     "debug",
		"speed":    nan,
		"position": []interface{}{1.0, nan, 3.0},
	}
	if err := writer.WriteJSON(msg); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}

	select {
	case raw := <-received:
		if !strings.Contains(string(raw), `"speed":0`) || !strings.Contains(string(raw), `[1,0,3]`) {
			t.Errorf("NaN must be replaced with 0: %s", raw)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("message not received")
	}
}

func TestSafeWriter_Close(t *testing.T) {
	received := make(chan []byte, 1)
	server, wsURL := echoServer(t, received)
	defer server.Close()

	wsConn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket server: %v", err)
	}

	writer := NewSafeWriter(wsConn)
	if err := writer.Close(); err != nil {
		t.Errorf("Error closing connection: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Errorf("second Close must be a no-op: %v", err)
	}

	// Запись в закрытое соединение возвращает ошибку
	if err := writer.WriteJSON("test"); !errors.Is(err, ErrWriterClosed) {
		t.Errorf("Expected ErrWriterClosed, got %v", err)
	}
}
