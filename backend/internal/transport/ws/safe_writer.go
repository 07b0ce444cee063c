package ws

import (
	"encoding/json"
	"errors"
	"math"
	"sync"

	"github.com/gorilla/websocket"

	"player-controller/backend/internal/game"
)

// ErrWriterClosed запись в закрытое соединение
var ErrWriterClosed = errors.New("websocket writer closed")

// SafeWriter обеспечивает потокобезопасную запись в WebSocket.
// Кадры пишет цикл сессии, пинги и понги - другие горутины.
type SafeWriter struct {
	conn   *websocket.Conn
	mutex  sync.Mutex
	closed bool
}

// NewSafeWriter создает новый экземпляр SafeWriter
func NewSafeWriter(conn *websocket.Conn) *SafeWriter {
	return &SafeWriter{
		conn: conn,
	}
}

// WriteJSON потокобезопасно отправляет JSON данные через WebSocket
func (w *SafeWriter) WriteJSON(v interface{}) error {
	jsonData, err := json.Marshal(v)
	if err != nil {
		// NaN в map-сообщениях заменяем на 0 и пробуем еще раз
		mapData, ok := v.(map[string]interface{})
		if !ok {
			return err
		}
		sanitizeMapValues(mapData)
		if jsonData, err = json.Marshal(mapData); err != nil {
			return err
		}
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return ErrWriterClosed
	}
	return w.conn.WriteMessage(websocket.TextMessage, jsonData)
}

// SendFrame отправляет кадр сессии
func (w *SafeWriter) SendFrame(frame game.Frame) error {
	return w.WriteJSON(NewFrameMessage(frame))
}

// sanitizeMapValues рекурсивно обходит map и заменяет NaN значения на 0
func sanitizeMapValues(data map[string]interface{}) {
	for k, v := range data {
		switch val := v.(type) {
		case float64:
			if math.IsNaN(val) {
				data[k] = 0.0
			}
		case map[string]interface{}:
			sanitizeMapValues(val)
		case []interface{}:
			for i, item := range val {
				if itemMap, ok := item.(map[string]interface{}); ok {
					sanitizeMapValues(itemMap)
				} else if itemFloat, ok := item.(float64); ok && math.IsNaN(itemFloat) {
					val[i] = 0.0
				}
			}
		}
	}
}

// Close закрывает соединение WebSocket
func (w *SafeWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if w.closed {
		return nil
	}
	w.closed = true
	return w.conn.Close()
}
