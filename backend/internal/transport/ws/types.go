package ws

import (
	"player-controller/backend/internal/game"
)

// Константы для WebSocket сообщений
const (
	// Ввод от клиента
	MessageTypeKeyDown   = "key_down"
	MessageTypeKeyUp     = "key_up"
	MessageTypeMouseDown = "mouse_down"
	MessageTypeMouseUp   = "mouse_up"
	MessageTypeMouseMove = "mouse_move"
	MessageTypeWheel     = "wheel"

	// Служебные и исходящие
	MessageTypePing   = "ping"   // Пинг для измерения задержки
	MessageTypePong   = "pong"   // Ответ на пинг
	MessageTypeInfo   = "info"   // Информационное сообщение
	MessageTypeCreate = "create" // Создание объекта сцены
	MessageTypeFrame  = "frame"  // Снимок кадра
)

// InputMessage событие клавиатуры или мыши от клиента
type InputMessage struct {
	Type       string  `json:"type"`
	Key        string  `json:"key,omitempty"`
	Button     int     `json:"button"`
	X          float64 `json:"x"` // NDC, -1..1
	Y          float64 `json:"y"`
	DX         float64 `json:"dx,omitempty"`
	DY         float64 `json:"dy,omitempty"`
	DeltaY     float64 `json:"delta_y,omitempty"`
	ClientTime int64   `json:"client_time,omitempty"`
}

// ObjectMessage создание объекта сцены на клиенте
type ObjectMessage struct {
	Type       string  `json:"type"`
	ID         string  `json:"id"`
	ObjectType string  `json:"object_type"`
	X          float32 `json:"x"`
	Y          float32 `json:"y"`
	Z          float32 `json:"z"`
	Width      float32 `json:"width"`
	Height     float32 `json:"height"`
	Depth      float32 `json:"depth"`
	Color      string  `json:"color,omitempty"`
	Player     bool    `json:"player,omitempty"`
	ServerTime int64   `json:"server_time"`
}

// FrameMessage снимок кадра
type FrameMessage struct {
	Type       string     `json:"type"`
	ServerTime int64      `json:"server_time"`
	Frame      game.Frame `json:"frame"`
}

// PingMessage представляет пинг
type PingMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time,omitempty"`
	ServerTime int64  `json:"server_time,omitempty"`
}

// PongMessage представляет ответ на пинг
type PongMessage struct {
	Type       string `json:"type"`
	ClientTime int64  `json:"client_time"`
	ServerTime int64  `json:"server_time"`
}

// InfoMessage представляет информационное сообщение от сервера
type InfoMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Session string `json:"session,omitempty"`
}
