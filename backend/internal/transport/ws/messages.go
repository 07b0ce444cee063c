package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/game"
	"player-controller/backend/internal/scene"
)

// ErrInvalidMessage сообщение не удалось разобрать
var ErrInvalidMessage = errors.New("invalid message")

// GetCurrentServerTime возвращает текущее время сервера в миллисекундах
func GetCurrentServerTime() int64 {
	return time.Now().UnixNano() / int64(time.Millisecond)
}

// NewInfoMessage создает информационное сообщение
func NewInfoMessage(message string) *InfoMessage {
	return &InfoMessage{
		Type:    MessageTypeInfo,
		Message: message,
	}
}

// NewPongMessage создает ответ на пинг
func NewPongMessage(clientTime int64) *PongMessage {
	return &PongMessage{
		Type:       MessageTypePong,
		ClientTime: clientTime,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewCreateMessage описывает объект сцены для клиента
func NewCreateMessage(mesh *scene.Mesh) *ObjectMessage {
	return &ObjectMessage{
		Type:       MessageTypeCreate,
		ID:         mesh.ID,
		ObjectType: string(mesh.Kind),
		X:          float32(mesh.Position.X()),
		Y:          float32(mesh.Position.Y()),
		Z:          float32(mesh.Position.Z()),
		Width:      float32(mesh.HalfExtents.X() * 2),
		Height:     float32(mesh.HalfExtents.Y() * 2),
		Depth:      float32(mesh.HalfExtents.Z() * 2),
		Color:      mesh.Color,
		Player:     mesh.Kind == scene.KindPlayer,
		ServerTime: GetCurrentServerTime(),
	}
}

// NewFrameMessage оборачивает кадр
func NewFrameMessage(frame game.Frame) *FrameMessage {
	return &FrameMessage{
		Type:       MessageTypeFrame,
		ServerTime: GetCurrentServerTime(),
		Frame:      frame,
	}
}

// ParseMessage разбирает входящее сообщение в соответствующий тип
func ParseMessage(data []byte) (interface{}, error) {
	var baseMessage struct {
		Type string `json:"type"`
	}

	if err := json.Unmarshal(data, &baseMessage); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMessage, err)
	}

	switch baseMessage.Type {
	case MessageTypeKeyDown, MessageTypeKeyUp, MessageTypeMouseDown,
		MessageTypeMouseUp, MessageTypeMouseMove, MessageTypeWheel:
		var msg InputMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidMessage, baseMessage.Type, err)
		}
		return &msg, nil

	case MessageTypePing:
		var msg PingMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: ping: %v", ErrInvalidMessage, err)
		}
		return &msg, nil

	case MessageTypePong:
		var msg PongMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			return nil, fmt.Errorf("%w: pong: %v", ErrInvalidMessage, err)
		}
		return &msg, nil
	}

	return nil, fmt.Errorf("%w: unknown type %q", ErrInvalidMessage, baseMessage.Type)
}

// Event переводит сообщение во внутреннее событие ввода
func (m *InputMessage) Event() game.InputEvent {
	return game.InputEvent{
		Kind:   game.InputKind(m.Type),
		Key:    m.Key,
		Button: m.Button,
		NDC:    mgl64.Vec2{m.X, m.Y},
		DX:     m.DX,
		DY:     m.DY,
		DeltaY: m.DeltaY,
	}
}
