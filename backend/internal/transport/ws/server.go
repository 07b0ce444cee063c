package ws

import (
	"context"
	"errors"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"player-controller/backend/internal/config"
	"player-controller/backend/internal/game"
	"player-controller/backend/internal/physics"
)

const (
	DefaultPingInterval = 2 * time.Second // Интервал отправки пингов
)

// MessageHandler - тип функции обработчика сообщений
type MessageHandler func(conn *SafeWriter, session *game.Session, message interface{}) error

// Server WebSocket сервер: одно соединение - одна сцена с игроком
type Server struct {
	upgrader     websocket.Upgrader
	cfg          *config.Config
	runtime      physics.Runtime
	handlers     map[string]MessageHandler
	pingInterval time.Duration

	sessions   map[uuid.UUID]*game.Session
	sessionsMu sync.RWMutex

	logger *log.Logger
}

// NewServer создает новый экземпляр WebSocket сервера
func NewServer(cfg *config.Config, runtime physics.Runtime, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}

	pingInterval := cfg.Server.PingInterval
	if pingInterval == 0 {
		pingInterval = DefaultPingInterval
	}

	server := &Server{
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
		cfg:          cfg,
		runtime:      runtime,
		handlers:     make(map[string]MessageHandler),
		pingInterval: pingInterval,
		sessions:     make(map[uuid.UUID]*game.Session),
		logger:       logger,
	}

	// Регистрируем стандартные обработчики
	server.RegisterHandler(MessageTypePing, server.handlePing)
	server.RegisterHandler(MessageTypePong, func(*SafeWriter, *game.Session, interface{}) error { return nil })
	for _, t := range []string{
		MessageTypeKeyDown, MessageTypeKeyUp,
		MessageTypeMouseDown, MessageTypeMouseUp,
		MessageTypeMouseMove, MessageTypeWheel,
	} {
		server.RegisterHandler(t, server.handleInput)
	}

	return server
}

// RegisterHandler регистрирует обработчик для конкретного типа сообщений
func (s *Server) RegisterHandler(messageType string, handler MessageHandler) {
	s.handlers[messageType] = handler
}

// SetPingInterval устанавливает интервал отправки пингов. 0 - без пингов.
func (s *Server) SetPingInterval(interval time.Duration) {
	s.pingInterval = interval
}

// HandleWS обрабатывает входящие WebSocket соединения
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Printf("[WSServer] Ошибка upgrade: %v", err)
		return
	}

	safeConn := NewSafeWriter(conn)
	defer safeConn.Close()

	s.logger.Printf("[WSServer] Новое соединение от %s", conn.RemoteAddr())

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session, err := game.NewSession(ctx, s.cfg, s.runtime, safeConn, s.logger)
	if err != nil {
		s.logger.Printf("[WSServer] Сцена не создана: %v", err)
		if errors.Is(err, physics.ErrRuntimeUnavailable) {
			safeConn.WriteJSON(NewInfoMessage("physics runtime unavailable"))
		}
		return
	}
	defer func() {
		s.removeSession(session)
		if err := session.Close(); err != nil {
			s.logger.Printf("[WSServer] Ошибка закрытия сессии %s: %v", session.ID, err)
		}
	}()
	s.addSession(session)

	welcome := NewInfoMessage("Successfully connected to player-controller server")
	welcome.Session = session.ID.String()
	if err := safeConn.WriteJSON(welcome); err != nil {
		s.logger.Printf("[WSServer] Ошибка отправки приветствия: %v", err)
		return
	}

	for _, mesh := range session.Scene().Graph().Meshes() {
		if err := safeConn.WriteJSON(NewCreateMessage(mesh)); err != nil {
			s.logger.Printf("[WSServer] Ошибка отправки объекта %s: %v", mesh.ID, err)
			return
		}
	}

	session.Start(ctx)

	if s.pingInterval > 0 {
		go s.startPing(ctx, safeConn)
	}

	// Основной цикл обработки сообщений
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				s.logger.Printf("[WSServer] Ошибка WebSocket: %v", err)
			}
			break
		}

		message, err := ParseMessage(data)
		if err != nil {
			s.logger.Printf("[WSServer] Ошибка разбора сообщения: %v", err)
			continue
		}

		var messageType string
		switch msg := message.(type) {
		case *InputMessage:
			messageType = msg.Type
		case *PingMessage:
			messageType = msg.Type
		case *PongMessage:
			messageType = msg.Type
		default:
			s.logger.Printf("[WSServer] Неизвестный тип сообщения: %T", message)
			continue
		}

		if handler, ok := s.handlers[messageType]; ok {
			if err := handler(safeConn, session, message); err != nil {
				s.logger.Printf("[WSServer] Ошибка обработки %s: %v", messageType, err)
				if errors.Is(err, game.ErrSessionClosed) {
					break
				}
			}
		} else {
			s.logger.Printf("[WSServer] Нет обработчика для типа: %s", messageType)
		}
	}

	s.logger.Printf("[WSServer] Соединение закрыто: %s", conn.RemoteAddr())
}

func (s *Server) handleInput(conn *SafeWriter, session *game.Session, message interface{}) error {
	msg, ok := message.(*InputMessage)
	if !ok {
		return ErrInvalidMessage
	}
	return session.Send(msg.Event())
}

func (s *Server) handlePing(conn *SafeWriter, session *game.Session, message interface{}) error {
	pingMsg, ok := message.(*PingMessage)
	if !ok {
		return ErrInvalidMessage
	}
	return conn.WriteJSON(NewPongMessage(pingMsg.ClientTime))
}

// startPing запускает периодическую отправку пингов для проверки соединения
func (s *Server) startPing(ctx context.Context, conn *SafeWriter) {
	ticker := time.NewTicker(s.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			ping := &PingMessage{Type: MessageTypePing, ServerTime: GetCurrentServerTime()}
			if err := conn.WriteJSON(ping); err != nil {
				s.logger.Printf("[WSServer] Ошибка отправки пинга: %v", err)
				return
			}
		}
	}
}

func (s *Server) addSession(session *game.Session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	s.sessions[session.ID] = session
}

func (s *Server) removeSession(session *game.Session) {
	s.sessionsMu.Lock()
	defer s.sessionsMu.Unlock()
	delete(s.sessions, session.ID)
}

// SessionCount количество активных сессий
func (s *Server) SessionCount() int {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()
	return len(s.sessions)
}

// Stats статистика циклов всех сессий
func (s *Server) Stats() map[string]interface{} {
	s.sessionsMu.RLock()
	defer s.sessionsMu.RUnlock()

	sessions := make(map[string]interface{}, len(s.sessions))
	for id, session := range s.sessions {
		sessions[id.String()] = session.Stats()
	}
	return map[string]interface{}{
		"sessions_count": len(s.sessions),
		"sessions":       sessions,
	}
}
