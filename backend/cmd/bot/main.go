package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math/rand/v2"
	"net/url"
	"os"
	"os/signal"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"player-controller/backend/internal/game"
	"player-controller/backend/internal/transport/ws"
)

var movementKeys = []string{"w", "a", "s", "d"}

// Bot подключается к серверу и управляет игроком по шаблону
type Bot struct {
	ID          string
	ServerURL   string
	Pattern     string
	Duration    time.Duration
	CommandRate time.Duration

	conn    *websocket.Conn
	writeMu sync.Mutex // Мьютекс для синхронизации записи в WebSocket

	heldKey string
	step    int

	Stats BotStats
}

// BotStats содержит статистику работы бота
type BotStats struct {
	CommandsSent   int
	FramesReceived int
	PongsReceived  int
	Errors         int
	StartTime      time.Time
	SessionID      string
	LastPosition   []float64
	mu             sync.RWMutex
}

// NewBot создает нового бота
func NewBot(id, serverURL, pattern string, duration, commandRate time.Duration) *Bot {
	return &Bot{
		ID:          id,
		ServerURL:   serverURL,
		Pattern:     pattern,
		Duration:    duration,
		CommandRate: commandRate,
		Stats: BotStats{
			StartTime: time.Now(),
		},
	}
}

// Connect подключается к серверу
func (b *Bot) Connect() error {
	u, err := url.Parse(b.ServerURL)
	if err != nil {
		return fmt.Errorf("неверный URL: %w", err)
	}

	log.Printf("[Bot %s] Подключение к %s", b.ID, u.String())

	dialer := websocket.Dialer{
		HandshakeTimeout: 10 * time.Second,
		ReadBufferSize:   1024,
		WriteBufferSize:  1024,
	}

	conn, _, err := dialer.Dial(u.String(), nil)
	if err != nil {
		return fmt.Errorf("ошибка подключения: %w", err)
	}
	b.conn = conn

	log.Printf("[Bot %s] Успешно подключен", b.ID)
	return nil
}

func (b *Bot) send(v interface{}) error {
	b.writeMu.Lock()
	defer b.writeMu.Unlock()

	if err := b.conn.WriteJSON(v); err != nil {
		b.Stats.mu.Lock()
		b.Stats.Errors++
		b.Stats.mu.Unlock()
		return fmt.Errorf("ошибка отправки: %w", err)
	}

	b.Stats.mu.Lock()
	b.Stats.CommandsSent++
	b.Stats.mu.Unlock()
	return nil
}

func (b *Bot) input(kind game.InputKind, fill func(*ws.InputMessage)) error {
	msg := &ws.InputMessage{Type: string(kind), ClientTime: time.Now().UnixMilli()}
	if fill != nil {
		fill(msg)
	}
	return b.send(msg)
}

// click левый клик в случайной точке экрана
func (b *Bot) click() error {
	x := rand.Float64()*1.6 - 0.8
	y := rand.Float64()*0.8 - 0.6 // ниже центра - в пол перед игроком
	at := func(m *ws.InputMessage) {
		m.Button = game.ButtonLeft
		m.X, m.Y = x, y
	}
	if err := b.input(game.InputMouseDown, at); err != nil {
		return err
	}
	return b.input(game.InputMouseUp, at)
}

// toggleKey отпускает прежнюю клавишу и зажимает новую
func (b *Bot) toggleKey() error {
	if b.heldKey != "" {
		held := b.heldKey
		b.heldKey = ""
		return b.input(game.InputKeyUp, func(m *ws.InputMessage) { m.Key = held })
	}
	b.heldKey = movementKeys[rand.IntN(len(movementKeys))]
	key := b.heldKey
	return b.input(game.InputKeyDown, func(m *ws.InputMessage) { m.Key = key })
}

func (b *Bot) jump() error {
	return b.input(game.InputKeyDown, func(m *ws.InputMessage) { m.Key = " " })
}

// orbit поворот камеры перетаскиванием правой кнопкой
func (b *Bot) orbit() error {
	right := func(m *ws.InputMessage) { m.Button = game.ButtonRight }
	if err := b.input(game.InputMouseDown, right); err != nil {
		return err
	}
	dx := rand.Float64()*200 - 100
	if err := b.input(game.InputMouseMove, func(m *ws.InputMessage) { m.DX = dx }); err != nil {
		return err
	}
	return b.input(game.InputMouseUp, right)
}

// nextCommand выбирает действие по шаблону
func (b *Bot) nextCommand() error {
	b.step++
	switch b.Pattern {
	case "click":
		return b.click()
	case "keys":
		if b.step%10 == 0 {
			return b.jump()
		}
		return b.toggleKey()
	default: // "mixed"
		switch rand.IntN(5) {
		case 0:
			return b.jump()
		case 1:
			return b.orbit()
		case 2:
			return b.toggleKey()
		default:
			return b.click()
		}
	}
}

func (b *Bot) sendPing() error {
	return b.send(&ws.PingMessage{Type: ws.MessageTypePing, ClientTime: time.Now().UnixMilli()})
}

// handleMessage обрабатывает входящие сообщения
func (b *Bot) handleMessage(messageType int, data []byte) {
	if messageType != websocket.TextMessage {
		return
	}

	var msg struct {
		Type       string `json:"type"`
		Message    string `json:"message"`
		Session    string `json:"session"`
		ID         string `json:"id"`
		ObjectType string `json:"object_type"`
		ClientTime int64  `json:"client_time"`
		Frame      struct {
			Player *struct {
				Position []float64 `json:"position"`
			} `json:"player"`
		} `json:"frame"`
	}
	if err := json.Unmarshal(data, &msg); err != nil {
		log.Printf("[Bot %s] Ошибка разбора сообщения: %v", b.ID, err)
		return
	}

	switch msg.Type {
	case ws.MessageTypeInfo:
		log.Printf("[Bot %s] Информация: %s", b.ID, msg.Message)
		if msg.Session != "" {
			b.Stats.mu.Lock()
			b.Stats.SessionID = msg.Session
			b.Stats.mu.Unlock()
		}

	case ws.MessageTypeCreate:
		log.Printf("[Bot %s] Создан объект %s: %s", b.ID, msg.ObjectType, msg.ID)

	case ws.MessageTypeFrame:
		b.Stats.mu.Lock()
		b.Stats.FramesReceived++
		if msg.Frame.Player != nil {
			b.Stats.LastPosition = msg.Frame.Player.Position
		}
		b.Stats.mu.Unlock()

	case ws.MessageTypePong:
		b.Stats.mu.Lock()
		b.Stats.PongsReceived++
		b.Stats.mu.Unlock()
		log.Printf("[Bot %s] Получен pong, RTT %d мс", b.ID, time.Now().UnixMilli()-msg.ClientTime)

	case ws.MessageTypePing:
		// пинги сервера только поддерживают соединение

	default:
		log.Printf("[Bot %s] Неизвестный тип сообщения: %s", b.ID, msg.Type)
	}
}

// Run запускает бота до истечения Duration или отмены контекста
func (b *Bot) Run(ctx context.Context) error {
	if err := b.Connect(); err != nil {
		return err
	}
	defer func() {
		b.conn.Close()
		log.Printf("[Bot %s] Отключен", b.ID)
	}()

	ctx, cancel := context.WithTimeout(ctx, b.Duration)
	defer cancel()

	// Чтение сообщений
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			messageType, data, err := b.conn.ReadMessage()
			if err != nil {
				if ctx.Err() == nil {
					log.Printf("[Bot %s] Ошибка чтения сообщения: %v", b.ID, err)
					b.Stats.mu.Lock()
					b.Stats.Errors++
					b.Stats.mu.Unlock()
				}
				return
			}
			b.handleMessage(messageType, data)
		}
	}()

	pingTicker := time.NewTicker(5 * time.Second)
	defer pingTicker.Stop()

	commandTicker := time.NewTicker(b.CommandRate)
	defer commandTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Printf("[Bot %s] Завершение работы", b.ID)
			return nil
		case <-readDone:
			return fmt.Errorf("соединение закрыто сервером")
		case <-pingTicker.C:
			if err := b.sendPing(); err != nil {
				log.Printf("[Bot %s] Ошибка отправки ping: %v", b.ID, err)
			}
		case <-commandTicker.C:
			if err := b.nextCommand(); err != nil {
				log.Printf("[Bot %s] Ошибка отправки команды: %v", b.ID, err)
			}
		}
	}
}

// PrintStats выводит статистику бота
func (b *Bot) PrintStats() {
	b.Stats.mu.RLock()
	defer b.Stats.mu.RUnlock()

	duration := time.Since(b.Stats.StartTime)
	log.Printf("[Bot %s] Статистика:", b.ID)
	log.Printf("  Сессия: %s", b.Stats.SessionID)
	log.Printf("  Время работы: %v", duration)
	log.Printf("  Команд отправлено: %d", b.Stats.CommandsSent)
	log.Printf("  Кадров получено: %d", b.Stats.FramesReceived)
	log.Printf("  Pong получено: %d", b.Stats.PongsReceived)
	log.Printf("  Ошибок: %d", b.Stats.Errors)
	if len(b.Stats.LastPosition) == 3 {
		log.Printf("  Последняя позиция игрока: (%.2f, %.2f, %.2f)",
			b.Stats.LastPosition[0], b.Stats.LastPosition[1], b.Stats.LastPosition[2])
	}
	if duration > 0 {
		log.Printf("  Частота кадров: %.2f кадров/сек", float64(b.Stats.FramesReceived)/duration.Seconds())
	}
}

func main() {
	var (
		serverURL   = flag.String("url", "ws://localhost:8080/ws", "URL WebSocket сервера")
		botID       = flag.String("id", "bot1", "ID бота")
		pattern     = flag.String("pattern", "mixed", "Шаблон управления (click, keys, mixed)")
		duration    = flag.Duration("duration", 30*time.Second, "Длительность работы бота")
		commandRate = flag.Duration("rate", 500*time.Millisecond, "Частота отправки команд")
	)
	flag.Parse()

	bot := NewBot(*botID, *serverURL, *pattern, *duration, *commandRate)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := bot.Run(ctx); err != nil {
		log.Printf("[Bot %s] Ошибка: %v", bot.ID, err)
		bot.PrintStats()
		os.Exit(1)
	}

	bot.PrintStats()
}
