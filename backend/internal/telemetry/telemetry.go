package telemetry

import (
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// Sample запись телеметрии игрока
type Sample struct {
	Timestamp int64      `json:"timestamp"` // миллисекунды
	ObjectID  string     `json:"object_id"`
	Kind      string     `json:"kind"` // state, jump, step
	Position  mgl64.Vec3 `json:"position"`
	Velocity  mgl64.Vec3 `json:"velocity"`
	Speed     float64    `json:"speed"`
	Friction  float64    `json:"friction"`
	// Impulse есть только у jump и step
	Impulse *mgl64.Vec3 `json:"impulse,omitempty"`
}

// Manager собирает телеметрию игрока в ограниченный буфер
type Manager struct {
	enabled    bool
	data       []Sample
	mutex      sync.RWMutex
	maxEntries int

	counters      map[string]int
	lastPrint     time.Time
	printInterval time.Duration

	now    func() time.Time
	logger *log.Logger
}

// NewManager создает менеджер телеметрии
func NewManager(printInterval time.Duration, logger *log.Logger) *Manager {
	if logger == nil {
		logger = log.Default()
	}

	return &Manager{
		enabled:       true,
		data:          make([]Sample, 0),
		maxEntries:    200,
		counters:      make(map[string]int),
		printInterval: printInterval,
		now:           time.Now,
		logger:        logger,
	}
}

// LogObjectState записывает состояние тела
func (m *Manager) LogObjectState(objectID string, position, velocity mgl64.Vec3, friction float64) {
	m.record(Sample{
		ObjectID: objectID,
		Kind:     "state",
		Position: position,
		Velocity: velocity,
		Friction: friction,
	})
}

// LogImpulse записывает примененный импульс прыжка или шага
func (m *Manager) LogImpulse(objectID, kind string, position, velocity, impulse mgl64.Vec3) {
	m.record(Sample{
		ObjectID: objectID,
		Kind:     kind,
		Position: position,
		Velocity: velocity,
		Impulse:  &impulse,
	})
}

func (m *Manager) record(s Sample) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.enabled {
		return
	}

	s.Timestamp = m.now().UnixMilli()
	s.Speed = s.Velocity.Len()

	m.data = append(m.data, s)
	if len(m.data) > m.maxEntries {
		m.data = m.data[1:]
	}

	m.counters[s.Kind]++
}

// Counter значение счетчика с последней сводки
func (m *Manager) Counter(kind string) int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return m.counters[kind]
}

// Len сколько записей в буфере
func (m *Manager) Len() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.data)
}

// PrintSummary выводит сводку не чаще printInterval. Возвращает true, если вывела.
func (m *Manager) PrintSummary(now time.Time) bool {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if !m.enabled || now.Sub(m.lastPrint) < m.printInterval {
		return false
	}

	m.logger.Printf("🔬 [Telemetry] записей: %d, state: %d, jump: %d, step: %d",
		len(m.data), m.counters["state"], m.counters["jump"], m.counters["step"])

	if last, ok := m.lastState(); ok {
		m.logger.Printf("🎮 [Telemetry] игрок %s: позиция (%.2f, %.2f, %.2f), скорость |%.2f|, трение %.1f",
			last.ObjectID, last.Position.X(), last.Position.Y(), last.Position.Z(), last.Speed, last.Friction)
	}

	m.counters = make(map[string]int)
	m.lastPrint = now
	return true
}

func (m *Manager) lastState() (Sample, bool) {
	for i := len(m.data) - 1; i >= 0; i-- {
		if m.data[i].Kind == "state" {
			return m.data[i], true
		}
	}
	return Sample{}, false
}

// GetTelemetryJSON возвращает буфер в JSON
func (m *Manager) GetTelemetryJSON() (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	jsonData, err := json.MarshalIndent(m.data, "", "  ")
	if err != nil {
		return "", err
	}

	return string(jsonData), nil
}

// SetEnabled включает/выключает телеметрию
func (m *Manager) SetEnabled(enabled bool) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.enabled = enabled
	m.logger.Printf("🔬 [Telemetry] Телеметрия %s", map[bool]string{true: "включена", false: "выключена"}[enabled])
}

// Clear очищает буфер и счетчики
func (m *Manager) Clear() {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data = make([]Sample, 0)
	m.counters = make(map[string]int)
}
