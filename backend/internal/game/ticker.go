package game

import (
	"context"
	"log"
	"sync"
	"time"
)

// Tick параметры одного кадра
type Tick struct {
	Now   time.Time
	Delta time.Duration
	Count uint64
}

// TickSystem интерфейс для всех систем кадра
type TickSystem interface {
	Update(tick Tick) error
	GetName() string
	GetPriority() int // Приоритет выполнения (меньше = раньше)
}

// InputHandler получает ввод и опрос указателя в том же потоке, что и кадры
type InputHandler interface {
	HandleInput(ev InputEvent) error
	// PollChannel канал опроса указателя; nil, пока опрос не нужен
	PollChannel() <-chan time.Time
	Poll(now time.Time)
}

// Ticker единый цикл кадров: системы, ввод и опрос указателя выполняются
// в одной горутине, поэтому состояние сцены не требует блокировок
type Ticker struct {
	// Конфигурация
	targetTPS    int
	tickDuration time.Duration
	maxTickTime  time.Duration

	// Состояние
	statsMutex   sync.RWMutex
	isRunning    bool
	tickCount    uint64
	startTime    time.Time
	lastTickTime time.Time

	systems      []TickSystem
	systemsMutex sync.RWMutex

	perfMonitor *PerformanceMonitor

	handler InputHandler
	inputs  chan InputEvent

	cancel   context.CancelFunc
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once

	// Метрики
	averageTickTime time.Duration
	maxObservedTick time.Duration
	skippedTicks    uint64

	logger           *log.Logger
	warningThreshold time.Duration
}

// NewTicker создает цикл кадров
func NewTicker(targetTPS int, handler InputHandler, logger *log.Logger) *Ticker {
	if targetTPS <= 0 {
		targetTPS = 60
	}

	if logger == nil {
		logger = log.Default()
	}

	tickDuration := time.Second / time.Duration(targetTPS)

	return &Ticker{
		targetTPS:        targetTPS,
		tickDuration:     tickDuration,
		maxTickTime:      tickDuration * 2,
		systems:          make([]TickSystem, 0),
		perfMonitor:      NewPerformanceMonitor(50, tickDuration/4),
		handler:          handler,
		inputs:           make(chan InputEvent, 64),
		stopped:          make(chan struct{}),
		logger:           logger,
		warningThreshold: tickDuration / 2,
	}
}

// Start запускает цикл кадров
func (t *Ticker) Start(ctx context.Context) {
	t.statsMutex.Lock()
	if t.isRunning {
		t.statsMutex.Unlock()
		return
	}
	t.isRunning = true
	t.startTime = time.Now()
	t.lastTickTime = t.startTime
	ctx, t.cancel = context.WithCancel(ctx)
	t.done = make(chan struct{})
	t.statsMutex.Unlock()

	t.logger.Printf("[Ticker] Запуск цикла кадров: %d TPS (кадр каждые %v)", t.targetTPS, t.tickDuration)

	go t.loop(ctx)
}

// Stop останавливает цикл и ждет выхода из него
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stopped)
	})

	t.statsMutex.Lock()
	running := t.isRunning
	t.isRunning = false
	t.statsMutex.Unlock()

	if !running {
		return
	}

	t.cancel()
	<-t.done

	t.logger.Printf("[Ticker] Цикл остановлен (выполнено кадров: %d)", t.GetTickCount())
}

// Enqueue передает событие ввода в цикл
func (t *Ticker) Enqueue(ev InputEvent) error {
	select {
	case <-t.stopped:
		return ErrSessionClosed
	default:
	}

	select {
	case t.inputs <- ev:
		return nil
	case <-t.stopped:
		return ErrSessionClosed
	}
}

// RegisterSystem добавляет систему в цикл
func (t *Ticker) RegisterSystem(system TickSystem) {
	t.systemsMutex.Lock()
	defer t.systemsMutex.Unlock()

	t.systems = append(t.systems, system)

	// Сортируем по приоритету (меньше = выше приоритет)
	for i := len(t.systems) - 1; i > 0; i-- {
		if t.systems[i].GetPriority() < t.systems[i-1].GetPriority() {
			t.systems[i], t.systems[i-1] = t.systems[i-1], t.systems[i]
		} else {
			break
		}
	}

	t.perfMonitor.initSystemMetrics(system.GetName())
}

// Systems имена систем в порядке выполнения
func (t *Ticker) Systems() []string {
	t.systemsMutex.RLock()
	defer t.systemsMutex.RUnlock()

	names := make([]string, len(t.systems))
	for i, s := range t.systems {
		names[i] = s.GetName()
	}
	return names
}

func (t *Ticker) loop(ctx context.Context) {
	defer close(t.done)

	frames := time.NewTicker(t.tickDuration)
	defer frames.Stop()

	for {
		var poll <-chan time.Time
		if t.handler != nil {
			poll = t.handler.PollChannel()
		}

		select {
		case <-ctx.Done():
			return

		case ev := <-t.inputs:
			if t.handler == nil {
				continue
			}
			if err := t.handler.HandleInput(ev); err != nil {
				t.logger.Printf("[Ticker] Ошибка обработки ввода %s: %v", ev.Kind, err)
			}

		case now := <-poll:
			t.handler.Poll(now)

		case now := <-frames.C:
			t.executeTick(now)
		}
	}
}

// executeTick выполняет кадр по времени таймера
func (t *Ticker) executeTick(tickTime time.Time) {
	t.statsMutex.RLock()
	deltaTime := tickTime.Sub(t.lastTickTime)
	t.statsMutex.RUnlock()

	if deltaTime > t.tickDuration*2 {
		t.logger.Printf("[Ticker] ПРЕДУПРЕЖДЕНИЕ: Большая задержка между кадрами: %v (ожидалось: %v)",
			deltaTime, t.tickDuration)
		t.statsMutex.Lock()
		t.skippedTicks++
		t.statsMutex.Unlock()
	}

	t.Step(tickTime, deltaTime)
}

// Step выполняет один кадр синхронно с заданным временем и шагом
func (t *Ticker) Step(now time.Time, delta time.Duration) {
	tickStart := time.Now()

	t.statsMutex.Lock()
	t.tickCount++
	t.lastTickTime = now
	if t.startTime.IsZero() {
		t.startTime = tickStart
	}
	tick := Tick{Now: now, Delta: delta, Count: t.tickCount}
	t.statsMutex.Unlock()

	t.executeAllSystems(tick)

	totalTickTime := time.Since(tickStart)
	t.updateTickMetrics(totalTickTime)
	t.checkPerformance(totalTickTime)
}

func (t *Ticker) executeAllSystems(tick Tick) {
	t.systemsMutex.RLock()
	systems := make([]TickSystem, len(t.systems))
	copy(systems, t.systems)
	t.systemsMutex.RUnlock()

	for _, system := range systems {
		t.executeSystem(system, tick)
	}
}

// executeSystem выполняет одну систему с замером времени
func (t *Ticker) executeSystem(system TickSystem, tick Tick) {
	systemStart := time.Now()
	systemName := system.GetName()

	defer func() {
		if r := recover(); r != nil {
			t.logger.Printf("[Ticker] КРИТИЧЕСКАЯ ОШИБКА в системе %s: %v", systemName, r)
			t.perfMonitor.recordError(systemName)
		}
	}()

	err := system.Update(tick)

	t.perfMonitor.recordExecution(systemName, time.Since(systemStart))

	if err != nil {
		t.logger.Printf("[Ticker] Ошибка в системе %s: %v", systemName, err)
		t.perfMonitor.recordError(systemName)
	}
}

// GetStats возвращает статистику цикла
func (t *Ticker) GetStats() map[string]interface{} {
	t.statsMutex.RLock()
	defer t.statsMutex.RUnlock()

	uptime := time.Since(t.startTime)
	actualTPS := 0.0
	if !t.startTime.IsZero() && uptime > 0 {
		actualTPS = float64(t.tickCount) / uptime.Seconds()
	}

	t.systemsMutex.RLock()
	systemsCount := len(t.systems)
	t.systemsMutex.RUnlock()

	return map[string]interface{}{
		"target_tps":        t.targetTPS,
		"actual_tps":        actualTPS,
		"tick_count":        t.tickCount,
		"uptime_seconds":    uptime.Seconds(),
		"average_tick_time": t.averageTickTime,
		"max_observed_tick": t.maxObservedTick,
		"skipped_ticks":     t.skippedTicks,
		"is_running":        t.isRunning,
		"systems_count":     systemsCount,
		"systems":           t.perfMonitor.GetSystemsStats(),
	}
}

// Monitor метрики систем
func (t *Ticker) Monitor() *PerformanceMonitor {
	return t.perfMonitor
}

// GetTickCount возвращает количество выполненных кадров
func (t *Ticker) GetTickCount() uint64 {
	t.statsMutex.RLock()
	defer t.statsMutex.RUnlock()
	return t.tickCount
}

func (t *Ticker) updateTickMetrics(tickTime time.Duration) {
	t.statsMutex.Lock()
	defer t.statsMutex.Unlock()

	if tickTime > t.maxObservedTick {
		t.maxObservedTick = tickTime
	}

	// Простое скользящее среднее
	if t.averageTickTime == 0 {
		t.averageTickTime = tickTime
	} else {
		t.averageTickTime = (t.averageTickTime*9 + tickTime) / 10
	}
}

func (t *Ticker) checkPerformance(tickTime time.Duration) {
	if tickTime > t.maxTickTime {
		t.logger.Printf("[Ticker] КРИТИЧЕСКОЕ ПРЕДУПРЕЖДЕНИЕ: Кадр превысил максимальное время! %v > %v (цель: %v)",
			tickTime, t.maxTickTime, t.tickDuration)
	} else if tickTime > t.warningThreshold {
		t.logger.Printf("[Ticker] ПРЕДУПРЕЖДЕНИЕ: Медленный кадр: %v (цель: %v)",
			tickTime, t.tickDuration)
	}
}
