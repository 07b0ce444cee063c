package game

import (
	"log"
	"time"

	"player-controller/backend/internal/camera"
	"player-controller/backend/internal/movement"
	"player-controller/backend/internal/physics"
	"player-controller/backend/internal/scene"
	"player-controller/backend/internal/targeting"
	"player-controller/backend/internal/telemetry"
)

// LocomotionSystem переводит ввод и цель клика в скорость игрока до шага физики
type LocomotionSystem struct {
	name       string
	priority   int
	controller *movement.Controller
	logger     *log.Logger
}

// NewLocomotionSystem создает систему перемещения
func NewLocomotionSystem(controller *movement.Controller, logger *log.Logger) *LocomotionSystem {
	return &LocomotionSystem{
		name:       "LocomotionSystem",
		priority:   10, // До физики, чтобы импульсы попали в этот же шаг
		controller: controller,
		logger:     logger,
	}
}

// Update выполняет кадр контроллера
func (ls *LocomotionSystem) Update(tick Tick) error {
	ls.controller.Tick(tick.Now)
	return nil
}

// GetName возвращает имя системы
func (ls *LocomotionSystem) GetName() string {
	return ls.name
}

// GetPriority возвращает приоритет системы
func (ls *LocomotionSystem) GetPriority() int {
	return ls.priority
}

// PhysicsSystem продвигает физический мир на время кадра
type PhysicsSystem struct {
	name     string
	priority int
	world    *physics.World
}

// NewPhysicsSystem создает систему физики
func NewPhysicsSystem(world *physics.World) *PhysicsSystem {
	return &PhysicsSystem{
		name:     "PhysicsSystem",
		priority: 20,
		world:    world,
	}
}

// Update шагает симуляцию
func (ps *PhysicsSystem) Update(tick Tick) error {
	ps.world.StepSimulation(tick.Delta.Seconds())
	return nil
}

// GetName возвращает имя системы
func (ps *PhysicsSystem) GetName() string {
	return ps.name
}

// GetPriority возвращает приоритет системы
func (ps *PhysicsSystem) GetPriority() int {
	return ps.priority
}

// SyncSystem копирует позиции тел в сцену и пишет состояние игрока в телеметрию
type SyncSystem struct {
	name      string
	priority  int
	scene     *scene.Context
	telemetry *telemetry.Manager
}

// NewSyncSystem создает систему синхронизации
func NewSyncSystem(sceneCtx *scene.Context, tm *telemetry.Manager) *SyncSystem {
	return &SyncSystem{
		name:      "SyncSystem",
		priority:  30,
		scene:     sceneCtx,
		telemetry: tm,
	}
}

// Update синхронизирует трансформации
func (ss *SyncSystem) Update(tick Tick) error {
	ss.scene.Graph().SyncTransforms()

	player, ok := ss.scene.Player()
	if !ok || player.Body == nil {
		return nil
	}
	ss.telemetry.LogObjectState(player.ID, player.Position, player.Body.LinearVelocity(), player.Body.Friction())
	return nil
}

// GetName возвращает имя системы
func (ss *SyncSystem) GetName() string {
	return ss.name
}

// GetPriority возвращает приоритет системы
func (ss *SyncSystem) GetPriority() int {
	return ss.priority
}

// CameraSystem ведет камеру за игроком и анимирует маркер цели
type CameraSystem struct {
	name     string
	priority int
	rig      *camera.Rig
	marker   *targeting.Marker
	target   *targeting.Target
	scene    *scene.Context
}

// NewCameraSystem создает систему камеры
func NewCameraSystem(rig *camera.Rig, marker *targeting.Marker, target *targeting.Target, sceneCtx *scene.Context) *CameraSystem {
	return &CameraSystem{
		name:     "CameraSystem",
		priority: 40, // После синхронизации, камера видит позицию этого кадра
		rig:      rig,
		marker:   marker,
		target:   target,
		scene:    sceneCtx,
	}
}

// Update двигает камеру
func (cs *CameraSystem) Update(tick Tick) error {
	cs.marker.Tick(cs.target)

	player, ok := cs.scene.Player()
	if !ok {
		return nil
	}
	cs.rig.Tick(player.Position)
	return nil
}

// GetName возвращает имя системы
func (cs *CameraSystem) GetName() string {
	return cs.name
}

// GetPriority возвращает приоритет системы
func (cs *CameraSystem) GetPriority() int {
	return cs.priority
}

// FrameSource собирает снимок кадра
type FrameSource interface {
	Frame() Frame
}

// BroadcastSystem отправляет снимки кадра клиенту
type BroadcastSystem struct {
	name     string
	priority int
	source   FrameSource
	sink     FrameSink
	logger   *log.Logger

	interval     time.Duration
	lastSent     time.Time
	framesSent   uint64
	sendFailures uint64
}

// NewBroadcastSystem создает систему рассылки. Нулевой интервал - каждый кадр.
func NewBroadcastSystem(source FrameSource, sink FrameSink, interval time.Duration, logger *log.Logger) *BroadcastSystem {
	return &BroadcastSystem{
		name:     "BroadcastSystem",
		priority: 100, // Низкий приоритет - отправляем после всех обновлений
		source:   source,
		sink:     sink,
		interval: interval,
		logger:   logger,
	}
}

// Update отправляет кадр, если подошло время
func (bs *BroadcastSystem) Update(tick Tick) error {
	if bs.sink == nil {
		return nil
	}
	if !bs.lastSent.IsZero() && tick.Now.Sub(bs.lastSent) < bs.interval {
		return nil
	}
	bs.lastSent = tick.Now

	if err := bs.sink.SendFrame(bs.source.Frame()); err != nil {
		bs.sendFailures++
		return err
	}
	bs.framesSent++
	return nil
}

// FramesSent количество отправленных кадров
func (bs *BroadcastSystem) FramesSent() uint64 {
	return bs.framesSent
}

// GetName возвращает имя системы
func (bs *BroadcastSystem) GetName() string {
	return bs.name
}

// GetPriority возвращает приоритет системы
func (bs *BroadcastSystem) GetPriority() int {
	return bs.priority
}

// MetricsSystem периодически выводит статистику цикла и сводку телеметрии
type MetricsSystem struct {
	name      string
	priority  int
	ticker    *Ticker
	telemetry *telemetry.Manager
	logger    *log.Logger

	reportInterval time.Duration
	lastReport     time.Time
}

// NewMetricsSystem создает систему метрик
func NewMetricsSystem(ticker *Ticker, tm *telemetry.Manager, reportInterval time.Duration, logger *log.Logger) *MetricsSystem {
	return &MetricsSystem{
		name:           "MetricsSystem",
		priority:       200, // Самый низкий приоритет
		ticker:         ticker,
		telemetry:      tm,
		logger:         logger,
		reportInterval: reportInterval,
	}
}

// Update выводит метрики
func (ms *MetricsSystem) Update(tick Tick) error {
	ms.telemetry.PrintSummary(tick.Now)

	if ms.lastReport.IsZero() {
		ms.lastReport = tick.Now
		return nil
	}
	if tick.Now.Sub(ms.lastReport) < ms.reportInterval {
		return nil
	}
	ms.lastReport = tick.Now

	stats := ms.ticker.GetStats()
	ms.logger.Printf("[MetricsSystem] Статистика: TPS %.1f/%d, кадров %d, среднее время кадра %v, пропущено %d",
		stats["actual_tps"], stats["target_tps"], stats["tick_count"],
		stats["average_tick_time"], stats["skipped_ticks"])

	return nil
}

// GetName возвращает имя системы
func (ms *MetricsSystem) GetName() string {
	return ms.name
}

// GetPriority возвращает приоритет системы
func (ms *MetricsSystem) GetPriority() int {
	return ms.priority
}
