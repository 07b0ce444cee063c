package game

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"player-controller/backend/internal/camera"
	"player-controller/backend/internal/config"
	"player-controller/backend/internal/movement"
	"player-controller/backend/internal/physics"
	"player-controller/backend/internal/scene"
	"player-controller/backend/internal/targeting"
	"player-controller/backend/internal/telemetry"
)

var (
	// ErrSessionClosed сессия уже закрыта
	ErrSessionClosed = errors.New("session closed")
	// ErrUnknownInput неизвестный тип события ввода
	ErrUnknownInput = errors.New("unknown input")
)

// FrameSink получает кадры для отрисовки
type FrameSink interface {
	SendFrame(frame Frame) error
}

// Session одна сцена с игроком: физический мир, контроллеры и цикл кадров
type Session struct {
	ID uuid.UUID

	cfg   *config.Config
	scene *scene.Context
	world *physics.World

	camera     *camera.Camera
	rig        *camera.Rig
	target     *targeting.Target
	marker     *targeting.Marker
	poller     *targeting.Poller
	pointer    *targeting.Pointer
	controller *movement.Controller
	telemetry  *telemetry.Manager

	ticker *Ticker

	closeOnce sync.Once
	logger    *log.Logger
}

// NewSession ждет готовности физического мира и собирает сцену.
// Если рантайм физики не поднялся, сцена не создается.
func NewSession(ctx context.Context, cfg *config.Config, runtime physics.Runtime, sink FrameSink, logger *log.Logger) (*Session, error) {
	if logger == nil {
		logger = log.Default()
	}

	world, err := physics.Load(ctx, runtime, cfg.Scene, logger).Wait(ctx)
	if err != nil {
		return nil, fmt.Errorf("load physics: %w", err)
	}

	sceneCtx := scene.NewContext()
	sceneCtx.SetWorld(world)
	if err := scene.Populate(sceneCtx, scene.DefaultLayout(), cfg.Player, logger); err != nil {
		return nil, fmt.Errorf("populate scene: %w", err)
	}

	s := &Session{
		ID:        uuid.New(),
		cfg:       cfg,
		scene:     sceneCtx,
		world:     world,
		target:    &targeting.Target{},
		marker:    targeting.NewMarker(),
		poller:    targeting.NewPoller(cfg.Targeting.PollInterval),
		telemetry: telemetry.NewManager(2*time.Second, logger),
		logger:    logger,
	}

	s.camera = camera.New(cfg.Player.Camera)
	s.rig = camera.NewRig(cfg.Player.Camera, s.camera, logger)
	s.rig.Mount(s.playerPosition())

	s.pointer = targeting.NewPointer(targeting.NewResolver(), s.camera, s.colliders, s.target, s.marker, s.poller)

	s.controller = movement.NewController(cfg.Player, sceneCtx, s.camera, world, s.target, logger)
	s.controller.SetRecorder(s.telemetry)

	s.ticker = NewTicker(cfg.Scene.TargetTPS, s, logger)
	s.ticker.RegisterSystem(NewLocomotionSystem(s.controller, logger))
	s.ticker.RegisterSystem(NewPhysicsSystem(world))
	s.ticker.RegisterSystem(NewSyncSystem(sceneCtx, s.telemetry))
	s.ticker.RegisterSystem(NewCameraSystem(s.rig, s.marker, s.target, sceneCtx))
	s.ticker.RegisterSystem(NewBroadcastSystem(s, sink, cfg.Server.BroadcastInterval, logger))
	s.ticker.RegisterSystem(NewMetricsSystem(s.ticker, s.telemetry, 30*time.Second, logger))

	logger.Printf("[Session] Сессия %s создана, физика: %s", s.ID, world.RuntimeName())

	return s, nil
}

// Start запускает цикл кадров
func (s *Session) Start(ctx context.Context) {
	s.ticker.Start(ctx)
}

// Send передает событие ввода в цикл кадров
func (s *Session) Send(ev InputEvent) error {
	return s.ticker.Enqueue(ev)
}

// Step выполняет кадр синхронно. Только пока цикл не запущен.
func (s *Session) Step(now time.Time, delta time.Duration) {
	s.ticker.Step(now, delta)
}

// PollChannel канал опроса указателя для цикла кадров
func (s *Session) PollChannel() <-chan time.Time {
	return s.poller.C()
}

// Poll пересэмплирует цель, пока зажата левая кнопка
func (s *Session) Poll(time.Time) {
	s.pointer.Poll()
}

// Close останавливает цикл, таймер опроса и убирает игрока из мира
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.ticker.Stop()
		s.pointer.Close()
		if clearErr := s.scene.ClearPlayer(); clearErr != nil {
			err = fmt.Errorf("clear player: %w", clearErr)
		}
		s.logger.Printf("[Session] Сессия %s закрыта", s.ID)
	})
	return err
}

// Scene контекст сцены
func (s *Session) Scene() *scene.Context {
	return s.scene
}

// Target текущая цель клика
func (s *Session) Target() (mgl64.Vec3, bool) {
	return s.target.Point()
}

// Stats статистика цикла кадров
func (s *Session) Stats() map[string]interface{} {
	return s.ticker.GetStats()
}

// Telemetry менеджер телеметрии сессии
func (s *Session) Telemetry() *telemetry.Manager {
	return s.telemetry
}

func (s *Session) colliders() []physics.AABB {
	player, _ := s.scene.Player()
	return s.scene.Graph().Collidables(player)
}

func (s *Session) playerPosition() mgl64.Vec3 {
	if body, ok := s.scene.PlayerBody(); ok {
		return body.Transform().Position
	}
	return mgl64.Vec3(s.cfg.Player.Spawn)
}
