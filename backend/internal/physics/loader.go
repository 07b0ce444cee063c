package physics

import (
	"context"
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/config"
)

// Loader асинхронно инициализирует физический мир. Зависимые компоненты
// ждут Ready() и только после этого создают тела.
type Loader struct {
	ready chan struct{}
	world *World
	err   error
}

// Load запускает инициализацию рантайма. Повторных попыток нет.
func Load(ctx context.Context, runtime Runtime, cfg config.SceneConfig, logger *log.Logger) *Loader {
	if logger == nil {
		logger = log.Default()
	}

	l := &Loader{ready: make(chan struct{})}

	go func() {
		defer close(l.ready)
		defer func() {
			if r := recover(); r != nil {
				l.world = nil
				l.err = fmt.Errorf("%w: %v", ErrRuntimeUnavailable, r)
				logger.Printf("[Physics] Инициализация завершилась паникой: %v", r)
			}
		}()

		if runtime == nil {
			l.err = fmt.Errorf("%w: no runtime", ErrRuntimeUnavailable)
			logger.Printf("[Physics] %v", l.err)
			return
		}

		if err := ctx.Err(); err != nil {
			l.err = err
			return
		}

		dynamics, err := runtime.NewDynamicsWorld(mgl64.Vec3{0, cfg.Gravity, 0})
		if err != nil {
			l.err = fmt.Errorf("%w: %s: %v", ErrRuntimeUnavailable, runtime.Name(), err)
			logger.Printf("[Physics] Ошибка инициализации: %v", l.err)
			return
		}
		if dynamics == nil {
			l.err = fmt.Errorf("%w: %s returned no world", ErrRuntimeUnavailable, runtime.Name())
			logger.Printf("[Physics] Ошибка инициализации: %v", l.err)
			return
		}

		l.world = NewWorld(dynamics, runtime.Name(), cfg.FixedTimeStep, cfg.MaxSubSteps, logger)
		logger.Printf("[Physics] Мир %s готов: gravity=%.1f, step=%.4f, maxSubSteps=%d",
			runtime.Name(), cfg.Gravity, l.world.fixedTimeStep, l.world.maxSubSteps)
	}()

	return l
}

// Ready закрывается, когда инициализация завершена (успешно или нет)
func (l *Loader) Ready() <-chan struct{} {
	return l.ready
}

// Wait блокирует до готовности мира или отмены контекста
func (l *Loader) Wait(ctx context.Context) (*World, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-l.ready:
		if l.err != nil {
			return nil, l.err
		}
		return l.world, nil
	}
}
