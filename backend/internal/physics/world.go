package physics

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

const (
	// DefaultFixedTimeStep фиксированный шаг симуляции
	DefaultFixedTimeStep = 1.0 / 60.0
	// DefaultMaxSubSteps максимум подшагов за кадр
	DefaultMaxSubSteps = 10

	defaultStaticFriction = 0.5
	defaultBodyFriction   = 1.0
)

// Body тело, созданное через World
type Body struct {
	RigidBody

	ID          uuid.UUID
	Mass        float64
	HalfExtents mgl64.Vec3
}

// Bounds мировой AABB тела по текущей позиции
func (b *Body) Bounds() AABB {
	return BoxAround(b.Transform().Position, b.HalfExtents)
}

// World фасад над DynamicsWorld: создает и удаляет тела, шагает симуляцию
type World struct {
	dynamics      DynamicsWorld
	runtimeName   string
	fixedTimeStep float64
	maxSubSteps   int

	bodies  map[uuid.UUID]*Body
	byRigid map[RigidBody]*Body

	logger *log.Logger
}

// NewWorld оборачивает готовый мир динамики
func NewWorld(dynamics DynamicsWorld, runtimeName string, fixedTimeStep float64, maxSubSteps int, logger *log.Logger) *World {
	if logger == nil {
		logger = log.Default()
	}
	if fixedTimeStep <= 0 {
		fixedTimeStep = DefaultFixedTimeStep
	}
	if maxSubSteps <= 0 {
		maxSubSteps = DefaultMaxSubSteps
	}

	return &World{
		dynamics:      dynamics,
		runtimeName:   runtimeName,
		fixedTimeStep: fixedTimeStep,
		maxSubSteps:   maxSubSteps,
		bodies:        make(map[uuid.UUID]*Body),
		byRigid:       make(map[RigidBody]*Body),
		logger:        logger,
	}
}

func (w *World) ready() bool {
	return w != nil && w.dynamics != nil
}

// CreateRigidBody создает бокс с заданной массой. Mass == 0 - статическое тело.
func (w *World) CreateRigidBody(transform Transform, mass float64, halfExtents mgl64.Vec3) (*Body, error) {
	if !w.ready() {
		return nil, ErrWorldNotReady
	}
	if mass < 0 {
		return nil, fmt.Errorf("negative mass %.3f", mass)
	}
	for i := 0; i < 3; i++ {
		if halfExtents[i] < 0 {
			return nil, fmt.Errorf("negative half extent %v", halfExtents)
		}
	}

	friction := defaultStaticFriction
	if mass > 0 {
		friction = defaultBodyFriction
	}

	if transform.Rotation.Len() == 0 {
		transform.Rotation = mgl64.QuatIdent()
	}

	rigid, err := w.dynamics.AddRigidBody(BodyDesc{
		Transform:   transform,
		Mass:        mass,
		HalfExtents: halfExtents,
		Friction:    friction,
	})
	if err != nil {
		return nil, fmt.Errorf("add rigid body: %w", err)
	}

	body := &Body{
		RigidBody:   rigid,
		ID:          uuid.New(),
		Mass:        mass,
		HalfExtents: halfExtents,
	}
	w.bodies[body.ID] = body
	w.byRigid[rigid] = body

	return body, nil
}

// RemoveRigidBody удаляет тело из мира
func (w *World) RemoveRigidBody(body *Body) error {
	if !w.ready() {
		return ErrWorldNotReady
	}
	if body == nil {
		return ErrUnknownBody
	}
	if _, ok := w.bodies[body.ID]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, body.ID)
	}

	if err := w.dynamics.RemoveRigidBody(body.RigidBody); err != nil {
		return fmt.Errorf("remove rigid body %s: %w", body.ID, err)
	}

	delete(w.bodies, body.ID)
	delete(w.byRigid, body.RigidBody)
	return nil
}

// StepSimulation продвигает мир на elapsed секунд шагами 1/60 (не более maxSubSteps)
func (w *World) StepSimulation(elapsed float64) int {
	if !w.ready() || elapsed <= 0 {
		return 0
	}
	return w.dynamics.StepSimulation(elapsed, w.maxSubSteps, w.fixedTimeStep)
}

// RayTest проверяет отрезок и возвращает тело, которое он задел
func (w *World) RayTest(from, to mgl64.Vec3) (RayHit, *Body, bool) {
	if !w.ready() {
		return RayHit{}, nil, false
	}

	hit, ok := w.dynamics.RayTest(from, to)
	if !ok {
		return RayHit{}, nil, false
	}
	return hit, w.byRigid[hit.Body], true
}

// Body возвращает тело по ID
func (w *World) Body(id uuid.UUID) (*Body, bool) {
	if !w.ready() {
		return nil, false
	}
	b, ok := w.bodies[id]
	return b, ok
}

// BodyCount количество тел в мире
func (w *World) BodyCount() int {
	if !w.ready() {
		return 0
	}
	return len(w.bodies)
}

// RuntimeName имя физического рантайма
func (w *World) RuntimeName() string {
	if w == nil {
		return ""
	}
	return w.runtimeName
}
