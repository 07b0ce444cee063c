// Package dynamics - встроенный решатель для выровненных по осям боксов.
// Реализует physics.Runtime: гравитация, полунеявный Эйлер, выталкивание из
// статических боксов по оси наименьшего проникновения, трение и засыпание.
package dynamics

import (
	"errors"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/physics"
)

const (
	// RuntimeName имя рантайма в логах
	RuntimeName = "aabb-dynamics"

	sleepSpeed     = 0.05
	sleepThreshold = 2.0 // секунды покоя до засыпания
	groundNormalY  = 0.7
)

var errForeignBody = errors.New("body does not belong to this world")

// Runtime создает миры динамики
type Runtime struct{}

// New создает рантайм
func New() *Runtime {
	return &Runtime{}
}

// Name имя рантайма
func (r *Runtime) Name() string {
	return RuntimeName
}

// NewDynamicsWorld создает пустой мир
func (r *Runtime) NewDynamicsWorld(gravity mgl64.Vec3) (physics.DynamicsWorld, error) {
	return &World{gravity: gravity}, nil
}

// World мир динамики
type World struct {
	gravity     mgl64.Vec3
	bodies      []*Body
	accumulator float64
}

// Body тело мира. Коллизии считаются по AABB, поворот хранится, но форму не меняет.
type Body struct {
	world *World

	position mgl64.Vec3
	rotation mgl64.Quat
	velocity mgl64.Vec3
	half     mgl64.Vec3

	invMass     float64
	friction    float64
	restitution float64

	active    bool
	restTime  float64
	grounded  bool
	removed   bool
	contactMu float64
}

// AddRigidBody добавляет тело
func (w *World) AddRigidBody(desc physics.BodyDesc) (physics.RigidBody, error) {
	b := &Body{
		world:       w,
		position:    desc.Transform.Position,
		rotation:    desc.Transform.Rotation,
		half:        desc.HalfExtents,
		friction:    desc.Friction,
		restitution: desc.Restitution,
		active:      desc.Mass > 0,
	}
	if desc.Mass > 0 {
		b.invMass = 1 / desc.Mass
	}
	w.bodies = append(w.bodies, b)
	return b, nil
}

// RemoveRigidBody удаляет тело
func (w *World) RemoveRigidBody(rb physics.RigidBody) error {
	b, ok := rb.(*Body)
	if !ok || b.world != w {
		return errForeignBody
	}
	for i, existing := range w.bodies {
		if existing == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			b.removed = true
			return nil
		}
	}
	return errForeignBody
}

// StepSimulation выполняет фиксированные подшаги, накопленный остаток переносится
func (w *World) StepSimulation(elapsed float64, maxSubSteps int, fixedTimeStep float64) int {
	if fixedTimeStep <= 0 || maxSubSteps <= 0 {
		return 0
	}

	w.accumulator += elapsed
	steps := int(w.accumulator / fixedTimeStep)
	if steps > maxSubSteps {
		steps = maxSubSteps
		// Отставание сверх лимита отбрасывается
		w.accumulator = 0
	} else {
		w.accumulator -= float64(steps) * fixedTimeStep
	}

	for i := 0; i < steps; i++ {
		w.step(fixedTimeStep)
	}
	return steps
}

func (w *World) step(dt float64) {
	for _, b := range w.bodies {
		if b.invMass == 0 || !b.active {
			continue
		}

		b.velocity = b.velocity.Add(w.gravity.Mul(dt))
		b.position = b.position.Add(b.velocity.Mul(dt))
		b.grounded = false
		b.contactMu = 0

		for _, other := range w.bodies {
			if other == b || other.invMass != 0 {
				continue
			}
			w.resolve(b, other)
		}

		if b.grounded {
			w.applyGroundFriction(b, dt)
		}

		w.updateSleep(b, dt)
	}
}

// resolve выталкивает динамическое тело из статического по оси наименьшего проникновения
func (w *World) resolve(b, static *Body) {
	delta := b.position.Sub(static.position)

	axis := -1
	minOverlap := math.MaxFloat64
	for i := 0; i < 3; i++ {
		overlap := b.half[i] + static.half[i] - math.Abs(delta[i])
		if overlap <= 0 {
			return
		}
		if overlap < minOverlap {
			minOverlap = overlap
			axis = i
		}
	}

	var normal mgl64.Vec3
	if delta[axis] >= 0 {
		normal[axis] = 1
	} else {
		normal[axis] = -1
	}

	b.position = b.position.Add(normal.Mul(minOverlap))

	vn := b.velocity.Dot(normal)
	if vn < 0 {
		e := b.restitution * static.restitution
		b.velocity = b.velocity.Sub(normal.Mul(vn * (1 + e)))
	}

	if normal.Y() > groundNormalY {
		b.grounded = true
		mu := b.friction * static.friction
		if mu > b.contactMu {
			b.contactMu = mu
		}
	}
}

func (w *World) applyGroundFriction(b *Body, dt float64) {
	if b.contactMu <= 0 {
		return
	}

	horizontal := mgl64.Vec3{b.velocity.X(), 0, b.velocity.Z()}
	speed := horizontal.Len()
	if speed == 0 {
		return
	}

	decel := b.contactMu * math.Abs(w.gravity.Y()) * dt
	if decel >= speed {
		b.velocity[0], b.velocity[2] = 0, 0
		return
	}

	scale := (speed - decel) / speed
	b.velocity[0] *= scale
	b.velocity[2] *= scale
}

func (w *World) updateSleep(b *Body, dt float64) {
	if b.velocity.Len() < sleepSpeed {
		b.restTime += dt
		if b.restTime >= sleepThreshold {
			b.active = false
			b.velocity = mgl64.Vec3{}
		}
		return
	}
	b.restTime = 0
}

// RayTest ближайшее пересечение отрезка с телами мира
func (w *World) RayTest(from, to mgl64.Vec3) (physics.RayHit, bool) {
	delta := to.Sub(from)

	var best physics.RayHit
	found := false
	for _, b := range w.bodies {
		box := physics.BoxAround(b.position, b.half)
		t, normal, ok := box.IntersectSegment(from, delta)
		if !ok {
			continue
		}
		if !found || t < best.Fraction {
			best = physics.RayHit{
				Point:    from.Add(delta.Mul(t)),
				Normal:   normal,
				Fraction: t,
				Body:     b,
			}
			found = true
		}
	}
	return best, found
}

// LinearVelocity текущая линейная скорость
func (b *Body) LinearVelocity() mgl64.Vec3 {
	return b.velocity
}

// SetLinearVelocity задает скорость. Спящее тело не будится, нужен Activate.
func (b *Body) SetLinearVelocity(v mgl64.Vec3) {
	if b.invMass == 0 {
		return
	}
	b.velocity = v
}

// Transform позиция и ориентация
func (b *Body) Transform() physics.Transform {
	return physics.Transform{Position: b.position, Rotation: b.rotation}
}

// SetTransform задает позицию и ориентацию
func (b *Body) SetTransform(t physics.Transform) {
	b.position = t.Position
	b.rotation = t.Rotation
}

// Friction коэффициент трения
func (b *Body) Friction() float64 {
	return b.friction
}

// SetFriction задает коэффициент трения
func (b *Body) SetFriction(f float64) {
	b.friction = f
}

// SetRestitution задает упругость
func (b *Body) SetRestitution(r float64) {
	b.restitution = r
}

// Activate будит тело
func (b *Body) Activate() {
	if b.invMass == 0 || b.removed {
		return
	}
	b.active = true
	b.restTime = 0
}

// IsActive участвует ли тело в симуляции
func (b *Body) IsActive() bool {
	return b.active
}

// Grounded стояло ли тело на опоре на последнем подшаге
func (b *Body) Grounded() bool {
	return b.grounded
}
