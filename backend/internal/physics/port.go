package physics

import (
	"errors"

	"github.com/go-gl/mathgl/mgl64"
)

var (
	// ErrRuntimeUnavailable физический рантайм не смог инициализироваться
	ErrRuntimeUnavailable = errors.New("physics runtime unavailable")
	// ErrWorldNotReady мир еще не создан
	ErrWorldNotReady = errors.New("physics world not ready")
	// ErrUnknownBody тело не принадлежит миру
	ErrUnknownBody = errors.New("unknown rigid body")
)

// Runtime определяет интерфейс физического движка
type Runtime interface {
	// Name возвращает имя реализации для логов
	Name() string

	// NewDynamicsWorld создает мир с заданной гравитацией
	NewDynamicsWorld(gravity mgl64.Vec3) (DynamicsWorld, error)
}

// DynamicsWorld - мир динамики, которым владеет адаптер
type DynamicsWorld interface {
	AddRigidBody(desc BodyDesc) (RigidBody, error)
	RemoveRigidBody(body RigidBody) error

	// StepSimulation продвигает мир на elapsed секунд фиксированными шагами
	// и возвращает количество выполненных подшагов
	StepSimulation(elapsed float64, maxSubSteps int, fixedTimeStep float64) int

	// RayTest возвращает ближайшее пересечение отрезка from-to
	RayTest(from, to mgl64.Vec3) (RayHit, bool)
}

// RigidBody - непрозрачный дескриптор тела в мире
type RigidBody interface {
	LinearVelocity() mgl64.Vec3
	SetLinearVelocity(v mgl64.Vec3)
	Transform() Transform
	SetTransform(t Transform)
	Friction() float64
	SetFriction(f float64)
	SetRestitution(r float64)
	Activate()
	IsActive() bool
}

// Transform мировая позиция и ориентация
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewTransform создает трансформацию без поворота
func NewTransform(position mgl64.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl64.QuatIdent()}
}

// BodyDesc параметры создания тела. Mass == 0 означает статическое тело.
type BodyDesc struct {
	Transform   Transform
	Mass        float64
	HalfExtents mgl64.Vec3
	Friction    float64
	Restitution float64
}

// RayHit результат проверки луча
type RayHit struct {
	Point    mgl64.Vec3
	Normal   mgl64.Vec3
	Fraction float64
	Body     RigidBody
}
