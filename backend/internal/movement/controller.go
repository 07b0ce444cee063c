package movement

import (
	"log"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/config"
	"player-controller/backend/internal/physics"
	"player-controller/backend/internal/targeting"
)

// Direction направление движения с клавиатуры
type Direction int

const (
	Forward Direction = iota
	Back
	Left
	Right
	directionCount
)

const (
	frictionSliding  = 0.0
	frictionGrounded = 1.0
)

// modelForward ось, вдоль которой смотрит модель игрока без поворота
var modelForward = mgl64.Vec3{0, 0, 1}

// BodySource выдает тело игрока, если оно уже создано
type BodySource interface {
	PlayerBody() (*physics.Body, bool)
}

// Heading направление взгляда камеры
type Heading interface {
	Forward() mgl64.Vec3
}

// Recorder телеметрия импульсов
type Recorder interface {
	LogImpulse(objectID, kind string, position, velocity, impulse mgl64.Vec3)
}

// Controller превращает нажатые клавиши, цель клика и прыжок в скорость тела игрока
type Controller struct {
	movement config.MovementConfig
	jumping  config.JumpingConfig
	bumper   config.BumperConfig

	bodies  BodySource
	heading Heading
	target  *targeting.Target
	jump    *JumpArbiter
	ledge   *LedgeDetector

	keys   [directionCount]bool
	facing mgl64.Quat

	lastPos    mgl64.Vec3
	hasLastPos bool
	stillSince time.Time

	// поколение цели и момент, когда контроллер его увидел
	targetGen   uint64
	targetSince time.Time

	recorder Recorder
	logger   *log.Logger
}

// NewController создает контроллер игрока
func NewController(cfg config.PlayerConfig, bodies BodySource, heading Heading, rays RayCaster, target *targeting.Target, logger *log.Logger) *Controller {
	if logger == nil {
		logger = log.Default()
	}

	return &Controller{
		movement: cfg.Movement,
		jumping:  cfg.Jumping,
		bumper:   cfg.Bumper,
		bodies:   bodies,
		heading:  heading,
		target:   target,
		jump:     NewJumpArbiter(cfg.Jumping.Cooldown, cfg.Jumping.FallVelocityTolerance),
		ledge:    NewLedgeDetector(cfg.Bumper, cfg.Jumping, cfg.HalfExtents[1], rays),
		facing:   mgl64.QuatIdent(),
		logger:   logger,
	}
}

// SetRecorder подключает телеметрию
func (c *Controller) SetRecorder(r Recorder) {
	c.recorder = r
}

// Press нажатие клавиши движения. Снимает цель клика.
func (c *Controller) Press(dir Direction) {
	if dir < 0 || dir >= directionCount {
		return
	}
	c.keys[dir] = true
	c.target.Clear()
	c.setFriction(frictionSliding)
}

// Release отпускание клавиши движения
func (c *Controller) Release(dir Direction) {
	if dir < 0 || dir >= directionCount {
		return
	}
	c.keys[dir] = false
	if !c.anyKey() {
		c.setFriction(frictionGrounded)
	}
}

// RequestJump нажатие прыжка
func (c *Controller) RequestJump(now time.Time) bool {
	c.setFriction(frictionSliding)
	return c.jump.Request(now)
}

// Tick один шаг контроллера. false - тело игрока еще не создано, тик пропущен.
func (c *Controller) Tick(now time.Time) bool {
	body, ok := c.bodies.PlayerBody()
	if !ok {
		return false
	}

	transform := body.Transform()
	position := transform.Position
	velocity := body.LinearVelocity()

	c.watchStationary(now, position)

	// 1. Клавиатура
	direction := c.keyDirection()
	propelled := false
	if direction.LenSqr() > 0 {
		velocity = mgl64.Vec3{
			direction.X() * c.movement.MovementSpeed,
			velocity.Y(),
			direction.Z() * c.movement.MovementSpeed,
		}
		propelled = true
		c.setBodyFriction(body, frictionSliding)
	} else if !c.target.IsSet() {
		c.damp(body, &velocity)
	}

	// 2. Цель клика
	if point, ok := c.target.Point(); ok {
		toTarget := mgl64.Vec3{point.X() - position.X(), 0, point.Z() - position.Z()}
		distance := toTarget.Len()

		if distance > c.movement.ArrivalRadius {
			heading := toTarget.Mul(1 / distance)
			speed := ArrivalSpeed(c.movement.MovementSpeed, distance, c.movement.ArrivalForceStep)
			velocity = mgl64.Vec3{heading.X() * speed, velocity.Y(), heading.Z() * speed}
			direction = heading
			propelled = true
			c.setBodyFriction(body, frictionSliding)
		} else {
			c.target.Clear()
			if !c.anyKey() {
				c.setBodyFriction(body, frictionGrounded)
			}
		}
	}

	// 3. Поворот
	if direction.LenSqr() > 0 {
		c.facing = Face(c.facing, direction, c.movement.RotationSpeed)
	}

	// 4. Прыжок
	jumped := c.jump.Apply(velocity.Y())
	if jumped {
		velocity[1] = c.jumping.JumpForce
		c.setBodyFriction(body, frictionSliding)
		c.record(body, "jump", position, velocity, mgl64.Vec3{0, c.jumping.JumpForce, 0})
	}

	body.SetLinearVelocity(velocity)
	body.SetTransform(physics.Transform{Position: position, Rotation: c.facing})
	if propelled || jumped {
		body.Activate()
	}

	// 5. Уступы. Прыжок в этом тике важнее шага.
	if !jumped && c.ledge.Probe(now, position, velocity, c.facing) {
		velocity[1] = c.jumping.JumpForce / 2
		c.setBodyFriction(body, frictionSliding)
		body.SetLinearVelocity(velocity)
		body.Activate()
		c.record(body, "step", position, velocity, mgl64.Vec3{0, c.jumping.JumpForce / 2, 0})
	}

	return true
}

func (c *Controller) damp(body *physics.Body, velocity *mgl64.Vec3) {
	horizontal := math.Hypot(velocity.X(), velocity.Z())
	if horizontal > c.movement.DampingEpsilon {
		velocity[0] *= c.movement.DampingFactor
		velocity[2] *= c.movement.DampingFactor
		return
	}
	if math.Abs(velocity.Y()) < c.jumping.FallVelocityTolerance {
		c.setBodyFriction(body, frictionGrounded)
	}
}

// watchStationary снимает готовность к шагу и протухшую цель, пока игрок стоит
func (c *Controller) watchStationary(now time.Time, position mgl64.Vec3) {
	if gen := c.target.Generation(); gen != c.targetGen {
		c.targetGen = gen
		c.targetSince = now
	}

	if !c.hasLastPos {
		c.lastPos = position
		c.hasLastPos = true
	}
	delta := position.Sub(c.lastPos)
	c.lastPos = position

	still := math.Abs(delta.X()) < c.movement.MinMovement &&
		math.Abs(delta.Z()) < c.movement.MinMovement &&
		!c.anyKey()

	if !still {
		c.stillSince = time.Time{}
		c.ledge.Arm()
		return
	}

	if c.stillSince.IsZero() {
		c.stillSince = now
	}
	idle := now.Sub(c.stillSince)

	if idle >= c.bumper.RearmWindow {
		c.ledge.Disarm()
	}

	// Свежий клик получает полное окно, даже если игрок давно стоит
	targetIdle := idle
	if c.targetSince.After(c.stillSince) {
		targetIdle = now.Sub(c.targetSince)
	}
	if targetIdle >= c.movement.IdleTargetTimeout && c.target.IsSet() {
		c.target.Clear()
		c.stillSince = now
		c.logger.Printf("[Movement] Цель снята: игрок стоит %v", targetIdle)
	}
}

func (c *Controller) keyDirection() mgl64.Vec3 {
	forward := mgl64.Vec3{0, 0, -1}
	if c.heading != nil {
		f := c.heading.Forward()
		f[1] = 0
		if f.LenSqr() > 1e-12 {
			forward = f.Normalize()
		}
	}
	left := mgl64.Vec3{forward.Z(), 0, -forward.X()}

	var dir mgl64.Vec3
	if c.keys[Forward] {
		dir = dir.Add(forward)
	}
	if c.keys[Back] {
		dir = dir.Sub(forward)
	}
	if c.keys[Left] {
		dir = dir.Add(left)
	}
	if c.keys[Right] {
		dir = dir.Sub(left)
	}

	if dir.LenSqr() < 1e-12 {
		return mgl64.Vec3{}
	}
	return dir.Normalize()
}

func (c *Controller) anyKey() bool {
	for _, down := range c.keys {
		if down {
			return true
		}
	}
	return false
}

func (c *Controller) setFriction(f float64) {
	if body, ok := c.bodies.PlayerBody(); ok {
		c.setBodyFriction(body, f)
	}
}

func (c *Controller) setBodyFriction(body *physics.Body, f float64) {
	if body.Friction() != f {
		body.SetFriction(f)
	}
}

func (c *Controller) record(body *physics.Body, kind string, position, velocity, impulse mgl64.Vec3) {
	if c.recorder == nil {
		return
	}
	c.recorder.LogImpulse(body.ID.String(), kind, position, velocity, impulse)
}

// Facing текущая ориентация игрока
func (c *Controller) Facing() mgl64.Quat {
	return c.facing
}

// Probes лучи детектора уступов
func (c *Controller) Probes() []Probe {
	return c.ledge.Probes()
}

// Jumps сколько импульсов прыжка применено
func (c *Controller) Jumps() int {
	return c.jump.Impulses()
}

// Steps сколько раз сработал шаг через уступ
func (c *Controller) Steps() int {
	return c.ledge.Steps()
}

// ArrivalSpeed скорость подхода к цели. Вблизи цели скорость квантуется:
// берется наименьший радиус i, для которого speed <= i*step и distance <= i,
// и скорость масштабируется как distance/i.
func ArrivalSpeed(speed, distance, step float64) float64 {
	if step <= 0 {
		return speed
	}
	maxStop := int(math.Ceil(speed / step))
	for i := 1; i <= maxStop; i++ {
		radius := float64(i)
		if speed <= radius*step && distance <= radius {
			return speed * distance / radius
		}
	}
	return speed
}

// Face поворачивает current к направлению direction на долю factor
func Face(current mgl64.Quat, direction mgl64.Vec3, factor float64) mgl64.Quat {
	desired := mgl64.QuatBetweenVectors(modelForward, direction)
	return mgl64.QuatSlerp(current, desired, factor)
}
