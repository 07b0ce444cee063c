package movement

import (
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/config"
	"player-controller/backend/internal/physics"
)

// RayCaster проверка отрезка против мира
type RayCaster interface {
	RayTest(from, to mgl64.Vec3) (physics.RayHit, *physics.Body, bool)
}

// Probe вертикальный отрезок перед игроком
type Probe struct {
	From mgl64.Vec3 `json:"from"`
	To   mgl64.Vec3 `json:"to"`
	Hit  bool       `json:"hit"`
}

// restingMargin допуск минимальной высоты стояния
const restingMargin = 0.1

// footMargin насколько начало луча ниже центра относительно подошвы
const footMargin = 0.2

// LedgeDetector кольцо лучей перед игроком для перешагивания уступов
type LedgeDetector struct {
	bumper     config.BumperConfig
	jumping    config.JumpingConfig
	halfHeight float64
	rays       RayCaster

	offsets  []mgl64.Vec3
	probes   []Probe
	armed    bool
	lastStep time.Time
	steps    int
}

// NewLedgeDetector раскладывает probeCount лучей по дуге в 90 градусов перед игроком
func NewLedgeDetector(bumper config.BumperConfig, jumping config.JumpingConfig, halfHeight float64, rays RayCaster) *LedgeDetector {
	n := bumper.ProbeCount
	if n < 2 {
		n = 2
	}

	offsets := make([]mgl64.Vec3, n)
	for i := 0; i < n; i++ {
		angle := float64(i)/float64(n-1)*(math.Pi/2) - math.Pi/4
		offsets[i] = mgl64.Vec3{
			math.Cos(angle+math.Pi/2) * bumper.ProbeRadius,
			0,
			math.Sin(angle+math.Pi/2) * bumper.ProbeRadius,
		}
	}

	return &LedgeDetector{
		bumper:     bumper,
		jumping:    jumping,
		halfHeight: halfHeight,
		rays:       rays,
		offsets:    offsets,
		probes:     make([]Probe, n),
		armed:      true,
	}
}

// Arm разрешает шаг (игрок движется)
func (d *LedgeDetector) Arm() {
	d.armed = true
}

// Disarm запрещает шаг (игрок стоит на месте)
func (d *LedgeDetector) Disarm() {
	d.armed = false
}

// Armed разрешен ли шаг
func (d *LedgeDetector) Armed() bool {
	return d.armed
}

// Probe переставляет лучи к игроку и проверяет их. true - нужен импульс шага.
func (d *LedgeDetector) Probe(now time.Time, position, velocity mgl64.Vec3, facing mgl64.Quat) bool {
	d.layout(position, facing)

	if !d.armed {
		return false
	}
	if !d.lastStep.IsZero() && now.Sub(d.lastStep) < d.bumper.RearmWindow {
		return false
	}
	vy := velocity.Y()
	if math.Abs(vy) > d.jumping.FallVelocityTolerance {
		return false
	}
	if !d.jumping.AllowJumpClimbing && vy < 0 {
		return false
	}
	if position.Y() < d.halfHeight-restingMargin {
		return false
	}

	hit := false
	for i := range d.probes {
		_, _, ok := d.rays.RayTest(d.probes[i].From, d.probes[i].To)
		d.probes[i].Hit = ok
		hit = hit || ok
	}
	if !hit {
		return false
	}

	d.lastStep = now
	d.steps++
	return true
}

func (d *LedgeDetector) layout(position mgl64.Vec3, facing mgl64.Quat) {
	startY := position.Y() - (d.halfHeight - footMargin) + d.bumper.StepHeight
	endY := startY - d.bumper.StepHeight

	for i, offset := range d.offsets {
		rotated := facing.Rotate(offset)
		base := position.Add(mgl64.Vec3{rotated.X(), 0, rotated.Z()})
		d.probes[i] = Probe{
			From: mgl64.Vec3{base.X(), startY, base.Z()},
			To:   mgl64.Vec3{base.X(), endY, base.Z()},
		}
	}
}

// Probes текущие положения лучей
func (d *LedgeDetector) Probes() []Probe {
	out := make([]Probe, len(d.probes))
	copy(out, d.probes)
	return out
}

// Steps сколько раз сработал шаг
func (d *LedgeDetector) Steps() int {
	return d.steps
}
