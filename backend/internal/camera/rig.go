package camera

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/config"
)

// Arrow стрелка клавиатуры, вращающая камеру
type Arrow int

const (
	ArrowUp Arrow = iota
	ArrowDown
	ArrowLeft
	ArrowRight
	arrowCount
)

// Rig орбитальная камера вокруг игрока.
//
// Без перетаскивания камера плавно догоняет идеальную позицию на сфере вокруг
// игрока. Пока зажата правая кнопка, камера жестко вращается вокруг игрока на
// расстоянии, зафиксированном в момент нажатия.
type Rig struct {
	cfg    config.CameraConfig
	camera *Camera

	polar          float64
	azimuth        float64
	targetDistance float64
	holdDistance   float64

	dragging bool
	arrows   [arrowCount]bool
	mounted  bool
	pivot    mgl64.Vec3

	logger *log.Logger
}

// NewRig создает риг для камеры
func NewRig(cfg config.CameraConfig, camera *Camera, logger *log.Logger) *Rig {
	if logger == nil {
		logger = log.Default()
	}

	r := &Rig{
		cfg:    cfg,
		camera: camera,
		logger: logger,
	}
	r.polar = r.clampPolar(cfg.PolarAngle)
	r.azimuth = cfg.AzimuthAngle
	r.targetDistance = r.clampDistance(cfg.Distance)
	return r
}

// Mount ставит камеру в начальную позицию над игроком
func (r *Rig) Mount(player mgl64.Vec3) {
	r.pivot = r.pivotFor(player)
	r.camera.Position = r.pivot.Add(Spherical(r.targetDistance, r.polar, r.azimuth))
	r.camera.LookAt(r.pivot)
	r.targetDistance = r.clampDistance(r.camera.Position.Sub(r.pivot).Len())
	r.mounted = true

	r.logger.Printf("[Camera] Камера установлена: дистанция %.1f, полярный угол %.2f, азимут %.2f",
		r.targetDistance, r.polar, r.azimuth)
}

// RightDown начало перетаскивания. Дистанция фиксируется по текущей позиции камеры.
func (r *Rig) RightDown() {
	r.dragging = true

	offset := r.camera.Position.Sub(r.pivot)
	if offset.LenSqr() < 1e-12 {
		r.holdDistance = r.targetDistance
		return
	}
	r.holdDistance = offset.Len()
	r.polar, r.azimuth = r.anglesOf(offset)
}

// RightUp конец перетаскивания
func (r *Rig) RightUp() {
	r.dragging = false
}

// MouseMove смещение мыши в пикселях. Действует только при перетаскивании.
func (r *Rig) MouseMove(dx, dy float64) {
	if !r.dragging {
		return
	}
	r.azimuth -= dx * r.cfg.MouseRotationSensitivity
	r.polar = r.clampPolar(r.polar - dy*r.cfg.MouseRotationSensitivity)
}

// Wheel меняет желаемую дистанцию
func (r *Rig) Wheel(deltaY float64) {
	r.targetDistance = r.clampDistance(r.targetDistance + deltaY*r.cfg.WheelScale)
}

// KeyDown нажатие стрелки
func (r *Rig) KeyDown(a Arrow) {
	if a >= 0 && a < arrowCount {
		r.arrows[a] = true
	}
}

// KeyUp отпускание стрелки
func (r *Rig) KeyUp(a Arrow) {
	if a >= 0 && a < arrowCount {
		r.arrows[a] = false
	}
}

// Tick перемещает камеру вслед за игроком
func (r *Rig) Tick(player mgl64.Vec3) {
	if !r.mounted {
		r.Mount(player)
	}

	r.pivot = r.pivotFor(player)
	rotated := r.applyArrows()

	if r.dragging {
		r.camera.Position = r.pivot.Add(Spherical(r.holdDistance, r.polar, r.azimuth))
		r.camera.LookAt(r.pivot)
		return
	}

	// Плавающие углы следуют за фактическим положением камеры
	if !rotated {
		offset := r.camera.Position.Sub(r.pivot)
		if offset.LenSqr() > 1e-12 {
			polar, azimuth := r.anglesOf(offset)
			if r.cfg.FloatPolarAngle {
				r.polar = polar
			}
			if r.cfg.FloatAzimuthAngle {
				r.azimuth = azimuth
			}
		}
	}

	ideal := r.pivot.Add(Spherical(r.targetDistance, r.polar, r.azimuth))
	r.camera.Position = lerp(r.camera.Position, ideal, r.cfg.FloatEasing)
	r.camera.LookAt(r.pivot)
}

func (r *Rig) applyArrows() bool {
	rotated := false
	if r.arrows[ArrowUp] {
		r.polar = r.clampPolar(r.polar - r.cfg.ArrowKeyPolarSpeed)
		rotated = true
	}
	if r.arrows[ArrowDown] {
		r.polar = r.clampPolar(r.polar + r.cfg.ArrowKeyPolarSpeed)
		rotated = true
	}
	if r.arrows[ArrowLeft] {
		r.azimuth += r.cfg.ArrowKeyRotationSensitivity
		rotated = true
	}
	if r.arrows[ArrowRight] {
		r.azimuth -= r.cfg.ArrowKeyRotationSensitivity
		rotated = true
	}
	return rotated
}

func (r *Rig) pivotFor(player mgl64.Vec3) mgl64.Vec3 {
	return player.Add(mgl64.Vec3{0, r.cfg.TargetHeightOffset, 0})
}

func (r *Rig) anglesOf(offset mgl64.Vec3) (polar, azimuth float64) {
	length := offset.Len()
	polar = r.clampPolar(math.Acos(mgl64.Clamp(offset.Y()/length, -1, 1)))
	azimuth = math.Atan2(offset.X(), offset.Z())
	return polar, azimuth
}

func (r *Rig) clampPolar(v float64) float64 {
	return mgl64.Clamp(v, r.cfg.MinPolarAngle, r.cfg.MaxPolarAngle)
}

func (r *Rig) clampDistance(v float64) float64 {
	return mgl64.Clamp(v, r.cfg.MinDistance, r.cfg.MaxDistance)
}

// Polar текущий полярный угол
func (r *Rig) Polar() float64 { return r.polar }

// Azimuth текущий азимут
func (r *Rig) Azimuth() float64 { return r.azimuth }

// TargetDistance желаемая дистанция
func (r *Rig) TargetDistance() float64 { return r.targetDistance }

// Dragging зажата ли правая кнопка
func (r *Rig) Dragging() bool { return r.dragging }

// Pivot точка, вокруг которой вращается камера
func (r *Rig) Pivot() mgl64.Vec3 { return r.pivot }

// Spherical смещение на сфере с осью Y вверх: полярный угол от вертикали,
// азимут от оси +Z к +X
func Spherical(radius, polar, azimuth float64) mgl64.Vec3 {
	sinPolar := math.Sin(polar)
	return mgl64.Vec3{
		radius * sinPolar * math.Sin(azimuth),
		radius * math.Cos(polar),
		radius * sinPolar * math.Cos(azimuth),
	}
}

func lerp(from, to mgl64.Vec3, t float64) mgl64.Vec3 {
	return from.Add(to.Sub(from).Mul(t))
}
