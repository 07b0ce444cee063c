// Package camera - перспективная камера и орбитальный риг вокруг игрока
package camera

import (
	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/config"
)

var worldUp = mgl64.Vec3{0, 1, 0}

// Camera перспективная камера
type Camera struct {
	Position mgl64.Vec3
	FovY     float64 // градусы
	Aspect   float64
	Near     float64
	Far      float64

	lookAt mgl64.Vec3
}

// New создает камеру по настройкам, смотрящую в начало координат
func New(cfg config.CameraConfig) *Camera {
	return &Camera{
		Position: mgl64.Vec3{0, 0, cfg.Distance},
		FovY:     cfg.FieldOfView,
		Aspect:   cfg.Aspect,
		Near:     cfg.Near,
		Far:      cfg.Far,
	}
}

// LookAt направляет камеру на точку
func (c *Camera) LookAt(p mgl64.Vec3) {
	c.lookAt = p
}

// Target точка, на которую смотрит камера
func (c *Camera) Target() mgl64.Vec3 {
	return c.lookAt
}

// View матрица вида
func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Position, c.lookAt, worldUp)
}

// Projection матрица проекции
func (c *Camera) Projection() mgl64.Mat4 {
	return mgl64.Perspective(mgl64.DegToRad(c.FovY), c.Aspect, c.Near, c.Far)
}

// Forward направление взгляда. Если камера стоит в точке взгляда - (0,0,-1).
func (c *Camera) Forward() mgl64.Vec3 {
	dir := c.lookAt.Sub(c.Position)
	if dir.LenSqr() < 1e-12 {
		return mgl64.Vec3{0, 0, -1}
	}
	return dir.Normalize()
}

// Orientation поворот камеры в мировых координатах
func (c *Camera) Orientation() mgl64.Quat {
	if c.lookAt.Sub(c.Position).LenSqr() < 1e-12 {
		return mgl64.QuatIdent()
	}
	// QuatLookAtV возвращает поворот вида, мировой - обратный к нему
	return mgl64.QuatLookAtV(c.Position, c.lookAt, worldUp).Inverse()
}
