package game

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/movement"
	"player-controller/backend/internal/targeting"
)

// PlayerFrame состояние игрока в кадре
type PlayerFrame struct {
	ID       string     `json:"id"`
	Position mgl64.Vec3 `json:"position"`
	Rotation [4]float64 `json:"rotation"` // x, y, z, w
	Velocity mgl64.Vec3 `json:"velocity"`
}

// CameraFrame состояние камеры в кадре
type CameraFrame struct {
	Position mgl64.Vec3 `json:"position"`
	Target   mgl64.Vec3 `json:"target"`
	Rotation [4]float64 `json:"rotation"`
	Fov      float64    `json:"fov"`
}

// Frame снимок сцены для отрисовки на клиенте
type Frame struct {
	Tick      uint64                `json:"tick"`
	Timestamp int64                 `json:"timestamp"`
	Player    *PlayerFrame          `json:"player,omitempty"`
	Camera    CameraFrame           `json:"camera"`
	Marker    targeting.MarkerState `json:"marker"`
	Target    *mgl64.Vec3           `json:"target,omitempty"`
	Probes    []movement.Probe      `json:"probes,omitempty"`
}

func quatArray(q mgl64.Quat) [4]float64 {
	return [4]float64{q.V.X(), q.V.Y(), q.V.Z(), q.W}
}

// Frame собирает снимок текущего состояния. Вызывается из цикла кадров.
func (s *Session) Frame() Frame {
	frame := Frame{
		Tick:      s.ticker.GetTickCount(),
		Timestamp: time.Now().UnixMilli(),
		Camera: CameraFrame{
			Position: s.camera.Position,
			Target:   s.camera.Target(),
			Rotation: quatArray(s.camera.Orientation()),
			Fov:      s.camera.FovY,
		},
		Marker: s.marker.State(),
	}

	if player, ok := s.scene.Player(); ok {
		pf := &PlayerFrame{
			ID:       player.ID,
			Position: player.Position,
			Rotation: quatArray(s.controller.Facing()),
		}
		if player.Body != nil {
			pf.Velocity = player.Body.LinearVelocity()
		}
		frame.Player = pf
	}

	if p, ok := s.target.Point(); ok {
		frame.Target = &p
	}

	if s.cfg.Player.Bumper.ShowProbes {
		frame.Probes = s.controller.Probes()
	}

	return frame
}
