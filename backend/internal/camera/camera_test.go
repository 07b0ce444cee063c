package camera

import (
	"math"
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/config"
	"player-controller/backend/internal/logger"
)

func newTestRig() (*Rig, *Camera, config.CameraConfig) {
	cfg := config.Default().Player.Camera
	cam := New(cfg)
	return NewRig(cfg, cam, logger.Nop()), cam, cfg
}

func TestCamera_ForwardAndOrientation(t *testing.T) {
	cam := New(config.Default().Player.Camera)
	cam.Position = mgl64.Vec3{0, 0, 10}
	cam.LookAt(mgl64.Vec3{})

	if f := cam.Forward(); f.Sub(mgl64.Vec3{0, 0, -1}).Len() > 1e-9 {
		t.Fatalf("ожидали взгляд вдоль -Z, получили %v", f)
	}

	// Мировая ориентация переводит локальный -Z в направление взгляда
	cam.Position = mgl64.Vec3{10, 0, 0}
	got := cam.Orientation().Rotate(mgl64.Vec3{0, 0, -1})
	if got.Sub(cam.Forward()).Len() > 1e-6 {
		t.Fatalf("ориентация не совпадает с взглядом: %v vs %v", got, cam.Forward())
	}

	cam.Position = mgl64.Vec3{}
	if f := cam.Forward(); f != (mgl64.Vec3{0, 0, -1}) {
		t.Fatalf("вырожденный взгляд должен давать -Z, получили %v", f)
	}
}

func TestSpherical(t *testing.T) {
	tests := []struct {
		name           string
		polar, azimuth float64
		want           mgl64.Vec3
	}{
		{"сверху", 0, 0, mgl64.Vec3{0, 10, 0}},
		{"сзади по +Z", math.Pi / 2, 0, mgl64.Vec3{0, 0, 10}},
		{"справа по +X", math.Pi / 2, math.Pi / 2, mgl64.Vec3{10, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Spherical(10, tt.polar, tt.azimuth)
			// абсолютная погрешность: cos(pi/2) дает не ноль, а ~6e-16
			if got.Sub(tt.want).Len() > 1e-9 {
				t.Errorf("ожидали %v, получили %v", tt.want, got)
			}
		})
	}
}

func TestRig_MountPlacesCameraAboveTarget(t *testing.T) {
	rig, cam, cfg := newTestRig()
	player := mgl64.Vec3{3, 3, -2}

	rig.Mount(player)

	pivot := player.Add(mgl64.Vec3{0, cfg.TargetHeightOffset, 0})
	if cam.Target() != pivot {
		t.Fatalf("камера должна смотреть на %v, смотрит на %v", pivot, cam.Target())
	}
	if d := cam.Position.Sub(pivot).Len(); math.Abs(d-cfg.Distance) > 1e-9 {
		t.Fatalf("ожидали дистанцию %v, получили %v", cfg.Distance, d)
	}
}

func TestRig_WheelDistanceClamp(t *testing.T) {
	rig, _, cfg := newTestRig()
	rnd := rand.New(rand.NewSource(42))

	for i := 0; i < 1000; i++ {
		rig.Wheel((rnd.Float64()*2 - 1) * 500)
		d := rig.TargetDistance()
		if d < cfg.MinDistance || d > cfg.MaxDistance {
			t.Fatalf("шаг %d: дистанция %v вне [%v, %v]", i, d, cfg.MinDistance, cfg.MaxDistance)
		}
	}

	rig.Wheel(-1e6)
	if rig.TargetDistance() != cfg.MinDistance {
		t.Errorf("ожидали минимум %v, получили %v", cfg.MinDistance, rig.TargetDistance())
	}
}

func TestRig_PolarClamp(t *testing.T) {
	rig, _, cfg := newTestRig()
	rig.Mount(mgl64.Vec3{})

	rig.RightDown()
	rnd := rand.New(rand.NewSource(7))
	for i := 0; i < 500; i++ {
		rig.MouseMove((rnd.Float64()*2-1)*300, (rnd.Float64()*2-1)*300)
		if p := rig.Polar(); p < cfg.MinPolarAngle || p > cfg.MaxPolarAngle {
			t.Fatalf("полярный угол %v вне диапазона", p)
		}
	}
	rig.RightUp()

	rig.KeyDown(ArrowUp)
	for i := 0; i < 500; i++ {
		rig.Tick(mgl64.Vec3{})
	}
	rig.KeyUp(ArrowUp)
	if rig.Polar() != cfg.MinPolarAngle {
		t.Errorf("стрелка вверх упирается в минимум: %v", rig.Polar())
	}

	rig.KeyDown(ArrowDown)
	for i := 0; i < 500; i++ {
		rig.Tick(mgl64.Vec3{})
	}
	if rig.Polar() != cfg.MaxPolarAngle {
		t.Errorf("стрелка вниз упирается в максимум: %v", rig.Polar())
	}
}

func TestRig_EasesWithoutSnap(t *testing.T) {
	rig, cam, cfg := newTestRig()
	rig.Mount(mgl64.Vec3{})

	player := mgl64.Vec3{10, 0, 0}
	before := cam.Position
	ideal := player.Add(mgl64.Vec3{0, cfg.TargetHeightOffset, 0}).Add(Spherical(cfg.Distance, rig.Polar(), rig.Azimuth()))

	rig.Tick(player)

	moved := cam.Position.Sub(before).Len()
	gap := ideal.Sub(before).Len()
	if math.Abs(moved-gap*cfg.FloatEasing) > 1e-9 {
		t.Fatalf("за тик камера проходит долю %v пути: прошла %v из %v", cfg.FloatEasing, moved, gap)
	}

	for i := 0; i < 300; i++ {
		rig.Tick(player)
	}
	if cam.Position.Sub(ideal).Len() > 1e-6 {
		t.Fatalf("камера должна сойтись к %v, стоит в %v", ideal, cam.Position)
	}
}

func TestRig_DragPreservesDistance(t *testing.T) {
	rig, cam, _ := newTestRig()
	rig.Mount(mgl64.Vec3{})

	rig.Wheel(-40) // желаемая дистанция 18, камера еще на 20
	rig.RightDown()
	held := cam.Position.Sub(rig.Pivot()).Len()

	player := mgl64.Vec3{}
	for i := 0; i < 30; i++ {
		rig.MouseMove(15, -4)
		player = player.Add(mgl64.Vec3{0.2, 0, 0.1})
		rig.Tick(player)

		d := cam.Position.Sub(rig.Pivot()).Len()
		if math.Abs(d-held) > 1e-9 {
			t.Fatalf("тик %d: при перетаскивании дистанция %v, ожидали %v", i, d, held)
		}
	}
	rig.RightUp()
	if rig.Dragging() {
		t.Fatal("после отпускания перетаскивание выключено")
	}
}

func TestRig_FloatingAzimuthFollowsCamera(t *testing.T) {
	cfg := config.Default().Player.Camera
	cfg.FloatAzimuthAngle = true
	cam := New(cfg)
	rig := NewRig(cfg, cam, logger.Nop())
	rig.Mount(mgl64.Vec3{})

	// Игрок ушел вбок, камера осталась на месте
	rig.Tick(mgl64.Vec3{10, 0, 0})
	if rig.Azimuth() >= 0 {
		t.Fatalf("плавающий азимут должен повернуться к камере, получили %v", rig.Azimuth())
	}

	pinned, _, _ := newTestRig()
	pinned.Mount(mgl64.Vec3{})
	pinned.Tick(mgl64.Vec3{10, 0, 0})
	if pinned.Azimuth() != 0 {
		t.Fatalf("закрепленный азимут не меняется, получили %v", pinned.Azimuth())
	}
}
