package scene

import (
	"fmt"
	"log"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/config"
	"player-controller/backend/internal/physics"
)

// MeshSpec описание статического объекта уровня
type MeshSpec struct {
	Kind        Kind
	Position    mgl64.Vec3
	HalfExtents mgl64.Vec3
	Color       string
}

const (
	floorSize     = 1000.0
	wallHeight    = 2.0
	wallThickness = 1.0
)

// Cube описывает куб так же, как редактор уровня: высота, ширина, глубина и
// позиция основания
func Cube(height, width, depth float64, base mgl64.Vec3, color string) MeshSpec {
	return MeshSpec{
		Kind:        KindCube,
		Position:    base.Add(mgl64.Vec3{0, height / 2, 0}),
		HalfExtents: mgl64.Vec3{width / 2, height / 2, depth / 2},
		Color:       color,
	}
}

// Floor пол с верхней гранью на y=0
func Floor() MeshSpec {
	return MeshSpec{
		Kind:        KindFloor,
		Position:    mgl64.Vec3{0, -0.5, 0},
		HalfExtents: mgl64.Vec3{floorSize / 2, 0.5, floorSize / 2},
		Color:       "#808080",
	}
}

// Walls четыре стены по периметру пола
func Walls() []MeshSpec {
	half := floorSize / 2
	y := wallHeight / 2
	long := mgl64.Vec3{half, wallHeight / 2, wallThickness / 2}
	wide := mgl64.Vec3{wallThickness / 2, wallHeight / 2, half}

	return []MeshSpec{
		{Kind: KindWall, Position: mgl64.Vec3{0, y, -half}, HalfExtents: long, Color: "#a0522d"},
		{Kind: KindWall, Position: mgl64.Vec3{0, y, half}, HalfExtents: long, Color: "#a0522d"},
		{Kind: KindWall, Position: mgl64.Vec3{-half, y, 0}, HalfExtents: wide, Color: "#a0522d"},
		{Kind: KindWall, Position: mgl64.Vec3{half, y, 0}, HalfExtents: wide, Color: "#a0522d"},
	}
}

// DefaultLayout стандартный уровень: пол, стены, ступеньки и платформы
func DefaultLayout() []MeshSpec {
	layout := []MeshSpec{Floor()}
	layout = append(layout, Walls()...)
	layout = append(layout,
		Cube(1, 2, 2, mgl64.Vec3{0, 0, 0}, "#ff0000"),
		Cube(0.2, 2, 2, mgl64.Vec3{6, 4, -2}, "#00ff00"),
		Cube(4, 4, 10, mgl64.Vec3{2, 4, -14}, "#0000ff"),
		Cube(0.5, 2, 2, mgl64.Vec3{5, 0, 5}, "#ffff00"),
		Cube(0.4, 2, 2, mgl64.Vec3{-5, 0, -5}, "#ff00ff"),
	)
	return layout
}

// Populate создает статические тела уровня и игрока. Требует готовый мир.
func Populate(ctx *Context, layout []MeshSpec, player config.PlayerConfig, logger *log.Logger) error {
	if logger == nil {
		logger = log.Default()
	}

	world, ok := ctx.World()
	if !ok {
		return physics.ErrWorldNotReady
	}

	for _, spec := range layout {
		mesh := NewMesh(spec.Kind, spec.Position, spec.HalfExtents, spec.Color)
		body, err := world.CreateRigidBody(physics.NewTransform(spec.Position), 0, spec.HalfExtents)
		if err != nil {
			return fmt.Errorf("create %s: %w", spec.Kind, err)
		}
		mesh.Body = body
		ctx.Graph().Add(mesh)
	}

	spawn := mgl64.Vec3(player.Spawn)
	half := mgl64.Vec3(player.HalfExtents)

	mesh := NewMesh(KindPlayer, spawn, half, "#ffffff")
	body, err := world.CreateRigidBody(physics.NewTransform(spawn), player.Mass, half)
	if err != nil {
		return fmt.Errorf("create player: %w", err)
	}
	body.SetRestitution(player.Restitution)
	body.SetFriction(1)
	body.Activate()

	mesh.Body = body
	ctx.Graph().Add(mesh)
	ctx.SetPlayer(mesh)

	logger.Printf("[Scene] Сцена заполнена: объектов %d, игрок %s в (%.1f, %.1f, %.1f)",
		len(ctx.Graph().Meshes()), mesh.ID, spawn.X(), spawn.Y(), spawn.Z())

	return nil
}
