package targeting

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/physics"
)

// Projector камера, через которую строится луч
type Projector interface {
	View() mgl64.Mat4
	Projection() mgl64.Mat4
}

// Resolver переводит координаты указателя в точку мира
type Resolver struct{}

// NewResolver создает резолвер
func NewResolver() *Resolver {
	return &Resolver{}
}

// Ray строит луч из камеры через точку ndc ([-1,1] по обеим осям)
func (r *Resolver) Ray(ndc mgl64.Vec2, projector Projector) (origin, direction mgl64.Vec3, err error) {
	view := projector.View()
	proj := projector.Projection()

	near, err := mgl64.UnProject(mgl64.Vec3{ndc.X(), ndc.Y(), 0}, view, proj, -1, -1, 2, 2)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, fmt.Errorf("unproject near: %w", err)
	}
	far, err := mgl64.UnProject(mgl64.Vec3{ndc.X(), ndc.Y(), 1}, view, proj, -1, -1, 2, 2)
	if err != nil {
		return mgl64.Vec3{}, mgl64.Vec3{}, fmt.Errorf("unproject far: %w", err)
	}

	return near, far.Sub(near), nil
}

// Resolve возвращает точку на верхней грани ближайшего задетого объекта:
// x и z из пересечения, y из верхней границы бокса. Промах - (zero, false).
func (r *Resolver) Resolve(ndc mgl64.Vec2, projector Projector, colliders []physics.AABB) (mgl64.Vec3, bool) {
	origin, delta, err := r.Ray(ndc, projector)
	if err != nil {
		return mgl64.Vec3{}, false
	}

	best := -1.0
	var bestBox physics.AABB
	for _, box := range colliders {
		t, _, ok := box.IntersectSegment(origin, delta)
		if !ok {
			continue
		}
		if best < 0 || t < best {
			best = t
			bestBox = box
		}
	}

	if best < 0 {
		return mgl64.Vec3{}, false
	}

	hit := origin.Add(delta.Mul(best))
	return mgl64.Vec3{hit.X(), bestBox.Max.Y(), hit.Z()}, true
}
