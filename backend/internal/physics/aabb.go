package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// AABB выровненный по осям ограничивающий параллелепипед
type AABB struct {
	Min, Max mgl64.Vec3
}

// BoxAround строит AABB по центру и половинам размеров
func BoxAround(center, halfExtents mgl64.Vec3) AABB {
	return AABB{Min: center.Sub(halfExtents), Max: center.Add(halfExtents)}
}

// Center центр бокса
func (b AABB) Center() mgl64.Vec3 {
	return b.Min.Add(b.Max).Mul(0.5)
}

// HalfExtents половины размеров
func (b AABB) HalfExtents() mgl64.Vec3 {
	return b.Max.Sub(b.Min).Mul(0.5)
}

// Contains проверяет, лежит ли точка внутри (границы включительно)
func (b AABB) Contains(p mgl64.Vec3) bool {
	for i := 0; i < 3; i++ {
		if p[i] < b.Min[i] || p[i] > b.Max[i] {
			return false
		}
	}
	return true
}

// IntersectSegment пересекает отрезок origin + t*delta, t в [0,1], методом слэбов.
// Возвращает параметр входа и нормаль грани. Отрезок, начинающийся внутри бокса,
// пересечением не считается.
func (b AABB) IntersectSegment(origin, delta mgl64.Vec3) (float64, mgl64.Vec3, bool) {
	if b.Contains(origin) {
		return 0, mgl64.Vec3{}, false
	}

	tEnter, tExit := 0.0, 1.0
	enterAxis := -1
	enterSign := 0.0

	for i := 0; i < 3; i++ {
		if math.Abs(delta[i]) < 1e-12 {
			if origin[i] < b.Min[i] || origin[i] > b.Max[i] {
				return 0, mgl64.Vec3{}, false
			}
			continue
		}

		inv := 1 / delta[i]
		t1 := (b.Min[i] - origin[i]) * inv
		t2 := (b.Max[i] - origin[i]) * inv
		sign := -1.0
		if t1 > t2 {
			t1, t2 = t2, t1
			sign = 1.0
		}

		if t1 > tEnter {
			tEnter = t1
			enterAxis = i
			enterSign = sign
		}
		if t2 < tExit {
			tExit = t2
		}
		if tEnter > tExit {
			return 0, mgl64.Vec3{}, false
		}
	}

	if enterAxis < 0 {
		return 0, mgl64.Vec3{}, false
	}

	var normal mgl64.Vec3
	normal[enterAxis] = enterSign
	return tEnter, normal, true
}
