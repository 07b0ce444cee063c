package targeting

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Target точка назначения клика. Пустое значение означает "цели нет",
// точка (0,0,0) остается обычной целью.
type Target struct {
	point      mgl64.Vec3
	set        bool
	generation uint64
}

// Set задает цель, перезаписывая предыдущую
func (t *Target) Set(p mgl64.Vec3) {
	t.point = p
	t.set = true
	t.generation++
}

// Clear снимает цель
func (t *Target) Clear() {
	t.point = mgl64.Vec3{}
	t.set = false
}

// Point возвращает цель, если она задана
func (t *Target) Point() (mgl64.Vec3, bool) {
	return t.point, t.set
}

// IsSet задана ли цель
func (t *Target) IsSet() bool {
	return t.set
}

// Generation растет с каждым Set, так потребитель видит новый клик в ту же точку
func (t *Target) Generation() uint64 {
	return t.generation
}
