package targeting

import (
	"github.com/go-gl/mathgl/mgl64"
)

const (
	pulseStep     = 0.02
	pulseMaxScale = 2.0
)

// MarkerState снимок маркера для клиента
type MarkerState struct {
	Visible  bool       `json:"visible"`
	Position mgl64.Vec3 `json:"position"`
	Scale    float64    `json:"scale"`
	Opacity  float64    `json:"opacity"`
}

// Marker кольцо в точке назначения с пульсацией
type Marker struct {
	state MarkerState
}

// NewMarker создает скрытый маркер
func NewMarker() *Marker {
	return &Marker{state: MarkerState{Scale: 1, Opacity: 1}}
}

// Show показывает маркер в точке
func (m *Marker) Show(p mgl64.Vec3) {
	m.state = MarkerState{Visible: true, Position: p, Scale: 1, Opacity: 1}
}

// Hide скрывает маркер
func (m *Marker) Hide() {
	m.state.Visible = false
}

// Tick анимирует пульсацию; маркер гаснет, когда цель снята
func (m *Marker) Tick(target *Target) {
	if !target.IsSet() {
		m.state.Visible = false
		return
	}
	if !m.state.Visible {
		return
	}

	m.state.Scale += pulseStep
	m.state.Opacity -= pulseStep
	if m.state.Scale >= pulseMaxScale {
		m.state.Scale = 1
		m.state.Opacity = 1
	}
}

// State текущее состояние
func (m *Marker) State() MarkerState {
	return m.state
}
