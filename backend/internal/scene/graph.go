package scene

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"

	"player-controller/backend/internal/physics"
)

// Kind тип объекта сцены
type Kind string

const (
	KindFloor  Kind = "floor"
	KindWall   Kind = "wall"
	KindCube   Kind = "cube"
	KindPlayer Kind = "player"
)

// Mesh объект сцены с опциональным физическим телом
type Mesh struct {
	ID          string
	Kind        Kind
	Color       string
	Position    mgl64.Vec3
	Rotation    mgl64.Quat
	HalfExtents mgl64.Vec3
	Body        *physics.Body
}

// NewMesh создает объект без тела
func NewMesh(kind Kind, position, halfExtents mgl64.Vec3, color string) *Mesh {
	return &Mesh{
		ID:          uuid.NewString(),
		Kind:        kind,
		Color:       color,
		Position:    position,
		Rotation:    mgl64.QuatIdent(),
		HalfExtents: halfExtents,
	}
}

// Bounds мировой ограничивающий бокс
func (m *Mesh) Bounds() physics.AABB {
	return physics.BoxAround(m.Position, m.HalfExtents)
}

// Graph плоский граф сцены
type Graph struct {
	meshes []*Mesh
	byID   map[string]*Mesh
}

// NewGraph создает пустой граф
func NewGraph() *Graph {
	return &Graph{byID: make(map[string]*Mesh)}
}

// Add добавляет объект
func (g *Graph) Add(m *Mesh) {
	if _, exists := g.byID[m.ID]; exists {
		return
	}
	g.meshes = append(g.meshes, m)
	g.byID[m.ID] = m
}

// Remove удаляет объект по ID
func (g *Graph) Remove(id string) (*Mesh, bool) {
	m, ok := g.byID[id]
	if !ok {
		return nil, false
	}
	delete(g.byID, id)
	for i, existing := range g.meshes {
		if existing == m {
			g.meshes = append(g.meshes[:i], g.meshes[i+1:]...)
			break
		}
	}
	return m, true
}

// Get объект по ID
func (g *Graph) Get(id string) (*Mesh, bool) {
	m, ok := g.byID[id]
	return m, ok
}

// Meshes все объекты в порядке добавления
func (g *Graph) Meshes() []*Mesh {
	out := make([]*Mesh, len(g.meshes))
	copy(out, g.meshes)
	return out
}

// Collidables боксы всех объектов, кроме exclude
func (g *Graph) Collidables(exclude *Mesh) []physics.AABB {
	out := make([]physics.AABB, 0, len(g.meshes))
	for _, m := range g.meshes {
		if m == exclude {
			continue
		}
		out = append(out, m.Bounds())
	}
	return out
}

// SyncTransforms копирует позиции тел в объекты сцены
func (g *Graph) SyncTransforms() int {
	synced := 0
	for _, m := range g.meshes {
		if m.Body == nil {
			continue
		}
		t := m.Body.Transform()
		m.Position = t.Position
		m.Rotation = t.Rotation
		synced++
	}
	return synced
}
