package scene

import (
	"player-controller/backend/internal/physics"
)

// Context общее хранилище ссылок сцены. Передается компонентам при создании,
// вместо глобальных сигналов.
type Context struct {
	world  *physics.World
	graph  *Graph
	player *Mesh
}

// NewContext создает хранилище с пустым графом
func NewContext() *Context {
	return &Context{graph: NewGraph()}
}

// SetWorld сохраняет готовый физический мир
func (c *Context) SetWorld(w *physics.World) {
	c.world = w
}

// World физический мир, если он уже загружен
func (c *Context) World() (*physics.World, bool) {
	return c.world, c.world != nil
}

// Graph граф сцены
func (c *Context) Graph() *Graph {
	return c.graph
}

// SetPlayer сохраняет объект игрока
func (c *Context) SetPlayer(m *Mesh) {
	c.player = m
}

// Player объект игрока
func (c *Context) Player() (*Mesh, bool) {
	return c.player, c.player != nil
}

// PlayerBody тело игрока, если оно уже создано
func (c *Context) PlayerBody() (*physics.Body, bool) {
	if c.player == nil || c.player.Body == nil {
		return nil, false
	}
	return c.player.Body, true
}

// ClearPlayer удаляет игрока из мира и графа
func (c *Context) ClearPlayer() error {
	if c.player == nil {
		return nil
	}
	if c.player.Body != nil && c.world != nil {
		if err := c.world.RemoveRigidBody(c.player.Body); err != nil {
			return err
		}
	}
	c.graph.Remove(c.player.ID)
	c.player = nil
	return nil
}
