package targeting

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/physics"
)

// Poller периодически пересэмплирует цель, пока зажата левая кнопка.
// Канал C() читается тем же циклом, что и тики, поэтому блокировок нет.
type Poller struct {
	interval time.Duration
	ticker   *time.Ticker
}

// NewPoller создает остановленный поллер
func NewPoller(interval time.Duration) *Poller {
	return &Poller{interval: interval}
}

// Start запускает таймер, повторный вызов ничего не делает
func (p *Poller) Start() {
	if p.ticker != nil || p.interval <= 0 {
		return
	}
	p.ticker = time.NewTicker(p.interval)
}

// Stop останавливает таймер
func (p *Poller) Stop() {
	if p.ticker == nil {
		return
	}
	p.ticker.Stop()
	p.ticker = nil
}

// C канал срабатываний или nil, если поллер остановлен
func (p *Poller) C() <-chan time.Time {
	if p.ticker == nil {
		return nil
	}
	return p.ticker.C
}

// Running запущен ли поллер
func (p *Poller) Running() bool {
	return p.ticker != nil
}

// Interval таймер, которым управляет Pointer
type Interval interface {
	Start()
	Stop()
}

// ColliderSource возвращает боксы, по которым ищется цель
type ColliderSource func() []physics.AABB

// Pointer состояние мыши: левая кнопка задает цель, правая - вращение камеры
type Pointer struct {
	resolver  *Resolver
	projector Projector
	colliders ColliderSource
	target    *Target
	marker    *Marker
	interval  Interval

	ndc      mgl64.Vec2
	leftDown bool
	dragging bool
}

// NewPointer создает обработчик указателя
func NewPointer(resolver *Resolver, projector Projector, colliders ColliderSource, target *Target, marker *Marker, interval Interval) *Pointer {
	return &Pointer{
		resolver:  resolver,
		projector: projector,
		colliders: colliders,
		target:    target,
		marker:    marker,
		interval:  interval,
	}
}

// Move обновляет позицию указателя
func (p *Pointer) Move(ndc mgl64.Vec2) {
	p.ndc = ndc
}

// LeftDown выбирает цель и запускает пересэмплирование
func (p *Pointer) LeftDown(ndc mgl64.Vec2) {
	p.ndc = ndc
	p.leftDown = true
	p.resolve()
	p.marker.Hide()
	p.interval.Start()
}

// LeftUp останавливает пересэмплирование, фиксирует цель и показывает маркер
func (p *Pointer) LeftUp(ndc mgl64.Vec2) {
	p.ndc = ndc
	p.leftDown = false
	p.interval.Stop()
	p.resolve()

	if point, ok := p.target.Point(); ok {
		p.marker.Show(point)
	}
}

// RightDown начало перетаскивания камеры
func (p *Pointer) RightDown() {
	p.dragging = true
}

// RightUp конец перетаскивания камеры
func (p *Pointer) RightUp() {
	p.dragging = false
}

// Poll срабатывание таймера: цель следует за указателем
func (p *Pointer) Poll() {
	if !p.leftDown {
		return
	}
	p.resolve()
}

// Close останавливает таймер при разрушении сцены
func (p *Pointer) Close() {
	p.leftDown = false
	p.interval.Stop()
}

// Dragging зажата ли правая кнопка
func (p *Pointer) Dragging() bool {
	return p.dragging
}

// Holding зажата ли левая кнопка
func (p *Pointer) Holding() bool {
	return p.leftDown
}

func (p *Pointer) resolve() {
	var colliders []physics.AABB
	if p.colliders != nil {
		colliders = p.colliders()
	}

	point, ok := p.resolver.Resolve(p.ndc, p.projector, colliders)
	if !ok {
		p.target.Clear()
		return
	}
	p.target.Set(point)
}
