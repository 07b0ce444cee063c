package movement

import (
	"math"
	"time"
)

// JumpArbiter принимает запрос прыжка не чаще раза в cooldown и применяет
// импульс на первом тике, когда игрок почти не движется по вертикали
type JumpArbiter struct {
	cooldown  time.Duration
	tolerance float64

	lastAccepted time.Time
	pending      bool
	impulses     int
}

// NewJumpArbiter создает арбитр
func NewJumpArbiter(cooldown time.Duration, tolerance float64) *JumpArbiter {
	return &JumpArbiter{cooldown: cooldown, tolerance: tolerance}
}

// Request регистрирует нажатие прыжка. Возвращает false, если кулдаун не истек.
func (j *JumpArbiter) Request(now time.Time) bool {
	if !j.lastAccepted.IsZero() && now.Sub(j.lastAccepted) <= j.cooldown {
		return false
	}
	j.lastAccepted = now
	j.pending = true
	return true
}

// Apply сообщает, нужно ли применить импульс при текущей вертикальной скорости
func (j *JumpArbiter) Apply(verticalSpeed float64) bool {
	if !j.pending || math.Abs(verticalSpeed) >= j.tolerance {
		return false
	}
	j.pending = false
	j.impulses++
	return true
}

// Pending ожидает ли принятый прыжок касания опоры
func (j *JumpArbiter) Pending() bool {
	return j.pending
}

// Impulses сколько импульсов прыжка применено
func (j *JumpArbiter) Impulses() int {
	return j.impulses
}
