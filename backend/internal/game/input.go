package game

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-gl/mathgl/mgl64"

	"player-controller/backend/internal/camera"
	"player-controller/backend/internal/movement"
)

// InputKind тип события ввода
type InputKind string

const (
	InputKeyDown   InputKind = "key_down"
	InputKeyUp     InputKind = "key_up"
	InputMouseDown InputKind = "mouse_down"
	InputMouseUp   InputKind = "mouse_up"
	InputMouseMove InputKind = "mouse_move"
	InputWheel     InputKind = "wheel"
)

// Кнопки мыши, как в DOM MouseEvent.button
const (
	ButtonLeft  = 0
	ButtonRight = 2
)

// InputEvent событие клавиатуры или мыши от клиента
type InputEvent struct {
	Kind   InputKind
	Key    string     // значение KeyboardEvent.key
	Button int        // кнопка мыши
	NDC    mgl64.Vec2 // позиция указателя в нормализованных координатах
	DX, DY float64    // смещение мыши в пикселях
	DeltaY float64    // прокрутка колеса
	At     time.Time  // время события; нулевое - время обработки
}

// jumpKey клавиша прыжка
const jumpKey = " "

func movementKey(key string) (movement.Direction, bool) {
	switch strings.ToLower(key) {
	case "w":
		return movement.Forward, true
	case "s":
		return movement.Back, true
	case "a":
		return movement.Left, true
	case "d":
		return movement.Right, true
	}
	return 0, false
}

func arrowKey(key string) (camera.Arrow, bool) {
	switch key {
	case "ArrowUp":
		return camera.ArrowUp, true
	case "ArrowDown":
		return camera.ArrowDown, true
	case "ArrowLeft":
		return camera.ArrowLeft, true
	case "ArrowRight":
		return camera.ArrowRight, true
	}
	return 0, false
}

// HandleInput раскладывает событие по контроллерам. Вызывается только из цикла кадров.
func (s *Session) HandleInput(ev InputEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}

	switch ev.Kind {
	case InputKeyDown:
		if ev.Key == jumpKey {
			if !s.controller.RequestJump(at) {
				s.logger.Printf("[Session] %s: прыжок отклонен, кулдаун", s.ID)
			}
			return nil
		}
		if dir, ok := movementKey(ev.Key); ok {
			s.controller.Press(dir)
			return nil
		}
		if arrow, ok := arrowKey(ev.Key); ok {
			s.rig.KeyDown(arrow)
		}
		return nil

	case InputKeyUp:
		if dir, ok := movementKey(ev.Key); ok {
			s.controller.Release(dir)
			return nil
		}
		if arrow, ok := arrowKey(ev.Key); ok {
			s.rig.KeyUp(arrow)
		}
		return nil

	case InputMouseDown:
		switch ev.Button {
		case ButtonLeft:
			s.pointer.LeftDown(ev.NDC)
		case ButtonRight:
			s.pointer.RightDown()
			s.rig.RightDown()
		}
		return nil

	case InputMouseUp:
		switch ev.Button {
		case ButtonLeft:
			s.pointer.LeftUp(ev.NDC)
		case ButtonRight:
			s.pointer.RightUp()
			s.rig.RightUp()
		}
		return nil

	case InputMouseMove:
		s.pointer.Move(ev.NDC)
		s.rig.MouseMove(ev.DX, ev.DY)
		return nil

	case InputWheel:
		s.rig.Wheel(ev.DeltaY)
		return nil
	}

	return fmt.Errorf("%w: %q", ErrUnknownInput, ev.Kind)
}
