package game

import (
	"context"
	"errors"
	"io"
	"log"
	"testing"
	"time"
)

type recordingSystem struct {
	name     string
	priority int
	calls    *[]string
	err      error
	panicMsg string
}

func (r *recordingSystem) Update(tick Tick) error {
	*r.calls = append(*r.calls, r.name)
	if r.panicMsg != "" {
		panic(r.panicMsg)
	}
	return r.err
}

func (r *recordingSystem) GetName() string  { return r.name }
func (r *recordingSystem) GetPriority() int { return r.priority }

type signalSystem struct {
	ticks chan Tick
}

func (s *signalSystem) Update(tick Tick) error {
	select {
	case s.ticks <- tick:
	default:
	}
	return nil
}

func (s *signalSystem) GetName() string  { return "signal" }
func (s *signalSystem) GetPriority() int { return 0 }

type channelHandler struct {
	events chan InputEvent
}

func (h *channelHandler) HandleInput(ev InputEvent) error {
	h.events <- ev
	return nil
}

func (h *channelHandler) PollChannel() <-chan time.Time { return nil }
func (h *channelHandler) Poll(time.Time)                {}

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func TestTicker_PriorityOrder(t *testing.T) {
	var calls []string
	ticker := NewTicker(60, nil, quietLogger())
	ticker.RegisterSystem(&recordingSystem{name: "camera", priority: 40, calls: &calls})
	ticker.RegisterSystem(&recordingSystem{name: "locomotion", priority: 10, calls: &calls})
	ticker.RegisterSystem(&recordingSystem{name: "physics", priority: 20, calls: &calls})

	ticker.Step(time.Unix(1000, 0), time.Second/60)

	want := []string{"locomotion", "physics", "camera"}
	if len(calls) != len(want) {
		t.Fatalf("вызовы %v, ожидали %v", calls, want)
	}
	for i := range want {
		if calls[i] != want[i] {
			t.Fatalf("вызовы %v, ожидали %v", calls, want)
		}
	}

	names := ticker.Systems()
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("Systems() = %v, ожидали %v", names, want)
		}
	}
	if ticker.GetTickCount() != 1 {
		t.Fatalf("ожидали 1 кадр, получили %d", ticker.GetTickCount())
	}
}

func TestTicker_RecoversFromPanic(t *testing.T) {
	var calls []string
	ticker := NewTicker(60, nil, quietLogger())
	ticker.RegisterSystem(&recordingSystem{name: "broken", priority: 1, calls: &calls, panicMsg: "boom"})
	ticker.RegisterSystem(&recordingSystem{name: "failing", priority: 2, calls: &calls, err: errors.New("nope")})
	ticker.RegisterSystem(&recordingSystem{name: "after", priority: 3, calls: &calls})

	ticker.Step(time.Unix(1000, 0), time.Second/60)

	if len(calls) != 3 || calls[2] != "after" {
		t.Fatalf("паника не должна прерывать кадр: %v", calls)
	}

	broken, ok := ticker.Monitor().Metrics("broken")
	if !ok || broken.Errors != 1 {
		t.Errorf("паника считается ошибкой системы: %+v", broken)
	}
	failing, _ := ticker.Monitor().Metrics("failing")
	if failing.Errors != 1 || failing.TotalExecutions != 1 {
		t.Errorf("ошибка системы не учтена: %+v", failing)
	}
	after, _ := ticker.Monitor().Metrics("after")
	if after.Errors != 0 || after.TotalExecutions != 1 {
		t.Errorf("метрики здоровой системы: %+v", after)
	}
}

func TestTicker_EnqueueAfterStop(t *testing.T) {
	ticker := NewTicker(60, nil, quietLogger())
	ticker.Stop()

	if err := ticker.Enqueue(InputEvent{Kind: InputKeyDown, Key: "w"}); !errors.Is(err, ErrSessionClosed) {
		t.Fatalf("ожидали ErrSessionClosed, получили %v", err)
	}
}

func TestTicker_LoopDeliversInputAndFrames(t *testing.T) {
	handler := &channelHandler{events: make(chan InputEvent, 1)}
	ticker := NewTicker(120, handler, quietLogger())
	frames := &signalSystem{ticks: make(chan Tick, 1)}
	ticker.RegisterSystem(frames)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ticker.Start(ctx)
	defer ticker.Stop()

	if err := ticker.Enqueue(InputEvent{Kind: InputWheel, DeltaY: 3}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	select {
	case ev := <-handler.events:
		if ev.Kind != InputWheel || ev.DeltaY != 3 {
			t.Errorf("получили не то событие: %+v", ev)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("событие ввода не дошло до обработчика")
	}

	select {
	case tick := <-frames.ticks:
		if tick.Count == 0 {
			t.Error("номер кадра начинается с 1")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("цикл не выполнил ни одного кадра")
	}
}

func TestPerformanceMonitor_Average(t *testing.T) {
	pm := NewPerformanceMonitor(2, time.Millisecond)
	pm.initSystemMetrics("s")

	pm.recordExecution("s", 2*time.Millisecond)
	pm.recordExecution("s", 4*time.Millisecond)
	pm.recordExecution("s", 6*time.Millisecond)

	m, ok := pm.Metrics("s")
	if !ok {
		t.Fatal("метрики не найдены")
	}
	if m.AverageTime != 5*time.Millisecond {
		t.Errorf("среднее по окну из 2: %v", m.AverageTime)
	}
	if m.MaxTime != 6*time.Millisecond || m.TotalExecutions != 3 {
		t.Errorf("метрики: %+v", m)
	}
}

func TestPerformanceMonitor_Thresholds(t *testing.T) {
	// предупреждение после 1 мс, критично после 2 мс
	pm := NewPerformanceMonitor(4, time.Millisecond)
	pm.initSystemMetrics("s")

	pm.recordExecution("s", 500*time.Microsecond)
	pm.recordExecution("s", 1500*time.Microsecond)
	pm.recordExecution("s", 3*time.Millisecond)

	m, _ := pm.Metrics("s")
	if m.SlowExecutions != 2 {
		t.Errorf("медленных выполнений %d, ожидали 2", m.SlowExecutions)
	}
	if m.CriticalExecutions != 1 {
		t.Errorf("критичных выполнений %d, ожидали 1", m.CriticalExecutions)
	}

	stats := pm.GetSystemsStats()["s"].(map[string]interface{})
	if stats["critical_executions"] != uint64(1) {
		t.Errorf("сводка: %v", stats)
	}
}
