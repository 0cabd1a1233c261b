package trigger

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/gesture"
)

type fakeTrigger struct {
	name  string
	err   error
	fired int
	last  *gesture.Event
}

func (f *fakeTrigger) Name() string { return f.name }

func (f *fakeTrigger) Fire(_ context.Context, ev *gesture.Event) error {
	f.fired++
	f.last = ev
	return f.err
}

func waveEvent() *gesture.Event {
	return &gesture.Event{
		ID:         "test-id",
		Kind:       gesture.KindWave,
		KindName:   "wave",
		Confidence: 0.9,
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
}

type funcTrigger struct {
	name string
	fn   func() error
}

func (f *funcTrigger) Name() string { return f.name }

func (f *funcTrigger) Fire(_ context.Context, _ *gesture.Event) error { return f.fn() }

func TestChain_RunsStepsInOrder(t *testing.T) {
	var order []string
	step := func(name string) Trigger {
		return &funcTrigger{name: name, fn: func() error {
			order = append(order, name)
			return nil
		}}
	}

	c := NewChain(step("screenshot"), step("assistant"))
	if c.Name() != "screenshot+assistant" {
		t.Errorf("Name() = %q, want screenshot+assistant", c.Name())
	}

	if err := c.Fire(context.Background(), waveEvent()); err != nil {
		t.Fatalf("Fire: %v", err)
	}
	if len(order) != 2 || order[0] != "screenshot" || order[1] != "assistant" {
		t.Errorf("execution order = %v, want [screenshot assistant]", order)
	}
}

func TestChain_StopsAtFirstFailure(t *testing.T) {
	boom := errors.New("boom")
	second := &fakeTrigger{name: "second"}
	c := NewChain(&fakeTrigger{name: "first", err: boom}, second)

	err := c.Fire(context.Background(), waveEvent())
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if !strings.Contains(err.Error(), "first") {
		t.Errorf("error does not name the failing step: %v", err)
	}
	if second.fired != 0 {
		t.Error("later step ran after an earlier failure")
	}
}

func TestDispatcher_DispatchesChain(t *testing.T) {
	d := NewDispatcher(time.Second)
	shot := &fakeTrigger{name: "screenshot"}
	ask := &fakeTrigger{name: "assistant"}
	d.Bind(gesture.KindPalmUp, NewChain(shot, ask))

	ev := waveEvent()
	ev.Kind = gesture.KindPalmUp
	ev.KindName = "palm_up"

	name, err := d.Dispatch(context.Background(), ev)
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if name != "screenshot+assistant" {
		t.Errorf("name = %q, want screenshot+assistant", name)
	}
	if shot.fired != 1 || ask.fired != 1 {
		t.Errorf("fired shot=%d ask=%d, want 1/1", shot.fired, ask.fired)
	}
}

func TestDispatcher_RoutesByKind(t *testing.T) {
	d := NewDispatcher(time.Second)
	wave := &fakeTrigger{name: "wave-action"}
	palm := &fakeTrigger{name: "palm-action"}
	d.Bind(gesture.KindWave, wave)
	d.Bind(gesture.KindPalmUp, palm)

	name, err := d.Dispatch(context.Background(), waveEvent())
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if name != "wave-action" {
		t.Errorf("name = %q, want wave-action", name)
	}
	if wave.fired != 1 || palm.fired != 0 {
		t.Errorf("fired wave=%d palm=%d, want 1/0", wave.fired, palm.fired)
	}
	if wave.last.Confidence != 0.9 {
		t.Errorf("event not passed through: %+v", wave.last)
	}
}

func TestDispatcher_UnboundKindIsNoop(t *testing.T) {
	d := NewDispatcher(time.Second)

	name, err := d.Dispatch(context.Background(), waveEvent())
	if err != nil {
		t.Errorf("Dispatch unbound: %v", err)
	}
	if name != "" {
		t.Errorf("name = %q, want empty", name)
	}
}

func TestDispatcher_PropagatesFailure(t *testing.T) {
	d := NewDispatcher(time.Second)
	boom := errors.New("boom")
	d.Bind(gesture.KindWave, &fakeTrigger{name: "failing", err: boom})

	name, err := d.Dispatch(context.Background(), waveEvent())
	if !errors.Is(err, boom) {
		t.Errorf("err = %v, want boom", err)
	}
	if name != "failing" {
		t.Errorf("name = %q, want failing", name)
	}
}

func TestDispatcher_Unbind(t *testing.T) {
	d := NewDispatcher(time.Second)
	ft := &fakeTrigger{name: "once"}
	d.Bind(gesture.KindWave, ft)
	d.Bind(gesture.KindWave, nil)

	if _, err := d.Dispatch(context.Background(), waveEvent()); err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if ft.fired != 0 {
		t.Error("unbound trigger still fired")
	}
}

func TestRunCommand(t *testing.T) {
	out, err := runCommand(context.Background(), "echo", "hello")
	if err != nil {
		t.Fatalf("runCommand: %v", err)
	}
	if got := strings.TrimSpace(string(out)); got != "hello" {
		t.Errorf("stdout = %q, want hello", got)
	}
}

func TestRunCommand_Timeout(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := runCommand(ctx, "sleep", "5")
	if err == nil || !strings.Contains(err.Error(), "timed out") {
		t.Errorf("expected timeout error, got %v", err)
	}
}
