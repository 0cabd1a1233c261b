package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/track"
)

func newTestApp(t *testing.T, cfg Config) (*App, *store.Store) {
	t.Helper()

	s, err := store.New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("store.New: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	cfg.Store = s
	if cfg.Camera == nil {
		cfg.Camera = capture.NewMockCamera(nil, true)
	}
	if cfg.Tracker == nil {
		cfg.Tracker = track.NewMockTracker()
	}
	if cfg.Settings == (gesture.Settings{}) {
		cfg.Settings = gesture.DefaultSettings()
	}
	return New(cfg), s
}

func TestApp_EnableStartsFreshSession(t *testing.T) {
	a, _ := newTestApp(t, Config{})

	if a.IsEnabled() {
		t.Fatal("detection should start disabled")
	}

	a.SetEnabled(true)
	if !a.IsEnabled() {
		t.Fatal("SetEnabled(true) did not enable")
	}

	// Staged settings apply at the next session start, not mid-run.
	updated := gesture.DefaultSettings()
	updated.Sensitivity = 0.5
	a.UpdateSettings(updated)
	if got := a.Settings().Sensitivity; got != 1.0 {
		t.Errorf("running session sensitivity = %f, want 1.0", got)
	}

	a.SetEnabled(false)
	a.SetEnabled(true)
	if got := a.Settings().Sensitivity; got != 0.5 {
		t.Errorf("new session sensitivity = %f, want 0.5", got)
	}
}

func TestApp_HandleEventPersistsAndNotifies(t *testing.T) {
	a, s := newTestApp(t, Config{})

	got := make(chan store.EventRecord, 1)
	a.Subscribe(func(rec store.EventRecord) { got <- rec })

	event := &gesture.Event{
		ID:         "evt-1",
		Kind:       gesture.KindWave,
		KindName:   "wave",
		Confidence: 0.88,
		Timestamp:  time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	a.handleEvent(context.Background(), event)

	var rec store.EventRecord
	select {
	case rec = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("subscriber not notified")
	}

	if rec.Kind != "wave" || rec.Confidence != 0.88 {
		t.Errorf("notified record = %+v", rec)
	}

	stored, err := s.Events().GetByID("evt-1")
	if err != nil {
		t.Fatalf("event not persisted: %v", err)
	}
	if stored.Kind != "wave" {
		t.Errorf("stored kind = %q", stored.Kind)
	}
}

func TestApp_PipelineDetectsPalmUp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	// Two different frames looping keeps the motion gate open.
	black := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer black.Close()
	white := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer white.Close()
	white.SetTo(gocv.NewScalar(255, 255, 255, 0))

	camera := capture.NewMockCamera([]*gocv.Mat{&black, &white}, true)
	tracker := track.NewMockTracker()
	hand := track.OpenPalmLandmarks()
	tracker.SetHand(&hand)

	a, _ := newTestApp(t, Config{
		Camera:    camera,
		Tracker:   tracker,
		ActiveFPS: 15,
		IdleFPS:   5,
	})

	events := make(chan store.EventRecord, 4)
	a.Subscribe(func(rec store.EventRecord) { events <- rec })

	a.SetEnabled(true)
	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer a.Stop()

	// A steady open palm facing the camera emits a palm-up event once
	// the hold duration elapses.
	select {
	case rec := <-events:
		if rec.Kind != "palm_up" {
			t.Errorf("detected %q, want palm_up", rec.Kind)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("no gesture event within 10s")
	}
}

func TestApp_StartIdempotent(t *testing.T) {
	a, _ := newTestApp(t, Config{})

	if err := a.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if err := a.Start(); err != nil {
		t.Errorf("second Start: %v", err)
	}
	a.Stop()
}
