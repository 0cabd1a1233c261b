package e2e

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/app"
	"github.com/ayusman/mudra/internal/capture"
	"github.com/ayusman/mudra/internal/gesture"
	"github.com/ayusman/mudra/internal/server"
	"github.com/ayusman/mudra/internal/store"
	"github.com/ayusman/mudra/internal/track"
	"github.com/ayusman/mudra/internal/trigger"
)

// countingTrigger records how often it fired.
type countingTrigger struct {
	fired atomic.Int64
}

func (c *countingTrigger) Name() string { return "counting" }

func (c *countingTrigger) Fire(_ context.Context, _ *gesture.Event) error {
	c.fired.Add(1)
	return nil
}

func TestE2E_PalmUpThroughHTTP(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping e2e test")
	}

	s, err := store.New(filepath.Join(t.TempDir(), "mudra.db"))
	if err != nil {
		t.Fatalf("store.New() error = %v", err)
	}
	defer s.Close()

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

	fired := &countingTrigger{}
	dispatcher := trigger.NewDispatcher(time.Second)
	dispatcher.Bind(gesture.KindPalmUp, fired)

	settings := gesture.DefaultSettings()
	settings.Wave.Enabled = false
	settings.MinHoldDuration = 300 * time.Millisecond
	settings.Cooldown = 10 * time.Second

	application := app.New(app.Config{
		Store:      s,
		Camera:     camera,
		Tracker:    tracker,
		Dispatcher: dispatcher,
		Settings:   settings,
		ActiveFPS:  30,
		IdleFPS:    10,
	})
	if err := application.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	defer application.Stop()

	srv := server.New(server.Config{Store: s, App: application})
	ts := httptest.NewServer(srv)
	defer ts.Close()
	client := ts.Client()

	t.Run("EnableDetection", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/detection",
			strings.NewReader(`{"enabled": true}`))
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("PUT /api/detection error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
		if !application.IsEnabled() {
			t.Fatal("detection not enabled")
		}
	})

	var detected store.EventRecord

	t.Run("EventAppearsInAPI", func(t *testing.T) {
		deadline := time.Now().Add(10 * time.Second)
		for time.Now().Before(deadline) {
			resp, err := client.Get(ts.URL + "/api/events?kind=palm_up")
			if err != nil {
				t.Fatalf("GET /api/events error = %v", err)
			}
			var list struct {
				Events []store.EventRecord `json:"events"`
			}
			err = json.NewDecoder(resp.Body).Decode(&list)
			resp.Body.Close()
			if err != nil {
				t.Fatalf("decode error = %v", err)
			}
			if len(list.Events) > 0 {
				detected = list.Events[0]
				break
			}
			time.Sleep(100 * time.Millisecond)
		}
		if detected.ID == "" {
			t.Fatal("no palm_up event detected within deadline")
		}
		if detected.Kind != "palm_up" {
			t.Errorf("kind = %q, want palm_up", detected.Kind)
		}
		if detected.Confidence <= 0 {
			t.Errorf("confidence = %f, want > 0", detected.Confidence)
		}
	})

	t.Run("TriggerFired", func(t *testing.T) {
		deadline := time.Now().Add(2 * time.Second)
		for fired.fired.Load() == 0 && time.Now().Before(deadline) {
			time.Sleep(50 * time.Millisecond)
		}
		if fired.fired.Load() == 0 {
			t.Error("bound trigger never fired")
		}
		if detected.TriggerName != "counting" {
			t.Errorf("trigger name = %q, want counting", detected.TriggerName)
		}
	})

	t.Run("EventFetchableByID", func(t *testing.T) {
		resp, err := client.Get(ts.URL + "/api/events/" + detected.ID)
		if err != nil {
			t.Fatalf("GET /api/events/{id} error = %v", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
		}
	})

	t.Run("DisableStopsDetection", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodPut, ts.URL+"/api/detection",
			strings.NewReader(`{"enabled": false}`))
		resp, err := client.Do(req)
		if err != nil {
			t.Fatalf("PUT /api/detection error = %v", err)
		}
		resp.Body.Close()
		if application.IsEnabled() {
			t.Error("detection still enabled")
		}
	})
}
