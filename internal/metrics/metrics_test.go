package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManagerRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewManager(reg)
	if m == nil {
		t.Fatal("expected manager")
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	if len(families) == 0 {
		t.Error("expected registered metric families")
	}
}

func TestGestureEventCounter(t *testing.T) {
	before := testutil.ToFloat64(globalManager.gestureEvents.WithLabelValues("wave"))

	RecordGestureEvent("wave")
	RecordGestureEvent("wave")
	RecordGestureEvent("palm_up")

	got := testutil.ToFloat64(globalManager.gestureEvents.WithLabelValues("wave"))
	if got != before+2 {
		t.Errorf("expected wave counter +2, got %f -> %f", before, got)
	}
}

func TestHandPresentGauge(t *testing.T) {
	SetHandPresent(true)
	if got := testutil.ToFloat64(globalManager.handPresent); got != 1 {
		t.Errorf("expected 1, got %f", got)
	}
	SetHandPresent(false)
	if got := testutil.ToFloat64(globalManager.handPresent); got != 0 {
		t.Errorf("expected 0, got %f", got)
	}
}

func TestRegistryServesProcessMetricsOnly(t *testing.T) {
	RecordFrameProcessed()

	families, err := Registry().Gather()
	if err != nil {
		t.Fatalf("Gather: %v", err)
	}
	for _, f := range families {
		if name := f.GetName(); len(name) < len(namespace) || name[:len(namespace)] != namespace {
			t.Errorf("unexpected metric family %q outside the %s namespace", name, namespace)
		}
	}
}
