package main

import (
	"reflect"
	"testing"
	"time"

	"github.com/ayusman/mudra/internal/config"
	"github.com/ayusman/mudra/internal/trigger"
)

func TestSplitChain(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"single", "assistant", []string{"assistant"}},
		{"chain", "screenshot,assistant", []string{"screenshot", "assistant"}},
		{"spaces", " screenshot , speak ", []string{"screenshot", "speak"}},
		{"none", "none", nil},
		{"empty", "", nil},
		{"none in chain", "screenshot,none,assistant", []string{"screenshot", "assistant"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := splitChain(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("splitChain(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBindTriggers(t *testing.T) {
	t.Run("default chains bind", func(t *testing.T) {
		cfg := config.New()
		d := trigger.NewDispatcher(time.Second)
		if err := bindTriggers(d, cfg, t.TempDir()); err != nil {
			t.Fatalf("bindTriggers: %v", err)
		}
	})

	t.Run("unknown trigger name fails", func(t *testing.T) {
		cfg := config.New()
		cfg.Triggers.Wave = "confetti"
		d := trigger.NewDispatcher(time.Second)
		if err := bindTriggers(d, cfg, t.TempDir()); err == nil {
			t.Fatal("expected an error for an unknown trigger name")
		}
	})

	t.Run("none leaves the kind unbound", func(t *testing.T) {
		cfg := config.New()
		cfg.Triggers.Wave = "none"
		cfg.Triggers.PalmUp = "none"
		d := trigger.NewDispatcher(time.Second)
		if err := bindTriggers(d, cfg, t.TempDir()); err != nil {
			t.Fatalf("bindTriggers: %v", err)
		}
	})
}
