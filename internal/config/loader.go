package config

import (
	"errors"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Load builds a Config by layering sources, low to high precedence:
//  1. defaults (New())
//  2. YAML file at path, or at MUDRA_CONFIG when path is empty
//  3. environment variables with prefix MUDRA_
//
// Nested keys use double underscores in env form, e.g.
// MUDRA_DETECTION__SENSITIVITY maps to detection.sensitivity.
func Load(path string) (*Config, error) {
	base := New()

	k := koanf.New(".")

	if path == "" {
		path = os.Getenv("MUDRA_CONFIG")
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	envProvider := env.Provider("MUDRA_", ".", func(s string) string {
		s = strings.ToLower(strings.TrimPrefix(s, "MUDRA_"))
		return strings.ReplaceAll(s, "__", ".")
	})
	if err := k.Load(envProvider, nil); err != nil {
		return nil, err
	}

	cfg := *base
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return nil, err
	}

	if cfg.Addr == "" {
		return nil, errors.New("addr must not be empty")
	}
	if cfg.ActiveFPS < 1 {
		cfg.ActiveFPS = 1
	}
	if cfg.IdleFPS < 1 {
		cfg.IdleFPS = 1
	}
	if cfg.IdleFPS > cfg.ActiveFPS {
		cfg.IdleFPS = cfg.ActiveFPS
	}
	return &cfg, nil
}
