// Package config loads the motion controller configuration.
package config

import (
	"encoding/json"
	"fmt"
)

// MotorConfig describes one stepper axis.
type MotorConfig struct {
	StepPin    uint8 `json:"step_pin"`
	DirPin     uint8 `json:"dir_pin"`
	InvertStep bool  `json:"invert_step"`
	InvertDir  bool  `json:"invert_dir"`

	// Ramp delays in timer ticks.
	StartDelay  float64 `json:"start_delay"`
	CruiseDelay float64 `json:"cruise_delay"`

	// Backend selects the pulse hardware: "gpio", "pio" or "easystepper".
	Backend string `json:"backend"`
}

// Config is the top-level controller configuration.
type Config struct {
	Device string                 `json:"device"`
	Baud   int                    `json:"baud"`
	Motors map[string]MotorConfig `json:"motors"`
}

// Load parses a JSON configuration and applies defaults.
func Load(jsonData []byte) (*Config, error) {
	var cfg Config
	if err := json.Unmarshal(jsonData, &cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	applyDefaults(&cfg)

	for name, m := range cfg.Motors {
		if m.StartDelay < m.CruiseDelay {
			return nil, fmt.Errorf("config: motor %q: start_delay below cruise_delay", name)
		}
	}
	return &cfg, nil
}

// applyDefaults fills in missing configuration values.
func applyDefaults(cfg *Config) {
	if cfg.Baud == 0 {
		cfg.Baud = 250000
	}

	for name, m := range cfg.Motors {
		if m.StartDelay == 0 {
			m.StartDelay = 1600
		}
		if m.CruiseDelay == 0 {
			m.CruiseDelay = 500
		}
		if m.Backend == "" {
			m.Backend = "gpio"
		}
		cfg.Motors[name] = m
	}
}

// Default returns a single-axis configuration for bench bringup.
func Default() *Config {
	return &Config{
		Device: "/dev/ttyACM0",
		Baud:   250000,
		Motors: map[string]MotorConfig{
			"a": {
				StepPin:     2,
				DirPin:      3,
				StartDelay:  1600,
				CruiseDelay: 500,
				Backend:     "gpio",
			},
		},
	}
}
