package config

import (
	"testing"
)

func TestLoadAppliesDefaults(t *testing.T) {
	cfg, err := Load([]byte(`{"motors": {"a": {"step_pin": 4, "dir_pin": 5}}}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Baud != 250000 {
		t.Errorf("Default baud: got %d", cfg.Baud)
	}

	m := cfg.Motors["a"]
	if m.StartDelay != 1600 || m.CruiseDelay != 500 {
		t.Errorf("Default delays: got start=%v cruise=%v", m.StartDelay, m.CruiseDelay)
	}
	if m.Backend != "gpio" {
		t.Errorf("Default backend: got %q", m.Backend)
	}
	if m.StepPin != 4 || m.DirPin != 5 {
		t.Errorf("Pins not preserved: step=%d dir=%d", m.StepPin, m.DirPin)
	}
}

func TestLoadExplicitValues(t *testing.T) {
	cfg, err := Load([]byte(`{
		"device": "/dev/ttyUSB1",
		"baud": 115200,
		"motors": {"a": {"step_pin": 1, "dir_pin": 2, "start_delay": 2000, "cruise_delay": 250, "backend": "pio", "invert_dir": true}}
	}`))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	m := cfg.Motors["a"]
	if m.StartDelay != 2000 || m.CruiseDelay != 250 || m.Backend != "pio" || !m.InvertDir {
		t.Errorf("Explicit values not preserved: %+v", m)
	}
	if cfg.Device != "/dev/ttyUSB1" || cfg.Baud != 115200 {
		t.Errorf("Top-level values not preserved: %+v", cfg)
	}
}

func TestLoadRejectsInvertedDelays(t *testing.T) {
	_, err := Load([]byte(`{"motors": {"a": {"step_pin": 1, "dir_pin": 2, "start_delay": 100, "cruise_delay": 500}}}`))
	if err == nil {
		t.Errorf("Expected error for start_delay below cruise_delay")
	}
}

func TestLoadRejectsBadJSON(t *testing.T) {
	if _, err := Load([]byte(`{motors:}`)); err == nil {
		t.Errorf("Expected error for malformed JSON")
	}
}

func TestDefaultConfigValid(t *testing.T) {
	cfg := Default()
	if len(cfg.Motors) != 1 {
		t.Fatalf("Expected one default motor, got %d", len(cfg.Motors))
	}
	for _, m := range cfg.Motors {
		if m.StartDelay < m.CruiseDelay {
			t.Errorf("Default motor has inverted delays: %+v", m)
		}
	}
}
