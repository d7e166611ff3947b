package simulation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/stranger0g/NoteBase/internal/particles"
)

func TestConfig_Options(t *testing.T) {
	opts := Config{Regime: particles.Diffusion}.Options()
	if opts.Count != particles.DiffusionCount || opts.Radius != particles.DiffusionRadius {
		t.Errorf("Expected diffusion defaults, got %+v", opts)
	}
	if opts.Bounds.Width != DefaultWidth || opts.Bounds.Height != DefaultHeight {
		t.Errorf("Expected default bounds, got %+v", opts.Bounds)
	}

	n := 5
	opts = Config{Regime: particles.Gas, Count: &n, Width: 100, Height: 80}.Options()
	if opts.Count != 5 || opts.Bounds.Width != 100 || opts.Bounds.Height != 80 {
		t.Errorf("Expected explicit values, got %+v", opts)
	}
}

func TestConfig_InitialTemperature(t *testing.T) {
	if got := (Config{Regime: particles.Liquid}).InitialTemperature(); got != 5 {
		t.Errorf("Expected 5, got %g", got)
	}
	temp := 8.0
	if got := (Config{Regime: particles.Liquid, Temperature: &temp}).InitialTemperature(); got != 8 {
		t.Errorf("Expected 8, got %g", got)
	}
}

func TestConfig_JSON(t *testing.T) {
	var cfg Config
	if err := json.Unmarshal([]byte(`{"regime":"Diffusion","compare":true,"count":20}`), &cfg); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if cfg.Regime != particles.Diffusion || !cfg.Compare || *cfg.Count != 20 {
		t.Errorf("unexpected config %+v", cfg)
	}
	if err := json.Unmarshal([]byte(`{"regime":"plasma"}`), &cfg); err == nil {
		t.Error("Expected error for unknown regime")
	}
}

func TestValidateConfig(t *testing.T) {
	neg, big := -1, MaxParticles+1
	hot, cold := 11.0, 0.5
	five := 5

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{"regime", Config{Regime: particles.Regime(42)}, "unknown regime"},
		{"negative count", Config{Regime: particles.Gas, Count: &neg}, "count"},
		{"too many", Config{Regime: particles.Gas, Count: &big}, "count"},
		{"width", Config{Regime: particles.Gas, Width: MaxDimension + 1}, "width"},
		{"height", Config{Regime: particles.Gas, Height: -3}, "height"},
		{"hot", Config{Regime: particles.Gas, Temperature: &hot}, "temperature"},
		{"cold", Config{Regime: particles.Gas, Temperature: &cold}, "temperature"},
		{"compare", Config{Regime: particles.Gas, Compare: true}, "compare"},
		{"narrow", Config{Regime: particles.Gas, Width: 5, Height: 5, Count: &five}, "diameter"},
		{"flat", Config{Regime: particles.Diffusion, Height: 2 * particles.DiffusionRadius}, "diameter"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateConfig(tt.cfg)
			var verr *ValidationError
			if !errors.As(err, &verr) {
				t.Fatalf("Expected ValidationError, got %v", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Expected error mentioning %q, got %q", tt.want, err.Error())
			}
		})
	}

	zero := 0
	for _, ok := range []Config{
		{Regime: particles.Solid},
		{Regime: particles.Diffusion, Compare: true},
		{Regime: particles.Gas, Count: &zero},
		{Regime: particles.Gas, Width: 2*particles.StatesRadius + 1, Height: 2*particles.StatesRadius + 1},
	} {
		if err := ValidateConfig(ok); err != nil {
			t.Errorf("Expected %+v to be valid, got %v", ok, err)
		}
	}
}

func TestValidationError_Error(t *testing.T) {
	e := &ValidationError{}
	if e.HasIssues() {
		t.Error("Expected no issues")
	}
	e.Add("one")
	if e.Error() != "one" {
		t.Errorf("Expected 'one', got %q", e.Error())
	}
	e.Add("two")
	if e.Error() != "simulation config errors: one; two" {
		t.Errorf("unexpected message %q", e.Error())
	}
}
