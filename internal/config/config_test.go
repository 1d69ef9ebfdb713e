package config

import (
	"testing"

	"surge/internal/checker"
)

func TestLoadStringDefaults(t *testing.T) {
	cfg, err := LoadString("")
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if cfg != checker.DefaultConfig() {
		t.Fatalf("expected DefaultConfig for a manifest with no [check] table, got %+v", cfg)
	}
}

func TestLoadStringOverrides(t *testing.T) {
	cfg, err := LoadString(`
[check]
strict_null_checks = false
sound_mode = true
recursion_depth_limit = 16
`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if cfg.StrictNullChecks {
		t.Fatalf("strict_null_checks override not applied")
	}
	if !cfg.SoundMode {
		t.Fatalf("sound_mode override not applied")
	}
	if cfg.RecursionDepthLimit != 16 {
		t.Fatalf("recursion_depth_limit override not applied, got %d", cfg.RecursionDepthLimit)
	}
	// Fields not mentioned fall back to DefaultConfig, not zero values.
	if !cfg.StrictFunctionTypes {
		t.Fatalf("strict_function_types should default to true")
	}
}

func TestLoadStringAlwaysStrict(t *testing.T) {
	cfg, err := LoadString(`
[check]
always_strict = true
`)
	if err != nil {
		t.Fatalf("LoadString: %v", err)
	}
	if !cfg.ExactOptionalPropertyTypes || !cfg.NoUncheckedIndexedAccess {
		t.Fatalf("always_strict should turn on exact_optional_property_types and no_unchecked_indexed_access, got %+v", cfg)
	}
}

func TestLoadStringBadTOML(t *testing.T) {
	if _, err := LoadString("["); err == nil {
		t.Fatalf("expected a parse error for malformed TOML")
	}
}
