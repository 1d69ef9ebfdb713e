// Package config loads the [check] section of a project's tscheck.toml
// manifest into a checker.Config, the same file internal/project already
// reads for [modules] and [package] (see project.LoadProjectModules,
// project.LoadModuleManifest).
package config

import (
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"surge/internal/checker"
)

// CheckSection mirrors tsconfig.json's compilerOptions, scaled down to the
// strictness flags checker.Config actually consults. Field names match
// checker.Config's so DecodeFile can populate it directly via toml tags.
type CheckSection struct {
	StrictNullChecks           *bool `toml:"strict_null_checks"`
	StrictFunctionTypes        *bool `toml:"strict_function_types"`
	StrictBindCallApply        *bool `toml:"strict_bind_call_apply"`
	ExactOptionalPropertyTypes *bool `toml:"exact_optional_property_types"`
	NoUncheckedIndexedAccess   *bool `toml:"no_unchecked_indexed_access"`
	NoImplicitAny              *bool `toml:"no_implicit_any"`
	SoundMode                  *bool `toml:"sound_mode"`

	// AlwaysStrict is a shorthand: when true, every flag above except
	// sound_mode that the table leaves unset defaults to true, rather than
	// requiring every flag spelled out.
	AlwaysStrict bool `toml:"always_strict"`

	RecursionDepthLimit int `toml:"recursion_depth_limit"`
	TypeResolutionFuel  int `toml:"type_resolution_fuel"`
}

type manifest struct {
	Check CheckSection `toml:"check"`
}

// Load parses the [check] table out of a tscheck.toml manifest at path and
// returns the resulting checker.Config. A manifest with no [check] table at
// all yields checker.DefaultConfig() unchanged.
func Load(path string) (checker.Config, error) {
	var m manifest
	meta, err := toml.DecodeFile(path, &m)
	if err != nil {
		return checker.Config{}, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if !meta.IsDefined("check") {
		return checker.DefaultConfig(), nil
	}
	return m.Check.resolve(), nil
}

// LoadString parses TOML text directly, for callers such as tests that don't
// have it on disk.
func LoadString(text string) (checker.Config, error) {
	var m manifest
	meta, err := toml.Decode(text, &m)
	if err != nil {
		return checker.Config{}, fmt.Errorf("failed to parse TOML: %w", err)
	}
	if !meta.IsDefined("check") {
		return checker.DefaultConfig(), nil
	}
	return m.Check.resolve(), nil
}

func (s CheckSection) resolve() checker.Config {
	base := checker.DefaultConfig()
	cfg := checker.Config{
		StrictNullChecks:           boolOr(s.StrictNullChecks, s.AlwaysStrict || base.StrictNullChecks),
		StrictFunctionTypes:        boolOr(s.StrictFunctionTypes, s.AlwaysStrict || base.StrictFunctionTypes),
		StrictBindCallApply:        boolOr(s.StrictBindCallApply, s.AlwaysStrict || base.StrictBindCallApply),
		ExactOptionalPropertyTypes: boolOr(s.ExactOptionalPropertyTypes, s.AlwaysStrict),
		NoUncheckedIndexedAccess:   boolOr(s.NoUncheckedIndexedAccess, s.AlwaysStrict),
		NoImplicitAny:              boolOr(s.NoImplicitAny, s.AlwaysStrict || base.NoImplicitAny),
		SoundMode:                  boolOr(s.SoundMode, false),
		RecursionDepthLimit:        s.RecursionDepthLimit,
		TypeResolutionFuel:         s.TypeResolutionFuel,
	}
	return cfg
}

func boolOr(p *bool, fallback bool) bool {
	if p != nil {
		return *p
	}
	return fallback
}

// String renders a Config back as the [check] TOML table it would have come
// from, for `tscore init`-style scaffolding or `--dump-config` diagnostics.
func String(cfg checker.Config) string {
	var b strings.Builder
	b.WriteString("[check]\n")
	fmt.Fprintf(&b, "strict_null_checks = %t\n", cfg.StrictNullChecks)
	fmt.Fprintf(&b, "strict_function_types = %t\n", cfg.StrictFunctionTypes)
	fmt.Fprintf(&b, "strict_bind_call_apply = %t\n", cfg.StrictBindCallApply)
	fmt.Fprintf(&b, "exact_optional_property_types = %t\n", cfg.ExactOptionalPropertyTypes)
	fmt.Fprintf(&b, "no_unchecked_indexed_access = %t\n", cfg.NoUncheckedIndexedAccess)
	fmt.Fprintf(&b, "no_implicit_any = %t\n", cfg.NoImplicitAny)
	fmt.Fprintf(&b, "sound_mode = %t\n", cfg.SoundMode)
	if cfg.RecursionDepthLimit > 0 {
		fmt.Fprintf(&b, "recursion_depth_limit = %d\n", cfg.RecursionDepthLimit)
	}
	if cfg.TypeResolutionFuel > 0 {
		fmt.Fprintf(&b, "type_resolution_fuel = %d\n", cfg.TypeResolutionFuel)
	}
	return b.String()
}
