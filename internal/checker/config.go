package checker

// Config is CheckerConfig from spec.md §4.3: the strictness flags the
// assignability engine and flow analysis consult. Field names mirror
// tsconfig.json's compilerOptions so a Config can be loaded straight out of
// internal/config's [check] TOML table (config.CheckSection).
type Config struct {
	StrictNullChecks             bool
	StrictFunctionTypes          bool
	StrictBindCallApply          bool
	ExactOptionalPropertyTypes   bool
	NoUncheckedIndexedAccess     bool
	NoImplicitAny                bool
	SoundMode                    bool // rejects the `any` escape hatch outright, for an internal dialect stricter than tsc

	// RecursionDepthLimit overrides maxRelationDepth when nonzero (0 keeps
	// the built-in default), letting a manifest loosen or tighten the
	// assignability fuel guard for pathologically deep structural types.
	RecursionDepthLimit int
	// TypeResolutionFuel overrides maxExpansionDepth when nonzero, same
	// rationale for generic Application expansion.
	TypeResolutionFuel int
}

// recursionDepthLimit returns the effective assignability recursion bound.
func (c Config) recursionDepthLimit() int {
	if c.RecursionDepthLimit > 0 {
		return c.RecursionDepthLimit
	}
	return maxRelationDepth
}

// typeResolutionFuel returns the effective generic expansion bound.
func (c Config) typeResolutionFuel() int {
	if c.TypeResolutionFuel > 0 {
		return c.TypeResolutionFuel
	}
	return maxExpansionDepth
}

// DefaultConfig mirrors tsc's own `strict: true` preset, which is the only
// mode this checker models (spec.md excludes sloppy-mode JS).
func DefaultConfig() Config {
	return Config{
		StrictNullChecks:           true,
		StrictFunctionTypes:        true,
		StrictBindCallApply:        true,
		ExactOptionalPropertyTypes: false,
		NoUncheckedIndexedAccess:   false,
		NoImplicitAny:              true,
	}
}

// bits packs the subset of Config that participates in RelationCache keys
// (spec.md §4.2's "tuple of (source_type, target_type, relation_kind,
// strict_config_bits)") so a decision cached under one configuration never
// leaks into a file checked under another.
func (c Config) bits() uint32 {
	var b uint32
	if c.StrictNullChecks {
		b |= 1 << 0
	}
	if c.StrictFunctionTypes {
		b |= 1 << 1
	}
	if c.StrictBindCallApply {
		b |= 1 << 2
	}
	if c.ExactOptionalPropertyTypes {
		b |= 1 << 3
	}
	if c.NoUncheckedIndexedAccess {
		b |= 1 << 4
	}
	if c.NoImplicitAny {
		b |= 1 << 5
	}
	if c.SoundMode {
		b |= 1 << 6
	}
	return b
}
