package binder

import "surge/internal/symbols"

// canMerge reports whether a second declaration with flags `next` may join
// an existing binding that already carries `existing`, instead of producing
// a duplicate-identifier diagnostic. This mirrors TypeScript's declaration
// merging rules, restricted to the forms spec.md's Binder module recognizes:
// function overloads, interface re-openings, namespace/class/enum
// augmentation, and namespace-with-namespace merges.
func canMerge(existing, next symbols.Flags) bool {
	switch {
	case existing.Has(symbols.FlagFunction) && next.Has(symbols.FlagFunction):
		return true
	case existing.Has(symbols.FlagInterface) && next.Has(symbols.FlagInterface):
		return true
	case existing.Has(symbols.FlagClass) && next.Has(symbols.FlagInterface):
		return true
	case existing.Has(symbols.FlagInterface) && next.Has(symbols.FlagClass):
		return true
	case isNamespaceLike(existing) && isNamespaceLike(next):
		return true
	case existing.Has(symbols.FlagEnum) && isNamespaceLike(next):
		return true
	case isNamespaceLike(existing) && next.Has(symbols.FlagEnum):
		return true
	case existing.Has(symbols.FlagEnum) && next.Has(symbols.FlagEnum):
		// const enum and non-const enum continuations merge the same way
		// plain multi-declaration enums do; the Checker validates constness
		// consistency across the merged declaration set.
		return true
	default:
		return false
	}
}

func isNamespaceLike(f symbols.Flags) bool {
	return f.Any(symbols.FlagValueModule | symbols.FlagNamespaceModule)
}
