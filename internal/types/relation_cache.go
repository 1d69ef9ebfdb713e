package types

import "sync"

// Relation distinguishes the different structural judgements the Checker's
// assignability engine can cache against the same (source, target) pair.
type Relation uint8

const (
	RelationIdentity Relation = iota
	RelationSubtype
	RelationAssignable
	RelationComparable
)

// relationKey is the full cache key from spec.md §4.2: a tuple of
// (source_type, target_type, relation_kind, strict_config_bits). Including
// the config bits prevents a decision made under one file's strictness
// configuration from poisoning the cache for a file compiled with different
// flags.
type relationKey struct {
	Source, Target TypeID
	Relation       Relation
	ConfigBits     uint32
}

// RelationCache memoizes assignability/subtype decisions. It is shared
// across a single Checker's lifetime and guarded by an RWMutex so that, per
// spec.md §5, "writers briefly block readers" rather than requiring a full
// stop-the-world during cache population.
type RelationCache struct {
	mu   sync.RWMutex
	data map[relationKey]bool
}

// NewRelationCache creates an empty cache.
func NewRelationCache() *RelationCache {
	return &RelationCache{data: make(map[relationKey]bool)}
}

// Get returns a previously cached decision.
func (c *RelationCache) Get(source, target TypeID, rel Relation, configBits uint32) (bool, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.data[relationKey{source, target, rel, configBits}]
	return v, ok
}

// Set stores a decision.
func (c *RelationCache) Set(source, target TypeID, rel Relation, configBits uint32, result bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[relationKey{source, target, rel, configBits}] = result
}

// Len reports the number of cached decisions, mostly useful for tests and
// diagnostics.
func (c *RelationCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.data)
}
