package cache

// FactorKey identifies one emission factor lookup.
type FactorKey struct {
	Category     string
	ActivityType string
	Region       string
}

// FactorCache caches resolved emission factors for the request hot path.
type FactorCache = Cache[FactorKey, float64]

// NewFactorCache constructs the TTL cache used by the emission factor resolver.
func NewFactorCache() FactorCache {
	return NewTTLCache[FactorKey, float64]()
}
