package interfaces

type CacheStatus string

const (
	CacheStatusHit  CacheStatus = "hit"
	CacheStatusMiss CacheStatus = "miss"
	// CacheStatusBypass marks a fresh upstream round-trip requested by the caller
	CacheStatusBypass CacheStatus = "bypass"
)

func (cs CacheStatus) String() string {
	return string(cs)
}
