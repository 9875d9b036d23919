package config

// RateLimit configures the token bucket of a single upstream source
type RateLimit struct {
	// Requests per minute, burst and concurrency. If zero, defaults are used.
	RateLimitPerMinute int `yaml:"rate_limit_per_minute"`
	Burst              int `yaml:"burst"`
	Concurrency        int `yaml:"concurrency"`
}

// Defaults applied when a source does not configure its limiter
const (
	DefaultRateLimitPerMinute = 60
	DefaultBurst              = 5
	DefaultConcurrency        = 2
)

// WithDefaults returns a copy with zero fields replaced by defaults
func (r RateLimit) WithDefaults() RateLimit {
	if r.RateLimitPerMinute <= 0 {
		r.RateLimitPerMinute = DefaultRateLimitPerMinute
	}
	if r.Burst <= 0 {
		r.Burst = DefaultBurst
	}
	if r.Concurrency <= 0 {
		r.Concurrency = DefaultConcurrency
	}
	return r
}
