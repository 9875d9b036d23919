package aggregator

import "errors"

// ErrAggregationTimeout is logged when the global fan-out deadline expires
// before every source settled. It never reaches query handlers.
var ErrAggregationTimeout = errors.New("aggregation deadline exceeded")
