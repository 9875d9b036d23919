package api

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/status-im/token-aggregator/interfaces"
)

const (
	defaultLimit   = 20
	maxLimit       = 100
	maxQueryLength = 100
)

// tokenQuery is a validated /api/tokens request
type tokenQuery struct {
	filter interfaces.FilterSpec
	sort   interfaces.SortSpec
	limit  int
	cursor string
}

// searchQuery is a validated /api/search request
type searchQuery struct {
	query  string
	limit  int
	cursor string
}

func parseTokenQuery(r *http.Request) (tokenQuery, error) {
	var q tokenQuery
	var err error

	if q.limit, err = parseLimit(r); err != nil {
		return q, err
	}

	period, err := interfaces.ParseTimePeriod(getParamLowercase(r, "period"))
	if err != nil {
		return q, err
	}
	field, err := interfaces.ParseSortField(getParamLowercase(r, "sort_by"))
	if err != nil {
		return q, err
	}
	direction, err := interfaces.ParseSortDirection(getParamLowercase(r, "sort_dir"))
	if err != nil {
		return q, err
	}

	q.filter = interfaces.FilterSpec{
		Period:   period,
		Protocol: strings.TrimSpace(r.URL.Query().Get("protocol")),
	}
	bounds := []struct {
		name string
		dst  **float64
	}{
		{"min_volume", &q.filter.MinVolume},
		{"max_volume", &q.filter.MaxVolume},
		{"min_market_cap", &q.filter.MinMarketCap},
		{"max_market_cap", &q.filter.MaxMarketCap},
	}
	for _, b := range bounds {
		if *b.dst, err = parseOptionalFloat(r, b.name); err != nil {
			return q, err
		}
	}

	if err := checkRange("volume", q.filter.MinVolume, q.filter.MaxVolume); err != nil {
		return q, err
	}
	if err := checkRange("market_cap", q.filter.MinMarketCap, q.filter.MaxMarketCap); err != nil {
		return q, err
	}

	q.sort = interfaces.SortSpec{Field: field, Direction: direction, Period: period}
	q.cursor = r.URL.Query().Get("cursor")

	return q, nil
}

func parseSearchQuery(r *http.Request) (searchQuery, error) {
	var q searchQuery
	var err error

	q.query = strings.TrimSpace(r.URL.Query().Get("q"))
	if q.query == "" {
		return q, fmt.Errorf("q is required")
	}
	if utf8.RuneCountInString(q.query) > maxQueryLength {
		return q, fmt.Errorf("q must be at most %d characters", maxQueryLength)
	}

	if q.limit, err = parseLimit(r); err != nil {
		return q, err
	}
	q.cursor = r.URL.Query().Get("cursor")

	return q, nil
}

func parseLimit(r *http.Request) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("limit"))
	if raw == "" {
		return defaultLimit, nil
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, fmt.Errorf("limit must be an integer between 1 and %d", maxLimit)
	}
	return limit, nil
}

func parseOptionalFloat(r *http.Request, name string) (*float64, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(name))
	if raw == "" {
		return nil, nil
	}

	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return nil, fmt.Errorf("%s must be a non-negative number", name)
	}
	return &v, nil
}

func checkRange(name string, lo, hi *float64) error {
	if lo != nil && hi != nil && *lo > *hi {
		return fmt.Errorf("min_%s must not exceed max_%s", name, name)
	}
	return nil
}
