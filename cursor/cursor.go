package cursor

import (
	"crypto/sha1"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"strings"

	"github.com/status-im/token-aggregator/interfaces"
)

// Cursor is the decoded form of a pagination token. It is not a trust
// boundary: the encoding is reversible and unsigned.
type Cursor struct {
	Offset      int    `json:"o"`
	Fingerprint string `json:"f,omitempty"`
}

// Encode serializes c into an opaque URL-safe token
func Encode(c Cursor) string {
	if c.Offset < 0 {
		c.Offset = 0
	}
	data, _ := json.Marshal(c)
	return base64.RawURLEncoding.EncodeToString(data)
}

// Decode parses a token produced by Encode. Malformed input yields the zero Cursor.
func Decode(raw string) Cursor {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Cursor{}
	}

	data, err := base64.RawURLEncoding.DecodeString(raw)
	if err != nil {
		return Cursor{}
	}

	var c Cursor
	if err := json.Unmarshal(data, &c); err != nil || c.Offset < 0 {
		return Cursor{}
	}
	return c
}

// Resolve returns the offset carried by raw if it was issued for fingerprint, else 0
func Resolve(raw, fingerprint string) int {
	c := Decode(raw)
	if c.Fingerprint != fingerprint {
		return 0
	}
	return c.Offset
}

type queryShape struct {
	Period       interfaces.TimePeriod    `json:"period"`
	MinVolume    *float64                 `json:"min_volume"`
	MaxVolume    *float64                 `json:"max_volume"`
	MinMarketCap *float64                 `json:"min_market_cap"`
	MaxMarketCap *float64                 `json:"max_market_cap"`
	Protocol     string                   `json:"protocol"`
	SortField    interfaces.SortField     `json:"sort_field"`
	SortDir      interfaces.SortDirection `json:"sort_dir"`
	SortPeriod   interfaces.TimePeriod    `json:"sort_period"`
}

// Fingerprint is a stable hash of a token query. Omitted fields hash the same
// as their defaults.
func Fingerprint(filter interfaces.FilterSpec, sort interfaces.SortSpec) string {
	shape := queryShape{
		Period:       orDefault(filter.Period, interfaces.Period24h),
		MinVolume:    filter.MinVolume,
		MaxVolume:    filter.MaxVolume,
		MinMarketCap: filter.MinMarketCap,
		MaxMarketCap: filter.MaxMarketCap,
		Protocol:     strings.ToLower(strings.TrimSpace(filter.Protocol)),
		SortField:    orDefault(sort.Field, interfaces.SortByVolume),
		SortDir:      orDefault(sort.Direction, interfaces.SortDesc),
		SortPeriod:   orDefault(sort.Period, interfaces.Period24h),
	}

	data, _ := json.Marshal(shape)
	return digest(data)
}

// SearchFingerprint is a stable hash of a search query
func SearchFingerprint(query string) string {
	return digest([]byte("search:" + strings.ToLower(strings.TrimSpace(query))))
}

func digest(data []byte) string {
	sum := sha1.Sum(data)
	return hex.EncodeToString(sum[:])
}

func orDefault[T ~string](v, def T) T {
	if v == "" {
		return def
	}
	return v
}
