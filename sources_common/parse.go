package sources_common

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"
)

// ParseDecimal parses a numeric string as sent by providers that encode
// amounts as strings. Empty or malformed values yield 0.
func ParseDecimal(value string) float64 {
	if value == "" {
		return 0
	}
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0
	}
	f, _ := d.Float64()
	return f
}

// ParseOptionalDecimal is ParseDecimal for optional fields; nil or malformed stays nil
func ParseOptionalDecimal(value *string) *float64 {
	if value == nil || *value == "" {
		return nil
	}
	d, err := decimal.NewFromString(*value)
	if err != nil {
		return nil
	}
	f, _ := d.Float64()
	return &f
}

// FlexibleNumber decodes JSON numbers sent either bare or quoted
type FlexibleNumber struct {
	Value float64
	Valid bool
}

// UnmarshalJSON implements json.Unmarshaler
func (n *FlexibleNumber) UnmarshalJSON(data []byte) error {
	raw := string(data)
	if raw == "null" || raw == `""` {
		*n = FlexibleNumber{}
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = unquoted
	}

	d, err := decimal.NewFromString(raw)
	if err != nil {
		*n = FlexibleNumber{}
		return nil
	}
	f, _ := d.Float64()
	*n = FlexibleNumber{Value: f, Valid: true}
	return nil
}

// Ptr returns the value as an optional field
func (n FlexibleNumber) Ptr() *float64 {
	if !n.Valid {
		return nil
	}
	v := n.Value
	return &v
}

// NowMillis returns the current unix time in milliseconds
func NowMillis() int64 {
	return time.Now().UnixMilli()
}
