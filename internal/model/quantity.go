package model

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Quantity is an item count that arrives as either a JSON number or a
// string-encoded integer. Values that cannot be read as an integer decode to
// 0 instead of failing, so a malformed count never poisons arithmetic.
type Quantity int

// ParseQuantity reads raw leniently. Fractional numbers are truncated.
func ParseQuantity(raw string) Quantity {
	v := strings.TrimSpace(raw)
	if v == "" {
		return 0
	}
	if n, err := strconv.Atoi(v); err == nil {
		return Quantity(n)
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	if f > math.MaxInt32 || f < math.MinInt32 {
		return 0
	}
	return Quantity(int(f))
}

// UnmarshalJSON accepts numbers, numeric strings and null.
func (q *Quantity) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*q = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*q = 0
			return nil
		}
		*q = ParseQuantity(s)
		return nil
	}
	*q = ParseQuantity(string(data))
	return nil
}

// Int returns the count as an int.
func (q Quantity) Int() int {
	return int(q)
}
