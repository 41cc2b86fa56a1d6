package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Amount is a decimal value the API may send either as a JSON number or as a
// string ("10.00"), as decimal fields usually are. null and "" decode to zero.
type Amount float64

// UnmarshalJSON accepts numbers, numeric strings and null.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*a = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("amount: %w", err)
		}
		if s == "" {
			*a = 0
			return nil
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("amount %q: %w", s, err)
		}
		*a = Amount(f)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return fmt.Errorf("amount: %w", err)
	}
	*a = Amount(f)
	return nil
}

// Float returns the amount as a float64.
func (a Amount) Float() float64 { return float64(a) }

// String formats the amount with two decimals, the way prices are displayed.
func (a Amount) String() string {
	return strconv.FormatFloat(float64(a), 'f', 2, 64)
}
