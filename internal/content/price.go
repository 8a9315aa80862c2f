package content

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Price keeps a product price exactly as it was submitted: a JSON number,
// a numeric string, or anything else a client sent. Readiness and strict
// validation interpret it differently, so the raw scalar is preserved.
type Price []byte

// NewPrice builds a numeric price
func NewPrice(v float64) Price {
	return Price(strconv.FormatFloat(v, 'f', -1, 64))
}

// PriceFromString builds a string-typed price, as form posts produce
func PriceFromString(s string) Price {
	b, _ := json.Marshal(s)
	return Price(b)
}

// MarshalJSON implements json.Marshaler
func (p Price) MarshalJSON() ([]byte, error) {
	if len(p) == 0 {
		return []byte("null"), nil
	}
	return []byte(p), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (p *Price) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if bytes.Equal(trimmed, []byte("null")) {
		*p = nil
		return nil
	}
	*p = append((*p)[:0:0], trimmed...)
	return nil
}

// Present reports whether the price is truthy: a non-zero number, a
// non-empty string, true, or a non-empty array/object.
func (p Price) Present() bool {
	if len(p) == 0 {
		return false
	}
	switch p[0] {
	case '"':
		var s string
		if err := json.Unmarshal(p, &s); err != nil {
			return false
		}
		return s != ""
	case 't':
		return true
	case 'f', 'n':
		return false
	case '[':
		return !bytes.Equal(bytes.Join(bytes.Fields(p), nil), []byte("[]"))
	case '{':
		return !bytes.Equal(bytes.Join(bytes.Fields(p), nil), []byte("{}"))
	}
	v, err := strconv.ParseFloat(string(p), 64)
	return err == nil && v != 0
}

// Float interprets the price as a finite number. Numeric strings are accepted.
func (p Price) Float() (float64, bool) {
	if len(p) == 0 {
		return 0, false
	}
	raw := string(p)
	if p[0] == '"' {
		var s string
		if err := json.Unmarshal(p, &s); err != nil {
			return 0, false
		}
		raw = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// String renders the price for display
func (p Price) String() string {
	if len(p) > 0 && p[0] == '"' {
		var s string
		if err := json.Unmarshal(p, &s); err == nil {
			return s
		}
	}
	return string(p)
}
