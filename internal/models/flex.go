package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Flex holds a loosely typed JSON scalar. Storefront clients send numbers
// both as JSON numbers and as strings, so values are kept as text and
// coerced by the caller.
type Flex struct {
	raw   string
	isSet bool
}

// NewFlex builds a Flex from its textual form
func NewFlex(raw string) Flex {
	return Flex{raw: raw, isSet: true}
}

func (f *Flex) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = Flex{}
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = NewFlex(s)
		return nil
	}
	*f = NewFlex(string(data))
	return nil
}

func (f Flex) MarshalJSON() ([]byte, error) {
	if !f.isSet {
		return []byte("null"), nil
	}
	return json.Marshal(f.raw)
}

// Empty reports whether the value is absent, null, or blank
func (f Flex) Empty() bool {
	return !f.isSet || strings.TrimSpace(f.raw) == ""
}

func (f Flex) String() string {
	return strings.TrimSpace(f.raw)
}

// Int parses the value as a base-10 integer
func (f Flex) Int() (int, bool) {
	if f.Empty() {
		return 0, false
	}
	n, err := strconv.Atoi(f.String())
	if err != nil {
		return 0, false
	}
	return n, true
}

// WholeNumber parses integers and integral decimals such as "3" or 3.0
func (f Flex) WholeNumber() (int, bool) {
	if n, ok := f.Int(); ok {
		return n, true
	}
	d, ok := f.Decimal()
	if !ok || !d.Equal(d.Truncate(0)) {
		return 0, false
	}
	return int(d.IntPart()), true
}

// Decimal parses the value as a decimal number
func (f Flex) Decimal() (decimal.Decimal, bool) {
	if f.Empty() {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(f.String())
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Truthy mirrors how the storefront treats a JSON value as present:
// absent, null, blank, false and zero all count as missing.
func (f Flex) Truthy() bool {
	if f.Empty() {
		return false
	}
	switch f.String() {
	case "false":
		return false
	}
	if d, ok := f.Decimal(); ok {
		return !d.IsZero()
	}
	return true
}
