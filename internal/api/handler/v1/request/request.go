package request

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	errNotPositive = errors.New("must be greater than zero")
	errTooPrecise  = errors.New("must have at most two decimal places")
)

// ID is an identifier sent either as a JSON number or as a JSON string.
type ID string

func (id *ID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*id = ""
		return nil
	}

	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = ID(s)

		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return fmt.Errorf("id must be a string or a number: %w", err)
	}
	*id = ID(n.String())

	return nil
}

func (id ID) Uint() (uint, error) {
	v, err := strconv.ParseUint(strings.TrimSpace(string(id)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", string(id))
	}

	return uint(v), nil
}

func (id ID) Int64() (int64, error) {
	v, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid id %q", string(id))
	}

	return v, nil
}

func positiveDecimal(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok || !d.IsPositive() {
		return errNotPositive
	}

	return nil
}

func nonNegativeDecimal(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if !ok || d.IsNegative() {
		return errors.New("must not be negative")
	}

	return nil
}

// cents rejects amounts finer than a céntimo.
func cents(value interface{}) error {
	d, ok := value.(decimal.Decimal)
	if ok && !d.Equal(d.Truncate(2)) {
		return errTooPrecise
	}

	return nil
}
