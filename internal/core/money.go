// Package core provides money and calendar-date handling utilities.
//
// This file contains the lenient amount coercion used on every record that
// enters the aggregation engine, and the two-decimal formatting used for
// computation-facing output.
package core

import (
	"encoding/json"
	"math"
	"reflect"
	"strings"

	gomoney "github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// maxAmountCents bounds coerced amounts so cents arithmetic cannot overflow
// when a few thousand records are summed.
const maxAmountCents = int64(1) << 53

// Money is a monetary value in cents. Sums and differences may be negative;
// amounts coerced through ToAmount never are.
type Money struct {
	Cents int64
}

// Cents returns a Money for the given number of cents.
func Cents(c int64) Money { return Money{Cents: c} }

func (m Money) Add(n Money) Money { return Money{Cents: m.Cents + n.Cents} }

func (m Money) Sub(n Money) Money { return Money{Cents: m.Cents - n.Cents} }

func (m Money) IsZero() bool { return m.Cents == 0 }

func (m Money) IsNegative() bool { return m.Cents < 0 }

func (m Money) GreaterThan(n Money) bool { return m.Cents > n.Cents }

// Decimal returns the value in major units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

// Float returns the value in major units for display purposes.
// Use cents for calculations.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

// String implements fmt.Stringer using FormatMoney.
func (m Money) String() string {
	return FormatMoney(m)
}

// Display renders the amount for presentation in the given ISO currency,
// e.g. "R$1.234,50" for BRL. Unknown codes fall back to the code itself.
func (m Money) Display(currency string) string {
	return gomoney.New(m.Cents, strings.ToUpper(currency)).Display()
}

// MarshalJSON encodes money as a JSON number with exactly two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(FormatMoney(m)), nil
}

// UnmarshalJSON never fails: anything that is not a finite non-negative
// number (or numeric string) decodes to zero.
func (m *Money) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(strings.NewReader(string(data)))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		*m = Money{}
		return nil
	}
	*m = ToAmount(raw)
	return nil
}

// FormatMoney renders the value with exactly two decimal digits and no
// locale-specific separators ("1234.50", "-12.30").
func FormatMoney(m Money) string {
	return m.Decimal().StringFixed(2)
}

// ToAmount coerces an arbitrary value into a non-negative amount.
//
// Finite non-negative numbers (any Go numeric kind, json.Number, numeric
// strings, decimal.Decimal, Money, or pointers to those) are rounded half-up
// to cents and clamped to 2^53 cents, so oversized amounts saturate instead
// of overflowing. Everything else, including nil, NaN, infinities, negative
// values and non-numeric types, yields zero. ToAmount never panics.
func ToAmount(value any) Money {
	d, ok := toDecimal(value)
	if !ok || d.IsNegative() {
		return Money{}
	}
	cents := d.Round(2).Shift(2)
	if cents.GreaterThan(decimal.NewFromInt(maxAmountCents)) {
		return Money{Cents: maxAmountCents}
	}
	return Money{Cents: cents.IntPart()}
}

func toDecimal(value any) (decimal.Decimal, bool) {
	switch v := value.(type) {
	case nil:
		return decimal.Zero, false
	case Money:
		return v.Decimal(), true
	case *Money:
		if v == nil {
			return decimal.Zero, false
		}
		return v.Decimal(), true
	case decimal.Decimal:
		return v, true
	case float64:
		return fromFloat(v)
	case float32:
		return fromFloat(float64(v))
	case json.Number:
		return fromString(string(v))
	case string:
		return fromString(v)
	case bool:
		return decimal.Zero, false
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return decimal.NewFromInt(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u := rv.Uint()
		if u > math.MaxInt64 {
			return decimal.Zero, false
		}
		return decimal.NewFromInt(int64(u)), true
	case reflect.Pointer:
		if rv.IsNil() {
			return decimal.Zero, false
		}
		return toDecimal(rv.Elem().Interface())
	}
	return decimal.Zero, false
}

func fromFloat(f float64) (decimal.Decimal, bool) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(f), true
}

func fromString(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}
