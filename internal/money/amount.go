// Package money provides a fixed-point currency amount with two decimal places.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Places is the number of fractional digits an Amount carries.
const Places = 2

// ErrInvalidAmount is returned when a string cannot be read as a currency value.
var ErrInvalidAmount = errors.New("invalid currency amount")

// MaxAmount is the largest magnitude Parse accepts, the range of a
// NUMERIC(14,2) column.
var MaxAmount = Amount{d: decimal.New(99999999999999, -Places)}

// Amount is a currency value with exactly two decimal places.
// The zero value is 0.00.
type Amount struct {
	d decimal.Decimal
}

// Zero is 0.00.
var Zero = Amount{}

// Parse reads a decimal string such as "1000", "1000.5" or "-12.30".
// More than two fractional digits is rejected rather than rounded, as is
// anything beyond MaxAmount.
func Parse(s string) (Amount, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}
	if d.Exponent() < -Places && !d.Equal(d.Round(Places)) {
		return Zero, fmt.Errorf("%w: %q has more than %d decimal places", ErrInvalidAmount, s, Places)
	}
	if d.Abs().GreaterThan(MaxAmount.d) {
		return Zero, fmt.Errorf("%w: %q exceeds %s", ErrInvalidAmount, s, MaxAmount)
	}
	return Amount{d: d.Round(Places)}, nil
}

// MustParse is Parse that panics; for constants and tests.
func MustParse(s string) Amount {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromCents builds an Amount from an integer number of cents.
func FromCents(cents int64) Amount {
	return Amount{d: decimal.New(cents, -Places)}
}

// FromDecimal rounds d to two places.
func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d.Round(Places)}
}

// Decimal exposes the underlying decimal value.
func (a Amount) Decimal() decimal.Decimal { return a.d }

// Cents returns the amount as an integer number of cents.
func (a Amount) Cents() int64 { return a.d.Shift(Places).IntPart() }

// Float64 is for display formatting only.
func (a Amount) Float64() float64 { return a.d.InexactFloat64() }

func (a Amount) Add(b Amount) Amount { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount { return Amount{d: a.d.Sub(b.d)} }

// Mul multiplies by an integer factor.
func (a Amount) Mul(n int64) Amount { return Amount{d: a.d.Mul(decimal.NewFromInt(n))} }

func (a Amount) Cmp(b Amount) int      { return a.d.Cmp(b.d) }
func (a Amount) Equal(b Amount) bool   { return a.d.Equal(b.d) }
func (a Amount) LessThan(b Amount) bool { return a.d.LessThan(b.d) }
func (a Amount) IsZero() bool          { return a.d.IsZero() }
func (a Amount) IsNegative() bool      { return a.d.IsNegative() }
func (a Amount) IsPositive() bool      { return a.d.IsPositive() }

// ClampZero returns a, or zero when a is negative.
func (a Amount) ClampZero() Amount {
	if a.d.IsNegative() {
		return Zero
	}
	return a
}

// Split divides a into n shares that sum exactly to a. Every share but the
// last is a/n rounded down to the cent; the last share absorbs the remainder.
func (a Amount) Split(n int) []Amount {
	if n <= 0 {
		return nil
	}
	shares := make([]Amount, n)
	for i := range shares {
		shares[i] = a.Share(n, i)
	}
	return shares
}

// Share is Split(n)[i] without building the slice. It is zero when i is
// outside [0, n).
func (a Amount) Share(n, i int) Amount {
	if n <= 0 || i < 0 || i >= n {
		return Zero
	}
	total := a.Cents()
	share := total / int64(n)
	if i < n-1 {
		return FromCents(share)
	}
	return FromCents(total - share*int64(n-1))
}

// String renders the amount with exactly two decimals, e.g. "1000.00".
func (a Amount) String() string { return a.d.StringFixed(Places) }

// Sum adds all amounts.
func Sum(amounts ...Amount) Amount {
	total := Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Max returns the larger of a and b.
func Max(a, b Amount) Amount {
	if a.Cmp(b) >= 0 {
		return a
	}
	return b
}

// MarshalText implements encoding.TextMarshaler.
func (a Amount) MarshalText() ([]byte, error) { return []byte(a.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Amount) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer; amounts are stored as decimal strings.
func (a Amount) Value() (driver.Value, error) { return a.String(), nil }

// Scan implements sql.Scanner.
func (a *Amount) Scan(src any) error {
	var d decimal.Decimal
	if err := d.Scan(src); err != nil {
		return fmt.Errorf("scan amount: %w", err)
	}
	a.d = d.Round(Places)
	return nil
}
