// Package money holds the amount type and the deposit/balance arithmetic used by the
// appointment lifecycle. Amounts are whole-unit VND backed by decimal.Decimal.
package money

import (
	"database/sql/driver"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrNegativeAmount   = errors.New("amount must not be negative")
	ErrDepositExceeds   = errors.New("deposit exceeds total amount")
	ErrDiscountExceeds  = errors.New("discount exceeds gross amount")
	ErrInvalidQuantity  = errors.New("quantity must be at least 1")
	ErrInvalidDepositRt = errors.New("deposit rate must be between 0 and 1")
)

// Amount is an immutable money value.
type Amount struct {
	d decimal.Decimal
}

var Zero = Amount{d: decimal.Zero}

func New(v int64) Amount {
	return Amount{d: decimal.NewFromInt(v)}
}

func FromDecimal(d decimal.Decimal) Amount {
	return Amount{d: d}
}

func Parse(s string) (Amount, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Zero, fmt.Errorf("parse amount %q: %w", s, err)
	}
	return Amount{d: d}, nil
}

func (a Amount) Decimal() decimal.Decimal { return a.d }
func (a Amount) Add(b Amount) Amount      { return Amount{d: a.d.Add(b.d)} }
func (a Amount) Sub(b Amount) Amount      { return Amount{d: a.d.Sub(b.d)} }
func (a Amount) MulInt(n int) Amount      { return Amount{d: a.d.Mul(decimal.NewFromInt(int64(n)))} }
func (a Amount) Cmp(b Amount) int         { return a.d.Cmp(b.d) }
func (a Amount) Equal(b Amount) bool      { return a.d.Equal(b.d) }
func (a Amount) IsZero() bool             { return a.d.IsZero() }
func (a Amount) IsPositive() bool         { return a.d.IsPositive() }
func (a Amount) IsNegative() bool         { return a.d.IsNegative() }
func (a Amount) GreaterThan(b Amount) bool {
	return a.d.GreaterThan(b.d)
}

// Int64 truncates to whole currency units, which is what the gateway accepts.
func (a Amount) Int64() int64 { return a.d.IntPart() }

// IsWhole reports whether a has no minor-unit part. VND has none.
func (a Amount) IsWhole() bool { return a.d.Equal(a.d.Truncate(0)) }

func (a Amount) String() string { return a.d.StringFixed(0) }

// Percent returns a as a percentage of total, rounded to two decimals.
// A zero total yields zero.
func (a Amount) Percent(total Amount) decimal.Decimal {
	if total.IsZero() {
		return decimal.Zero
	}
	return a.d.Div(total.d).Mul(decimal.NewFromInt(100)).Round(2)
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return a.d.MarshalJSON()
}

func (a *Amount) UnmarshalJSON(b []byte) error {
	return a.d.UnmarshalJSON(b)
}

func (a Amount) Value() (driver.Value, error) {
	return a.d.Value()
}

func (a *Amount) Scan(value interface{}) error {
	return a.d.Scan(value)
}

// Line is one priced service line of a booking.
type Line struct {
	Price    Amount
	Quantity int
}

func LineTotal(l Line) (Amount, error) {
	if l.Quantity < 1 {
		return Zero, ErrInvalidQuantity
	}
	if l.Price.IsNegative() {
		return Zero, ErrNegativeAmount
	}
	return l.Price.MulInt(l.Quantity), nil
}

func Gross(lines []Line) (Amount, error) {
	sum := Zero
	for _, l := range lines {
		t, err := LineTotal(l)
		if err != nil {
			return Zero, err
		}
		sum = sum.Add(t)
	}
	return sum, nil
}

func Net(gross, discount Amount) (Amount, error) {
	if discount.IsNegative() {
		return Zero, ErrNegativeAmount
	}
	if discount.GreaterThan(gross) {
		return Zero, ErrDiscountExceeds
	}
	return gross.Sub(discount), nil
}

// DefaultDeposit takes rate of total, rounded half-even to whole units.
func DefaultDeposit(total Amount, rate decimal.Decimal) (Amount, error) {
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return Zero, ErrInvalidDepositRt
	}
	return Amount{d: total.d.Mul(rate).RoundBank(0)}, nil
}

// Breakdown is the deposit/balance split of an appointment total.
type Breakdown struct {
	Total   Amount
	Deposit Amount
}

func (b Breakdown) Validate() error {
	if b.Total.IsNegative() || b.Deposit.IsNegative() {
		return ErrNegativeAmount
	}
	if b.Deposit.GreaterThan(b.Total) {
		return ErrDepositExceeds
	}
	return nil
}

func (b Breakdown) Balance() Amount {
	return b.Total.Sub(b.Deposit)
}
