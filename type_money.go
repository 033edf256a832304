package settle

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Money is an amount in minor units (cents for EUR) of a currency.
type Money struct {
	minor int64
	cur   string
}

// M returns the Money worth minor units of currency.
func M(minor int64, currency string) Money { return Money{minor: minor, cur: currency} }

// Zero returns the zero amount of currency.
func Zero(currency string) Money { return Money{cur: currency} }

// ValidateCurrency returns ErrUnsupportedCurrency unless code is in the ISO-4217 catalog.
func ValidateCurrency(code string) error {
	if code == "" || money.GetCurrency(code) == nil {
		return fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return nil
}

// Fraction returns the number of minor-unit digits of a currency (2 for EUR, 0 for JPY).
func Fraction(code string) (int, error) {
	c := money.GetCurrency(code)
	if c == nil {
		return 0, fmt.Errorf("%w: %q", ErrUnsupportedCurrency, code)
	}
	return c.Fraction, nil
}

// ParseMoney reads a major-unit decimal string ("12.34") into minor units.
// Values with more digits than the currency allows, or out of the int64
// range once in minor units, are rejected.
func ParseMoney(value, currency string) (Money, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, value)
	}
	return FromMajor(d, currency)
}

// FromMajor converts a major-unit decimal into minor units of currency.
func FromMajor(d decimal.Decimal, currency string) (Money, error) {
	frac, err := Fraction(currency)
	if err != nil {
		return Money{}, err
	}
	shifted := d.Shift(int32(frac))
	if !shifted.IsInteger() {
		return Money{}, fmt.Errorf("%w: %s has more than %d decimals in %s", ErrInvalidAmount, d, frac, currency)
	}
	if shifted.LessThan(minMinor) || shifted.GreaterThan(maxMinor) {
		return Money{}, fmt.Errorf("%w: %s %s is out of range", ErrInvalidAmount, d, currency)
	}
	return M(shifted.IntPart(), currency), nil
}

var (
	minMinor = decimal.NewFromInt(math.MinInt64)
	maxMinor = decimal.NewFromInt(math.MaxInt64)
)

// addMinor returns a+b, or false when the sum does not fit in an int64.
func addMinor(a, b int64) (int64, bool) {
	s := a + b
	if (b > 0 && s < a) || (b < 0 && s > a) {
		return 0, false
	}
	return s, true
}

// Major returns the amount in major units, exact.
func (m Money) Major() decimal.Decimal {
	c := money.GetCurrency(m.cur)
	if c == nil {
		return decimal.NewFromInt(m.minor)
	}
	return decimal.New(m.minor, -int32(c.Fraction))
}

// String formats the amount the way the currency is displayed ("€12.34").
func (m Money) String() string {
	if money.GetCurrency(m.cur) == nil {
		return fmt.Sprintf("%d %s", m.minor, m.cur)
	}
	return money.New(m.minor, m.cur).Display()
}

// SignedString returns the string with an explicit sign; zero is "-".
func (m Money) SignedString() string {
	switch {
	case m.minor == 0:
		return "-"
	case m.minor > 0:
		return "+" + m.String()
	default:
		return m.String()
	}
}

func (m Money) Minor() int64       { return m.minor }
func (m Money) Currency() string   { return m.cur }
func (m Money) IsZero() bool       { return m.minor == 0 }
func (m Money) IsPositive() bool   { return m.minor > 0 }
func (m Money) IsNegative() bool   { return m.minor < 0 }
func (m Money) Neg() Money         { return Money{minor: -m.minor, cur: m.cur} }
func (m Money) Equal(n Money) bool { return m.minor == n.minor && m.cur == n.cur }

// LessThan panics when m and n are in different currencies.
func (m Money) LessThan(n Money) bool {
	cur(m, n)
	return m.minor < n.minor
}

// GreaterThan panics when m and n are in different currencies.
func (m Money) GreaterThan(n Money) bool {
	cur(m, n)
	return m.minor > n.minor
}

// binary operators.
func (m Money) Add(n Money) Money { return Money{minor: m.minor + n.minor, cur: cur(m, n)} }
func (m Money) Sub(n Money) Money { return Money{minor: m.minor - n.minor, cur: cur(m, n)} }
func (m Money) Min(n Money) Money { return Money{minor: min(m.minor, n.minor), cur: cur(m, n)} }

// makes the "" currency totally weak.
func cur(a, b Money) string {
	if a.cur == "" {
		return b.cur
	}
	if b.cur == "" {
		return a.cur
	}
	if a.cur != b.cur {
		panic("currency mismatch " + a.cur + "!=" + b.cur)
	}
	return a.cur
}

// MarshalJSON writes money as {"currency":..., "amount": <major units>}.
func (m Money) MarshalJSON() ([]byte, error) {
	var w jsonObjectWriter
	w.Optional("currency", m.cur)
	w.Append("amount", m.Major())
	return w.MarshalJSON()
}

// UnmarshalJSON reads money written by MarshalJSON.
func (m *Money) UnmarshalJSON(data []byte) error {
	var a amountCmd
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	v, err := a.Money()
	if err != nil {
		return err
	}
	*m = v
	return nil
}
