package settle

import (
	"errors"
	"math"
	"testing"
)

func TestParseMoney(t *testing.T) {
	testCases := []struct {
		value, currency string
		want            int64
		wantErr         error
	}{
		{value: "12.34", currency: "EUR", want: 1234},
		{value: "12.3", currency: "EUR", want: 1230},
		{value: "-5", currency: "USD", want: -500},
		{value: "1500", currency: "JPY", want: 1500},
		{value: "12.345", currency: "EUR", wantErr: ErrInvalidAmount},
		{value: "1.5", currency: "JPY", wantErr: ErrInvalidAmount},
		{value: "abc", currency: "EUR", wantErr: ErrInvalidAmount},
		{value: "10", currency: "QQQ", wantErr: ErrUnsupportedCurrency},
		{value: "92233720368547758.07", currency: "EUR", want: math.MaxInt64},
		{value: "-92233720368547758.08", currency: "EUR", want: math.MinInt64},
		{value: "92233720368547758.08", currency: "EUR", wantErr: ErrInvalidAmount},
		{value: "100000000000000000000", currency: "EUR", wantErr: ErrInvalidAmount},
		{value: "-1e20", currency: "JPY", wantErr: ErrInvalidAmount},
	}
	for _, tc := range testCases {
		t.Run(tc.value+" "+tc.currency, func(t *testing.T) {
			got, err := ParseMoney(tc.value, tc.currency)
			if tc.wantErr != nil {
				if !errors.Is(err, tc.wantErr) {
					t.Fatalf("ParseMoney() error = %v, want %v", err, tc.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMoney() unexpected error: %v", err)
			}
			if !got.Equal(M(tc.want, tc.currency)) {
				t.Errorf("ParseMoney() = %d, want %d", got.Minor(), tc.want)
			}
		})
	}
}

func TestMoney_Major(t *testing.T) {
	if got := M(1234, "EUR").Major().String(); got != "12.34" {
		t.Errorf("Major() = %s, want 12.34", got)
	}
	if got := M(1500, "JPY").Major().String(); got != "1500" {
		t.Errorf("Major() = %s, want 1500", got)
	}
}

func TestMoney_String(t *testing.T) {
	if got := M(1234, "USD").String(); got != "$12.34" {
		t.Errorf("String() = %q, want %q", got, "$12.34")
	}
	if got := M(0, "USD").SignedString(); got != "-" {
		t.Errorf("SignedString() = %q, want %q", got, "-")
	}
	if got := M(100, "USD").SignedString(); got != "+$1.00" {
		t.Errorf("SignedString() = %q, want %q", got, "+$1.00")
	}
}

func TestMoney_Arithmetic(t *testing.T) {
	a, b := M(1000, "EUR"), M(250, "EUR")
	if got := a.Sub(b); !got.Equal(M(750, "EUR")) {
		t.Errorf("Sub() = %v", got.Minor())
	}
	if got := Zero("EUR").Add(b); !got.Equal(b) {
		t.Errorf("Add() = %v", got.Minor())
	}
	if !b.LessThan(a) || a.LessThan(b) {
		t.Error("LessThan() is not consistent")
	}
	if got := a.Min(b); !got.Equal(b) {
		t.Errorf("Min() = %v", got.Minor())
	}
}

func TestMoney_CurrencyMismatchPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Add() of EUR and USD did not panic")
		}
	}()
	M(1, "EUR").Add(M(1, "USD"))
}

func TestValidateCurrency(t *testing.T) {
	if err := ValidateCurrency("INR"); err != nil {
		t.Errorf("ValidateCurrency(INR) = %v", err)
	}
	for _, code := range []string{"", "QQQ"} {
		if err := ValidateCurrency(code); !errors.Is(err, ErrUnsupportedCurrency) {
			t.Errorf("ValidateCurrency(%q) = %v, want ErrUnsupportedCurrency", code, err)
		}
	}
}
