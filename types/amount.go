// Package types provides common types used across Keymarket.
package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/holiman/uint256"
)

// Decimals is the fixed-point scale of the ledger token.
const Decimals = 18

// Unit is one whole token expressed in base units (10^18).
var Unit = uint256.NewInt(0).Exp(uint256.NewInt(10), uint256.NewInt(Decimals))

// Amount represents an unsigned token value in base units, scaled by 10^18.
// All arithmetic is 256-bit integer-only with truncating division — no
// floating point. Arithmetic that would overflow or underflow panics, since
// every accounting path validates balances before mutating them.
type Amount struct {
	v uint256.Int
}

// Zero returns the zero Amount.
func Zero() Amount { return Amount{} }

// Wei creates an Amount from raw base units.
func Wei(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	return a
}

// Tokens creates an Amount of n whole tokens (n × 10^18 base units).
func Tokens(n uint64) Amount {
	var a Amount
	a.v.SetUint64(n)
	a.v.Mul(&a.v, Unit)
	return a
}

// FromUint256 creates an Amount from a uint256 value. The value is copied.
func FromUint256(v *uint256.Int) Amount {
	var a Amount
	a.v.Set(v)
	return a
}

// ParseAmount parses a decimal base-unit string into an Amount.
func ParseAmount(s string) (Amount, error) {
	var a Amount
	if s == "" {
		return a, nil
	}
	if err := a.v.SetFromDecimal(s); err != nil {
		return Amount{}, fmt.Errorf("types: parse amount %q: %w", s, err)
	}
	return a, nil
}

// MustParseAmount is like ParseAmount but panics on error. Use for hardcoded values.
func MustParseAmount(s string) Amount {
	a, err := ParseAmount(s)
	if err != nil {
		panic(err)
	}
	return a
}

// Sum adds a series of Amounts.
func Sum(amounts ...Amount) Amount {
	total := Zero()
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

// Arithmetic operations

// Add returns a + other. Panics on 256-bit overflow.
func (a Amount) Add(other Amount) Amount {
	var out Amount
	if _, overflow := out.v.AddOverflow(&a.v, &other.v); overflow {
		panic("types: amount addition overflow")
	}
	return out
}

// Sub returns a - other. Panics if other exceeds a.
func (a Amount) Sub(other Amount) Amount {
	var out Amount
	if _, underflow := out.v.SubOverflow(&a.v, &other.v); underflow {
		panic("types: amount subtraction underflow")
	}
	return out
}

// MulUint64 returns a × n. Panics on overflow.
func (a Amount) MulUint64(n uint64) Amount {
	var out Amount
	m := uint256.NewInt(n)
	if _, overflow := out.v.MulOverflow(&a.v, m); overflow {
		panic("types: amount multiplication overflow")
	}
	return out
}

// DivUint64 returns a / n, truncated toward zero. Panics if n is zero.
func (a Amount) DivUint64(n uint64) Amount {
	if n == 0 {
		panic("types: amount division by zero")
	}
	var out Amount
	out.v.Div(&a.v, uint256.NewInt(n))
	return out
}

// MulDiv returns a × num / den with the division truncated toward zero.
// The intermediate product is 256-bit checked. Panics if den is zero.
func (a Amount) MulDiv(num, den uint64) Amount {
	if den == 0 {
		panic("types: amount division by zero")
	}
	var out Amount
	if _, overflow := out.v.MulOverflow(&a.v, uint256.NewInt(num)); overflow {
		panic("types: amount multiplication overflow")
	}
	out.v.Div(&out.v, uint256.NewInt(den))
	return out
}

// Comparisons

// Cmp compares a and other, returning -1, 0, or 1.
func (a Amount) Cmp(other Amount) int { return a.v.Cmp(&other.v) }

// Equal reports whether a == other.
func (a Amount) Equal(other Amount) bool { return a.v.Eq(&other.v) }

// Less reports whether a < other.
func (a Amount) Less(other Amount) bool { return a.v.Lt(&other.v) }

// IsZero reports whether the Amount is zero.
func (a Amount) IsZero() bool { return a.v.IsZero() }

// IsPositive reports whether the Amount is greater than zero.
func (a Amount) IsPositive() bool { return !a.v.IsZero() }

// Uint256 returns a copy of the underlying 256-bit value.
func (a Amount) Uint256() *uint256.Int {
	return new(uint256.Int).Set(&a.v)
}

// String returns the decimal base-unit representation.
func (a Amount) String() string { return a.v.Dec() }

// Decimal returns the whole-token decimal representation, e.g. "1.05" for
// 1050000000000000000 base units. Trailing fractional zeros are trimmed.
func (a Amount) Decimal() string {
	var whole, frac uint256.Int
	whole.Div(&a.v, Unit)
	frac.Mod(&a.v, Unit)
	if frac.IsZero() {
		return whole.Dec()
	}
	fracStr := fmt.Sprintf("%0*s", Decimals, frac.Dec())
	fracStr = strings.TrimRight(fracStr, "0")
	return whole.Dec() + "." + fracStr
}

// MarshalJSON implements json.Marshaler, encoding as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("types: unmarshal amount: %w", err)
	}
	parsed, err := ParseAmount(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Value implements driver.Valuer for database storage.
func (a Amount) Value() (driver.Value, error) {
	return a.String(), nil
}

// Scan implements sql.Scanner for database retrieval.
func (a *Amount) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*a = Zero()
		return nil
	case string:
		parsed, err := ParseAmount(v)
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case []byte:
		parsed, err := ParseAmount(string(v))
		if err != nil {
			return err
		}
		*a = parsed
		return nil
	case int64:
		if v < 0 {
			return fmt.Errorf("types: scan amount: negative value %d", v)
		}
		*a = Wei(uint64(v))
		return nil
	default:
		return fmt.Errorf("types: scan amount: unsupported type %T", src)
	}
}
