package amount

import (
	"fmt"
	"math/big"
)

// BpsDenominator is the basis-point scale: 10000 bps = 100%.
const BpsDenominator = 10000

// Amount is a non-negative integer quantity in the smallest denomination of an
// asset. All arithmetic floors fractional results, so repeated operations can
// only ever round down, never up.
type Amount struct {
	v *big.Int
}

// Zero returns a zero amount.
func Zero() Amount {
	return Amount{v: new(big.Int)}
}

// FromUint64 builds an amount from an unsigned integer.
func FromUint64(value uint64) Amount {
	return Amount{v: new(big.Int).SetUint64(value)}
}

// FromBig builds an amount from a big integer. The input is copied.
func FromBig(value *big.Int) (Amount, error) {
	if value == nil {
		return Amount{}, fmt.Errorf("amount is nil")
	}
	if value.Sign() < 0 {
		return Amount{}, fmt.Errorf("amount is negative: %s", value)
	}
	return Amount{v: new(big.Int).Set(value)}, nil
}

// Parse builds an amount from a base-10 string.
func Parse(value string) (Amount, error) {
	if value == "" {
		return Amount{}, fmt.Errorf("amount is empty")
	}
	parsed, ok := new(big.Int).SetString(value, 10)
	if !ok {
		return Amount{}, fmt.Errorf("invalid amount: %s", value)
	}
	return FromBig(parsed)
}

func (a Amount) big() *big.Int {
	if a.v == nil {
		return new(big.Int)
	}
	return a.v
}

// Big returns a copy of the underlying integer.
func (a Amount) Big() *big.Int {
	return new(big.Int).Set(a.big())
}

// String renders the amount in base 10.
func (a Amount) String() string {
	return a.big().String()
}

// IsZero reports whether the amount is zero.
func (a Amount) IsZero() bool {
	return a.big().Sign() == 0
}

// Cmp compares a against other, returning -1, 0, or 1.
func (a Amount) Cmp(other Amount) int {
	return a.big().Cmp(other.big())
}

// Add returns a + other.
func (a Amount) Add(other Amount) Amount {
	return Amount{v: new(big.Int).Add(a.big(), other.big())}
}

// Sub returns a - other, failing instead of going negative.
func (a Amount) Sub(other Amount) (Amount, error) {
	if a.Cmp(other) < 0 {
		return Amount{}, fmt.Errorf("amount underflow: %s - %s", a, other)
	}
	return Amount{v: new(big.Int).Sub(a.big(), other.big())}, nil
}

// MulDivFloor returns floor(a * num / den).
func (a Amount) MulDivFloor(num, den Amount) (Amount, error) {
	if den.IsZero() {
		return Amount{}, fmt.Errorf("division by zero")
	}
	product := new(big.Int).Mul(a.big(), num.big())
	return Amount{v: product.Div(product, den.big())}, nil
}

// FeeBps returns floor(a * bps / 10000). The remainder stays with the payer.
func (a Amount) FeeBps(bps uint32) Amount {
	fee := new(big.Int).Mul(a.big(), new(big.Int).SetUint64(uint64(bps)))
	fee.Div(fee, big.NewInt(BpsDenominator))
	return Amount{v: fee}
}

// MarshalJSON renders the amount as a base-10 JSON string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(`"` + a.String() + `"`), nil
}

// UnmarshalJSON parses a base-10 JSON string.
func (a *Amount) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("amount must be a JSON string: %s", s)
	}
	parsed, err := Parse(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
