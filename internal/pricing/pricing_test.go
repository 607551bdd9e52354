package pricing

import (
	"errors"
	"math/big"
	"testing"

	"swapCore/internal/amount"
)

func amt(v uint64) amount.Amount {
	return amount.FromUint64(v)
}

func TestFixedPegQuote(t *testing.T) {
	cases := []struct {
		name    string
		in      uint64
		feeBps  uint32
		wantOut string
		wantFee string
	}{
		{"fee floors to zero", 100, 30, "100", "0"},
		{"fee charged", 10000, 30, "9970", "30"},
		{"zero fee", 500, 0, "500", "0"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			q, err := FixedPeg{}.Quote(amt(tc.in), amt(1), amt(1), tc.feeBps)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.AmountOut.String() != tc.wantOut {
				t.Fatalf("out mismatch: %s != %s", q.AmountOut, tc.wantOut)
			}
			if q.Fee.String() != tc.wantFee {
				t.Fatalf("fee mismatch: %s != %s", q.Fee, tc.wantFee)
			}
		})
	}
}

func TestFixedPegRejectsZeroInput(t *testing.T) {
	if _, err := (FixedPeg{}).Quote(amount.Zero(), amt(1), amt(1), 30); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestFixedPegFullFeeIsDust(t *testing.T) {
	if _, err := (FixedPeg{}).Quote(amt(100), amt(1), amt(1), 10000); !errors.Is(err, ErrDustAmount) {
		t.Fatalf("expected ErrDustAmount, got %v", err)
	}
}

func TestConstantProductWorkedExample(t *testing.T) {
	reserveA := amt(10000000)
	reserveB := amt(1000)

	// Tiny input against deep reserves floors to zero output.
	_, err := ConstantProduct{}.Quote(amt(100), reserveA, reserveB, 30)
	if !errors.Is(err, ErrDustAmount) {
		t.Fatalf("expected ErrDustAmount, got %v", err)
	}

	// fee = 3000, effective = 997000, out = floor(997000*1000/10997000) = 90.
	q, err := ConstantProduct{}.Quote(amt(1000000), reserveA, reserveB, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Fee.String() != "3000" {
		t.Fatalf("fee mismatch: %s", q.Fee)
	}
	if q.AmountOut.String() != "90" {
		t.Fatalf("out mismatch: %s", q.AmountOut)
	}
}

func TestConstantProductRejections(t *testing.T) {
	if _, err := (ConstantProduct{}).Quote(amount.Zero(), amt(1000), amt(1000), 30); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	// A massive input cannot drain the output side: out asymptotically
	// approaches the reserve but floor division keeps it strictly below.
	q, err := ConstantProduct{}.Quote(amt(1_000_000_000_000), amt(10), amt(10), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.AmountOut.Cmp(amt(10)) >= 0 {
		t.Fatalf("output %s should stay below reserve", q.AmountOut)
	}
}

func TestConstantProductInvariantNonDecreasing(t *testing.T) {
	cases := []struct {
		in, reserveIn, reserveOut uint64
		feeBps                    uint32
	}{
		{1000000, 10000000, 1000, 30},
		{12345, 1000000, 1000000, 30},
		{999999, 5000, 123456789, 100},
		{77, 1000, 1000, 0},
		{500000, 777777, 999999, 9999},
	}

	for _, tc := range cases {
		q, err := ConstantProduct{}.Quote(amt(tc.in), amt(tc.reserveIn), amt(tc.reserveOut), tc.feeBps)
		if err != nil {
			t.Fatalf("quote(%d, %d, %d, %d): %v", tc.in, tc.reserveIn, tc.reserveOut, tc.feeBps, err)
		}

		before := new(big.Int).Mul(amt(tc.reserveIn).Big(), amt(tc.reserveOut).Big())
		newIn := new(big.Int).Add(amt(tc.reserveIn).Big(), amt(tc.in).Big())
		newOut := new(big.Int).Sub(amt(tc.reserveOut).Big(), q.AmountOut.Big())
		after := new(big.Int).Mul(newIn, newOut)

		if after.Cmp(before) < 0 {
			t.Fatalf("invariant decreased: %s -> %s", before, after)
		}
	}
}

func TestConstantProductMonotonicInInput(t *testing.T) {
	reserveIn := amt(10000000)
	reserveOut := amt(1000000)

	prev := amount.Zero()
	for _, in := range []uint64{1000, 5000, 20000, 100000, 1000000, 5000000} {
		q, err := ConstantProduct{}.Quote(amt(in), reserveIn, reserveOut, 30)
		if err != nil {
			t.Fatalf("quote(%d): %v", in, err)
		}
		if q.AmountOut.Cmp(prev) < 0 {
			t.Fatalf("output decreased at input %d: %s < %s", in, q.AmountOut, prev)
		}
		prev = q.AmountOut
	}
}

func TestConstantProductRoundTripNeverProfits(t *testing.T) {
	reserveA := amt(10000000)
	reserveB := amt(1000000)
	in := amt(250000)

	forward, err := ConstantProduct{}.Quote(in, reserveA, reserveB, 30)
	if err != nil {
		t.Fatalf("forward quote: %v", err)
	}

	// Reserves after committing the forward swap.
	newA := reserveA.Add(in)
	newB, err := reserveB.Sub(forward.AmountOut)
	if err != nil {
		t.Fatalf("reserve update: %v", err)
	}

	back, err := ConstantProduct{}.Quote(forward.AmountOut, newB, newA, 30)
	if err != nil {
		t.Fatalf("backward quote: %v", err)
	}

	if back.AmountOut.Cmp(in) > 0 {
		t.Fatalf("round trip profited: %s > %s", back.AmountOut, in)
	}
}

func TestParseKind(t *testing.T) {
	if _, err := ParseKind("fixed_peg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseKind("constant_product"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseKind("orderbook"); err == nil {
		t.Fatalf("expected error for unknown kind")
	}
}

func TestForKind(t *testing.T) {
	s, err := ForKind(KindConstantProduct)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if s.Kind() != KindConstantProduct {
		t.Fatalf("kind mismatch: %s", s.Kind())
	}
}
