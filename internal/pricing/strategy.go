package pricing

import (
	"fmt"

	"swapCore/internal/amount"
)

// Kind identifies a pricing strategy.
type Kind string

const (
	// KindFixedPeg prices 1:1 minus the fee, assuming unlimited backing
	// liquidity on the output side.
	KindFixedPeg Kind = "fixed_peg"
	// KindConstantProduct prices against pool reserves with the x*y=k rule.
	KindConstantProduct Kind = "constant_product"
)

// ParseKind validates a strategy name.
func ParseKind(value string) (Kind, error) {
	switch Kind(value) {
	case KindFixedPeg, KindConstantProduct:
		return Kind(value), nil
	default:
		return "", fmt.Errorf("unknown strategy: %q", value)
	}
}

// Quote is the result of pricing a single swap input.
type Quote struct {
	AmountOut amount.Amount
	Fee       amount.Amount
}

// Strategy prices a swap input against pool reserves. Implementations are pure:
// they never mutate reserves and never retain references to their arguments.
type Strategy interface {
	Kind() Kind
	Quote(amountIn, reserveIn, reserveOut amount.Amount, feeBps uint32) (Quote, error)
}

// ForKind returns the strategy implementation for a kind.
func ForKind(kind Kind) (Strategy, error) {
	switch kind {
	case KindFixedPeg:
		return FixedPeg{}, nil
	case KindConstantProduct:
		return ConstantProduct{}, nil
	default:
		return nil, fmt.Errorf("unknown strategy: %q", kind)
	}
}
