package pricing

import "errors"

var (
	// ErrInvalidAmount rejects non-positive swap inputs.
	ErrInvalidAmount = errors.New("amount in must be positive")
	// ErrDustAmount rejects inputs whose output floors to zero.
	ErrDustAmount = errors.New("amount in is dust: output rounds to zero")
	// ErrInsufficientLiquidity rejects swaps that would meet or drain the
	// output reserve.
	ErrInsufficientLiquidity = errors.New("insufficient liquidity")
	// ErrInvariantViolated signals that a computed swap would shrink the
	// reserve product. Floor rounding makes this unreachable; it is checked
	// anyway because the cost of a silent violation is economic loss.
	ErrInvariantViolated = errors.New("reserve product invariant violated")
)
