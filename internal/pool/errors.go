package pool

import "errors"

var (
	// ErrPoolNotFound means no pool exists for the pair key.
	ErrPoolNotFound = errors.New("pool not found")
	// ErrPoolUninitialized rejects quote/swap calls before Initialize.
	ErrPoolUninitialized = errors.New("pool not initialized")
	// ErrAlreadyInitialized rejects a second Initialize call.
	ErrAlreadyInitialized = errors.New("pool already initialized")
	// ErrInvalidReserves rejects non-positive seed reserves or an
	// out-of-range fee.
	ErrInvalidReserves = errors.New("invalid reserves or fee")
	// ErrPoolDepleted rejects swaps whose output side has been driven to
	// zero. Terminal for that direction.
	ErrPoolDepleted = errors.New("pool depleted")
	// ErrReserveUnderflow rejects a commit whose output exceeds the output
	// reserve at commit time.
	ErrReserveUnderflow = errors.New("reserve underflow")
)
