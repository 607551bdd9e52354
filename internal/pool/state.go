package pool

import (
	"fmt"
	"math/big"
	"sync"

	"swapCore/internal/amount"
	"swapCore/internal/model"
	"swapCore/internal/pricing"
)

// Status is the pool lifecycle state.
type Status string

const (
	StatusUninitialized Status = "uninitialized"
	StatusActive        Status = "active"
	StatusDepleted      Status = "depleted"
)

// State holds the authoritative reserves and fee configuration for one asset
// pair. Reserves mutate only through Commit; everything else is read-only.
//
// Two locks serve two different jobs: swapMu is the per-pool exclusive section
// that orders whole swaps (quote through commit), mu guards field access so
// preview reads never block behind an in-flight settlement.
type State struct {
	assetA string
	assetB string
	pair   string

	swapMu sync.Mutex
	mu     sync.RWMutex

	reserveA amount.Amount
	reserveB amount.Amount
	feeBps   uint32
	strategy pricing.Strategy
	status   Status
}

func newState(assetA, assetB, pair string) *State {
	return &State{
		assetA: assetA,
		assetB: assetB,
		pair:   pair,
		status: StatusUninitialized,
	}
}

// Pair returns the registry key for this pool.
func (s *State) Pair() string {
	return s.pair
}

// AssetIn returns the asset sold in the given direction.
func (s *State) AssetIn(direction model.Direction) string {
	if direction == model.DirectionAToB {
		return s.assetA
	}
	return s.assetB
}

// AssetOut returns the asset bought in the given direction.
func (s *State) AssetOut(direction model.Direction) string {
	if direction == model.DirectionAToB {
		return s.assetB
	}
	return s.assetA
}

// Initialize seeds the pool. Fails on a second call or on invalid parameters;
// a failed call leaves the pool uninitialized.
func (s *State) Initialize(reserveA, reserveB amount.Amount, feeBps uint32, strategy pricing.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusUninitialized {
		return fmt.Errorf("%w: %s", ErrAlreadyInitialized, s.pair)
	}
	if reserveA.IsZero() || reserveB.IsZero() {
		return fmt.Errorf("%w: reserves %s/%s must be positive", ErrInvalidReserves, reserveA, reserveB)
	}
	if feeBps > amount.BpsDenominator {
		return fmt.Errorf("%w: fee %d bps out of range", ErrInvalidReserves, feeBps)
	}

	impl, err := pricing.ForKind(strategy)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidReserves, err)
	}

	s.reserveA = reserveA
	s.reserveB = reserveB
	s.feeBps = feeBps
	s.strategy = impl
	s.status = StatusActive
	return nil
}

// BeginSwap enters the pool's exclusive swap section. Callers must pair it
// with EndSwap.
func (s *State) BeginSwap() {
	s.swapMu.Lock()
}

// EndSwap leaves the exclusive swap section.
func (s *State) EndSwap() {
	s.swapMu.Unlock()
}

// Quote prices amountIn against current reserves without mutating anything.
// Safe both inside the exclusive swap section and as a standalone preview.
func (s *State) Quote(direction model.Direction, amountIn amount.Amount) (pricing.Quote, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.status == StatusUninitialized {
		return pricing.Quote{}, fmt.Errorf("%w: %s", ErrPoolUninitialized, s.pair)
	}
	if amountIn.IsZero() {
		return pricing.Quote{}, fmt.Errorf("%w: got %s", pricing.ErrInvalidAmount, amountIn)
	}

	reserveIn, reserveOut := s.orient(direction)
	if reserveOut.IsZero() {
		return pricing.Quote{}, fmt.Errorf("%w: %s side of %s is empty",
			ErrPoolDepleted, s.AssetOut(direction), s.pair)
	}

	return s.strategy.Quote(amountIn, reserveIn, reserveOut, s.feeBps)
}

// Commit applies a settled swap to the reserves. It is the only mutator after
// Initialize. Callers are expected to hold the exclusive swap section; the
// underflow check still guards against anything that slipped past it.
func (s *State) Commit(direction model.Direction, amountIn, amountOut amount.Amount) (model.PoolInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusUninitialized {
		return model.PoolInfo{}, fmt.Errorf("%w: %s", ErrPoolUninitialized, s.pair)
	}

	_, reserveOut := s.orient(direction)
	if amountOut.Cmp(reserveOut) > 0 {
		return model.PoolInfo{}, fmt.Errorf("%w: output %s exceeds reserve %s",
			ErrReserveUnderflow, amountOut, reserveOut)
	}

	newOut, err := reserveOut.Sub(amountOut)
	if err != nil {
		return model.PoolInfo{}, fmt.Errorf("%w: %v", ErrReserveUnderflow, err)
	}

	if direction == model.DirectionAToB {
		s.reserveA = s.reserveA.Add(amountIn)
		s.reserveB = newOut
	} else {
		s.reserveB = s.reserveB.Add(amountIn)
		s.reserveA = newOut
	}

	if s.reserveA.IsZero() || s.reserveB.IsZero() {
		s.status = StatusDepleted
	}

	return s.infoLocked(), nil
}

// AddLiquidity grows both reserves outside the swap path. A depleted pool
// becomes active again once both sides are positive.
func (s *State) AddLiquidity(deltaA, deltaB amount.Amount) (model.PoolInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusUninitialized {
		return model.PoolInfo{}, fmt.Errorf("%w: %s", ErrPoolUninitialized, s.pair)
	}

	s.reserveA = s.reserveA.Add(deltaA)
	s.reserveB = s.reserveB.Add(deltaB)
	if !s.reserveA.IsZero() && !s.reserveB.IsZero() {
		s.status = StatusActive
	}
	return s.infoLocked(), nil
}

// Info returns a point-in-time snapshot for callers and storage.
func (s *State) Info() model.PoolInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.infoLocked()
}

func (s *State) infoLocked() model.PoolInfo {
	info := model.PoolInfo{
		Pair:     s.pair,
		AssetA:   s.assetA,
		AssetB:   s.assetB,
		ReserveA: s.reserveA.Add(amount.Zero()),
		ReserveB: s.reserveB.Add(amount.Zero()),
		FeeBps:   s.feeBps,
		Status:   string(s.status),
	}
	if s.strategy != nil {
		info.Strategy = string(s.strategy.Kind())
	}
	if s.status != StatusUninitialized && !s.reserveA.IsZero() && !s.reserveB.IsZero() {
		info.PriceAInB = ratioString(s.reserveB, s.reserveA)
		info.PriceBInA = ratioString(s.reserveA, s.reserveB)
	}
	return info
}

func ratioString(num, den amount.Amount) string {
	return new(big.Rat).SetFrac(num.Big(), den.Big()).FloatString(8)
}

func (s *State) orient(direction model.Direction) (reserveIn, reserveOut amount.Amount) {
	if direction == model.DirectionAToB {
		return s.reserveA, s.reserveB
	}
	return s.reserveB, s.reserveA
}
