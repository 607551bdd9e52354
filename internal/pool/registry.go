package pool

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"

	"swapCore/internal/amount"
	"swapCore/internal/model"
	"swapCore/internal/pricing"
)

// Registry owns every pool in the process, keyed by asset pair. No other
// component constructs State values or touches reserves directly.
type Registry struct {
	mu     sync.RWMutex
	pools  map[string]*State
	logger *zap.Logger
}

// NewRegistry builds an empty registry.
func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		pools:  make(map[string]*State),
		logger: logger,
	}
}

// PairKey derives the registry key for an asset pair. Key order follows the
// pair as given: A is always the first asset named at initialize time.
func PairKey(assetA, assetB string) string {
	return assetA + "/" + assetB
}

// InitParams are the seed parameters for a new pool.
type InitParams struct {
	AssetA   string
	AssetB   string
	ReserveA amount.Amount
	ReserveB amount.Amount
	FeeBps   uint32
	Strategy pricing.Kind
}

// Initialize creates and seeds a pool for the pair. Fails with
// ErrAlreadyInitialized when the pair already has a pool.
func (r *Registry) Initialize(params InitParams) (*State, error) {
	assetA := strings.TrimSpace(params.AssetA)
	assetB := strings.TrimSpace(params.AssetB)
	if assetA == "" || assetB == "" {
		return nil, fmt.Errorf("%w: asset identifiers are required", ErrInvalidReserves)
	}
	if assetA == assetB {
		return nil, fmt.Errorf("%w: identical assets %q", ErrInvalidReserves, assetA)
	}

	pair := PairKey(assetA, assetB)

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.pools[pair]; exists {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyInitialized, pair)
	}

	state := newState(assetA, assetB, pair)
	if err := state.Initialize(params.ReserveA, params.ReserveB, params.FeeBps, params.Strategy); err != nil {
		return nil, err
	}

	r.pools[pair] = state
	r.logger.Info("pool initialized",
		zap.String("pair", pair),
		zap.String("reserve_a", params.ReserveA.String()),
		zap.String("reserve_b", params.ReserveB.String()),
		zap.Uint32("fee_bps", params.FeeBps),
		zap.String("strategy", string(params.Strategy)),
	)
	return state, nil
}

// Get returns the pool for a pair key.
func (r *Registry) Get(pair string) (*State, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	state, ok := r.pools[pair]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPoolNotFound, pair)
	}
	return state, nil
}

// List returns snapshots of every pool, ordered by pair key.
func (r *Registry) List() []model.PoolInfo {
	r.mu.RLock()
	states := make([]*State, 0, len(r.pools))
	for _, state := range r.pools {
		states = append(states, state)
	}
	r.mu.RUnlock()

	infos := make([]model.PoolInfo, 0, len(states))
	for _, state := range states {
		infos = append(infos, state.Info())
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Pair < infos[j].Pair })
	return infos
}

// Restore rebuilds pools from stored snapshots, skipping entries that fail
// validation so one bad record does not block startup.
func (r *Registry) Restore(infos []model.PoolInfo) error {
	for _, info := range infos {
		kind, err := pricing.ParseKind(info.Strategy)
		if err != nil {
			r.logger.Warn("skip snapshot entry", zap.String("pair", info.Pair), zap.Error(err))
			continue
		}
		if info.ReserveA.IsZero() || info.ReserveB.IsZero() {
			// Depletion is terminal; a drained pool is not restored.
			r.logger.Warn("skip depleted snapshot entry", zap.String("pair", info.Pair))
			continue
		}
		_, err = r.Initialize(InitParams{
			AssetA:   info.AssetA,
			AssetB:   info.AssetB,
			ReserveA: info.ReserveA,
			ReserveB: info.ReserveB,
			FeeBps:   info.FeeBps,
			Strategy: kind,
		})
		if err != nil {
			return fmt.Errorf("restore %s: %w", info.Pair, err)
		}
	}
	return nil
}
