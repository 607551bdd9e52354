package exchange

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"swapCore/internal/amount"
	"swapCore/internal/model"
	"swapCore/internal/pool"
	"swapCore/internal/pricing"
	"swapCore/internal/settlement"
	"swapCore/internal/storage"
)

// Phase names a step of the swap state machine.
type Phase string

const (
	PhaseQuoting         Phase = "quoting"
	PhaseSlippageChecked Phase = "slippage_checked"
	PhaseSettling        Phase = "settling"
	PhaseCommitted       Phase = "committed"
)

// Config holds executor settings.
type Config struct {
	// CustodyAccount is the pool-side account settlements move value
	// through.
	CustodyAccount string
	// SettleTimeout bounds the settlement collaborator call.
	SettleTimeout time.Duration
}

// Executor runs the full swap sequence: quote, slippage check, external
// settlement, reserve commit. It is stateless; every swap works through the
// registry's pools and the settlement collaborator.
//
// The ordering rule is settle-then-commit, never the reverse: reserves only
// ever reflect transfers the collaborator has confirmed.
type Executor struct {
	registry *pool.Registry
	settler  settlement.Settler
	sinks    []storage.ReceiptSink
	cfg      Config
	logger   *zap.Logger
}

// NewExecutor builds an executor.
func NewExecutor(registry *pool.Registry, settler settlement.Settler, sinks []storage.ReceiptSink, cfg Config, logger *zap.Logger) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.CustodyAccount == "" {
		cfg.CustodyAccount = "pool-custody"
	}
	if cfg.SettleTimeout <= 0 {
		cfg.SettleTimeout = 30 * time.Second
	}
	return &Executor{
		registry: registry,
		settler:  settler,
		sinks:    sinks,
		cfg:      cfg,
		logger:   logger,
	}
}

// SwapParams is one swap request.
type SwapParams struct {
	Pair         string
	Direction    model.Direction
	Trader       string
	AmountIn     amount.Amount
	MinAmountOut amount.Amount
	// ToleranceBps widens the staleness window re-checked after
	// settlement. Zero means any adverse reserve movement aborts.
	ToleranceBps uint32
	// IdempotencyKey dedupes settlement attempts. Generated when empty.
	IdempotencyKey string
}

// Preview returns a non-binding quote from a reserve snapshot. It takes no
// lock beyond the snapshot read and must never be treated as executable.
func (e *Executor) Preview(pair string, direction model.Direction, amountIn amount.Amount) (pricing.Quote, error) {
	state, err := e.registry.Get(pair)
	if err != nil {
		return pricing.Quote{}, err
	}
	return state.Quote(direction, amountIn)
}

// Swap executes the full state machine. Cancellation via ctx is honored up to
// the moment settlement is dispatched; after that the swap runs to either
// Committed or Aborted regardless of the caller, because an in-flight
// transfer cannot be un-sent.
func (e *Executor) Swap(ctx context.Context, params SwapParams) (model.SwapReceipt, error) {
	state, err := e.registry.Get(params.Pair)
	if err != nil {
		return model.SwapReceipt{}, err
	}
	if params.Trader == "" {
		return model.SwapReceipt{}, fmt.Errorf("trader account is required")
	}

	key := params.IdempotencyKey
	if key == "" {
		key = uuid.NewString()
	}

	// Quoting. The exclusive section spans quote and slippage check, is
	// released for the settlement wait, and is re-entered for the
	// revalidate-and-commit step.
	state.BeginSwap()

	quote, err := state.Quote(params.Direction, params.AmountIn)
	if err != nil {
		state.EndSwap()
		return model.SwapReceipt{}, e.abort(state, params, PhaseQuoting, amount.Zero(), "", err)
	}

	// SlippageChecked.
	if quote.AmountOut.Cmp(params.MinAmountOut) < 0 {
		state.EndSwap()
		return model.SwapReceipt{}, e.abort(state, params, PhaseSlippageChecked, quote.AmountOut, "",
			fmt.Errorf("%w: quoted %s below minimum %s", ErrSlippageExceeded, quote.AmountOut, params.MinAmountOut))
	}

	state.EndSwap()

	// Last cancellation point: nothing external has been dispatched yet.
	if err := ctx.Err(); err != nil {
		return model.SwapReceipt{}, e.abort(state, params, PhaseSlippageChecked, quote.AmountOut, "",
			fmt.Errorf("cancelled before settlement: %w", err))
	}

	// Settling. The settlement context is detached from the caller so a
	// dispatched transfer always runs to a definite local outcome, bounded
	// only by the configured timeout.
	settleCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), e.cfg.SettleTimeout)
	defer cancel()

	result, err := e.settler.Settle(settleCtx, settlement.Request{
		IdempotencyKey: key,
		Debit: settlement.Leg{
			From:   params.Trader,
			To:     e.cfg.CustodyAccount,
			Asset:  state.AssetIn(params.Direction),
			Amount: params.AmountIn,
		},
		Credit: settlement.Leg{
			From:   e.cfg.CustodyAccount,
			To:     params.Trader,
			Asset:  state.AssetOut(params.Direction),
			Amount: quote.AmountOut,
		},
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return model.SwapReceipt{}, e.abort(state, params, PhaseSettling, quote.AmountOut, "",
				fmt.Errorf("%w: key %s: %v", ErrIndeterminateSettlement, key, err))
		}
		return model.SwapReceipt{}, e.abort(state, params, PhaseSettling, quote.AmountOut, "",
			fmt.Errorf("%w: %v", ErrSettlementFailed, err))
	}

	// Committed. Re-enter the exclusive section and revalidate against
	// current reserves: another swap may have committed while settlement
	// was in flight.
	state.BeginSwap()
	defer state.EndSwap()

	if err := e.revalidate(state, params, quote); err != nil {
		return model.SwapReceipt{}, e.abort(state, params, PhaseSettling, quote.AmountOut, result.Reference, err)
	}

	info, err := state.Commit(params.Direction, params.AmountIn, quote.AmountOut)
	if err != nil {
		// Settlement already moved value; the pool and the
		// collaborator's ledger now disagree.
		return model.SwapReceipt{}, e.abort(state, params, PhaseCommitted, quote.AmountOut, result.Reference,
			fmt.Errorf("%w: %v", ErrReconciliationRequired, err))
	}

	receipt := model.SwapReceipt{
		Pair:           params.Pair,
		Direction:      params.Direction,
		Trader:         params.Trader,
		AmountIn:       params.AmountIn,
		AmountOut:      quote.AmountOut,
		FeeCharged:     quote.Fee,
		NewReserveA:    info.ReserveA,
		NewReserveB:    info.ReserveB,
		SettlementRef:  result.Reference,
		IdempotencyKey: key,
		CommittedAt:    time.Now().UTC().Format(time.RFC3339Nano),
	}

	e.logger.Info("swap committed",
		zap.String("pair", receipt.Pair),
		zap.String("direction", string(receipt.Direction)),
		zap.String("amount_in", receipt.AmountIn.String()),
		zap.String("amount_out", receipt.AmountOut.String()),
		zap.String("fee", receipt.FeeCharged.String()),
		zap.String("settlement_ref", receipt.SettlementRef),
	)

	// Receipts are informational: a sink failure is logged, never unwound.
	for _, sink := range e.sinks {
		if err := sink.PutReceipt(ctx, receipt); err != nil {
			e.logger.Error("receipt sink failed",
				zap.String("idempotency_key", receipt.IdempotencyKey),
				zap.Error(err))
		}
	}

	return receipt, nil
}

// revalidate re-quotes against current reserves after the unlocked settlement
// wait. The already-settled output must still clear the caller's minimum and
// sit within the tolerance window of what the pool would quote now.
func (e *Executor) revalidate(state *pool.State, params SwapParams, original pricing.Quote) error {
	current, err := state.Quote(params.Direction, params.AmountIn)
	if err != nil {
		return fmt.Errorf("%w: revalidation quote: %v", ErrStaleQuote, err)
	}

	floor := original.AmountOut
	if params.ToleranceBps > 0 {
		allowance := original.AmountOut.FeeBps(params.ToleranceBps)
		adjusted, err := original.AmountOut.Sub(allowance)
		if err == nil {
			floor = adjusted
		}
	}
	if params.MinAmountOut.Cmp(floor) > 0 {
		floor = params.MinAmountOut
	}

	if current.AmountOut.Cmp(floor) < 0 {
		return fmt.Errorf("%w: reserves moved, current quote %s below floor %s",
			ErrStaleQuote, current.AmountOut, floor)
	}
	return nil
}

func (e *Executor) abort(state *pool.State, params SwapParams, phase Phase, quoted amount.Amount, settlementRef string, cause error) error {
	info := state.Info()
	abortErr := &AbortError{
		Phase:         phase,
		Pair:          params.Pair,
		AmountIn:      params.AmountIn,
		MinAmountOut:  params.MinAmountOut,
		QuotedOut:     quoted,
		ReserveA:      info.ReserveA,
		ReserveB:      info.ReserveB,
		SettlementRef: settlementRef,
		Err:           cause,
	}

	e.logger.Warn("swap aborted",
		zap.String("pair", params.Pair),
		zap.String("phase", string(phase)),
		zap.String("amount_in", params.AmountIn.String()),
		zap.Error(cause),
	)
	return abortErr
}
