package settlement

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"swapCore/internal/amount"
)

// MemoryLedger is an in-process Settler backed by account balances. It exists
// for development and tests; production deployments plug in a real transfer
// collaborator behind the same interface.
type MemoryLedger struct {
	mu       sync.Mutex
	balances map[string]map[string]amount.Amount
	settled  map[string]settledEntry
}

type settledEntry struct {
	fingerprint string
	result      Result
}

// NewMemoryLedger builds an empty ledger.
func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{
		balances: make(map[string]map[string]amount.Amount),
		settled:  make(map[string]settledEntry),
	}
}

// Fund credits an account outside any settlement.
func (l *MemoryLedger) Fund(account, asset string, value amount.Amount) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.credit(account, asset, value)
}

// Balance reads an account balance.
func (l *MemoryLedger) Balance(account, asset string) amount.Amount {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.balances[account][asset].Add(amount.Zero())
}

// Settle applies both legs atomically. A request that fails leaves every
// balance untouched. Replaying an already-settled key returns the original
// result without moving value again.
func (l *MemoryLedger) Settle(ctx context.Context, req Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	fingerprint := requestFingerprint(req)
	if req.IdempotencyKey != "" {
		if entry, ok := l.settled[req.IdempotencyKey]; ok {
			if entry.fingerprint != fingerprint {
				return Result{}, fmt.Errorf("%w: %s", ErrDuplicateKey, req.IdempotencyKey)
			}
			return entry.result, nil
		}
	}

	if err := l.checkLeg(req.Debit); err != nil {
		return Result{}, err
	}
	if err := l.checkLeg(req.Credit); err != nil {
		return Result{}, err
	}

	l.applyLeg(req.Debit)
	l.applyLeg(req.Credit)

	result := Result{Reference: "mem-" + uuid.NewString()}
	if req.IdempotencyKey != "" {
		l.settled[req.IdempotencyKey] = settledEntry{fingerprint: fingerprint, result: result}
	}
	return result, nil
}

func (l *MemoryLedger) checkLeg(leg Leg) error {
	if leg.From == "" || leg.To == "" || leg.Asset == "" {
		return fmt.Errorf("%w: incomplete leg %+v", ErrTransferFailed, leg)
	}
	if l.balances[leg.From][leg.Asset].Cmp(leg.Amount) < 0 {
		return fmt.Errorf("%w: %s has %s %s, needs %s",
			ErrTransferFailed, leg.From, l.balances[leg.From][leg.Asset], leg.Asset, leg.Amount)
	}
	return nil
}

func (l *MemoryLedger) applyLeg(leg Leg) {
	debited, err := l.balances[leg.From][leg.Asset].Sub(leg.Amount)
	if err != nil {
		// checkLeg already verified the balance.
		panic(err)
	}
	l.balances[leg.From][leg.Asset] = debited
	l.credit(leg.To, leg.Asset, leg.Amount)
}

func (l *MemoryLedger) credit(account, asset string, value amount.Amount) {
	if l.balances[account] == nil {
		l.balances[account] = make(map[string]amount.Amount)
	}
	l.balances[account][asset] = l.balances[account][asset].Add(value)
}

func requestFingerprint(req Request) string {
	return fmt.Sprintf("%s>%s:%s:%s|%s>%s:%s:%s",
		req.Debit.From, req.Debit.To, req.Debit.Asset, req.Debit.Amount,
		req.Credit.From, req.Credit.To, req.Credit.Asset, req.Credit.Amount)
}
