package settlement

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// Outcome is the resolved status of a settlement reference.
type Outcome string

const (
	// OutcomeConfirmed means the transfer landed on chain.
	OutcomeConfirmed Outcome = "confirmed"
	// OutcomeFailed means the transfer executed and reverted; the funds
	// never moved.
	OutcomeFailed Outcome = "failed"
	// OutcomePending means the chain has not seen or not mined the
	// transfer yet.
	OutcomePending Outcome = "pending"
)

// Reconciliation is the result of resolving one settlement reference.
type Reconciliation struct {
	Reference   string  `json:"reference"`
	Outcome     Outcome `json:"outcome"`
	BlockNumber uint64  `json:"block_number,omitempty"`
	GasUsed     uint64  `json:"gas_used,omitempty"`
}

// EVMReconciler resolves indeterminate settlement references against an EVM
// chain, treating the settlement reference as a transaction hash. It never
// resubmits anything; it only reads the chain's record.
type EVMReconciler struct {
	rpcClient *rpc.Client
	ethClient *ethclient.Client

	maxRetries   int
	retryBackoff time.Duration
}

// NewEVMReconciler dials the RPC endpoint.
func NewEVMReconciler(ctx context.Context, rpcURL string, maxRetries int, retryBackoff time.Duration) (*EVMReconciler, error) {
	rpcClient, err := rpc.DialContext(ctx, rpcURL)
	if err != nil {
		return nil, err
	}
	return &EVMReconciler{
		rpcClient:    rpcClient,
		ethClient:    ethclient.NewClient(rpcClient),
		maxRetries:   maxRetries,
		retryBackoff: retryBackoff,
	}, nil
}

// Close closes the underlying RPC client.
func (r *EVMReconciler) Close() {
	if r.rpcClient != nil {
		r.rpcClient.Close()
	}
}

// ChainID returns the chain ID.
func (r *EVMReconciler) ChainID(ctx context.Context) (*big.Int, error) {
	return r.ethClient.ChainID(ctx)
}

// Resolve looks up a settlement reference. RPC errors are retried with
// exponential backoff; a missing transaction resolves to pending rather than
// an error, since an indeterminate transfer may simply not be mined yet.
func (r *EVMReconciler) Resolve(ctx context.Context, reference string) (Reconciliation, error) {
	if len(reference) != 66 || reference[:2] != "0x" {
		return Reconciliation{}, fmt.Errorf("settlement reference is not a transaction hash: %q", reference)
	}
	hash := common.HexToHash(reference)

	var rec Reconciliation
	err := withRetry(ctx, r.maxRetries, r.retryBackoff, func(ctx context.Context) error {
		receipt, err := r.ethClient.TransactionReceipt(ctx, hash)
		if err != nil {
			if errors.Is(err, ethereum.NotFound) {
				rec = Reconciliation{Reference: reference, Outcome: OutcomePending}
				return nil
			}
			return fmt.Errorf("transaction receipt: %w", err)
		}

		rec = Reconciliation{
			Reference:   reference,
			Outcome:     OutcomeFailed,
			BlockNumber: receipt.BlockNumber.Uint64(),
			GasUsed:     receipt.GasUsed,
		}
		if receipt.Status == 1 {
			rec.Outcome = OutcomeConfirmed
		}
		return nil
	})
	if err != nil {
		return Reconciliation{}, err
	}
	return rec, nil
}
