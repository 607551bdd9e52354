package httpapi

import (
	"errors"
	"net/http"

	"swapCore/internal/exchange"
	"swapCore/internal/pool"
	"swapCore/internal/pricing"
)

// errorBody is the JSON error envelope. Detail carries the structured fields
// a caller needs to decide whether and how to retry.
type errorBody struct {
	Error  string            `json:"error"`
	Reason string            `json:"reason"`
	Detail map[string]string `json:"detail,omitempty"`
}

var reasonByErr = []struct {
	sentinel error
	reason   string
	status   int
}{
	{pool.ErrPoolNotFound, "pool_not_found", http.StatusNotFound},
	{pool.ErrPoolUninitialized, "pool_uninitialized", http.StatusConflict},
	{pool.ErrAlreadyInitialized, "already_initialized", http.StatusConflict},
	{pool.ErrInvalidReserves, "invalid_reserves", http.StatusBadRequest},
	{pool.ErrPoolDepleted, "pool_depleted", http.StatusConflict},
	{pool.ErrReserveUnderflow, "reserve_underflow", http.StatusConflict},
	{pricing.ErrInvalidAmount, "invalid_amount", http.StatusBadRequest},
	{pricing.ErrDustAmount, "dust_amount", http.StatusBadRequest},
	{pricing.ErrInsufficientLiquidity, "insufficient_liquidity", http.StatusUnprocessableEntity},
	{exchange.ErrSlippageExceeded, "slippage_exceeded", http.StatusConflict},
	{exchange.ErrStaleQuote, "stale_quote", http.StatusConflict},
	{exchange.ErrSettlementFailed, "settlement_failed", http.StatusBadGateway},
	{exchange.ErrIndeterminateSettlement, "indeterminate_settlement", http.StatusGatewayTimeout},
	{exchange.ErrReconciliationRequired, "reconciliation_required", http.StatusInternalServerError},
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	body := errorBody{Error: err.Error(), Reason: "internal"}
	status := http.StatusInternalServerError

	for _, entry := range reasonByErr {
		if errors.Is(err, entry.sentinel) {
			body.Reason = entry.reason
			status = entry.status
			break
		}
	}

	var abortErr *exchange.AbortError
	if errors.As(err, &abortErr) {
		body.Detail = map[string]string{
			"phase":          string(abortErr.Phase),
			"pair":           abortErr.Pair,
			"amount_in":      abortErr.AmountIn.String(),
			"min_amount_out": abortErr.MinAmountOut.String(),
			"quoted_out":     abortErr.QuotedOut.String(),
			"reserve_a":      abortErr.ReserveA.String(),
			"reserve_b":      abortErr.ReserveB.String(),
		}
		if abortErr.SettlementRef != "" {
			body.Detail["settlement_ref"] = abortErr.SettlementRef
		}
	}

	s.writeJSON(w, status, body)
}

func (s *Server) writeBadRequest(w http.ResponseWriter, reason, message string) {
	s.writeJSON(w, http.StatusBadRequest, errorBody{Error: message, Reason: reason})
}
