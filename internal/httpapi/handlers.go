package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"

	"swapCore/internal/amount"
	"swapCore/internal/exchange"
	"swapCore/internal/model"
	"swapCore/internal/pool"
	"swapCore/internal/pricing"
)

func pairFromRequest(r *http.Request) string {
	vars := mux.Vars(r)
	return pool.PairKey(vars["assetA"], vars["assetB"])
}

func (s *Server) handleListPools(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{"pools": s.registry.List()})
}

type initPoolRequest struct {
	AssetA   string `json:"asset_a"`
	AssetB   string `json:"asset_b"`
	ReserveA string `json:"reserve_a"`
	ReserveB string `json:"reserve_b"`
	FeeBps   uint32 `json:"fee_bps"`
	Strategy string `json:"strategy"`
}

func (s *Server) handleInitPool(w http.ResponseWriter, r *http.Request) {
	var req initPoolRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid_body", "invalid JSON body: "+err.Error())
		return
	}

	reserveA, err := amount.Parse(req.ReserveA)
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", "reserve_a: "+err.Error())
		return
	}
	reserveB, err := amount.Parse(req.ReserveB)
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", "reserve_b: "+err.Error())
		return
	}
	kind, err := pricing.ParseKind(req.Strategy)
	if err != nil {
		s.writeBadRequest(w, "invalid_strategy", err.Error())
		return
	}

	state, err := s.registry.Initialize(pool.InitParams{
		AssetA:   req.AssetA,
		AssetB:   req.AssetB,
		ReserveA: reserveA,
		ReserveB: reserveB,
		FeeBps:   req.FeeBps,
		Strategy: kind,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, state.Info())
}

func (s *Server) handlePoolInfo(w http.ResponseWriter, r *http.Request) {
	state, err := s.registry.Get(pairFromRequest(r))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, state.Info())
}

type quoteResponse struct {
	Pair      string        `json:"pair"`
	Direction string        `json:"direction"`
	AmountIn  amount.Amount `json:"amount_in"`
	AmountOut amount.Amount `json:"amount_out"`
	Fee       amount.Amount `json:"fee"`
	// Binding is always false on this path: previews read a snapshot and
	// carry no execution guarantee.
	Binding bool `json:"binding"`
}

func (s *Server) handleQuote(w http.ResponseWriter, r *http.Request) {
	pair := pairFromRequest(r)

	direction, err := model.ParseDirection(r.URL.Query().Get("direction"))
	if err != nil {
		s.writeBadRequest(w, "invalid_direction", err.Error())
		return
	}
	amountIn, err := amount.Parse(r.URL.Query().Get("amount_in"))
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", "amount_in: "+err.Error())
		return
	}

	quote, err := s.executor.Preview(pair, direction, amountIn)
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, quoteResponse{
		Pair:      pair,
		Direction: string(direction),
		AmountIn:  amountIn,
		AmountOut: quote.AmountOut,
		Fee:       quote.Fee,
	})
}

type swapRequest struct {
	Direction      string `json:"direction"`
	Trader         string `json:"trader"`
	AmountIn       string `json:"amount_in"`
	MinAmountOut   string `json:"min_amount_out"`
	ToleranceBps   uint32 `json:"tolerance_bps"`
	IdempotencyKey string `json:"idempotency_key"`
}

func (s *Server) handleSwap(w http.ResponseWriter, r *http.Request) {
	var req swapRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid_body", "invalid JSON body: "+err.Error())
		return
	}

	direction, err := model.ParseDirection(req.Direction)
	if err != nil {
		s.writeBadRequest(w, "invalid_direction", err.Error())
		return
	}
	amountIn, err := amount.Parse(req.AmountIn)
	if err != nil {
		s.writeBadRequest(w, "invalid_amount", "amount_in: "+err.Error())
		return
	}
	minOut := amount.Zero()
	if req.MinAmountOut != "" {
		minOut, err = amount.Parse(req.MinAmountOut)
		if err != nil {
			s.writeBadRequest(w, "invalid_amount", "min_amount_out: "+err.Error())
			return
		}
	}

	receipt, err := s.executor.Swap(r.Context(), exchange.SwapParams{
		Pair:           pairFromRequest(r),
		Direction:      direction,
		Trader:         req.Trader,
		AmountIn:       amountIn,
		MinAmountOut:   minOut,
		ToleranceBps:   req.ToleranceBps,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		s.writeError(w, err)
		return
	}

	s.writeJSON(w, http.StatusOK, receipt)
}

type reconcileRequest struct {
	Reference string `json:"reference"`
}

func (s *Server) handleReconcile(w http.ResponseWriter, r *http.Request) {
	if s.reconciler == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorBody{
			Error:  "no reconciler configured",
			Reason: "reconciler_unavailable",
		})
		return
	}

	var req reconcileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeBadRequest(w, "invalid_body", "invalid JSON body: "+err.Error())
		return
	}
	if req.Reference == "" {
		s.writeBadRequest(w, "invalid_reference", "reference is required")
		return
	}

	rec, err := s.reconciler.Resolve(r.Context(), req.Reference)
	if err != nil {
		s.writeBadRequest(w, "reconcile_failed", err.Error())
		return
	}

	s.writeJSON(w, http.StatusOK, rec)
}
