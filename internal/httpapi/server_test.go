package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"swapCore/internal/amount"
	"swapCore/internal/exchange"
	"swapCore/internal/model"
	"swapCore/internal/pool"
	"swapCore/internal/pricing"
	"swapCore/internal/settlement"
)

type stubReconciler struct {
	rec settlement.Reconciliation
}

func (s *stubReconciler) Resolve(_ context.Context, reference string) (settlement.Reconciliation, error) {
	rec := s.rec
	rec.Reference = reference
	return rec, nil
}

func newTestServer(t *testing.T) (*Server, *settlement.MemoryLedger) {
	t.Helper()

	registry := pool.NewRegistry(nil)
	_, err := registry.Initialize(pool.InitParams{
		AssetA:   "TOKEN",
		AssetB:   "USDC",
		ReserveA: amount.FromUint64(10000000),
		ReserveB: amount.FromUint64(1000),
		FeeBps:   30,
		Strategy: pricing.KindConstantProduct,
	})
	if err != nil {
		t.Fatalf("initialize: %v", err)
	}

	ledger := settlement.NewMemoryLedger()
	ledger.Fund("trader-1", "TOKEN", amount.FromUint64(5000000))
	ledger.Fund("pool-custody", "USDC", amount.FromUint64(1000))

	executor := exchange.NewExecutor(registry, ledger, nil, exchange.Config{}, nil)
	reconciler := &stubReconciler{rec: settlement.Reconciliation{Outcome: settlement.OutcomeConfirmed}}
	return NewServer(registry, executor, reconciler, nil), ledger
}

func doRequest(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func TestListAndInfo(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/v1/pools", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: %d", rec.Code)
	}

	rec = doRequest(t, server, http.MethodGet, "/v1/pools/TOKEN/USDC", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("info status: %d, body %s", rec.Code, rec.Body)
	}

	var info model.PoolInfo
	if err := json.Unmarshal(rec.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode info: %v", err)
	}
	if info.Pair != "TOKEN/USDC" || info.ReserveA.String() != "10000000" {
		t.Fatalf("info mismatch: %+v", info)
	}
	if info.PriceAInB == "" {
		t.Fatalf("expected implied price")
	}

	rec = doRequest(t, server, http.MethodGet, "/v1/pools/TOKEN/DAI", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing pool status: %d", rec.Code)
	}
}

func TestInitPool(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/v1/pools", initPoolRequest{
		AssetA:   "TOKEN",
		AssetB:   "DAI",
		ReserveA: "1000",
		ReserveB: "1000",
		FeeBps:   10,
		Strategy: "fixed_peg",
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("init status: %d, body %s", rec.Code, rec.Body)
	}

	// A second initialize for the same pair must conflict.
	rec = doRequest(t, server, http.MethodPost, "/v1/pools", initPoolRequest{
		AssetA:   "TOKEN",
		AssetB:   "DAI",
		ReserveA: "1",
		ReserveB: "1",
		Strategy: "fixed_peg",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("duplicate init status: %d", rec.Code)
	}
}

func TestQuotePreview(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/v1/pools/TOKEN/USDC/quote?direction=a_to_b&amount_in=1000000", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("quote status: %d, body %s", rec.Code, rec.Body)
	}

	var resp quoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode quote: %v", err)
	}
	if resp.AmountOut.String() != "90" || resp.Fee.String() != "3000" {
		t.Fatalf("quote mismatch: %+v", resp)
	}
	if resp.Binding {
		t.Fatalf("preview must never be binding")
	}
}

func TestQuoteDustRejected(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodGet, "/v1/pools/TOKEN/USDC/quote?direction=a_to_b&amount_in=100", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("dust status: %d, body %s", rec.Code, rec.Body)
	}

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Reason != "dust_amount" {
		t.Fatalf("reason mismatch: %s", body.Reason)
	}
}

func TestSwapEndToEnd(t *testing.T) {
	server, ledger := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/v1/pools/TOKEN/USDC/swap", swapRequest{
		Direction:    "a_to_b",
		Trader:       "trader-1",
		AmountIn:     "1000000",
		MinAmountOut: "90",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("swap status: %d, body %s", rec.Code, rec.Body)
	}

	var receipt model.SwapReceipt
	if err := json.Unmarshal(rec.Body.Bytes(), &receipt); err != nil {
		t.Fatalf("decode receipt: %v", err)
	}
	if receipt.AmountOut.String() != "90" || receipt.NewReserveB.String() != "910" {
		t.Fatalf("receipt mismatch: %+v", receipt)
	}

	if got := ledger.Balance("trader-1", "USDC").String(); got != "90" {
		t.Fatalf("ledger credit mismatch: %s", got)
	}
}

func TestSwapSlippageEnvelope(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/v1/pools/TOKEN/USDC/swap", swapRequest{
		Direction:    "a_to_b",
		Trader:       "trader-1",
		AmountIn:     "1000000",
		MinAmountOut: "91",
	})
	if rec.Code != http.StatusConflict {
		t.Fatalf("slippage status: %d, body %s", rec.Code, rec.Body)
	}

	var body errorBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error: %v", err)
	}
	if body.Reason != "slippage_exceeded" {
		t.Fatalf("reason mismatch: %s", body.Reason)
	}
	if body.Detail["quoted_out"] != "90" || body.Detail["min_amount_out"] != "91" {
		t.Fatalf("detail mismatch: %+v", body.Detail)
	}
}

func TestReconcile(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doRequest(t, server, http.MethodPost, "/v1/reconcile", reconcileRequest{Reference: "0xabc"})
	if rec.Code != http.StatusOK {
		t.Fatalf("reconcile status: %d, body %s", rec.Code, rec.Body)
	}

	var result settlement.Reconciliation
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode reconciliation: %v", err)
	}
	if result.Outcome != settlement.OutcomeConfirmed || result.Reference != "0xabc" {
		t.Fatalf("reconciliation mismatch: %+v", result)
	}
}

func TestReconcileWithoutReconciler(t *testing.T) {
	registry := pool.NewRegistry(nil)
	executor := exchange.NewExecutor(registry, settlement.NewMemoryLedger(), nil, exchange.Config{}, nil)
	server := NewServer(registry, executor, nil, nil)

	rec := doRequest(t, server, http.MethodPost, "/v1/reconcile", reconcileRequest{Reference: "0xabc"})
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status: %d", rec.Code)
	}
}
