package storage

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"swapCore/internal/amount"
	"swapCore/internal/model"
)

func TestJsonlSinkAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "receipts.jsonl")
	sink := NewJsonlSink(path)

	receipt := model.SwapReceipt{
		Pair:           "TOKEN/USDC",
		Direction:      model.DirectionAToB,
		Trader:         "trader-1",
		AmountIn:       amount.FromUint64(1000000),
		AmountOut:      amount.FromUint64(90),
		FeeCharged:     amount.FromUint64(3000),
		NewReserveA:    amount.FromUint64(11000000),
		NewReserveB:    amount.FromUint64(910),
		SettlementRef:  "ref-1",
		IdempotencyKey: "key-1",
		CommittedAt:    "2024-01-01T00:00:00Z",
	}

	if err := sink.PutReceipt(context.Background(), receipt); err != nil {
		t.Fatalf("put receipt: %v", err)
	}
	receipt.IdempotencyKey = "key-2"
	if err := sink.PutReceipt(context.Background(), receipt); err != nil {
		t.Fatalf("put second receipt: %v", err)
	}

	file, err := os.Open(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer file.Close()

	var lines []model.SwapReceipt
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var decoded model.SwapReceipt
		if err := json.Unmarshal(scanner.Bytes(), &decoded); err != nil {
			t.Fatalf("decode line: %v", err)
		}
		lines = append(lines, decoded)
	}

	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].IdempotencyKey != "key-1" || lines[1].IdempotencyKey != "key-2" {
		t.Fatalf("line order mismatch: %+v", lines)
	}
	if lines[0].AmountOut.String() != "90" {
		t.Fatalf("amount out mismatch: %s", lines[0].AmountOut)
	}
}

func TestJsonlSinkHonorsContext(t *testing.T) {
	sink := NewJsonlSink(filepath.Join(t.TempDir(), "receipts.jsonl"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := sink.PutReceipt(ctx, model.SwapReceipt{}); err == nil {
		t.Fatalf("expected context error")
	}
}
