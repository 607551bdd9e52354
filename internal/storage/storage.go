package storage

import (
	"context"

	"swapCore/internal/model"
)

// ReceiptSink receives committed swap receipts. Sinks are write-only from the
// core's point of view; the swap path never reads a receipt back.
type ReceiptSink interface {
	PutReceipt(ctx context.Context, receipt model.SwapReceipt) error
}
