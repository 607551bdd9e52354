package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"swapCore/internal/settlement"
)

func runReconcile(cmd *cobra.Command, _ []string) error {
	rpcURL, _ := cmd.Flags().GetString("rpc")
	reference, _ := cmd.Flags().GetString("ref")
	maxRetries, _ := cmd.Flags().GetInt("max-retries")
	retryBackoff, _ := cmd.Flags().GetDuration("retry-backoff")

	if rpcURL == "" {
		return fmt.Errorf("rpc url is required")
	}
	if reference == "" {
		return fmt.Errorf("settlement reference is required")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	reconciler, err := settlement.NewEVMReconciler(ctx, rpcURL, maxRetries, retryBackoff)
	if err != nil {
		return fmt.Errorf("connect rpc: %w", err)
	}
	defer reconciler.Close()

	rec, err := reconciler.Resolve(ctx, reference)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(rec)
}
