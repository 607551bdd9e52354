package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"swapCore/internal/amount"
	"swapCore/internal/config"
	"swapCore/internal/pricing"
)

type quoteOutput struct {
	Strategy  string        `json:"strategy"`
	AmountIn  amount.Amount `json:"amount_in"`
	AmountOut amount.Amount `json:"amount_out"`
	Fee       amount.Amount `json:"fee"`
}

func runQuote(cmd *cobra.Command, _ []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.LoadQuote(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	amountIn, err := amount.Parse(cfg.AmountIn)
	if err != nil {
		return fmt.Errorf("amount-in: %w", err)
	}
	reserveIn, err := amount.Parse(cfg.ReserveIn)
	if err != nil {
		return fmt.Errorf("reserve-in: %w", err)
	}
	reserveOut, err := amount.Parse(cfg.ReserveOut)
	if err != nil {
		return fmt.Errorf("reserve-out: %w", err)
	}

	kind, err := pricing.ParseKind(cfg.Strategy)
	if err != nil {
		return err
	}
	strategy, err := pricing.ForKind(kind)
	if err != nil {
		return err
	}

	quote, err := strategy.Quote(amountIn, reserveIn, reserveOut, cfg.FeeBps)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(quoteOutput{
		Strategy:  string(kind),
		AmountIn:  amountIn,
		AmountOut: quote.AmountOut,
		Fee:       quote.Fee,
	})
}
