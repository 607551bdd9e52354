package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"swapCore/internal/amount"
	"swapCore/internal/pool"
	"swapCore/internal/pricing"
)

func newPoolsCmd() *cobra.Command {
	poolsCmd := &cobra.Command{
		Use:   "pools",
		Short: "Manage the pool snapshot file",
	}

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Seed a new pool into the snapshot file",
		RunE:  runPoolsInit,
	}

	initCmd.Flags().String("snapshot", "./data/pools.json", "pool snapshot file path")
	initCmd.Flags().String("asset-a", "", "asset A identifier")
	initCmd.Flags().String("asset-b", "", "asset B identifier")
	initCmd.Flags().String("reserve-a", "", "initial reserve of asset A")
	initCmd.Flags().String("reserve-b", "", "initial reserve of asset B")
	initCmd.Flags().Uint32("fee-bps", 30, "fee in basis points")
	initCmd.Flags().String("strategy", "constant_product", "pricing strategy (fixed_peg, constant_product)")

	poolsCmd.AddCommand(initCmd)

	infoCmd := &cobra.Command{
		Use:   "info",
		Short: "Print pools from the snapshot file",
		RunE:  runPoolsInfo,
	}

	infoCmd.Flags().String("snapshot", "./data/pools.json", "pool snapshot file path")

	poolsCmd.AddCommand(infoCmd)

	return poolsCmd
}

func loadRegistry(snapshotPath string) (*pool.Registry, *pool.SnapshotStore, error) {
	store := &pool.SnapshotStore{Path: snapshotPath}
	registry := pool.NewRegistry(nil)

	infos, ok, err := store.Load()
	if err != nil {
		return nil, nil, err
	}
	if ok {
		if err := registry.Restore(infos); err != nil {
			return nil, nil, err
		}
	}
	return registry, store, nil
}

func runPoolsInit(cmd *cobra.Command, _ []string) error {
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	registry, store, err := loadRegistry(snapshotPath)
	if err != nil {
		return err
	}

	assetA, _ := cmd.Flags().GetString("asset-a")
	assetB, _ := cmd.Flags().GetString("asset-b")
	reserveAStr, _ := cmd.Flags().GetString("reserve-a")
	reserveBStr, _ := cmd.Flags().GetString("reserve-b")
	feeBps, _ := cmd.Flags().GetUint32("fee-bps")
	strategyStr, _ := cmd.Flags().GetString("strategy")

	reserveA, err := amount.Parse(reserveAStr)
	if err != nil {
		return fmt.Errorf("reserve-a: %w", err)
	}
	reserveB, err := amount.Parse(reserveBStr)
	if err != nil {
		return fmt.Errorf("reserve-b: %w", err)
	}
	strategy, err := pricing.ParseKind(strategyStr)
	if err != nil {
		return err
	}

	state, err := registry.Initialize(pool.InitParams{
		AssetA:   assetA,
		AssetB:   assetB,
		ReserveA: reserveA,
		ReserveB: reserveB,
		FeeBps:   feeBps,
		Strategy: strategy,
	})
	if err != nil {
		return err
	}

	if err := store.Save(registry.List()); err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(state.Info())
}

func runPoolsInfo(cmd *cobra.Command, _ []string) error {
	snapshotPath, _ := cmd.Flags().GetString("snapshot")
	registry, _, err := loadRegistry(snapshotPath)
	if err != nil {
		return err
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(registry.List())
}
