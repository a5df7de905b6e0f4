package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/AleutianAI/weavescan/services/scanner/gateway"
)

var locateTarget int64

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Print the gateway's current frontier",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
		defer cancel()

		client := gateway.NewClient(config.GatewayURL, nil, config.RequestsPerSecond)
		info, err := client.Info(ctx)
		if err != nil {
			return fmt.Errorf("gateway info: %w", err)
		}
		fmt.Printf("gateway:  %s\nheight:   %d\nblocks:   %d\n",
			config.GatewayURL, info.Height, info.Blocks)
		return nil
	},
}

var locateCmd = &cobra.Command{
	Use:   "locate",
	Short: "Binary-search the height whose block timestamp is >= --target",
	RunE: func(cmd *cobra.Command, args []string) error {
		if locateTarget <= 0 {
			return fmt.Errorf("--target must be a positive unix timestamp")
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Minute)
		defer cancel()

		client := gateway.NewClient(config.GatewayURL, nil, config.RequestsPerSecond)
		info, err := client.Info(ctx)
		if err != nil {
			return fmt.Errorf("gateway info: %w", err)
		}

		logger.Info("locating height", "target", locateTarget, "frontier", info.Height)
		height := client.LocateHeight(ctx, locateTarget, info.Height)
		if height > info.Height {
			fmt.Printf("target %d is beyond the frontier (%d)\n", locateTarget, info.Height)
			return nil
		}
		fmt.Printf("height:   %d\n", height)
		return nil
	},
}

func init() {
	locateCmd.Flags().Int64Var(&locateTarget, "target", 0, "target unix timestamp (seconds)")
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(locateCmd)
}
