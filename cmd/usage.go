package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var usageLookbackHours int

var usageCmd = &cobra.Command{
	Use:   "usage",
	Short: "Summarize provider usage and cost",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		since := time.Now().UTC().Add(-time.Duration(usageLookbackHours) * time.Hour)
		summary, err := e.Store.SummarizeUsage(ctx, since)
		if err != nil {
			return err
		}

		fmt.Printf("scans:         %d\n", summary.Scans)
		fmt.Printf("success rate:  %.1f%%\n", summary.SuccessRate()*100)
		fmt.Printf("tokens:        %d\n", summary.Tokens)
		fmt.Printf("cost:          $%.4f\n", summary.CostUSD)
		fmt.Printf("avg response:  %dms\n", summary.AvgResponseMS)
		return nil
	},
}

func init() {
	usageCmd.Flags().IntVar(&usageLookbackHours, "hours", 24, "lookback window in hours")
	rootCmd.AddCommand(usageCmd)
}
