package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/truemed/scan-cli/internal/model"
	"github.com/truemed/scan-cli/internal/route"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Print the provider chain for each plan tier",
	RunE: func(cmd *cobra.Command, args []string) error {
		table := route.DefaultTable()
		if cfg.Routing.TableFile != "" {
			var err error
			table, err = route.LoadTable(cfg.Routing.TableFile)
			if err != nil {
				return err
			}
		}
		router, err := route.NewRouter(table)
		if err != nil {
			return err
		}

		for _, tier := range model.AllTiers() {
			fmt.Printf("%s:\n", tier)
			for i, desc := range router.RouteFor(tier) {
				marker := ""
				if desc.Terminal() {
					marker = " (terminal fallback)"
				}
				fmt.Printf("  %d. %s [%s]%s\n", i+1, desc.Name, desc.Family, marker)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
