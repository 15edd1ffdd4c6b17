package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/truemed/scan-cli/internal/model"
)

var (
	scanUserID string
	scanHint   string
)

var scanCmd = &cobra.Command{
	Use:   "scan <image>...",
	Short: "Extract pharmaceutical metadata from packaging photos",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		if cfg.Scan.MaxImages > 0 && len(args) > cfg.Scan.MaxImages {
			return eris.Errorf("too many images: %d (limit %d)", len(args), cfg.Scan.MaxImages)
		}

		images := make([][]byte, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "read image %s", path)
			}
			images = append(images, data)
		}

		result := e.Orchestrator.ExtractWithFallback(ctx, model.ExtractionRequest{
			Images: images,
			Hint:   scanHint,
			UserID: scanUserID,
		})

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	scanCmd.Flags().StringVar(&scanUserID, "user", "", "user ID for plan resolution (empty = free tier)")
	scanCmd.Flags().StringVar(&scanHint, "hint", "", "free-text hint to feed the pattern passes")
	rootCmd.AddCommand(scanCmd)
}
