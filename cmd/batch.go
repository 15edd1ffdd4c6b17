package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/truemed/scan-cli/internal/model"
)

var (
	batchConcurrency int
	batchUserID      string
)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".tif": true, ".tiff": true,
}

// batchResult pairs one file with its extraction outcome for the report.
type batchResult struct {
	File   string                   `json:"file"`
	Result *model.ExtractedMetadata `json:"result"`
}

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Scan every image in a directory",
	Long:  "Runs each image through its own fallback chain. Scans are independent, so they run concurrently; within one scan, provider attempts stay strictly sequential.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		entries, err := os.ReadDir(args[0])
		if err != nil {
			return eris.Wrapf(err, "read dir %s", args[0])
		}

		var files []string
		for _, entry := range entries {
			if entry.IsDir() || !imageExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
				continue
			}
			files = append(files, filepath.Join(args[0], entry.Name()))
		}
		if len(files) == 0 {
			return eris.Errorf("no images found in %s", args[0])
		}

		zap.L().Info("batch scan starting",
			zap.Int("files", len(files)),
			zap.Int("concurrency", batchConcurrency),
		)

		results := make([]batchResult, len(files))
		var mu sync.Mutex

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(batchConcurrency)
		for i, file := range files {
			g.Go(func() error {
				data, err := os.ReadFile(file)
				if err != nil {
					return eris.Wrapf(err, "read image %s", file)
				}

				result := e.Orchestrator.ExtractWithFallback(gctx, model.ExtractionRequest{
					Images: [][]byte{data},
					UserID: batchUserID,
				})

				mu.Lock()
				results[i] = batchResult{File: file, Result: result}
				mu.Unlock()
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(results)
	},
}

func init() {
	batchCmd.Flags().IntVar(&batchConcurrency, "concurrency", 4, "concurrent scans")
	batchCmd.Flags().StringVar(&batchUserID, "user", "", "user ID for plan resolution (empty = free tier)")
	rootCmd.AddCommand(batchCmd)
}
