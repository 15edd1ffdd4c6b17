package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/truemed/scan-cli/internal/model"
	"github.com/truemed/scan-cli/internal/monitoring"
)

var servePort int

// extractRequest is the wire shape of POST /api/extract.
type extractRequest struct {
	Images []string `json:"images"`
	UserID string   `json:"userId,omitempty"`
	Hint   string   `json:"hint,omitempty"`
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the extraction webhook server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		e, err := initEnv(ctx)
		if err != nil {
			return err
		}
		defer e.Close()

		r := chi.NewRouter()
		r.Use(middleware.RequestID)
		r.Use(middleware.Recoverer)
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Accept", "Content-Type"},
		}))

		r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(map[string]string{"status": "ok"}) //nolint:errcheck
		})

		collector := monitoring.NewCollector(e.Store)
		r.Get("/metrics", func(w http.ResponseWriter, req *http.Request) {
			snap, err := collector.Collect(req.Context(), 24)
			if err != nil {
				zap.L().Error("metrics collection failed", zap.Error(err))
				http.Error(w, `{"error":"metrics unavailable"}`, http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(snap) //nolint:errcheck
		})

		r.Post("/api/extract", func(w http.ResponseWriter, req *http.Request) {
			var body extractRequest
			if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
				http.Error(w, `{"error":"invalid request body"}`, http.StatusBadRequest)
				return
			}
			if len(body.Images) == 0 {
				http.Error(w, `{"error":"images is required"}`, http.StatusBadRequest)
				return
			}
			if cfg.Scan.MaxImages > 0 && len(body.Images) > cfg.Scan.MaxImages {
				http.Error(w, `{"error":"too many images"}`, http.StatusBadRequest)
				return
			}

			images := make([][]byte, 0, len(body.Images))
			for _, enc := range body.Images {
				data, err := base64.StdEncoding.DecodeString(enc)
				if err != nil {
					http.Error(w, `{"error":"images must be base64-encoded"}`, http.StatusBadRequest)
					return
				}
				images = append(images, data)
			}

			// The orchestrator never fails outward; provider failures are
			// already absorbed into the result.
			result := e.Orchestrator.ExtractWithFallback(req.Context(), model.ExtractionRequest{
				Images: images,
				Hint:   body.Hint,
				UserID: body.UserID,
			})

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusOK)
			json.NewEncoder(w).Encode(result) //nolint:errcheck
		})

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}

		srv := &http.Server{
			Addr:    fmt.Sprintf(":%d", port),
			Handler: r,
		}

		// Graceful shutdown
		go func() {
			<-ctx.Done()
			zap.L().Info("shutting down server")
			srv.Shutdown(ctx) //nolint:errcheck
		}()

		zap.L().Info("starting server", zap.Int("port", port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return eris.Wrap(err, "server listen")
		}

		return nil
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
