// Package scan drives one extraction request through the tiered provider
// fallback chain.
package scan

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/truemed/scan-cli/internal/extract"
	"github.com/truemed/scan-cli/internal/model"
	"github.com/truemed/scan-cli/internal/plan"
	"github.com/truemed/scan-cli/internal/provider"
	"github.com/truemed/scan-cli/internal/route"
)

// Recorder receives usage records after each provider attempt. Recording is
// fire-and-forget: a recorder failure never aborts a scan.
type Recorder interface {
	RecordUsage(ctx context.Context, rec model.UsageRecord) error
}

// Orchestrator resolves the plan, routes to a provider chain, and walks the
// chain strictly sequentially until one attempt succeeds.
type Orchestrator struct {
	resolver *plan.Resolver
	router   *route.Router
	engine   *extract.Engine
	registry *provider.Registry
	recorder Recorder
}

// NewOrchestrator wires the fallback pipeline. recorder may be nil.
func NewOrchestrator(resolver *plan.Resolver, router *route.Router, engine *extract.Engine, registry *provider.Registry, recorder Recorder) *Orchestrator {
	return &Orchestrator{
		resolver: resolver,
		router:   router,
		engine:   engine,
		registry: registry,
		recorder: recorder,
	}
}

// ExtractWithFallback never fails outward: the caller always receives exactly
// one ExtractedMetadata. The first success of any confidence terminates the
// chain; a fully exhausted chain returns the degraded best-effort result.
func (o *Orchestrator) ExtractWithFallback(ctx context.Context, req model.ExtractionRequest) *model.ExtractedMetadata {
	tier := o.resolver.Resolve(ctx, req.UserID)
	chain := o.router.RouteFor(tier)

	zap.L().Debug("scan: routed request",
		zap.String("tier", tier.String()),
		zap.Int("providers", len(chain)),
		zap.Int("images", len(req.Images)),
	)

	var attempts []model.AttemptOutcome
	for _, desc := range chain {
		outcome := o.attempt(ctx, req, desc)
		attempts = append(attempts, outcome)
		o.record(ctx, req.UserID, outcome)

		if outcome.Success {
			zap.L().Info("scan: extraction complete",
				zap.String("provider", desc.Name),
				zap.String("tier", tier.String()),
				zap.Float64("confidence", outcome.Result.Confidence),
				zap.Duration("elapsed", outcome.Elapsed),
				zap.Int("attempts", len(attempts)),
			)
			return outcome.Result
		}

		zap.L().Warn("scan: provider attempt failed, advancing chain",
			zap.String("provider", desc.Name),
			zap.String("error", outcome.Error),
			zap.Duration("elapsed", outcome.Elapsed),
		)
	}

	zap.L().Warn("scan: provider chain exhausted, returning degraded result",
		zap.String("tier", tier.String()),
		zap.Int("attempts", len(attempts)),
	)
	return extract.Degraded()
}

// attempt runs a single provider through the extraction engine.
func (o *Orchestrator) attempt(ctx context.Context, req model.ExtractionRequest, desc model.ProviderDescriptor) model.AttemptOutcome {
	start := time.Now()

	p := o.registry.Get(desc.Name)
	if p == nil {
		return model.AttemptOutcome{
			Provider: desc.Name,
			Success:  false,
			Elapsed:  time.Since(start),
			Error:    "provider not configured",
		}
	}

	meta, err := o.engine.Extract(ctx, req, p)
	elapsed := time.Since(start)
	if err != nil {
		return model.AttemptOutcome{
			Provider: desc.Name,
			Success:  false,
			Elapsed:  elapsed,
			Error:    err.Error(),
		}
	}

	return model.AttemptOutcome{
		Provider: desc.Name,
		Success:  true,
		Elapsed:  elapsed,
		Result:   meta,
	}
}

// record ships one attempt's usage to the recorder, absorbing any failure.
func (o *Orchestrator) record(ctx context.Context, userID string, outcome model.AttemptOutcome) {
	if o.recorder == nil {
		return
	}

	rec := model.UsageRecord{
		ID:             uuid.NewString(),
		UserID:         userID,
		Provider:       outcome.Provider,
		Success:        outcome.Success,
		ResponseTimeMS: outcome.Elapsed.Milliseconds(),
		CreatedAt:      time.Now().UTC(),
	}
	if outcome.Result != nil {
		rec.Tokens = outcome.Result.Usage.Tokens
		rec.CostUSD = outcome.Result.Usage.CostUSD
	}

	if err := o.recorder.RecordUsage(ctx, rec); err != nil {
		zap.L().Warn("scan: usage record failed",
			zap.String("provider", outcome.Provider),
			zap.Error(err),
		)
	}
}
