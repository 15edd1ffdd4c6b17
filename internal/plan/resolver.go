// Package plan resolves a user identifier to a plan tier from point balances.
package plan

import (
	"context"

	"go.uber.org/zap"

	"github.com/truemed/scan-cli/internal/model"
)

// BalanceStore looks up point balances for a user. The production
// implementation lives in internal/store.
type BalanceStore interface {
	GetBalances(ctx context.Context, userID string) (model.Balances, error)
}

// Resolver maps user identifiers to plan tiers.
type Resolver struct {
	store BalanceStore
}

// NewResolver creates a Resolver backed by the given balance store.
func NewResolver(store BalanceStore) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns the tier for the highest-precedence non-zero balance
// bucket. An empty userID resolves to free. A store failure also resolves to
// free: degraded plan detection must never grant elevated access.
func (r *Resolver) Resolve(ctx context.Context, userID string) model.PlanTier {
	if userID == "" {
		return model.TierFree
	}

	balances, err := r.store.GetBalances(ctx, userID)
	if err != nil {
		zap.L().Warn("plan: balance lookup failed, resolving to free",
			zap.String("user_id", userID),
			zap.Error(err),
		)
		return model.TierFree
	}

	return balances.Tier()
}
