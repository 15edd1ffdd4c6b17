package provider

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/truemed/scan-cli/internal/model"
)

// RateLimited wraps a provider with an in-process hourly request ceiling.
// Exhaustion surfaces as a RateLimited provider error, which the fallback
// chain treats like any other recoverable failure. Counter persistence across
// processes is delegated to an external store; this guard only protects a
// single instance from burning through a quota.
type RateLimitedProvider struct {
	inner   Provider
	limiter *rate.Limiter
}

// WithHourlyLimit wraps p so that at most perHour calls are admitted per hour.
// A non-positive ceiling disables the guard.
func WithHourlyLimit(p Provider, perHour int) Provider {
	if perHour <= 0 {
		return p
	}
	return &RateLimitedProvider{
		inner:   p,
		limiter: rate.NewLimiter(rate.Every(time.Hour/time.Duration(perHour)), perHour),
	}
}

func (r *RateLimitedProvider) Name() string {
	return r.inner.Name()
}

func (r *RateLimitedProvider) Family() model.ProviderFamily {
	return r.inner.Family()
}

// DetectText admits the call if the hourly budget allows, without blocking:
// a scan must fall through to the next provider rather than wait out a quota.
func (r *RateLimitedProvider) DetectText(ctx context.Context, images [][]byte) (string, error) {
	if !r.limiter.Allow() {
		return "", NewError(RateLimited, r.inner.Name(), eris.New("hourly request ceiling reached"))
	}
	return r.inner.DetectText(ctx, images)
}
