package batch

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/bobmcallan/valuescope/internal/common"
	"github.com/bobmcallan/valuescope/internal/interfaces"
)

// FixedDelay waits a constant duration on every call.
type FixedDelay struct {
	delay time.Duration
}

// NewFixedDelay creates a pacer that sleeps d between provider calls.
func NewFixedDelay(d time.Duration) *FixedDelay {
	return &FixedDelay{delay: d}
}

// Wait blocks for the configured delay or until ctx is done.
func (p *FixedDelay) Wait(ctx context.Context) error {
	if p.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(p.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TokenBucket allows bursts up to burst calls, refilled at rps per second.
type TokenBucket struct {
	limiter *rate.Limiter
}

// NewTokenBucket creates a token-bucket pacer.
func NewTokenBucket(rps float64, burst int) *TokenBucket {
	if burst < 1 {
		burst = 1
	}
	return &TokenBucket{limiter: rate.NewLimiter(rate.Limit(rps), burst)}
}

// Wait blocks until a token is available or ctx is done.
func (p *TokenBucket) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}

// NoDelay never waits.
type NoDelay struct{}

// Wait returns immediately unless ctx is already done.
func (NoDelay) Wait(ctx context.Context) error {
	return ctx.Err()
}

// NewPacerFromConfig builds the pacer selected by pacing.mode.
func NewPacerFromConfig(cfg common.PacingConfig) (interfaces.Pacer, error) {
	switch cfg.Mode {
	case "", "fixed":
		return NewFixedDelay(cfg.GetDelay()), nil
	case "token_bucket":
		if cfg.Rate <= 0 {
			return nil, fmt.Errorf("token_bucket pacing requires a positive rate, got %v", cfg.Rate)
		}
		return NewTokenBucket(cfg.Rate, cfg.Burst), nil
	case "none":
		return NoDelay{}, nil
	default:
		return nil, fmt.Errorf("unknown pacing mode %q", cfg.Mode)
	}
}

var (
	_ interfaces.Pacer = (*FixedDelay)(nil)
	_ interfaces.Pacer = (*TokenBucket)(nil)
	_ interfaces.Pacer = NoDelay{}
)
