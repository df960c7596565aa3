package chain

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/payrollz/payrollz-backend/pkg/config"
)

// Retrier re-runs read-only RPC calls that fail with transient infrastructure
// errors. Each attempt gets its own hard deadline. Writes must never go
// through here: a timed-out transfer may still land on chain, so retrying it
// risks paying twice.
type Retrier struct {
	retries    int
	baseDelay  time.Duration
	perAttempt time.Duration
}

// NewRetrier builds a retrier from chain configuration.
func NewRetrier(cfg config.ChainConfig) *Retrier {
	retries := cfg.ReadRetries
	if retries < 0 {
		retries = 0
	}
	baseDelay := cfg.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 350 * time.Millisecond
	}
	perAttempt := cfg.ReadTimeout
	if perAttempt <= 0 {
		perAttempt = 8 * time.Second
	}
	return &Retrier{
		retries:    retries,
		baseDelay:  baseDelay,
		perAttempt: perAttempt,
	}
}

// Do runs fn with per-attempt timeouts, retrying transient failures with
// exponential backoff. Permanent errors abort immediately.
func (r *Retrier) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempt := func() error {
		attemptCtx, cancel := context.WithTimeout(ctx, r.perAttempt)
		defer cancel()
		err := fn(attemptCtx)
		if err == nil {
			return nil
		}
		if !IsTransient(err) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.baseDelay
	b.MaxElapsedTime = 0

	return backoff.Retry(attempt, backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.retries)), ctx))
}

// PerAttemptTimeout exposes the configured single-attempt deadline.
func (r *Retrier) PerAttemptTimeout() time.Duration {
	return r.perAttempt
}

var transientMarkers = []string{
	"timeout",
	"timed out",
	"deadline exceeded",
	"network",
	"socket",
	"connection",
	"rate",
	"429",
	"502",
	"503",
	"504",
	"failed to detect",
}

// IsTransient reports whether the error looks like a passing infrastructure
// fault rather than a definitive rejection.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range transientMarkers {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// IsTimeout reports whether the error is specifically a deadline expiry. The
// distinction matters after a transfer submission: a timeout means the
// transaction may have landed, while other transient errors mean it did not.
func IsTimeout(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "timed out")
}
