package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/Skotchmaster/bakery_shop/pkg/events"
	"github.com/Skotchmaster/bakery_shop/pkg/logging"
	"github.com/Skotchmaster/bakery_shop/pkg/metrics"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/domain"
	"github.com/Skotchmaster/bakery_shop/services/fulfillment/internal/repo"
)

const (
	defaultAttempts = 3
	baseBackoff     = 50 * time.Millisecond
	maxBackoff      = time.Second
)

// Runner executes units and retries the ones that failed transiently.
// Units are rebuilt for every attempt so captured state starts fresh.
type Runner struct {
	Repo        *repo.GormRepo
	MaxAttempts int
}

func (r Runner) Run(ctx context.Context, build func() *repo.Unit) error {
	attempts := r.MaxAttempts
	if attempts <= 0 {
		attempts = defaultAttempts
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		unit := build()
		err = r.Repo.Execute(ctx, unit)
		if err == nil || !domain.Retryable(err) || attempt == attempts {
			return err
		}

		metrics.RecordRetry(unit.Name)
		wait := backoff(attempt)
		logging.FromContext(ctx).Warn("unit_retry", "unit", unit.Name, "attempt", attempt, "wait_ms", wait.Milliseconds(), "error", err)

		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: %v", domain.ErrUnavailable, ctx.Err())
		case <-time.After(wait):
		}
	}
	return err
}

func backoff(attempt int) time.Duration {
	d := baseBackoff << (attempt - 1)
	if d > maxBackoff {
		d = maxBackoff
	}
	jitter := time.Duration(rand.Int64N(int64(d) / 2))
	return d/2 + jitter
}

// publish never fails the operation; the unit is already committed.
func publish(ctx context.Context, p events.Publisher, topic, key, eventType string, payload any) {
	if p == nil {
		return
	}
	if err := p.Publish(ctx, topic, key, events.NewEnvelope(eventType, payload)); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "topic", topic, "type", eventType, "error", err)
	}
}

func record(op string, err error) {
	metrics.RecordOperation(op, err == nil)
}
