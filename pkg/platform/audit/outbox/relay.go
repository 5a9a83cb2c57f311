// Package outbox relays committed compliance events from the outbox table
// to their downstream sink.
package outbox

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	audit "volunteerhub/pkg/platform/audit"
)

const (
	defaultInterval  = time.Second
	defaultBatchSize = 100
	finalDrainWait   = 5 * time.Second
)

// Source is the outbox as seen by the relay.
type Source interface {
	Pending(ctx context.Context, limit int) ([]audit.Event, error)
	MarkPublished(ctx context.Context, ids []uuid.UUID, at time.Time) error
}

type Option func(*Relay)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Relay) {
		r.logger = logger
	}
}

func WithInterval(d time.Duration) Option {
	return func(r *Relay) {
		if d > 0 {
			r.interval = d
		}
	}
}

func WithBatchSize(n int) Option {
	return func(r *Relay) {
		if n > 0 {
			r.batchSize = n
		}
	}
}

// Relay copies pending outbox rows to sink in order. Delivery is at least
// once; consumers dedupe on Event.ID.
type Relay struct {
	source    Source
	sink      audit.Store
	logger    *slog.Logger
	interval  time.Duration
	batchSize int
	now       func() time.Time
}

func NewRelay(source Source, sink audit.Store, opts ...Option) *Relay {
	r := &Relay{
		source:    source,
		sink:      sink,
		logger:    slog.Default(),
		interval:  defaultInterval,
		batchSize: defaultBatchSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run polls until ctx is done, then makes one last pass so rows committed
// during shutdown are not left behind.
func (r *Relay) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), finalDrainWait)
			r.drain(drainCtx)
			cancel()
			return nil
		case <-ticker.C:
			r.drain(ctx)
		}
	}
}

func (r *Relay) drain(ctx context.Context) {
	for {
		n, err := r.RelayOnce(ctx)
		if err != nil {
			r.logger.ErrorContext(ctx, "outbox relay failed", "error", err)
			return
		}
		if n < r.batchSize {
			return
		}
	}
}

// RelayOnce publishes one batch and returns how many events reached the sink.
// It stops at the first sink error so a user's events never overtake each
// other; the failed event and the rest of the batch are retried next pass.
func (r *Relay) RelayOnce(ctx context.Context) (int, error) {
	batch, err := r.source.Pending(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("load pending outbox: %w", err)
	}
	sent := make([]uuid.UUID, 0, len(batch))
	var sinkErr error
	for _, event := range batch {
		if err := r.sink.Append(ctx, event); err != nil {
			sinkErr = fmt.Errorf("publish %s %s: %w", event.Action, event.ID, err)
			break
		}
		sent = append(sent, event.ID)
	}
	if len(sent) > 0 {
		if err := r.source.MarkPublished(ctx, sent, r.now()); err != nil {
			return 0, fmt.Errorf("mark outbox published: %w", err)
		}
	}
	return len(sent), sinkErr
}
