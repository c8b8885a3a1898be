// Package reaper removes expired broadcasts in the background. Queries treat
// ExpiresAt as the source of truth for "active", so a broadcast may linger as
// expired-but-unpurged for up to one interval without being visible anywhere.
package reaper

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"hyperlens/internal/domain"
)

// DefaultInterval is how often the reaper sweeps when no interval is configured.
const DefaultInterval = 10 * time.Minute

// Reaper periodically deletes broadcasts whose expiry has passed.
type Reaper struct {
	broadcasts domain.BroadcastRepository
	interval   time.Duration
	log        zerolog.Logger
}

func New(broadcasts domain.BroadcastRepository, interval time.Duration, log zerolog.Logger) *Reaper {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Reaper{
		broadcasts: broadcasts,
		interval:   interval,
		log:        log,
	}
}

// Run sweeps once immediately, then on every interval tick until the context
// is canceled. Failures are logged and swallowed; a reaper fault never
// reaches the serving path.
func (r *Reaper) Run(ctx context.Context) {
	r.log.Info().Dur("interval", r.interval).Msg("broadcast cleanup started")
	r.Sweep(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			r.log.Info().Msg("broadcast cleanup stopped")
			return
		case <-ticker.C:
			r.Sweep(ctx)
		}
	}
}

// Sweep deletes every broadcast expired at the time of the call. Deleting
// zero rows is not an error.
func (r *Reaper) Sweep(ctx context.Context) {
	deleted, err := r.broadcasts.DeleteExpired(ctx, time.Now().UTC())
	if err != nil {
		r.log.Error().Err(err).Msg("broadcast cleanup failed")
		return
	}
	if deleted > 0 {
		r.log.Info().Int64("deleted", deleted).Msg("cleaned expired broadcasts")
	}
}
