package worker

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/internal/cache"
)

// Warmer rebuilds the geography snapshot and refreshes its cache.
type Warmer interface {
	Warm(ctx context.Context) (*cache.GeographySnapshot, error)
}

// GeographyWarmWorker keeps the cached geography tree fresh so requests do
// not pay for rebuilding it after the TTL expires.
type GeographyWarmWorker struct {
	warmer   Warmer
	interval time.Duration
}

// NewGeographyWarmWorker constructs a GeographyWarmWorker.
func NewGeographyWarmWorker(warmer Warmer, interval time.Duration) *GeographyWarmWorker {
	return &GeographyWarmWorker{
		warmer:   warmer,
		interval: interval,
	}
}

// Start warms immediately, then on every tick until ctx is cancelled.
func (w *GeographyWarmWorker) Start(ctx context.Context) {
	log.Info().Dur("interval", w.interval).Msg("Starting geography warm worker")

	w.run(ctx)
	if w.interval <= 0 {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			w.run(ctx)
		case <-ctx.Done():
			log.Info().Msg("Geography warm worker stopped")
			return
		}
	}
}

func (w *GeographyWarmWorker) run(ctx context.Context) {
	start := time.Now()
	snap, err := w.warmer.Warm(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to warm geography cache")
		return
	}

	log.Info().
		Int("provinces", len(snap.Provinces)).
		Int("cities", len(snap.Cities)).
		Int("districts", len(snap.Districts)).
		Dur("duration", time.Since(start)).
		Msg("Geography cache warmed")
}
