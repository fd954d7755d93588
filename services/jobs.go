package services

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"spark-feed/config"
	"spark-feed/logging"
	"spark-feed/metrics"
)

// Scheduler runs periodic maintenance: expiring spots and purging the
// narrative cache
type Scheduler struct {
	cron     *cron.Cron
	expirer  SpotExpirer
	narrator *DigestNarrator
	timeout  time.Duration
	now      func() time.Time
}

// NewScheduler registers the maintenance jobs. narrator may be nil, in which
// case no cache purge is scheduled.
func NewScheduler(cfg config.JobsConfig, expirer SpotExpirer, narrator *DigestNarrator, timeout time.Duration) (*Scheduler, error) {
	s := &Scheduler{
		cron:     cron.New(),
		expirer:  expirer,
		narrator: narrator,
		timeout:  timeout,
		now:      time.Now,
	}

	if _, err := s.cron.AddFunc(cfg.ExpirySweepSpec, s.runExpirySweep); err != nil {
		return nil, fmt.Errorf("invalid expiry sweep schedule %q: %w", cfg.ExpirySweepSpec, err)
	}
	if narrator != nil && cfg.CachePurgeSpec != "" {
		if _, err := s.cron.AddFunc(cfg.CachePurgeSpec, func() { narrator.PurgeCache() }); err != nil {
			return nil, fmt.Errorf("invalid cache purge schedule %q: %w", cfg.CachePurgeSpec, err)
		}
	}
	return s, nil
}

// Start runs the scheduler in the background
func (s *Scheduler) Start() {
	s.cron.Start()
	logging.Info().Int("jobs", len(s.cron.Entries())).Msg("Scheduler started")
}

// Stop stops scheduling and waits for running jobs until ctx is done
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		logging.Warn().Msg("Scheduler stop timed out with jobs still running")
	}
}

func (s *Scheduler) runExpirySweep() {
	ctx := context.Background()
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	if _, err := ExpireSpots(ctx, s.expirer, s.now()); err != nil {
		logging.Error().Err(err).Msg("Spot expiry sweep failed")
	}
}

// ExpireSpots moves active spots whose expiry is before now to expired
func ExpireSpots(ctx context.Context, expirer SpotExpirer, now time.Time) (int64, error) {
	n, err := expirer.ExpireSpots(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire spots: %w", err)
	}
	if n > 0 {
		metrics.SpotsExpiredTotal.Add(float64(n))
		logging.Info().Int64("expired", n).Msg("Expired spots")
	}
	return n, nil
}
