package cache

import "github.com/rs/zerolog"

// SweepJob purges expired snapshots on a schedule.
type SweepJob struct {
	cache *SnapshotCache
	log   zerolog.Logger
}

// NewSweepJob creates a SweepJob for c.
func NewSweepJob(c *SnapshotCache, log zerolog.Logger) *SweepJob {
	return &SweepJob{
		cache: c,
		log:   log.With().Str("component", "cache").Logger(),
	}
}

// Name implements scheduler.Job.
func (j *SweepJob) Name() string {
	return "snapshot-cache-sweep"
}

// Run implements scheduler.Job.
func (j *SweepJob) Run() error {
	removed := j.cache.Purge()
	j.log.Debug().
		Int("removed", removed).
		Int("remaining", j.cache.Len()).
		Msg("snapshot cache swept")
	return nil
}
