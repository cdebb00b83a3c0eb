package jobs

import (
	"context"
	"log/slog"

	"thoughtburn/internal/analytics"
)

// RetentionJob drops analytics buckets older than the retention period.
type RetentionJob struct {
	store         *analytics.Store
	logger        *slog.Logger
	retentionDays int
}

func NewRetentionJob(store *analytics.Store, logger *slog.Logger, retentionDays int) *RetentionJob {
	return &RetentionJob{
		store:         store,
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Run prunes buckets whose day or week lies entirely before now minus the
// retention period. It does nothing when retention is disabled.
func (j *RetentionJob) Run(ctx context.Context) error {
	if j.retentionDays <= 0 {
		return nil
	}

	cutoff := j.store.Deriver().Now().AddDate(0, 0, -j.retentionDays)

	j.logger.Info("Starting analytics retention",
		slog.Int("retention_days", j.retentionDays),
		slog.Time("cutoff_date", cutoff))

	removed, err := j.store.PruneBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	if removed == 0 {
		j.logger.Debug("No analytics buckets to prune")
		return nil
	}

	j.logger.Info("Pruned old analytics buckets",
		slog.Int("removed_count", removed),
		slog.Int("retention_days", j.retentionDays))
	return nil
}
