package maintenance

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"turnvoice/pkg/db"
	"turnvoice/pkg/store"
)

const lastPruneStateKey = "announcements_last_prune"

// pruneInterval is the minimum time between two journal prunes.
const pruneInterval = 24 * time.Hour

// Run executes maintenance tasks. Failures are logged, not returned, so
// startup is never blocked by housekeeping. It blocks until completion.
func Run(ctx context.Context, s store.StateStore, d *db.DB, retention time.Duration) error {
	slog.Info("Starting database maintenance...")

	pruned, err := pruneAnnouncements(ctx, s, d, retention, time.Now())
	if err != nil {
		slog.Error("Announcement pruning failed", "error", err)
	} else {
		slog.Info("Announcement pruning completed", "removed", pruned)
	}

	return nil
}

// pruneAnnouncements drops journal rows older than retention, at most once per pruneInterval.
func pruneAnnouncements(ctx context.Context, s store.StateStore, d *db.DB, retention time.Duration, now time.Time) (int64, error) {
	if retention <= 0 {
		return 0, nil
	}

	if last, ok := s.GetState(ctx, lastPruneStateKey); ok {
		if ts, err := time.Parse(time.RFC3339, last); err == nil && now.Sub(ts) < pruneInterval {
			return 0, nil
		}
	}

	n, err := d.PruneAnnouncements(retention)
	if err != nil {
		return 0, fmt.Errorf("failed to prune announcements: %w", err)
	}

	if err := s.SetState(ctx, lastPruneStateKey, now.UTC().Format(time.RFC3339)); err != nil {
		return n, fmt.Errorf("failed to record prune time: %w", err)
	}
	return n, nil
}
