package maintenance

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"turnvoice/pkg/db"
	"turnvoice/pkg/store"
)

func TestMaintenance(t *testing.T) {
	tempDir := t.TempDir()
	d, err := db.Init(filepath.Join(tempDir, "maint_test.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	s := store.NewSQLiteStore(d)
	ctx := context.Background()

	// 40 days old
	oldTS := time.Now().Add(-40 * 24 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	if _, err := d.Exec("INSERT INTO announcements (session_id, turn_id, stage, created_at) VALUES ('s', 'old', 'lead', ?)", oldTS); err != nil {
		t.Fatal(err)
	}
	// 1 day old
	newTS := time.Now().Add(-24 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	if _, err := d.Exec("INSERT INTO announcements (session_id, turn_id, stage, created_at) VALUES ('s', 'new', 'lead', ?)", newTS); err != nil {
		t.Fatal(err)
	}

	if err := Run(ctx, s, d, 30*24*time.Hour); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	var count int
	if err := d.QueryRow("SELECT count(*) FROM announcements").Scan(&count); err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Errorf("expected 1 announcement after prune, got %d", count)
	}

	if _, ok := s.GetState(ctx, lastPruneStateKey); !ok {
		t.Error("expected prune time to be recorded")
	}
}

func TestPruneAnnouncements_Interval(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "interval.db"))
	if err != nil {
		t.Fatal(err)
	}
	defer d.Close()

	s := store.NewSQLiteStore(d)
	ctx := context.Background()
	now := time.Now()

	if _, err := pruneAnnouncements(ctx, s, d, time.Hour, now); err != nil {
		t.Fatalf("first prune: %v", err)
	}

	oldTS := now.Add(-48 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	if _, err := d.Exec("INSERT INTO announcements (session_id, turn_id, stage, created_at) VALUES ('s', 'old', 'lead', ?)", oldTS); err != nil {
		t.Fatal(err)
	}

	// Within the interval: skipped
	n, err := pruneAnnouncements(ctx, s, d, time.Hour, now.Add(time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("expected skipped prune, got n=%d err=%v", n, err)
	}

	// After the interval: runs
	n, err = pruneAnnouncements(ctx, s, d, time.Hour, now.Add(25*time.Hour))
	if err != nil || n != 1 {
		t.Fatalf("expected 1 pruned row, got n=%d err=%v", n, err)
	}

	// Zero retention disables pruning
	n, err = pruneAnnouncements(ctx, s, d, 0, now.Add(100*time.Hour))
	if err != nil || n != 0 {
		t.Fatalf("expected disabled prune, got n=%d err=%v", n, err)
	}
}
