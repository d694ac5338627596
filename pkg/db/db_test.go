package db_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"turnvoice/pkg/db"
)

func TestDB(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "db_test.db")

	d, err := db.Init(path)
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if d == nil {
		t.Fatal("Init() returned nil DB")
	}
	defer d.Close()

	// Re-running migrations on an existing schema is a no-op
	d2, err := db.Init(filepath.Join(tempDir, "db_test.db"))
	if err != nil {
		t.Fatalf("second Init() failed: %v", err)
	}
	d2.Close()
}

func TestInitFailures(t *testing.T) {
	tempDir := t.TempDir()

	// A directory cannot be opened as a database file
	d, err := db.Init(tempDir)
	if err == nil {
		d.Close()
		t.Fatal("Init() on a directory succeeded")
	}
	if d != nil {
		t.Fatal("Init() returned a DB alongside an error")
	}

	// A file that is not SQLite fails once the first statement runs
	junk := []byte("definitely not an sqlite database, just some bytes on disk")
	path := filepath.Join(tempDir, "junk.db")
	if err := os.WriteFile(path, bytes.Repeat(junk, 100), 0o644); err != nil {
		t.Fatalf("write junk: %v", err)
	}
	d, err = db.Init(path)
	if err == nil {
		d.Close()
		t.Fatal("Init() on a non-database file succeeded")
	}
	if d != nil {
		t.Fatal("Init() returned a DB alongside an error")
	}

	// The handle was released, so the file can be replaced and opened again
	if err := os.Remove(path); err != nil {
		t.Fatalf("remove junk: %v", err)
	}
	d, err = db.Init(path)
	if err != nil {
		t.Fatalf("Init() after a failed attempt: %v", err)
	}
	d.Close()
}

func TestPruneAnnouncements(t *testing.T) {
	d, err := db.Init(filepath.Join(t.TempDir(), "prune.db"))
	if err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	defer d.Close()

	old := time.Now().Add(-48 * time.Hour).UTC().Format("2006-01-02 15:04:05")
	if _, err := d.Exec(`INSERT INTO announcements (session_id, turn_id, stage, created_at) VALUES ('s', 't1', 'lead', ?)`, old); err != nil {
		t.Fatalf("insert old: %v", err)
	}
	if _, err := d.Exec(`INSERT INTO announcements (session_id, turn_id, stage) VALUES ('s', 't2', 'lead')`); err != nil {
		t.Fatalf("insert new: %v", err)
	}

	n, err := d.PruneAnnouncements(24 * time.Hour)
	if err != nil {
		t.Fatalf("PruneAnnouncements failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned row, got %d", n)
	}

	var left int
	if err := d.QueryRow("SELECT count(*) FROM announcements").Scan(&left); err != nil {
		t.Fatalf("count: %v", err)
	}
	if left != 1 {
		t.Errorf("expected 1 remaining row, got %d", left)
	}
}
