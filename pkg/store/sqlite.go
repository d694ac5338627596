package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"turnvoice/pkg/db"
	"turnvoice/pkg/model"
)

// timeLayout matches SQLite CURRENT_TIMESTAMP so pruning can compare strings.
const timeLayout = "2006-01-02 15:04:05"

// Store defines the repository interface.
// It composes all sub-interfaces for full store access.
// Consumers should depend on specific sub-interfaces when possible.
type Store interface {
	AnnouncementStore
	StateStore

	// Close closes the store connection.
	Close() error
}

// SQLiteStore implements Store.
type SQLiteStore struct {
	db *db.DB
}

// NewSQLiteStore creates a new store.
func NewSQLiteStore(db *db.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// --- Announcements ---

func (s *SQLiteStore) SaveAnnouncement(ctx context.Context, a *model.Announcement) error {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO announcements (session_id, turn_id, stage, distance_units, length_unit, direction, exit_num, use_then, distance_to_turn_m, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		a.SessionID, a.TurnID, a.Stage, a.DistanceUnits, a.LengthUnit, a.Direction, a.ExitNum, a.UseThen,
		a.DistanceToTurnM, a.CreatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("failed to save announcement: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil {
		a.ID = id
	}
	return nil
}

func (s *SQLiteStore) ListAnnouncements(ctx context.Context, sessionID string) ([]*model.Announcement, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, session_id, turn_id, stage, distance_units, length_unit, direction, exit_num, use_then, distance_to_turn_m, created_at
		 FROM announcements WHERE session_id = ? ORDER BY id`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list announcements: %w", err)
	}
	defer rows.Close()

	var out []*model.Announcement
	for rows.Next() {
		var a model.Announcement
		var lengthUnit, direction sql.NullString
		var distToTurn sql.NullFloat64
		var createdAt sql.NullTime
		if err := rows.Scan(
			&a.ID, &a.SessionID, &a.TurnID, &a.Stage, &a.DistanceUnits,
			&lengthUnit, &direction, &a.ExitNum, &a.UseThen, &distToTurn, &createdAt,
		); err != nil {
			return nil, err
		}
		a.LengthUnit = lengthUnit.String
		a.Direction = direction.String
		a.DistanceToTurnM = distToTurn.Float64
		if createdAt.Valid {
			a.CreatedAt = createdAt.Time
		}
		out = append(out, &a)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) CountAnnouncements(ctx context.Context, sessionID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT count(*) FROM announcements WHERE session_id = ?", sessionID).Scan(&n)
	return n, err
}

// --- State ---

func (s *SQLiteStore) GetState(ctx context.Context, key string) (string, bool) {
	var val sql.NullString
	err := s.db.QueryRowContext(ctx, "SELECT value FROM persistent_state WHERE key = ?", key).Scan(&val)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Store: failed to read state", "key", key, "error", err)
		}
		return "", false
	}
	return val.String, true
}

func (s *SQLiteStore) SetState(ctx context.Context, key, val string) error {
	query := `INSERT OR REPLACE INTO persistent_state (key, value, created_at) VALUES (?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, key, val, time.Now().UTC().Format(timeLayout))
	return err
}

func (s *SQLiteStore) DeleteState(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM persistent_state WHERE key = ?", key)
	return err
}
