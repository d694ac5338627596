package store

import (
	"context"

	"turnvoice/pkg/model"
)

// AnnouncementStore journals emitted turn notifications.
type AnnouncementStore interface {
	SaveAnnouncement(ctx context.Context, a *model.Announcement) error
	ListAnnouncements(ctx context.Context, sessionID string) ([]*model.Announcement, error)
	CountAnnouncements(ctx context.Context, sessionID string) (int, error)
}

// StateStore handles persistent application state.
type StateStore interface {
	GetState(ctx context.Context, key string) (string, bool)
	SetState(ctx context.Context, key, val string) error
	DeleteState(ctx context.Context, key string) error
}
