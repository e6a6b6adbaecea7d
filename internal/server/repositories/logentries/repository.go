package logentries

import (
	"context"

	"github.com/dmitrijs2005/keyshare/internal/server/models"
)

type Repository interface {
	Append(ctx context.Context, entry *models.LogEntry) error
	// ListAtOrBefore returns up to limit entries with time <= ts, newest
	// first.
	ListAtOrBefore(ctx context.Context, accountID string, ts int64, limit int) ([]models.LogEntry, error)
	// ListAfter returns up to limit entries with time > ts, oldest first.
	ListAfter(ctx context.Context, accountID string, ts int64, limit int) ([]models.LogEntry, error)
	DeleteByAccount(ctx context.Context, accountID string) error
}
