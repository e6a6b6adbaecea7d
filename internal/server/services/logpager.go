package services

import (
	"context"

	"github.com/dmitrijs2005/keyshare/internal/dbx"
	"github.com/dmitrijs2005/keyshare/internal/server/models"
	"github.com/dmitrijs2005/keyshare/internal/server/repositories/repomanager"
)

// LogPageSize is the number of entries on one log page.
const LogPageSize = 10

// LogPager pages through an account's audit log newest first, using
// timestamps as cursors.
type LogPager struct {
	db          dbx.DBTX
	repomanager repomanager.RepositoryManager
}

// NewLogPager returns a pager reading log entries through m.
func NewLogPager(db dbx.DBTX, m repomanager.RepositoryManager) *LogPager {
	return &LogPager{db: db, repomanager: m}
}

// Page returns up to LogPageSize entries with time <= before. Next is the
// cursor of the following (older) page and Prev the cursor of the newest
// page that ends just above this one.
func (p *LogPager) Page(ctx context.Context, accountID string, before int64) (*models.LogPage, error) {
	return pageFrom(ctx, p.repomanager.LogEntries(p.db), accountID, before)
}

type logLister interface {
	ListAtOrBefore(ctx context.Context, accountID string, ts int64, limit int) ([]models.LogEntry, error)
	ListAfter(ctx context.Context, accountID string, ts int64, limit int) ([]models.LogEntry, error)
}

func pageFrom(ctx context.Context, repo logLister, accountID string, before int64) (*models.LogPage, error) {
	older, err := repo.ListAtOrBefore(ctx, accountID, before, LogPageSize+1)
	if err != nil {
		return nil, err
	}
	newer, err := repo.ListAfter(ctx, accountID, before, LogPageSize)
	if err != nil {
		return nil, err
	}

	page := &models.LogPage{Entries: older}
	if len(older) > LogPageSize {
		next := older[LogPageSize].Time
		page.Next = &next
		page.Entries = older[:LogPageSize]
	}
	if len(newer) > 0 {
		prev := newer[len(newer)-1].Time
		page.Prev = &prev
	}
	if page.Entries == nil {
		page.Entries = []models.LogEntry{}
	}

	return page, nil
}
