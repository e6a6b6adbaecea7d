package services

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/keyshare/internal/common"
	"github.com/dmitrijs2005/keyshare/internal/dbx"
	"github.com/dmitrijs2005/keyshare/internal/server/models"
	"github.com/dmitrijs2005/keyshare/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/keyshare/internal/server/repositories/logentries"
)

// newTxDB returns an empty in-memory database. The fakes below ignore it;
// it only gives dbx.WithTx something to begin and commit.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := sql.Open("sqlite", "file:"+name+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// memStore keeps accounts by value, so changes made by a failed transaction
// never reach it.
type memStore struct {
	mu       sync.Mutex
	accounts map[string]models.Account
	logs     []models.LogEntry
	nextLog  int64

	updateErr error
	appendErr error
}

func newMemStore() *memStore {
	return &memStore{accounts: make(map[string]models.Account)}
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memStore) Accounts(dbx.DBTX) accounts.Repository        { return (*fakeAccounts)(m) }
func (m *memStore) LogEntries(dbx.DBTX) logentries.Repository    { return (*fakeLogs)(m) }

func (m *memStore) logsOf(accountID string) []models.LogEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.LogEntry
	for _, e := range m.logs {
		if e.AccountID == accountID {
			out = append(out, e)
		}
	}
	return out
}

func (m *memStore) account(id string) models.Account {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.accounts[id]
}

type fakeAccounts memStore

func (f *fakeAccounts) Create(_ context.Context, a *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.accounts {
		if existing.Username == a.Username {
			return common.ErrorAlreadyExists
		}
	}
	f.accounts[a.ID] = *a
	return nil
}

func (f *fakeAccounts) GetByID(_ context.Context, id string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &a, nil
}

func (f *fakeAccounts) GetByUsername(_ context.Context, username string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Username == username {
			return &a, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAccounts) GetForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeAccounts) Update(_ context.Context, a *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.accounts[a.ID]; !ok {
		return common.ErrorNotFound
	}
	f.accounts[a.ID] = *a
	return nil
}

func (f *fakeAccounts) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.accounts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(f.accounts, id)
	return nil
}

type fakeLogs memStore

func (f *fakeLogs) Append(_ context.Context, e *models.LogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return f.appendErr
	}
	f.nextLog++
	e.ID = f.nextLog
	f.logs = append(f.logs, *e)
	return nil
}

func (f *fakeLogs) ListAtOrBefore(_ context.Context, accountID string, ts int64, limit int) ([]models.LogEntry, error) {
	return f.list(accountID, limit, true, func(e models.LogEntry) bool { return e.Time <= ts })
}

func (f *fakeLogs) ListAfter(_ context.Context, accountID string, ts int64, limit int) ([]models.LogEntry, error) {
	return f.list(accountID, limit, false, func(e models.LogEntry) bool { return e.Time > ts })
}

func (f *fakeLogs) list(accountID string, limit int, desc bool, keep func(models.LogEntry) bool) ([]models.LogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var out []models.LogEntry
	for _, e := range f.logs {
		if e.AccountID == accountID && keep(e) {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		less := out[i].Time < out[j].Time || (out[i].Time == out[j].Time && out[i].ID < out[j].ID)
		if desc {
			return !less
		}
		return less
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeLogs) DeleteByAccount(_ context.Context, accountID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.logs[:0]
	for _, e := range f.logs {
		if e.AccountID != accountID {
			kept = append(kept, e)
		}
	}
	f.logs = kept
	return nil
}

var errBoom = errors.New("boom")
