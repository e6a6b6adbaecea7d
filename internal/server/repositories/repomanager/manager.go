package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/keyshare/internal/dbx"
	"github.com/dmitrijs2005/keyshare/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/keyshare/internal/server/repositories/logentries"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	LogEntries(db dbx.DBTX) logentries.Repository
}
