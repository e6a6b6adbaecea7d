package logentries

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/keyshare/internal/dbx"
	"github.com/dmitrijs2005/keyshare/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Append(ctx context.Context, e *models.LogEntry) error {
	query :=
		`INSERT INTO log_entries (account_id, event, param, time)
         VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	var param sql.NullInt64
	if e.Param != nil {
		param = sql.NullInt64{Int64: *e.Param, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query, e.AccountID, string(e.Event), param, e.Time).Scan(&e.ID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) ListAtOrBefore(ctx context.Context, accountID string, ts int64, limit int) ([]models.LogEntry, error) {
	query :=
		`SELECT id, account_id, event, param, time FROM log_entries
		 WHERE account_id = $1 AND time <= $2
		 ORDER BY time DESC, id DESC
		 LIMIT $3
		 `
	return r.list(ctx, query, accountID, ts, limit)
}

func (r *PostgresRepository) ListAfter(ctx context.Context, accountID string, ts int64, limit int) ([]models.LogEntry, error) {
	query :=
		`SELECT id, account_id, event, param, time FROM log_entries
		 WHERE account_id = $1 AND time > $2
		 ORDER BY time ASC, id ASC
		 LIMIT $3
		 `
	return r.list(ctx, query, accountID, ts, limit)
}

func (r *PostgresRepository) list(ctx context.Context, query string, accountID string, ts int64, limit int) ([]models.LogEntry, error) {
	rows, err := r.db.QueryContext(ctx, query, accountID, ts, limit)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	var entries []models.LogEntry
	for rows.Next() {
		var (
			e     models.LogEntry
			event string
			param sql.NullInt64
		)
		if err := rows.Scan(&e.ID, &e.AccountID, &event, &param, &e.Time); err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		e.Event = models.EventType(event)
		if param.Valid {
			v := param.Int64
			e.Param = &v
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return entries, nil
}

func (r *PostgresRepository) DeleteByAccount(ctx context.Context, accountID string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM log_entries WHERE account_id = $1`, accountID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}
