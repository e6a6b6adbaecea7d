package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"

	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dmitrijs2005/keyshare/internal/common"
	"github.com/dmitrijs2005/keyshare/internal/dbx"
	"github.com/dmitrijs2005/keyshare/internal/server/models"
)

const uniqueViolation = "23505"

const selectColumns = `SELECT id, username, password_hash, pin_hash, salt,
		pin_counter, pin_blocked_until, keyshare, public_key,
		session_token, last_seen, enrolled, enabled, email_issued, created_at
		 FROM accounts`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, a *models.Account) error {
	query :=
		`INSERT INTO accounts (id, username, password_hash, pin_hash, salt,
		 keyshare, public_key, enrolled, enabled, email_issued, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		 `

	_, err := r.db.ExecContext(ctx, query,
		a.ID, a.Username, a.PasswordHash, a.PinHash, a.Salt,
		a.Keyshare.Text(16), a.PublicKey, a.Enrolled, a.Enabled, a.EmailIssued, a.CreatedAt)

	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return common.ErrorAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.get(ctx, selectColumns+` WHERE id = $1`, id)
}

func (r *PostgresRepository) GetByUsername(ctx context.Context, username string) (*models.Account, error) {
	return r.get(ctx, selectColumns+` WHERE username = $1`, username)
}

func (r *PostgresRepository) GetForUpdate(ctx context.Context, id string) (*models.Account, error) {
	return r.get(ctx, selectColumns+` WHERE id = $1 FOR UPDATE`, id)
}

func (r *PostgresRepository) get(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	var keyshare string

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.Username, &a.PasswordHash, &a.PinHash, &a.Salt,
		&a.Pin.Counter, &a.Pin.BlockedUntil, &keyshare, &a.PublicKey,
		&a.Session.Token, &a.Session.LastSeen, &a.Enrolled, &a.Enabled, &a.EmailIssued, &a.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	k, ok := new(big.Int).SetString(keyshare, 16)
	if !ok {
		return nil, fmt.Errorf("db error: malformed keyshare for account %s", a.ID)
	}
	a.Keyshare = k

	return a, nil
}

// Update writes every mutable field of the account.
func (r *PostgresRepository) Update(ctx context.Context, a *models.Account) error {
	query :=
		`UPDATE accounts SET pin_counter = $2, pin_blocked_until = $3,
		 session_token = $4, last_seen = $5,
		 enrolled = $6, enabled = $7, email_issued = $8
		 WHERE id = $1
		 `

	res, err := r.db.ExecContext(ctx, query,
		a.ID, a.Pin.Counter, a.Pin.BlockedUntil,
		a.Session.Token, a.Session.LastSeen,
		a.Enrolled, a.Enabled, a.EmailIssued)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectOneRow(res)
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	return expectOneRow(res)
}

func expectOneRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}
	return nil
}
