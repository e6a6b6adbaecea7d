// Package services contains server-side business logic. AccountService
// drives the account lifecycle: registration, login sessions, PIN checks
// with lockout, and the commitment/response exchange that uses the
// account's key share.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"time"

	"github.com/dmitrijs2005/keyshare/internal/common"
	"github.com/dmitrijs2005/keyshare/internal/dbx"
	"github.com/dmitrijs2005/keyshare/internal/logging"
	"github.com/dmitrijs2005/keyshare/internal/server/auth"
	"github.com/dmitrijs2005/keyshare/internal/server/backoff"
	"github.com/dmitrijs2005/keyshare/internal/server/config"
	"github.com/dmitrijs2005/keyshare/internal/server/models"
	"github.com/dmitrijs2005/keyshare/internal/server/proofs"
	"github.com/dmitrijs2005/keyshare/internal/server/repositories/repomanager"
)

// PinResult is the outcome of a PIN check. Token is a PIN token and is
// only set when the PIN was correct.
type PinResult struct {
	backoff.Outcome
	Token string
}

type AccountService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	registry    *proofs.Registry
	factory     proofs.Factory
	pager       *LogPager
	logger      logging.Logger

	jwtSecret            []byte
	sessionTimeout       int
	checkEnrolled        bool
	sessionTokenValidity time.Duration
	pinTokenValidity     time.Duration

	now func() time.Time
}

// NewAccountService wires the service. The registry must be shared by every
// caller of the returned service.
func NewAccountService(db *sql.DB, m repomanager.RepositoryManager, r *proofs.Registry, f proofs.Factory,
	l logging.Logger, cfg *config.Config) *AccountService {
	return &AccountService{
		db:                   db,
		repomanager:          m,
		registry:             r,
		factory:              f,
		pager:                NewLogPager(db, m),
		logger:               l.With("module", "account_service"),
		jwtSecret:            []byte(cfg.SecretKey),
		sessionTimeout:       cfg.SessionTimeout,
		checkEnrolled:        cfg.CheckUserEnrolled,
		sessionTokenValidity: cfg.SessionTokenValidity,
		pinTokenValidity:     cfg.PinTokenValidity,
		now:                  time.Now,
	}
}

// Register creates and stores a new account. A nil secret draws a fresh key
// share.
func (s *AccountService) Register(ctx context.Context, username, password, pin string, publicKey []byte, secret *big.Int) (*models.Account, error) {
	if username == "" || password == "" || pin == "" {
		return nil, common.ErrInvalidCredential
	}
	if _, err := s.factory.ParsePublicKey(publicKey); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidPublicKey, err)
	}

	a, err := models.NewAccount(username, password, pin, publicKey, secret, s.now())
	if err != nil {
		return nil, err
	}

	if err := s.repomanager.Accounts(s.db).Create(ctx, a); err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		return nil, fmt.Errorf("error creating account: %w", err)
	}
	return a, nil
}

// Login checks the password and grants a new session. An unknown user and a
// wrong password fail the same way.
func (s *AccountService) Login(ctx context.Context, username, password string) (string, error) {
	a, err := s.repomanager.Accounts(s.db).GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return "", common.ErrInvalidCredential
		}
		return "", err
	}
	if !a.VerifyPassword(password) {
		return "", common.ErrInvalidCredential
	}

	token, err := auth.GenerateToken(a.ID, auth.KindSession, s.jwtSecret, s.sessionTokenValidity)
	if err != nil {
		return "", fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}

	err = s.mutate(ctx, a.ID, func(a *models.Account) error {
		a.GrantSession(token, s.now())
		return nil
	})
	if err != nil {
		return "", err
	}
	return token, nil
}

// Authenticate resolves a session token to its account and records the
// activity.
func (s *AccountService) Authenticate(ctx context.Context, token string) (*models.Account, error) {
	userID, err := auth.ParseToken(token, auth.KindSession, s.jwtSecret)
	if err != nil {
		return nil, err
	}

	var out *models.Account
	err = s.mutate(ctx, userID, func(a *models.Account) error {
		now := s.now()
		if !a.IsSessionValid(token, now, s.sessionTimeout) {
			return common.ErrSessionExpired
		}
		a.TouchSession(now)
		out = a
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrInvalidToken
		}
		return nil, err
	}
	return out, nil
}

func (s *AccountService) Get(ctx context.Context, userID string) (*models.Account, error) {
	return s.repomanager.Accounts(s.db).GetByID(ctx, userID)
}

// CheckPin verifies pin for the account. A wrong PIN is not an error: the
// returned result says how many tries remain and whether the account is now
// blocked. A blocked account yields a *common.LockedError.
func (s *AccountService) CheckPin(ctx context.Context, userID, pin string) (*PinResult, error) {
	var (
		out      backoff.Outcome
		username string
	)
	err := s.mutate(ctx, userID, func(a *models.Account) error {
		if !a.IsEnrolled(s.checkEnrolled) {
			return common.ErrAccountNotEnrolled
		}
		if !a.Enabled {
			return common.ErrAccountDisabled
		}

		var err error
		out, err = a.CheckPin(pin, s.now())
		username = a.Username
		return err
	})
	if err != nil {
		return nil, err
	}

	res := &PinResult{Outcome: out}
	if !out.Correct {
		if out.BlockSeconds > 0 {
			s.logger.Warn(ctx, "PIN tried too often", "user", username, "seconds", out.BlockSeconds)
		}
		return res, nil
	}

	res.Token, err = auth.GenerateToken(userID, auth.KindPin, s.jwtSecret, s.pinTokenValidity)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrorInternal, err)
	}
	return res, nil
}

// VerifyPinToken checks a PIN token issued for userID.
func (s *AccountService) VerifyPinToken(userID, token string) error {
	id, err := auth.ParseToken(token, auth.KindPin, s.jwtSecret)
	if err != nil {
		return err
	}
	if id != userID {
		return common.ErrInvalidToken
	}
	return nil
}

// SetEnabled sets the administrative flag; enabling also lifts a PIN lockout.
func (s *AccountService) SetEnabled(ctx context.Context, userID string, enabled bool) error {
	err := s.mutate(ctx, userID, func(a *models.Account) error {
		a.SetEnabled(enabled, s.now())
		return nil
	})
	if err != nil {
		return err
	}

	if enabled {
		s.logger.Info(ctx, "Account enabled", "id", userID)
	} else {
		s.logger.Warn(ctx, "Account blocked", "id", userID)
	}
	return nil
}

func (s *AccountService) SetEnrolled(ctx context.Context, userID string, enrolled bool) error {
	return s.mutate(ctx, userID, func(a *models.Account) error {
		a.SetEnrolled(enrolled)
		return nil
	})
}

func (s *AccountService) SetEmailIssued(ctx context.Context, userID string, issued bool) error {
	return s.mutate(ctx, userID, func(a *models.Account) error {
		a.SetEmailIssued(issued)
		return nil
	})
}

// GenerateCommitments starts a proof over keys with the account's key share.
// Any earlier unanswered commitment of the account is dropped.
func (s *AccountService) GenerateCommitments(ctx context.Context, userID string, keys []proofs.KeyID) (proofs.Commitments, error) {
	a, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkUsable(a); err != nil {
		return nil, err
	}

	return s.registry.Begin(a.ID, a.Keyshare, keys)
}

// BuildProof answers challenge for the account's outstanding commitment.
// The commitment cannot be answered again afterwards.
func (s *AccountService) BuildProof(ctx context.Context, userID string, challenge *big.Int) (*proofs.Fragment, error) {
	a, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.checkUsable(a); err != nil {
		return nil, err
	}

	pk, err := s.factory.ParsePublicKey(a.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidPublicKey, err)
	}

	fragment, err := s.registry.Answer(a.ID, challenge, pk)
	if err != nil {
		if errors.Is(err, common.ErrNoActiveSession) {
			s.logger.Warn(ctx, "Challenge without active commitment", "user", a.Username)
		}
		return nil, err
	}

	a.Record(models.EventSession, nil, s.now())
	if err := s.appendEvents(ctx, s.db, a.TakeEvents()); err != nil {
		return nil, err
	}
	return fragment, nil
}

func (s *AccountService) ListLogs(ctx context.Context, userID string, before int64) (*models.LogPage, error) {
	return s.pager.Page(ctx, userID, before)
}

// Unregister deletes the account and its log. It cannot be undone.
func (s *AccountService) Unregister(ctx context.Context, userID string) error {
	username, err := dbx.WithTxResult(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) (string, error) {
		a, err := s.repomanager.Accounts(tx).GetForUpdate(ctx, userID)
		if err != nil {
			return "", err
		}
		if err := s.repomanager.LogEntries(tx).DeleteByAccount(ctx, userID); err != nil {
			return "", err
		}
		return a.Username, s.repomanager.Accounts(tx).Delete(ctx, userID)
	})
	if err != nil {
		return err
	}

	s.registry.Discard(userID)
	s.logger.Info(ctx, "Account removed", "id", userID, "username", username)
	return nil
}

// checkUsable requires an enrolled, enabled and unblocked account.
func (s *AccountService) checkUsable(a *models.Account) error {
	now := s.now()
	switch {
	case !a.IsEnrolled(s.checkEnrolled):
		return common.ErrAccountNotEnrolled
	case a.IsPinBlocked(now):
		return &common.LockedError{Remaining: a.PinBlockRemaining(now)}
	case !a.IsEnabled(now):
		return common.ErrAccountDisabled
	}
	return nil
}

// mutate loads the account under a row lock, applies fn and persists the
// account together with any events fn queued, all in one transaction.
func (s *AccountService) mutate(ctx context.Context, userID string, fn func(a *models.Account) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		a, err := s.repomanager.Accounts(tx).GetForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		if err := fn(a); err != nil {
			return err
		}
		events := a.TakeEvents()
		if err := s.repomanager.Accounts(tx).Update(ctx, a); err != nil {
			return err
		}
		return s.appendEvents(ctx, tx, events)
	})
}

func (s *AccountService) appendEvents(ctx context.Context, db dbx.DBTX, events []models.LogEntry) error {
	repo := s.repomanager.LogEntries(db)
	for _, e := range events {
		if err := repo.Append(ctx, &e); err != nil {
			return err
		}
	}
	return nil
}
