package accounts

import (
	"context"

	"github.com/dmitrijs2005/keyshare/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) error
	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByUsername(ctx context.Context, username string) (*models.Account, error)
	// GetForUpdate loads the account and locks its row until the enclosing
	// transaction ends.
	GetForUpdate(ctx context.Context, id string) (*models.Account, error)
	Update(ctx context.Context, account *models.Account) error
	Delete(ctx context.Context, id string) error
}
