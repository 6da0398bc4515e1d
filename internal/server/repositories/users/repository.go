// Package users stores accounts. Uniqueness of username and email is enforced
// by the database; a violation surfaces as common.ErrDuplicateIdentity.
package users

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, account *models.Account) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByID(ctx context.Context, id int64) (*models.PublicProfile, error)
	List(ctx context.Context) ([]models.PublicProfile, error)
	Update(ctx context.Context, id int64, username, email string) error
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
