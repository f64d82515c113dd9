package users

import (
	"context"

	"github.com/dmitrijs2005/userreg/internal/server/models"
)

// Repository persists users together with their phones.
//
// Create must enforce email uniqueness itself and report a duplicate as
// common.ErrEmailAlreadyExists; ExistsByEmail alone is not a guarantee.
type Repository interface {
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *models.User) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
}
