// Package users is the credential store: persistence of user accounts.
package users

import (
	"context"

	"github.com/dmitrijs2005/mediabox/internal/server/models"
)

// Repository persists users. Lookups return common.ErrorNotFound when no row
// matches; writes that collide with another user's username or email return
// common.ErrDuplicateIdentity.
type Repository interface {
	Create(ctx context.Context, user *models.User) (*models.User, error)
	Update(ctx context.Context, user *models.User) (*models.User, error)
	FindByID(ctx context.Context, id int64) (*models.User, error)
	// FindByIDForUpdate locks the row until the surrounding transaction ends.
	FindByIDForUpdate(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	// FindByEmailOrUsername returns any user holding email or username.
	FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error)
	// FindConflict is FindByEmailOrUsername ignoring the user with the given id.
	FindConflict(ctx context.Context, id int64, email, username string) (*models.User, error)
}
