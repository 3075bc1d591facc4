// Package comments persists comments attached to posts.
package comments

import (
	"context"

	"github.com/dmitrijs2005/mediabox/internal/server/models"
)

type Repository interface {
	// Create returns common.ErrorNotFound if the post does not exist.
	Create(ctx context.Context, comment *models.Comment) (*models.Comment, error)
	FindByIDForUpdate(ctx context.Context, id int64) (*models.Comment, error)
	ListByPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}
