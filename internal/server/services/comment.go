package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/dmitrijs2005/mediabox/internal/dbx"
	"github.com/dmitrijs2005/mediabox/internal/logging"
	"github.com/dmitrijs2005/mediabox/internal/server/models"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/repomanager"
)

type CommentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

func NewCommentService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *CommentService {
	return &CommentService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "comment_service"),
	}
}

// Create adds a comment by user to the post. A missing post yields
// common.ErrorNotFound.
func (s *CommentService) Create(ctx context.Context, user *models.User, postID int64, content string) (*models.Comment, error) {
	content, err := validateComment(content)
	if err != nil {
		return nil, err
	}

	if _, err := s.repomanager.Posts(s.db).FindByID(ctx, postID); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading post: %w", err)
	}

	c, err := s.repomanager.Comments(s.db).Create(ctx, &models.Comment{Content: content, UserID: user.ID, PostID: postID})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error creating comment: %w", err)
	}

	s.logger.Info(ctx, "comment created", "comment_id", c.ID, "post_id", postID, "user_id", user.ID)
	return c, nil
}

// ListForPost returns the comments of a post, oldest first.
func (s *CommentService) ListForPost(ctx context.Context, postID int64) ([]*models.Comment, error) {
	list, err := s.repomanager.Comments(s.db).ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("error listing comments: %w", err)
	}
	return list, nil
}

// Delete removes a comment. Only its author may delete it: others get
// common.ErrForbidden. The ownership check and the delete share one
// transaction with the row locked.
func (s *CommentService) Delete(ctx context.Context, user *models.User, commentID int64) error {
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Comments(tx)

		c, err := repo.FindByIDForUpdate(ctx, commentID)
		if err != nil {
			return err
		}
		if c.UserID != user.ID {
			return common.ErrForbidden
		}
		return repo.Delete(ctx, commentID)
	})
	if err != nil {
		return passDomainError(err, "error deleting comment")
	}

	s.logger.Info(ctx, "comment deleted", "comment_id", commentID, "user_id", user.ID)
	return nil
}
