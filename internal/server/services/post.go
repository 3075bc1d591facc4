package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/dmitrijs2005/mediabox/internal/dbx"
	"github.com/dmitrijs2005/mediabox/internal/logging"
	"github.com/dmitrijs2005/mediabox/internal/server/models"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mediabox/internal/server/storage"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PostInput struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type PostService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	store         ObjectStore
	maxUploadSize int64
	logger        logging.Logger
	now           func() time.Time
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager, store ObjectStore, maxUploadSize int64, logger logging.Logger) *PostService {
	return &PostService{
		db:            db,
		repomanager:   m,
		store:         store,
		maxUploadSize: maxUploadSize,
		logger:        logger.With("module", "post_service"),
		now:           time.Now,
	}
}

// Create stores a post authored by author, with an optional image.
func (s *PostService) Create(ctx context.Context, author *models.User, in PostInput, image *Upload) (*models.Post, error) {
	title, content, err := validatePost(in.Title, in.Content)
	if err != nil {
		return nil, err
	}

	post := &models.Post{Title: title, Content: content, AuthorID: author.ID}

	if image != nil {
		if s.store == nil {
			return nil, fmt.Errorf("%w: object storage is not configured", common.ErrorInternal)
		}
		key, err := storeImage(ctx, s.store, storage.PrefixPosts, *image, s.maxUploadSize, s.now())
		if err != nil {
			return nil, err
		}
		post.Image = key
	}

	created, err := s.repomanager.Posts(s.db).Create(ctx, post)
	if err != nil {
		if post.Image != "" {
			s.deleteObject(ctx, post.Image)
		}
		return nil, fmt.Errorf("error creating post: %w", err)
	}

	s.logger.Info(ctx, "post created", "post_id", created.ID, "user_id", author.ID)
	return created, nil
}

// List returns a page of posts, newest first. limit is clamped to
// [1, MaxPageSize]; zero selects DefaultPageSize.
func (s *PostService) List(ctx context.Context, limit, offset int) ([]*models.Post, error) {
	switch {
	case limit <= 0:
		limit = DefaultPageSize
	case limit > MaxPageSize:
		limit = MaxPageSize
	}
	if offset < 0 {
		offset = 0
	}

	posts, err := s.repomanager.Posts(s.db).List(ctx, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("error listing posts: %w", err)
	}
	return posts, nil
}

func (s *PostService) Get(ctx context.Context, id int64) (*models.Post, error) {
	post, err := s.repomanager.Posts(s.db).FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("error loading post: %w", err)
	}
	return post, nil
}

// Update changes title and content. Only the author may do it.
func (s *PostService) Update(ctx context.Context, user *models.User, id int64, in PostInput) (*models.Post, error) {
	title, content, err := validatePost(in.Title, in.Content)
	if err != nil {
		return nil, err
	}

	var updated *models.Post
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)

		post, err := s.lockOwned(ctx, repo.FindByIDForUpdate, user, id)
		if err != nil {
			return err
		}

		next := post.WithContent(title, content)
		updated, err = repo.Update(ctx, &next)
		return err
	})
	if err != nil {
		return nil, passDomainError(err, "error updating post")
	}

	s.logger.Info(ctx, "post updated", "post_id", id, "user_id", user.ID)
	return updated, nil
}

// Delete removes a post and its comments. Only the author may do it.
func (s *PostService) Delete(ctx context.Context, user *models.User, id int64) error {
	var image string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Posts(tx)

		post, err := s.lockOwned(ctx, repo.FindByIDForUpdate, user, id)
		if err != nil {
			return err
		}
		image = post.Image
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return passDomainError(err, "error deleting post")
	}

	if image != "" && s.store != nil {
		s.deleteObject(ctx, image)
	}

	s.logger.Info(ctx, "post deleted", "post_id", id, "user_id", user.ID)
	return nil
}

// View builds the client view of p, with a download URL for its image.
func (s *PostService) View(ctx context.Context, p *models.Post) models.PostView {
	v := p.View()
	if s.store != nil && p.Image != "" {
		url, err := s.store.PresignGet(ctx, p.Image)
		if err != nil {
			s.logger.Warn(ctx, "presign failed", "key", p.Image, "error", err)
		} else {
			v.ImageURL = url
		}
	}
	return v
}

func (s *PostService) lockOwned(ctx context.Context, find func(context.Context, int64) (*models.Post, error), user *models.User, id int64) (*models.Post, error) {
	post, err := find(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.AuthorID != user.ID {
		return nil, common.ErrForbidden
	}
	return post, nil
}

func (s *PostService) deleteObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "failed to delete object", "key", key, "error", err)
	}
}

// passDomainError keeps the sentinel errors callers map to responses and
// wraps everything else.
func passDomainError(err error, msg string) error {
	for _, target := range []error{common.ErrorNotFound, common.ErrForbidden, common.ErrValidation} {
		if errors.Is(err, target) {
			return target
		}
	}
	return fmt.Errorf("%s: %w", msg, err)
}
