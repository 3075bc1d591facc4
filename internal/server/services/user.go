// Package services contains the server-side business logic. UserService
// implements registration, login, logout and profile management.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/dmitrijs2005/mediabox/internal/dbx"
	"github.com/dmitrijs2005/mediabox/internal/logging"
	"github.com/dmitrijs2005/mediabox/internal/server/auth"
	"github.com/dmitrijs2005/mediabox/internal/server/models"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/users"
	"github.com/dmitrijs2005/mediabox/internal/server/storage"
)

// TokenResponse is returned by a successful login.
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type RegisterInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserService struct {
	db            *sql.DB
	repomanager   repomanager.RepositoryManager
	hasher        *auth.PasswordHasher
	tokens        *auth.TokenService
	store         ObjectStore
	maxUploadSize int64
	logger        logging.Logger
	now           func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, hasher *auth.PasswordHasher,
	tokens *auth.TokenService, store ObjectStore, maxUploadSize int64, logger logging.Logger) *UserService {
	return &UserService{
		db:            db,
		repomanager:   m,
		hasher:        hasher,
		tokens:        tokens,
		store:         store,
		maxUploadSize: maxUploadSize,
		logger:        logger.With("module", "user_service"),
		now:           time.Now,
	}
}

// Register creates a user after checking that neither the username nor the
// email is taken. The unique constraints in the store catch registrations
// racing past the pre-check; both paths yield common.ErrDuplicateIdentity.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	username, err := normalizeUsername(in.Username)
	if err != nil {
		return nil, err
	}
	email, err := normalizeEmail(in.Email)
	if err != nil {
		return nil, err
	}
	if err := validatePassword(in.Password); err != nil {
		return nil, err
	}

	repo := s.repomanager.Users(s.db)

	_, err = repo.FindByEmailOrUsername(ctx, email, username)
	switch {
	case err == nil:
		return nil, common.ErrDuplicateIdentity
	case !errors.Is(err, common.ErrorNotFound):
		return nil, fmt.Errorf("error checking identity: %w", err)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := repo.Create(ctx, &models.User{Username: username, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrDuplicateIdentity) {
			return nil, common.ErrDuplicateIdentity
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// Login returns an access token for valid credentials. Unknown email, wrong
// password and an unreadable stored hash all yield
// common.ErrInvalidCredentials, so callers cannot tell accounts apart.
func (s *UserService) Login(ctx context.Context, email, password string) (*TokenResponse, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return nil, common.ErrInvalidCredentials
	}

	user, err := s.repomanager.Users(s.db).FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			// spend the same bcrypt time as a real check
			s.hasher.Verify(password, s.getDummyHash())
			return nil, common.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("error searching user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, common.ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "user logged in", "user_id", user.ID)
	return &TokenResponse{AccessToken: token, TokenType: common.TokenType}, nil
}

// Logout acknowledges the request. Tokens are stateless and stay valid until
// they expire.
func (s *UserService) Logout(ctx context.Context) error {
	s.logger.Debug(ctx, "logout acknowledged")
	return nil
}

// UpdateProfile applies the supplied fields of patch to the user's current
// row. The row is re-read under a lock, so fields the patch leaves out keep
// whatever a concurrent request wrote.
func (s *UserService) UpdateProfile(ctx context.Context, current *models.User, patch models.ProfilePatch) (*models.User, error) {
	if patch.Empty() {
		return current, nil
	}

	var username, email, hash string
	var err error
	if patch.Username != nil {
		if username, err = normalizeUsername(*patch.Username); err != nil {
			return nil, err
		}
	}
	if patch.Email != nil {
		if email, err = normalizeEmail(*patch.Email); err != nil {
			return nil, err
		}
	}
	if patch.Password != nil {
		if err := validatePassword(*patch.Password); err != nil {
			return nil, err
		}
		// hashed before the transaction so the row lock is not held for bcrypt
		if hash, err = s.hasher.Hash(*patch.Password); err != nil {
			return nil, err
		}
	}

	var updated *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		fresh, err := lockUser(ctx, repo, current.ID)
		if err != nil {
			return err
		}

		next := *fresh
		if patch.Username != nil {
			next = next.WithUsername(username)
		}
		if patch.Email != nil {
			next = next.WithEmail(email)
		}
		if patch.Password != nil {
			next = next.WithPasswordHash(hash)
		}

		if next.Username != fresh.Username || next.Email != fresh.Email {
			_, err := repo.FindConflict(ctx, fresh.ID, next.Email, next.Username)
			switch {
			case err == nil:
				return common.ErrDuplicateIdentity
			case !errors.Is(err, common.ErrorNotFound):
				return fmt.Errorf("error checking identity: %w", err)
			}
		}

		updated, err = save(ctx, repo, &next)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "profile updated", "user_id", updated.ID)
	return updated, nil
}

// UploadPhoto stores a new profile photo and points the user at it. Only
// the photo column of the freshly locked row changes. The previous photo,
// if any, is removed afterwards on a best-effort basis.
func (s *UserService) UploadPhoto(ctx context.Context, current *models.User, up Upload) (*models.User, error) {
	if s.store == nil {
		return nil, fmt.Errorf("%w: object storage is not configured", common.ErrorInternal)
	}

	key, err := storeImage(ctx, s.store, storage.PrefixPhotos, up, s.maxUploadSize, s.now())
	if err != nil {
		return nil, err
	}

	var previous string
	var updated *models.User
	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		fresh, err := lockUser(ctx, repo, current.ID)
		if err != nil {
			return err
		}
		previous = fresh.ProfilePhoto

		next := fresh.WithPhoto(key)
		updated, err = save(ctx, repo, &next)
		return err
	})
	if err != nil {
		s.deleteObject(ctx, key)
		return nil, err
	}

	if previous != "" {
		s.deleteObject(ctx, previous)
	}

	s.logger.Info(ctx, "profile photo uploaded", "user_id", updated.ID, "key", key)
	return updated, nil
}

// Project builds the client view of u, with a download URL for the photo
// when object storage is available.
func (s *UserService) Project(ctx context.Context, u *models.User) models.PublicUser {
	p := u.Public()
	if s.store != nil && u.ProfilePhoto != "" {
		url, err := s.store.PresignGet(ctx, u.ProfilePhoto)
		if err != nil {
			s.logger.Warn(ctx, "presign failed", "key", u.ProfilePhoto, "error", err)
		} else {
			p.ProfilePhotoURL = url
		}
	}
	return p
}

func lockUser(ctx context.Context, repo users.Repository, id int64) (*models.User, error) {
	u, err := repo.FindByIDForUpdate(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return u, nil
}

func save(ctx context.Context, repo users.Repository, u *models.User) (*models.User, error) {
	updated, err := repo.Update(ctx, u)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrDuplicateIdentity):
			return nil, common.ErrDuplicateIdentity
		case errors.Is(err, common.ErrorNotFound):
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("error updating user: %w", err)
	}
	return updated, nil
}

func (s *UserService) deleteObject(ctx context.Context, key string) {
	if err := s.store.Delete(ctx, key); err != nil {
		s.logger.Warn(ctx, "failed to delete object", "key", key, "error", err)
	}
}

func (s *UserService) getDummyHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash("mediabox-dummy-password")
	})
	return s.dummyHash
}
