package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/dmitrijs2005/mediabox/internal/server/models"
)

type TokenVerifier interface {
	Verify(token string) (int64, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, id int64) (*models.User, error)
}

// Guard turns a bearer token into the full user record it belongs to.
type Guard struct {
	tokens TokenVerifier
	users  UserFinder
}

func NewGuard(tokens TokenVerifier, users UserFinder) *Guard {
	return &Guard{tokens: tokens, users: users}
}

// Resolve verifies token and loads its user. Token errors are returned as
// is; a token for a user that no longer exists yields common.ErrUserNotFound.
func (g *Guard) Resolve(ctx context.Context, token string) (*models.User, error) {
	userID, err := g.tokens.Verify(token)
	if err != nil {
		return nil, err
	}

	user, err := g.users.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("resolve user %d: %w", userID, err)
	}
	return user, nil
}

// ParseBearer extracts the token from an Authorization header value of the
// form "Bearer <token>". The scheme is matched case-insensitively.
func ParseBearer(header string) (string, error) {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, common.BearerScheme) {
		return "", common.ErrInvalidToken
	}
	token = strings.TrimSpace(token)
	if token == "" {
		return "", common.ErrInvalidToken
	}
	return token, nil
}
