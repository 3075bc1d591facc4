// Package httpapi is the HTTP transport of the server: routing, request
// decoding, the bearer-token middleware and the mapping of service errors to
// status codes.
package httpapi

import (
	"context"

	"github.com/dmitrijs2005/mediabox/internal/logging"
	"github.com/dmitrijs2005/mediabox/internal/server/models"
	"github.com/dmitrijs2005/mediabox/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, error)
	Login(ctx context.Context, email, password string) (*services.TokenResponse, error)
	Logout(ctx context.Context) error
	UpdateProfile(ctx context.Context, current *models.User, patch models.ProfilePatch) (*models.User, error)
	UploadPhoto(ctx context.Context, current *models.User, up services.Upload) (*models.User, error)
	Project(ctx context.Context, u *models.User) models.PublicUser
}

type PostService interface {
	Create(ctx context.Context, author *models.User, in services.PostInput, image *services.Upload) (*models.Post, error)
	List(ctx context.Context, limit, offset int) ([]*models.Post, error)
	Get(ctx context.Context, id int64) (*models.Post, error)
	Update(ctx context.Context, user *models.User, id int64, in services.PostInput) (*models.Post, error)
	Delete(ctx context.Context, user *models.User, id int64) error
	View(ctx context.Context, p *models.Post) models.PostView
}

type CommentService interface {
	Create(ctx context.Context, user *models.User, postID int64, content string) (*models.Comment, error)
	ListForPost(ctx context.Context, postID int64) ([]*models.Comment, error)
	Delete(ctx context.Context, user *models.User, commentID int64) error
}

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Resolve(ctx context.Context, token string) (*models.User, error)
}

type Handler struct {
	users         UserService
	posts         PostService
	comments      CommentService
	guard         Authenticator
	maxUploadSize int64
	logger        logging.Logger
}

func NewHandler(us UserService, ps PostService, cs CommentService, guard Authenticator, maxUploadSize int64, l logging.Logger) *Handler {
	return &Handler{
		users:         us,
		posts:         ps,
		comments:      cs,
		guard:         guard,
		maxUploadSize: maxUploadSize,
		logger:        l.With("module", "http_api"),
	}
}

type messageResponse struct {
	Message string `json:"message"`
}
