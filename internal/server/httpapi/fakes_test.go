package httpapi

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/dmitrijs2005/mediabox/internal/logging"
	"github.com/dmitrijs2005/mediabox/internal/server/auth"
	"github.com/dmitrijs2005/mediabox/internal/server/models"
	"github.com/dmitrijs2005/mediabox/internal/server/services"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type userDirectory struct {
	mu    sync.Mutex
	users map[int64]*models.User
}

func (d *userDirectory) FindByID(_ context.Context, id int64) (*models.User, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	u, ok := d.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

type stubUsers struct {
	registerFn      func(services.RegisterInput) (*models.User, error)
	loginFn         func(email, password string) (*services.TokenResponse, error)
	updateProfileFn func(*models.User, models.ProfilePatch) (*models.User, error)
	uploadPhotoFn   func(*models.User, []byte, string) (*models.User, error)
}

func (s *stubUsers) Register(_ context.Context, in services.RegisterInput) (*models.User, error) {
	return s.registerFn(in)
}

func (s *stubUsers) Login(_ context.Context, email, password string) (*services.TokenResponse, error) {
	return s.loginFn(email, password)
}

func (s *stubUsers) Logout(context.Context) error { return nil }

func (s *stubUsers) UpdateProfile(_ context.Context, u *models.User, p models.ProfilePatch) (*models.User, error) {
	return s.updateProfileFn(u, p)
}

func (s *stubUsers) UploadPhoto(_ context.Context, u *models.User, up services.Upload) (*models.User, error) {
	data, err := io.ReadAll(up.Body)
	if err != nil {
		return nil, err
	}
	return s.uploadPhotoFn(u, data, up.Filename)
}

func (s *stubUsers) Project(_ context.Context, u *models.User) models.PublicUser {
	return u.Public()
}

type stubPosts struct {
	mu    sync.Mutex
	posts map[int64]*models.Post
	// lastImage is the body of the last image passed to Create.
	lastImage []byte
}

func (s *stubPosts) Create(_ context.Context, author *models.User, in services.PostInput, image *services.Upload) (*models.Post, error) {
	if in.Title == "" {
		return nil, common.ErrValidation
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	p := &models.Post{ID: int64(len(s.posts) + 1), Title: in.Title, Content: in.Content, AuthorID: author.ID}
	if image != nil {
		data, err := io.ReadAll(image.Body)
		if err != nil {
			return nil, err
		}
		s.lastImage = data
		p.Image = "posts/" + image.Filename
	}
	s.posts[p.ID] = p
	return p, nil
}

func (s *stubPosts) List(_ context.Context, limit, offset int) ([]*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []*models.Post{}
	for id := int64(1); id <= int64(len(s.posts)); id++ {
		if p, ok := s.posts[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *stubPosts) Get(_ context.Context, id int64) (*models.Post, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return p, nil
}

func (s *stubPosts) Update(ctx context.Context, user *models.User, id int64, in services.PostInput) (*models.Post, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != user.ID {
		return nil, common.ErrForbidden
	}
	next := p.WithContent(in.Title, in.Content)
	return &next, nil
}

func (s *stubPosts) Delete(ctx context.Context, user *models.User, id int64) error {
	p, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if p.AuthorID != user.ID {
		return common.ErrForbidden
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.posts, id)
	return nil
}

func (s *stubPosts) View(_ context.Context, p *models.Post) models.PostView {
	v := p.View()
	if p.Image != "" {
		v.ImageURL = "https://storage.test/" + p.Image
	}
	return v
}

type stubComments struct {
	mu       sync.Mutex
	posts    *stubPosts
	comments map[int64]*models.Comment
	nextID   int64
	// failWith, when set, is returned by ListForPost.
	failWith error
	panicOn  bool
}

func (s *stubComments) Create(ctx context.Context, user *models.User, postID int64, content string) (*models.Comment, error) {
	if _, err := s.posts.Get(ctx, postID); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	c := &models.Comment{ID: s.nextID, Content: content, UserID: user.ID, PostID: postID}
	s.comments[c.ID] = c
	return c, nil
}

func (s *stubComments) ListForPost(_ context.Context, postID int64) ([]*models.Comment, error) {
	if s.panicOn {
		panic("list exploded")
	}
	if s.failWith != nil {
		return nil, s.failWith
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Comment
	for id := int64(1); id <= s.nextID; id++ {
		if c, ok := s.comments[id]; ok && c.PostID == postID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (s *stubComments) Delete(_ context.Context, user *models.User, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.comments[id]
	if !ok {
		return common.ErrorNotFound
	}
	if c.UserID != user.ID {
		return common.ErrForbidden
	}
	delete(s.comments, id)
	return nil
}

type testEnv struct {
	handler  *Handler
	clock    *testClock
	tokens   *auth.TokenService
	dir      *userDirectory
	users    *stubUsers
	posts    *stubPosts
	comments *stubComments
	alice    *models.User
	bob      *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	clock := &testClock{now: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)}
	tokens := auth.NewTokenService([]byte(testSecret), 30*time.Minute, auth.WithClock(clock.Now))

	alice := &models.User{ID: 1, Username: "alice", Email: "a@x.com"}
	bob := &models.User{ID: 2, Username: "bob", Email: "b@x.com"}
	dir := &userDirectory{users: map[int64]*models.User{alice.ID: alice, bob.ID: bob}}

	posts := &stubPosts{posts: map[int64]*models.Post{}}
	env := &testEnv{
		clock:    clock,
		tokens:   tokens,
		dir:      dir,
		users:    &stubUsers{},
		posts:    posts,
		comments: &stubComments{posts: posts, comments: map[int64]*models.Comment{}},
		alice:    alice,
		bob:      bob,
	}
	env.handler = NewHandler(env.users, env.posts, env.comments, auth.NewGuard(tokens, dir), 1<<20, logging.NewNopLogger())
	return env
}

func (e *testEnv) bearer(t *testing.T, u *models.User) string {
	t.Helper()
	token, err := e.tokens.Issue(u.ID)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return "Bearer " + token
}
