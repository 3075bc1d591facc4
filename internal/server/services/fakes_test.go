package services

import (
	"bytes"
	"context"
	"database/sql"
	"errors"
	"io"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/dmitrijs2005/mediabox/internal/dbx"
	"github.com/dmitrijs2005/mediabox/internal/server/models"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/comments"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/posts"
	"github.com/dmitrijs2005/mediabox/internal/server/repositories/users"

	_ "modernc.org/sqlite"
)

// --- helpers ---

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x02\x00\x00\x00")

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db, mock
}

// newTxDB returns a database that only has to begin and commit
// transactions; the rows themselves live in memStore.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("sql.Open error: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

// memStore is an in-memory stand-in for the database. It enforces the same
// uniqueness and foreign key rules as the schema.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	users    map[int64]models.User
	posts    map[int64]models.Post
	comments map[int64]models.Comment

	// failWith, when set, is returned by every repository call.
	failWith error
}

func newMemStore() *memStore {
	return &memStore{
		users:    map[int64]models.User{},
		posts:    map[int64]models.Post{},
		comments: map[int64]models.Comment{},
	}
}

func (m *memStore) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m *memStore) Users(dbx.DBTX) users.Repository              { return memUsers{m} }
func (m *memStore) Posts(dbx.DBTX) posts.Repository              { return memPosts{m} }
func (m *memStore) Comments(dbx.DBTX) comments.Repository        { return memComments{m} }

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

type memUsers struct{ m *memStore }

func (r memUsers) conflict(id int64, email, username string) (*models.User, bool) {
	for _, u := range r.m.users {
		if u.ID != id && (u.Email == email || u.Username == username) {
			u := u
			return &u, true
		}
	}
	return nil, false
}

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	if _, ok := r.conflict(0, u.Email, u.Username); ok {
		return nil, common.ErrDuplicateIdentity
	}
	out := *u
	out.ID = r.m.id()
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt
	r.m.users[out.ID] = out
	return &out, nil
}

func (r memUsers) Update(_ context.Context, u *models.User) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	if _, ok := r.m.users[u.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	if _, ok := r.conflict(u.ID, u.Email, u.Username); ok {
		return nil, common.ErrDuplicateIdentity
	}
	out := *u
	out.UpdatedAt = time.Now()
	r.m.users[out.ID] = out
	return &out, nil
}

func (r memUsers) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	u, ok := r.m.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &u, nil
}

func (r memUsers) FindByIDForUpdate(ctx context.Context, id int64) (*models.User, error) {
	return r.FindByID(ctx, id)
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	for _, u := range r.m.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) FindByEmailOrUsername(ctx context.Context, email, username string) (*models.User, error) {
	return r.FindConflict(ctx, 0, email, username)
}

func (r memUsers) FindConflict(_ context.Context, id int64, email, username string) (*models.User, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	if u, ok := r.conflict(id, email, username); ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

type memPosts struct{ m *memStore }

func (r memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	out := *p
	out.ID = r.m.id()
	out.CreatedAt = time.Now()
	out.UpdatedAt = out.CreatedAt
	r.m.posts[out.ID] = out
	return &out, nil
}

func (r memPosts) FindByID(_ context.Context, id int64) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	p, ok := r.m.posts[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &p, nil
}

func (r memPosts) FindByIDForUpdate(ctx context.Context, id int64) (*models.Post, error) {
	return r.FindByID(ctx, id)
}

func (r memPosts) List(_ context.Context, limit, offset int) ([]*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	all := make([]*models.Post, 0, len(r.m.posts))
	for _, p := range r.m.posts {
		p := p
		all = append(all, &p)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].ID > all[j].ID })
	if offset >= len(all) {
		return []*models.Post{}, nil
	}
	all = all[offset:]
	if len(all) > limit {
		all = all[:limit]
	}
	return all, nil
}

func (r memPosts) Update(_ context.Context, p *models.Post) (*models.Post, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	if _, ok := r.m.posts[p.ID]; !ok {
		return nil, common.ErrorNotFound
	}
	out := *p
	out.UpdatedAt = time.Now()
	r.m.posts[out.ID] = out
	return &out, nil
}

func (r memPosts) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return r.m.failWith
	}
	if _, ok := r.m.posts[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.posts, id)
	for cid, c := range r.m.comments {
		if c.PostID == id {
			delete(r.m.comments, cid)
		}
	}
	return nil
}

type memComments struct{ m *memStore }

func (r memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	if _, ok := r.m.posts[c.PostID]; !ok {
		return nil, common.ErrorNotFound
	}
	out := *c
	out.ID = r.m.id()
	out.CreatedAt = time.Now()
	r.m.comments[out.ID] = out
	return &out, nil
}

func (r memComments) FindByIDForUpdate(_ context.Context, id int64) (*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	c, ok := r.m.comments[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return &c, nil
}

func (r memComments) ListByPost(_ context.Context, postID int64) ([]*models.Comment, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return nil, r.m.failWith
	}
	out := []*models.Comment{}
	for _, c := range r.m.comments {
		if c.PostID == postID {
			c := c
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r memComments) Delete(_ context.Context, id int64) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()
	if r.m.failWith != nil {
		return r.m.failWith
	}
	if _, ok := r.m.comments[id]; !ok {
		return common.ErrorNotFound
	}
	delete(r.m.comments, id)
	return nil
}

// fakeObjectStore keeps objects in memory.
type fakeObjectStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	types   map[string]string
	deleted []string

	putErr     error
	deleteErr  error
	presignErr error
}

func newFakeObjectStore() *fakeObjectStore {
	return &fakeObjectStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeObjectStore) Put(_ context.Context, key, contentType string, body io.Reader, size int64) error {
	if f.putErr != nil {
		return f.putErr
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, body); err != nil {
		return err
	}
	if int64(buf.Len()) != size {
		return errors.New("size mismatch")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[key] = buf.Bytes()
	f.types[key] = contentType
	return nil
}

func (f *fakeObjectStore) Delete(_ context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deleted = append(f.deleted, key)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.objects, key)
	return nil
}

func (f *fakeObjectStore) PresignGet(_ context.Context, key string) (string, error) {
	if f.presignErr != nil {
		return "", f.presignErr
	}
	return "https://storage.test/" + key + "?sig=1", nil
}

func (f *fakeObjectStore) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}
