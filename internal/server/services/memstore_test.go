package services

import (
	"context"
	"database/sql"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/communityfeed/internal/common"
	"github.com/dmitrijs2005/communityfeed/internal/dbx"
	"github.com/dmitrijs2005/communityfeed/internal/server/auth"
	"github.com/dmitrijs2005/communityfeed/internal/server/models"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/comments"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/feed"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/posts"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/reactions"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/reports"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/users"
)

// memStore is an in-memory stand-in for the Postgres schema, enforcing the
// same unique and foreign keys.
type memStore struct {
	mu        sync.Mutex
	clock     time.Time
	users     map[string]*models.User
	posts     map[string]*models.Post
	comments  []*models.Comment
	reactions map[[2]string]*models.Reaction
	reports   []*models.Report
	failWith  error
}

func newMemStore() *memStore {
	return &memStore{
		clock:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		users:     map[string]*models.User{},
		posts:     map[string]*models.Post{},
		reactions: map[[2]string]*models.Reaction{},
	}
}

func (s *memStore) tick() time.Time {
	s.clock = s.clock.Add(time.Second)
	return s.clock
}

type memManager struct{ s *memStore }

func (m memManager) RunMigrations(context.Context, *sql.DB) error { return nil }
func (m memManager) Users(dbx.DBTX) users.Repository             { return memUsers{m.s} }
func (m memManager) Posts(dbx.DBTX) posts.Repository             { return memPosts{m.s} }
func (m memManager) Comments(dbx.DBTX) comments.Repository       { return memComments{m.s} }
func (m memManager) Reactions(dbx.DBTX) reactions.Repository     { return memReactions{m.s} }
func (m memManager) Reports(dbx.DBTX) reports.Repository         { return memReports{m.s} }
func (m memManager) Feed(dbx.DBTX) feed.Repository               { return memFeed{m.s} }

type memUsers struct{ s *memStore }

func (r memUsers) Create(_ context.Context, u *models.User) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return nil, fmt.Errorf("email %w", common.ErrorAlreadyExists)
		}
		if u.Username != nil && existing.Username != nil && *existing.Username == *u.Username {
			return nil, fmt.Errorf("username %w", common.ErrorAlreadyExists)
		}
	}
	u.ID = uuid.NewString()
	u.CreatedAt = r.s.tick()
	c := *u
	r.s.users[u.ID] = &c
	return u, nil
}

func (r memUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	for _, u := range r.s.users {
		if u.Email == email {
			c := *u
			return &c, nil
		}
	}
	return nil, common.ErrorNotFound
}

func (r memUsers) GetByID(_ context.Context, id string) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	c := *u
	return &c, nil
}

func (r memUsers) UpdateProfile(_ context.Context, id string, upd models.ProfileUpdate) (*models.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.users[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if upd.Username != nil {
		for otherID, other := range r.s.users {
			if otherID != id && other.Username != nil && *other.Username == *upd.Username {
				return nil, fmt.Errorf("username %w", common.ErrorAlreadyExists)
			}
		}
		u.Username = upd.Username
	}
	if upd.Name != nil {
		u.Name = upd.Name
	}
	if upd.AvatarURL != nil {
		u.AvatarURL = upd.AvatarURL
	}
	if upd.Bio != nil {
		u.Bio = upd.Bio
	}
	c := *u
	return &c, nil
}

type memPosts struct{ s *memStore }

func (r memPosts) Create(_ context.Context, p *models.Post) (*models.Post, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	if _, ok := r.s.users[p.AuthorID]; !ok {
		return nil, fmt.Errorf("author %w", common.ErrorNotFound)
	}
	p.ID = uuid.NewString()
	p.CreatedAt = r.s.tick()
	c := *p
	r.s.posts[p.ID] = &c
	return p, nil
}

func (r memPosts) view(p *models.Post) models.PostView {
	v := models.PostView{Post: *p}
	if u, ok := r.s.users[p.AuthorID]; ok {
		v.AuthorName = u.Name
		v.AuthorAvatar = u.AvatarURL
	}
	return v
}

func (r memPosts) GetByID(_ context.Context, id string) (*models.PostView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	p, ok := r.s.posts[id]
	if !ok {
		return nil, fmt.Errorf("post %w", common.ErrorNotFound)
	}
	v := r.view(p)
	return &v, nil
}

func (r memPosts) Exists(_ context.Context, id string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return false, r.s.failWith
	}
	_, ok := r.s.posts[id]
	return ok, nil
}

type memComments struct{ s *memStore }

func (r memComments) Create(_ context.Context, c *models.Comment) (*models.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.posts[c.PostID]; !ok {
		return nil, fmt.Errorf("post %w", common.ErrorNotFound)
	}
	c.ID = uuid.NewString()
	c.CreatedAt = r.s.tick()
	cp := *c
	r.s.comments = append(r.s.comments, &cp)
	return c, nil
}

func (r memComments) ListByPost(_ context.Context, postID string) ([]*models.CommentView, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}
	out := []*models.CommentView{}
	for _, c := range r.s.comments {
		if c.PostID != postID {
			continue
		}
		v := &models.CommentView{Comment: *c}
		if u, ok := r.s.users[c.AuthorID]; ok {
			v.AuthorName = u.Name
			v.AuthorAvatar = u.AvatarURL
		}
		out = append(out, v)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	return out, nil
}

type memReactions struct{ s *memStore }

func (r memReactions) Create(_ context.Context, re *models.Reaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return r.s.failWith
	}
	if _, ok := r.s.posts[re.PostID]; !ok {
		return fmt.Errorf("post %w", common.ErrorNotFound)
	}
	key := [2]string{re.PostID, re.UserID}
	if _, ok := r.s.reactions[key]; ok {
		return fmt.Errorf("reaction %w", common.ErrorAlreadyExists)
	}
	re.ID = uuid.NewString()
	re.CreatedAt = r.s.tick()
	c := *re
	r.s.reactions[key] = &c
	return nil
}

func (r memReactions) Delete(_ context.Context, postID, userID string) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return false, r.s.failWith
	}
	key := [2]string{postID, userID}
	if _, ok := r.s.reactions[key]; !ok {
		return false, nil
	}
	delete(r.s.reactions, key)
	return true, nil
}

func (r memReactions) CountByPost(_ context.Context, postID string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.likes(postID), nil
}

func (s *memStore) likes(postID string) int64 {
	var n int64
	for key, re := range s.reactions {
		if key[0] == postID && re.Type == models.ReactionLike {
			n++
		}
	}
	return n
}

type memReports struct{ s *memStore }

func (r memReports) Create(_ context.Context, rep *models.Report) (*models.Report, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.users[rep.ReporterID]; !ok {
		return nil, fmt.Errorf("reporter %w", common.ErrorNotFound)
	}
	rep.ID = uuid.NewString()
	rep.CreatedAt = r.s.tick()
	c := *rep
	r.s.reports = append(r.s.reports, &c)
	return rep, nil
}

type memFeed struct{ s *memStore }

func (r memFeed) List(_ context.Context, visibilities []models.Visibility, limit int) ([]*models.FeedItem, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.failWith != nil {
		return nil, r.s.failWith
	}

	allowed := map[models.Visibility]bool{}
	for _, v := range visibilities {
		allowed[v] = true
	}

	out := []*models.FeedItem{}
	for _, p := range r.s.posts {
		if !allowed[p.Visibility] {
			continue
		}
		item := &models.FeedItem{PostView: memPosts{r.s}.view(p), LikesCount: r.s.likes(p.ID)}
		for _, c := range r.s.comments {
			if c.PostID == p.ID {
				item.CommentsCount++
			}
		}
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// newTxDB returns a database that can open and commit empty transactions.
func newTxDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type testEnv struct {
	store     *memStore
	users     *UserService
	posts     *PostService
	reactions *ReactionService
	feed      *FeedService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTxDB(t)
	store := newMemStore()
	m := memManager{store}
	return &testEnv{
		store:     store,
		users:     NewUserService(db, m, auth.NewJWTManager([]byte("test-secret"), time.Hour), auth.NewBcryptHasher(bcrypt.MinCost)),
		posts:     NewPostService(db, m),
		reactions: NewReactionService(db, m),
		feed:      NewFeedService(db, m, DefaultFeedLimit, MaxFeedLimit),
	}
}

func strPtr(s string) *string { return &s }

// register creates a user and returns its id.
func (e *testEnv) register(t *testing.T, email, name string) string {
	t.Helper()
	u, _, err := e.users.Register(context.Background(), RegisterInput{Email: email, Password: "pw", Name: strPtr(name)})
	require.NoError(t, err)
	return u.ID
}

func (e *testEnv) post(t *testing.T, authorID, body string, visibility models.Visibility) string {
	t.Helper()
	p, err := e.posts.CreatePost(context.Background(), authorID, PostInput{Body: strPtr(body), Visibility: string(visibility)})
	require.NoError(t, err)
	return p.ID
}
