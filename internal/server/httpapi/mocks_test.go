package httpapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/communityfeed/internal/common"
	"github.com/dmitrijs2005/communityfeed/internal/logging"
	"github.com/dmitrijs2005/communityfeed/internal/server/models"
	"github.com/dmitrijs2005/communityfeed/internal/server/observability"
	"github.com/dmitrijs2005/communityfeed/internal/server/services"
)

type mockUsers struct{ mock.Mock }

func (m *mockUsers) Register(ctx context.Context, in services.RegisterInput) (*models.User, string, error) {
	args := m.Called(ctx, in)
	u, _ := args.Get(0).(*models.User)
	return u, args.String(1), args.Error(2)
}

func (m *mockUsers) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	args := m.Called(ctx, email, password)
	u, _ := args.Get(0).(*models.User)
	return u, args.String(1), args.Error(2)
}

func (m *mockUsers) ResolveSession(ctx context.Context, token string) (string, error) {
	args := m.Called(ctx, token)
	return args.String(0), args.Error(1)
}

func (m *mockUsers) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

func (m *mockUsers) UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error) {
	args := m.Called(ctx, userID, upd)
	u, _ := args.Get(0).(*models.User)
	return u, args.Error(1)
}

type mockPosts struct{ mock.Mock }

func (m *mockPosts) CreatePost(ctx context.Context, authorID string, in services.PostInput) (*models.Post, error) {
	args := m.Called(ctx, authorID, in)
	p, _ := args.Get(0).(*models.Post)
	return p, args.Error(1)
}

func (m *mockPosts) GetPost(ctx context.Context, id string) (*models.PostView, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*models.PostView)
	return p, args.Error(1)
}

func (m *mockPosts) CreateComment(ctx context.Context, postID, authorID string, body *string) (*models.Comment, error) {
	args := m.Called(ctx, postID, authorID, body)
	c, _ := args.Get(0).(*models.Comment)
	return c, args.Error(1)
}

func (m *mockPosts) ListComments(ctx context.Context, postID string) ([]*models.CommentView, error) {
	args := m.Called(ctx, postID)
	l, _ := args.Get(0).([]*models.CommentView)
	return l, args.Error(1)
}

func (m *mockPosts) CreateReport(ctx context.Context, reporterID string, in services.ReportInput) (*models.Report, error) {
	args := m.Called(ctx, reporterID, in)
	r, _ := args.Get(0).(*models.Report)
	return r, args.Error(1)
}

type mockReactions struct{ mock.Mock }

func (m *mockReactions) ToggleLike(ctx context.Context, postID, userID string) (bool, error) {
	args := m.Called(ctx, postID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReactions) LikesCount(ctx context.Context, postID string) (int64, error) {
	args := m.Called(ctx, postID)
	return args.Get(0).(int64), args.Error(1)
}

type mockFeed struct{ mock.Mock }

func (m *mockFeed) GetFeed(ctx context.Context, limit int) ([]*models.FeedItem, error) {
	args := m.Called(ctx, limit)
	l, _ := args.Get(0).([]*models.FeedItem)
	return l, args.Error(1)
}

type mockMedia struct{ mock.Mock }

func (m *mockMedia) Upload(ctx context.Context, userID, contentType string, data []byte) (string, error) {
	args := m.Called(ctx, userID, contentType, data)
	return args.String(0), args.Error(1)
}

func (m *mockMedia) PresignUpload(ctx context.Context, userID, contentType string) (*models.UploadTicket, error) {
	args := m.Called(ctx, userID, contentType)
	t, _ := args.Get(0).(*models.UploadTicket)
	return t, args.Error(1)
}

var (
	_ UserService     = (*mockUsers)(nil)
	_ PostService     = (*mockPosts)(nil)
	_ ReactionService = (*mockReactions)(nil)
	_ FeedService     = (*mockFeed)(nil)
	_ MediaService    = (*mockMedia)(nil)
)

const goodToken = "good"

type harness struct {
	users     *mockUsers
	posts     *mockPosts
	reactions *mockReactions
	feed      *mockFeed
	media     *mockMedia

	handler *Handler
	metrics *observability.Metrics
	logs    *bytes.Buffer
	router  *gin.Engine
}

// newHarness builds a router over mocked services. The token "good" resolves
// to user u1; anything else is rejected.
func newHarness(t *testing.T) *harness {
	t.Helper()
	gin.SetMode(gin.TestMode)
	require.NoError(t, RegisterValidators())

	h := &harness{
		users:     &mockUsers{},
		posts:     &mockPosts{},
		reactions: &mockReactions{},
		feed:      &mockFeed{},
		media:     &mockMedia{},
		metrics:   observability.NewMetrics(prometheus.NewRegistry()),
		logs:      &bytes.Buffer{},
	}

	h.users.On("ResolveSession", mock.Anything, goodToken).Return("u1", nil).Maybe()
	h.users.On("ResolveSession", mock.Anything, "").Return("", common.ErrNoToken).Maybe()
	h.users.On("ResolveSession", mock.Anything, mock.Anything).
		Return("", fmt.Errorf("%w: %w", common.ErrInvalidToken, common.ErrTokenExpired)).Maybe()

	logger, err := logging.New(logging.FormatSlog, "debug", h.logs)
	require.NoError(t, err)

	h.handler = NewHandler(Options{
		Users:          h.users,
		Posts:          h.posts,
		Reactions:      h.reactions,
		Feed:           h.feed,
		Media:          h.media,
		Logger:         logger,
		Metrics:        h.metrics,
		MaxUploadBytes: 32,
	})
	h.handler.now = func() time.Time { return time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC) }
	h.router = NewRouter(h.handler, RouterConfig{
		AllowedOrigins: []string{"http://localhost:5173"},
		RequestTimeout: time.Second,
	})

	t.Cleanup(func() {
		h.users.AssertExpectations(t)
		h.posts.AssertExpectations(t)
		h.reactions.AssertExpectations(t)
		h.feed.AssertExpectations(t)
		h.media.AssertExpectations(t)
	})
	return h
}

type reqOpt func(*http.Request)

func withToken(token string) reqOpt {
	return func(r *http.Request) { r.Header.Set(common.AuthorizationHeaderName, "Bearer "+token) }
}

func withHeader(k, v string) reqOpt {
	return func(r *http.Request) { r.Header.Set(k, v) }
}

func (h *harness) do(method, path string, body io.Reader, opts ...reqOpt) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, o := range opts {
		o(req)
	}
	w := httptest.NewRecorder()
	h.router.ServeHTTP(w, req)
	return w
}

func (h *harness) json(method, path, body string, opts ...reqOpt) *httptest.ResponseRecorder {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	} else if method != http.MethodGet {
		r = http.NoBody
	}
	return h.do(method, path, r, opts...)
}

func strPtr(s string) *string { return &s }
