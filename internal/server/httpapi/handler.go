// Package httpapi exposes the services over HTTP with gin.
package httpapi

import (
	"context"
	"time"

	"github.com/dmitrijs2005/communityfeed/internal/logging"
	"github.com/dmitrijs2005/communityfeed/internal/server/models"
	"github.com/dmitrijs2005/communityfeed/internal/server/observability"
	"github.com/dmitrijs2005/communityfeed/internal/server/services"
)

type UserService interface {
	Register(ctx context.Context, in services.RegisterInput) (*models.User, string, error)
	Login(ctx context.Context, email, password string) (*models.User, string, error)
	ResolveSession(ctx context.Context, token string) (string, error)
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, upd models.ProfileUpdate) (*models.User, error)
}

type PostService interface {
	CreatePost(ctx context.Context, authorID string, in services.PostInput) (*models.Post, error)
	GetPost(ctx context.Context, id string) (*models.PostView, error)
	CreateComment(ctx context.Context, postID, authorID string, body *string) (*models.Comment, error)
	ListComments(ctx context.Context, postID string) ([]*models.CommentView, error)
	CreateReport(ctx context.Context, reporterID string, in services.ReportInput) (*models.Report, error)
}

type ReactionService interface {
	ToggleLike(ctx context.Context, postID, userID string) (bool, error)
	LikesCount(ctx context.Context, postID string) (int64, error)
}

type FeedService interface {
	GetFeed(ctx context.Context, limit int) ([]*models.FeedItem, error)
}

type MediaService interface {
	Upload(ctx context.Context, userID, contentType string, data []byte) (string, error)
	PresignUpload(ctx context.Context, userID, contentType string) (*models.UploadTicket, error)
}

// Handler serves the /api routes.
type Handler struct {
	users     UserService
	posts     PostService
	reactions ReactionService
	feed      FeedService
	media     MediaService

	logger  logging.Logger
	metrics *observability.Metrics

	maxUploadBytes int64
	now            func() time.Time
}

type Options struct {
	Users     UserService
	Posts     PostService
	Reactions ReactionService
	Feed      FeedService
	Media     MediaService

	Logger         logging.Logger
	Metrics        *observability.Metrics
	MaxUploadBytes int64
}

func NewHandler(o Options) *Handler {
	return &Handler{
		users:          o.Users,
		posts:          o.Posts,
		reactions:      o.Reactions,
		feed:           o.Feed,
		media:          o.Media,
		logger:         o.Logger.With("module", "http"),
		metrics:        o.Metrics,
		maxUploadBytes: o.MaxUploadBytes,
		now:            time.Now,
	}
}
