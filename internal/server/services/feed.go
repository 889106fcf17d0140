package services

import (
	"context"
	"database/sql"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/communityfeed/internal/server/models"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/repomanager"
)

const (
	DefaultFeedLimit = 20
	MaxFeedLimit     = 100
)

// FeedService serves the aggregated, newest-first feed.
type FeedService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	defaultLimit int
	maxLimit     int
}

func NewFeedService(db *sql.DB, m repomanager.RepositoryManager, defaultLimit, maxLimit int) *FeedService {
	if maxLimit <= 0 {
		maxLimit = MaxFeedLimit
	}
	if defaultLimit <= 0 || defaultLimit > maxLimit {
		defaultLimit = min(DefaultFeedLimit, maxLimit)
	}
	return &FeedService{db: db, repomanager: m, defaultLimit: defaultLimit, maxLimit: maxLimit}
}

// NormalizeLimit maps a requested page size onto [1, maxLimit]; zero or
// negative means the default.
func (s *FeedService) NormalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return s.defaultLimit
	case limit > s.maxLimit:
		return s.maxLimit
	default:
		return limit
	}
}

// GetFeed returns up to limit public or members-only posts, newest first,
// each with its author and like and comment counts.
func (s *FeedService) GetFeed(ctx context.Context, limit int) (items []*models.FeedItem, err error) {
	ctx, span := tracer.Start(ctx, "FeedService.GetFeed")
	defer func() { endSpan(span, err) }()

	limit = s.NormalizeLimit(limit)
	span.SetAttributes(attribute.Int("feed.limit", limit))

	items, err = s.repomanager.Feed(s.db).List(ctx, models.FeedVisibilities, limit)
	if err != nil {
		return nil, wrap(err, "error loading feed")
	}
	return items, nil
}
