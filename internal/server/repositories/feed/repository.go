package feed

import (
	"context"

	"github.com/dmitrijs2005/communityfeed/internal/server/models"
)

type Repository interface {
	List(ctx context.Context, visibilities []models.Visibility, limit int) ([]*models.FeedItem, error)
}
