package reactions

import (
	"context"

	"github.com/dmitrijs2005/communityfeed/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, reaction *models.Reaction) error
	Delete(ctx context.Context, postID, userID string) (bool, error)
	CountByPost(ctx context.Context, postID string) (int64, error)
}
