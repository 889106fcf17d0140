package posts

import (
	"context"

	"github.com/dmitrijs2005/communityfeed/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, post *models.Post) (*models.Post, error)
	GetByID(ctx context.Context, id string) (*models.PostView, error)
	Exists(ctx context.Context, id string) (bool, error)
}
