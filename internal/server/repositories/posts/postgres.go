// Package posts provides the PostgreSQL-backed store of posts.
package posts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/communityfeed/internal/common"
	"github.com/dmitrijs2005/communityfeed/internal/dbx"
	"github.com/dmitrijs2005/communityfeed/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, post *models.Post) (*models.Post, error) {
	query :=
		`INSERT INTO posts (author_id, body, image_url, visibility)
		 VALUES ($1, $2, $3, $4)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query,
		post.AuthorID, post.Body, post.ImageURL, string(post.Visibility)).Scan(&post.ID, &post.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("author %w", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return post, nil
}

// GetByID returns the post with its author's display name and avatar.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.PostView, error) {
	query :=
		`SELECT p.id, p.author_id, p.body, p.image_url, p.visibility, p.created_at,
		        u.name, u.avatar_url
		 FROM posts p
		 LEFT JOIN users u ON u.id = p.author_id
		 WHERE p.id = $1`

	v := &models.PostView{}
	var visibility string
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&v.ID, &v.AuthorID, &v.Body, &v.ImageURL, &visibility, &v.CreatedAt,
		&v.AuthorName, &v.AuthorAvatar,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) || dbx.IsInvalidText(err) {
			return nil, fmt.Errorf("post %w", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	v.Visibility = models.Visibility(visibility)

	return v, nil
}

func (r *PostgresRepository) Exists(ctx context.Context, id string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, id).Scan(&exists); err != nil {
		if dbx.IsInvalidText(err) {
			return false, nil
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	return exists, nil
}
