// Package comments provides the PostgreSQL-backed store of post comments.
package comments

import (
	"context"
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

func (r *PostgresRepository) Create(ctx context.Context, comment *models.Comment) (*models.Comment, error) {
	query :=
		`INSERT INTO comments (post_id, author_id, body)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, comment.PostID, comment.AuthorID, comment.Body).
		Scan(&comment.ID, &comment.CreatedAt)
	if err != nil {
		if dbx.IsForeignKeyViolation(err) || dbx.IsInvalidText(err) {
			return nil, fmt.Errorf("post %w", common.ErrorNotFound)
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return comment, nil
}

// ListByPost returns the comments of postID oldest first, ties broken by id.
// The result is never nil.
func (r *PostgresRepository) ListByPost(ctx context.Context, postID string) ([]*models.CommentView, error) {
	query :=
		`SELECT c.id, c.post_id, c.author_id, c.body, c.created_at, u.name, u.avatar_url
		 FROM comments c
		 LEFT JOIN users u ON u.id = c.author_id
		 WHERE c.post_id = $1
		 ORDER BY c.created_at ASC, c.id ASC`

	result := []*models.CommentView{}

	rows, err := r.db.QueryContext(ctx, query, postID)
	if err != nil {
		if dbx.IsInvalidText(err) {
			return result, nil
		}
		return nil, fmt.Errorf("failed to select comments: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var item models.CommentView
		if err := rows.Scan(
			&item.ID, &item.PostID, &item.AuthorID, &item.Body, &item.CreatedAt,
			&item.AuthorName, &item.AuthorAvatar,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
