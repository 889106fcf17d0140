// Package feed reads the aggregated post feed: posts joined with their
// author and their like and comment counts, newest first.
package feed

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/communityfeed/internal/dbx"
	"github.com/dmitrijs2005/communityfeed/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// feedQuery is evaluated as a single statement so every count reflects the
// same snapshot as the posts it is attached to. %s is the visibility
// placeholder list, the limit is always the last parameter.
const feedQuery = `SELECT p.id, p.author_id, p.body, p.image_url, p.visibility, p.created_at,
       u.name, u.avatar_url,
       COALESCE(l.likes_count, 0), COALESCE(c.comments_count, 0)
FROM posts p
LEFT JOIN users u ON u.id = p.author_id
LEFT JOIN LATERAL (
    SELECT COUNT(*) AS likes_count FROM reactions r WHERE r.post_id = p.id AND r.type = 'like'
) l ON TRUE
LEFT JOIN LATERAL (
    SELECT COUNT(*) AS comments_count FROM comments cm WHERE cm.post_id = p.id
) c ON TRUE
WHERE p.visibility IN (%s)
ORDER BY p.created_at DESC, p.id DESC
LIMIT $%d`

func buildQuery(n int) string {
	placeholders := make([]string, n)
	for i := range placeholders {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	return fmt.Sprintf(feedQuery, strings.Join(placeholders, ", "), n+1)
}

// List returns at most limit feed items whose visibility is in visibilities.
func (r *PostgresRepository) List(ctx context.Context, visibilities []models.Visibility, limit int) ([]*models.FeedItem, error) {
	result := []*models.FeedItem{}
	if len(visibilities) == 0 || limit <= 0 {
		return result, nil
	}

	args := make([]any, 0, len(visibilities)+1)
	for _, v := range visibilities {
		args = append(args, string(v))
	}
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, buildQuery(len(visibilities)), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select feed: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			item       models.FeedItem
			visibility string
		)
		if err := rows.Scan(
			&item.ID, &item.AuthorID, &item.Body, &item.ImageURL, &visibility, &item.CreatedAt,
			&item.AuthorName, &item.AuthorAvatar,
			&item.LikesCount, &item.CommentsCount,
		); err != nil {
			return nil, err
		}
		item.Visibility = models.Visibility(visibility)
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
