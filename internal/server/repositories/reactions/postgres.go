// Package reactions provides the PostgreSQL-backed store of post reactions.
// A user holds at most one reaction per post.
package reactions

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

// Create inserts the reaction. A second reaction by the same user on the
// same post fails with common.ErrorAlreadyExists.
func (r *PostgresRepository) Create(ctx context.Context, reaction *models.Reaction) error {
	query :=
		`INSERT INTO reactions (post_id, user_id, type)
		 VALUES ($1, $2, $3)
		 RETURNING id, created_at`

	err := r.db.QueryRowContext(ctx, query, reaction.PostID, reaction.UserID, string(reaction.Type)).
		Scan(&reaction.ID, &reaction.CreatedAt)
	if err != nil {
		switch {
		case dbx.IsUniqueViolation(err):
			return fmt.Errorf("reaction %w", common.ErrorAlreadyExists)
		case dbx.IsForeignKeyViolation(err), dbx.IsInvalidText(err):
			return fmt.Errorf("post %w", common.ErrorNotFound)
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

// Delete removes the user's reaction on the post and reports whether one
// existed.
func (r *PostgresRepository) Delete(ctx context.Context, postID, userID string) (bool, error) {
	query := `DELETE FROM reactions WHERE post_id = $1 AND user_id = $2`

	res, err := r.db.ExecContext(ctx, query, postID, userID)
	if err != nil {
		if dbx.IsInvalidText(err) {
			return false, fmt.Errorf("post %w", common.ErrorNotFound)
		}
		return false, fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected error: %w", err)
	}

	return n > 0, nil
}

func (r *PostgresRepository) CountByPost(ctx context.Context, postID string) (int64, error) {
	query := `SELECT COUNT(*) FROM reactions WHERE post_id = $1 AND type = $2`

	var n int64
	if err := r.db.QueryRowContext(ctx, query, postID, string(models.ReactionLike)).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
