package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"github.com/dmitrijs2005/communityfeed/internal/common"
	"github.com/dmitrijs2005/communityfeed/internal/dbx"
	"github.com/dmitrijs2005/communityfeed/internal/server/models"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/repomanager"
)

// ReactionService flips a user's like on a post.
type ReactionService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewReactionService(db *sql.DB, m repomanager.RepositoryManager) *ReactionService {
	return &ReactionService{db: db, repomanager: m}
}

// ToggleLike removes the user's like if present, otherwise adds one, and
// reports the resulting state. The unique (post, user) key in the store is
// what keeps concurrent toggles from producing two likes; losing that race
// means the like already exists, so the result is liked.
func (s *ReactionService) ToggleLike(ctx context.Context, postID, userID string) (liked bool, err error) {
	ctx, span := tracer.Start(ctx, "ReactionService.ToggleLike")
	defer func() {
		span.SetAttributes(attribute.Bool("liked", liked))
		endSpan(span, err)
	}()

	if !validID(postID) {
		return false, fmt.Errorf("post %w", common.ErrorNotFound)
	}

	err = dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Reactions(tx)

		deleted, err := repo.Delete(ctx, postID, userID)
		if err != nil {
			return wrap(err, "error deleting reaction")
		}
		if deleted {
			liked = false
			return nil
		}

		if err := repo.Create(ctx, &models.Reaction{PostID: postID, UserID: userID, Type: models.ReactionLike}); err != nil {
			return wrap(err, "error creating reaction")
		}
		liked = true
		return nil
	})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return true, nil
		}
		return false, err
	}

	return liked, nil
}

// LikesCount returns the current number of likes on postID.
func (s *ReactionService) LikesCount(ctx context.Context, postID string) (int64, error) {
	if !validID(postID) {
		return 0, nil
	}
	n, err := s.repomanager.Reactions(s.db).CountByPost(ctx, postID)
	if err != nil {
		return 0, wrap(err, "error counting likes")
	}
	return n, nil
}
