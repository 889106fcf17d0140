package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/communityfeed/internal/common"
	"github.com/dmitrijs2005/communityfeed/internal/server/models"
	"github.com/dmitrijs2005/communityfeed/internal/server/repositories/repomanager"
)

type PostInput struct {
	Body       *string
	ImageURL   *string
	Visibility string
}

type ReportInput struct {
	TargetType string
	TargetID   string
	Reason     *string
}

// PostService manages posts and the content attached to them: comments and
// moderation reports.
type PostService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewPostService(db *sql.DB, m repomanager.RepositoryManager) *PostService {
	return &PostService{db: db, repomanager: m}
}

func parseVisibility(raw string) (models.Visibility, error) {
	raw = strings.ToLower(strings.TrimSpace(raw))
	if raw == "" {
		return models.VisibilityPublic, nil
	}
	v := models.Visibility(raw)
	if !v.Valid() {
		return "", validationError(fmt.Sprintf("visibility must be %q or %q", models.VisibilityPublic, models.VisibilityMembers))
	}
	return v, nil
}

func (s *PostService) CreatePost(ctx context.Context, authorID string, in PostInput) (post *models.Post, err error) {
	ctx, span := tracer.Start(ctx, "PostService.CreatePost")
	defer func() { endSpan(span, err) }()

	visibility, err := parseVisibility(in.Visibility)
	if err != nil {
		return nil, err
	}

	post, err = s.repomanager.Posts(s.db).Create(ctx, &models.Post{
		AuthorID:   authorID,
		Body:       nonEmpty(in.Body),
		ImageURL:   nonEmpty(in.ImageURL),
		Visibility: visibility,
	})
	if err != nil {
		return nil, wrap(err, "error creating post")
	}
	return post, nil
}

func (s *PostService) GetPost(ctx context.Context, id string) (*models.PostView, error) {
	if !validID(id) {
		return nil, fmt.Errorf("post %w", common.ErrorNotFound)
	}

	post, err := s.repomanager.Posts(s.db).GetByID(ctx, id)
	if err != nil {
		return nil, wrap(err, "error loading post")
	}
	return post, nil
}

// CreateComment attaches a comment to an existing post.
func (s *PostService) CreateComment(ctx context.Context, postID, authorID string, body *string) (comment *models.Comment, err error) {
	ctx, span := tracer.Start(ctx, "PostService.CreateComment")
	defer func() { endSpan(span, err) }()

	if !validID(postID) {
		return nil, fmt.Errorf("post %w", common.ErrorNotFound)
	}

	exists, err := s.repomanager.Posts(s.db).Exists(ctx, postID)
	if err != nil {
		return nil, wrap(err, "error checking post")
	}
	if !exists {
		return nil, fmt.Errorf("post %w", common.ErrorNotFound)
	}

	comment, err = s.repomanager.Comments(s.db).Create(ctx, &models.Comment{
		PostID:   postID,
		AuthorID: authorID,
		Body:     nonEmpty(body),
	})
	if err != nil {
		return nil, wrap(err, "error creating comment")
	}
	return comment, nil
}

// ListComments returns the comments on postID oldest first. An unknown post
// simply has no comments.
func (s *PostService) ListComments(ctx context.Context, postID string) ([]*models.CommentView, error) {
	if !validID(postID) {
		return []*models.CommentView{}, nil
	}

	list, err := s.repomanager.Comments(s.db).ListByPost(ctx, postID)
	if err != nil {
		return nil, wrap(err, "error listing comments")
	}
	return list, nil
}

// CreateReport records a moderation report. The target is stored as given.
func (s *PostService) CreateReport(ctx context.Context, reporterID string, in ReportInput) (*models.Report, error) {
	targetType := strings.ToLower(strings.TrimSpace(in.TargetType))
	targetID := strings.TrimSpace(in.TargetID)
	if targetType == "" || targetID == "" {
		return nil, validationError("target_type and target_id are required")
	}

	report, err := s.repomanager.Reports(s.db).Create(ctx, &models.Report{
		ReporterID: reporterID,
		TargetType: targetType,
		TargetID:   targetID,
		Reason:     nonEmpty(in.Reason),
	})
	if err != nil {
		return nil, wrap(err, "error creating report")
	}
	return report, nil
}
