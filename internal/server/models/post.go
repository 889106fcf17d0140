package models

import "time"

type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityMembers Visibility = "members"
)

// FeedVisibilities lists the visibilities that may appear in the feed.
var FeedVisibilities = []Visibility{VisibilityPublic, VisibilityMembers}

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityMembers
}

type Post struct {
	ID         string     `json:"id"`
	AuthorID   string     `json:"author_id"`
	Body       *string    `json:"body"`
	ImageURL   *string    `json:"image_url"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
}

// PostView is a post joined with its author's display fields.
type PostView struct {
	Post
	AuthorName   *string `json:"author_name"`
	AuthorAvatar *string `json:"author_avatar"`
}

// FeedItem is a post view with derived engagement counts.
type FeedItem struct {
	PostView
	LikesCount    int64 `json:"likes_count"`
	CommentsCount int64 `json:"comments_count"`
}
