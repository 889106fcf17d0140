package models

import "time"

type Comment struct {
	ID        string    `json:"id"`
	PostID    string    `json:"post_id"`
	AuthorID  string    `json:"author_id"`
	Body      *string   `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentView struct {
	Comment
	AuthorName   *string `json:"author_name"`
	AuthorAvatar *string `json:"author_avatar"`
}
