package models

import "time"

type ReactionType string

// ReactionLike is the only reaction type in use.
const ReactionLike ReactionType = "like"

// Reaction is at most one per (PostID, UserID).
type Reaction struct {
	ID        string
	PostID    string
	UserID    string
	Type      ReactionType
	CreatedAt time.Time
}
