package models

import "time"

// User is a registered member. PasswordHash never leaves the server: it is
// excluded from JSON and cleared by Public.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Name         *string   `json:"name"`
	Username     *string   `json:"username"`
	AvatarURL    *string   `json:"avatar_url"`
	Bio          *string   `json:"bio"`
	CreatedAt    time.Time `json:"created_at"`
}

// Public returns a copy safe to hand to clients.
func (u *User) Public() *User {
	if u == nil {
		return nil
	}
	c := *u
	c.PasswordHash = ""
	return &c
}

// ProfileUpdate is a partial profile change; nil fields are left as they are.
type ProfileUpdate struct {
	Name      *string `json:"name"`
	Username  *string `json:"username"`
	AvatarURL *string `json:"avatar_url"`
	Bio       *string `json:"bio"`
}

func (p ProfileUpdate) Empty() bool {
	return p.Name == nil && p.Username == nil && p.AvatarURL == nil && p.Bio == nil
}
