package domain

import "time"

// AuthToken is an opaque bearer credential bound to exactly one user.
type AuthToken struct {
	Key       string    `json:"key"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
