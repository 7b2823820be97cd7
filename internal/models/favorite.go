package models

import "time"

// Favorite marks a property as saved by a user. At most one per (user, property).
type Favorite struct {
	CreatedAt  time.Time `json:"created_at"`
	Property   *Property `json:"property,omitempty"`
	ID         int64     `json:"id"`
	UserID     int64     `json:"-"`
	PropertyID int64     `json:"-"`
}

// Review is a user's rating of a property. At most one per (property, user).
type Review struct {
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
	ID         int64     `json:"id"`
	PropertyID int64     `json:"property"`
	UserID     int64     `json:"-"`
	Rating     int       `json:"rating"`
}
