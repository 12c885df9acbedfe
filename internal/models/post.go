package models

import "time"

// Post is a user-authored feed item with optional image.
//
// LikesCount and CommentsCount are denormalized columns maintained in the
// same transaction as the post_likes/comments row they count, so they never
// drift from the join tables. Author and Liked are assembled per request by
// the feed aggregation and are never persisted.
type Post struct {
	ID            uint      `gorm:"primaryKey" json:"id"`
	Content       string    `gorm:"type:text;not null" json:"content"`
	ImageURL      string    `json:"image_url,omitempty"`
	UserID        uint      `gorm:"not null;index" json:"user_id"`
	LikesCount    int       `gorm:"not null;default:0" json:"likes_count"`
	CommentsCount int       `gorm:"not null;default:0" json:"comments_count"`
	Author        *User     `gorm:"-" json:"author,omitempty"`
	Liked         bool      `gorm:"-" json:"liked"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
