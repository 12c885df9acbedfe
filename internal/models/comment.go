package models

import "time"

// Comment is a user-authored reply attached to a post. Comments are
// immutable once created; there is no edit or delete path.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	PostID    uint      `gorm:"not null;index" json:"post_id"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Author    *User     `gorm:"-" json:"author,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}
