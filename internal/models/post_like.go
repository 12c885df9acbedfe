package models

import "time"

// PostLike is a join row recording that a user likes a post. The
// (UserID, PostID) pair is unique; presence of the row is the source of
// truth for like state.
type PostLike struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user_post" json:"user_id"`
	PostID    uint      `gorm:"not null;uniqueIndex:idx_post_like_user_post" json:"post_id"`
	Post      Post      `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName keeps the join table named after the relation it records.
func (PostLike) TableName() string { return "post_likes" }
