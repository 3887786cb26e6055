package models

import (
	"time"
)

// Like represents a user's like on a post.
// Its identity is the (UserID, PostID) pair; there is no surrogate key, so a
// user can like a given post at most once and a second insert fails at the
// constraint level.
type Like struct {
	UserID    uint      `gorm:"primaryKey;autoIncrement:false" json:"user_id"`
	PostID    uint      `gorm:"primaryKey;autoIncrement:false" json:"post_id"`
	CreatedAt time.Time `json:"created_at"`
}
