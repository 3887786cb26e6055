package models

import (
	"time"
)

// Styling defaults applied when a post is created without explicit styling.
const (
	DefaultFontSize        = 16
	DefaultTextColor       = "#000000"
	DefaultBackgroundColor = "#FFFFFF"
)

// Post represents a shared piece of content: an image, a styled text, or both.
// UserID and CreatedAt are immutable after creation.
type Post struct {
	ID              uint   `gorm:"primaryKey" json:"id"`
	UserID          uint   `gorm:"not null;index" json:"user_id"`
	User            User   `gorm:"foreignKey:UserID" json:"user"`
	ImagePath       string `json:"image_path"`
	Content         string `gorm:"type:text" json:"content"`
	FontSize        int    `gorm:"not null" json:"font_size"`
	TextColor       string `gorm:"not null" json:"text_color"`
	BackgroundColor string `gorm:"not null" json:"background_color"`
	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// Liked indicates whether the current requesting user liked this post (computed)
	Liked     bool      `gorm:"->" json:"liked"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
