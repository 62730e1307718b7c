package models

import "time"

type User struct {
	ID           uint    `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string  `gorm:"unique;not null" json:"username"`
	Email        string  `gorm:"unique;not null" json:"email"`
	PasswordHash string  `gorm:"not null" json:"-"` // json:"-" prevents the hash from being exposed in API responses
	Avatar       *string `json:"avatar"`
}

type Post struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Title        string    `gorm:"not null" json:"title"`
	Content      string    `gorm:"type:text;not null" json:"content"`
	Excerpt      string    `gorm:"size:500" json:"excerpt"`
	Slug         string    `gorm:"unique;not null;index" json:"slug"`
	CoverImage   string    `gorm:"size:500" json:"coverImage"`
	AuthorID     uint      `gorm:"not null;index" json:"authorId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
	Featured     bool      `gorm:"default:false;index" json:"featured"`
	ReadTime     int       `gorm:"default:5" json:"readTime"`
	Likes        int       `gorm:"default:0" json:"likes"`
	CommentCount int       `gorm:"default:0" json:"commentCount"`
	// Tags live in post_tags and are loaded explicitly by the posts package.
	Tags []string `gorm:"-" json:"tags"`
}

type PostTag struct {
	ID     uint   `gorm:"primaryKey"`
	PostID uint   `gorm:"not null;index" json:"post_id"`
	Tag    string `gorm:"not null;index" json:"tag"`
}

type Comment struct {
	ID      uint   `gorm:"primaryKey" json:"id"`
	Content string `gorm:"type:text;not null" json:"content"`
	PostID  uint   `gorm:"not null;index" json:"postId"`
	UserID  uint   `gorm:"not null;index" json:"userId"`
	// UserName and UserAvatar are copied from the user at insert time and never updated afterwards.
	UserName   string    `gorm:"size:100" json:"userName"`
	UserAvatar *string   `gorm:"size:255" json:"userAvatar"`
	CreatedAt  time.Time `json:"createdAt"`
}
