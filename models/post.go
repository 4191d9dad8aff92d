package models

import "time"

// Post is a blog publication. A post is publicly readable only when it is
// published, its category is published, and its pub_date is not in the
// future; the author reads their own posts regardless.
type Post struct {
	ID         uint  `gorm:"primaryKey" json:"id"`
	AuthorID   uint  `gorm:"index;not null" json:"author_id"`
	CategoryID *uint `gorm:"index" json:"category_id"`
	LocationID *uint `gorm:"index" json:"location_id"`

	Title string `gorm:"size:256;not null" json:"title"`
	Text  string `gorm:"type:text;not null" json:"text"`
	// Image is an opaque reference into external media storage.
	Image       string    `gorm:"size:512" json:"image,omitempty"`
	PubDate     time.Time `gorm:"index;not null" json:"pub_date"`
	IsPublished bool      `gorm:"default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	Author   User      `json:"author"`
	Category *Category `gorm:"constraint:OnDelete:SET NULL;" json:"category,omitempty"`
	Location *Location `gorm:"constraint:OnDelete:SET NULL;" json:"location,omitempty"`
	Comments []Comment `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"comments,omitempty"`

	// CommentCount is filled by listing queries, never stored.
	CommentCount int64 `gorm:"->;-:migration" json:"comment_count"`
}
