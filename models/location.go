package models

import "time"

// Location is a place a post can be tagged with. Locations are never hard
// deleted; unpublishing hides them from listings while existing posts keep
// their reference.
type Location struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:256;not null" json:"name"`
	IsPublished bool      `gorm:"default:true" json:"is_published"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
