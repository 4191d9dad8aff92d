package models

import "time"

// PageView aggregates daily view counts per request path.
type PageView struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Date      time.Time `gorm:"type:date;uniqueIndex:idx_date_path;not null" json:"date"`
	Path      string    `gorm:"size:255;uniqueIndex:idx_date_path;not null" json:"path"`
	Count     int64     `gorm:"default:0" json:"count"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
