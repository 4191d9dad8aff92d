package models

import (
	"time"

	"gorm.io/gorm"
)

// User mirrors an identity managed by the external identity provider.
// ID and Username originate from token claims; the remaining profile
// fields are maintained by the user through the profile endpoints.
// Username is the stable key used in public profile URLs.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:64;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255" json:"email,omitempty"`
	FirstName string    `gorm:"size:64" json:"first_name,omitempty"`
	LastName  string    `gorm:"size:64" json:"last_name,omitempty"`
	Bio       string    `gorm:"size:512" json:"bio,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Posts    []Post    `gorm:"foreignKey:AuthorID" json:"-"`
	Comments []Comment `gorm:"foreignKey:AuthorID" json:"-"`
}

// BeforeCreate hook ensures timestamps are set even when not provided.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	now := time.Now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	return nil
}

// BeforeUpdate ensures the UpdatedAt timestamp is refreshed.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	u.UpdatedAt = time.Now()
	return nil
}
