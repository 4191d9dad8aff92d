// Package policy holds the read-visibility and mutation-ownership rules for
// posts and comments. The predicates are pure; callers decide how a negative
// answer surfaces (404 for invisible reads, redirect for forbidden writes).
package policy

import (
	"time"

	"gorm.io/gorm"

	"github.com/ssokolov/blogium/models"
)

// AnonymousID marks a request with no authenticated viewer. User IDs are
// assigned from 1 by the identity provider, so 0 never matches an author.
const AnonymousID uint = 0

// Visible reports whether the viewer may read the post. The author always
// may, drafts and scheduled posts included. Everyone else passes the
// publication gate: the post and its category are published and the
// publication timestamp has been reached. Posts orphaned by a category
// deletion have no category and are hidden from non-authors.
func Visible(post *models.Post, viewerID uint, now time.Time) bool {
	if viewerID != AnonymousID && viewerID == post.AuthorID {
		return true
	}
	if !post.IsPublished {
		return false
	}
	if post.Category == nil || !post.Category.IsPublished {
		return false
	}
	return !post.PubDate.After(now)
}

// CanMutate reports whether the viewer may update or delete an entity owned
// by authorID. Only the author may; anonymous viewers own nothing.
func CanMutate(authorID, viewerID uint) bool {
	return viewerID != AnonymousID && viewerID == authorID
}

// PublishedScope is the set-level form of the publication gate, used to
// build listing querysets. It intentionally carries no author bypass:
// index and category pages show only publicly visible posts, and the
// profile page applies it for every viewer but the profile owner.
func PublishedScope(now time.Time) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.
			Joins("JOIN categories ON categories.id = posts.category_id").
			Where("posts.is_published = ?", true).
			Where("categories.is_published = ?", true).
			Where("posts.pub_date <= ?", now)
	}
}
