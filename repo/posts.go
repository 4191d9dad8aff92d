package repo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ssokolov/blogium/models"
	"github.com/ssokolov/blogium/policy"
)

// PageSize is the fixed listing page size shared by the index, category and
// profile pages.
const PageSize = 10

// commentCountExpr annotates each listed post with its comment count inside
// the listing query itself, one query for the whole page.
const commentCountExpr = "posts.*, (SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count"

// Page is one page of a post listing.
type Page struct {
	Items      []models.Post `json:"items"`
	Number     int           `json:"page"`
	Size       int           `json:"page_size"`
	Total      int64         `json:"total"`
	TotalPages int           `json:"total_pages"`
	HasNext    bool          `json:"has_next"`
	HasPrev    bool          `json:"has_prev"`
}

// ListFilter selects a listing context. A nil CategoryID/AuthorID leaves the
// dimension unconstrained. Viewer is the requesting identity
// (policy.AnonymousID when unauthenticated).
type ListFilter struct {
	CategoryID *uint
	AuthorID   *uint
	Viewer     uint
}

// Posts composes the filtered, annotated, ordered and paginated post
// queries used by every listing and detail endpoint.
type Posts struct {
	db *gorm.DB
}

func NewPosts(db *gorm.DB) *Posts {
	return &Posts{db: db}
}

// List returns one page of posts for the given context. The publication
// gate applies to everyone except a profile owner browsing their own posts.
// Out-of-range page numbers clamp to the nearest valid page.
func (r *Posts) List(ctx context.Context, f ListFilter, page int) (*Page, error) {
	now := time.Now()

	query := r.db.WithContext(ctx).Model(&models.Post{})
	if !ownListing(f) {
		query = query.Scopes(policy.PublishedScope(now))
	}
	if f.CategoryID != nil {
		query = query.Where("posts.category_id = ?", *f.CategoryID)
	}
	if f.AuthorID != nil {
		query = query.Where("posts.author_id = ?", *f.AuthorID)
	}
	// New session so the count and the page query don't share statement state.
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}

	page = clampPage(page, total)

	var posts []models.Post
	err := query.
		Select(commentCountExpr).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		Order("posts.pub_date DESC, posts.title ASC").
		Offset((page - 1) * PageSize).
		Limit(PageSize).
		Find(&posts).Error
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}

	totalPages := pageCount(total)
	return &Page{
		Items:      posts,
		Number:     page,
		Size:       PageSize,
		Total:      total,
		TotalPages: totalPages,
		HasNext:    page < totalPages,
		HasPrev:    page > 1,
	}, nil
}

// VisibleByID loads a post for reading. Missing and hidden posts are
// indistinguishable: both return (nil, nil).
func (r *Posts) VisibleByID(ctx context.Context, id, viewerID uint) (*models.Post, error) {
	post, err := r.ByID(ctx, id)
	if err != nil || post == nil {
		return nil, err
	}
	if !policy.Visible(post, viewerID, time.Now()) {
		return nil, nil
	}
	return post, nil
}

// ByID loads a post regardless of visibility, for ownership checks on
// mutation paths. Returns (nil, nil) when the post does not exist.
func (r *Posts) ByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Select(commentCountExpr).
		Preload("Author").
		Preload("Category").
		Preload("Location").
		First(&post, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	} else if err != nil {
		return nil, fmt.Errorf("get post by id: %w", err)
	}
	return &post, nil
}

// ownListing reports whether this is a profile listing browsed by its own
// author, the one context where the publication gate is bypassed.
func ownListing(f ListFilter) bool {
	return f.AuthorID != nil && policy.CanMutate(*f.AuthorID, f.Viewer)
}

func clampPage(page int, total int64) int {
	if page < 1 {
		return 1
	}
	if last := pageCount(total); page > last {
		return last
	}
	return page
}

func pageCount(total int64) int {
	pages := int((total + PageSize - 1) / PageSize)
	if pages < 1 {
		return 1
	}
	return pages
}
