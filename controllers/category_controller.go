package controllers

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ssokolov/blogium/models"
	"github.com/ssokolov/blogium/policy"
	"github.com/ssokolov/blogium/repo"
	"github.com/ssokolov/blogium/utils"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9_-]+$`)

// CategoryController serves category pages and category management.
type CategoryController struct {
	db         *gorm.DB
	categories *repo.Categories
	posts      *repo.Posts
}

// NewCategoryController creates a new CategoryController instance.
func NewCategoryController(db *gorm.DB) *CategoryController {
	return &CategoryController{
		db:         db,
		categories: repo.NewCategories(db),
		posts:      repo.NewPosts(db),
	}
}

// List returns published categories ordered by title.
func (c *CategoryController) List(ctx *gin.Context) {
	categories, err := c.categories.ListPublished(ctx.Request.Context())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50040, "failed to list categories")
		return
	}
	utils.Success(ctx, gin.H{"categories": categories})
}

// Get resolves a category page by slug together with its paginated post
// listing. Unpublished categories are never browsable, author or not.
func (c *CategoryController) Get(ctx *gin.Context) {
	slug := strings.TrimSpace(ctx.Param("slug"))
	page := parsePage(ctx)
	viewerID := getViewerID(ctx)

	cacheKey := fmt.Sprintf("cache:category:%s:page=%d", slug, page)
	if viewerID == policy.AnonymousID {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	category, err := c.categories.PublishedBySlug(ctx.Request.Context(), slug)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50041, "failed to load category")
		return
	}
	if category == nil {
		utils.NotFound(ctx, 40440)
		return
	}

	listing, err := c.posts.List(ctx.Request.Context(), repo.ListFilter{
		CategoryID: &category.ID,
		Viewer:     viewerID,
	}, page)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50042, "failed to list category posts")
		return
	}

	payload := gin.H{"category": category, "posts": listing}
	if viewerID == policy.AnonymousID {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	}
	utils.Success(ctx, payload)
}

// Create adds a category. Slugs must be unique and URL-safe.
func (c *CategoryController) Create(ctx *gin.Context) {
	var req struct {
		Title       string `json:"title" binding:"required,min=1"`
		Description string `json:"description"`
		Slug        string `json:"slug" binding:"required,min=1"`
		IsPublished *bool  `json:"is_published"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40040, "invalid request payload")
		return
	}

	title := utils.SanitizePlain(strings.TrimSpace(req.Title))
	if title == "" {
		utils.Error(ctx, http.StatusBadRequest, 40041, "title cannot be empty")
		return
	}
	slug := strings.ToLower(strings.TrimSpace(req.Slug))
	if !slugPattern.MatchString(slug) {
		utils.Error(ctx, http.StatusBadRequest, 40042, "slug must contain only lowercase letters, digits, hyphen and underscore")
		return
	}

	var existing int64
	c.db.Model(&models.Category{}).Where("slug = ?", slug).Count(&existing)
	if existing > 0 {
		utils.Error(ctx, http.StatusConflict, 40940, "slug already in use")
		return
	}

	published := true
	if req.IsPublished != nil {
		published = *req.IsPublished
	}
	category := models.Category{
		Title:       title,
		Description: utils.Sanitize(req.Description),
		Slug:        slug,
		IsPublished: published,
	}
	if err := c.db.Create(&category).Error; err != nil {
		utils.Sugar.Errorw("create category failed", "slug", slug, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50043, "failed to create category")
		return
	}

	utils.Success(ctx, gin.H{"category": category})
}

// Delete removes a category. Its posts survive as orphans with a null
// category, which hides them from everyone but their authors.
func (c *CategoryController) Delete(ctx *gin.Context) {
	categoryID, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, 40440)
		return
	}

	var category models.Category
	if err := c.db.First(&category, categoryID).Error; err != nil {
		utils.NotFound(ctx, 40440)
		return
	}

	err := c.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Post{}).
			Where("category_id = ?", category.ID).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Category{}, category.ID).Error
	})
	if err != nil {
		utils.Sugar.Errorw("delete category failed", "category_id", categoryID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50044, "failed to delete category")
		return
	}

	utils.InvalidateByPrefix("cache:posts:list:")
	utils.InvalidateByPrefix("cache:category:")
	utils.Success(ctx, gin.H{"message": "category deleted"})
}
