package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ssokolov/blogium/models"
	"github.com/ssokolov/blogium/policy"
	"github.com/ssokolov/blogium/repo"
	"github.com/ssokolov/blogium/utils"
)

// PostController serves the index listing and post CRUD.
type PostController struct {
	db       *gorm.DB
	posts    *repo.Posts
	comments *repo.Comments
	users    *repo.Users
}

// NewPostController creates a new PostController instance.
func NewPostController(db *gorm.DB) *PostController {
	return &PostController{
		db:       db,
		posts:    repo.NewPosts(db),
		comments: repo.NewComments(db),
		users:    repo.NewUsers(db),
	}
}

type postRequest struct {
	Title       string     `json:"title" binding:"required,min=1"`
	Text        string     `json:"text" binding:"required"`
	CategoryID  *uint      `json:"category_id" binding:"required"`
	LocationID  *uint      `json:"location_id"`
	Image       string     `json:"image"`
	PubDate     *time.Time `json:"pub_date"`
	IsPublished *bool      `json:"is_published"`
}

// List returns the paginated index of publicly visible posts, newest
// publication first, each annotated with its comment count.
func (p *PostController) List(ctx *gin.Context) {
	page := parsePage(ctx)
	viewerID := getViewerID(ctx)

	// Cache only the anonymous rendering; authenticated views are cheap
	// enough and keying per viewer would explode the cache.
	cacheKey := fmt.Sprintf("cache:posts:list:page=%d", page)
	if viewerID == policy.AnonymousID {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	listing, err := p.posts.List(ctx.Request.Context(), repo.ListFilter{Viewer: viewerID}, page)
	if err != nil {
		utils.Sugar.Errorw("list posts failed", "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50021, "failed to list posts")
		return
	}

	payload := gin.H{"posts": listing}
	if viewerID == policy.AnonymousID {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	}
	utils.Success(ctx, payload)
}

// Get returns a single post with its comments. Hidden and missing posts are
// both a 404, so the existence of drafts cannot be probed.
func (p *PostController) Get(ctx *gin.Context) {
	postID, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, 40401)
		return
	}
	viewerID := getViewerID(ctx)

	cacheKey := "cache:post:detail:" + strconv.Itoa(int(postID))
	if viewerID == policy.AnonymousID {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	post, err := p.posts.VisibleByID(ctx.Request.Context(), postID, viewerID)
	if err != nil {
		utils.Sugar.Errorw("load post failed", "post_id", postID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}
	if post == nil {
		utils.NotFound(ctx, 40401)
		return
	}

	comments, err := p.comments.ListForPost(ctx.Request.Context(), post.ID)
	if err != nil {
		utils.Sugar.Errorw("load comments failed", "post_id", postID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load comments")
		return
	}
	post.Comments = comments
	post.CommentCount = int64(len(comments))

	payload := gin.H{"post": post}
	if viewerID == policy.AnonymousID {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	}
	utils.Success(ctx, payload)
}

// ListComments returns a post's comments oldest first.
func (p *PostController) ListComments(ctx *gin.Context) {
	postID, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, 40401)
		return
	}

	post, err := p.posts.VisibleByID(ctx.Request.Context(), postID, getViewerID(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50023, "failed to load post")
		return
	}
	if post == nil {
		utils.NotFound(ctx, 40401)
		return
	}

	comments, err := p.comments.ListForPost(ctx.Request.Context(), post.ID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50024, "failed to load comments")
		return
	}
	utils.Success(ctx, gin.H{"comments": comments})
}

// Create publishes a new post owned by the viewer.
func (p *PostController) Create(ctx *gin.Context) {
	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40020, "invalid request payload")
		return
	}

	fields, code, msg := p.validatePostRequest(&req)
	if code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}

	viewerID := getViewerID(ctx)
	author, err := p.users.Ensure(ctx.Request.Context(), viewerID, getViewerUsername(ctx))
	if err != nil {
		utils.Sugar.Errorw("ensure author failed", "viewer", viewerID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	post := models.Post{
		AuthorID:    author.ID,
		CategoryID:  fields.CategoryID,
		LocationID:  fields.LocationID,
		Title:       fields.Title,
		Text:        fields.Text,
		Image:       fields.Image,
		PubDate:     fields.PubDate,
		IsPublished: fields.IsPublished,
	}

	if err := p.db.Create(&post).Error; err != nil {
		utils.Sugar.Errorw("create post failed", "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50020, "failed to create post")
		return
	}

	p.invalidateListings(post.ID, author.Username)
	utils.Success(ctx, gin.H{"post": post})
}

// Update edits a post. A non-owner is bounced to the post's detail page.
func (p *PostController) Update(ctx *gin.Context) {
	postID, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, 40401)
		return
	}

	var req postRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40024, "invalid request payload")
		return
	}

	fields, code, msg := p.validatePostRequest(&req)
	if code != 0 {
		utils.Error(ctx, http.StatusBadRequest, code, msg)
		return
	}

	post, err := p.posts.ByID(ctx.Request.Context(), postID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50025, "failed to load post")
		return
	}
	if post == nil {
		utils.NotFound(ctx, 40403)
		return
	}

	if !policy.CanMutate(post.AuthorID, getViewerID(ctx)) {
		redirectToPost(ctx, post.ID)
		return
	}

	post.Title = fields.Title
	post.Text = fields.Text
	post.CategoryID = fields.CategoryID
	post.LocationID = fields.LocationID
	post.Image = fields.Image
	post.PubDate = fields.PubDate
	post.IsPublished = fields.IsPublished

	if err := p.db.Save(post).Error; err != nil {
		utils.Sugar.Errorw("update post failed", "post_id", postID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50026, "failed to update post")
		return
	}

	p.invalidateListings(post.ID, getViewerUsername(ctx))
	utils.Success(ctx, gin.H{"post": post})
}

// Delete removes a post and, through the cascade, all of its comments.
// A non-owner is bounced to the post's detail page.
func (p *PostController) Delete(ctx *gin.Context) {
	postID, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, 40401)
		return
	}

	post, err := p.posts.ByID(ctx.Request.Context(), postID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50027, "failed to load post")
		return
	}
	if post == nil {
		utils.NotFound(ctx, 40404)
		return
	}

	if !policy.CanMutate(post.AuthorID, getViewerID(ctx)) {
		redirectToPost(ctx, post.ID)
		return
	}

	err = p.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("post_id = ?", post.ID).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Post{}, post.ID).Error
	})
	if err != nil {
		utils.Sugar.Errorw("delete post failed", "post_id", postID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50028, "failed to delete post")
		return
	}

	p.invalidateListings(post.ID, getViewerUsername(ctx))
	utils.Success(ctx, gin.H{"message": "post deleted"})
}

type postFields struct {
	Title       string
	Text        string
	CategoryID  *uint
	LocationID  *uint
	Image       string
	PubDate     time.Time
	IsPublished bool
}

// validatePostRequest sanitizes and checks a create/update payload. A zero
// code means the fields are usable.
func (p *PostController) validatePostRequest(req *postRequest) (postFields, int, string) {
	var f postFields

	f.Title = utils.SanitizePlain(strings.TrimSpace(req.Title))
	if f.Title == "" {
		return f, 40021, "title cannot be empty"
	}
	f.Text = utils.Sanitize(req.Text)
	if strings.TrimSpace(f.Text) == "" {
		return f, 40022, "text cannot be empty"
	}

	if req.CategoryID == nil {
		return f, 40023, "category is required"
	}
	var category models.Category
	if err := p.db.First(&category, *req.CategoryID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return f, 40023, "unknown category"
		}
		return f, 40023, "unknown category"
	}
	f.CategoryID = req.CategoryID

	if req.LocationID != nil {
		var location models.Location
		if err := p.db.First(&location, *req.LocationID).Error; err != nil {
			return f, 40026, "unknown location"
		}
		f.LocationID = req.LocationID
	}

	// Image is an opaque media reference, stored untouched.
	f.Image = strings.TrimSpace(req.Image)

	// A future pub_date is a scheduled publication, hidden until due.
	f.PubDate = time.Now()
	if req.PubDate != nil {
		f.PubDate = *req.PubDate
	}
	f.IsPublished = true
	if req.IsPublished != nil {
		f.IsPublished = *req.IsPublished
	}
	return f, 0, ""
}

func (p *PostController) invalidateListings(postID uint, username string) {
	utils.InvalidateByPrefix("cache:posts:list:")
	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(postID)))
	utils.InvalidateByPrefix("cache:category:")
	if username != "" {
		utils.InvalidateByPrefix("cache:profile:" + username + ":posts:")
	}
}
