package controllers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ssokolov/blogium/models"
	"github.com/ssokolov/blogium/policy"
	"github.com/ssokolov/blogium/repo"
	"github.com/ssokolov/blogium/utils"
)

// CommentController manages comment creation and the owner-only edits.
type CommentController struct {
	db       *gorm.DB
	posts    *repo.Posts
	comments *repo.Comments
	users    *repo.Users
}

// NewCommentController creates a new CommentController instance.
func NewCommentController(db *gorm.DB) *CommentController {
	return &CommentController{
		db:       db,
		posts:    repo.NewPosts(db),
		comments: repo.NewComments(db),
		users:    repo.NewUsers(db),
	}
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

// Create attaches a comment to a post the viewer can see. Commenting on an
// invisible post gets the same 404 as reading it.
func (c *CommentController) Create(ctx *gin.Context) {
	postID, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, 40402)
		return
	}

	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40030, "invalid request payload")
		return
	}

	text := utils.Sanitize(req.Text)
	if strings.TrimSpace(text) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40031, "text cannot be empty")
		return
	}

	viewerID := getViewerID(ctx)
	post, err := c.posts.VisibleByID(ctx.Request.Context(), postID, viewerID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50030, "failed to load post")
		return
	}
	if post == nil {
		utils.NotFound(ctx, 40402)
		return
	}

	author, err := c.users.Ensure(ctx.Request.Context(), viewerID, getViewerUsername(ctx))
	if err != nil {
		utils.Sugar.Errorw("ensure author failed", "viewer", viewerID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to create comment")
		return
	}

	comment := models.Comment{
		PostID:   post.ID,
		AuthorID: author.ID,
		Text:     text,
	}
	if err := c.db.Create(&comment).Error; err != nil {
		utils.Sugar.Errorw("create comment failed", "post_id", post.ID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50031, "failed to create comment")
		return
	}
	comment.Author = *author

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(post.ID)))
	utils.Success(ctx, gin.H{"comment": comment})
}

// Update edits a comment's text; a non-owner is bounced to the post detail.
func (c *CommentController) Update(ctx *gin.Context) {
	commentID, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, 40420)
		return
	}

	var req commentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40032, "invalid request payload")
		return
	}
	text := utils.Sanitize(req.Text)
	if strings.TrimSpace(text) == "" {
		utils.Error(ctx, http.StatusBadRequest, 40033, "text cannot be empty")
		return
	}

	comment, err := c.comments.ByID(ctx.Request.Context(), commentID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50032, "failed to load comment")
		return
	}
	if comment == nil {
		utils.NotFound(ctx, 40420)
		return
	}

	if !policy.CanMutate(comment.AuthorID, getViewerID(ctx)) {
		redirectToPost(ctx, comment.PostID)
		return
	}

	comment.Text = text
	if err := c.db.Save(comment).Error; err != nil {
		utils.Sugar.Errorw("update comment failed", "comment_id", commentID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50033, "failed to update comment")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(comment.PostID)))
	utils.Success(ctx, gin.H{"comment": comment})
}

// Delete removes a comment; a non-owner is bounced to the post detail.
func (c *CommentController) Delete(ctx *gin.Context) {
	commentID, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, 40420)
		return
	}

	comment, err := c.comments.ByID(ctx.Request.Context(), commentID)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50034, "failed to load comment")
		return
	}
	if comment == nil {
		utils.NotFound(ctx, 40420)
		return
	}

	if !policy.CanMutate(comment.AuthorID, getViewerID(ctx)) {
		redirectToPost(ctx, comment.PostID)
		return
	}

	if err := c.db.Delete(&models.Comment{}, comment.ID).Error; err != nil {
		utils.Sugar.Errorw("delete comment failed", "comment_id", commentID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50035, "failed to delete comment")
		return
	}

	utils.InvalidateByPrefix("cache:post:detail:" + strconv.Itoa(int(comment.PostID)))
	utils.Success(ctx, gin.H{"message": "comment deleted"})
}
