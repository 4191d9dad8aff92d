package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ssokolov/blogium/repo"
	"github.com/ssokolov/blogium/utils"
)

// StatsController exposes aggregate counters and per-post view counts.
type StatsController struct {
	stats *repo.Stats
	posts *repo.Posts
}

// NewStatsController creates a new StatsController instance.
func NewStatsController(db *gorm.DB) *StatsController {
	return &StatsController{stats: repo.NewStats(db), posts: repo.NewPosts(db)}
}

// GetStats returns site-wide counters.
func (s *StatsController) GetStats(ctx *gin.Context) {
	stats, err := s.stats.Site(ctx.Request.Context())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50070, "failed to load stats")
		return
	}
	utils.Success(ctx, gin.H{"stats": stats})
}

// GetPostStats returns the recorded views for one post. The post must be
// visible to the viewer, otherwise the stats would leak its existence.
func (s *StatsController) GetPostStats(ctx *gin.Context) {
	postID, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, 40401)
		return
	}

	post, err := s.posts.VisibleByID(ctx.Request.Context(), postID, getViewerID(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50071, "failed to load post")
		return
	}
	if post == nil {
		utils.NotFound(ctx, 40401)
		return
	}

	views, err := s.stats.PostViews(ctx.Request.Context(), postDetailPath(post.ID))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50072, "failed to load post stats")
		return
	}
	utils.Success(ctx, gin.H{"post_id": post.ID, "views": views, "comments": post.CommentCount})
}
