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

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,64}$`)

// ProfileController serves public profiles, their post listings, and the
// owner's profile management.
type ProfileController struct {
	db    *gorm.DB
	users *repo.Users
	posts *repo.Posts
}

// NewProfileController creates a new ProfileController instance.
func NewProfileController(db *gorm.DB) *ProfileController {
	return &ProfileController{db: db, users: repo.NewUsers(db), posts: repo.NewPosts(db)}
}

// Get resolves a public profile by username. The profile page itself has no
// visibility gate; only its post listing does.
func (p *ProfileController) Get(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	user, err := p.users.ByUsername(ctx.Request.Context(), username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50060, "failed to load profile")
		return
	}
	if user == nil {
		utils.NotFound(ctx, 40460)
		return
	}
	utils.Success(ctx, gin.H{"profile": publicProfile(user)})
}

// ListPosts returns the paginated posts of a profile. The owner sees all of
// their posts, drafts and scheduled ones included; everyone else sees only
// what the publication gate lets through.
func (p *ProfileController) ListPosts(ctx *gin.Context) {
	username := strings.TrimSpace(ctx.Param("username"))
	page := parsePage(ctx)
	viewerID := getViewerID(ctx)

	user, err := p.users.ByUsername(ctx.Request.Context(), username)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50061, "failed to load profile")
		return
	}
	if user == nil {
		utils.NotFound(ctx, 40460)
		return
	}

	cacheKey := fmt.Sprintf("cache:profile:%s:posts:page=%d", user.Username, page)
	if viewerID == policy.AnonymousID {
		if b, ok := utils.CacheGetBytes(cacheKey); ok {
			ctx.Data(http.StatusOK, "application/json", b)
			return
		}
	}

	listing, err := p.posts.List(ctx.Request.Context(), repo.ListFilter{
		AuthorID: &user.ID,
		Viewer:   viewerID,
	}, page)
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50062, "failed to list profile posts")
		return
	}

	payload := gin.H{"profile": publicProfile(user), "posts": listing}
	if viewerID == policy.AnonymousID {
		utils.CacheSetJSON(cacheKey, utils.JSONResponse{Code: 0, Message: "success", Data: payload}, time.Hour)
	}
	utils.Success(ctx, payload)
}

// Me returns the viewer's own profile.
func (p *ProfileController) Me(ctx *gin.Context) {
	viewerID := getViewerID(ctx)
	user, err := p.users.Ensure(ctx.Request.Context(), viewerID, getViewerUsername(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50063, "failed to load profile")
		return
	}
	utils.Success(ctx, gin.H{"user": user})
}

// UpdateMe lets a user edit their own profile fields.
func (p *ProfileController) UpdateMe(ctx *gin.Context) {
	var req struct {
		Username  *string `json:"username"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
		Email     *string `json:"email"`
		Bio       *string `json:"bio"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40060, "invalid request payload")
		return
	}

	viewerID := getViewerID(ctx)
	user, err := p.users.Ensure(ctx.Request.Context(), viewerID, getViewerUsername(ctx))
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50064, "failed to load profile")
		return
	}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if !usernamePattern.MatchString(username) {
			utils.Error(ctx, http.StatusBadRequest, 40061, "invalid username")
			return
		}
		if username != user.Username {
			var taken int64
			p.db.Model(&models.User{}).Where("username = ? AND id <> ?", username, user.ID).Count(&taken)
			if taken > 0 {
				utils.Error(ctx, http.StatusConflict, 40960, "username already in use")
				return
			}
			utils.InvalidateByPrefix("cache:profile:" + user.Username + ":posts:")
			user.Username = username
		}
	}
	if req.FirstName != nil {
		user.FirstName = utils.SanitizePlain(strings.TrimSpace(*req.FirstName))
	}
	if req.LastName != nil {
		user.LastName = utils.SanitizePlain(strings.TrimSpace(*req.LastName))
	}
	if req.Email != nil {
		user.Email = strings.TrimSpace(*req.Email)
	}
	if req.Bio != nil {
		user.Bio = utils.Sanitize(*req.Bio)
	}

	if err := p.db.Save(user).Error; err != nil {
		utils.Sugar.Errorw("update profile failed", "user_id", user.ID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50065, "failed to update profile")
		return
	}

	utils.InvalidateByPrefix("cache:profile:" + user.Username + ":posts:")
	utils.Success(ctx, gin.H{"user": user})
}

// publicProfile strips private fields from a profile payload.
func publicProfile(user *models.User) gin.H {
	return gin.H{
		"id":         user.ID,
		"username":   user.Username,
		"first_name": user.FirstName,
		"last_name":  user.LastName,
		"bio":        user.Bio,
		"created_at": user.CreatedAt,
	}
}
