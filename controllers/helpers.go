package controllers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ssokolov/blogium/middleware"
	"github.com/ssokolov/blogium/policy"
)

// getViewerID returns the authenticated viewer, or policy.AnonymousID when
// the request carries no identity.
func getViewerID(ctx *gin.Context) uint {
	value, exists := ctx.Get(middleware.ContextUserIDKey)
	if !exists {
		return policy.AnonymousID
	}

	switch v := value.(type) {
	case uint:
		return v
	case int:
		return uint(v)
	case int64:
		return uint(v)
	case float64:
		return uint(v)
	default:
		return policy.AnonymousID
	}
}

func getViewerUsername(ctx *gin.Context) string {
	value, exists := ctx.Get(middleware.ContextUsernameKey)
	if !exists {
		return ""
	}
	username, _ := value.(string)
	return username
}

// parsePage reads the page query parameter; anything unparseable means
// page one. Range clamping happens inside the listing query.
func parsePage(ctx *gin.Context) int {
	page, err := strconv.Atoi(ctx.Query("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func parseID(ctx *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(ctx.Param(name), 10, 32)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// postDetailPath is the canonical detail location used by
// forbidden-mutation redirects.
func postDetailPath(postID uint) string {
	return fmt.Sprintf("/api/v1/posts/%d", postID)
}

// redirectToPost converts a failed ownership check into a redirect to the
// post's detail page instead of a hard permission error.
func redirectToPost(ctx *gin.Context, postID uint) {
	ctx.Redirect(http.StatusFound, postDetailPath(postID))
	ctx.Abort()
}
