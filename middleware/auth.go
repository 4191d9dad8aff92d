package middleware

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ssokolov/blogium/config"
	"github.com/ssokolov/blogium/utils"
)

const (
	// ContextUserIDKey is the key used to store the viewer's user ID in Gin context.
	ContextUserIDKey = "user_id"
	// ContextUsernameKey stores the viewer's username inside Gin context.
	ContextUsernameKey = "username"
)

// OptionalAuth resolves the current viewer from a Bearer token when one is
// present and valid. Read endpoints use it: an absent or bad token just
// means an anonymous viewer, never a rejected request.
func OptionalAuth() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if claims := claimsFromRequest(ctx); claims != nil {
			ctx.Set(ContextUserIDKey, claims.UserID)
			ctx.Set(ContextUsernameKey, claims.Username)
		}
		ctx.Next()
	}
}

// LoginRequired guards mutation endpoints. Anonymous requests are not an
// error: they are sent to the identity provider's login page with the
// original path as the next hop.
func LoginRequired() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		claims := claimsFromRequest(ctx)
		if claims == nil {
			cfg := config.Get()
			next := url.QueryEscape(ctx.Request.URL.Path)
			ctx.Redirect(http.StatusFound, cfg.LoginURL+"?next="+next)
			ctx.Abort()
			return
		}

		ctx.Set(ContextUserIDKey, claims.UserID)
		ctx.Set(ContextUsernameKey, claims.Username)
		ctx.Next()
	}
}

func claimsFromRequest(ctx *gin.Context) *utils.Claims {
	authHeader := ctx.GetHeader("Authorization")
	if authHeader == "" {
		return nil
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return nil
	}

	tokenString := strings.TrimSpace(parts[1])
	if tokenString == "" {
		return nil
	}

	claims, err := utils.ParseToken(tokenString)
	if err != nil {
		return nil
	}
	return claims
}
