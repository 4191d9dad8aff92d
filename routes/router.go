package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ssokolov/blogium/config"
	"github.com/ssokolov/blogium/controllers"
	"github.com/ssokolov/blogium/middleware"
	"github.com/ssokolov/blogium/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Access log goes to its own rolling file, not the application log.
	if accessLogger, err := utils.AccessLogger(cfg); err == nil {
		r.Use(ginzap.Ginzap(accessLogger, time.RFC3339, true))
		r.Use(ginzap.RecoveryWithZap(accessLogger, false))
	} else {
		r.Use(gin.Recovery())
	}
	r.Use(middleware.RequestID())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	// Record views of post detail pages after each request.
	r.Use(middleware.PageViewRecorder(db))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	postController := controllers.NewPostController(db)
	commentController := controllers.NewCommentController(db)
	categoryController := controllers.NewCategoryController(db)
	locationController := controllers.NewLocationController(db)
	profileController := controllers.NewProfileController(db)
	statsController := controllers.NewStatsController(db)

	api := r.Group("/api/v1")

	// Read endpoints resolve the viewer when a token is present; anonymous
	// requests fall through to the public-visibility rules.
	public := api.Group("")
	public.Use(middleware.OptionalAuth())
	public.GET("/posts", postController.List)
	public.GET("/posts/:id", postController.Get)
	public.GET("/posts/:id/comments", postController.ListComments)
	public.GET("/posts/:id/stats", statsController.GetPostStats)
	public.GET("/categories", categoryController.List)
	public.GET("/categories/:slug", categoryController.Get)
	public.GET("/locations", locationController.List)
	public.GET("/profiles/:username", profileController.Get)
	public.GET("/profiles/:username/posts", profileController.ListPosts)
	public.GET("/stats", statsController.GetStats)

	// Mutations require a login; anonymous attempts are redirected to the
	// identity provider's login page.
	protected := api.Group("")
	protected.Use(middleware.LoginRequired(), middleware.RateLimit())
	protected.POST("/posts", postController.Create)
	protected.PUT("/posts/:id", postController.Update)
	protected.DELETE("/posts/:id", postController.Delete)
	protected.POST("/posts/:id/comments", commentController.Create)
	protected.PUT("/comments/:id", commentController.Update)
	protected.DELETE("/comments/:id", commentController.Delete)
	protected.POST("/categories", categoryController.Create)
	protected.DELETE("/categories/:id", categoryController.Delete)
	protected.POST("/locations", locationController.Create)
	protected.DELETE("/locations/:id", locationController.Delete)
	protected.GET("/users/me", profileController.Me)
	protected.PATCH("/users/me", profileController.UpdateMe)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
