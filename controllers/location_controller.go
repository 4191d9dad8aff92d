package controllers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/ssokolov/blogium/models"
	"github.com/ssokolov/blogium/repo"
	"github.com/ssokolov/blogium/utils"
)

// LocationController manages the places posts can be tagged with.
type LocationController struct {
	db        *gorm.DB
	locations *repo.Locations
}

// NewLocationController creates a new LocationController instance.
func NewLocationController(db *gorm.DB) *LocationController {
	return &LocationController{db: db, locations: repo.NewLocations(db)}
}

// List returns published locations ordered by name.
func (l *LocationController) List(ctx *gin.Context) {
	locations, err := l.locations.ListPublished(ctx.Request.Context())
	if err != nil {
		utils.Error(ctx, http.StatusInternalServerError, 50050, "failed to list locations")
		return
	}
	utils.Success(ctx, gin.H{"locations": locations})
}

// Create adds a location.
func (l *LocationController) Create(ctx *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required,min=1"`
	}
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.Error(ctx, http.StatusBadRequest, 40050, "invalid request payload")
		return
	}

	name := utils.SanitizePlain(strings.TrimSpace(req.Name))
	if name == "" {
		utils.Error(ctx, http.StatusBadRequest, 40051, "name cannot be empty")
		return
	}

	location := models.Location{Name: name, IsPublished: true}
	if err := l.db.Create(&location).Error; err != nil {
		utils.Sugar.Errorw("create location failed", "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50051, "failed to create location")
		return
	}
	utils.Success(ctx, gin.H{"location": location})
}

// Delete soft-deletes a location by unpublishing it. Posts referencing it
// keep the reference; only listings stop offering it.
func (l *LocationController) Delete(ctx *gin.Context) {
	locationID, ok := parseID(ctx, "id")
	if !ok {
		utils.NotFound(ctx, 40450)
		return
	}

	var location models.Location
	if err := l.db.First(&location, locationID).Error; err != nil {
		utils.NotFound(ctx, 40450)
		return
	}

	if err := l.db.Model(&location).Update("is_published", false).Error; err != nil {
		utils.Sugar.Errorw("unpublish location failed", "location_id", locationID, "err", err)
		utils.Error(ctx, http.StatusInternalServerError, 50052, "failed to delete location")
		return
	}
	utils.Success(ctx, gin.H{"message": "location deleted"})
}
