package repo

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/ssokolov/blogium/models"
)

// SiteStats is the public aggregate counters payload.
type SiteStats struct {
	Posts      int64 `json:"posts"`
	Comments   int64 `json:"comments"`
	Users      int64 `json:"users"`
	Categories int64 `json:"categories"`
	ViewsToday int64 `json:"views_today"`
}

// Stats aggregates site-wide and per-post counters.
type Stats struct {
	db *gorm.DB
}

func NewStats(db *gorm.DB) *Stats {
	return &Stats{db: db}
}

// Site returns the aggregate counters for the stats endpoint.
func (r *Stats) Site(ctx context.Context) (*SiteStats, error) {
	db := r.db.WithContext(ctx)
	var s SiteStats
	counts := []struct {
		model interface{}
		dst   *int64
	}{
		{&models.Post{}, &s.Posts},
		{&models.Comment{}, &s.Comments},
		{&models.User{}, &s.Users},
		{&models.Category{}, &s.Categories},
	}
	for _, c := range counts {
		if err := db.Model(c.model).Count(c.dst).Error; err != nil {
			return nil, fmt.Errorf("count %T: %w", c.model, err)
		}
	}

	today := midnight(time.Now())
	err := db.Model(&models.PageView{}).
		Where("date = ?", today).
		Select("COALESCE(SUM(count), 0)").
		Scan(&s.ViewsToday).Error
	if err != nil {
		return nil, fmt.Errorf("sum page views: %w", err)
	}
	return &s, nil
}

// PostViews returns the all-time recorded view count for a post detail path.
func (r *Stats) PostViews(ctx context.Context, path string) (int64, error) {
	var views int64
	err := r.db.WithContext(ctx).Model(&models.PageView{}).
		Where("path = ?", path).
		Select("COALESCE(SUM(count), 0)").
		Scan(&views).Error
	if err != nil {
		return 0, fmt.Errorf("sum post views: %w", err)
	}
	return views, nil
}

func midnight(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
