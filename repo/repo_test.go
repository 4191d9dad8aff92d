package repo

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ssokolov/blogium/models"
)

var baseTime = time.Date(2024, 5, 14, 12, 0, 0, 0, time.UTC)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	// A single connection keeps every query on the same in-memory database.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Location{},
		&models.Category{},
		&models.Post{},
		&models.Comment{},
		&models.PageView{},
	))
	return db
}

type fixtures struct {
	alice, bob        models.User
	travel, hidden    models.Category
	visible, draft    models.Post
	scheduled         models.Post
	hiddenCat, orphan models.Post
}

// seed creates two users and one post per visibility situation. Only
// "visible" passes the publication gate for non-authors; every post
// belongs to alice.
func seed(t *testing.T, db *gorm.DB) fixtures {
	t.Helper()
	var f fixtures

	f.alice = models.User{ID: 1, Username: "alice"}
	f.bob = models.User{ID: 2, Username: "bob"}
	require.NoError(t, db.Create(&f.alice).Error)
	require.NoError(t, db.Create(&f.bob).Error)

	f.travel = models.Category{Title: "Travel", Slug: "travel", IsPublished: true}
	f.hidden = models.Category{Title: "Archive", Slug: "archive", IsPublished: false}
	require.NoError(t, db.Create(&f.travel).Error)
	require.NoError(t, db.Create(&f.hidden).Error)

	f.visible = post(f.alice.ID, &f.travel.ID, "Visible", baseTime.Add(-48*time.Hour), true)
	f.draft = post(f.alice.ID, &f.travel.ID, "Draft", baseTime.Add(-24*time.Hour), false)
	f.scheduled = post(f.alice.ID, &f.travel.ID, "Scheduled", time.Now().Add(24*time.Hour), true)
	f.hiddenCat = post(f.alice.ID, &f.hidden.ID, "Archived", baseTime.Add(-24*time.Hour), true)
	f.orphan = post(f.alice.ID, nil, "Orphan", baseTime.Add(-24*time.Hour), true)

	for _, p := range []*models.Post{&f.visible, &f.draft, &f.scheduled, &f.hiddenCat, &f.orphan} {
		require.NoError(t, db.Create(p).Error)
	}
	f.visible, f.draft = reload(t, db, f.visible.Title), reload(t, db, f.draft.Title)
	f.scheduled = reload(t, db, f.scheduled.Title)
	f.hiddenCat, f.orphan = reload(t, db, f.hiddenCat.Title), reload(t, db, f.orphan.Title)
	return f
}

func post(authorID uint, categoryID *uint, title string, pubDate time.Time, published bool) models.Post {
	return models.Post{
		AuthorID:    authorID,
		CategoryID:  categoryID,
		Title:       title,
		Text:        "text of " + title,
		PubDate:     pubDate,
		IsPublished: published,
	}
}

func reload(t *testing.T, db *gorm.DB, title string) models.Post {
	t.Helper()
	var p models.Post
	require.NoError(t, db.Where("title = ?", title).First(&p).Error)
	return p
}

func titles(posts []models.Post) []string {
	out := make([]string, 0, len(posts))
	for _, p := range posts {
		out = append(out, p.Title)
	}
	return out
}
