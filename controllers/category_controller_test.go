package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssokolov/blogium/models"
)

func TestCategoryPage(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	w := doRequest(r, http.MethodGet, "/api/v1/categories/travel", "", nil)
	assertStatus(t, w, http.StatusOK)
	var data struct {
		Category models.Category `json:"category"`
		listingData
	}
	decodeData(t, w, &data)
	assert.Equal(t, "Travel", data.Category.Title)
	require.Len(t, data.Posts.Items, 1)
	assert.Equal(t, "Visible", data.Posts.Items[0].Title)

	// An unpublished category 404s for everyone, including post authors.
	for _, bearer := range []string{"", token(t, f.alice)} {
		w = doRequest(r, http.MethodGet, "/api/v1/categories/archive", bearer, nil)
		assertStatus(t, w, http.StatusNotFound)
	}

	// Missing slugs get the same answer as hidden ones.
	w = doRequest(r, http.MethodGet, "/api/v1/categories/no-such-slug", "", nil)
	assertStatus(t, w, http.StatusNotFound)
}

func TestCategoryList(t *testing.T) {
	r, db := newServer(t)
	seed(t, db)
	require.NoError(t, db.Create(&models.Category{Title: "Books", Slug: "books", IsPublished: true}).Error)

	w := doRequest(r, http.MethodGet, "/api/v1/categories", "", nil)
	assertStatus(t, w, http.StatusOK)
	var data struct {
		Categories []models.Category `json:"categories"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Categories, 2)
	assert.Equal(t, "Books", data.Categories[0].Title)
	assert.Equal(t, "Travel", data.Categories[1].Title)
}

func TestCreateCategory(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	w := doRequest(r, http.MethodPost, "/api/v1/categories", token(t, f.alice),
		map[string]interface{}{"title": "Food", "slug": "food", "description": "eats"})
	assertStatus(t, w, http.StatusOK)
	var data struct {
		Category models.Category `json:"category"`
	}
	decodeData(t, w, &data)
	assert.True(t, data.Category.IsPublished)

	// Duplicate slug.
	w = doRequest(r, http.MethodPost, "/api/v1/categories", token(t, f.alice),
		map[string]interface{}{"title": "Food again", "slug": "food"})
	assertStatus(t, w, http.StatusConflict)

	// Slug with illegal characters.
	w = doRequest(r, http.MethodPost, "/api/v1/categories", token(t, f.alice),
		map[string]interface{}{"title": "Bad", "slug": "no spaces!"})
	assertStatus(t, w, http.StatusBadRequest)
}

func TestDeleteCategoryOrphansPosts(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	w := doRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/categories/%d", f.travel.ID), token(t, f.alice), nil)
	assertStatus(t, w, http.StatusOK)

	var post models.Post
	require.NoError(t, db.First(&post, f.visible.ID).Error)
	assert.Nil(t, post.CategoryID)

	// An orphaned post disappears from the public index but the author
	// can still open it.
	w = doRequest(r, http.MethodGet, "/api/v1/posts", "", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Empty(t, listedTitles(t, w))

	w = doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", f.visible.ID), token(t, f.alice), nil)
	assertStatus(t, w, http.StatusOK)

	w = doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", f.visible.ID), token(t, f.bob), nil)
	assertStatus(t, w, http.StatusNotFound)
}
