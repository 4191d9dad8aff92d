package controllers_test

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssokolov/blogium/models"
)

func TestIndexListing(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	w := doRequest(r, http.MethodGet, "/api/v1/posts", "", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, []string{"Visible"}, listedTitles(t, w))

	// The author's own drafts stay out of the index too.
	w = doRequest(r, http.MethodGet, "/api/v1/posts", token(t, f.alice), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, []string{"Visible"}, listedTitles(t, w))
}

func TestIndexCommentCount(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	for i := 0; i < 4; i++ {
		body := map[string]string{"text": fmt.Sprintf("comment %d", i)}
		w := doRequest(r, http.MethodPost,
			fmt.Sprintf("/api/v1/posts/%d/comments", f.visible.ID), token(t, f.bob), body)
		assertStatus(t, w, http.StatusOK)
	}

	w := doRequest(r, http.MethodGet, "/api/v1/posts", "", nil)
	assertStatus(t, w, http.StatusOK)
	var data listingData
	decodeData(t, w, &data)
	require.Len(t, data.Posts.Items, 1)
	assert.EqualValues(t, 4, data.Posts.Items[0].CommentCount)
}

func TestPostDetailVisibility(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	tests := []struct {
		name   string
		postID uint
		bearer string
		status int
	}{
		{"visible post, anonymous", f.visible.ID, "", http.StatusOK},
		{"scheduled post, anonymous", f.scheduled.ID, "", http.StatusNotFound},
		{"scheduled post, author", f.scheduled.ID, token(t, f.alice), http.StatusOK},
		{"draft, other viewer", f.draft.ID, token(t, f.bob), http.StatusNotFound},
		{"draft, author", f.draft.ID, token(t, f.alice), http.StatusOK},
		{"missing post", 9999, token(t, f.alice), http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", tt.postID), tt.bearer, nil)
			assertStatus(t, w, tt.status)
		})
	}
}

func TestCreatePost(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	body := map[string]interface{}{
		"title":       "New post",
		"text":        "fresh content",
		"category_id": f.travel.ID,
	}
	w := doRequest(r, http.MethodPost, "/api/v1/posts", token(t, f.bob), body)
	assertStatus(t, w, http.StatusOK)

	var data struct {
		Post models.Post `json:"post"`
	}
	decodeData(t, w, &data)
	assert.Equal(t, f.bob.ID, data.Post.AuthorID)
	assert.True(t, data.Post.IsPublished)

	// It is immediately live on the index.
	listing := doRequest(r, http.MethodGet, "/api/v1/posts", "", nil)
	assert.Contains(t, listedTitles(t, listing), "New post")
}

func TestCreatePostValidation(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	tests := []struct {
		name string
		body map[string]interface{}
	}{
		{"missing category", map[string]interface{}{"title": "x", "text": "y"}},
		{"unknown category", map[string]interface{}{"title": "x", "text": "y", "category_id": 999}},
		{"missing title", map[string]interface{}{"text": "y", "category_id": f.travel.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(r, http.MethodPost, "/api/v1/posts", token(t, f.bob), tt.body)
			assertStatus(t, w, http.StatusBadRequest)
		})
	}
}

func TestAnonymousMutationRedirectsToLogin(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	w := doRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", f.visible.ID), "", nil)
	assertStatus(t, w, http.StatusFound)
	assert.Contains(t, w.Header().Get("Location"), "/login?next=")

	// Nothing was deleted.
	var count int64
	db.Model(&models.Post{}).Where("id = ?", f.visible.ID).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestNonOwnerMutationRedirectsToDetail(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	detail := fmt.Sprintf("/api/v1/posts/%d", f.visible.ID)

	w := doRequest(r, http.MethodDelete, detail, token(t, f.bob), nil)
	assertStatus(t, w, http.StatusFound)
	assert.Equal(t, detail, w.Header().Get("Location"))

	update := map[string]interface{}{
		"title": "hijacked", "text": "nope", "category_id": f.travel.ID,
	}
	w = doRequest(r, http.MethodPut, detail, token(t, f.bob), update)
	assertStatus(t, w, http.StatusFound)
	assert.Equal(t, detail, w.Header().Get("Location"))

	// The post survives untouched.
	var post models.Post
	require.NoError(t, db.First(&post, f.visible.ID).Error)
	assert.Equal(t, "Visible", post.Title)
}

func TestOwnerUpdatesPost(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	body := map[string]interface{}{
		"title":        "Visible, revised",
		"text":         "new text",
		"category_id":  f.travel.ID,
		"is_published": false,
	}
	w := doRequest(r, http.MethodPut, fmt.Sprintf("/api/v1/posts/%d", f.visible.ID), token(t, f.alice), body)
	assertStatus(t, w, http.StatusOK)

	// Unpublishing hides it from the index but not from the author.
	listing := doRequest(r, http.MethodGet, "/api/v1/posts", "", nil)
	assert.Empty(t, listedTitles(t, listing))

	detail := doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", f.visible.ID), token(t, f.alice), nil)
	assertStatus(t, detail, http.StatusOK)
}

func TestDeletePostCascadesComments(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	for i := 0; i < 3; i++ {
		w := doRequest(r, http.MethodPost,
			fmt.Sprintf("/api/v1/posts/%d/comments", f.visible.ID), token(t, f.bob),
			map[string]string{"text": "to be cascaded"})
		assertStatus(t, w, http.StatusOK)
	}

	w := doRequest(r, http.MethodDelete, fmt.Sprintf("/api/v1/posts/%d", f.visible.ID), token(t, f.alice), nil)
	assertStatus(t, w, http.StatusOK)

	var comments int64
	db.Model(&models.Comment{}).Where("post_id = ?", f.visible.ID).Count(&comments)
	assert.EqualValues(t, 0, comments)
}

func TestScheduledPostBecomesVisible(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	// Pull the scheduled post's publication time into the past.
	require.NoError(t, db.Model(&models.Post{}).
		Where("id = ?", f.scheduled.ID).
		Update("pub_date", time.Now().Add(-time.Minute)).Error)

	w := doRequest(r, http.MethodGet, "/api/v1/posts", "", nil)
	assert.Contains(t, listedTitles(t, w), "Scheduled")
}
