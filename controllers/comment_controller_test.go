package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssokolov/blogium/models"
)

func createComment(t *testing.T, r *gin.Engine, postID uint, bearer, text string) models.Comment {
	t.Helper()
	w := doRequest(r, http.MethodPost,
		fmt.Sprintf("/api/v1/posts/%d/comments", postID), bearer,
		map[string]string{"text": text})
	assertStatus(t, w, http.StatusOK)
	var data struct {
		Comment models.Comment `json:"comment"`
	}
	decodeData(t, w, &data)
	return data.Comment
}

func TestCreateComment(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	comment := createComment(t, r, f.visible.ID, token(t, f.bob), "nice trip")
	assert.Equal(t, f.bob.ID, comment.AuthorID)
	assert.Equal(t, f.visible.ID, comment.PostID)

	// Commenting on a post the viewer cannot see is a 404, same as reading it.
	w := doRequest(r, http.MethodPost,
		fmt.Sprintf("/api/v1/posts/%d/comments", f.draft.ID), token(t, f.bob),
		map[string]string{"text": "sneaky"})
	assertStatus(t, w, http.StatusNotFound)

	// The author can comment on their own draft.
	own := createComment(t, r, f.draft.ID, token(t, f.alice), "note to self")
	assert.Equal(t, f.alice.ID, own.AuthorID)
}

func TestCommentOwnership(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	comment := createComment(t, r, f.visible.ID, token(t, f.bob), "original")
	commentPath := fmt.Sprintf("/api/v1/comments/%d", comment.ID)
	detailPath := fmt.Sprintf("/api/v1/posts/%d", f.visible.ID)

	// A non-owner edit bounces to the comment's post.
	w := doRequest(r, http.MethodPut, commentPath, token(t, f.alice), map[string]string{"text": "edited"})
	assertStatus(t, w, http.StatusFound)
	assert.Equal(t, detailPath, w.Header().Get("Location"))

	w = doRequest(r, http.MethodDelete, commentPath, token(t, f.alice), nil)
	assertStatus(t, w, http.StatusFound)
	assert.Equal(t, detailPath, w.Header().Get("Location"))

	var kept models.Comment
	require.NoError(t, db.First(&kept, comment.ID).Error)
	assert.Equal(t, "original", kept.Text)

	// The owner may do both.
	w = doRequest(r, http.MethodPut, commentPath, token(t, f.bob), map[string]string{"text": "edited"})
	assertStatus(t, w, http.StatusOK)

	w = doRequest(r, http.MethodDelete, commentPath, token(t, f.bob), nil)
	assertStatus(t, w, http.StatusOK)

	var count int64
	db.Model(&models.Comment{}).Where("id = ?", comment.ID).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestCommentsListedAscending(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	createComment(t, r, f.visible.ID, token(t, f.bob), "first")
	createComment(t, r, f.visible.ID, token(t, f.alice), "second")

	w := doRequest(r, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d/comments", f.visible.ID), "", nil)
	assertStatus(t, w, http.StatusOK)

	var data struct {
		Comments []models.Comment `json:"comments"`
	}
	decodeData(t, w, &data)
	require.Len(t, data.Comments, 2)
	assert.Equal(t, "first", data.Comments[0].Text)
	assert.Equal(t, "second", data.Comments[1].Text)
}
