package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssokolov/blogium/models"
)

func TestProfilePage(t *testing.T) {
	r, db := newServer(t)
	seed(t, db)

	w := doRequest(r, http.MethodGet, "/api/v1/profiles/alice", "", nil)
	assertStatus(t, w, http.StatusOK)
	var data struct {
		Profile struct {
			Username string `json:"username"`
		} `json:"profile"`
	}
	decodeData(t, w, &data)
	assert.Equal(t, "alice", data.Profile.Username)

	w = doRequest(r, http.MethodGet, "/api/v1/profiles/nobody", "", nil)
	assertStatus(t, w, http.StatusNotFound)
}

func TestProfileListingOwnerBypass(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	// Alice sees every one of her posts, drafts and scheduled included.
	w := doRequest(r, http.MethodGet, "/api/v1/profiles/alice/posts", token(t, f.alice), nil)
	assertStatus(t, w, http.StatusOK)
	assert.ElementsMatch(t, []string{"Visible", "Draft", "Scheduled"}, listedTitles(t, w))

	// Visitors only get what passes the publication gate.
	w = doRequest(r, http.MethodGet, "/api/v1/profiles/alice/posts", token(t, f.bob), nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, []string{"Visible"}, listedTitles(t, w))

	w = doRequest(r, http.MethodGet, "/api/v1/profiles/alice/posts", "", nil)
	assertStatus(t, w, http.StatusOK)
	assert.Equal(t, []string{"Visible"}, listedTitles(t, w))
}

func TestUpdateProfile(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	w := doRequest(r, http.MethodPatch, "/api/v1/users/me", token(t, f.alice),
		map[string]string{"first_name": "Alice", "last_name": "Liddell", "email": "alice@example.com"})
	assertStatus(t, w, http.StatusOK)

	var user models.User
	require.NoError(t, db.First(&user, f.alice.ID).Error)
	assert.Equal(t, "Alice", user.FirstName)
	assert.Equal(t, "Liddell", user.LastName)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Equal(t, "alice", user.Username, "untouched fields keep their value")

	// Renaming onto a taken username is rejected.
	w = doRequest(r, http.MethodPatch, "/api/v1/users/me", token(t, f.alice),
		map[string]string{"username": "bob"})
	assertStatus(t, w, http.StatusConflict)

	w = doRequest(r, http.MethodPatch, "/api/v1/users/me", token(t, f.alice),
		map[string]string{"username": "a!"})
	assertStatus(t, w, http.StatusBadRequest)

	w = doRequest(r, http.MethodPatch, "/api/v1/users/me", token(t, f.alice),
		map[string]string{"username": "alice.liddell"})
	assertStatus(t, w, http.StatusOK)
	require.NoError(t, db.First(&user, f.alice.ID).Error)
	assert.Equal(t, "alice.liddell", user.Username)
}

func TestMe(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	w := doRequest(r, http.MethodGet, "/api/v1/users/me", token(t, f.bob), nil)
	assertStatus(t, w, http.StatusOK)
	var data struct {
		User models.User `json:"user"`
	}
	decodeData(t, w, &data)
	assert.Equal(t, f.bob.ID, data.User.ID)

	// Anonymous viewers are sent to the login page.
	w = doRequest(r, http.MethodGet, "/api/v1/users/me", "", nil)
	assertStatus(t, w, http.StatusFound)
}
