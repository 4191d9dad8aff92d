package controllers_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssokolov/blogium/models"
)

func TestLocations(t *testing.T) {
	r, db := newServer(t)
	f := seed(t, db)

	w := doRequest(r, http.MethodPost, "/api/v1/locations", token(t, f.alice),
		map[string]string{"name": "Reykjavik"})
	assertStatus(t, w, http.StatusOK)
	var created struct {
		Location models.Location `json:"location"`
	}
	decodeData(t, w, &created)
	assert.True(t, created.Location.IsPublished)

	w = doRequest(r, http.MethodGet, "/api/v1/locations", "", nil)
	assertStatus(t, w, http.StatusOK)
	var listing struct {
		Locations []models.Location `json:"locations"`
	}
	decodeData(t, w, &listing)
	require.Len(t, listing.Locations, 1)
	assert.Equal(t, "Reykjavik", listing.Locations[0].Name)

	// Deleting only unpublishes; posts keep the reference.
	w = doRequest(r, http.MethodDelete,
		fmt.Sprintf("/api/v1/locations/%d", created.Location.ID), token(t, f.alice), nil)
	assertStatus(t, w, http.StatusOK)

	w = doRequest(r, http.MethodGet, "/api/v1/locations", "", nil)
	assertStatus(t, w, http.StatusOK)
	listing.Locations = nil
	decodeData(t, w, &listing)
	assert.Empty(t, listing.Locations)

	var kept models.Location
	require.NoError(t, db.First(&kept, created.Location.ID).Error)
	assert.False(t, kept.IsPublished)
}
