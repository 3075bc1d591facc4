package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	ts := httptest.NewServer(h)
	t.Cleanup(ts.Close)
	return New(ts.URL+"/", 5*time.Second)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestRegister(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/auth/register", r.URL.Path)

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, map[string]string{"username": "alice", "email": "a@x.com", "password": "pw1"}, in)

		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": "alice", "email": "a@x.com", "profile_photo": nil})
	})

	u, err := c.Register(context.Background(), "alice", "a@x.com", "pw1")
	require.NoError(t, err)
	assert.Equal(t, &User{ID: 1, Username: "alice", Email: "a@x.com"}, u)
}

func TestLogin_Errors(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"kind": "InvalidCredentials", "message": "email or password wrong"})
	})

	_, err := c.Login(context.Background(), "a@x.com", "nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidCredentials)
	assert.NotErrorIs(t, err, common.ErrTokenExpired)

	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, "InvalidCredentials: email or password wrong", apiErr.Error())
}

func TestProfile_SendsBearer(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(common.AuthorizationHeader) != "Bearer tok" {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"kind": "TokenExpired", "message": "token expired"})
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": "alice", "email": "a@x.com"})
	})

	u, err := c.Profile(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "alice", u.Username)

	_, err = c.Profile(context.Background(), "old")
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestUpdateProfile_OmitsUnsetFields(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPut, r.Method)
		b, _ := io.ReadAll(r.Body)
		assert.JSONEq(t, `{"username":"alicia"}`, string(b))
		writeJSON(w, http.StatusOK, map[string]any{"id": 1, "username": "alicia"})
	})

	name := "alicia"
	u, err := c.UpdateProfile(context.Background(), "tok", ProfilePatch{Username: &name})
	require.NoError(t, err)
	assert.Equal(t, "alicia", u.Username)
}

func TestUploadPhoto(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "me.png", header.Filename)
		photo := "photos/me.png"
		writeJSON(w, http.StatusOK, User{ID: 1, ProfilePhoto: &photo})
	})

	u, err := c.UploadPhoto(context.Background(), "tok", "me.png", strings.NewReader("png"))
	require.NoError(t, err)
	require.NotNil(t, u.ProfilePhoto)
	assert.Equal(t, "photos/me.png", *u.ProfilePhoto)
}

func TestLogout_NonJSONError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	err := c.Logout(context.Background(), "")
	var apiErr *Error
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "server returned 502", apiErr.Error())
}
