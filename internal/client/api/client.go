// Package api is a typed client for the MediaBox HTTP API.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/mediabox/internal/common"
	"github.com/dmitrijs2005/mediabox/internal/netx"
)

type User struct {
	ID              int64   `json:"id"`
	Username        string  `json:"username"`
	Email           string  `json:"email"`
	ProfilePhoto    *string `json:"profile_photo"`
	ProfilePhotoURL string  `json:"profile_photo_url,omitempty"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ProfilePatch struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

// Error is a failed API call as reported by the server.
type Error struct {
	StatusCode int    `json:"-"`
	Kind       string `json:"kind"`
	Message    string `json:"message"`
}

func (e *Error) Error() string {
	if e.Kind == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

var kinds = map[string]error{
	"DuplicateIdentity":  common.ErrDuplicateIdentity,
	"InvalidCredentials": common.ErrInvalidCredentials,
	"ValidationError":    common.ErrValidation,
	"InvalidToken":       common.ErrInvalidToken,
	"TokenExpired":       common.ErrTokenExpired,
	"UserNotFound":       common.ErrUserNotFound,
	"Forbidden":          common.ErrForbidden,
	"ResourceNotFound":   common.ErrorNotFound,
	"Internal":           common.ErrorInternal,
}

// Is lets callers match API errors against the common sentinels.
func (e *Error) Is(target error) bool {
	err, ok := kinds[e.Kind]
	return ok && err == target
}

type Client struct {
	baseURL string
	http    *http.Client
}

func New(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *Client) Register(ctx context.Context, username, email, password string) (*User, error) {
	in := map[string]string{"username": username, "email": email, "password": password}
	var out User
	if err := c.call(ctx, http.MethodPost, "/auth/register", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Login(ctx context.Context, email, password string) (*Token, error) {
	in := map[string]string{"email": email, "password": password}
	var out Token
	if err := c.call(ctx, http.MethodPost, "/auth/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) Logout(ctx context.Context, token string) error {
	return c.call(ctx, http.MethodPost, "/auth/logout", token, nil, nil)
}

func (c *Client) Profile(ctx context.Context, token string) (*User, error) {
	var out User
	if err := c.call(ctx, http.MethodGet, "/auth/profile", token, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UpdateProfile(ctx context.Context, token string, patch ProfilePatch) (*User, error) {
	var out User
	if err := c.call(ctx, http.MethodPut, "/auth/profile", token, patch, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) UploadPhoto(ctx context.Context, token, filename string, file io.Reader) (*User, error) {
	req, err := netx.NewMultipartRequest(ctx, c.baseURL+"/auth/profile/photo", "file", filename, file)
	if err != nil {
		return nil, err
	}
	setBearer(req, token)

	var out User
	if err := c.do(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) call(ctx context.Context, method, path, token string, in, out any) error {
	req, err := netx.NewJSONRequest(ctx, method, c.baseURL+path, in)
	if err != nil {
		return err
	}
	setBearer(req, token)
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	err := netx.Do(c.http, req, out)

	var se *netx.StatusError
	if errors.As(err, &se) {
		apiErr := &Error{StatusCode: se.StatusCode}
		_ = json.Unmarshal(se.Body, apiErr)
		return apiErr
	}
	return err
}

func setBearer(req *http.Request, token string) {
	if token != "" {
		req.Header.Set(common.AuthorizationHeader, common.BearerScheme+" "+token)
	}
}
