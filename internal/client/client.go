// Package client is the terminal client for the murmur API: a resty-based
// HTTP client, a sqlite-backed local state store, and a renderer that the
// feed paginator drives.
package client

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/murmurhq/murmur/internal/feed"
)

// APIError is the error body the server returns for non-2xx responses
type APIError struct {
	Code       string `json:"code"`
	Message    string `json:"message,omitempty"`
	Field      string `json:"field,omitempty"`
	Details    string `json:"details,omitempty"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return e.Code
}

// AuthResponse is the server's anonymous sign-in response
type AuthResponse struct {
	Token  string `json:"token"`
	UserID string `json:"user_id"`
}

// ServerConfig are the client-facing limits the server advertises
type ServerConfig struct {
	MaxPostChars            int `json:"max_post_chars"`
	MaxPostWords            int `json:"max_post_words"`
	PostCharsWarnAt         int `json:"post_chars_warn_at"`
	FeedPageSize            int `json:"feed_page_size"`
	PostCooldownSeconds     int `json:"post_cooldown_seconds"`
	FeedbackCooldownSeconds int `json:"feedback_cooldown_seconds"`
}

// ReportResponse is the server's response to a report
type ReportResponse struct {
	PostID      string `json:"post_id"`
	ReportCount int    `json:"report_count"`
	Hidden      bool   `json:"hidden"`
}

// Client talks to the murmur API
type Client struct {
	http *resty.Client
}

// New creates an API client for the given base URL. token may be empty for
// the sign-in call.
func New(baseURL, token string) *Client {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(15 * time.Second).
		SetHeader("Content-Type", "application/json")

	if token != "" {
		httpClient.SetAuthToken(token)
	}

	return &Client{http: httpClient}
}

// apiError extracts the typed error from a non-2xx response
func apiError(resp *resty.Response) error {
	if apiErr, ok := resp.Error().(*APIError); ok && apiErr.Code != "" {
		return apiErr
	}
	return fmt.Errorf("request failed with status %d", resp.StatusCode())
}

// SignInAnonymously creates a fresh anonymous identity
func (c *Client) SignInAnonymously(ctx context.Context) (*AuthResponse, error) {
	var auth AuthResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&auth).
		SetError(&APIError{}).
		Post("/api/v1/auth/anonymous")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &auth, nil
}

// GetConfig fetches the server's advertised limits
func (c *Client) GetConfig(ctx context.Context) (*ServerConfig, error) {
	var cfg ServerConfig
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&cfg).
		SetError(&APIError{}).
		Get("/api/v1/config")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &cfg, nil
}

// FetchFeedPage fetches one feed page. It satisfies feed.FetchFunc.
func (c *Client) FetchFeedPage(ctx context.Context, cursor string, limit int) (*feed.Page, error) {
	var page feed.Page
	req := c.http.R().
		SetContext(ctx).
		SetResult(&page).
		SetError(&APIError{})

	if cursor != "" {
		req.SetQueryParam("cursor", cursor)
	}
	if limit > 0 {
		req.SetQueryParam("limit", fmt.Sprintf("%d", limit))
	}

	resp, err := req.Get("/api/v1/feed")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &page, nil
}

// CreatePost publishes a new thought and returns its public projection
func (c *Client) CreatePost(ctx context.Context, content string) (*feed.PostView, error) {
	var post feed.PostView
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"content": content}).
		SetResult(&post).
		SetError(&APIError{}).
		Post("/api/v1/posts")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &post, nil
}

// ReportPost reports a post
func (c *Client) ReportPost(ctx context.Context, postID string) (*ReportResponse, error) {
	var report ReportResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetResult(&report).
		SetError(&APIError{}).
		Post("/api/v1/posts/" + postID + "/report")
	if err != nil {
		return nil, err
	}
	if resp.IsError() {
		return nil, apiError(resp)
	}
	return &report, nil
}

// SubmitFeedback sends a bug report or feature suggestion
func (c *Client) SubmitFeedback(ctx context.Context, category, message string) error {
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{"category": category, "message": message}).
		SetError(&APIError{}).
		Post("/api/v1/feedback")
	if err != nil {
		return err
	}
	if resp.IsError() {
		return apiError(resp)
	}
	return nil
}
