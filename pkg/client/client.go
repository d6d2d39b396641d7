// Package client is a Go client for the blog API. GET responses are served
// from a caller-owned Cache and mutating calls invalidate the keys they affect.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	apperrors "blogcms/internal/errors"
	"blogcms/internal/handler"
	"blogcms/internal/model"
)

// Cache key prefixes. Post keys share the "post" prefix so one invalidation
// covers lists, single posts, featured posts and stats.
const (
	prefixPosts      = "posts?"
	prefixPost       = "post:"
	keyFeatured      = "posts:featured"
	keyStats         = "posts:stats"
	keyCategories    = "categories"
	prefixCategory   = "category:"
	keyTags          = "tags"
	prefixTag        = "tag:"
	invalidatePosts  = "post"
	invalidateCats   = "categor"
	invalidateTagged = "tag"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Code    string
	Message string
	Fields  []apperrors.FieldError
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api: %d %s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api: %d: %s", e.Status, e.Message)
}

// Client talks to the blog API.
type Client struct {
	baseURL    string
	httpClient *http.Client
	cache      *Cache

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithToken sets the bearer token sent with every request.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:8080/api". cache may be nil to disable caching.
func New(baseURL string, cache *Cache, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cache,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the bearer token; an empty token logs the client out.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the current bearer token.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}

// Register creates an account and keeps the returned token.
func (c *Client) Register(ctx context.Context, req handler.RegisterRequest) (*model.User, error) {
	return c.authenticate(ctx, "/auth/register", req)
}

// Login keeps the returned token for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*model.User, error) {
	return c.authenticate(ctx, "/auth/login", handler.LoginRequest{Email: email, Password: password})
}

func (c *Client) authenticate(ctx context.Context, path string, body any) (*model.User, error) {
	var resp handler.AuthResponse
	if err := c.send(ctx, http.MethodPost, path, body, &resp); err != nil {
		return nil, err
	}
	c.SetToken(resp.Token)
	return resp.User, nil
}

func (c *Client) Me(ctx context.Context) (*model.User, error) {
	var resp envelope[*model.User]
	if err := c.send(ctx, http.MethodGet, "/auth/me", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// ListParams filters a post listing. Zero values are omitted.
type ListParams struct {
	Page     int
	Limit    int
	Category string
	Tag      string
	Search   string
	SortBy   string
}

func (p ListParams) encode() string {
	v := url.Values{}
	if p.Page > 0 {
		v.Set("page", strconv.Itoa(p.Page))
	}
	if p.Limit > 0 {
		v.Set("limit", strconv.Itoa(p.Limit))
	}
	for key, val := range map[string]string{"category": p.Category, "tag": p.Tag, "search": p.Search, "sortBy": p.SortBy} {
		if val != "" {
			v.Set(key, val)
		}
	}
	return v.Encode()
}

// ListPosts returns a page of published posts.
func (c *Client) ListPosts(ctx context.Context, p ListParams) (*model.PostPage, error) {
	query := p.encode()
	path := "/posts"
	if query != "" {
		path += "?" + query
	}
	var resp envelope[*model.PostPage]
	if err := c.cached(ctx, prefixPosts+query, path, &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// GetPost returns a published post and its related posts. A cached response
// does not count another view.
func (c *Client) GetPost(ctx context.Context, slug string) (*handler.PostDetail, error) {
	var resp envelope[*handler.PostDetail]
	if err := c.cached(ctx, prefixPost+slug, "/posts/"+url.PathEscape(slug), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) FeaturedPosts(ctx context.Context) ([]model.Post, error) {
	var resp envelope[[]model.Post]
	if err := c.cached(ctx, keyFeatured, "/posts/featured", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) PostStats(ctx context.Context) (*model.PostStats, error) {
	var resp envelope[*model.PostStats]
	if err := c.cached(ctx, keyStats, "/posts/stats/summary", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// CreatePost sends req as JSON.
func (c *Client) CreatePost(ctx context.Context, req handler.CreatePostRequest) (*model.Post, error) {
	var resp envelope[*model.Post]
	if err := c.send(ctx, http.MethodPost, "/posts", req, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(invalidatePosts)
	return resp.Data, nil
}

func (c *Client) UpdatePost(ctx context.Context, id string, req handler.UpdatePostRequest) (*model.Post, error) {
	var resp envelope[*model.Post]
	if err := c.send(ctx, http.MethodPut, "/posts/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(invalidatePosts)
	return resp.Data, nil
}

func (c *Client) DeletePost(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, "/posts/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(invalidatePosts)
	return nil
}

func (c *Client) Categories(ctx context.Context) ([]model.Category, error) {
	var resp envelope[[]model.Category]
	if err := c.cached(ctx, keyCategories, "/categories", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Category(ctx context.Context, slug string) (*model.Category, error) {
	var resp envelope[*model.Category]
	if err := c.cached(ctx, prefixCategory+slug, "/categories/"+url.PathEscape(slug), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

// Category mutations also drop cached posts, which embed their categories.
func (c *Client) CreateCategory(ctx context.Context, req handler.CreateCategoryRequest) (*model.Category, error) {
	var resp envelope[*model.Category]
	if err := c.send(ctx, http.MethodPost, "/categories", req, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(invalidateCats, invalidatePosts)
	return resp.Data, nil
}

func (c *Client) UpdateCategory(ctx context.Context, id string, req handler.UpdateCategoryRequest) (*model.Category, error) {
	var resp envelope[*model.Category]
	if err := c.send(ctx, http.MethodPut, "/categories/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(invalidateCats, invalidatePosts)
	return resp.Data, nil
}

func (c *Client) DeleteCategory(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, "/categories/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(invalidateCats, invalidatePosts)
	return nil
}

func (c *Client) Tags(ctx context.Context) ([]model.Tag, error) {
	var resp envelope[[]model.Tag]
	if err := c.cached(ctx, keyTags, "/tags", &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) Tag(ctx context.Context, slug string) (*model.Tag, error) {
	var resp envelope[*model.Tag]
	if err := c.cached(ctx, prefixTag+slug, "/tags/"+url.PathEscape(slug), &resp); err != nil {
		return nil, err
	}
	return resp.Data, nil
}

func (c *Client) CreateTag(ctx context.Context, req handler.CreateTagRequest) (*model.Tag, error) {
	var resp envelope[*model.Tag]
	if err := c.send(ctx, http.MethodPost, "/tags", req, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(invalidateTagged, invalidatePosts)
	return resp.Data, nil
}

func (c *Client) UpdateTag(ctx context.Context, id string, req handler.UpdateTagRequest) (*model.Tag, error) {
	var resp envelope[*model.Tag]
	if err := c.send(ctx, http.MethodPut, "/tags/"+url.PathEscape(id), req, &resp); err != nil {
		return nil, err
	}
	c.cache.Invalidate(invalidateTagged, invalidatePosts)
	return resp.Data, nil
}

func (c *Client) DeleteTag(ctx context.Context, id string) error {
	if err := c.send(ctx, http.MethodDelete, "/tags/"+url.PathEscape(id), nil, nil); err != nil {
		return err
	}
	c.cache.Invalidate(invalidateTagged, invalidatePosts)
	return nil
}

// UploadImage sends r as the multipart "image" field.
func (c *Client) UploadImage(ctx context.Context, filename string, r io.Reader) (*handler.UploadResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile(handler.UploadField, filename)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, r); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, http.MethodPost, "/uploads", &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	body, err := c.do(req)
	if err != nil {
		return nil, err
	}
	var resp handler.UploadResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &resp, nil
}

// cached serves a GET from the cache, fetching and storing it on a miss.
func (c *Client) cached(ctx context.Context, key, path string, out any) error {
	body, ok := c.cache.Get(key)
	if !ok {
		req, err := c.newRequest(ctx, http.MethodGet, path, nil)
		if err != nil {
			return err
		}
		if body, err = c.do(req); err != nil {
			return err
		}
		c.cache.Set(key, body)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs an uncached request with an optional JSON body.
func (c *Client) send(ctx context.Context, method, path string, in, out any) error {
	var reader io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, reader)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	body, err := c.do(req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if token := c.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req, nil
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var er apperrors.ErrorResponse
		if json.Unmarshal(body, &er) == nil && er.Error != "" {
			apiErr.Code = er.Code
			apiErr.Message = er.Error
			apiErr.Fields = er.Errors
		}
		return nil, apiErr
	}
	return body, nil
}
