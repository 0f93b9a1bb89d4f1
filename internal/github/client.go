package github

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/KOFI-GYIMAH/github-client/pkg/errors"
	"github.com/KOFI-GYIMAH/github-client/pkg/logger"
)

const DefaultBaseURL = "https://api.github.com"

const (
	msgUserRequired     = "User name is required"
	msgUserRepoRequired = "User name and repo name are required"
)

// HTTPDoer is the part of *http.Client the GitHub client needs.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Logger receives one line per failed call.
type Logger interface {
	Error(format string, args ...any)
}

type DebugLogger interface {
	Debug(format string, args ...any)
}

// Client issues single, unauthenticated-by-default requests against the
// GitHub REST API and hands back the response body untouched. It holds no
// mutable state after construction and may be shared between goroutines.
type Client struct {
	httpClient HTTPDoer
	baseURL    string
	headers    http.Header
	logger     Logger
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

func WithHTTPClient(httpClient HTTPDoer) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// WithHeader adds a header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}

// WithToken sends "Authorization: Bearer <token>". An empty token is ignored.
func WithToken(token string) Option {
	return func(c *Client) {
		if token != "" {
			c.headers.Set("Authorization", "Bearer "+token)
		}
	}
}

func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		headers:    make(http.Header),
		logger:     logger.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetUser fetches GET /users/{name}.
func (c *Client) GetUser(ctx context.Context, name string) (ResponseBody, error) {
	if name == "" {
		return nil, c.fail("fetching user", errors.Validation(msgUserRequired))
	}

	body, err := c.do(ctx, http.MethodGet, "/users/"+url.PathEscape(name), nil)
	if err != nil {
		return nil, c.fail("fetching user", err)
	}
	return body, nil
}

// GetRepos fetches GET /users/{name}/repos. The array is returned in the
// order GitHub sent it.
func (c *Client) GetRepos(ctx context.Context, name string) (ResponseBody, error) {
	if name == "" {
		return nil, c.fail("fetching repositories", errors.Validation(msgUserRequired))
	}

	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/users/%s/repos", url.PathEscape(name)), nil)
	if err != nil {
		return nil, c.fail("fetching repositories", err)
	}
	return body, nil
}

// GetRepo fetches GET /repos/{name}/{repo}.
func (c *Client) GetRepo(ctx context.Context, name, repo string) (ResponseBody, error) {
	if name == "" || repo == "" {
		return nil, c.fail("fetching repository", errors.Validation(msgUserRepoRequired))
	}

	body, err := c.do(ctx, http.MethodGet, fmt.Sprintf("/repos/%s/%s", url.PathEscape(name), url.PathEscape(repo)), nil)
	if err != nil {
		return nil, c.fail("fetching repository", err)
	}
	return body, nil
}

// CreateRepo posts repoData to /user/repos without inspecting it; the API is
// the one to reject a malformed payload.
func (c *Client) CreateRepo(ctx context.Context, repoData RepoCreationPayload) (ResponseBody, error) {
	payload, err := json.Marshal(repoData)
	if err != nil {
		appErr := errors.New(
			"PAYLOAD_ENCODING_ERROR",
			"Failed to encode repository payload",
			"The repository payload could not be encoded as JSON",
			err,
			errors.LevelError,
		)
		return nil, c.fail("creating repository", appErr)
	}

	body, err := c.do(ctx, http.MethodPost, "/user/repos", payload)
	if err != nil {
		return nil, c.fail("creating repository", err)
	}
	return body, nil
}

func (c *Client) fail(action string, err error) error {
	c.logger.Error("Error %s: %v", action, err)
	return err
}

func (c *Client) makeRequest(ctx context.Context, method, path string, payload []byte) (*http.Response, error) {
	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}

	for key, values := range c.headers {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute HTTP request: %w", err)
	}
	return resp, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte) (ResponseBody, error) {
	resp, err := c.makeRequest(ctx, method, path, payload)
	if err != nil {
		return nil, errors.Remote(
			"Failed to reach GitHub API",
			fmt.Sprintf("%s %s could not be completed", method, path),
			0,
			nil,
			err,
		)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Remote(
			"Failed to read GitHub API response",
			fmt.Sprintf("Could not read the response body of %s %s", method, path),
			resp.StatusCode,
			nil,
			err,
		)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.Remote(
			remoteMessage(resp.StatusCode, body),
			fmt.Sprintf("GitHub API returned status %d for %s %s", resp.StatusCode, method, path),
			resp.StatusCode,
			body,
			nil,
		)
	}

	return ResponseBody(body), nil
}

// remoteMessage prefers GitHub's own "message" field over the status text.
func remoteMessage(status int, body []byte) string {
	var e apiError
	if err := json.Unmarshal(body, &e); err == nil && e.Message != "" {
		return e.Message
	}
	if text := http.StatusText(status); text != "" {
		return text
	}
	return fmt.Sprintf("Unexpected status %d", status)
}
