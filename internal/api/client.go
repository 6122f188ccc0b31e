// Package api is the HTTP client for the task backend. It attaches the
// bearer token when one is set, serializes bodies as JSON, and turns non-2xx
// responses into a single user-facing message.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// APITimeout is the timeout for backend calls.
const APITimeout = 10 * time.Second

// Client talks to the task backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *log.Logger

	mu    sync.RWMutex
	token *oauth2.Token
}

// New creates a client for the given base URL (including the /api/v1
// prefix). No token is set; Login, Register and SetToken provide one.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: APITimeout},
	}
}

// NewWithHTTPClient creates a client with a custom HTTP client (for testing).
func NewWithHTTPClient(baseURL string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

// SetLogger enables request tracing.
func (c *Client) SetLogger(logger *log.Logger) {
	c.logger = logger
}

// SetToken sets the bearer token attached to subsequent requests.
func (c *Client) SetToken(tok *oauth2.Token) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = tok
}

// ClearToken removes the bearer token.
func (c *Client) ClearToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = nil
}

// bearer returns the current access token, or "" when logged out.
func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.token == nil {
		return ""
	}
	return c.token.AccessToken
}

// Register creates an account and returns its session token.
func (c *Client) Register(ctx context.Context, username, password string) (*oauth2.Token, error) {
	var tok oauth2.Token
	err := c.do(ctx, http.MethodPost, "/auth/register", credentials{username, password}, &tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// Login exchanges credentials for a session token.
func (c *Client) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	var tok oauth2.Token
	err := c.do(ctx, http.MethodPost, "/auth/login", credentials{username, password}, &tok)
	if err != nil {
		return nil, err
	}
	return &tok, nil
}

// Me returns the profile of the token's owner.
func (c *Client) Me(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/auth/me", nil, &user)
	return user, err
}

// ListTasks returns all tasks in server order.
func (c *Client) ListTasks(ctx context.Context) ([]Task, error) {
	var tasks []Task
	err := c.do(ctx, http.MethodGet, "/tasks", nil, &tasks)
	return tasks, err
}

// GetTask returns a single task by id.
func (c *Client) GetTask(ctx context.Context, id string) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodGet, "/tasks/"+id, nil, &task)
	return task, err
}

// CreateTask creates a task and returns the server's representation.
func (c *Client) CreateTask(ctx context.Context, req TaskCreate) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodPost, "/tasks", req, &task)
	return task, err
}

// UpdateTask applies a partial update and returns the full updated task.
func (c *Client) UpdateTask(ctx context.Context, id string, patch TaskPatch) (Task, error) {
	var task Task
	err := c.do(ctx, http.MethodPatch, "/tasks/"+id, patch, &task)
	return task, err
}

// DeleteTask deletes a task. The backend answers 204 with no body.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/tasks/"+id, nil, nil)
}

// do performs one request. A non-nil body is sent as JSON; a non-nil v
// receives the decoded response. Non-2xx responses come back as *Error with
// a normalized message.
func (c *Client) do(ctx context.Context, method, path string, body, v any) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if tok := c.bearer(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	if c.logger != nil {
		c.logger.Printf("%s %s", method, path)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			raw = nil
		}
		if c.logger != nil {
			c.logger.Printf("%s %s -> %d", method, path, resp.StatusCode)
		}
		return &Error{Status: resp.StatusCode, Message: normalize(resp.StatusCode, raw)}
	}

	if resp.StatusCode == http.StatusNoContent || v == nil {
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
