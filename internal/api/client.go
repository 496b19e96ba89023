// Package api is the data-access layer over the guardian REST API. Every
// operation issues exactly one request and returns the decoded body or a
// *errors.RequestError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/guardian/internal/constants"
	"github.com/julianstephens/guardian/internal/errors"
	"github.com/julianstephens/guardian/internal/logger"
)

// maxErrorBody bounds how much of a failed response is read for its message
const maxErrorBody = 64 << 10

// TokenSource supplies the bearer token. An empty token sends no Authorization header.
type TokenSource interface {
	Token() string
}

// StaticToken is a TokenSource that always returns the same token
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Tokens     TokenSource
	HTTPClient *http.Client
	// RequestID overrides the X-Request-ID generator
	RequestID func() string
}

// Client talks to the REST API. It is safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	requestID  func() string

	Habits       *HabitService
	Users        *UserService
	Gamification *GamificationService
	Auth         *AuthService
}

func New(opts Options) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = constants.DefaultAPIURL
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = constants.DefaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	tokens := opts.Tokens
	if tokens == nil {
		tokens = StaticToken("")
	}

	requestID := opts.RequestID
	if requestID == nil {
		requestID = uuid.NewString
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: httpClient,
		tokens:     tokens,
		requestID:  requestID,
	}
	c.Habits = &HabitService{client: c}
	c.Users = &UserService{client: c}
	c.Gamification = &GamificationService{client: c}
	c.Auth = &AuthService{client: c}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// Health checks that the API answers on /health
func (c *Client) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

type errorBody struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	fail := func(status int, msg string, err error) error {
		reqErr := &errors.RequestError{Method: method, Path: path, StatusCode: status, Message: msg, Err: err}
		logger.Debug("api request failed", "method", method, "path", path, "status", status, "error", reqErr)
		return reqErr
	}

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fail(0, "", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fail(0, "", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set(constants.RequestIDHeader, c.requestID())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fail(0, "", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Message
		if msg == "" {
			msg = eb.Error
		}
		return fail(resp.StatusCode, strings.TrimSpace(msg), nil)
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fail(resp.StatusCode, "", err)
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fail(resp.StatusCode, "", err)
	}
	return nil
}

func pathID(prefix, id string, suffix ...string) string {
	p := prefix + "/" + url.PathEscape(id)
	for _, s := range suffix {
		p += "/" + s
	}
	return p
}
