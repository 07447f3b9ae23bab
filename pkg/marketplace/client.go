// Package marketplace is the Go client of the marketplace API. Besides plain
// resource access it carries the browse and submission flows front ends share:
// directory browsing with client-side window filter and sort, and review and
// complaint submission with sequential best-effort photo uploads.
package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/GTDGit/gtd_market/pkg/account"
	"github.com/GTDGit/gtd_market/pkg/eligibility"
)

// Client is a minimal HTTP client for the marketplace API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	debug      bool
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

// NewClient constructs a client for the API rooted at baseURL
// (e.g. "https://market.example.com").
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
		debug:      os.Getenv("ENV") == "development",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// As returns a copy of the client that authenticates as actor. An actor
// without a token keeps the current one.
func (c *Client) As(actor account.Actor) *Client {
	if actor.Token == "" {
		return c
	}
	cp := *c
	cp.token = actor.Token
	return &cp
}

// Login exchanges credentials for a token and returns the signed-in actor.
func (c *Client) Login(ctx context.Context, email, password string) (account.Actor, error) {
	var env struct {
		Data struct {
			Token string `json:"token"`
			User  User   `json:"user"`
		} `json:"data"`
	}
	body := map[string]string{"email": email, "password": password}
	if err := c.doRequest(ctx, http.MethodPost, "/api/auth/login", nil, body, &env); err != nil {
		return account.Guest(), err
	}
	role, err := account.ParseRole(env.Data.User.Role)
	if err != nil {
		return account.Guest(), fmt.Errorf("login response: %w", err)
	}
	return account.Actor{ID: env.Data.User.ID, Role: role, Token: env.Data.Token}, nil
}

// doRequest sends a JSON request and decodes the JSON response into result.
// result may be nil.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body, result any) error {
	var reader io.Reader
	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := c.newRequest(ctx, method, path, query, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.debug {
		log.Debug().
			Str("method", method).
			Str("url", req.URL.String()).
			Int("body_bytes", len(payload)).
			Msg("[MARKET] Outgoing request")
	}
	return c.send(req, result)
}

// upload posts a single photo as multipart field "file".
func (c *Client) upload(ctx context.Context, path string, p eligibility.Photo, result any) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, photoName(p)))
	contentType := p.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create form part: %w", err)
	}
	if _, err := part.Write(p.Data); err != nil {
		return fmt.Errorf("failed to write form part: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("failed to close form: %w", err)
	}

	req, err := c.newRequest(ctx, http.MethodPost, path, nil, &buf)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return c.send(req, result)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) send(req *http.Request, result any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &APIError{Kind: KindNetwork, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{Kind: KindNetwork, Status: resp.StatusCode, Err: err}
	}

	if c.debug {
		log.Debug().
			Str("url", req.URL.String()).
			Int("status_code", resp.StatusCode).
			Int("body_bytes", len(respBody)).
			Msg("[MARKET] Incoming response")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp.StatusCode, respBody)
	}
	if result == nil || len(respBody) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeError builds an APIError from the server's error envelope, falling
// back to the status text when the body is not one.
func decodeError(status int, body []byte) error {
	apiErr := &APIError{Kind: kindFor(status), Status: status, Message: http.StatusText(status)}
	var env struct {
		Message string `json:"message"`
		Error   *struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &env) == nil {
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			if env.Error.Message != "" {
				apiErr.Message = env.Error.Message
			}
		} else if env.Message != "" {
			apiErr.Message = env.Message
		}
	}
	return apiErr
}

// getList fetches a collection. The API answers with either a plain JSON
// array or a Hydra envelope; both are accepted.
func getList[T any](ctx context.Context, c *Client, path string, query url.Values) ([]T, error) {
	var raw json.RawMessage
	if err := c.doRequest(ctx, http.MethodGet, path, query, nil, &raw); err != nil {
		return nil, err
	}
	return decodeList[T](raw)
}

func decodeList[T any](raw []byte) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}

	if trimmed[0] == '[' {
		var items []T
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return nil, fmt.Errorf("failed to decode collection: %w", err)
		}
		return items, nil
	}

	var env struct {
		Member []T `json:"hydra:member"`
	}
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return nil, fmt.Errorf("failed to decode collection: %w", err)
	}
	if env.Member == nil {
		return []T{}, nil
	}
	return env.Member, nil
}

func photoName(p eligibility.Photo) string {
	if p.Name != "" {
		return p.Name
	}
	return "photo"
}
