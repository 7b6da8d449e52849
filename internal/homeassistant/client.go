package homeassistant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/five82/otter/internal/entity"
)

// ErrNotConfigured is returned when the base URL or token is empty.
var ErrNotConfigured = errors.New("home assistant url and token are required")

// errNullPayload reports a JSON null where an object or array was expected.
var errNullPayload = errors.New("unexpected null payload")

// API defines the Home Assistant calls Otter makes. *Client implements it and
// tests can substitute fakes.
type API interface {
	FetchConfig(ctx context.Context) (*entity.ServerConfig, error)
	FetchStates(ctx context.Context) ([]entity.State, error)
	Toggle(ctx context.Context, entityID string) error
}

// Ensure Client implements API at compile time.
var _ API = (*Client)(nil)

// Client talks to the Home Assistant REST API with a long-lived token.
type Client struct {
	baseURL   *url.URL
	token     string
	http      *http.Client
	userAgent string
}

const defaultUserAgent = "otter/0.1"

// NewClient builds a Client for baseURL. The token is sent verbatim as a
// Bearer credential.
func NewClient(baseURL, token string) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" || strings.TrimSpace(token) == "" {
		return nil, ErrNotConfigured
	}
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	return &Client{
		baseURL:   base,
		token:     strings.TrimSpace(token),
		http:      &http.Client{},
		userAgent: defaultUserAgent,
	}, nil
}

// BaseURL returns the normalised server URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// FetchConfig retrieves the server configuration.
func (c *Client) FetchConfig(ctx context.Context) (*entity.ServerConfig, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload *entity.ServerConfig
	if err := c.do(ctx, http.MethodGet, "api/config", nil, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, &Error{Kind: KindDecode, Path: "/api/config", Err: errNullPayload}
	}
	return payload, nil
}

// FetchStates retrieves every entity state.
func (c *Client) FetchStates(ctx context.Context) ([]entity.State, error) {
	if c == nil {
		return nil, fmt.Errorf("client is nil")
	}
	var payload []entity.State
	if err := c.do(ctx, http.MethodGet, "api/states", nil, &payload); err != nil {
		return nil, err
	}
	if payload == nil {
		return nil, &Error{Kind: KindDecode, Path: "/api/states", Err: errNullPayload}
	}
	return payload, nil
}

// Toggle calls the toggle service of the entity's domain.
func (c *Client) Toggle(ctx context.Context, entityID string) error {
	return c.CallService(ctx, entity.Domain(entityID), "toggle", entityID)
}

// CallService posts {"entity_id": id} to /api/services/{domain}/{service}.
// The response body is ignored.
func (c *Client) CallService(ctx context.Context, domain, service, entityID string) error {
	if c == nil {
		return fmt.Errorf("client is nil")
	}
	if domain == "" || service == "" {
		return fmt.Errorf("domain and service required")
	}
	body, err := json.Marshal(map[string]string{"entity_id": entityID})
	if err != nil {
		return fmt.Errorf("encode service call: %w", err)
	}
	path := "api/services/" + url.PathEscape(domain) + "/" + url.PathEscape(service)
	return c.do(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body []byte, dest any) error {
	reqURL := c.baseURL.ResolveReference(&url.URL{Path: path})

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindTransport, Path: "/" + path, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &Error{Kind: KindStatus, Path: "/" + path, StatusCode: resp.StatusCode}
	}
	if dest == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &Error{Kind: KindDecode, Path: "/" + path, Err: err}
	}
	return nil
}

// parseBaseURL accepts host:port or a full URL. A path prefix is kept so a
// server behind a reverse proxy sub-path still resolves.
func parseBaseURL(raw string) (*url.URL, error) {
	trimmed := strings.TrimSpace(raw)
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse base url %q: %w", raw, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("parse base url %q: missing host", raw)
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/"
	u.RawQuery = ""
	u.Fragment = ""
	u.User = nil
	return u, nil
}
