package buddy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/DEX-zha/town-hall-mcp/internal/httpcache"
)

// requestTimeout is the fixed ceiling for one Project Buddy call. A timeout
// surfaces as a transport error, not a distinct code path.
const requestTimeout = 10 * time.Second

// baseURLEnvVars is the ordered fallback list consulted when no base URL was
// configured.
var baseURLEnvVars = []string{
	"TOWN_HALL_BASE_URL",
	"PROJECT_BUDDY_BASE_URL",
	"PROJECT_BUDDY_API_URL",
}

// ErrBaseURLMissing is the one fatal, caller-visible configuration error.
// It is raised before any request is attempted.
var ErrBaseURLMissing = errors.New("missing Project Buddy base URL: configure base_url or set TOWN_HALL_BASE_URL, PROJECT_BUDDY_BASE_URL or PROJECT_BUDDY_API_URL")

// ResolveBaseURL picks the configured value first, then the first non-empty
// environment fallback.
func ResolveBaseURL(configured string) (string, error) {
	if u := strings.TrimSpace(configured); u != "" {
		return strings.TrimRight(u, "/"), nil
	}
	for _, name := range baseURLEnvVars {
		if u := strings.TrimSpace(os.Getenv(name)); u != "" {
			return strings.TrimRight(u, "/"), nil
		}
	}
	return "", ErrBaseURLMissing
}

// EndpointPath maps an action tag to its API path.
func EndpointPath(action Action) (string, error) {
	switch action {
	case ActionLocation:
		return "/api/locations", nil
	case ActionMaturity:
		return "/api/project-maturity", nil
	default:
		return "", fmt.Errorf("no endpoint for action %q", action)
	}
}

// APIError is the normalized shape of any transport or non-2xx failure.
type APIError struct {
	Message      string `json:"message"`
	Code         string `json:"code,omitempty"`
	HTTPStatus   int    `json:"httpStatus,omitempty"`
	ResponseData any    `json:"responseData,omitempty"`
}

func (e *APIError) Error() string {
	if e.HTTPStatus != 0 {
		return fmt.Sprintf("project buddy api error (%d): %s", e.HTTPStatus, e.Message)
	}
	return "project buddy request failed: " + e.Message
}

// Client posts canonical bodies to the Project Buddy API.
type Client struct {
	baseURL string
	c       *http.Client
}

// NewClient builds a client for the given resolved base URL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		c: &http.Client{
			Timeout:   requestTimeout,
			Transport: httpcache.NewTransportFromEnv(nil),
		},
	}
}

// BaseURL returns the resolved base URL, useful for diagnostics.
func (c *Client) BaseURL() string { return c.baseURL }

// Post sends a canonical body to the endpoint selected by the action tag and
// returns the decoded response body. Any transport or non-2xx failure comes
// back as an *APIError; the caller reports it as data, never as a panic.
func (c *Client) Post(ctx context.Context, action Action, body map[string]any) (any, *APIError) {
	path, err := EndpointPath(action)
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, &APIError{Message: "failed to encode request body: " + err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, &APIError{Message: err.Error()}
	}
	req.Header.Set("User-Agent", "town-hall-mcp")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.c.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error(), Code: "NETWORK_ERROR"}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &APIError{Message: "failed to read response: " + err.Error(), HTTPStatus: resp.StatusCode}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{
			Message:      fmt.Sprintf("Project Buddy API error (%d)", resp.StatusCode),
			HTTPStatus:   resp.StatusCode,
			ResponseData: decodeLoose(b),
		}
		// Surface a server-provided message/code when the error body has one.
		var shaped struct {
			Message string `json:"message"`
			Error   string `json:"error"`
			Code    string `json:"code"`
		}
		if json.Unmarshal(b, &shaped) == nil {
			if m := strings.TrimSpace(shaped.Message); m != "" {
				apiErr.Message = m
			} else if m := strings.TrimSpace(shaped.Error); m != "" {
				apiErr.Message = m
			}
			apiErr.Code = strings.TrimSpace(shaped.Code)
		}
		return nil, apiErr
	}

	return decodeLoose(b), nil
}

// decodeLoose parses JSON when possible and falls back to the raw text.
func decodeLoose(b []byte) any {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return map[string]any{"raw": string(b)}
	}
	return v
}
