package buddy

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
)

func clearBaseURLEnv(t *testing.T) {
	t.Helper()
	for _, name := range baseURLEnvVars {
		t.Setenv(name, "")
	}
}

func TestResolveBaseURLPrefersConfigured(t *testing.T) {
	clearBaseURLEnv(t)
	t.Setenv("TOWN_HALL_BASE_URL", "http://env.example")

	u, err := ResolveBaseURL("http://cfg.example/")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "http://cfg.example" {
		t.Errorf("got %q", u)
	}
}

func TestResolveBaseURLEnvFallbackOrder(t *testing.T) {
	clearBaseURLEnv(t)
	t.Setenv("PROJECT_BUDDY_API_URL", "http://third.example")
	t.Setenv("PROJECT_BUDDY_BASE_URL", "http://second.example")

	u, err := ResolveBaseURL("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "http://second.example" {
		t.Errorf("got %q, want the first non-empty fallback", u)
	}
}

func TestResolveBaseURLMissingIsFatal(t *testing.T) {
	clearBaseURLEnv(t)

	_, err := ResolveBaseURL("  ")
	if !errors.Is(err, ErrBaseURLMissing) {
		t.Fatalf("got %v, want ErrBaseURLMissing", err)
	}
}

func TestEndpointPathPerAction(t *testing.T) {
	if p, _ := EndpointPath(ActionLocation); p != "/api/locations" {
		t.Errorf("got %q", p)
	}
	if p, _ := EndpointPath(ActionMaturity); p != "/api/project-maturity" {
		t.Errorf("got %q", p)
	}
	if _, err := EndpointPath(""); err == nil {
		t.Error("empty action must not map to a path")
	}
}

func TestClientPostSuccess(t *testing.T) {
	var gotPath, gotCT, gotAccept string
	var gotBody map[string]any

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotCT = r.Header.Get("Content-Type")
		gotAccept = r.Header.Get("Accept")
		b, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(b, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id": 42}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	resp, apiErr := c.Post(context.Background(), ActionLocation, map[string]any{"addresses": []any{map[string]any{"address": "1 Main St"}}})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	if gotPath != "/api/locations" {
		t.Errorf("path = %q", gotPath)
	}
	if gotCT != "application/json" || gotAccept != "application/json" {
		t.Errorf("headers = %q / %q", gotCT, gotAccept)
	}
	if gotBody == nil {
		t.Fatal("no body received")
	}
	want := map[string]any{"id": float64(42)}
	if !reflect.DeepEqual(resp, want) {
		t.Errorf("resp = %v, want %v", resp, want)
	}
}

func TestClientPostNon2xxNormalized(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message": "duplicate listing", "code": "DUP"}`))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	_, apiErr := c.Post(context.Background(), ActionMaturity, map[string]any{"description": "x"})
	if apiErr == nil {
		t.Fatal("expected an API error")
	}
	if apiErr.HTTPStatus != http.StatusUnprocessableEntity {
		t.Errorf("status = %d", apiErr.HTTPStatus)
	}
	if apiErr.Message != "duplicate listing" {
		t.Errorf("message = %q", apiErr.Message)
	}
	if apiErr.Code != "DUP" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.ResponseData == nil {
		t.Error("response data should carry the error body")
	}
}

func TestClientPostNetworkError(t *testing.T) {
	c := NewClient("http://127.0.0.1:1") // nothing listens here
	_, apiErr := c.Post(context.Background(), ActionLocation, map[string]any{"addresses": []any{}})
	if apiErr == nil {
		t.Fatal("expected a network error")
	}
	if apiErr.Code != "NETWORK_ERROR" {
		t.Errorf("code = %q", apiErr.Code)
	}
	if apiErr.HTTPStatus != 0 {
		t.Errorf("network failures carry no HTTP status, got %d", apiErr.HTTPStatus)
	}
}

func TestClientPostNonJSONResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("created"))
	}))
	t.Cleanup(srv.Close)

	c := NewClient(srv.URL)
	resp, apiErr := c.Post(context.Background(), ActionLocation, map[string]any{"addresses": []any{map[string]any{"address": "A"}}})
	if apiErr != nil {
		t.Fatalf("unexpected error: %v", apiErr)
	}
	m, ok := resp.(map[string]any)
	if !ok || m["raw"] != "created" {
		t.Errorf("non-JSON body should come back raw: %v", resp)
	}
}
