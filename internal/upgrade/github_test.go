package upgrade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestGitHubClient_ListReleases(t *testing.T) {
	var gotAccept, gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/tool/releases" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAccept = r.Header.Get("Accept")
		gotUA = r.Header.Get("User-Agent")
		fmt.Fprint(w, `[
			{"tag_name": "v2.0.0", "draft": false, "prerelease": false, "assets": []},
			{"tag_name": "v2.1.0-rc.1", "draft": false, "prerelease": true, "assets": []},
			{"tag_name": "v1.0.0", "draft": true, "prerelease": false, "assets": []}
		]`)
	}))
	defer server.Close()

	c := NewGitHubClient("acme", "tool", WithAPIBase(server.URL), WithClientUserAgent("test-agent"))
	releases, err := c.ListReleases(context.Background())
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}

	// The client returns everything; filtering is the selector's concern.
	if len(releases) != 3 {
		t.Fatalf("releases = %d, want 3", len(releases))
	}
	if !releases[2].Draft {
		t.Error("draft flag lost in decoding")
	}
	if gotAccept != "application/vnd.github+json" {
		t.Errorf("Accept = %s", gotAccept)
	}
	if gotUA != "test-agent" {
		t.Errorf("User-Agent = %s", gotUA)
	}
}

func TestGitHubClient_ListReleases_Pagination(t *testing.T) {
	var server *httptest.Server
	server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "", "1":
			w.Header().Set("Link", fmt.Sprintf(`<%s/repos/acme/tool/releases?page=2>; rel="next"`, server.URL))
			fmt.Fprint(w, `[{"tag_name": "v2.0.0"}]`)
		case "2":
			fmt.Fprint(w, `[{"tag_name": "v1.0.0"}]`)
		default:
			t.Errorf("unexpected page %s", r.URL.Query().Get("page"))
		}
	}))
	defer server.Close()

	c := NewGitHubClient("acme", "tool", WithAPIBase(server.URL))
	releases, err := c.ListReleases(context.Background())
	if err != nil {
		t.Fatalf("ListReleases: %v", err)
	}
	if len(releases) != 2 {
		t.Errorf("releases = %d, want 2 across pages", len(releases))
	}
}

func TestGitHubClient_ReleaseByTag_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewGitHubClient("acme", "tool", WithAPIBase(server.URL))
	_, err := c.ReleaseByTag(context.Background(), "v9.9.9")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := httpStatus(err); got != 404 {
		t.Errorf("status = %d, want 404", got)
	}
}

func TestGitHubClient_RateLimitSurfaced(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-RateLimit-Remaining", "0")
		w.Header().Set("X-RateLimit-Reset", "1700000000")
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewGitHubClient("acme", "tool", WithAPIBase(server.URL))
	_, err := c.ListReleases(context.Background())
	if err == nil {
		t.Fatal("expected error")
	}
	var se *StatusError
	if !errors.As(err, &se) {
		t.Fatalf("expected StatusError, got %v", err)
	}
	if !se.RateLimited {
		t.Error("expected RateLimited flag")
	}
	if se.Status != 403 {
		t.Errorf("status = %d, want 403", se.Status)
	}
}

func TestGitHubClient_DownloadAsset(t *testing.T) {
	var gotAccept, gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/repos/acme/tool/releases/assets/42" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAccept = r.Header.Get("Accept")
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	c := NewGitHubClient("acme", "tool", WithAPIBase(server.URL), WithClientToken("tok123"))
	body, size, err := c.DownloadAsset(context.Background(), 42)
	if err != nil {
		t.Fatalf("DownloadAsset: %v", err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if string(data) != "payload" {
		t.Errorf("payload = %q", data)
	}
	if size != int64(len("payload")) {
		t.Errorf("size = %d", size)
	}
	if gotAccept != "application/octet-stream" {
		t.Errorf("Accept = %s, want octet-stream", gotAccept)
	}
	if gotAuth != "Bearer tok123" {
		t.Errorf("Authorization = %q, want Bearer token", gotAuth)
	}
}

func TestGitHubClient_DownloadDirect(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/acme/tool/releases/download/v1.0.0/tool.tar.gz" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte("direct payload"))
	}))
	defer server.Close()

	c := NewGitHubClient("acme", "tool", WithDownloadBase(server.URL), WithClientToken("tok123"))
	body, _, err := c.DownloadDirect(context.Background(), "v1.0.0", "tool.tar.gz")
	if err != nil {
		t.Fatalf("DownloadDirect: %v", err)
	}
	defer body.Close()

	data, _ := io.ReadAll(body)
	if string(data) != "direct payload" {
		t.Errorf("payload = %q", data)
	}
	// Direct downloads are anonymous.
	if gotAuth != "" {
		t.Errorf("Authorization = %q, want unauthenticated", gotAuth)
	}
}

func TestGitHubClient_DownloadDirect_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	c := NewGitHubClient("acme", "tool", WithDownloadBase(server.URL))
	_, _, err := c.DownloadDirect(context.Background(), "v1.0.0", "tool.tar.gz")
	if err == nil {
		t.Fatal("expected error")
	}
	if got := httpStatus(err); got != 404 {
		t.Errorf("status = %d, want 404", got)
	}
}

func TestParseLinkHeader(t *testing.T) {
	tests := []struct {
		header   string
		expected string
	}{
		{``, ""},
		{`<https://api.github.com/x?page=2>; rel="next", <https://api.github.com/x?page=5>; rel="last"`, "https://api.github.com/x?page=2"},
		{`<https://api.github.com/x?page=5>; rel="last"`, ""},
	}
	for _, tt := range tests {
		if got := parseLinkHeader(tt.header); got != tt.expected {
			t.Errorf("parseLinkHeader(%q) = %q, want %q", tt.header, got, tt.expected)
		}
	}
}

func TestRedactURL(t *testing.T) {
	got := redactURL("https://example.com/path?token=secret#frag")
	if got != "https://example.com/path" {
		t.Errorf("redactURL = %q", got)
	}
}
