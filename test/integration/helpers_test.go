//go:build integration

package integration_test

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/hoistdev/hoist/internal/upgrade"
)

// testEnv holds paths to isolated test directories.
type testEnv struct {
	HomeDir string // HOIST_HOME; holds the tools file, config, and cache
	DestDir string // Installation directory for the tool under test
}

// setupTestEnv creates isolated temp directories and scrubs the environment
// so no test talks to the real GitHub or the user's hoist home.
func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		HomeDir: t.TempDir(),
		DestDir: t.TempDir(),
	}

	t.Setenv("HOIST_HOME", env.HomeDir)
	t.Setenv("HOIST_TOOLS", "")
	t.Setenv("GITHUB_TOKEN", "")
	t.Setenv("GH_TOKEN", "")

	return env
}

// fakeRelease describes one release the fake GitHub host serves.
type fakeRelease struct {
	Tag        string
	Draft      bool
	Prerelease bool
	Assets     map[string][]byte // asset name → payload
}

// releaseServer serves both the GitHub releases API and the public download
// host from a single httptest server, recording every request it sees.
type releaseServer struct {
	t        *testing.T
	owner    string
	repo     string
	releases []fakeRelease
	ids      map[string]int64 // "tag/name" → asset ID
	payloads map[int64][]byte

	mu       sync.Mutex
	paths    []string
	authSeen []string
}

// newReleaseServer starts a fake GitHub host for owner/repo. The server is
// shut down when the test ends.
func newReleaseServer(t *testing.T, owner, repo string, releases []fakeRelease) (*releaseServer, *httptest.Server) {
	t.Helper()

	rs := &releaseServer{
		t:        t,
		owner:    owner,
		repo:     repo,
		releases: releases,
		ids:      map[string]int64{},
		payloads: map[int64][]byte{},
	}
	var nextID int64 = 1
	for _, rel := range releases {
		for name, payload := range rel.Assets {
			rs.ids[rel.Tag+"/"+name] = nextID
			rs.payloads[nextID] = payload
			nextID++
		}
	}

	srv := httptest.NewServer(http.HandlerFunc(rs.handle))
	t.Cleanup(srv.Close)
	return rs, srv
}

func (rs *releaseServer) handle(w http.ResponseWriter, r *http.Request) {
	rs.mu.Lock()
	rs.paths = append(rs.paths, r.URL.Path)
	rs.authSeen = append(rs.authSeen, r.Header.Get("Authorization"))
	rs.mu.Unlock()

	apiPrefix := fmt.Sprintf("/repos/%s/%s/releases", rs.owner, rs.repo)
	downloadPrefix := fmt.Sprintf("/%s/%s/releases/download/", rs.owner, rs.repo)

	switch {
	case r.URL.Path == apiPrefix:
		rs.serveList(w)
	case strings.HasPrefix(r.URL.Path, apiPrefix+"/tags/"):
		rs.serveByTag(w, strings.TrimPrefix(r.URL.Path, apiPrefix+"/tags/"))
	case strings.HasPrefix(r.URL.Path, apiPrefix+"/assets/"):
		rs.serveAsset(w, strings.TrimPrefix(r.URL.Path, apiPrefix+"/assets/"))
	case strings.HasPrefix(r.URL.Path, downloadPrefix):
		rs.serveDirect(w, r, strings.TrimPrefix(r.URL.Path, downloadPrefix))
	default:
		http.NotFound(w, r)
	}
}

func (rs *releaseServer) serveList(w http.ResponseWriter) {
	out := make([]map[string]any, 0, len(rs.releases))
	for _, rel := range rs.releases {
		out = append(out, rs.releaseJSON(rel))
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(out); err != nil {
		rs.t.Errorf("encoding release list: %v", err)
	}
}

func (rs *releaseServer) serveByTag(w http.ResponseWriter, tag string) {
	for _, rel := range rs.releases {
		if rel.Tag == tag {
			w.Header().Set("Content-Type", "application/json")
			if err := json.NewEncoder(w).Encode(rs.releaseJSON(rel)); err != nil {
				rs.t.Errorf("encoding release: %v", err)
			}
			return
		}
	}
	http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
}

func (rs *releaseServer) serveAsset(w http.ResponseWriter, idStr string) {
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "bad asset id", http.StatusBadRequest)
		return
	}
	payload, ok := rs.payloads[id]
	if !ok {
		http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "application/octet-stream")
	w.Write(payload)
}

func (rs *releaseServer) serveDirect(w http.ResponseWriter, r *http.Request, rest string) {
	tag, name, ok := strings.Cut(rest, "/")
	if !ok {
		http.NotFound(w, r)
		return
	}
	for _, rel := range rs.releases {
		if rel.Tag != tag {
			continue
		}
		if payload, ok := rel.Assets[name]; ok {
			w.Header().Set("Content-Type", "application/octet-stream")
			w.Write(payload)
			return
		}
	}
	http.NotFound(w, r)
}

func (rs *releaseServer) releaseJSON(rel fakeRelease) map[string]any {
	assets := make([]map[string]any, 0, len(rel.Assets))
	for name, payload := range rel.Assets {
		assets = append(assets, map[string]any{
			"id":   rs.ids[rel.Tag+"/"+name],
			"name": name,
			"size": len(payload),
		})
	}
	return map[string]any{
		"tag_name":   rel.Tag,
		"draft":      rel.Draft,
		"prerelease": rel.Prerelease,
		"assets":     assets,
	}
}

// requestCount returns how many requests matched the path substring.
func (rs *releaseServer) requestCount(substr string) int {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	n := 0
	for _, p := range rs.paths {
		if strings.Contains(p, substr) {
			n++
		}
	}
	return n
}

// sawAuthorization reports whether any request carried the given
// Authorization header value.
func (rs *releaseServer) sawAuthorization(value string) bool {
	rs.mu.Lock()
	defer rs.mu.Unlock()
	for _, a := range rs.authSeen {
		if a == value {
			return true
		}
	}
	return false
}

// newEngine builds an upgrade engine whose GitHub client points at the fake
// host for both API and direct downloads.
func newEngine(t *testing.T, srv *httptest.Server, cfg upgrade.Config, clientOpts ...upgrade.ClientOption) *upgrade.Engine {
	t.Helper()

	owner, repo, _ := strings.Cut(cfg.Repo, "/")
	opts := append([]upgrade.ClientOption{
		upgrade.WithAPIBase(srv.URL),
		upgrade.WithDownloadBase(srv.URL),
		upgrade.WithClientHTTPClient(srv.Client()),
	}, clientOpts...)

	eng, err := upgrade.New(cfg, upgrade.WithSource(upgrade.NewGitHubClient(owner, repo, opts...)))
	if err != nil {
		t.Fatalf("upgrade.New: %v", err)
	}
	return eng
}

// makeTarGz builds a tar.gz archive from relative path → content.
func makeTarGz(t *testing.T, files map[string]string) []byte {
	t.Helper()

	var buf bytes.Buffer
	gw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gw)
	for name, content := range files {
		hdr := &tar.Header{Name: name, Mode: 0755, Size: int64(len(content))}
		if err := tw.WriteHeader(hdr); err != nil {
			t.Fatal(err)
		}
		if _, err := tw.Write([]byte(content)); err != nil {
			t.Fatal(err)
		}
	}
	if err := tw.Close(); err != nil {
		t.Fatal(err)
	}
	if err := gw.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

// checksumManifest renders a sha256sum-format manifest for the given assets.
func checksumManifest(assets map[string][]byte) []byte {
	var sb strings.Builder
	for name, payload := range assets {
		sum := sha256.Sum256(payload)
		fmt.Fprintf(&sb, "%s  %s\n", hex.EncodeToString(sum[:]), name)
	}
	return []byte(sb.String())
}

// writeFile creates a file at the given path, creating parent directories.
func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("creating dir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("writing %s: %v", path, err)
	}
}

// assertFileExists fails the test if the file does not exist.
func assertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected file to exist: %s (error: %v)", path, err)
	}
}

// assertFileNotExists fails the test if the file exists.
func assertFileNotExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); err == nil {
		t.Errorf("expected file NOT to exist: %s", path)
	}
}

// assertFileContent fails if the file doesn't exist or its content differs.
func assertFileContent(t *testing.T, path, want string) {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Errorf("reading %s: %v", path, err)
		return
	}
	if string(data) != want {
		t.Errorf("file %s = %q, want %q", path, data, want)
	}
}

// assertEngineCode fails unless err is an engine error with the given code.
func assertEngineCode(t *testing.T, err error, want int) {
	t.Helper()
	ue, ok := upgrade.AsError(err)
	if !ok {
		t.Fatalf("expected engine error with code %d, got %v", want, err)
	}
	if ue.Code != want {
		t.Errorf("error code = %d, want %d (error: %v)", ue.Code, want, ue)
	}
}
