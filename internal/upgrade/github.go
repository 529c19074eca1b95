package upgrade

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	githubAPIBase      = "https://api.github.com"
	githubDownloadBase = "https://github.com"
	githubAPIVersion   = "2022-11-28"

	// defaultPerPage is the number of releases fetched per API page.
	defaultPerPage = 50

	// maxPages is the upper bound on pagination to avoid runaway requests.
	maxPages = 3

	// maxJSONResponseBytes caps JSON API response size (10 MB) to prevent
	// unbounded memory consumption from malformed responses.
	maxJSONResponseBytes = 10 << 20
)

// Release represents a GitHub release and its downloadable assets.
type Release struct {
	TagName    string    `json:"tag_name"`
	Draft      bool      `json:"draft"`
	Prerelease bool      `json:"prerelease"`
	Assets     []Asset   `json:"assets"`
	Published  time.Time `json:"published_at"`
	HTMLURL    string    `json:"html_url"`
}

// Asset represents a downloadable file attached to a release.
type Asset struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DownloadURL string `json:"browser_download_url"`
	Size        int64  `json:"size"`
	ContentType string `json:"content_type"`
}

// ReleaseSource is the engine's view of a release host. DownloadAsset
// retrieves an asset through the authenticated API by its numeric ID;
// DownloadDirect retrieves it anonymously by its public download URL.
// Both return the payload stream and its size in bytes (-1 when unknown).
type ReleaseSource interface {
	ListReleases(ctx context.Context) ([]Release, error)
	ReleaseByTag(ctx context.Context, tag string) (*Release, error)
	DownloadAsset(ctx context.Context, assetID int64) (io.ReadCloser, int64, error)
	DownloadDirect(ctx context.Context, tag, assetName string) (io.ReadCloser, int64, error)
}

// StatusError reports a non-success HTTP response, with rate limit details
// when the GitHub API signalled quota exhaustion.
type StatusError struct {
	Status      int
	URL         string
	RateLimited bool
	ResetAt     time.Time
}

func (e *StatusError) Error() string {
	if e.RateLimited {
		return fmt.Sprintf("GitHub API rate limit exceeded (status %d, resets at %s); set GITHUB_TOKEN for higher limits",
			e.Status, e.ResetAt.UTC().Format("15:04 UTC"))
	}
	return fmt.Sprintf("unexpected status %d from %s", e.Status, e.URL)
}

// httpStatus extracts the HTTP status from an error chain, or 0 when the
// failure happened below the HTTP layer.
func httpStatus(err error) int {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return 0
}

// GitHubClient implements ReleaseSource against the GitHub Releases API.
type GitHubClient struct {
	httpClient   *http.Client
	owner        string
	repo         string
	apiBase      string
	downloadBase string
	token        string
	userAgent    string
}

// ClientOption configures a GitHubClient during construction.
type ClientOption func(*GitHubClient)

// WithClientHTTPClient sets a custom HTTP client, useful for tests or proxy
// configurations.
func WithClientHTTPClient(c *http.Client) ClientOption {
	return func(g *GitHubClient) {
		g.httpClient = c
	}
}

// WithAPIBase overrides the GitHub API base URL, primarily for test servers.
func WithAPIBase(base string) ClientOption {
	return func(g *GitHubClient) {
		g.apiBase = strings.TrimRight(base, "/")
	}
}

// WithDownloadBase overrides the public download base URL, primarily for
// test servers.
func WithDownloadBase(base string) ClientOption {
	return func(g *GitHubClient) {
		g.downloadBase = strings.TrimRight(base, "/")
	}
}

// WithClientToken sets a GitHub token for authenticated requests.
// Authenticated requests have a higher rate limit (5000/hour vs 60/hour).
func WithClientToken(token string) ClientOption {
	return func(g *GitHubClient) {
		g.token = token
	}
}

// WithClientUserAgent sets the User-Agent header sent with every request.
func WithClientUserAgent(ua string) ClientOption {
	return func(g *GitHubClient) {
		g.userAgent = ua
	}
}

// NewGitHubClient creates a client for one repository. The token defaults
// to GITHUB_TOKEN, falling back to GH_TOKEN.
func NewGitHubClient(owner, repo string, opts ...ClientOption) *GitHubClient {
	c := &GitHubClient{
		httpClient:   &http.Client{Timeout: 30 * time.Second},
		owner:        owner,
		repo:         repo,
		apiBase:      githubAPIBase,
		downloadBase: githubDownloadBase,
		token:        TokenFromEnv(),
		userAgent:    "hoist-upgrade",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// TokenFromEnv returns the GitHub token from the environment:
// GITHUB_TOKEN first, then GH_TOKEN.
func TokenFromEnv() string {
	if t := os.Getenv("GITHUB_TOKEN"); t != "" {
		return t
	}
	return os.Getenv("GH_TOKEN")
}

// ListReleases fetches the repository's releases, following pagination up
// to maxPages. No filtering happens here; draft and prerelease entries are
// the caller's concern.
func (c *GitHubClient) ListReleases(ctx context.Context) ([]Release, error) {
	pageURL := fmt.Sprintf("%s/repos/%s/%s/releases?per_page=%d",
		c.apiBase, c.owner, c.repo, defaultPerPage)

	var all []Release

	for page := 0; page < maxPages && pageURL != ""; page++ {
		resp, err := c.doRequest(ctx, pageURL, "application/vnd.github+json", true)
		if err != nil {
			return nil, fmt.Errorf("listing releases: %w", err)
		}

		if err := checkResponse(resp, pageURL); err != nil {
			resp.Body.Close()
			return nil, fmt.Errorf("listing releases: %w", err)
		}

		var releases []Release
		decodeErr := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&releases)
		next := parseLinkHeader(resp.Header.Get("Link"))
		resp.Body.Close()
		if decodeErr != nil {
			return nil, fmt.Errorf("listing releases: decoding response: %w", decodeErr)
		}

		all = append(all, releases...)
		pageURL = next
	}

	return all, nil
}

// ReleaseByTag fetches a single release by its git tag (e.g. "v1.0.0").
func (c *GitHubClient) ReleaseByTag(ctx context.Context, tag string) (*Release, error) {
	tagURL := fmt.Sprintf("%s/repos/%s/%s/releases/tags/%s",
		c.apiBase, c.owner, c.repo, url.PathEscape(tag))

	resp, err := c.doRequest(ctx, tagURL, "application/vnd.github+json", true)
	if err != nil {
		return nil, fmt.Errorf("getting release %s: %w", tag, err)
	}
	defer resp.Body.Close()

	if err := checkResponse(resp, tagURL); err != nil {
		return nil, fmt.Errorf("getting release %s: %w", tag, err)
	}

	var release Release
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxJSONResponseBytes)).Decode(&release); err != nil {
		return nil, fmt.Errorf("getting release %s: decoding response: %w", tag, err)
	}
	return &release, nil
}

// DownloadAsset streams an asset's bytes through the API by its numeric ID.
// The octet-stream Accept header makes GitHub serve the raw payload instead
// of the asset's JSON metadata.
func (c *GitHubClient) DownloadAsset(ctx context.Context, assetID int64) (io.ReadCloser, int64, error) {
	assetURL := fmt.Sprintf("%s/repos/%s/%s/releases/assets/%d",
		c.apiBase, c.owner, c.repo, assetID)

	resp, err := c.doRequest(ctx, assetURL, "application/octet-stream", true)
	if err != nil {
		return nil, 0, fmt.Errorf("downloading asset %d: %w", assetID, err)
	}

	if err := checkResponse(resp, assetURL); err != nil {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("downloading asset %d: %w", assetID, err)
	}

	return resp.Body, resp.ContentLength, nil
}

// DownloadDirect streams an asset from the public download URL without
// authentication.
func (c *GitHubClient) DownloadDirect(ctx context.Context, tag, assetName string) (io.ReadCloser, int64, error) {
	directURL := fmt.Sprintf("%s/%s/%s/releases/download/%s/%s",
		c.downloadBase, c.owner, c.repo, url.PathEscape(tag), url.PathEscape(assetName))

	resp, err := c.doRequest(ctx, directURL, "application/octet-stream", false)
	if err != nil {
		return nil, 0, fmt.Errorf("downloading %s: %w", assetName, err)
	}

	if resp.StatusCode != http.StatusOK {
		status := resp.StatusCode
		resp.Body.Close()
		return nil, 0, fmt.Errorf("downloading %s: %w", assetName, &StatusError{Status: status, URL: redactURL(directURL)})
	}

	return resp.Body, resp.ContentLength, nil
}

// doRequest creates and executes a GET with common GitHub API headers.
// The auth token is only attached when withToken is set and the request
// targets a known GitHub host, preventing token leakage to third-party
// CDNs behind redirects.
func (c *GitHubClient) doRequest(ctx context.Context, reqURL, accept string, withToken bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	req.Header.Set("Accept", accept)
	req.Header.Set("X-GitHub-Api-Version", githubAPIVersion)
	req.Header.Set("User-Agent", c.userAgent)

	if withToken && c.token != "" && c.isTrustedHost(req.URL) {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	return resp, nil
}

// checkResponse turns a non-success API response into a StatusError,
// carrying rate limit details when the quota headers say it is exhausted.
func checkResponse(resp *http.Response, reqURL string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}

	se := &StatusError{Status: resp.StatusCode, URL: redactURL(reqURL)}
	if remaining, err := strconv.Atoi(resp.Header.Get("X-RateLimit-Remaining")); err == nil && remaining == 0 {
		se.RateLimited = true
		if resetUnix, err := strconv.ParseInt(resp.Header.Get("X-RateLimit-Reset"), 10, 64); err == nil {
			se.ResetAt = time.Unix(resetUnix, 0)
		}
	}
	return se
}

// parseLinkHeader extracts the URL for the "next" page from a GitHub API
// Link header. Returns an empty string when no next page exists.
//
// Example header: <https://api.github.com/...?page=2>; rel="next", <...>; rel="last"
func parseLinkHeader(header string) string {
	if header == "" {
		return ""
	}

	for part := range strings.SplitSeq(header, ",") {
		part = strings.TrimSpace(part)
		if !strings.Contains(part, `rel="next"`) {
			continue
		}

		start := strings.Index(part, "<")
		end := strings.Index(part, ">")
		if start >= 0 && end > start {
			return part[start+1 : end]
		}
	}

	return ""
}

// isTrustedHost reports whether reqURL targets a host the auth token may be
// sent to: the configured API host, plus github.com when the API base is the
// production one.
func (c *GitHubClient) isTrustedHost(reqURL *url.URL) bool {
	base, err := url.Parse(c.apiBase)
	if err != nil {
		return false
	}
	if strings.EqualFold(reqURL.Host, base.Host) {
		return true
	}
	return strings.EqualFold(base.Host, "api.github.com") && strings.EqualFold(reqURL.Host, "github.com")
}

// redactURL strips query parameters and fragments from a URL for safe
// inclusion in error messages.
func redactURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "<invalid-url>"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}
