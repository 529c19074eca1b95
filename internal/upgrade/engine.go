package upgrade

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/hoistdev/hoist/internal/paths"
)

// DefaultStashSuffix marks the preserved previous version of a replaced
// file. Stashes survive until the next run's cleanup pass.
const DefaultStashSuffix = ".hoist-old"

// Staging directory layout: the fetched archive lands under download/, the
// extracted tree under tree/.
const (
	stagingDownloadDir = "download"
	stagingTreeDir     = "tree"
)

// Phase identifies where in the upgrade pipeline an engine currently is.
type Phase string

const (
	PhaseIdle             Phase = "idle"
	PhaseResolvingVersion Phase = "resolving-version"
	PhaseFetching         Phase = "fetching"
	PhaseExtracting       Phase = "extracting"
	PhaseInstalling       Phase = "installing"
	PhaseComplete         Phase = "complete"
	PhaseFailed           Phase = "failed"
)

// VersionProvider is the capability the CLI consumes: list the versions
// available for a tool and upgrade to a chosen target.
type VersionProvider interface {
	ListVersions(ctx context.Context) ([]string, error)
	ResolveAndInstall(ctx context.Context, target string) (*Result, error)
}

// Config describes one tool to upgrade.
type Config struct {
	// Tool is the display name; defaults to the repository name.
	Tool string
	// Repo is the GitHub repository in "owner/repo" form.
	Repo string
	// Dir is the installation directory; a leading "~/" is expanded.
	Dir string
	// Assets maps platform keys ("linux-amd64", or a bare OS for maps that
	// do not distinguish architectures) to release asset filenames.
	Assets map[string]string
	// CurrentVersion, when known, is reported as Result.From.
	CurrentVersion string
	// StashSuffix overrides DefaultStashSuffix.
	StashSuffix string
	// CodeOffset is added uniformly to every error code the engine emits,
	// reserving a code range for embedding applications.
	CodeOffset int
	// IncludePrereleases admits prerelease versions; drafts are always
	// excluded.
	IncludePrereleases bool
	// UseAPI fetches assets through the authenticated GitHub API instead
	// of the public download URL.
	UseAPI bool
	// VerifyChecksums requires a matching checksums.txt entry for the
	// fetched asset.
	VerifyChecksums bool
	// SkipCleanup disables the stale-file pass at the start of a run.
	SkipCleanup bool
	// ShowProgress enables progress events to the configured callback.
	ShowProgress bool
}

// Engine performs a single upgrade for one tool. An engine is single-shot:
// create a fresh one per attempt.
type Engine struct {
	cfg       Config
	owner     string
	repo      string
	dir       string
	source    ReleaseSource
	extractor Extractor
	client    *http.Client
	progress  ProgressFunc
	log       *log.Logger

	release *Release
	staging string

	mu    sync.Mutex
	phase Phase
	ran   bool
}

// Option configures an Engine.
type Option func(*Engine)

// WithHTTPClient sets the HTTP client used for all network calls.
func WithHTTPClient(c *http.Client) Option {
	return func(e *Engine) {
		e.client = c
	}
}

// WithSource replaces the release source (useful for testing).
func WithSource(s ReleaseSource) Option {
	return func(e *Engine) {
		e.source = s
	}
}

// WithExtractor replaces the archive extractor (useful for testing).
func WithExtractor(x Extractor) Option {
	return func(e *Engine) {
		e.extractor = x
	}
}

// WithProgress registers a progress callback.
func WithProgress(fn ProgressFunc) Option {
	return func(e *Engine) {
		e.progress = fn
	}
}

// WithLogger sets the engine's logger; the default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// Result describes a completed upgrade.
type Result struct {
	Tool           string
	From           string
	To             string
	FilesInstalled []string
	StagingDir     string
}

// New validates cfg and builds an engine. It performs no network or
// filesystem I/O; the repository identifier is the only input validated
// here (a malformed one yields CodeBadRepo).
func New(cfg Config, opts ...Option) (*Engine, error) {
	owner, repo, ok := strings.Cut(cfg.Repo, "/")
	if !ok || owner == "" || repo == "" || strings.Contains(repo, "/") {
		return nil, newError(CodeBadRepo+cfg.CodeOffset, nil,
			fmt.Sprintf("malformed repository %q, want owner/repo", cfg.Repo),
			map[string]any{"repo": cfg.Repo})
	}

	dir, err := paths.ExpandHome(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("resolving destination directory: %w", err)
	}

	if cfg.Tool == "" {
		cfg.Tool = repo
	}
	if cfg.StashSuffix == "" {
		cfg.StashSuffix = DefaultStashSuffix
	}

	e := &Engine{
		cfg:       cfg,
		owner:     owner,
		repo:      repo,
		dir:       dir,
		extractor: archiveExtractor{},
		log:       log.New(io.Discard),
		phase:     PhaseIdle,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.source == nil {
		clientOpts := []ClientOption{WithClientUserAgent("hoist-upgrade")}
		if e.client != nil {
			clientOpts = append(clientOpts, WithClientHTTPClient(e.client))
		}
		e.source = NewGitHubClient(owner, repo, clientOpts...)
	}

	return e, nil
}

// Phase returns the engine's current phase.
func (e *Engine) Phase() Phase {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.phase
}

func (e *Engine) setPhase(p Phase) {
	e.mu.Lock()
	e.phase = p
	e.mu.Unlock()
}

// ResolveAndInstall performs the upgrade: clean stale files, resolve the
// platform asset and target version, fetch, extract into staging, and
// install. Every failure is returned as an *Error carrying the phase it
// happened in; the staging directory is left in place for inspection and
// is reported via Result.StagingDir on success and the error metadata on
// failure.
func (e *Engine) ResolveAndInstall(ctx context.Context, target string) (*Result, error) {
	e.mu.Lock()
	if e.ran {
		e.mu.Unlock()
		return nil, errors.New("engine already ran; create a new engine per attempt")
	}
	e.ran = true
	e.mu.Unlock()

	result, err := e.run(ctx, target)
	if err != nil {
		failedAt := e.Phase()
		e.setPhase(PhaseFailed)
		return nil, e.finalize(err, failedAt)
	}
	e.setPhase(PhaseComplete)
	return result, nil
}

func (e *Engine) run(ctx context.Context, target string) (*Result, error) {
	if !e.cfg.SkipCleanup {
		e.log.Debug("cleaning stale files", "tool", e.cfg.Tool, "dir", e.dir)
		if err := e.reapStale(); err != nil {
			return nil, err
		}
	}

	// Resolve the platform asset before touching the network so that a
	// missing mapping fails without spending a request.
	assetName, err := ResolveAsset(runtime.GOOS, runtime.GOARCH, e.cfg.Assets)
	if err != nil {
		return nil, err
	}
	e.log.Debug("resolved asset", "tool", e.cfg.Tool, "asset", assetName)

	e.setPhase(PhaseResolvingVersion)
	tag, err := e.resolveTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	e.log.Info("upgrading", "tool", e.cfg.Tool, "version", tag)

	e.setPhase(PhaseFetching)
	staging, err := os.MkdirTemp("", "hoist-upgrade-*")
	if err != nil {
		return nil, newError(BandInstall, err, "creating staging directory", nil)
	}
	e.staging = staging

	archivePath, err := e.fetchAsset(ctx, tag, assetName, filepath.Join(staging, stagingDownloadDir))
	if err != nil {
		return nil, err
	}

	if e.cfg.VerifyChecksums {
		if err := e.verifyChecksum(ctx, tag, assetName, archivePath); err != nil {
			return nil, err
		}
		e.log.Debug("checksum verified", "asset", assetName)
	}

	e.setPhase(PhaseExtracting)
	tree := filepath.Join(staging, stagingTreeDir)
	if err := e.extractArchive(archivePath, assetName, tree); err != nil {
		return nil, err
	}

	e.setPhase(PhaseInstalling)
	installed, err := e.installTree(tree, e.dir)
	if err != nil {
		return nil, err
	}
	e.log.Info("installed", "tool", e.cfg.Tool, "version", tag, "files", len(installed))

	return &Result{
		Tool:           e.cfg.Tool,
		From:           e.cfg.CurrentVersion,
		To:             tag,
		FilesInstalled: installed,
		StagingDir:     staging,
	}, nil
}

// finalize guarantees the outgoing error is an *Error with the failure
// phase recorded and the configured code offset applied.
func (e *Engine) finalize(err error, failedAt Phase) error {
	ue, ok := AsError(err)
	if !ok {
		ue = newError(0, err, "upgrade failed", nil)
	}
	if _, exists := ue.Meta["phase"]; !exists {
		ue.Meta["phase"] = string(failedAt)
	}
	// Failed runs leave the staging directory behind; name it so the
	// caller can inspect or remove it.
	if e.staging != "" {
		if _, exists := ue.Meta["staging"]; !exists {
			ue.Meta["staging"] = e.staging
		}
	}
	ue.Code += e.cfg.CodeOffset
	return ue
}

// offsetErr applies the configured code offset outside of ResolveAndInstall.
func (e *Engine) offsetErr(err error) error {
	if ue, ok := AsError(err); ok {
		ue.Code += e.cfg.CodeOffset
	}
	return err
}

// Dir returns the expanded destination directory.
func (e *Engine) Dir() string {
	return e.dir
}
