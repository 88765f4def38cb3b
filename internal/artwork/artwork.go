// Package artwork downloads catalog media and keeps it in a local cache the
// packer can import resources from.
package artwork

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const (
	// DefaultDirName is the cache folder created next to the executable.
	DefaultDirName = "ScreenScraperArtwork"

	// IconFileName is the resource name the packer looks for inside a staged folder.
	IconFileName = "ICON0.png"

	// StagingDirName holds one resource root per job under the cache.
	StagingDirName = "staging"
)

// Fetcher downloads artwork and manages the artwork cache.
// It is safe for concurrent use; distinct catalog ids and staging keys map to
// distinct paths, and writes to the same catalog id are last-writer-wins.
type Fetcher struct {
	dir        string
	httpClient *http.Client
	log        *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(f *Fetcher) {
		f.httpClient = hc
	}
}

// WithLogger sets a logger for debug output.
func WithLogger(log *slog.Logger) Option {
	return func(f *Fetcher) {
		f.log = log.With("component", "artwork")
	}
}

// New creates a Fetcher rooted at dir. An empty dir selects DefaultDir.
func New(dir string, opts ...Option) *Fetcher {
	if dir == "" {
		dir = DefaultDir()
	}
	f := &Fetcher{
		dir: dir,
		// No overall timeout: image sizes are not capped, callers bound the
		// request through the context.
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DefaultDir returns the cache location next to the running executable,
// falling back to the user cache directory when the executable path is unknown.
func DefaultDir() string {
	if exe, err := os.Executable(); err == nil {
		return filepath.Join(filepath.Dir(exe), DefaultDirName)
	}
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "psxpack", DefaultDirName)
	}
	return DefaultDirName
}

// CacheDir returns the cache directory, creating it if needed.
func (f *Fetcher) CacheDir() (string, error) {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return "", fmt.Errorf("create artwork cache: %w", err)
	}
	return f.dir, nil
}

// Fetch downloads the resource at url into memory.
func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &RetrievalError{URL: url, Err: fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &RetrievalError{URL: url, Err: err}
	}

	if f.log != nil {
		f.log.Debug("artwork fetched", "url", url, "bytes", len(data), "duration_ms", time.Since(start).Milliseconds())
	}
	return data, nil
}

// IconPath returns where Store writes the icon for catalogID.
func (f *Fetcher) IconPath(catalogID string) string {
	return filepath.Join(f.dir, sanitizeFilename(catalogID)+"_icon0.png")
}

// Store writes data as the cached icon for catalogID, replacing any previous
// file, and returns its path.
func (f *Fetcher) Store(catalogID string, data []byte) (string, error) {
	if sanitizeFilename(catalogID) == "" {
		return "", ErrNoCatalogID
	}
	if _, err := f.CacheDir(); err != nil {
		return "", err
	}

	path := f.IconPath(catalogID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("write icon: %w", err)
	}
	return path, nil
}

// Stage copies iconPath into <cache>/staging/<key>/<stem>/IconFileName, where
// stem is the job's source file name without extension, and returns the
// <cache>/staging/<key> directory the packer should use as its resource root.
// key must be unique per job so same-named files from different folders
// never share a staged icon.
func (f *Fetcher) Stage(iconPath, key, relativePath string) (string, error) {
	key = sanitizeFilename(key)
	if key == "" {
		return "", fmt.Errorf("%w: staging key is required", ErrStageFailed)
	}

	base := filepath.Base(relativePath)
	name := strings.TrimSuffix(base, filepath.Ext(base))

	root, err := f.CacheDir()
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrStageFailed, err)
	}

	jobRoot := filepath.Join(root, StagingDirName, key)
	dir := filepath.Join(jobRoot, name)
	if err := validatePath(dir, jobRoot); err != nil {
		return "", fmt.Errorf("%w: %w", ErrStageFailed, err)
	}

	if err := copyFile(iconPath, filepath.Join(dir, IconFileName)); err != nil {
		return "", err
	}
	return jobRoot, nil
}

// Unstage removes a resource root returned by Stage.
func (f *Fetcher) Unstage(jobRoot string) error {
	if err := validatePath(jobRoot, filepath.Join(f.dir, StagingDirName)); err != nil {
		return err
	}
	if err := os.RemoveAll(jobRoot); err != nil {
		return fmt.Errorf("remove staged artwork: %w", err)
	}
	return nil
}

// copyFile copies src to dst, creating dst's directory and overwriting dst.
func copyFile(src, dst string) error {
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return fmt.Errorf("%w: create directory: %w", ErrStageFailed, err)
	}

	srcFile, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("%w: open source: %w", ErrStageFailed, err)
	}
	defer func() { _ = srcFile.Close() }()

	dstFile, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("%w: create destination: %w", ErrStageFailed, err)
	}

	if _, err := io.Copy(dstFile, srcFile); err != nil {
		_ = dstFile.Close()
		_ = os.Remove(dst)
		return fmt.Errorf("%w: copy content: %w", ErrStageFailed, err)
	}

	return closeSynced(dstFile)
}

// closeSynced flushes and closes f, removing it if either step fails so a
// truncated icon is never left looking staged.
func closeSynced(f syncCloser) error {
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(f.Name())
		return fmt.Errorf("%w: sync: %w", ErrStageFailed, err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(f.Name())
		return fmt.Errorf("%w: close: %w", ErrStageFailed, err)
	}
	return nil
}

type syncCloser interface {
	Sync() error
	Close() error
	Name() string
}
