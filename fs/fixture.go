package fs

import (
	"context"
	"errors"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/fwojciec/mediacat"
)

// Ensure FixtureFetcher implements mediacat.Fetcher at compile time.
var _ mediacat.Fetcher = (*FixtureFetcher)(nil)

// FixtureFetcher serves listing pages from static files, for offline
// crawls and deterministic tests.
//
// A file:// URL is read from its own path. Any other URL is mapped with
// URLToPath and read relative to the fixture directory, so a site recorded
// with Recorder can be replayed by crawling its original URLs.
type FixtureFetcher struct {
	dir string
}

// NewFixtureFetcher creates a FixtureFetcher reading from dir.
func NewFixtureFetcher(dir string) *FixtureFetcher {
	return &FixtureFetcher{dir: dir}
}

// Fetch returns the fixture for url.
// Returns ENOTFOUND if no fixture exists.
func (f *FixtureFetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := f.path(rawURL)
	if err != nil {
		return "", err
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return "", mediacat.Errorf(mediacat.ENOTFOUND, "no fixture for %s", rawURL)
	} else if err != nil {
		return "", err
	}
	return string(data), nil
}

// Close is a no-op.
func (f *FixtureFetcher) Close() error {
	return nil
}

func (f *FixtureFetcher) path(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", mediacat.Errorf(mediacat.EINVALID, "invalid URL %q: %v", rawURL, err)
	}
	if u.Scheme == "file" {
		return filepath.FromSlash(u.Path), nil
	}
	rel, err := URLToPath(rawURL)
	if err != nil {
		return "", err
	}
	return filepath.Join(f.dir, rel), nil
}
