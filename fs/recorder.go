package fs

import (
	"context"
	"os"
	"path/filepath"

	"github.com/fwojciec/mediacat"
)

// Ensure Recorder implements mediacat.Fetcher at compile time.
var _ mediacat.Fetcher = (*Recorder)(nil)

// Recorder wraps a Fetcher and saves every fetched page as a fixture
// readable by FixtureFetcher.
//
// Pages are written to a temporary directory, then moved atomically on
// Commit, so an interrupted crawl never leaves a half-recorded fixture set
// in place of a complete one.
type Recorder struct {
	next    mediacat.Fetcher
	baseDir string
	name    string
}

// NewRecorder creates a new Recorder.
// baseDir is the parent directory, name is the fixture directory name.
// Files are saved to baseDir/name.tmp and moved to baseDir/name on Commit.
func NewRecorder(next mediacat.Fetcher, baseDir, name string) *Recorder {
	return &Recorder{
		next:    next,
		baseDir: baseDir,
		name:    name,
	}
}

// Dir returns the directory fixtures end up in after Commit.
func (r *Recorder) Dir() string {
	return r.finalDir()
}

func (r *Recorder) tempDir() string {
	return filepath.Join(r.baseDir, r.name+".tmp")
}

func (r *Recorder) finalDir() string {
	return filepath.Join(r.baseDir, r.name)
}

// Fetch delegates to the wrapped fetcher and records successful responses.
func (r *Recorder) Fetch(ctx context.Context, url string) (string, error) {
	html, err := r.next.Fetch(ctx, url)
	if err != nil {
		return "", err
	}
	if err := r.save(url, html); err != nil {
		return "", err
	}
	return html, nil
}

func (r *Recorder) save(url, html string) error {
	relPath, err := URLToPath(url)
	if err != nil {
		return err
	}

	fullPath := filepath.Join(r.tempDir(), relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return err
	}
	return os.WriteFile(fullPath, []byte(html), 0644)
}

// Commit replaces the fixture directory with the pages recorded so far.
func (r *Recorder) Commit() error {
	if err := os.MkdirAll(r.tempDir(), 0755); err != nil {
		return err
	}
	if err := os.RemoveAll(r.finalDir()); err != nil {
		return err
	}
	return os.Rename(r.tempDir(), r.finalDir())
}

// Abort discards the pages recorded so far.
func (r *Recorder) Abort() error {
	return os.RemoveAll(r.tempDir())
}

// Close closes the wrapped fetcher.
func (r *Recorder) Close() error {
	return r.next.Close()
}
