// Package fs provides file-based listing fixtures and catalog export.
package fs

import (
	"net/url"
	"path/filepath"
	"strings"

	"github.com/fwojciec/mediacat"
)

// querySanitizer makes a query string safe for use in a file name.
var querySanitizer = strings.NewReplacer("/", "_", "\\", "_", "&", "_", "?", "_", "%", "_")

// URLToPath converts a listing page URL to a relative fixture file path.
// The query string is kept so that paginated pages map to distinct files.
// Example: http://www.bbc.co.uk/iplayer/categories/food/all?page=2 →
// iplayer/categories/food/all_page=2.html
func URLToPath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", err
	}

	path := strings.TrimPrefix(u.Path, "/")
	if path == "" || strings.HasSuffix(path, "/") {
		path += "index"
	}
	if u.RawQuery != "" {
		path += "_" + querySanitizer.Replace(u.RawQuery)
	}
	path += ".html"

	cleaned := filepath.Clean(filepath.FromSlash(path))
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(filepath.Separator)) || filepath.IsAbs(cleaned) {
		return "", mediacat.Errorf(mediacat.EINVALID, "path traversal in URL %q", rawURL)
	}
	return cleaned, nil
}
