package fs

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/fwojciec/mediacat"
)

// Ensure JSONWriter implements mediacat.CatalogWriter at compile time.
var _ mediacat.CatalogWriter = (*JSONWriter)(nil)

// JSONWriter writes catalogs as indented JSON files.
// The file is written next to its destination and renamed into place.
type JSONWriter struct {
	path string
}

// NewJSONWriter creates a JSONWriter writing to path.
func NewJSONWriter(path string) *JSONWriter {
	return &JSONWriter{path: path}
}

// WriteCatalog serializes catalog to the writer's path.
func (w *JSONWriter) WriteCatalog(ctx context.Context, catalog *mediacat.Catalog) error {
	if catalog == nil {
		return mediacat.Errorf(mediacat.EINVALID, "catalog required")
	}

	data, err := json.MarshalIndent(catalog, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')

	dir := filepath.Dir(w.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(w.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), w.path)
}

// ReadCatalog reads a catalog written by JSONWriter.
func ReadCatalog(path string) (*mediacat.Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var catalog mediacat.Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, mediacat.Errorf(mediacat.EINVALID, "decode catalog %s: %v", path, err)
	}
	if catalog.FormatVersion != mediacat.CatalogFormatVersion {
		return nil, mediacat.Errorf(mediacat.EINVALID, "unsupported catalog format version %d", catalog.FormatVersion)
	}
	return &catalog, nil
}
