package mock

import (
	"context"

	"github.com/fwojciec/mediacat"
)

var _ mediacat.CatalogService = (*CatalogService)(nil)

// CatalogService is a mock implementation of mediacat.CatalogService.
type CatalogService struct {
	SaveCatalogFn       func(ctx context.Context, catalog *mediacat.Catalog) error
	FindCatalogByIDFn   func(ctx context.Context, id string) (*mediacat.Catalog, error)
	FindLatestCatalogFn func(ctx context.Context) (*mediacat.Catalog, error)
	FindSnapshotsFn     func(ctx context.Context, filter mediacat.SnapshotFilter) ([]*mediacat.Snapshot, error)
	DeleteSnapshotFn    func(ctx context.Context, id string) error
	DiffSnapshotsFn     func(ctx context.Context, prevID, nextID string) ([]mediacat.CategoryDiff, error)
}

func (s *CatalogService) SaveCatalog(ctx context.Context, catalog *mediacat.Catalog) error {
	return s.SaveCatalogFn(ctx, catalog)
}

func (s *CatalogService) FindCatalogByID(ctx context.Context, id string) (*mediacat.Catalog, error) {
	return s.FindCatalogByIDFn(ctx, id)
}

func (s *CatalogService) FindLatestCatalog(ctx context.Context) (*mediacat.Catalog, error) {
	return s.FindLatestCatalogFn(ctx)
}

func (s *CatalogService) FindSnapshots(ctx context.Context, filter mediacat.SnapshotFilter) ([]*mediacat.Snapshot, error) {
	return s.FindSnapshotsFn(ctx, filter)
}

func (s *CatalogService) DeleteSnapshot(ctx context.Context, id string) error {
	return s.DeleteSnapshotFn(ctx, id)
}

func (s *CatalogService) DiffSnapshots(ctx context.Context, prevID, nextID string) ([]mediacat.CategoryDiff, error) {
	return s.DiffSnapshotsFn(ctx, prevID, nextID)
}

var _ mediacat.CatalogWriter = (*CatalogWriter)(nil)

// CatalogWriter is a mock implementation of mediacat.CatalogWriter.
type CatalogWriter struct {
	WriteCatalogFn func(ctx context.Context, catalog *mediacat.Catalog) error
}

func (w *CatalogWriter) WriteCatalog(ctx context.Context, catalog *mediacat.Catalog) error {
	return w.WriteCatalogFn(ctx, catalog)
}
