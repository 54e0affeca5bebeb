package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/mediacat"
)

// Ensure LoggingCatalogService implements mediacat.CatalogService.
var _ mediacat.CatalogService = (*LoggingCatalogService)(nil)

// LoggingCatalogService wraps a CatalogService with logging.
type LoggingCatalogService struct {
	next   mediacat.CatalogService
	logger *slog.Logger
}

// NewLoggingCatalogService creates a new LoggingCatalogService.
func NewLoggingCatalogService(next mediacat.CatalogService, logger *slog.Logger) *LoggingCatalogService {
	return &LoggingCatalogService{next: next, logger: logger}
}

// SaveCatalog delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) SaveCatalog(ctx context.Context, catalog *mediacat.Catalog) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("save catalog",
			"id", catalog.ID,
			"categories", len(catalog.Categories),
			"items", catalog.Len(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveCatalog(ctx, catalog)
}

// FindCatalogByID delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) FindCatalogByID(ctx context.Context, id string) (catalog *mediacat.Catalog, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find catalog",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindCatalogByID(ctx, id)
}

// FindLatestCatalog delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) FindLatestCatalog(ctx context.Context) (catalog *mediacat.Catalog, err error) {
	defer func(begin time.Time) {
		var id string
		if catalog != nil {
			id = catalog.ID
		}
		s.logger.Debug("find latest catalog",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindLatestCatalog(ctx)
}

// FindSnapshots delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) FindSnapshots(ctx context.Context, filter mediacat.SnapshotFilter) (snapshots []*mediacat.Snapshot, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("find snapshots",
			"count", len(snapshots),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.FindSnapshots(ctx, filter)
}

// DeleteSnapshot delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) DeleteSnapshot(ctx context.Context, id string) (err error) {
	defer func(begin time.Time) {
		s.logger.Info("delete snapshot",
			"id", id,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DeleteSnapshot(ctx, id)
}

// DiffSnapshots delegates to the wrapped service and logs the operation.
func (s *LoggingCatalogService) DiffSnapshots(ctx context.Context, prevID, nextID string) (diffs []mediacat.CategoryDiff, err error) {
	defer func(begin time.Time) {
		s.logger.Debug("diff snapshots",
			"prev", prevID,
			"next", nextID,
			"count", len(diffs),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DiffSnapshots(ctx, prevID, nextID)
}
