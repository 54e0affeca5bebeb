package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/fwojciec/mediacat"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ mediacat.CatalogService = (*CatalogService)(nil)

// CatalogService implements mediacat.CatalogService using SQLite.
// Each saved catalog becomes an immutable snapshot.
type CatalogService struct {
	db *DB
}

// NewCatalogService creates a new CatalogService.
func NewCatalogService(db *DB) *CatalogService {
	return &CatalogService{db: db}
}

// SaveCatalog stores catalog as a new snapshot and sets its ID.
func (s *CatalogService) SaveCatalog(ctx context.Context, catalog *mediacat.Catalog) error {
	if catalog == nil {
		return mediacat.Errorf(mediacat.EINVALID, "catalog required")
	}
	if catalog.SnapshotTime.IsZero() {
		return mediacat.Errorf(mediacat.EINVALID, "catalog snapshot time required")
	}
	for _, cat := range catalog.Categories {
		for _, item := range cat.Items {
			if err := item.Validate(); err != nil {
				return err
			}
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	id := uuid.New().String()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO snapshots (id, format_version, schema_name, snapshot_time, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, id, catalog.FormatVersion, catalog.Schema, formatTime(catalog.SnapshotTime), formatTime(time.Now())); err != nil {
		return err
	}

	for pos, cat := range catalog.Categories {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO categories (snapshot_id, name, position, root_url, partial)
			VALUES (?, ?, ?, ?, ?)
		`, id, cat.Name, pos, cat.RootURL, cat.Partial); err != nil {
			return err
		}
		for itemPos, item := range cat.Items {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO items (snapshot_id, category, position, id, title, subtitle, synopsis,
					thumbnail_url, canonical_url, sequence_index, content_hash)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			`, id, cat.Name, itemPos, item.ID, item.Title, item.Subtitle, item.Synopsis,
				item.ThumbnailURL, item.CanonicalURL, item.SequenceIndex, hashItem(item)); err != nil {
				return err
			}
		}
		for _, f := range cat.Failed {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO failures (snapshot_id, category, url, error) VALUES (?, ?, ?, ?)
			`, id, cat.Name, f.URL, f.Error); err != nil {
				return err
			}
		}
		for _, r := range cat.Rejected {
			if _, err := tx.ExecContext(ctx, `
				INSERT INTO rejections (snapshot_id, category, url, field) VALUES (?, ?, ?, ?)
			`, id, cat.Name, r.URL, r.Field); err != nil {
				return err
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return err
	}
	catalog.ID = id
	return nil
}

// FindCatalogByID retrieves a stored catalog.
func (s *CatalogService) FindCatalogByID(ctx context.Context, id string) (*mediacat.Catalog, error) {
	catalog := mediacat.Catalog{ID: id}
	var snapshotTime string

	err := s.db.QueryRowContext(ctx, `
		SELECT format_version, schema_name, snapshot_time
		FROM snapshots
		WHERE id = ?
	`, id).Scan(&catalog.FormatVersion, &catalog.Schema, &snapshotTime)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mediacat.Errorf(mediacat.ENOTFOUND, "snapshot %q not found", id)
	}
	if err != nil {
		return nil, err
	}

	if catalog.SnapshotTime, err = parseRFC3339(snapshotTime, "snapshot_time"); err != nil {
		return nil, err
	}

	if catalog.Categories, err = s.findCategories(ctx, id); err != nil {
		return nil, err
	}
	return &catalog, nil
}

// FindLatestCatalog retrieves the catalog with the most recent snapshot time.
func (s *CatalogService) FindLatestCatalog(ctx context.Context) (*mediacat.Catalog, error) {
	var id string
	err := s.db.QueryRowContext(ctx, `
		SELECT id FROM snapshots ORDER BY snapshot_time DESC, rowid DESC LIMIT 1
	`).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, mediacat.Errorf(mediacat.ENOTFOUND, "no snapshots stored")
	}
	if err != nil {
		return nil, err
	}
	return s.FindCatalogByID(ctx, id)
}

// FindSnapshots lists stored snapshots matching the filter, newest first.
func (s *CatalogService) FindSnapshots(ctx context.Context, filter mediacat.SnapshotFilter) ([]*mediacat.Snapshot, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`
		SELECT s.id, s.schema_name, s.snapshot_time,
			(SELECT COUNT(*) FROM categories c WHERE c.snapshot_id = s.id),
			(SELECT COUNT(*) FROM items i WHERE i.snapshot_id = s.id),
			(SELECT COUNT(*) FROM failures f WHERE f.snapshot_id = s.id)
		FROM snapshots s
		WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND s.id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Schema != nil {
		query.WriteString(" AND s.schema_name = ?")
		args = append(args, *filter.Schema)
	}

	query.WriteString(" ORDER BY s.snapshot_time DESC, s.rowid DESC")
	appendPagination(&query, &args, filter.Limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []*mediacat.Snapshot{}
	for rows.Next() {
		var snap mediacat.Snapshot
		var snapshotTime string
		if err := rows.Scan(&snap.ID, &snap.Schema, &snapshotTime, &snap.Categories, &snap.Items, &snap.Failed); err != nil {
			return nil, err
		}
		if snap.SnapshotTime, err = parseRFC3339(snapshotTime, "snapshot_time"); err != nil {
			return nil, err
		}
		snapshots = append(snapshots, &snap)
	}
	return snapshots, rows.Err()
}

// DeleteSnapshot permanently removes a snapshot. Its categories, items and
// failures are removed by cascade.
func (s *CatalogService) DeleteSnapshot(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM snapshots WHERE id = ?", id)
	if err != nil {
		return err
	}

	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return mediacat.Errorf(mediacat.ENOTFOUND, "snapshot %q not found", id)
	}
	return nil
}

// DiffSnapshots compares two stored snapshots using the stored content
// hashes to detect changed items.
func (s *CatalogService) DiffSnapshots(ctx context.Context, prevID, nextID string) ([]mediacat.CategoryDiff, error) {
	for _, id := range []string{prevID, nextID} {
		var exists int
		err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM snapshots WHERE id = ?", id).Scan(&exists)
		if err != nil {
			return nil, err
		}
		if exists == 0 {
			return nil, mediacat.Errorf(mediacat.ENOTFOUND, "snapshot %q not found", id)
		}
	}

	prev, err := s.itemHashes(ctx, prevID)
	if err != nil {
		return nil, err
	}
	next, err := s.itemHashes(ctx, nextID)
	if err != nil {
		return nil, err
	}

	var diffs []mediacat.CategoryDiff
	seen := make(map[string]bool)
	compare := func(name string, before, after []itemHash) {
		d := mediacat.CategoryDiff{Name: name}
		beforeByID := make(map[string]string, len(before))
		for _, h := range before {
			beforeByID[h.id] = h.hash
		}
		afterByID := make(map[string]bool, len(after))
		for _, h := range after {
			afterByID[h.id] = true
			prevHash, ok := beforeByID[h.id]
			switch {
			case !ok:
				d.Added = append(d.Added, h.id)
			case prevHash != h.hash:
				d.Changed = append(d.Changed, h.id)
			}
		}
		for _, h := range before {
			if !afterByID[h.id] {
				d.Removed = append(d.Removed, h.id)
			}
		}
		if len(d.Added) > 0 || len(d.Removed) > 0 || len(d.Changed) > 0 {
			diffs = append(diffs, d)
		}
	}

	for _, cat := range next.order {
		seen[cat] = true
		compare(cat, prev.items[cat], next.items[cat])
	}
	for _, cat := range prev.order {
		if !seen[cat] {
			compare(cat, prev.items[cat], nil)
		}
	}
	return diffs, nil
}

type itemHash struct {
	id   string
	hash string
}

// snapshotHashes holds item hashes per category in stored order.
type snapshotHashes struct {
	order []string
	items map[string][]itemHash
}

func (s *CatalogService) itemHashes(ctx context.Context, snapshotID string) (*snapshotHashes, error) {
	out := &snapshotHashes{items: make(map[string][]itemHash)}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name FROM categories WHERE snapshot_id = ? ORDER BY position ASC
	`, snapshotID)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			return nil, err
		}
		out.order = append(out.order, name)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT category, id, content_hash FROM items WHERE snapshot_id = ? ORDER BY category, position ASC
	`, snapshotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var cat string
		var h itemHash
		if err := rows.Scan(&cat, &h.id, &h.hash); err != nil {
			return nil, err
		}
		out.items[cat] = append(out.items[cat], h)
	}
	return out, rows.Err()
}

// findCategories loads the categories of a snapshot in stored order.
func (s *CatalogService) findCategories(ctx context.Context, snapshotID string) ([]*mediacat.Category, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT name, root_url, partial FROM categories WHERE snapshot_id = ? ORDER BY position ASC
	`, snapshotID)
	if err != nil {
		return nil, err
	}
	var categories []*mediacat.Category
	byName := make(map[string]*mediacat.Category)
	for rows.Next() {
		var name, rootURL string
		var partial bool
		if err := rows.Scan(&name, &rootURL, &partial); err != nil {
			rows.Close()
			return nil, err
		}
		cat := mediacat.NewCategory(name, rootURL)
		cat.Partial = partial
		categories = append(categories, cat)
		byName[name] = cat
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.loadItems(ctx, snapshotID, byName); err != nil {
		return nil, err
	}
	if err := s.loadFailures(ctx, snapshotID, byName); err != nil {
		return nil, err
	}
	if err := s.loadRejections(ctx, snapshotID, byName); err != nil {
		return nil, err
	}
	if categories == nil {
		categories = []*mediacat.Category{}
	}
	return categories, nil
}

func (s *CatalogService) loadItems(ctx context.Context, snapshotID string, byName map[string]*mediacat.Category) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, id, title, subtitle, synopsis, thumbnail_url, canonical_url, sequence_index
		FROM items
		WHERE snapshot_id = ?
		ORDER BY category, position ASC
	`, snapshotID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cat string
		var item mediacat.Item
		if err := rows.Scan(&cat, &item.ID, &item.Title, &item.Subtitle, &item.Synopsis,
			&item.ThumbnailURL, &item.CanonicalURL, &item.SequenceIndex); err != nil {
			return err
		}
		if c, ok := byName[cat]; ok {
			c.Add(&item)
		}
	}
	return rows.Err()
}

func (s *CatalogService) loadFailures(ctx context.Context, snapshotID string, byName map[string]*mediacat.Category) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, url, error FROM failures WHERE snapshot_id = ? ORDER BY rowid ASC
	`, snapshotID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cat string
		var f mediacat.FetchFailure
		if err := rows.Scan(&cat, &f.URL, &f.Error); err != nil {
			return err
		}
		if c, ok := byName[cat]; ok {
			c.Failed = append(c.Failed, f)
		}
	}
	return rows.Err()
}

func (s *CatalogService) loadRejections(ctx context.Context, snapshotID string, byName map[string]*mediacat.Category) error {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category, url, field FROM rejections WHERE snapshot_id = ? ORDER BY rowid ASC
	`, snapshotID)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var cat string
		var r mediacat.Rejection
		if err := rows.Scan(&cat, &r.URL, &r.Field); err != nil {
			return err
		}
		if c, ok := byName[cat]; ok {
			c.Rejected = append(c.Rejected, r)
		}
	}
	return rows.Err()
}
