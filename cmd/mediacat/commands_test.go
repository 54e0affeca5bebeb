package main_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fwojciec/mediacat"
	main "github.com/fwojciec/mediacat/cmd/mediacat"
	"github.com/fwojciec/mediacat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testCatalog() *mediacat.Catalog {
	food := mediacat.NewCategory("food", "http://www.bbc.co.uk/iplayer/categories/food/all")
	food.Add(&mediacat.Item{ID: "b1", Title: "Cook", Subtitle: "Series 1", CanonicalURL: "http://www.bbc.co.uk/iplayer/episode/b1"})
	food.Add(&mediacat.Item{ID: "b2", Title: "Bake", CanonicalURL: "http://www.bbc.co.uk/iplayer/episode/b2"})
	food.Failed = []mediacat.FetchFailure{{URL: "http://www.bbc.co.uk/x", Error: "timeout"}}
	films := mediacat.NewCategory("films", "http://www.bbc.co.uk/iplayer/categories/films/all")
	films.Partial = true

	catalog := mediacat.NewCatalog("list-item", []*mediacat.Category{food, films}, time.Date(2018, 1, 2, 3, 4, 5, 0, time.UTC))
	catalog.ID = "snap-1"
	return catalog
}

func newDeps(catalogs mediacat.CatalogService) (*main.Dependencies, *bytes.Buffer, *bytes.Buffer) {
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	return &main.Dependencies{
		Ctx:      context.Background(),
		Stdout:   stdout,
		Stderr:   stderr,
		Catalogs: catalogs,
		Schemas:  mediacat.NewSchemaRegistry(),
	}, stdout, stderr
}

func TestSnapshotsCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists snapshots with counts", func(t *testing.T) {
		t.Parallel()

		var gotFilter mediacat.SnapshotFilter
		catalogs := &mock.CatalogService{
			FindSnapshotsFn: func(_ context.Context, filter mediacat.SnapshotFilter) ([]*mediacat.Snapshot, error) {
				gotFilter = filter
				return []*mediacat.Snapshot{{
					ID:           "snap-1",
					Schema:       "list-item",
					SnapshotTime: time.Date(2018, 1, 2, 3, 4, 5, 0, time.UTC),
					Categories:   2,
					Items:        17,
					Failed:       1,
				}}, nil
			},
		}
		deps, stdout, _ := newDeps(catalogs)

		cmd := &main.SnapshotsCmd{Schema: "list-item", Limit: 5}
		require.NoError(t, cmd.Run(deps))

		require.NotNil(t, gotFilter.Schema)
		assert.Equal(t, "list-item", *gotFilter.Schema)
		assert.Equal(t, 5, gotFilter.Limit)
		assert.Contains(t, stdout.String(), "snap-1  2018-01-02T03:04:05Z")
		assert.Contains(t, stdout.String(), "2 categories, 17 items, 1 failed")
	})

	t.Run("suggests crawl when empty", func(t *testing.T) {
		t.Parallel()

		catalogs := &mock.CatalogService{
			FindSnapshotsFn: func(_ context.Context, _ mediacat.SnapshotFilter) ([]*mediacat.Snapshot, error) {
				return []*mediacat.Snapshot{}, nil
			},
		}
		deps, stdout, _ := newDeps(catalogs)

		require.NoError(t, (&main.SnapshotsCmd{}).Run(deps))
		assert.Contains(t, stdout.String(), "mediacat crawl")
	})
}

func TestShowCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("shows latest catalog when no id given", func(t *testing.T) {
		t.Parallel()

		catalogs := &mock.CatalogService{
			FindLatestCatalogFn: func(_ context.Context) (*mediacat.Catalog, error) {
				return testCatalog(), nil
			},
		}
		deps, stdout, _ := newDeps(catalogs)

		require.NoError(t, (&main.ShowCmd{}).Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "Snapshot snap-1 (list-item")
		assert.Contains(t, out, "food (2 items)")
		assert.Contains(t, out, "b1  Cook: Series 1")
		assert.Contains(t, out, "b2  Bake")
		assert.Contains(t, out, "failed http://www.bbc.co.uk/x: timeout")
		assert.Contains(t, out, "films (0 items, partial)")
	})

	t.Run("filters one category as JSON", func(t *testing.T) {
		t.Parallel()

		catalogs := &mock.CatalogService{
			FindCatalogByIDFn: func(_ context.Context, id string) (*mediacat.Catalog, error) {
				assert.Equal(t, "snap-1", id)
				return testCatalog(), nil
			},
		}
		deps, stdout, _ := newDeps(catalogs)

		require.NoError(t, (&main.ShowCmd{ID: "snap-1", Category: "food", JSON: true}).Run(deps))

		var got mediacat.Catalog
		require.NoError(t, json.Unmarshal(stdout.Bytes(), &got))
		require.Len(t, got.Categories, 1)
		assert.Equal(t, []string{"b1", "b2"}, got.Categories[0].IDs())
	})

	t.Run("reports unknown category", func(t *testing.T) {
		t.Parallel()

		catalogs := &mock.CatalogService{
			FindCatalogByIDFn: func(_ context.Context, _ string) (*mediacat.Catalog, error) {
				return testCatalog(), nil
			},
		}
		deps, _, stderr := newDeps(catalogs)

		err := (&main.ShowCmd{ID: "snap-1", Category: "news"}).Run(deps)
		require.Error(t, err)
		assert.Equal(t, mediacat.ENOTFOUND, mediacat.ErrorCode(err))
		assert.Contains(t, stderr.String(), `"news"`)
	})

	t.Run("hints when snapshot is missing", func(t *testing.T) {
		t.Parallel()

		catalogs := &mock.CatalogService{
			FindCatalogByIDFn: func(_ context.Context, id string) (*mediacat.Catalog, error) {
				return nil, mediacat.Errorf(mediacat.ENOTFOUND, "snapshot %q not found", id)
			},
		}
		deps, _, stderr := newDeps(catalogs)

		err := (&main.ShowCmd{ID: "nope"}).Run(deps)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "mediacat snapshots")
	})
}

func TestDiffCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("prints per-category changes", func(t *testing.T) {
		t.Parallel()

		catalogs := &mock.CatalogService{
			DiffSnapshotsFn: func(_ context.Context, prevID, nextID string) ([]mediacat.CategoryDiff, error) {
				assert.Equal(t, "a", prevID)
				assert.Equal(t, "b", nextID)
				return []mediacat.CategoryDiff{{
					Name:    "food",
					Added:   []string{"b3"},
					Removed: []string{"b1"},
					Changed: []string{"b2"},
				}}, nil
			},
		}
		deps, stdout, _ := newDeps(catalogs)

		require.NoError(t, (&main.DiffCmd{Prev: "a", Next: "b"}).Run(deps))

		out := stdout.String()
		assert.Contains(t, out, "food: 1 added, 1 removed, 1 changed")
		assert.Contains(t, out, "+ b3")
		assert.Contains(t, out, "- b1")
		assert.Contains(t, out, "~ b2")
	})

	t.Run("compares against latest by default", func(t *testing.T) {
		t.Parallel()

		var gotNext string
		catalogs := &mock.CatalogService{
			FindLatestCatalogFn: func(_ context.Context) (*mediacat.Catalog, error) {
				return &mediacat.Catalog{ID: "latest"}, nil
			},
			DiffSnapshotsFn: func(_ context.Context, _, nextID string) ([]mediacat.CategoryDiff, error) {
				gotNext = nextID
				return nil, nil
			},
		}
		deps, stdout, _ := newDeps(catalogs)

		require.NoError(t, (&main.DiffCmd{Prev: "a"}).Run(deps))
		assert.Equal(t, "latest", gotNext)
		assert.Contains(t, stdout.String(), "No changes.")
	})
}

func TestDeleteCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("deletes snapshot when --force is set", func(t *testing.T) {
		t.Parallel()

		var deletedID string
		catalogs := &mock.CatalogService{
			DeleteSnapshotFn: func(_ context.Context, id string) error {
				deletedID = id
				return nil
			},
		}
		deps, stdout, _ := newDeps(catalogs)

		require.NoError(t, (&main.DeleteCmd{ID: "snap-1", Force: true}).Run(deps))
		assert.Equal(t, "snap-1", deletedID)
		assert.Contains(t, stdout.String(), "Deleted")
	})

	t.Run("requires --force flag", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(&mock.CatalogService{})

		err := (&main.DeleteCmd{ID: "snap-1"}).Run(deps)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "--force")
	})

	t.Run("reports missing snapshot", func(t *testing.T) {
		t.Parallel()

		catalogs := &mock.CatalogService{
			DeleteSnapshotFn: func(_ context.Context, id string) error {
				return mediacat.Errorf(mediacat.ENOTFOUND, "snapshot %q not found", id)
			},
		}
		deps, _, stderr := newDeps(catalogs)

		err := (&main.DeleteCmd{ID: "nope", Force: true}).Run(deps)
		require.Error(t, err)
		assert.Equal(t, mediacat.ENOTFOUND, mediacat.ErrorCode(err))
		assert.Contains(t, stderr.String(), "not found")
	})

	t.Run("reports storage errors", func(t *testing.T) {
		t.Parallel()

		catalogs := &mock.CatalogService{
			DeleteSnapshotFn: func(_ context.Context, _ string) error {
				return errors.New("disk full")
			},
		}
		deps, _, stderr := newDeps(catalogs)

		err := (&main.DeleteCmd{ID: "snap-1", Force: true}).Run(deps)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "Internal error")
	})
}

func TestSchemasCmd_Run(t *testing.T) {
	t.Parallel()

	t.Run("lists built-in schemas", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(nil)

		require.NoError(t, (&main.SchemasCmd{}).Run(deps))
		assert.Equal(t, "content-item\nlist-item\n", stdout.String())
	})

	t.Run("shows one schema as YAML", func(t *testing.T) {
		t.Parallel()

		deps, stdout, _ := newDeps(nil)

		require.NoError(t, (&main.SchemasCmd{Name: "list-item"}).Run(deps))
		assert.Contains(t, stdout.String(), "name: list-item")
		assert.Contains(t, stdout.String(), ".view-more-container")
	})

	t.Run("adds schemas from a schemas-only config", func(t *testing.T) {
		t.Parallel()

		config := filepath.Join(t.TempDir(), "schemas.yaml")
		require.NoError(t, os.WriteFile(config, []byte(`
schemas:
  - name: cards
    entry: {selector: .card}
    title: {selector: h2}
    synopsis: {selector: p}
    thumbnail: {selector: img, attr: src}
    link: {selector: a, attr: href}
    pointer: {selector: a.more, attr: href}
    pagination: {selector: .pages a, attr: href}
    id: {attr: data-id}
`), 0644))
		deps, stdout, stderr := newDeps(nil)

		require.NoError(t, (&main.SchemasCmd{Config: config}).Run(deps))
		assert.Equal(t, "cards\ncontent-item\nlist-item\n", stdout.String())
		assert.Empty(t, stderr.String())
	})

	t.Run("reports unknown schema", func(t *testing.T) {
		t.Parallel()

		deps, _, stderr := newDeps(nil)

		err := (&main.SchemasCmd{Name: "nope"}).Run(deps)
		require.Error(t, err)
		assert.Equal(t, mediacat.ENOTFOUND, mediacat.ErrorCode(err))
		assert.Contains(t, stderr.String(), "mediacat schemas")
	})
}
