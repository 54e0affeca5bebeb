package mediacat_test

import (
	"net/url"
	"testing"

	"github.com/fwojciec/mediacat"
	"github.com/fwojciec/mediacat/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// parseEntries parses html and returns the entries selected by schema.
func parseEntries(t *testing.T, html string, schema *mediacat.LayoutSchema) []mediacat.Node {
	t.Helper()
	doc, err := goquery.NewParser().Parse("http://www.bbc.co.uk/iplayer/categories/food", html)
	require.NoError(t, err)
	return doc.Root.Find(schema.Entry.Selector)
}

func mustParseURL(t *testing.T, raw string) *url.URL {
	t.Helper()
	u, err := url.Parse(raw)
	require.NoError(t, err)
	return u
}

const itemEntryHTML = `<html><body><ol>
<li class="list-item" data-ip-id="b04w5mf0">
<div class="content-item">
	<a href="/iplayer/episode/b04w5mf0/the-a-to-z-of-tv-cooking-reversioned-series-16-letter-p">
		<div class="rs-image"><picture>
			<source srcset="https://ichef.bbci.co.uk/images/ic/336x189/p02dd1vv.jpg 336w, https://ichef.bbci.co.uk/images/ic/672x378/p02dd1vv.jpg 672w">
		</picture></div>
		<div class="content-item__title">The A to Z of TV Cooking</div>
		<div class="content-item__info-primary">
			<p class="content-item__description">Reversioned Series: 16. Letter P</p>
		</div>
		<div class="content-item__info__secondary">
			<p class="content-item__description">John Torode serves up a selection of cookery clips linked by the letter P.</p>
		</div>
	</a>
</div>
</li>
</ol></body></html>`

func TestClassify(t *testing.T) {
	t.Parallel()

	base := mustParseURL(t, "http://www.bbc.co.uk/iplayer/categories/food")

	t.Run("extracts item fields", func(t *testing.T) {
		t.Parallel()

		schema := mediacat.ContentItemSchema
		entries := parseEntries(t, itemEntryHTML, &schema)
		require.Len(t, entries, 1)

		entry, err := mediacat.Classify(entries[0], &schema, base)

		require.NoError(t, err)
		require.NotNil(t, entry.Item)
		assert.Nil(t, entry.Pointer)
		assert.False(t, entry.IsPointer())
		assert.Equal(t, "b04w5mf0", entry.Item.ID)
		assert.Equal(t, "The A to Z of TV Cooking", entry.Item.Title)
		assert.Equal(t, "Reversioned Series: 16. Letter P", entry.Item.Subtitle)
		assert.Equal(t, "John Torode serves up a selection of cookery clips linked by the letter P.", entry.Item.Synopsis)
		assert.Equal(t, "https://ichef.bbci.co.uk/images/ic/336x189/p02dd1vv.jpg", entry.Item.ThumbnailURL)
		assert.Equal(t, "http://www.bbc.co.uk/iplayer/episode/b04w5mf0/the-a-to-z-of-tv-cooking-reversioned-series-16-letter-p", entry.Item.CanonicalURL)
	})

	t.Run("classifies pointer without reading other fields", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="content-item" data-ip-id="p05jv04g">
	<a class="lnk" href="/iplayer/episodes/p05jv04g">View all</a>
	<div class="content-item__title">Grouped Programme</div>
</div>
</body></html>`
		schema := mediacat.ContentItemSchema
		entries := parseEntries(t, html, &schema)
		require.Len(t, entries, 1)

		entry, err := mediacat.Classify(entries[0], &schema, base)

		require.NoError(t, err)
		assert.Nil(t, entry.Item)
		require.NotNil(t, entry.Pointer)
		assert.True(t, entry.IsPointer())
		assert.Equal(t, "http://www.bbc.co.uk/iplayer/episodes/p05jv04g", entry.Pointer.TargetURL)
	})

	t.Run("pointer with empty href is not a pointer", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="content-item" data-ip-id="x1">
	<a class="lnk" href="">View all</a>
	<div class="content-item__title">Title</div>
</div>
</body></html>`
		schema := mediacat.ContentItemSchema
		entries := parseEntries(t, html, &schema)
		require.Len(t, entries, 1)

		entry, err := mediacat.Classify(entries[0], &schema, base)

		assert.Nil(t, entry.Pointer)
		var extractErr *mediacat.ExtractionError
		require.ErrorAs(t, err, &extractErr)
		assert.Equal(t, "synopsis", extractErr.Field)
	})

	t.Run("reports missing required field", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="content-item" data-ip-id="x1">
	<a href="/iplayer/episode/x1">
		<div class="content-item__info__secondary"><p class="content-item__description">Synopsis</p></div>
	</a>
</div>
</body></html>`
		schema := mediacat.ContentItemSchema
		entries := parseEntries(t, html, &schema)
		require.Len(t, entries, 1)

		entry, err := mediacat.Classify(entries[0], &schema, base)

		assert.Nil(t, entry.Item)
		assert.Nil(t, entry.Pointer)
		var extractErr *mediacat.ExtractionError
		require.ErrorAs(t, err, &extractErr)
		assert.Equal(t, "title", extractErr.Field)
		assert.Equal(t, mediacat.EINVALID, mediacat.ErrorCode(err))
	})

	t.Run("reports missing thumbnail", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="content-item" data-ip-id="x1">
	<a href="/iplayer/episode/x1">
		<div class="content-item__title">Title</div>
		<div class="content-item__info__secondary"><p class="content-item__description">Synopsis</p></div>
	</a>
</div>
</body></html>`
		schema := mediacat.ContentItemSchema
		entries := parseEntries(t, html, &schema)

		_, err := mediacat.Classify(entries[0], &schema, base)

		var extractErr *mediacat.ExtractionError
		require.ErrorAs(t, err, &extractErr)
		assert.Equal(t, "thumbnail", extractErr.Field)
	})

	t.Run("subtitle is optional", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="content-item" data-ip-id="x1">
	<a href="/iplayer/episode/x1">
		<div class="rs-image"><picture><source srcset="thumb.jpg 100w"></picture></div>
		<div class="content-item__title">Title</div>
		<div class="content-item__info__secondary"><p class="content-item__description">Synopsis</p></div>
	</a>
</div>
</body></html>`
		schema := mediacat.ContentItemSchema
		entries := parseEntries(t, html, &schema)

		entry, err := mediacat.Classify(entries[0], &schema, base)

		require.NoError(t, err)
		require.NotNil(t, entry.Item)
		assert.Empty(t, entry.Item.Subtitle)
	})

	t.Run("collapses whitespace in text fields", func(t *testing.T) {
		t.Parallel()

		html := `<html><body>
<div class="content-item" data-ip-id="x1">
	<a href="/iplayer/episode/x1">
		<div class="rs-image"><picture><source srcset="thumb.jpg"></picture></div>
		<div class="content-item__title">
			Rick Stein's
			Road to Mexico
		</div>
		<div class="content-item__info__secondary"><p class="content-item__description">Synopsis</p></div>
	</a>
</div>
</body></html>`
		schema := mediacat.ContentItemSchema
		entries := parseEntries(t, html, &schema)

		entry, err := mediacat.Classify(entries[0], &schema, base)

		require.NoError(t, err)
		assert.Equal(t, "Rick Stein's Road to Mexico", entry.Item.Title)
	})
}

func TestClassify_ThumbnailTieBreak(t *testing.T) {
	t.Parallel()

	html := `<html><body>
<div class="content-item" data-ip-id="x1">
	<a href="/iplayer/episode/x1">
		<div class="rs-image"><picture><source srcset="urlA 100w, urlB 200w"></picture></div>
		<div class="content-item__title">Title</div>
		<div class="content-item__info__secondary"><p class="content-item__description">Synopsis</p></div>
	</a>
</div>
</body></html>`
	schema := mediacat.ContentItemSchema
	entries := parseEntries(t, html, &schema)
	base := mustParseURL(t, "http://example.test/")

	entry, err := mediacat.Classify(entries[0], &schema, base)

	require.NoError(t, err)
	assert.Equal(t, "urlA", entry.Item.ThumbnailURL)
}

func TestClassify_IDFallback(t *testing.T) {
	t.Parallel()

	base := mustParseURL(t, "http://example.test/listing")

	entryHTML := func(entryAttr, parentAttr, linkAttr string) string {
		return `<html><body><ul><li class="wrapper" ` + parentAttr + `>
<div class="content-item" ` + entryAttr + `>
	<a href="/iplayer/episode/x" ` + linkAttr + `>
		<div class="rs-image"><picture><source srcset="thumb.jpg"></picture></div>
		<div class="content-item__title">Title</div>
		<div class="content-item__info__secondary"><p class="content-item__description">Synopsis</p></div>
	</a>
</div>
</li></ul></body></html>`
	}

	tests := []struct {
		name   string
		html   string
		wantID string
	}{
		{
			name:   "entry attribute wins",
			html:   entryHTML(`data-ip-id="entry"`, `data-ip-id="parent"`, `data-ip-id="link"`),
			wantID: "entry",
		},
		{
			name:   "falls back to parent attribute",
			html:   entryHTML(``, `data-ip-id="parent"`, `data-ip-id="link"`),
			wantID: "parent",
		},
		{
			name:   "falls back to link data attribute",
			html:   entryHTML(``, ``, `data-ip-id="link"`),
			wantID: "link",
		},
		{
			name:   "empty entry attribute is skipped",
			html:   entryHTML(`data-ip-id=""`, `data-ip-id="parent"`, ``),
			wantID: "parent",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			schema := mediacat.ContentItemSchema
			entries := parseEntries(t, tt.html, &schema)
			require.Len(t, entries, 1)

			entry, err := mediacat.Classify(entries[0], &schema, base)

			require.NoError(t, err)
			assert.Equal(t, tt.wantID, entry.Item.ID)
		})
	}

	t.Run("fails when no identifier is present", func(t *testing.T) {
		t.Parallel()

		schema := mediacat.ContentItemSchema
		entries := parseEntries(t, entryHTML(``, ``, ``), &schema)

		_, err := mediacat.Classify(entries[0], &schema, base)

		var extractErr *mediacat.ExtractionError
		require.ErrorAs(t, err, &extractErr)
		assert.Equal(t, "id", extractErr.Field)
	})
}

func TestClassify_OriginFromPage(t *testing.T) {
	t.Parallel()

	schema := mediacat.ContentItemSchema
	schema.Origin = ""
	entries := parseEntries(t, itemEntryHTML, &schema)
	base := mustParseURL(t, "http://example.test/iplayer/categories/food")

	entry, err := mediacat.Classify(entries[0], &schema, base)

	require.NoError(t, err)
	assert.Equal(t, "http://example.test/iplayer/episode/b04w5mf0/the-a-to-z-of-tv-cooking-reversioned-series-16-letter-p", entry.Item.CanonicalURL)
}
