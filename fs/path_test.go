package fs_test

import (
	"path/filepath"
	"testing"

	"github.com/fwojciec/mediacat"
	"github.com/fwojciec/mediacat/fs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLToPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		url     string
		want    string
		wantErr bool
	}{
		{
			name: "category listing",
			url:  "http://www.bbc.co.uk/iplayer/categories/food/all",
			want: "iplayer/categories/food/all.html",
		},
		{
			name: "query string kept",
			url:  "http://www.bbc.co.uk/iplayer/categories/food/all?page=2",
			want: "iplayer/categories/food/all_page=2.html",
		},
		{
			name: "multiple query parameters",
			url:  "http://www.bbc.co.uk/iplayer/categories/food/all?sort=atoz&page=3",
			want: "iplayer/categories/food/all_sort=atoz_page=3.html",
		},
		{
			name: "trailing slash becomes index",
			url:  "http://www.bbc.co.uk/iplayer/",
			want: "iplayer/index.html",
		},
		{
			name: "root becomes index",
			url:  "http://www.bbc.co.uk",
			want: "index.html",
		},
		{
			name: "ignores fragment",
			url:  "http://www.bbc.co.uk/iplayer/episodes/p05jv04g#top",
			want: "iplayer/episodes/p05jv04g.html",
		},
		{
			name:    "rejects path traversal",
			url:     "http://www.bbc.co.uk/../../../etc/passwd",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := fs.URLToPath(tt.url)

			if tt.wantErr {
				require.Error(t, err)
				assert.Equal(t, mediacat.EINVALID, mediacat.ErrorCode(err))
				return
			}

			require.NoError(t, err)
			assert.Equal(t, filepath.FromSlash(tt.want), got)
		})
	}
}
