package mock_test

import (
	"context"
	"testing"
	"time"

	"github.com/fwojciec/mediacat"
	"github.com/fwojciec/mediacat/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCatalogWriter_ImplementsInterface(t *testing.T) {
	t.Parallel()

	var _ mediacat.CatalogWriter = &mock.CatalogWriter{}
}

func TestCatalogWriter_WriteCatalog(t *testing.T) {
	t.Parallel()

	t.Run("delegates to WriteCatalogFn", func(t *testing.T) {
		t.Parallel()

		var calledWith *mediacat.Catalog
		w := &mock.CatalogWriter{
			WriteCatalogFn: func(_ context.Context, catalog *mediacat.Catalog) error {
				calledWith = catalog
				return nil
			},
		}

		catalog := mediacat.NewCatalog("content-item", nil, time.Now())

		err := w.WriteCatalog(context.Background(), catalog)

		require.NoError(t, err)
		assert.Same(t, catalog, calledWith)
	})
}
