package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	cfg := storage.DefaultConfig()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "catalog.db")

	store, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func testPart(catalogName, partNumber string, page int) *catalog.Part {
	return &catalog.Part{
		CatalogName: catalogName,
		CatalogType: "filters",
		PartType:    "oil_filter",
		PartNumber:  partNumber,
		Description: "Oil filter element",
		Category:    "Filters",
		Page:        page,
	}
}

func mustInsertPart(t *testing.T, store *Store, p *catalog.Part) int64 {
	t.Helper()
	id, err := store.InsertPart(context.Background(), p)
	require.NoError(t, err)
	return id
}

func mustUpsertGuide(t *testing.T, store *Store, name, display string) int64 {
	t.Helper()
	id, err := store.UpsertGuide(context.Background(), &catalog.TechnicalGuide{
		GuideName:   name,
		DisplayName: display,
		IsActive:    true,
	})
	require.NoError(t, err)
	return id
}
