package sqlite

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/storage"
)

// Driver-level failures must surface as catalog.ErrStorageUnavailable so the
// HTTP layer can answer 503 instead of 500.
func TestStorageErrorsWrapSentinel(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db, storage.DefaultConfig())
	ctx := context.Background()
	boom := errors.New("disk I/O error")

	t.Run("list parts", func(t *testing.T) {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM parts").WillReturnError(boom)

		_, _, err := store.ListParts(ctx, 10, 0)
		assert.ErrorIs(t, err, catalog.ErrStorageUnavailable)
		assert.Contains(t, err.Error(), "disk I/O error")
	})

	t.Run("get part by number", func(t *testing.T) {
		mock.ExpectQuery("SELECT .+ FROM parts p").WillReturnError(boom)

		_, err := store.GetPartByNumber(ctx, "LF3000")
		assert.ErrorIs(t, err, catalog.ErrStorageUnavailable)
	})

	t.Run("associate", func(t *testing.T) {
		mock.ExpectQuery("SELECT 1 FROM parts").WillReturnError(boom)

		_, err := store.Associate(ctx, 1, 2, 0.5)
		assert.ErrorIs(t, err, catalog.ErrStorageUnavailable)
	})

	t.Run("health check", func(t *testing.T) {
		mock.ExpectQuery("SELECT 1").WillReturnError(boom)

		err := store.HealthCheck(ctx)
		assert.ErrorIs(t, err, catalog.ErrStorageUnavailable)
	})

	require.NoError(t, mock.ExpectationsWereMet())
}

// ErrNoRows is a domain condition, not a storage failure.
func TestNotFoundIsNotStorageFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	store := NewWithDB(db, storage.DefaultConfig())

	mock.ExpectQuery("SELECT .+ FROM parts p WHERE p.id").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = store.GetPartByID(context.Background(), 42)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
	assert.NotErrorIs(t, err, catalog.ErrStorageUnavailable)
}
