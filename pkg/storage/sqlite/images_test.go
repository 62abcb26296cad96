package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partdex/partdex/pkg/catalog"
)

func TestAddPartImageDefaultsAndDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))

	img := &catalog.PartImage{
		PartID:        partID,
		ImageFilename: "lf3000_1.png",
		ImagePath:     "images/lf3000_1.png",
		ImageType:     "diagram",
		FileSize:      48213,
		PageNumber:    12,
	}
	id, err := store.AddPartImage(ctx, img)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	_, err = store.AddPartImage(ctx, &catalog.PartImage{
		PartID:        partID,
		ImageFilename: "lf3000_1.png",
		ImagePath:     "images/other.png",
	})
	assert.ErrorIs(t, err, catalog.ErrAlreadyExists)

	images, err := store.ImagesForPart(ctx, partID)
	require.NoError(t, err)
	require.Len(t, images, 1)
	// Zero confidence on input defaults to 1.0.
	assert.Equal(t, 1.0, images[0].Confidence)
	assert.Equal(t, "diagram", images[0].ImageType)
	assert.Equal(t, int64(48213), images[0].FileSize)
	assert.Equal(t, 12, images[0].PageNumber)
}

func TestImagesForPartOrdering(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))

	_, err := store.AddPartImage(ctx, &catalog.PartImage{
		PartID: partID, ImageFilename: "low.png", ImagePath: "images/low.png", Confidence: 0.4,
	})
	require.NoError(t, err)
	_, err = store.AddPartImage(ctx, &catalog.PartImage{
		PartID: partID, ImageFilename: "high.png", ImagePath: "images/high.png", Confidence: 0.9,
	})
	require.NoError(t, err)

	images, err := store.ImagesForPart(ctx, partID)
	require.NoError(t, err)
	require.Len(t, images, 2)
	assert.Equal(t, "high.png", images[0].ImageFilename)
	assert.Equal(t, "low.png", images[1].ImageFilename)
}
