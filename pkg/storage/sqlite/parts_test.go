package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partdex/partdex/pkg/catalog"
)

func TestInsertAndGetPart(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPart("fleetguard", "LF3000", 12)
	p.OENumbers = "P550425; 51806"
	p.Applications = "Cummins B-Series; Case IH"

	id, err := store.InsertPart(ctx, p)
	require.NoError(t, err)
	assert.Greater(t, id, int64(0))

	got, err := store.GetPartByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "LF3000", got.PartNumber)
	assert.Equal(t, "fleetguard", got.CatalogName)
	assert.Equal(t, 12, got.Page)
	assert.Equal(t, "P550425; 51806", got.OENumbers)
	assert.False(t, got.CreatedAt.IsZero())
}

func TestGetPartByIDNotFound(t *testing.T) {
	store := newTestStore(t)

	_, err := store.GetPartByID(context.Background(), 9999)
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestInsertPartDuplicate(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))

	// Same catalog, part number and page is a duplicate.
	_, err := store.InsertPart(ctx, testPart("fleetguard", "LF3000", 12))
	assert.ErrorIs(t, err, catalog.ErrAlreadyExists)

	// A different page of the same catalog is a distinct row.
	_, err = store.InsertPart(ctx, testPart("fleetguard", "LF3000", 13))
	assert.NoError(t, err)

	// So is the same part number in another catalog.
	_, err = store.InsertPart(ctx, testPart("baldwin", "LF3000", 12))
	assert.NoError(t, err)
}

func TestListPartsPagination(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mustInsertPart(t, store, testPart("fleetguard", fmt.Sprintf("LF300%d", i), 10+i))
	}

	page, total, err := store.ListParts(ctx, 2, 2)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	assert.Equal(t, "LF3002", page[0].PartNumber)
	assert.Equal(t, "LF3003", page[1].PartNumber)

	// Offset past the end yields an empty page, not an error.
	empty, total, err := store.ListParts(ctx, 10, 100)
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	assert.Empty(t, empty)
}

func TestListPartsRelationCounts(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	guideID := mustUpsertGuide(t, store, "oil-filter-install", "Oil Filter Installation")

	_, err := store.AddPartImage(ctx, &catalog.PartImage{
		PartID: partID, ImageFilename: "lf3000_1.png", ImagePath: "images/lf3000_1.png",
	})
	require.NoError(t, err)
	_, err = store.AddPartImage(ctx, &catalog.PartImage{
		PartID: partID, ImageFilename: "lf3000_2.png", ImagePath: "images/lf3000_2.png",
	})
	require.NoError(t, err)
	_, err = store.Associate(ctx, partID, guideID, 0.9)
	require.NoError(t, err)

	parts, total, err := store.ListParts(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, parts, 1)
	assert.Equal(t, 2, parts[0].ImageCount)
	assert.Equal(t, 1, parts[0].GuideCount)
}

func TestGetPartByNumberAcrossCatalogs(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	firstID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	mustInsertPart(t, store, testPart("baldwin", "LF3000", 44))
	guideID := mustUpsertGuide(t, store, "oil-filter-install", "Oil Filter Installation")

	_, err := store.AddPartImage(ctx, &catalog.PartImage{
		PartID: firstID, ImageFilename: "lf3000.png", ImagePath: "images/lf3000.png",
	})
	require.NoError(t, err)
	_, err = store.Associate(ctx, firstID, guideID, 0.9)
	require.NoError(t, err)

	details, err := store.GetPartByNumber(ctx, "LF3000")
	require.NoError(t, err)
	require.Len(t, details, 2)

	assert.Equal(t, "fleetguard", details[0].CatalogName)
	assert.Equal(t, []string{"lf3000.png"}, details[0].Images)
	assert.Equal(t, []string{"Oil Filter Installation"}, details[0].Guides)

	assert.Equal(t, "baldwin", details[1].CatalogName)
	assert.Empty(t, details[1].Images)
	assert.Empty(t, details[1].Guides)
}

func TestGetPartByNumberUnknown(t *testing.T) {
	store := newTestStore(t)

	details, err := store.GetPartByNumber(context.Background(), "NOPE")
	require.NoError(t, err)
	assert.Empty(t, details)
}

func TestListPartsByCatalogOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustInsertPart(t, store, testPart("fleetguard", "LF9009", 30))
	mustInsertPart(t, store, testPart("fleetguard", "AF25550", 10))
	mustInsertPart(t, store, testPart("fleetguard", "FS1000", 10))
	mustInsertPart(t, store, testPart("baldwin", "B7379", 5))

	parts, err := store.ListPartsByCatalog(ctx, "fleetguard")
	require.NoError(t, err)
	require.Len(t, parts, 3)
	assert.Equal(t, "AF25550", parts[0].PartNumber)
	assert.Equal(t, "FS1000", parts[1].PartNumber)
	assert.Equal(t, "LF9009", parts[2].PartNumber)
}

func TestListCatalogsAndCategories(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	mustInsertPart(t, store, testPart("fleetguard", "LF9009", 30))
	air := testPart("baldwin", "RS3518", 8)
	air.Category = "Air Filters"
	mustInsertPart(t, store, air)

	catalogs, err := store.ListCatalogs(ctx)
	require.NoError(t, err)
	require.Len(t, catalogs, 2)
	assert.Equal(t, "baldwin", catalogs[0].CatalogName)
	assert.Equal(t, 1, catalogs[0].PartCount)
	assert.Equal(t, "fleetguard", catalogs[1].CatalogName)
	assert.Equal(t, 2, catalogs[1].PartCount)

	categories, err := store.ListCategories(ctx, "")
	require.NoError(t, err)
	require.Len(t, categories, 2)
	assert.Equal(t, "Filters", categories[0].Category)
	assert.Equal(t, 2, categories[0].PartCount)

	scoped, err := store.ListCategories(ctx, "baldwin")
	require.NoError(t, err)
	require.Len(t, scoped, 1)
	assert.Equal(t, "Air Filters", scoped[0].Category)
}

func TestListPartTypes(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	fuel := testPart("fleetguard", "FS1000", 20)
	fuel.PartType = "fuel_filter"
	mustInsertPart(t, store, fuel)

	types, err := store.ListPartTypes(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"fuel_filter", "oil_filter"}, types)
}

func TestUpdatePart(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	p := testPart("fleetguard", "LF3000", 12)
	id := mustInsertPart(t, store, p)

	p.Description = "Lube filter, spin-on"
	p.Category = "Lube Filters"
	require.NoError(t, store.UpdatePart(ctx, p))

	got, err := store.GetPartByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Lube filter, spin-on", got.Description)
	assert.Equal(t, "Lube Filters", got.Category)

	missing := testPart("fleetguard", "XX", 1)
	missing.ID = 9999
	assert.ErrorIs(t, store.UpdatePart(ctx, missing), catalog.ErrNotFound)
}

func TestDeletePartCascades(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	guideID := mustUpsertGuide(t, store, "oil-filter-install", "Oil Filter Installation")

	_, err := store.AddPartImage(ctx, &catalog.PartImage{
		PartID: partID, ImageFilename: "lf3000.png", ImagePath: "images/lf3000.png",
	})
	require.NoError(t, err)
	_, err = store.Associate(ctx, partID, guideID, 0.9)
	require.NoError(t, err)

	require.NoError(t, store.DeletePart(ctx, partID))

	_, err = store.GetPartByID(ctx, partID)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	images, err := store.ImagesForPart(ctx, partID)
	require.NoError(t, err)
	assert.Empty(t, images)

	guides, err := store.GuidesForPart(ctx, partID)
	require.NoError(t, err)
	assert.Empty(t, guides)

	assert.ErrorIs(t, store.DeletePart(ctx, partID), catalog.ErrNotFound)
}

func TestPartsWithoutRelations(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	bareID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	coveredID := mustInsertPart(t, store, testPart("fleetguard", "LF9009", 30))
	guideID := mustUpsertGuide(t, store, "oil-filter-install", "Oil Filter Installation")

	_, err := store.AddPartImage(ctx, &catalog.PartImage{
		PartID: coveredID, ImageFilename: "lf9009.png", ImagePath: "images/lf9009.png",
	})
	require.NoError(t, err)
	_, err = store.Associate(ctx, coveredID, guideID, 0.9)
	require.NoError(t, err)

	noImages, err := store.PartsWithoutImages(ctx, 0)
	require.NoError(t, err)
	require.Len(t, noImages, 1)
	assert.Equal(t, bareID, noImages[0].ID)

	noGuides, err := store.PartsWithoutGuides(ctx, 0)
	require.NoError(t, err)
	require.Len(t, noGuides, 1)
	assert.Equal(t, bareID, noGuides[0].ID)
}
