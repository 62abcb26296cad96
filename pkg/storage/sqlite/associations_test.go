package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partdex/partdex/pkg/catalog"
)

func TestAssociateAndListByConfidence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	lowID := mustUpsertGuide(t, store, "torque-specs", "Torque Specifications")
	highID := mustUpsertGuide(t, store, "oil-filter-install", "Oil Filter Installation")

	outcome, err := store.Associate(ctx, partID, lowID, 0.4)
	require.NoError(t, err)
	assert.Equal(t, catalog.AssociationInserted, outcome)

	outcome, err = store.Associate(ctx, partID, highID, 0.95)
	require.NoError(t, err)
	assert.Equal(t, catalog.AssociationInserted, outcome)

	guides, err := store.GuidesForPart(ctx, partID)
	require.NoError(t, err)
	require.Len(t, guides, 2)
	assert.Equal(t, "oil-filter-install", guides[0].GuideName)
	assert.Equal(t, 0.95, guides[0].ConfidenceScore)
	assert.Equal(t, "torque-specs", guides[1].GuideName)
	assert.Equal(t, 0.4, guides[1].ConfidenceScore)
}

func TestAssociateIdempotentKeepsConfidence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	guideID := mustUpsertGuide(t, store, "oil-filter-install", "Oil Filter Installation")

	outcome, err := store.Associate(ctx, partID, guideID, 0.8)
	require.NoError(t, err)
	assert.Equal(t, catalog.AssociationInserted, outcome)

	// The second call must not overwrite the stored confidence.
	outcome, err = store.Associate(ctx, partID, guideID, 0.2)
	require.NoError(t, err)
	assert.Equal(t, catalog.AssociationExists, outcome)

	guides, err := store.GuidesForPart(ctx, partID)
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, 0.8, guides[0].ConfidenceScore)
}

func TestAssociateDefaultConfidence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	guideID := mustUpsertGuide(t, store, "oil-filter-install", "Oil Filter Installation")

	_, err := store.Associate(ctx, partID, guideID, 0)
	require.NoError(t, err)

	guides, err := store.GuidesForPart(ctx, partID)
	require.NoError(t, err)
	require.Len(t, guides, 1)
	assert.Equal(t, 1.0, guides[0].ConfidenceScore)
}

func TestAssociateTieBreaksByInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	firstID := mustUpsertGuide(t, store, "guide-a", "Guide A")
	secondID := mustUpsertGuide(t, store, "guide-b", "Guide B")

	_, err := store.Associate(ctx, partID, firstID, 0.5)
	require.NoError(t, err)
	_, err = store.Associate(ctx, partID, secondID, 0.5)
	require.NoError(t, err)

	guides, err := store.GuidesForPart(ctx, partID)
	require.NoError(t, err)
	require.Len(t, guides, 2)
	assert.Equal(t, "guide-a", guides[0].GuideName)
	assert.Equal(t, "guide-b", guides[1].GuideName)
}

func TestAssociateMissingEndpoints(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	guideID := mustUpsertGuide(t, store, "oil-filter-install", "Oil Filter Installation")

	_, err := store.Associate(ctx, 9999, guideID, 0.5)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	_, err = store.Associate(ctx, partID, 9999, 0.5)
	assert.ErrorIs(t, err, catalog.ErrNotFound)

	// Nothing was linked by the failed calls.
	guides, err := store.GuidesForPart(ctx, partID)
	require.NoError(t, err)
	assert.Empty(t, guides)
}

func TestDissociateIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	partID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	guideID := mustUpsertGuide(t, store, "oil-filter-install", "Oil Filter Installation")

	_, err := store.Associate(ctx, partID, guideID, 0.9)
	require.NoError(t, err)

	removed, err := store.Dissociate(ctx, partID, guideID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = store.Dissociate(ctx, partID, guideID)
	require.NoError(t, err)
	assert.False(t, removed)

	// A pair that never existed is also fine.
	removed, err = store.Dissociate(ctx, 9999, 9999)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestPartsForGuide(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	lowID := mustInsertPart(t, store, testPart("fleetguard", "LF3000", 12))
	highID := mustInsertPart(t, store, testPart("fleetguard", "LF9009", 30))
	guideID := mustUpsertGuide(t, store, "oil-filter-install", "Oil Filter Installation")

	_, err := store.Associate(ctx, lowID, guideID, 0.3)
	require.NoError(t, err)
	_, err = store.Associate(ctx, highID, guideID, 0.9)
	require.NoError(t, err)

	parts, err := store.PartsForGuide(ctx, guideID)
	require.NoError(t, err)
	require.Len(t, parts, 2)
	assert.Equal(t, "LF9009", parts[0].PartNumber)
	assert.Equal(t, 0.9, parts[0].ConfidenceScore)
	assert.Equal(t, "LF3000", parts[1].PartNumber)
}
