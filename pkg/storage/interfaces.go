package storage

import (
	"context"

	"github.com/partdex/partdex/pkg/catalog"
)

// PartReader provides read access to parts and their relations.
type PartReader interface {
	ListParts(ctx context.Context, limit, offset int) ([]catalog.PartSummary, int, error)
	GetPartByID(ctx context.Context, id int64) (*catalog.Part, error)
	GetPartByNumber(ctx context.Context, partNumber string) ([]catalog.PartDetail, error)
	ListPartsByCatalog(ctx context.Context, catalogName string) ([]catalog.Part, error)
	PartsWithoutImages(ctx context.Context, limit int) ([]catalog.Part, error)
	PartsWithoutGuides(ctx context.Context, limit int) ([]catalog.Part, error)
	ListCatalogs(ctx context.Context) ([]catalog.CatalogInfo, error)
	ListCategories(ctx context.Context, catalogName string) ([]catalog.CategoryInfo, error)
	ListPartTypes(ctx context.Context) ([]string, error)
	ImagesForPart(ctx context.Context, partID int64) ([]catalog.PartImage, error)
}

// PartWriter supports ingestion of parts and images.
type PartWriter interface {
	InsertPart(ctx context.Context, p *catalog.Part) (int64, error)
	UpdatePart(ctx context.Context, p *catalog.Part) error
	DeletePart(ctx context.Context, id int64) error
	AddPartImage(ctx context.Context, img *catalog.PartImage) (int64, error)
}

// GuideStore manages technical guides.
type GuideStore interface {
	UpsertGuide(ctx context.Context, g *catalog.TechnicalGuide) (int64, error)
	GetGuideByName(ctx context.Context, guideName string) (*catalog.TechnicalGuide, error)
	ListGuides(ctx context.Context, activeOnly bool) ([]catalog.GuideSummary, error)
}

// Associator manages part-guide associations. Associate is create-if-missing:
// a second call for the same pair is a no-op that keeps the original
// confidence and reports catalog.AssociationExists.
type Associator interface {
	Associate(ctx context.Context, partID, guideID int64, confidence float64) (catalog.AssociationOutcome, error)
	Dissociate(ctx context.Context, partID, guideID int64) (bool, error)
	GuidesForPart(ctx context.Context, partID int64) ([]catalog.GuideForPart, error)
	PartsForGuide(ctx context.Context, guideID int64) ([]catalog.PartForGuide, error)
}

// Store is the full storage contract implemented by the sqlite backend.
type Store interface {
	PartReader
	PartWriter
	GuideStore
	Associator

	HealthCheck(ctx context.Context) error
	Close() error
}
