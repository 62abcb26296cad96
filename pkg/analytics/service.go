package analytics

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/partdex/partdex/pkg/catalog"
)

// Service computes aggregate statistics over the catalog database.
type Service struct {
	db *sql.DB
}

// NewService creates a new analytics service
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// CatalogStats summarizes one catalog: row counts, distinct part numbers and
// categories, and the share of parts carrying an image reference.
type CatalogStats struct {
	CatalogName          string  `json:"catalog_name"`
	CatalogType          string  `json:"catalog_type,omitempty"`
	PartCount            int     `json:"part_count"`
	UniquePartNumbers    int     `json:"unique_part_numbers"`
	CategoryCount        int     `json:"category_count"`
	ImageCoveragePercent float64 `json:"image_coverage_percent"`
}

// CategoryStats is one category's share of the whole catalog.
type CategoryStats struct {
	Category   string  `json:"category"`
	PartCount  int     `json:"part_count"`
	Percentage float64 `json:"percentage"`
}

// AssociationStats summarizes part-guide linkage.
type AssociationStats struct {
	TotalAssociations int     `json:"total_associations"`
	PartsWithGuides   int     `json:"parts_with_guides"`
	GuidesWithParts   int     `json:"guides_with_parts"`
	AverageConfidence float64 `json:"average_confidence"`
}

// DashboardStats is the front page counter set.
type DashboardStats struct {
	TotalParts          int `json:"total_parts"`
	TotalImages         int `json:"total_images"`
	TotalGuides         int `json:"total_guides"`
	TotalAssociations   int `json:"total_associations"`
	PartsWithImagePath  int `json:"parts_with_image_path"`
	PartsWithImageRows  int `json:"parts_with_image_rows"`
}

// CatalogStats computes per-catalog aggregates. Image coverage is rounded to
// two decimals; a catalog with zero parts cannot appear in the grouping, so
// the division is always defined.
func (s *Service) CatalogStats(ctx context.Context) ([]CatalogStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT catalog_name,
		       COALESCE(catalog_type, '') AS catalog_type,
		       COUNT(*) AS part_count,
		       COUNT(DISTINCT part_number) AS unique_part_numbers,
		       COUNT(DISTINCT category) AS category_count,
		       ROUND(COUNT(image_path) * 100.0 / COUNT(*), 2) AS image_coverage_percent
		FROM parts
		GROUP BY catalog_name, catalog_type
		ORDER BY part_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: catalog stats: %v", catalog.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	stats := []CatalogStats{}
	for rows.Next() {
		var cs CatalogStats
		if err := rows.Scan(&cs.CatalogName, &cs.CatalogType, &cs.PartCount,
			&cs.UniquePartNumbers, &cs.CategoryCount, &cs.ImageCoveragePercent); err != nil {
			return nil, fmt.Errorf("%w: scan catalog stats: %v", catalog.ErrStorageUnavailable, err)
		}
		stats = append(stats, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate catalog stats: %v", catalog.ErrStorageUnavailable, err)
	}
	return stats, nil
}

// CategoryDistribution computes each category's part count and share of the
// total. With an empty parts table the result is simply empty.
func (s *Service) CategoryDistribution(ctx context.Context) ([]CategoryStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT category,
		       COUNT(*) AS part_count,
		       ROUND(COUNT(*) * 100.0 / (SELECT COUNT(*) FROM parts), 2) AS percentage
		FROM parts
		WHERE category IS NOT NULL AND category != ''
		GROUP BY category
		ORDER BY part_count DESC`)
	if err != nil {
		return nil, fmt.Errorf("%w: category distribution: %v", catalog.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	stats := []CategoryStats{}
	for rows.Next() {
		var cs CategoryStats
		if err := rows.Scan(&cs.Category, &cs.PartCount, &cs.Percentage); err != nil {
			return nil, fmt.Errorf("%w: scan category stats: %v", catalog.ErrStorageUnavailable, err)
		}
		stats = append(stats, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate category stats: %v", catalog.ErrStorageUnavailable, err)
	}
	return stats, nil
}

// AssociationStats computes linkage totals. Average confidence over zero
// associations reports 0 rather than NULL.
func (s *Service) AssociationStats(ctx context.Context) (*AssociationStats, error) {
	var as AssociationStats
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(DISTINCT part_id),
		       COUNT(DISTINCT guide_id),
		       COALESCE(AVG(confidence_score), 0)
		FROM part_guides`).Scan(
		&as.TotalAssociations, &as.PartsWithGuides, &as.GuidesWithParts, &as.AverageConfidence)
	if err != nil {
		return nil, fmt.Errorf("%w: association stats: %v", catalog.ErrStorageUnavailable, err)
	}
	return &as, nil
}

// DashboardStats computes the front page counters in a single round trip.
func (s *Service) DashboardStats(ctx context.Context) (*DashboardStats, error) {
	var ds DashboardStats
	err := s.db.QueryRowContext(ctx, `
		SELECT (SELECT COUNT(*) FROM parts),
		       (SELECT COUNT(*) FROM part_images),
		       (SELECT COUNT(*) FROM technical_guides),
		       (SELECT COUNT(*) FROM part_guides),
		       (SELECT COUNT(*) FROM parts WHERE image_path IS NOT NULL AND image_path != ''),
		       (SELECT COUNT(DISTINCT part_id) FROM part_images)`).Scan(
		&ds.TotalParts, &ds.TotalImages, &ds.TotalGuides, &ds.TotalAssociations,
		&ds.PartsWithImagePath, &ds.PartsWithImageRows)
	if err != nil {
		return nil, fmt.Errorf("%w: dashboard stats: %v", catalog.ErrStorageUnavailable, err)
	}
	return &ds, nil
}

// Ping verifies the analytics database connection is alive.
func (s *Service) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("%w: analytics ping: %v", catalog.ErrStorageUnavailable, err)
	}
	return nil
}
