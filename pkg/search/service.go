package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/partdex/partdex/pkg/catalog"
)

var searchTracer = otel.Tracer("partdex/search/service")

const (
	defaultLimit = 50
	maxLimit     = 50
)

// Service provides full-text search over parts via the parts_fts index.
type Service struct {
	db *sql.DB
}

// NewService creates a new search service on top of the catalog database.
func NewService(db *sql.DB) *Service {
	return &Service{db: db}
}

// Request represents a search request. The discrete filters intersect with
// the full-text match set; rank only orders within that set.
type Request struct {
	Query       string
	Category    string
	PartType    string
	CatalogType string
	Limit       int
	Offset      int
}

// Response represents search results
type Response struct {
	Query      string              `json:"query"`
	Filters    map[string]string   `json:"filters,omitempty"`
	TotalCount int                 `json:"total_count"`
	Results    []catalog.SearchHit `json:"results"`
}

// Search runs an FTS5 match ordered by relevance. Empty queries and queries
// the engine rejects return catalog.ErrInvalidQuery; a valid query with no
// hits returns an empty result set.
func (s *Service) Search(ctx context.Context, req Request) (*Response, error) {
	ctx, span := searchTracer.Start(ctx, "Search",
		trace.WithAttributes(
			attribute.String("query", req.Query),
			attribute.Int("limit", req.Limit),
			attribute.Int("offset", req.Offset),
		),
	)
	defer span.End()

	match, err := buildMatchExpr(req.Query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid query")
		return nil, err
	}

	if req.Limit <= 0 {
		req.Limit = defaultLimit
	}
	if req.Limit > maxLimit {
		req.Limit = maxLimit
	}
	if req.Offset < 0 {
		req.Offset = 0
	}

	query, args := buildSearchQuery(match, req)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		if isFTSSyntaxError(err) {
			span.SetStatus(codes.Error, "query rejected by fts engine")
			return nil, fmt.Errorf("%w: %v", catalog.ErrInvalidQuery, err)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to execute search")
		return nil, fmt.Errorf("%w: execute search: %v", catalog.ErrStorageUnavailable, err)
	}
	defer rows.Close()

	results := make([]catalog.SearchHit, 0, req.Limit)
	for rows.Next() {
		hit, err := scanHit(rows)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to scan result")
			return nil, fmt.Errorf("%w: scan search result: %v", catalog.ErrStorageUnavailable, err)
		}
		results = append(results, *hit)
	}
	if err := rows.Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "error iterating results")
		return nil, fmt.Errorf("%w: iterate search results: %v", catalog.ErrStorageUnavailable, err)
	}

	totalCount, err := s.getTotalCount(ctx, match, req)
	if err != nil {
		// The page itself is fine; fall back to what we have.
		span.AddEvent("failed to get total count",
			trace.WithAttributes(attribute.String("error", err.Error())),
		)
		totalCount = len(results)
	}

	span.SetAttributes(
		attribute.Int("result_count", len(results)),
		attribute.Int("total_count", totalCount),
	)
	span.SetStatus(codes.Ok, "search completed")

	return &Response{
		Query:      req.Query,
		Filters:    activeFilters(req),
		TotalCount: totalCount,
		Results:    results,
	}, nil
}

// buildMatchExpr turns the raw user query into an FTS5 MATCH expression.
// The whole query is quoted as a phrase with a trailing prefix star, so
// FTS5 operators in user input are treated as literal text.
func buildMatchExpr(raw string) (string, error) {
	q := strings.TrimSpace(raw)
	if q == "" {
		return "", fmt.Errorf("%w: empty query", catalog.ErrInvalidQuery)
	}
	q = strings.ReplaceAll(q, `"`, `""`)
	return `"` + q + `"*`, nil
}

func buildSearchQuery(match string, req Request) (string, []interface{}) {
	var b strings.Builder
	b.WriteString(`
		SELECT p.id, p.catalog_name, p.catalog_type, p.part_type, p.part_number,
		       p.description, p.category, p.page, p.image_path, p.pdf_path,
		       p.oe_numbers, p.applications, p.specifications,
		       rank,
		       snippet(parts_fts, 2, '<b>', '</b>', '...', 64) AS snippet
		FROM parts_fts
		JOIN parts p ON p.id = parts_fts.rowid
		WHERE parts_fts MATCH ?`)
	args := []interface{}{match}

	appendFilters(&b, &args, req)

	b.WriteString(`
		ORDER BY rank
		LIMIT ? OFFSET ?`)
	args = append(args, req.Limit, req.Offset)

	return b.String(), args
}

func (s *Service) getTotalCount(ctx context.Context, match string, req Request) (int, error) {
	var b strings.Builder
	b.WriteString(`
		SELECT COUNT(*)
		FROM parts_fts
		JOIN parts p ON p.id = parts_fts.rowid
		WHERE parts_fts MATCH ?`)
	args := []interface{}{match}

	appendFilters(&b, &args, req)

	var count int
	if err := s.db.QueryRowContext(ctx, b.String(), args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to get total count: %w", err)
	}
	return count, nil
}

func appendFilters(b *strings.Builder, args *[]interface{}, req Request) {
	if req.Category != "" {
		b.WriteString(" AND p.category = ?")
		*args = append(*args, req.Category)
	}
	if req.PartType != "" {
		b.WriteString(" AND p.part_type = ?")
		*args = append(*args, req.PartType)
	}
	if req.CatalogType != "" {
		b.WriteString(" AND p.catalog_type = ?")
		*args = append(*args, req.CatalogType)
	}
}

func activeFilters(req Request) map[string]string {
	filters := map[string]string{}
	if req.Category != "" {
		filters["category"] = req.Category
	}
	if req.PartType != "" {
		filters["part_type"] = req.PartType
	}
	if req.CatalogType != "" {
		filters["catalog_type"] = req.CatalogType
	}
	if len(filters) == 0 {
		return nil
	}
	return filters
}

func scanHit(rows *sql.Rows) (*catalog.SearchHit, error) {
	var (
		hit                                  catalog.SearchHit
		catalogType, partType, description   sql.NullString
		category, imagePath, pdfPath         sql.NullString
		oeNumbers, applications, specs       sql.NullString
		snippet                              sql.NullString
		page                                 sql.NullInt64
	)
	if err := rows.Scan(&hit.ID, &hit.CatalogName, &catalogType, &partType,
		&hit.PartNumber, &description, &category, &page, &imagePath, &pdfPath,
		&oeNumbers, &applications, &specs, &hit.Rank, &snippet); err != nil {
		return nil, err
	}
	hit.CatalogType = catalogType.String
	hit.PartType = partType.String
	hit.Description = description.String
	hit.Category = category.String
	hit.Page = int(page.Int64)
	hit.ImagePath = imagePath.String
	hit.PDFPath = pdfPath.String
	hit.OENumbers = oeNumbers.String
	hit.Applications = applications.String
	hit.Specifications = specs.String
	hit.Snippet = snippet.String
	return &hit, nil
}

// isFTSSyntaxError detects queries the FTS5 engine rejected, as opposed to
// real storage failures.
func isFTSSyntaxError(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "fts5: syntax error") ||
		strings.Contains(msg, "malformed MATCH") ||
		strings.Contains(msg, "unterminated string")
}
