package sqlite

import (
	"context"
	"database/sql"

	"github.com/partdex/partdex/pkg/catalog"
)

// UpsertGuide inserts a guide or replaces the existing row with the same
// guide_name. Ingest re-runs the same extraction output, so replacement
// keyed on guide_name keeps the table convergent.
func (s *Store) UpsertGuide(ctx context.Context, g *catalog.TechnicalGuide) (int64, error) {
	isActive := 1
	if !g.IsActive {
		isActive = 0
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO technical_guides (guide_name, display_name, description, category,
			s3_key, template_fields, pdf_path, related_parts, is_active)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(guide_name) DO UPDATE SET
			display_name = excluded.display_name,
			description = excluded.description,
			category = excluded.category,
			s3_key = excluded.s3_key,
			template_fields = excluded.template_fields,
			pdf_path = excluded.pdf_path,
			related_parts = excluded.related_parts,
			is_active = excluded.is_active`,
		g.GuideName, g.DisplayName, nullable(g.Description), nullable(g.Category),
		nullable(g.S3Key), nullable(g.TemplateFields), nullable(g.PDFPath),
		nullable(g.RelatedParts), isActive)
	if err != nil {
		return 0, storageErr("upsert guide", err)
	}

	// LastInsertId is unreliable on the conflict path; read the id back.
	var id int64
	if err := s.db.QueryRowContext(ctx,
		"SELECT id FROM technical_guides WHERE guide_name = ?", g.GuideName).Scan(&id); err != nil {
		return 0, storageErr("upsert guide id", err)
	}
	g.ID = id
	return id, nil
}

// GetGuideByName returns a guide by its stable name or catalog.ErrNotFound.
func (s *Store) GetGuideByName(ctx context.Context, guideName string) (*catalog.TechnicalGuide, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, guide_name, display_name, description, category, s3_key,
		       template_fields, pdf_path, related_parts, is_active, created_at
		FROM technical_guides
		WHERE guide_name = ?`, guideName)

	g, err := scanGuide(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, catalog.ErrNotFound
		}
		return nil, storageErr("get guide", err)
	}
	return g, nil
}

// ListGuides returns all guides with their association counts, optionally
// restricted to active ones.
func (s *Store) ListGuides(ctx context.Context, activeOnly bool) ([]catalog.GuideSummary, error) {
	query := `
		SELECT tg.id, tg.guide_name, tg.display_name, tg.description, tg.category,
		       tg.s3_key, tg.template_fields, tg.pdf_path, tg.related_parts,
		       tg.is_active, tg.created_at,
		       (SELECT COUNT(*) FROM part_guides pg WHERE pg.guide_id = tg.id) AS part_count
		FROM technical_guides tg`
	if activeOnly {
		query += " WHERE tg.is_active = 1"
	}
	query += " ORDER BY tg.display_name"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, storageErr("list guides", err)
	}
	defer rows.Close()

	guides := []catalog.GuideSummary{}
	for rows.Next() {
		var (
			gs                            catalog.GuideSummary
			description, category, s3Key  sql.NullString
			templateFields, pdfPath       sql.NullString
			relatedParts                  sql.NullString
			createdAt                     sql.NullTime
		)
		if err := rows.Scan(&gs.ID, &gs.GuideName, &gs.DisplayName, &description,
			&category, &s3Key, &templateFields, &pdfPath, &relatedParts,
			&gs.IsActive, &createdAt, &gs.PartCount); err != nil {
			return nil, storageErr("scan guide", err)
		}
		gs.Description = description.String
		gs.Category = category.String
		gs.S3Key = s3Key.String
		gs.TemplateFields = templateFields.String
		gs.PDFPath = pdfPath.String
		gs.RelatedParts = relatedParts.String
		if createdAt.Valid {
			gs.CreatedAt = createdAt.Time
		}
		guides = append(guides, gs)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate guides", err)
	}
	return guides, nil
}

func scanGuide(row rowScanner) (*catalog.TechnicalGuide, error) {
	var (
		g                            catalog.TechnicalGuide
		description, category, s3Key sql.NullString
		templateFields, pdfPath      sql.NullString
		relatedParts                 sql.NullString
		createdAt                    sql.NullTime
	)
	if err := row.Scan(&g.ID, &g.GuideName, &g.DisplayName, &description, &category,
		&s3Key, &templateFields, &pdfPath, &relatedParts, &g.IsActive, &createdAt); err != nil {
		return nil, err
	}
	g.Description = description.String
	g.Category = category.String
	g.S3Key = s3Key.String
	g.TemplateFields = templateFields.String
	g.PDFPath = pdfPath.String
	g.RelatedParts = relatedParts.String
	if createdAt.Valid {
		g.CreatedAt = createdAt.Time
	}
	return &g, nil
}
