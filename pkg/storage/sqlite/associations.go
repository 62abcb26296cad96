package sqlite

import (
	"context"
	"database/sql"

	"github.com/partdex/partdex/pkg/catalog"
)

// Associate links a part to a guide with a confidence score. The call is
// idempotent: if the pair is already linked, nothing changes and the original
// confidence survives. The UNIQUE(part_id, guide_id) constraint serializes
// concurrent calls, so exactly one of them inserts.
func (s *Store) Associate(ctx context.Context, partID, guideID int64, confidence float64) (catalog.AssociationOutcome, error) {
	if confidence == 0 {
		confidence = 1.0
	}

	// Both sides must exist; a dangling association is worse than a 404.
	if err := s.requireRow(ctx, "parts", partID); err != nil {
		return 0, err
	}
	if err := s.requireRow(ctx, "technical_guides", guideID); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO part_guides (part_id, guide_id, confidence_score)
		VALUES (?, ?, ?)`, partID, guideID, confidence)
	if err != nil {
		return 0, storageErr("associate part and guide", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, storageErr("associate rows affected", err)
	}
	if n == 0 {
		return catalog.AssociationExists, nil
	}
	return catalog.AssociationInserted, nil
}

func (s *Store) requireRow(ctx context.Context, table string, id int64) error {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM "+table+" WHERE id = ?", id).Scan(&one)
	if err == sql.ErrNoRows {
		return catalog.ErrNotFound
	}
	if err != nil {
		return storageErr("check "+table+" exists", err)
	}
	return nil
}

// Dissociate removes the link between a part and a guide. Removing a link
// that does not exist is not an error; the bool reports whether a row was
// actually deleted.
func (s *Store) Dissociate(ctx context.Context, partID, guideID int64) (bool, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM part_guides WHERE part_id = ? AND guide_id = ?", partID, guideID)
	if err != nil {
		return false, storageErr("dissociate part and guide", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, storageErr("dissociate rows affected", err)
	}
	return n > 0, nil
}

// GuidesForPart returns the guides linked to a part, best confidence first.
// Ties keep insertion order via the association id.
func (s *Store) GuidesForPart(ctx context.Context, partID int64) ([]catalog.GuideForPart, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tg.id, tg.guide_name, tg.display_name, tg.description, tg.category,
		       tg.s3_key, tg.template_fields, tg.pdf_path, tg.related_parts,
		       tg.is_active, tg.created_at, pg.confidence_score
		FROM part_guides pg
		JOIN technical_guides tg ON tg.id = pg.guide_id
		WHERE pg.part_id = ?
		ORDER BY pg.confidence_score DESC, pg.id`, partID)
	if err != nil {
		return nil, storageErr("list guides for part", err)
	}
	defer rows.Close()

	guides := []catalog.GuideForPart{}
	for rows.Next() {
		var (
			gp                           catalog.GuideForPart
			description, category, s3Key sql.NullString
			templateFields, pdfPath      sql.NullString
			relatedParts                 sql.NullString
			createdAt                    sql.NullTime
		)
		if err := rows.Scan(&gp.ID, &gp.GuideName, &gp.DisplayName, &description,
			&category, &s3Key, &templateFields, &pdfPath, &relatedParts,
			&gp.IsActive, &createdAt, &gp.ConfidenceScore); err != nil {
			return nil, storageErr("scan guide for part", err)
		}
		gp.Description = description.String
		gp.Category = category.String
		gp.S3Key = s3Key.String
		gp.TemplateFields = templateFields.String
		gp.PDFPath = pdfPath.String
		gp.RelatedParts = relatedParts.String
		if createdAt.Valid {
			gp.CreatedAt = createdAt.Time
		}
		guides = append(guides, gp)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate guides for part", err)
	}
	return guides, nil
}

// PartsForGuide returns the parts linked to a guide, best confidence first,
// with insertion order breaking ties.
func (s *Store) PartsForGuide(ctx context.Context, guideID int64) ([]catalog.PartForGuide, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+partColumns+`, pg.confidence_score
		FROM part_guides pg
		JOIN parts p ON p.id = pg.part_id
		WHERE pg.guide_id = ?
		ORDER BY pg.confidence_score DESC, pg.id`, guideID)
	if err != nil {
		return nil, storageErr("list parts for guide", err)
	}
	defer rows.Close()

	parts := []catalog.PartForGuide{}
	for rows.Next() {
		var pg catalog.PartForGuide
		if err := scanPartFields(rows, &pg.Part, &pg.ConfidenceScore); err != nil {
			return nil, storageErr("scan part for guide", err)
		}
		parts = append(parts, pg)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate parts for guide", err)
	}
	return parts, nil
}
