package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/mattn/go-sqlite3"
	"github.com/partdex/partdex/pkg/catalog"
)

// partColumns is the canonical select list for parts rows; every scan goes
// through scanPartFields so column order is defined in exactly one place.
const partColumns = `p.id, p.catalog_name, p.catalog_type, p.part_type, p.part_number,
	p.description, p.category, p.page, p.image_path, p.page_text, p.pdf_path,
	p.machine_info, p.specifications, p.oe_numbers, p.applications, p.features, p.created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanPartFields(row rowScanner, p *catalog.Part, extra ...interface{}) error {
	var (
		catalogType, partType, description, category    sql.NullString
		imagePath, pageText, pdfPath, machineInfo       sql.NullString
		specifications, oeNumbers, applications, feats  sql.NullString
		page                                            sql.NullInt64
		createdAt                                       sql.NullTime
	)

	dest := []interface{}{
		&p.ID, &p.CatalogName, &catalogType, &partType, &p.PartNumber,
		&description, &category, &page, &imagePath, &pageText, &pdfPath,
		&machineInfo, &specifications, &oeNumbers, &applications, &feats, &createdAt,
	}
	dest = append(dest, extra...)

	if err := row.Scan(dest...); err != nil {
		return err
	}

	p.CatalogType = catalogType.String
	p.PartType = partType.String
	p.Description = description.String
	p.Category = category.String
	p.Page = int(page.Int64)
	p.ImagePath = imagePath.String
	p.PageText = pageText.String
	p.PDFPath = pdfPath.String
	p.MachineInfo = machineInfo.String
	p.Specifications = specifications.String
	p.OENumbers = oeNumbers.String
	p.Applications = applications.String
	p.Features = feats.String
	if createdAt.Valid {
		p.CreatedAt = createdAt.Time
	}
	return nil
}

// ListParts returns one page of parts ordered by id, each annotated with its
// image and guide counts, plus the total number of parts.
func (s *Store) ListParts(ctx context.Context, limit, offset int) ([]catalog.PartSummary, int, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	var total int
	if err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM parts").Scan(&total); err != nil {
		return nil, 0, storageErr("count parts", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+partColumns+`,
		       (SELECT COUNT(*) FROM part_images pi WHERE pi.part_id = p.id) AS image_count,
		       (SELECT COUNT(*) FROM part_guides pg WHERE pg.part_id = p.id) AS guide_count
		FROM parts p
		ORDER BY p.id
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, storageErr("list parts", err)
	}
	defer rows.Close()

	parts := make([]catalog.PartSummary, 0, limit)
	for rows.Next() {
		var ps catalog.PartSummary
		if err := scanPartFields(rows, &ps.Part, &ps.ImageCount, &ps.GuideCount); err != nil {
			return nil, 0, storageErr("scan part", err)
		}
		parts = append(parts, ps)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, storageErr("iterate parts", err)
	}

	return parts, total, nil
}

// GetPartByID returns a single part or catalog.ErrNotFound.
func (s *Store) GetPartByID(ctx context.Context, id int64) (*catalog.Part, error) {
	var p catalog.Part
	row := s.db.QueryRowContext(ctx, "SELECT "+partColumns+" FROM parts p WHERE p.id = ?", id)
	if err := scanPartFields(row, &p); err != nil {
		if err == sql.ErrNoRows {
			return nil, catalog.ErrNotFound
		}
		return nil, storageErr("get part", err)
	}
	return &p, nil
}

// GetPartByNumber returns every row carrying the given part number, one per
// catalog/page, with de-duplicated image filenames and guide display names
// aggregated in. An unknown part number yields an empty slice, not an error.
func (s *Store) GetPartByNumber(ctx context.Context, partNumber string) ([]catalog.PartDetail, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+partColumns+`,
		       GROUP_CONCAT(DISTINCT pi.image_filename) AS images,
		       GROUP_CONCAT(DISTINCT tg.display_name) AS guides
		FROM parts p
		LEFT JOIN part_images pi ON pi.part_id = p.id
		LEFT JOIN part_guides pg ON pg.part_id = p.id
		LEFT JOIN technical_guides tg ON tg.id = pg.guide_id
		WHERE p.part_number = ?
		GROUP BY p.id
		ORDER BY p.id`, partNumber)
	if err != nil {
		return nil, storageErr("get part by number", err)
	}
	defer rows.Close()

	details := []catalog.PartDetail{}
	for rows.Next() {
		var (
			d              catalog.PartDetail
			images, guides sql.NullString
		)
		if err := scanPartFields(rows, &d.Part, &images, &guides); err != nil {
			return nil, storageErr("scan part detail", err)
		}
		d.Images = splitConcat(images)
		d.Guides = splitConcat(guides)
		details = append(details, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate part details", err)
	}
	return details, nil
}

func splitConcat(s sql.NullString) []string {
	if !s.Valid || s.String == "" {
		return []string{}
	}
	return strings.Split(s.String, ",")
}

// ListPartsByCatalog returns all parts of one catalog in page order, with
// part number breaking ties within a page.
func (s *Store) ListPartsByCatalog(ctx context.Context, catalogName string) ([]catalog.Part, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+partColumns+`
		FROM parts p
		WHERE p.catalog_name = ?
		ORDER BY p.page, p.part_number`, catalogName)
	if err != nil {
		return nil, storageErr("list parts by catalog", err)
	}
	defer rows.Close()
	return collectParts(rows)
}

// PartsWithoutImages returns parts lacking any extracted image, for curation
// queues. Limit defaults to 100.
func (s *Store) PartsWithoutImages(ctx context.Context, limit int) ([]catalog.Part, error) {
	return s.partsWithoutRelation(ctx, "part_images", limit)
}

// PartsWithoutGuides returns parts with no associated guide. Limit defaults
// to 100.
func (s *Store) PartsWithoutGuides(ctx context.Context, limit int) ([]catalog.Part, error) {
	return s.partsWithoutRelation(ctx, "part_guides", limit)
}

func (s *Store) partsWithoutRelation(ctx context.Context, table string, limit int) ([]catalog.Part, error) {
	if limit <= 0 {
		limit = 100
	}
	// table is one of two trusted constants, never user input.
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+partColumns+`
		FROM parts p
		WHERE NOT EXISTS (SELECT 1 FROM `+table+` r WHERE r.part_id = p.id)
		ORDER BY p.id
		LIMIT ?`, limit)
	if err != nil {
		return nil, storageErr("list parts without "+table, err)
	}
	defer rows.Close()
	return collectParts(rows)
}

func collectParts(rows *sql.Rows) ([]catalog.Part, error) {
	parts := []catalog.Part{}
	for rows.Next() {
		var p catalog.Part
		if err := scanPartFields(rows, &p); err != nil {
			return nil, storageErr("scan part", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate parts", err)
	}
	return parts, nil
}

// ListCatalogs returns the distinct catalogs with their part counts.
func (s *Store) ListCatalogs(ctx context.Context) ([]catalog.CatalogInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT catalog_name, COALESCE(catalog_type, ''), COUNT(*) AS part_count
		FROM parts
		GROUP BY catalog_name, catalog_type
		ORDER BY catalog_name`)
	if err != nil {
		return nil, storageErr("list catalogs", err)
	}
	defer rows.Close()

	catalogs := []catalog.CatalogInfo{}
	for rows.Next() {
		var c catalog.CatalogInfo
		if err := rows.Scan(&c.CatalogName, &c.CatalogType, &c.PartCount); err != nil {
			return nil, storageErr("scan catalog", err)
		}
		catalogs = append(catalogs, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate catalogs", err)
	}
	return catalogs, nil
}

// ListCategories returns distinct categories with counts, optionally
// restricted to one catalog.
func (s *Store) ListCategories(ctx context.Context, catalogName string) ([]catalog.CategoryInfo, error) {
	query := `
		SELECT category, COUNT(*) AS part_count
		FROM parts
		WHERE category IS NOT NULL AND category != ''`
	args := []interface{}{}
	if catalogName != "" {
		query += " AND catalog_name = ?"
		args = append(args, catalogName)
	}
	query += " GROUP BY category ORDER BY part_count DESC, category"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, storageErr("list categories", err)
	}
	defer rows.Close()

	categories := []catalog.CategoryInfo{}
	for rows.Next() {
		var c catalog.CategoryInfo
		if err := rows.Scan(&c.Category, &c.PartCount); err != nil {
			return nil, storageErr("scan category", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate categories", err)
	}
	return categories, nil
}

// ListPartTypes returns the distinct non-empty part types, sorted.
func (s *Store) ListPartTypes(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT part_type
		FROM parts
		WHERE part_type IS NOT NULL AND part_type != ''
		ORDER BY part_type`)
	if err != nil {
		return nil, storageErr("list part types", err)
	}
	defer rows.Close()

	types := []string{}
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, storageErr("scan part type", err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate part types", err)
	}
	return types, nil
}

// InsertPart inserts a new part; the FTS index is updated by trigger in the
// same transaction. A duplicate (catalog, part number, page) maps to
// catalog.ErrAlreadyExists.
func (s *Store) InsertPart(ctx context.Context, p *catalog.Part) (int64, error) {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO parts (catalog_name, catalog_type, part_type, part_number, description,
			category, page, image_path, page_text, pdf_path, machine_info,
			specifications, oe_numbers, applications, features)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.CatalogName, nullable(p.CatalogType), nullable(p.PartType), p.PartNumber,
		nullable(p.Description), nullable(p.Category), nullableInt(p.Page),
		nullable(p.ImagePath), nullable(p.PageText), nullable(p.PDFPath),
		nullable(p.MachineInfo), nullable(p.Specifications), nullable(p.OENumbers),
		nullable(p.Applications), nullable(p.Features))
	if err != nil {
		if isUniqueViolation(err) {
			return 0, catalog.ErrAlreadyExists
		}
		return 0, storageErr("insert part", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("insert part id", err)
	}
	p.ID = id
	return id, nil
}

// UpdatePart rewrites all mutable columns of an existing part.
func (s *Store) UpdatePart(ctx context.Context, p *catalog.Part) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE parts SET catalog_name = ?, catalog_type = ?, part_type = ?, part_number = ?,
			description = ?, category = ?, page = ?, image_path = ?, page_text = ?,
			pdf_path = ?, machine_info = ?, specifications = ?, oe_numbers = ?,
			applications = ?, features = ?
		WHERE id = ?`,
		p.CatalogName, nullable(p.CatalogType), nullable(p.PartType), p.PartNumber,
		nullable(p.Description), nullable(p.Category), nullableInt(p.Page),
		nullable(p.ImagePath), nullable(p.PageText), nullable(p.PDFPath),
		nullable(p.MachineInfo), nullable(p.Specifications), nullable(p.OENumbers),
		nullable(p.Applications), nullable(p.Features), p.ID)
	if err != nil {
		return storageErr("update part", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("update part rows", err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// DeletePart removes a part along with its images and associations.
func (s *Store) DeletePart(ctx context.Context, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storageErr("begin delete part", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM part_images WHERE part_id = ?", id); err != nil {
		return storageErr("delete part images", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM part_guides WHERE part_id = ?", id); err != nil {
		return storageErr("delete part associations", err)
	}

	res, err := tx.ExecContext(ctx, "DELETE FROM parts WHERE id = ?", id)
	if err != nil {
		return storageErr("delete part", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return storageErr("delete part rows", err)
	}
	if n == 0 {
		return catalog.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return storageErr("commit delete part", err)
	}
	return nil
}

func nullable(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

func nullableInt(n int) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

func nullableInt64(n int64) interface{} {
	if n == 0 {
		return nil
	}
	return n
}

func isUniqueViolation(err error) bool {
	if sqliteErr, ok := err.(sqlite3.Error); ok {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}
