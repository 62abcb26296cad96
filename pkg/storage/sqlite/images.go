package sqlite

import (
	"context"
	"database/sql"

	"github.com/partdex/partdex/pkg/catalog"
)

// AddPartImage records an extracted image for a part. Re-adding the same
// filename for a part maps to catalog.ErrAlreadyExists.
func (s *Store) AddPartImage(ctx context.Context, img *catalog.PartImage) (int64, error) {
	confidence := img.Confidence
	if confidence == 0 {
		confidence = 1.0
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO part_images (part_id, image_filename, image_path, image_type,
			image_width, image_height, file_size, page_number, confidence)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		img.PartID, img.ImageFilename, img.ImagePath, nullable(img.ImageType),
		nullableInt(img.ImageWidth), nullableInt(img.ImageHeight),
		nullableInt64(img.FileSize), nullableInt(img.PageNumber), confidence)
	if err != nil {
		if isUniqueViolation(err) {
			return 0, catalog.ErrAlreadyExists
		}
		return 0, storageErr("add part image", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, storageErr("add part image id", err)
	}
	img.ID = id
	return id, nil
}

// ImagesForPart returns a part's images, best confidence first and newest
// first within equal confidence.
func (s *Store) ImagesForPart(ctx context.Context, partID int64) ([]catalog.PartImage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, part_id, image_filename, image_path, image_type,
		       image_width, image_height, file_size, page_number, confidence, created_at
		FROM part_images
		WHERE part_id = ?
		ORDER BY confidence DESC, created_at DESC`, partID)
	if err != nil {
		return nil, storageErr("list part images", err)
	}
	defer rows.Close()

	images := []catalog.PartImage{}
	for rows.Next() {
		var (
			img                       catalog.PartImage
			imageType                 sql.NullString
			width, height, size, page sql.NullInt64
			createdAt                 sql.NullTime
		)
		if err := rows.Scan(&img.ID, &img.PartID, &img.ImageFilename, &img.ImagePath,
			&imageType, &width, &height, &size, &page, &img.Confidence, &createdAt); err != nil {
			return nil, storageErr("scan part image", err)
		}
		img.ImageType = imageType.String
		img.ImageWidth = int(width.Int64)
		img.ImageHeight = int(height.Int64)
		img.FileSize = size.Int64
		img.PageNumber = int(page.Int64)
		if createdAt.Valid {
			img.CreatedAt = createdAt.Time
		}
		images = append(images, img)
	}
	if err := rows.Err(); err != nil {
		return nil, storageErr("iterate part images", err)
	}
	return images, nil
}
