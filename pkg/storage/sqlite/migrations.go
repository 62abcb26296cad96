package sqlite

import (
	"database/sql"
	"fmt"
)

// migration is one schema change. Migrations run in order inside a single
// transaction each and are recorded in schema_version.
type migration struct {
	version int
	name    string
	sql     string
}

var migrations = []migration{
	{
		version: 1,
		name:    "base tables",
		sql: `
CREATE TABLE IF NOT EXISTS parts (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    catalog_name TEXT NOT NULL,
    catalog_type TEXT,
    part_type TEXT,
    part_number TEXT NOT NULL,
    description TEXT,
    category TEXT,
    page INTEGER,
    image_path TEXT,
    page_text TEXT,
    pdf_path TEXT,
    machine_info TEXT,
    specifications TEXT,
    oe_numbers TEXT,
    applications TEXT,
    features TEXT,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    UNIQUE(catalog_name, part_number, page)
);

CREATE TABLE IF NOT EXISTS technical_guides (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    guide_name TEXT UNIQUE NOT NULL,
    display_name TEXT NOT NULL,
    description TEXT,
    category TEXT,
    s3_key TEXT,
    template_fields TEXT,
    pdf_path TEXT,
    related_parts TEXT,
    is_active BOOLEAN DEFAULT 1,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS part_guides (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    part_id INTEGER,
    guide_id INTEGER,
    confidence_score REAL DEFAULT 1.0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (part_id) REFERENCES parts (id),
    FOREIGN KEY (guide_id) REFERENCES technical_guides (id),
    UNIQUE(part_id, guide_id)
);

CREATE TABLE IF NOT EXISTS part_images (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    part_id INTEGER,
    image_filename TEXT NOT NULL,
    image_path TEXT NOT NULL,
    image_type TEXT,
    image_width INTEGER,
    image_height INTEGER,
    file_size INTEGER,
    page_number INTEGER,
    confidence REAL DEFAULT 1.0,
    created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
    FOREIGN KEY (part_id) REFERENCES parts (id),
    UNIQUE(part_id, image_filename)
);
`,
	},
	{
		version: 2,
		name:    "full-text index",
		sql: `
CREATE VIRTUAL TABLE IF NOT EXISTS parts_fts USING fts5(
    catalog_name,
    catalog_type,
    part_number,
    description,
    page_text,
    machine_info,
    specifications,
    oe_numbers,
    applications,
    content='parts',
    content_rowid='id'
);

CREATE TRIGGER IF NOT EXISTS parts_ai AFTER INSERT ON parts BEGIN
    INSERT INTO parts_fts(rowid, catalog_name, catalog_type, part_number, description, page_text, machine_info, specifications, oe_numbers, applications)
    VALUES (new.id, new.catalog_name, new.catalog_type, new.part_number, new.description, new.page_text, new.machine_info, new.specifications, new.oe_numbers, new.applications);
END;

CREATE TRIGGER IF NOT EXISTS parts_ad AFTER DELETE ON parts BEGIN
    INSERT INTO parts_fts(parts_fts, rowid, catalog_name, catalog_type, part_number, description, page_text, machine_info, specifications, oe_numbers, applications)
    VALUES ('delete', old.id, old.catalog_name, old.catalog_type, old.part_number, old.description, old.page_text, old.machine_info, old.specifications, old.oe_numbers, old.applications);
END;

CREATE TRIGGER IF NOT EXISTS parts_au AFTER UPDATE ON parts BEGIN
    INSERT INTO parts_fts(parts_fts, rowid, catalog_name, catalog_type, part_number, description, page_text, machine_info, specifications, oe_numbers, applications)
    VALUES ('delete', old.id, old.catalog_name, old.catalog_type, old.part_number, old.description, old.page_text, old.machine_info, old.specifications, old.oe_numbers, old.applications);
    INSERT INTO parts_fts(rowid, catalog_name, catalog_type, part_number, description, page_text, machine_info, specifications, oe_numbers, applications)
    VALUES (new.id, new.catalog_name, new.catalog_type, new.part_number, new.description, new.page_text, new.machine_info, new.specifications, new.oe_numbers, new.applications);
END;
`,
	},
	{
		version: 3,
		name:    "indexes",
		sql: `
CREATE INDEX IF NOT EXISTS idx_part_number ON parts(part_number);
CREATE INDEX IF NOT EXISTS idx_catalog_name ON parts(catalog_name);
CREATE INDEX IF NOT EXISTS idx_catalog_type ON parts(catalog_type);
CREATE INDEX IF NOT EXISTS idx_page ON parts(page);
CREATE INDEX IF NOT EXISTS idx_part_type ON parts(part_type);
CREATE INDEX IF NOT EXISTS idx_category ON parts(category);
CREATE INDEX IF NOT EXISTS idx_oe_numbers ON parts(oe_numbers);
CREATE INDEX IF NOT EXISTS idx_part_guides_part_id ON part_guides(part_id);
CREATE INDEX IF NOT EXISTS idx_part_guides_guide_id ON part_guides(guide_id);
CREATE INDEX IF NOT EXISTS idx_part_images_part_id ON part_images(part_id);
CREATE INDEX IF NOT EXISTS idx_part_images_filename ON part_images(image_filename);
`,
	},
}

// applyMigrations brings the schema up to the latest version.
func applyMigrations(db *sql.DB) error {
	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY,
			name TEXT NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`); err != nil {
		return fmt.Errorf("create schema_version table: %w", err)
	}

	var current int
	if err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&current); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}

	for _, m := range migrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			tx.Rollback()
			return fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_version (version, name) VALUES (?, ?)", m.version, m.name); err != nil {
			tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}

// SchemaVersion reports the highest applied migration version.
func SchemaVersion(db *sql.DB) (int, error) {
	var v int
	err := db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_version").Scan(&v)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return v, nil
}
