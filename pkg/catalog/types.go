package catalog

import "time"

// Part is a single catalog entry. The same part number can appear in more
// than one catalog (and on more than one page), so (catalog_name,
// part_number, page) is the natural key, not part_number alone.
type Part struct {
	ID             int64     `json:"id"`
	CatalogName    string    `json:"catalog_name"`
	CatalogType    string    `json:"catalog_type,omitempty"`
	PartType       string    `json:"part_type,omitempty"`
	PartNumber     string    `json:"part_number"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category,omitempty"`
	Page           int       `json:"page,omitempty"`
	ImagePath      string    `json:"image_path,omitempty"`
	PageText       string    `json:"page_text,omitempty"`
	PDFPath        string    `json:"pdf_path,omitempty"`
	MachineInfo    string    `json:"machine_info,omitempty"`
	Specifications string    `json:"specifications,omitempty"`
	OENumbers      string    `json:"oe_numbers,omitempty"`
	Applications   string    `json:"applications,omitempty"`
	Features       string    `json:"features,omitempty"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// PartSummary is a Part annotated with relation counts for listing views.
type PartSummary struct {
	Part
	ImageCount int `json:"image_count"`
	GuideCount int `json:"guide_count"`
}

// PartDetail is a Part joined with its de-duplicated image filenames and
// guide display names, as returned by part-number lookups.
type PartDetail struct {
	Part
	Images []string `json:"images"`
	Guides []string `json:"guides"`
}

// PartImage is an extracted image tied to a part.
type PartImage struct {
	ID            int64     `json:"id"`
	PartID        int64     `json:"part_id"`
	ImageFilename string    `json:"image_filename"`
	ImagePath     string    `json:"image_path"`
	ImageType     string    `json:"image_type,omitempty"`
	ImageWidth    int       `json:"image_width,omitempty"`
	ImageHeight   int       `json:"image_height,omitempty"`
	FileSize      int64     `json:"file_size,omitempty"`
	PageNumber    int       `json:"page_number,omitempty"`
	Confidence    float64   `json:"confidence"`
	CreatedAt     time.Time `json:"created_at,omitempty"`
}

// TechnicalGuide is a service/installation document. GuideName is the stable
// machine identifier; DisplayName is what the UI shows.
type TechnicalGuide struct {
	ID             int64     `json:"id"`
	GuideName      string    `json:"guide_name"`
	DisplayName    string    `json:"display_name"`
	Description    string    `json:"description,omitempty"`
	Category       string    `json:"category,omitempty"`
	S3Key          string    `json:"s3_key,omitempty"`
	TemplateFields string    `json:"template_fields,omitempty"`
	PDFPath        string    `json:"pdf_path,omitempty"`
	RelatedParts   string    `json:"related_parts,omitempty"`
	IsActive       bool      `json:"is_active"`
	CreatedAt      time.Time `json:"created_at,omitempty"`
}

// GuideSummary is a TechnicalGuide annotated with its association count.
type GuideSummary struct {
	TechnicalGuide
	PartCount int `json:"part_count"`
}

// Association links a part to a guide with a confidence score. Confidence is
// set once at creation and never overwritten by later create calls.
type Association struct {
	ID              int64     `json:"id"`
	PartID          int64     `json:"part_id"`
	GuideID         int64     `json:"guide_id"`
	ConfidenceScore float64   `json:"confidence_score"`
	CreatedAt       time.Time `json:"created_at,omitempty"`
}

// GuideForPart is an association row joined with the guide it points at,
// ordered by descending confidence when listed.
type GuideForPart struct {
	TechnicalGuide
	ConfidenceScore float64 `json:"confidence_score"`
}

// PartForGuide is an association row joined with the part it points at.
type PartForGuide struct {
	Part
	ConfidenceScore float64 `json:"confidence_score"`
}

// SearchHit is one full-text match with its relevance rank and a highlighted
// snippet around the matched terms.
type SearchHit struct {
	Part
	Rank    float64 `json:"rank"`
	Snippet string  `json:"snippet,omitempty"`
}

// CatalogInfo describes one distinct catalog present in the parts table.
type CatalogInfo struct {
	CatalogName string `json:"catalog_name"`
	CatalogType string `json:"catalog_type,omitempty"`
	PartCount   int    `json:"part_count"`
}

// CategoryInfo describes one distinct category with its part count.
type CategoryInfo struct {
	Category  string `json:"category"`
	PartCount int    `json:"part_count"`
}

// AssociationOutcome reports what an idempotent associate call actually did.
type AssociationOutcome int

const (
	// AssociationInserted means a new association row was created.
	AssociationInserted AssociationOutcome = iota
	// AssociationExists means the pair was already associated and the
	// existing row (including its confidence) was left untouched.
	AssociationExists
)

func (o AssociationOutcome) String() string {
	if o == AssociationInserted {
		return "inserted"
	}
	return "already_exists"
}
