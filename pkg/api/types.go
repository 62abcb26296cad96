package api

import (
	"fmt"
	"path"
	"strings"

	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/config"
)

// PartView is a Part with its stored file paths resolved into URLs the
// browser can fetch. The semicolon-packed applications and oe_numbers fields
// are split into arrays, shadowing the raw columns in the JSON output.
type PartView struct {
	catalog.Part
	ImageURL     string   `json:"image_url,omitempty"`
	PDFURL       string   `json:"pdf_url,omitempty"`
	Applications []string `json:"applications,omitempty"`
	OENumbers    []string `json:"oe_numbers,omitempty"`
}

// PartSummaryView is a PartView carrying the listing relation counts.
type PartSummaryView struct {
	PartView
	ImageCount int `json:"image_count"`
	GuideCount int `json:"guide_count"`
}

// PartDetailView is a PartView joined with image filenames and guide names.
type PartDetailView struct {
	PartView
	Images []string `json:"images"`
	Guides []string `json:"guides"`
}

// GuideForPartView annotates a guide with the association confidence and a
// download URL.
type GuideForPartView struct {
	catalog.TechnicalGuide
	ConfidenceScore float64 `json:"confidence_score"`
	DownloadURL     string  `json:"download_url,omitempty"`
}

// SearchHitView is a full-text match with its media paths resolved.
type SearchHitView struct {
	PartView
	Rank    float64 `json:"rank"`
	Snippet string  `json:"snippet,omitempty"`
}

// SearchResponse is the /api/search envelope.
type SearchResponse struct {
	Query      string            `json:"query"`
	Filters    map[string]string `json:"filters,omitempty"`
	TotalCount int               `json:"total_count"`
	Results    []SearchHitView   `json:"results"`
}

// PartListResponse is the paginated parts listing envelope.
type PartListResponse struct {
	Parts      []PartSummaryView `json:"parts"`
	TotalCount int               `json:"total_count"`
	Limit      int               `json:"limit"`
	Offset     int               `json:"offset"`
}

// AssociationRequest is the create/delete association payload.
type AssociationRequest struct {
	PartID          int64   `json:"part_id"`
	GuideID         int64   `json:"guide_id"`
	ConfidenceScore float64 `json:"confidence_score,omitempty"`
}

// AssociationResponse reports the outcome of an association call.
type AssociationResponse struct {
	PartID  int64  `json:"part_id"`
	GuideID int64  `json:"guide_id"`
	Outcome string `json:"outcome"`
}

// mediaResolver turns stored relative paths into serveable URLs.
type mediaResolver struct {
	media config.MediaConfig
}

func (m mediaResolver) partView(p catalog.Part) PartView {
	v := PartView{Part: p}
	if p.ImagePath != "" {
		v.ImageURL = joinURL(m.media.ImageBaseURL, path.Base(p.ImagePath))
	}
	if p.PDFPath != "" {
		v.PDFURL = joinURL(m.media.PDFBaseURL, path.Base(p.PDFPath))
		// Deep-link into the source page when we know it.
		if p.Page > 0 {
			v.PDFURL = fmt.Sprintf("%s#page=%d", v.PDFURL, p.Page)
		}
	}
	v.Applications = splitList(p.Applications)
	v.OENumbers = splitList(p.OENumbers)
	return v
}

func (m mediaResolver) hitView(hit catalog.SearchHit) SearchHitView {
	return SearchHitView{
		PartView: m.partView(hit.Part),
		Rank:     hit.Rank,
		Snippet:  hit.Snippet,
	}
}

func (m mediaResolver) summaryView(s catalog.PartSummary) PartSummaryView {
	return PartSummaryView{
		PartView:   m.partView(s.Part),
		ImageCount: s.ImageCount,
		GuideCount: s.GuideCount,
	}
}

func (m mediaResolver) detailView(d catalog.PartDetail) PartDetailView {
	return PartDetailView{
		PartView: m.partView(d.Part),
		Images:   d.Images,
		Guides:   d.Guides,
	}
}

func joinURL(base, name string) string {
	return strings.TrimRight(base, "/") + "/" + name
}

// splitList splits a semicolon-packed field, dropping empty segments.
func splitList(packed string) []string {
	if packed == "" {
		return nil
	}
	var out []string
	for _, seg := range strings.Split(packed, ";") {
		if seg = strings.TrimSpace(seg); seg != "" {
			out = append(out, seg)
		}
	}
	return out
}
