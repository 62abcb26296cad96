package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/storage"
)

// extractionDoc is the output of the PDF extraction pipeline: one catalog's
// parts with their images, plus any guides referenced by name.
type extractionDoc struct {
	CatalogName string                   `json:"catalog_name"`
	CatalogType string                   `json:"catalog_type"`
	PDFPath     string                   `json:"pdf_path"`
	Parts       []extractionPart         `json:"parts"`
	Guides      []catalog.TechnicalGuide `json:"guides"`
}

type extractionPart struct {
	catalog.Part
	Images    []catalog.PartImage `json:"images"`
	GuideRefs []guideRef          `json:"guide_refs"`
}

type guideRef struct {
	GuideName  string  `json:"guide_name"`
	Confidence float64 `json:"confidence"`
}

// loadStats counts what one extraction file contributed.
type loadStats struct {
	Parts        int
	Images       int
	Guides       int
	Associations int
	Skipped      int
}

type loader struct {
	store  storage.Store
	logger *logrus.Logger
}

func newLoader(store storage.Store, logger *logrus.Logger) *loader {
	return &loader{store: store, logger: logger}
}

// LoadFile parses one extraction document and writes its contents. Re-loading
// a file is safe: duplicate parts and associations are skipped, guides are
// upserted in place.
func (l *loader) LoadFile(ctx context.Context, path string) (*loadStats, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read extraction: %w", err)
	}

	var doc extractionDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse extraction: %w", err)
	}
	if doc.CatalogName == "" {
		return nil, fmt.Errorf("extraction is missing catalog_name")
	}

	stats := &loadStats{}

	// Guides first so part associations can resolve them.
	guideIDs := make(map[string]int64, len(doc.Guides))
	for i := range doc.Guides {
		g := &doc.Guides[i]
		if g.GuideName == "" {
			stats.Skipped++
			continue
		}
		if g.DisplayName == "" {
			g.DisplayName = g.GuideName
		}
		id, err := l.store.UpsertGuide(ctx, g)
		if err != nil {
			return stats, fmt.Errorf("upsert guide %q: %w", g.GuideName, err)
		}
		guideIDs[g.GuideName] = id
		stats.Guides++
	}

	for i := range doc.Parts {
		part := doc.Parts[i]
		if part.CatalogName == "" {
			part.CatalogName = doc.CatalogName
		}
		if part.CatalogType == "" {
			part.CatalogType = doc.CatalogType
		}
		if part.PDFPath == "" {
			part.PDFPath = doc.PDFPath
		}

		partID, err := l.store.InsertPart(ctx, &part.Part)
		if errors.Is(err, catalog.ErrAlreadyExists) {
			stats.Skipped++
			continue
		}
		if err != nil {
			return stats, fmt.Errorf("insert part %q: %w", part.PartNumber, err)
		}
		stats.Parts++

		for j := range part.Images {
			img := part.Images[j]
			img.PartID = partID
			if _, err := l.store.AddPartImage(ctx, &img); err != nil {
				if errors.Is(err, catalog.ErrAlreadyExists) {
					stats.Skipped++
					continue
				}
				return stats, fmt.Errorf("add image for part %q: %w", part.PartNumber, err)
			}
			stats.Images++
		}

		for _, ref := range part.GuideRefs {
			guideID, ok := guideIDs[ref.GuideName]
			if !ok {
				guide, err := l.store.GetGuideByName(ctx, ref.GuideName)
				if errors.Is(err, catalog.ErrNotFound) {
					l.logger.WithFields(logrus.Fields{
						"part":  part.PartNumber,
						"guide": ref.GuideName,
					}).Warn("Skipping association with unknown guide")
					stats.Skipped++
					continue
				}
				if err != nil {
					return stats, fmt.Errorf("resolve guide %q: %w", ref.GuideName, err)
				}
				guideID = guide.ID
				guideIDs[ref.GuideName] = guideID
			}

			outcome, err := l.store.Associate(ctx, partID, guideID, ref.Confidence)
			if err != nil {
				return stats, fmt.Errorf("associate part %q with %q: %w", part.PartNumber, ref.GuideName, err)
			}
			if outcome == catalog.AssociationInserted {
				stats.Associations++
			} else {
				stats.Skipped++
			}
		}
	}

	return stats, nil
}
