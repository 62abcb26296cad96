package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/httputil"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200

	defaultGapLimit = 100
)

// writeStoreError maps storage errors onto HTTP statuses.
func writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound):
		httputil.WriteNotFoundError(w, err.Error())
	case errors.Is(err, catalog.ErrInvalidQuery):
		httputil.WriteBadRequest(w, err.Error())
	case errors.Is(err, catalog.ErrAlreadyExists):
		httputil.WriteConflict(w, err.Error())
	case errors.Is(err, catalog.ErrStorageUnavailable):
		httputil.WriteServiceUnavailable(w, "storage is temporarily unavailable")
	default:
		httputil.WriteInternalError(w, err)
	}
}

// listParts handles GET /api/parts
func (s *Server) listParts(w http.ResponseWriter, r *http.Request) {
	limit, err := httputil.ParseQueryInt(r, "limit", defaultPageSize)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	offset, err := httputil.ParseQueryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	limit = httputil.ClampLimit(limit, defaultPageSize, maxPageSize)
	if offset < 0 {
		offset = 0
	}

	parts, total, err := s.store.ListParts(r.Context(), limit, offset)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	views := make([]PartSummaryView, len(parts))
	for i, p := range parts {
		views[i] = s.resolver.summaryView(p)
	}
	httputil.WriteSuccess(w, PartListResponse{
		Parts:      views,
		TotalCount: total,
		Limit:      limit,
		Offset:     offset,
	})
}

// getPart handles GET /api/parts/{id}
func (s *Server) getPart(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	part, err := s.store.GetPartByID(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, s.resolver.partView(*part))
}

// getPartByNumber handles GET /api/parts/number/{partNumber}. A part number
// can match rows in several catalogs, so the response is a list.
func (s *Server) getPartByNumber(w http.ResponseWriter, r *http.Request) {
	partNumber, ok := httputil.ParsePathStringOrError(w, r, "partNumber")
	if !ok {
		return
	}

	details, err := s.store.GetPartByNumber(r.Context(), partNumber)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(details) == 0 {
		httputil.WriteNotFoundError(w, "part not found: "+partNumber)
		return
	}

	views := make([]PartDetailView, len(details))
	for i, d := range details {
		views[i] = s.resolver.detailView(d)
	}
	httputil.WriteSuccess(w, views)
}

// createPart handles POST /api/parts
func (s *Server) createPart(w http.ResponseWriter, r *http.Request) {
	var part catalog.Part
	if !httputil.ParseJSONOrError(w, r, &part) {
		return
	}
	if !httputil.RequireNonEmpty(w, part.CatalogName, "catalog_name") {
		return
	}
	if !httputil.RequireNonEmpty(w, part.PartNumber, "part_number") {
		return
	}

	id, err := s.store.InsertPart(r.Context(), &part)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	part.ID = id
	httputil.WriteCreated(w, s.resolver.partView(part))
}

// updatePart handles PUT /api/parts/{id}
func (s *Server) updatePart(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	var part catalog.Part
	if !httputil.ParseJSONOrError(w, r, &part) {
		return
	}
	part.ID = id

	if err := s.store.UpdatePart(r.Context(), &part); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, s.resolver.partView(part))
}

// deletePart handles DELETE /api/parts/{id}
func (s *Server) deletePart(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	if err := s.store.DeletePart(r.Context(), id); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}

// listPartTypes handles GET /api/parts/types
func (s *Server) listPartTypes(w http.ResponseWriter, r *http.Request) {
	types, err := s.store.ListPartTypes(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{"part_types": types})
}

// listPartImages handles GET /api/parts/{id}/images
func (s *Server) listPartImages(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	images, err := s.store.ImagesForPart(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, images)
}

// listPartGuides handles GET /api/parts/{id}/guides. Guides come back in
// descending confidence order.
func (s *Server) listPartGuides(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathInt64OrError(w, r, "id")
	if !ok {
		return
	}

	guides, err := s.store.GuidesForPart(r.Context(), id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	views := make([]GuideForPartView, len(guides))
	for i, g := range guides {
		views[i] = GuideForPartView{
			TechnicalGuide:  g.TechnicalGuide,
			ConfidenceScore: g.ConfidenceScore,
			DownloadURL:     "/api/guides/" + g.GuideName + "/download",
		}
	}
	httputil.WriteSuccess(w, views)
}

// partsWithoutImages handles GET /api/parts/without-images
func (s *Server) partsWithoutImages(w http.ResponseWriter, r *http.Request) {
	s.partsWithGap(w, r, s.store.PartsWithoutImages)
}

// partsWithoutGuides handles GET /api/parts/without-guides
func (s *Server) partsWithoutGuides(w http.ResponseWriter, r *http.Request) {
	s.partsWithGap(w, r, s.store.PartsWithoutGuides)
}

func (s *Server) partsWithGap(w http.ResponseWriter, r *http.Request,
	fetch func(ctx context.Context, limit int) ([]catalog.Part, error)) {
	limit, err := httputil.ParseQueryInt(r, "limit", defaultGapLimit)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	parts, err := fetch(r.Context(), limit)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	views := make([]PartView, len(parts))
	for i, p := range parts {
		views[i] = s.resolver.partView(p)
	}
	httputil.WriteSuccess(w, views)
}
