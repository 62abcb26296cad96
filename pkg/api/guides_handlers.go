package api

import (
	"net/http"

	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/httputil"
)

// listGuides handles GET /api/guides. Inactive guides are hidden unless
// active=false is passed.
func (s *Server) listGuides(w http.ResponseWriter, r *http.Request) {
	activeOnly, err := httputil.ParseQueryBool(r, "active", true)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	guides, err := s.store.ListGuides(r.Context(), activeOnly)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{
		"guides": guides,
		"count":  len(guides),
	})
}

// getGuide handles GET /api/guides/{name}
func (s *Server) getGuide(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "name")
	if !ok {
		return
	}

	guide, err := s.store.GetGuideByName(r.Context(), name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, guide)
}

// upsertGuide handles POST /api/guides. Posting an existing guide_name
// updates the stored metadata in place.
func (s *Server) upsertGuide(w http.ResponseWriter, r *http.Request) {
	var guide catalog.TechnicalGuide
	if !httputil.ParseJSONOrError(w, r, &guide) {
		return
	}
	if !httputil.RequireNonEmpty(w, guide.GuideName, "guide_name") {
		return
	}
	if guide.DisplayName == "" {
		guide.DisplayName = guide.GuideName
	}

	id, err := s.store.UpsertGuide(r.Context(), &guide)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	guide.ID = id
	httputil.WriteCreated(w, guide)
}

// listGuideParts handles GET /api/guides/{name}/parts
func (s *Server) listGuideParts(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "name")
	if !ok {
		return
	}

	guide, err := s.store.GetGuideByName(r.Context(), name)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	parts, err := s.store.PartsForGuide(r.Context(), guide.ID)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	views := make([]map[string]interface{}, len(parts))
	for i, p := range parts {
		views[i] = map[string]interface{}{
			"part":             s.resolver.partView(p.Part),
			"confidence_score": p.ConfidenceScore,
		}
	}
	httputil.WriteSuccess(w, map[string]interface{}{
		"guide": guide,
		"parts": views,
	})
}

// downloadGuide handles GET /api/guides/{name}/download. With S3 configured
// the client is redirected to a presigned URL; otherwise we fall back to the
// locally served PDF path.
func (s *Server) downloadGuide(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "name")
	if !ok {
		return
	}

	guide, err := s.store.GetGuideByName(r.Context(), name)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	if s.s3 != nil && guide.S3Key != "" {
		url, err := s.s3.PresignGuideURL(r.Context(), guide.S3Key)
		if err != nil {
			s.logger.WithError(err).WithField("guide", name).Error("Failed to presign guide URL")
			httputil.WriteServiceUnavailable(w, "guide storage is temporarily unavailable")
			return
		}
		http.Redirect(w, r, url, http.StatusTemporaryRedirect)
		return
	}

	if guide.PDFPath == "" {
		httputil.WriteNotFoundError(w, "guide has no document: "+name)
		return
	}
	http.Redirect(w, r, joinURL(s.resolver.media.PDFBaseURL, guide.PDFPath), http.StatusTemporaryRedirect)
}
