package api

import (
	"net/http"

	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/httputil"
)

// createAssociation handles POST /api/associations. Re-posting an existing
// pair answers 200 with outcome "already_exists" and leaves the stored
// confidence untouched; a fresh link answers 201.
func (s *Server) createAssociation(w http.ResponseWriter, r *http.Request) {
	var req AssociationRequest
	if !httputil.ParseJSONOrError(w, r, &req) {
		return
	}
	if !httputil.RequirePositive(w, req.PartID, "part_id") {
		return
	}
	if !httputil.RequirePositive(w, req.GuideID, "guide_id") {
		return
	}
	if req.ConfidenceScore < 0 || req.ConfidenceScore > 1 {
		httputil.WriteBadRequest(w, "confidence_score must be between 0 and 1")
		return
	}

	outcome, err := s.store.Associate(r.Context(), req.PartID, req.GuideID, req.ConfidenceScore)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	resp := AssociationResponse{
		PartID:  req.PartID,
		GuideID: req.GuideID,
		Outcome: outcome.String(),
	}
	if outcome == catalog.AssociationInserted {
		httputil.WriteCreated(w, resp)
		return
	}
	httputil.WriteSuccess(w, resp)
}

// deleteAssociation handles DELETE /api/associations/{partId}/{guideId}.
// Deleting is idempotent: a pair that was never linked still answers 204.
func (s *Server) deleteAssociation(w http.ResponseWriter, r *http.Request) {
	partID, ok := httputil.ParsePathInt64OrError(w, r, "partId")
	if !ok {
		return
	}
	guideID, ok := httputil.ParsePathInt64OrError(w, r, "guideId")
	if !ok {
		return
	}

	if _, err := s.store.Dissociate(r.Context(), partID, guideID); err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteNoContent(w)
}
