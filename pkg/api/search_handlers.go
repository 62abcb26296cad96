package api

import (
	"errors"
	"net/http"

	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/httputil"
	"github.com/partdex/partdex/pkg/search"
)

// handleSearch serves GET /api/search. The content_type=guides parameter is
// a front-end contract: guide content is browsed through its own endpoints,
// so the search endpoint answers it with an empty result set.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := httputil.ParseQueryString(r, "q", "")

	if httputil.ParseQueryString(r, "content_type", "") == "guides" {
		httputil.WriteSuccess(w, &SearchResponse{Query: query, Results: []SearchHitView{}})
		return
	}

	limit, err := httputil.ParseQueryInt(r, "limit", 0)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}
	offset, err := httputil.ParseQueryInt(r, "offset", 0)
	if err != nil {
		httputil.WriteBadRequest(w, err.Error())
		return
	}

	resp, err := s.search.Search(r.Context(), search.Request{
		Query:       query,
		Category:    httputil.ParseQueryString(r, "category", ""),
		PartType:    httputil.ParseQueryString(r, "part_type", ""),
		CatalogType: httputil.ParseQueryString(r, "catalog_type", ""),
		Limit:       limit,
		Offset:      offset,
	})
	if err != nil {
		switch {
		case errors.Is(err, catalog.ErrInvalidQuery):
			httputil.WriteBadRequest(w, err.Error())
		case errors.Is(err, catalog.ErrStorageUnavailable):
			httputil.WriteServiceUnavailable(w, "search is temporarily unavailable")
		default:
			httputil.WriteInternalError(w, err)
		}
		return
	}

	results := make([]SearchHitView, 0, len(resp.Results))
	for _, hit := range resp.Results {
		results = append(results, s.resolver.hitView(hit))
	}
	httputil.WriteSuccess(w, &SearchResponse{
		Query:      resp.Query,
		Filters:    resp.Filters,
		TotalCount: resp.TotalCount,
		Results:    results,
	})
}
