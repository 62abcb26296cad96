package api

import (
	"net/http"

	"github.com/partdex/partdex/pkg/httputil"
)

// listCatalogs handles GET /api/catalogs
func (s *Server) listCatalogs(w http.ResponseWriter, r *http.Request) {
	catalogs, err := s.store.ListCatalogs(r.Context())
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{
		"catalogs": catalogs,
		"count":    len(catalogs),
	})
}

// listCatalogParts handles GET /api/catalogs/{name}/parts
func (s *Server) listCatalogParts(w http.ResponseWriter, r *http.Request) {
	name, ok := httputil.ParsePathStringOrError(w, r, "name")
	if !ok {
		return
	}

	parts, err := s.store.ListPartsByCatalog(r.Context(), name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	if len(parts) == 0 {
		httputil.WriteNotFoundError(w, "catalog not found: "+name)
		return
	}

	views := make([]PartView, len(parts))
	for i, p := range parts {
		views[i] = s.resolver.partView(p)
	}
	httputil.WriteSuccess(w, map[string]interface{}{
		"catalog_name": name,
		"parts":        views,
		"count":        len(views),
	})
}

// listCategories handles GET /api/categories. The optional catalog query
// parameter narrows the counts to one catalog.
func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	catalogName := httputil.ParseQueryString(r, "catalog", "")

	categories, err := s.store.ListCategories(r.Context(), catalogName)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, map[string]interface{}{
		"categories": categories,
		"count":      len(categories),
	})
}
