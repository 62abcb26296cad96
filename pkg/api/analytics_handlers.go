package api

import (
	"encoding/json"
	"net/http"

	"github.com/partdex/partdex/pkg/analytics"
	"github.com/partdex/partdex/pkg/httputil"
)

// serveCachedStats answers from the aggregator's Redis snapshot when one is
// present, otherwise computes on the fly. A Redis failure is treated as a
// cache miss, not an error.
func (s *Server) serveCachedStats(w http.ResponseWriter, r *http.Request,
	cacheKey string, compute func() (interface{}, error)) {
	if s.redis != nil {
		var cached json.RawMessage
		if found, err := s.redis.GetJSON(r.Context(), cacheKey, &cached); err == nil && found {
			httputil.WriteSuccess(w, cached)
			return
		}
	}

	data, err := compute()
	if err != nil {
		writeStoreError(w, err)
		return
	}
	httputil.WriteSuccess(w, data)
}

// analyticsCatalogs handles GET /api/analytics/catalogs
func (s *Server) analyticsCatalogs(w http.ResponseWriter, r *http.Request) {
	s.serveCachedStats(w, r, analytics.CacheKeyCatalogStats, func() (interface{}, error) {
		return s.analytics.CatalogStats(r.Context())
	})
}

// analyticsCategories handles GET /api/analytics/categories
func (s *Server) analyticsCategories(w http.ResponseWriter, r *http.Request) {
	s.serveCachedStats(w, r, analytics.CacheKeyCategoryStats, func() (interface{}, error) {
		return s.analytics.CategoryDistribution(r.Context())
	})
}

// analyticsAssociations handles GET /api/analytics/associations
func (s *Server) analyticsAssociations(w http.ResponseWriter, r *http.Request) {
	s.serveCachedStats(w, r, analytics.CacheKeyAssociationStats, func() (interface{}, error) {
		return s.analytics.AssociationStats(r.Context())
	})
}

// analyticsDashboard handles GET /api/analytics/dashboard
func (s *Server) analyticsDashboard(w http.ResponseWriter, r *http.Request) {
	s.serveCachedStats(w, r, analytics.CacheKeyDashboardStats, func() (interface{}, error) {
		return s.analytics.DashboardStats(r.Context())
	})
}
