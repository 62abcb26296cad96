package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/partdex/partdex/pkg/analytics"
	"github.com/partdex/partdex/pkg/config"
	"github.com/partdex/partdex/pkg/observability"
	"github.com/partdex/partdex/pkg/search"
	"github.com/partdex/partdex/pkg/storage"
	"github.com/partdex/partdex/pkg/storage/sqlite"
)

// Server represents our API server
type Server struct {
	store     storage.Store
	search    *search.Service
	analytics *analytics.Service
	redis     *sqlite.RedisClient
	s3        *sqlite.S3Client
	resolver  mediaResolver
	logger    *observability.Logger
	router    *mux.Router
}

// Options carries the optional collaborators. Redis and S3 may be nil; the
// server degrades to direct SQLite reads and local PDF paths.
type Options struct {
	Search    *search.Service
	Analytics *analytics.Service
	Redis     *sqlite.RedisClient
	S3        *sqlite.S3Client
	Media     config.MediaConfig
	Logger    *observability.Logger
}

// NewServer creates a new API server
func NewServer(store storage.Store, opts Options) *Server {
	s := &Server{
		store:     store,
		search:    opts.Search,
		analytics: opts.Analytics,
		redis:     opts.Redis,
		s3:        opts.S3,
		resolver:  mediaResolver{media: opts.Media},
		logger:    opts.Logger,
		router:    mux.NewRouter(),
	}
	if s.logger == nil {
		s.logger = observability.NewLogger(observability.InfoLevel, nil)
	}
	s.setupRoutes()
	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes() {
	// Part routes. The fixed paths are registered before the {id} pattern,
	// and {id} is constrained to digits so "types" never matches it.
	s.router.HandleFunc("/api/parts", s.listParts).Methods("GET")
	s.router.HandleFunc("/api/parts", s.createPart).Methods("POST")
	s.router.HandleFunc("/api/parts/types", s.listPartTypes).Methods("GET")
	s.router.HandleFunc("/api/parts/without-images", s.partsWithoutImages).Methods("GET")
	s.router.HandleFunc("/api/parts/without-guides", s.partsWithoutGuides).Methods("GET")
	s.router.HandleFunc("/api/parts/number/{partNumber}", s.getPartByNumber).Methods("GET")
	s.router.HandleFunc("/api/parts/{id:[0-9]+}", s.getPart).Methods("GET")
	s.router.HandleFunc("/api/parts/{id:[0-9]+}", s.updatePart).Methods("PUT")
	s.router.HandleFunc("/api/parts/{id:[0-9]+}", s.deletePart).Methods("DELETE")
	s.router.HandleFunc("/api/parts/{id:[0-9]+}/images", s.listPartImages).Methods("GET")
	s.router.HandleFunc("/api/parts/{id:[0-9]+}/guides", s.listPartGuides).Methods("GET")

	// Catalog and category routes
	s.router.HandleFunc("/api/catalogs", s.listCatalogs).Methods("GET")
	s.router.HandleFunc("/api/catalogs/{name}/parts", s.listCatalogParts).Methods("GET")
	s.router.HandleFunc("/api/categories", s.listCategories).Methods("GET")

	// Guide routes
	s.router.HandleFunc("/api/guides", s.listGuides).Methods("GET")
	s.router.HandleFunc("/api/guides", s.upsertGuide).Methods("POST")
	s.router.HandleFunc("/api/guides/{name}", s.getGuide).Methods("GET")
	s.router.HandleFunc("/api/guides/{name}/parts", s.listGuideParts).Methods("GET")
	s.router.HandleFunc("/api/guides/{name}/download", s.downloadGuide).Methods("GET")

	// Association routes
	s.router.HandleFunc("/api/associations", s.createAssociation).Methods("POST")
	s.router.HandleFunc("/api/associations/{partId:[0-9]+}/{guideId:[0-9]+}", s.deleteAssociation).Methods("DELETE")

	// Analytics routes
	s.router.HandleFunc("/api/analytics/catalogs", s.analyticsCatalogs).Methods("GET")
	s.router.HandleFunc("/api/analytics/categories", s.analyticsCategories).Methods("GET")
	s.router.HandleFunc("/api/analytics/associations", s.analyticsAssociations).Methods("GET")
	s.router.HandleFunc("/api/analytics/dashboard", s.analyticsDashboard).Methods("GET")

	// Health routes
	s.router.HandleFunc("/health", s.health).Methods("GET")
	s.router.HandleFunc("/status", s.status).Methods("GET")

	if s.search != nil {
		s.router.HandleFunc("/api/search", s.handleSearch).Methods("GET")
	}
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Router exposes the underlying router so callers can wrap it in middleware.
func (s *Server) Router() *mux.Router {
	return s.router
}
