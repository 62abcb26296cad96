package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partdex/partdex/pkg/analytics"
	"github.com/partdex/partdex/pkg/catalog"
	"github.com/partdex/partdex/pkg/config"
	"github.com/partdex/partdex/pkg/search"
	"github.com/partdex/partdex/pkg/storage"
	"github.com/partdex/partdex/pkg/storage/sqlite"
)

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	t.Helper()

	cfg := storage.DefaultConfig()
	cfg.SQLitePath = filepath.Join(t.TempDir(), "catalog.db")

	store, err := sqlite.Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	server := NewServer(store, Options{
		Search:    search.NewService(store.DB()),
		Analytics: analytics.NewService(store.DB()),
		Media: config.MediaConfig{
			ImageBaseURL: "/images",
			PDFBaseURL:   "/pdfs",
		},
	})

	srv := httptest.NewServer(server)
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, method, url string, body interface{}, dest interface{}) int {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req, err := http.NewRequest(method, url, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	if dest != nil {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
	}
	return resp.StatusCode
}

func seedPart(t *testing.T, store *sqlite.Store, partNumber string, page int) int64 {
	t.Helper()
	id, err := store.InsertPart(t.Context(), &catalog.Part{
		CatalogName: "fleetguard",
		CatalogType: "filters",
		PartNumber:  partNumber,
		Description: "Lube filter",
		Category:    "Lube Filters",
		Page:        page,
		ImagePath:   "extracted/" + partNumber + ".png",
		PDFPath:     "catalogs/fleetguard.pdf",
	})
	require.NoError(t, err)
	return id
}

func seedGuide(t *testing.T, store *sqlite.Store, name string) int64 {
	t.Helper()
	id, err := store.UpsertGuide(t.Context(), &catalog.TechnicalGuide{
		GuideName:   name,
		DisplayName: "Guide " + name,
		IsActive:    true,
	})
	require.NoError(t, err)
	return id
}

func TestListPartsEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	for i := 1; i <= 3; i++ {
		seedPart(t, store, fmt.Sprintf("LF%d", i), i)
	}

	var resp PartListResponse
	status := doJSON(t, http.MethodGet, srv.URL+"/api/parts?limit=2", nil, &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 3, resp.TotalCount)
	assert.Equal(t, 2, resp.Limit)
	require.Len(t, resp.Parts, 2)

	// Stored paths come back resolved into serveable URLs.
	first := resp.Parts[0]
	assert.Equal(t, "/images/LF1.png", first.ImageURL)
	assert.Equal(t, "/pdfs/fleetguard.pdf#page=1", first.PDFURL)
}

func TestGetPartEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	id := seedPart(t, store, "LF3000", 12)

	var view PartView
	status := doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/parts/%d", srv.URL, id), nil, &view)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "LF3000", view.PartNumber)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/parts/99999", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestGetPartByNumberEndpoint(t *testing.T) {
	srv, store := newTestServer(t)
	seedPart(t, store, "LF3000", 12)

	var views []PartDetailView
	status := doJSON(t, http.MethodGet, srv.URL+"/api/parts/number/LF3000", nil, &views)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, views, 1)
	assert.Equal(t, "fleetguard", views[0].CatalogName)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/parts/number/NOPE", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestCreatePartEndpoint(t *testing.T) {
	srv, _ := newTestServer(t)

	part := map[string]interface{}{
		"catalog_name": "fleetguard",
		"part_number":  "LF3000",
		"page":         12,
	}

	var created PartView
	status := doJSON(t, http.MethodPost, srv.URL+"/api/parts", part, &created)
	assert.Equal(t, http.StatusCreated, status)
	assert.Greater(t, created.ID, int64(0))

	// Same natural key again conflicts.
	status = doJSON(t, http.MethodPost, srv.URL+"/api/parts", part, nil)
	assert.Equal(t, http.StatusConflict, status)

	// Missing part_number is rejected before touching storage.
	status = doJSON(t, http.MethodPost, srv.URL+"/api/parts",
		map[string]interface{}{"catalog_name": "fleetguard"}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestAssociationLifecycle(t *testing.T) {
	srv, store := newTestServer(t)
	partID := seedPart(t, store, "LF3000", 12)
	guideID := seedGuide(t, store, "oil-filter-install")

	body := AssociationRequest{PartID: partID, GuideID: guideID, ConfidenceScore: 0.9}

	var resp AssociationResponse
	status := doJSON(t, http.MethodPost, srv.URL+"/api/associations", body, &resp)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "inserted", resp.Outcome)

	// Re-posting the same pair is not an error and not a second row.
	body.ConfidenceScore = 0.1
	status = doJSON(t, http.MethodPost, srv.URL+"/api/associations", body, &resp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "already_exists", resp.Outcome)

	var guides []GuideForPartView
	status = doJSON(t, http.MethodGet, fmt.Sprintf("%s/api/parts/%d/guides", srv.URL, partID), nil, &guides)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, guides, 1)
	assert.Equal(t, 0.9, guides[0].ConfidenceScore)

	deleteURL := fmt.Sprintf("%s/api/associations/%d/%d", srv.URL, partID, guideID)
	status = doJSON(t, http.MethodDelete, deleteURL, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)

	// Idempotent delete.
	status = doJSON(t, http.MethodDelete, deleteURL, nil, nil)
	assert.Equal(t, http.StatusNoContent, status)
}

func TestAssociationValidation(t *testing.T) {
	srv, store := newTestServer(t)
	partID := seedPart(t, store, "LF3000", 12)

	status := doJSON(t, http.MethodPost, srv.URL+"/api/associations",
		AssociationRequest{PartID: partID, GuideID: 12345, ConfidenceScore: 0.5}, nil)
	assert.Equal(t, http.StatusNotFound, status)

	status = doJSON(t, http.MethodPost, srv.URL+"/api/associations",
		AssociationRequest{PartID: partID, GuideID: 1, ConfidenceScore: 1.5}, nil)
	assert.Equal(t, http.StatusBadRequest, status)

	status = doJSON(t, http.MethodPost, srv.URL+"/api/associations",
		AssociationRequest{GuideID: 1}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestGuideEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	seedGuide(t, store, "oil-filter-install")

	var listing map[string]json.RawMessage
	status := doJSON(t, http.MethodGet, srv.URL+"/api/guides", nil, &listing)
	assert.Equal(t, http.StatusOK, status)

	var guide catalog.TechnicalGuide
	status = doJSON(t, http.MethodGet, srv.URL+"/api/guides/oil-filter-install", nil, &guide)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "Guide oil-filter-install", guide.DisplayName)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/guides/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	// Upsert through the API.
	status = doJSON(t, http.MethodPost, srv.URL+"/api/guides", map[string]interface{}{
		"guide_name":   "oil-filter-install",
		"display_name": "Updated Name",
		"is_active":    true,
	}, &guide)
	assert.Equal(t, http.StatusCreated, status)
	assert.Equal(t, "Updated Name", guide.DisplayName)

	status = doJSON(t, http.MethodPost, srv.URL+"/api/guides", map[string]interface{}{}, nil)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestDownloadGuideRedirectsToLocalPDF(t *testing.T) {
	srv, store := newTestServer(t)

	_, err := store.UpsertGuide(t.Context(), &catalog.TechnicalGuide{
		GuideName:   "torque-specs",
		DisplayName: "Torque Specifications",
		PDFPath:     "guides/torque-specs.pdf",
		IsActive:    true,
	})
	require.NoError(t, err)

	client := &http.Client{
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
	resp, err := client.Get(srv.URL + "/api/guides/torque-specs/download")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTemporaryRedirect, resp.StatusCode)
	assert.Equal(t, "/pdfs/guides/torque-specs.pdf", resp.Header.Get("Location"))

	// A guide without any document is a 404.
	seedGuide(t, store, "no-doc")
	status := doJSON(t, http.MethodGet, srv.URL+"/api/guides/no-doc/download", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestAnalyticsEndpointsComputeWithoutCache(t *testing.T) {
	srv, store := newTestServer(t)
	seedPart(t, store, "LF3000", 12)

	var dashboard analytics.DashboardStats
	status := doJSON(t, http.MethodGet, srv.URL+"/api/analytics/dashboard", nil, &dashboard)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 1, dashboard.TotalParts)

	var catalogs []analytics.CatalogStats
	status = doJSON(t, http.MethodGet, srv.URL+"/api/analytics/catalogs", nil, &catalogs)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, catalogs, 1)
	assert.Equal(t, "fleetguard", catalogs[0].CatalogName)
	assert.Equal(t, 100.0, catalogs[0].ImageCoveragePercent)
}

func TestHealthAndStatus(t *testing.T) {
	srv, store := newTestServer(t)
	seedPart(t, store, "LF3000", 12)

	var health map[string]string
	status := doJSON(t, http.MethodGet, srv.URL+"/health", nil, &health)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", health["status"])

	var report StatusResponse
	status = doJSON(t, http.MethodGet, srv.URL+"/status", nil, &report)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "healthy", report.Status)
	assert.Equal(t, "healthy", report.Components["database"].Status)
	// Optional dependencies are absent, not unhealthy.
	assert.NotContains(t, report.Components, "redis")
	assert.NotContains(t, report.Components, "s3")

	require.NotNil(t, report.Counts)
	assert.Equal(t, 1, report.Counts.Parts)
}

func TestCatalogAndCategoryEndpoints(t *testing.T) {
	srv, store := newTestServer(t)
	seedPart(t, store, "LF3000", 12)
	seedPart(t, store, "LF9009", 30)

	var catalogsResp struct {
		Catalogs []catalog.CatalogInfo `json:"catalogs"`
		Count    int                   `json:"count"`
	}
	status := doJSON(t, http.MethodGet, srv.URL+"/api/catalogs", nil, &catalogsResp)
	assert.Equal(t, http.StatusOK, status)
	require.Equal(t, 1, catalogsResp.Count)
	assert.Equal(t, 2, catalogsResp.Catalogs[0].PartCount)

	var partsResp struct {
		Parts []PartView `json:"parts"`
		Count int        `json:"count"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/api/catalogs/fleetguard/parts", nil, &partsResp)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, 2, partsResp.Count)

	status = doJSON(t, http.MethodGet, srv.URL+"/api/catalogs/unknown/parts", nil, nil)
	assert.Equal(t, http.StatusNotFound, status)

	var categoriesResp struct {
		Categories []catalog.CategoryInfo `json:"categories"`
	}
	status = doJSON(t, http.MethodGet, srv.URL+"/api/categories", nil, &categoriesResp)
	assert.Equal(t, http.StatusOK, status)
	require.Len(t, categoriesResp.Categories, 1)
	assert.Equal(t, "Lube Filters", categoriesResp.Categories[0].Category)
}
