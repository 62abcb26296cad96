package api

import (
	"net/http"
	"time"

	"github.com/partdex/partdex/pkg/httputil"
)

// ComponentStatus is one dependency's health report.
type ComponentStatus struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// StatusResponse is the full /status report.
type StatusResponse struct {
	Status     string                     `json:"status"`
	Timestamp  time.Time                  `json:"timestamp"`
	Components map[string]ComponentStatus `json:"components"`
	Counts     *StatusCounts              `json:"counts,omitempty"`
}

// StatusCounts summarizes the catalog contents for the status page.
type StatusCounts struct {
	Parts        int `json:"parts"`
	Images       int `json:"images"`
	Guides       int `json:"guides"`
	Associations int `json:"associations"`
}

// health handles GET /health. It only checks the database so the probe stays
// cheap; /status covers the optional dependencies.
func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	if err := s.store.HealthCheck(r.Context()); err != nil {
		httputil.WriteJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unhealthy",
			"error":  err.Error(),
		})
		return
	}
	httputil.WriteSuccess(w, map[string]string{"status": "healthy"})
}

// status handles GET /status. Redis and S3 are optional, so their failures
// degrade the report without failing it; only a database failure makes the
// service unhealthy.
func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	resp := StatusResponse{
		Status:     "healthy",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]ComponentStatus),
	}

	if err := s.store.HealthCheck(r.Context()); err != nil {
		resp.Status = "unhealthy"
		resp.Components["database"] = ComponentStatus{Status: "unhealthy", Error: err.Error()}
	} else {
		resp.Components["database"] = ComponentStatus{Status: "healthy"}
		if s.analytics != nil {
			if ds, err := s.analytics.DashboardStats(r.Context()); err == nil {
				resp.Counts = &StatusCounts{
					Parts:        ds.TotalParts,
					Images:       ds.TotalImages,
					Guides:       ds.TotalGuides,
					Associations: ds.TotalAssociations,
				}
			}
		}
	}

	if s.redis != nil {
		if err := s.redis.Ping(r.Context()); err != nil {
			if resp.Status == "healthy" {
				resp.Status = "degraded"
			}
			resp.Components["redis"] = ComponentStatus{Status: "unhealthy", Error: err.Error()}
		} else {
			resp.Components["redis"] = ComponentStatus{Status: "healthy"}
		}
	}

	if s.s3 != nil {
		if err := s.s3.HealthCheck(r.Context()); err != nil {
			if resp.Status == "healthy" {
				resp.Status = "degraded"
			}
			resp.Components["s3"] = ComponentStatus{Status: "unhealthy", Error: err.Error()}
		} else {
			resp.Components["s3"] = ComponentStatus{Status: "healthy"}
		}
	}

	status := http.StatusOK
	if resp.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	httputil.WriteJSON(w, status, resp)
}
