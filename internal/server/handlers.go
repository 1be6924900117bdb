package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"NewsIngest/internal/domain"
)

var allowedHeaders = []string{"Authorization", "X-Client-Info", "Apikey", "Content-Type"}

// SuccessResponse is returned after a completed run.
type SuccessResponse struct {
	Success           bool   `json:"success"`
	Message           string `json:"message"`
	ArticlesProcessed int    `json:"articles_processed"`
	ArticlesStored    int    `json:"articles_stored"`
	Timestamp         string `json:"timestamp"`
}

// FailureResponse is returned when a run aborts.
type FailureResponse struct {
	Success   bool   `json:"success"`
	Error     string `json:"error"`
	Timestamp string `json:"timestamp"`
}

// RunResponse maps a run outcome to its HTTP status and JSON body.
func RunResponse(report domain.RunReport, err error, at time.Time) (int, any) {
	ts := at.UTC().Format(time.RFC3339)
	if err != nil {
		return http.StatusInternalServerError, FailureResponse{Success: false, Error: err.Error(), Timestamp: ts}
	}
	return http.StatusOK, SuccessResponse{
		Success:           true,
		Message:           fmt.Sprintf("Processed %d articles, stored %d new articles", report.Fetched, report.Stored),
		ArticlesProcessed: report.Fetched,
		ArticlesStored:    report.Stored,
		Timestamp:         ts,
	}
}

func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodOptions {
		h := w.Header()
		if origin := s.allowOrigin(r.Header.Get("Origin")); origin != "" {
			h.Set("Access-Control-Allow-Origin", origin)
			if origin != "*" {
				h.Add("Vary", "Origin")
			}
		}
		h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		h.Set("Access-Control-Allow-Headers", strings.ToLower(strings.Join(allowedHeaders, ", ")))
		w.WriteHeader(http.StatusOK)
		return
	}

	report, err := s.runner.Run(r.Context())
	status, body := RunResponse(report, err, s.now())
	s.respondJSON(w, status, body)
}

// allowOrigin resolves the Access-Control-Allow-Origin value for a bare
// OPTIONS request from the configured origins. An empty list allows any origin.
func (s *Server) allowOrigin(origin string) string {
	if len(s.cfg.AllowedOrigins) == 0 {
		return "*"
	}
	for _, allowed := range s.cfg.AllowedOrigins {
		if allowed == "*" {
			return "*"
		}
		if origin != "" && strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.log.Error("failed to encode json response", "error", err)
	}
}
