package api

import (
	"net/http"
	"strconv"

	"github.com/OskariKosonen/hunajapannu/internal/config"
	"github.com/OskariKosonen/hunajapannu/internal/validate"
	"github.com/OskariKosonen/hunajapannu/pkg/hunajapannu"
)

const defaultLogLimit = 100

// getLogs returns recent log entries as raw decoded objects, newest file
// first, capped by the limit parameter.
func (s *Server) getLogs(w http.ResponseWriter, r *http.Request) {
	_, p := resolve(logsPolicy, r.URL.Query().Get("timeRange"))
	limit := intParam(r, "limit", defaultLogLimit)

	events, err := s.svc.RecentEvents(r.Context(), p.hours, p.maxFiles, limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	entries := make([]map[string]any, 0, len(events))
	for _, ev := range events {
		entries = append(entries, ev.Fields)
	}
	writeJSON(w, http.StatusOK, entries)
}

// analyticsResponse wraps the report with retrieval context. The outer
// timeRange field intentionally shadows the report's timestamp span: the
// wire shape reports the requested range keyword there.
type analyticsResponse struct {
	hunajapannu.AnalyticsReport
	TimeRange      string `json:"timeRange"`
	FilesProcessed int    `json:"filesProcessed"`
	TotalLines     int    `json:"totalLines"`
	DataSource     string `json:"dataSource"`
}

func (s *Server) getAnalytics(w http.ResponseWriter, r *http.Request) {
	timeRange, p := resolve(analyticsPolicy, r.URL.Query().Get("timeRange"))

	report, stats, err := s.svc.Analytics(r.Context(), p.hours, p.maxFiles)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	dataSource := "store"
	if stats.FilesProcessed == 0 {
		dataSource = "no_data"
	}
	writeJSON(w, http.StatusOK, analyticsResponse{
		AnalyticsReport: report,
		TimeRange:       timeRange,
		FilesProcessed:  stats.FilesProcessed,
		TotalLines:      stats.TotalLines,
		DataSource:      dataSource,
	})
}

func (s *Server) getValidate(w http.ResponseWriter, r *http.Request) {
	_, p := resolve(logsPolicy, r.URL.Query().Get("timeRange"))
	sampleSize := intParam(r, "sampleSize", validate.DefaultSampleSize)

	report, err := s.svc.Validate(r.Context(), p.hours, p.maxFiles, sampleSize)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) getTestConnection(w http.ResponseWriter, r *http.Request) {
	status, err := s.svc.Ping(r.Context())
	if err != nil {
		s.log.Warn("connection test failed", "error", err, "requestID", reqID(r.Context()))
		writeJSON(w, http.StatusInternalServerError, map[string]any{
			"success": false,
			"error":   "connection test failed",
			"message": err.Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"success":    true,
		"connection": status,
	})
}

func (s *Server) getFiles(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", defaultLogLimit)

	files, err := s.svc.Files(r.Context(), limit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"files": files,
		"count": len(files),
	})
}

func (s *Server) getHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": config.Version,
	})
}

// intParam reads a positive integer query parameter, falling back on
// missing or malformed values.
func intParam(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}
