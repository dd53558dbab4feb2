package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/ignite/delivery-diagnostics/internal/report"
)

// Handlers contains all HTTP handlers
type Handlers struct {
	reports *report.Service
}

// NewHandlers creates a new Handlers instance
func NewHandlers(reports *report.Service) *Handlers {
	return &Handlers{reports: reports}
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondLoadError maps pipeline load failures to HTTP responses. Missing
// input files and missing identifier columns are configuration/deployment
// problems, so they surface as 503 with the offending path.
func respondLoadError(w http.ResponseWriter, err error) {
	var mf *report.MissingFileError
	var mc *report.MissingColumnError
	switch {
	case errors.As(err, &mf):
		respondError(w, http.StatusServiceUnavailable, mf.Error())
	case errors.As(err, &mc):
		respondError(w, http.StatusServiceUnavailable, mc.Error())
	default:
		respondError(w, http.StatusInternalServerError, fmt.Sprintf("report generation failed: %v", err))
	}
}

// HealthCheck returns service liveness
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now(),
	})
}

// GetSummary returns the aggregate metrics and the per-status frequency
// table that the dashboard renders as headline numbers and a donut chart.
func (h *Handlers) GetSummary(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Current()
	if err != nil {
		respondLoadError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"report_id":      rep.ID,
		"generated_at":   rep.GeneratedAt,
		"total_contacts": rep.TotalContacts,
		"successful":     rep.SuccessfulCount,
		"failures":       rep.FailureCount,
		"statuses":       rep.Statuses,
		"counts":         rep.Counts,
	})
}

// GetEntries returns the full per-contact report table. Supports optional
// limit/offset query parameters for large lists.
func (h *Handlers) GetEntries(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Current()
	if err != nil {
		respondLoadError(w, err)
		return
	}

	offset := parseIntParam(r, "offset", 0)
	limit := parseIntParam(r, "limit", 0)

	entries := rep.Entries
	if offset > len(entries) {
		offset = len(entries)
	}
	entries = entries[offset:]
	if limit > 0 && limit < len(entries) {
		entries = entries[:limit]
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"report_id": rep.ID,
		"total":     rep.TotalContacts,
		"offset":    offset,
		"count":     len(entries),
		"entries":   entries,
	})
}

// GetLookup resolves one email address to its delivery status. An address
// absent from the original contact list is a normal not-found outcome
// (200, found=false), never an error.
func (h *Handlers) GetLookup(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if email == "" {
		respondError(w, http.StatusBadRequest, "email query parameter is required")
		return
	}

	rep, err := h.reports.Current()
	if err != nil {
		respondLoadError(w, err)
		return
	}

	result := rep.Lookup(email)
	if !result.Found {
		respondJSON(w, http.StatusOK, map[string]interface{}{
			"found":   false,
			"message": fmt.Sprintf("%q was not found in the original contact list", email),
		})
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ExportCSV streams the full report as a downloadable CSV file.
func (h *Handlers) ExportCSV(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Current()
	if err != nil {
		respondLoadError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="full_delivery_diagnostics.csv"`)
	if err := rep.WriteCSV(w); err != nil {
		// Headers are already out; nothing useful left to send.
		return
	}
}

// TriggerRefresh recomputes the report from the input files.
func (h *Handlers) TriggerRefresh(w http.ResponseWriter, r *http.Request) {
	rep, err := h.reports.Refresh()
	if err != nil {
		respondLoadError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"report_id":      rep.ID,
		"generated_at":   rep.GeneratedAt,
		"total_contacts": rep.TotalContacts,
	})
}

func parseIntParam(r *http.Request, name string, fallback int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
