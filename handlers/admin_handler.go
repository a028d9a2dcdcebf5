// handlers/admin_handler.go
package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strconv"

	"github.com/gewnthar/statbel-downloader/models"
	"github.com/gewnthar/statbel-downloader/services"
)

const defaultHistoryLimit = 50

// Runner is the part of *services.Pipeline the admin API drives.
type Runner interface {
	Today() models.Date
	CheckAndDownload(ctx context.Context, today models.Date) (*services.RunReport, error)
	RefreshCalendar(ctx context.Context) (models.CalendarSnapshot, string, error)
}

// HistoryStore is the part of *database.Store the admin API reads.
type HistoryStore interface {
	Ping() error
	GetDownloadHistory(ctx context.Context, limit int) ([]models.DownloadRecord, error)
}

// AdminHandler serves the health and admin endpoints. history may be nil
// when no database is configured.
type AdminHandler struct {
	runner  Runner
	history HistoryStore
}

func NewAdminHandler(runner Runner, history HistoryStore) *AdminHandler {
	return &AdminHandler{runner: runner, history: history}
}

// Register mounts every endpoint on mux.
func (h *AdminHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/api/health", h.HealthHandler)
	mux.HandleFunc("/api/admin/check-download", h.CheckDownloadHandler)
	mux.HandleFunc("/api/admin/refresh-calendar", h.RefreshCalendarHandler)
	mux.HandleFunc("/api/admin/downloads", h.DownloadHistoryHandler)
}

// Helper to respond with JSON
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Error marshalling JSON response: %v", err)
		http.Error(w, `{"error":"Failed to marshal JSON response"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(response)
}

// Helper to respond with an error
func respondWithError(w http.ResponseWriter, code int, message string) {
	log.Printf("API Error %d: %s", code, message)
	respondWithJSON(w, code, map[string]string{"error": message})
}

// HealthHandler reports whether the service and its history database are up.
func (h *AdminHandler) HealthHandler(w http.ResponseWriter, r *http.Request) {
	if h.history != nil {
		if err := h.history.Ping(); err != nil {
			log.Printf("Health check failed: DB ping error: %v", err)
			respondWithJSON(w, http.StatusInternalServerError, map[string]string{"status": "error", "message": "database connection error"})
			return
		}
	}
	respondWithJSON(w, http.StatusOK, map[string]string{"status": "ok", "message": "statbel downloader is healthy"})
}

type outcomeResponse struct {
	Statistic   string `json:"statistic"`
	Label       string `json:"label"`
	Status      string `json:"status"`
	Reason      string `json:"reason,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`
	Path        string `json:"path,omitempty"`
	URL         string `json:"url,omitempty"`
	Error       string `json:"error,omitempty"`
}

type checkDownloadResponse struct {
	*services.RunReport
	Outcomes []outcomeResponse `json:"outcomes"`
}

// CheckDownloadHandler runs one check-and-download pass.
// Expects POST /api/admin/check-download, optionally with ?today=YYYY-MM-DD.
func (h *AdminHandler) CheckDownloadHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	today := h.runner.Today()
	if v := r.URL.Query().Get("today"); v != "" {
		parsed, err := models.ParseDate(v)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid 'today' parameter '%s'. Use YYYY-MM-DD.", v))
			return
		}
		today = parsed
	}

	report, err := h.runner.CheckAndDownload(r.Context(), today)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Run aborted: %v", err))
		return
	}

	resp := checkDownloadResponse{RunReport: report, Outcomes: make([]outcomeResponse, len(report.Outcomes))}
	for i, out := range report.Outcomes {
		resp.Outcomes[i] = outcomeResponse{
			Statistic:   out.Statistic,
			Label:       out.Label,
			Status:      string(out.Status),
			Reason:      out.Reason,
			ReleaseDate: out.ReleaseDate.String(),
			Path:        out.Path,
			URL:         out.URL,
		}
		if out.Err != nil {
			resp.Outcomes[i].Error = out.Err.Error()
		}
	}
	respondWithJSON(w, http.StatusOK, resp)
}

// RefreshCalendarHandler scrapes the calendar and stores a new snapshot.
// Expects POST /api/admin/refresh-calendar.
func (h *AdminHandler) RefreshCalendarHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		respondWithError(w, http.StatusMethodNotAllowed, "Only POST method is allowed")
		return
	}

	snapshot, path, err := h.runner.RefreshCalendar(r.Context())
	if err != nil {
		respondWithError(w, http.StatusBadGateway, fmt.Sprintf("Failed to refresh calendar: %v", err))
		return
	}
	respondWithJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Calendar refreshed successfully.",
		"path":    path,
		"year":    snapshot.Year,
		"entries": snapshot.TotalEntries,
	})
}

// DownloadHistoryHandler lists recorded downloads, newest first.
// Expects GET /api/admin/downloads, optionally with ?limit=N.
func (h *AdminHandler) DownloadHistoryHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		respondWithError(w, http.StatusMethodNotAllowed, "Only GET method is allowed")
		return
	}
	if h.history == nil {
		respondWithError(w, http.StatusNotFound, "Download history is disabled (no database configured)")
		return
	}

	limit := defaultHistoryLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid 'limit' parameter '%s'.", v))
			return
		}
		limit = n
	}

	records, err := h.history.GetDownloadHistory(r.Context(), limit)
	if err != nil {
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to read download history: %v", err))
		return
	}
	if records == nil {
		records = []models.DownloadRecord{}
	}
	respondWithJSON(w, http.StatusOK, records)
}
