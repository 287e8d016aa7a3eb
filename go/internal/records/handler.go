package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/mcdev12/splittimer/go/clients/records_client"
	"github.com/mcdev12/splittimer/go/internal/models"
	"github.com/rs/zerolog/log"
)

const maxSubmitBody = 1 << 20

// RecordsApp defines what the handler needs from the records application
type RecordsApp interface {
	SubmitRun(ctx context.Context, req SubmitRunRequest) (*SubmitRunResult, error)
	FastestSplitTimes(ctx context.Context, trailName string) ([]float64, error)
	Leaderboard(ctx context.Context, trailName string, limit int) (*models.Leaderboard, error)
}

// Handler serves the records HTTP API
type Handler struct {
	app RecordsApp
}

// NewHandler creates a new records handler
func NewHandler(app RecordsApp) *Handler {
	return &Handler{app: app}
}

// RegisterRoutes registers the records endpoints
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc(records_client.FastestTimeEndpoint, h.HandleGetFastestTime)
	mux.HandleFunc(records_client.SubmitTimeEndpoint, h.HandleSubmitTime)
	mux.HandleFunc(records_client.LeaderboardEndpoint, h.HandleGetLeaderboard)
}

// HandleGetFastestTime handles GET /API/DESCENDERS-GET-FASTEST-TIME?trail_name=...
func (h *Handler) HandleGetFastestTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	trailName := r.URL.Query().Get(records_client.TrailNameParam)
	if trailName == "" {
		http.Error(w, "trail_name is required", http.StatusBadRequest)
		return
	}

	times, err := h.app.FastestSplitTimes(r.Context(), trailName)
	if errors.Is(err, ErrInvalidRun) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("trail", trailName).Msg("failed to get fastest times")
		http.Error(w, "Failed to get fastest times", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, models.FastestSplitTimes{FastestSplitTimes: times})
}

// HandleSubmitTime handles POST /API/DESCENDERS-SUBMIT-TIME
func (h *Handler) HandleSubmitTime(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req SubmitRunRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxSubmitBody)).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.app.SubmitRun(r.Context(), req)
	if errors.Is(err, ErrInvalidRun) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("trail", req.TrailName).Msg("failed to submit run")
		http.Error(w, "Failed to submit run", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, result)
}

// HandleGetLeaderboard handles GET /API/DESCENDERS-GET-LEADERBOARD?trail_name=...&limit=...
func (h *Handler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	query := r.URL.Query()
	trailName := query.Get(records_client.TrailNameParam)
	if trailName == "" {
		http.Error(w, "trail_name is required", http.StatusBadRequest)
		return
	}

	limit := 0
	if raw := query.Get(records_client.LimitParam); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			http.Error(w, "limit must be a non-negative integer", http.StatusBadRequest)
			return
		}
		limit = n
	}

	board, err := h.app.Leaderboard(r.Context(), trailName, limit)
	if errors.Is(err, ErrInvalidRun) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Error().Err(err).Str("trail", trailName).Msg("failed to get leaderboard")
		http.Error(w, "Failed to get leaderboard", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, board)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to encode response")
	}
}
