package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"nfl_dashboard/aggregator/internal/models"

	"github.com/rs/zerolog/log"
)

// Service is the pipeline as seen by the handlers
type Service interface {
	Refresh(ctx context.Context, week, season int) models.RefreshResult
	CurrentWeek(ctx context.Context) (season, week int)
	GetGamesWithDetails(ctx context.Context, week, season int, f models.Filters) ([]models.GameWithDetails, error)
	GetWeekSummary(ctx context.Context, week, season int) (models.WeekSummary, error)
	GetAllTeams(ctx context.Context) ([]models.Team, error)
	GetAccuracy(ctx context.Context, season int) (models.Accuracy, error)
}

// HealthFunc reports whether a dependency is usable
type HealthFunc func(ctx context.Context) error

// Handler contains dependencies for HTTP handlers
type Handler struct {
	svc    Service
	health HealthFunc
}

// NewHandler creates a new handler. health may be nil.
func NewHandler(svc Service, health HealthFunc) *Handler {
	return &Handler{svc: svc, health: health}
}

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if h.health != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.health(ctx); err != nil {
			respondError(w, http.StatusServiceUnavailable, "store unhealthy", err)
			return
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "nfl-aggregator",
	})
}

// GetTeams lists every known team
// GET /api/teams
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	teams, err := h.svc.GetAllTeams(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve teams", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"teams": teams,
		"count": len(teams),
	})
}

// GetGames returns the composed view of a week
// GET /api/games?week&season&highProbability&divisional&primeTime&playoffImplications
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	season, week, err := h.weekParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	filters := models.Filters{
		HighProbability:     parseBoolParam(r, "highProbability"),
		Divisional:          parseBoolParam(r, "divisional"),
		PrimeTime:           parseBoolParam(r, "primeTime"),
		PlayoffImplications: parseBoolParam(r, "playoffImplications"),
	}

	games, err := h.svc.GetGamesWithDetails(r.Context(), week, season, filters)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to retrieve games", err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"week":    week,
		"season":  season,
		"filters": filters,
		"games":   games,
		"count":   len(games),
	})
}

// GetSummary returns the week summary
// GET /api/summary?week&season
func (h *Handler) GetSummary(w http.ResponseWriter, r *http.Request) {
	season, week, err := h.weekParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	summary, err := h.svc.GetWeekSummary(r.Context(), week, season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute summary", err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// GetAccuracy scores stored predictions for a season
// GET /api/accuracy?season
func (h *Handler) GetAccuracy(w http.ResponseWriter, r *http.Request) {
	season := parseIntParam(r, "season", 0)
	if season <= 0 {
		season, _ = h.svc.CurrentWeek(r.Context())
	}

	acc, err := h.svc.GetAccuracy(r.Context(), season)
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to compute accuracy", err)
		return
	}

	respondJSON(w, http.StatusOK, acc)
}

// Refresh runs one refresh and reports its per-stage counts
// POST /api/refresh?week&season
func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	season, week, err := h.weekParams(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	result := h.svc.Refresh(r.Context(), week, season)
	respondJSON(w, http.StatusOK, result)
}

// weekParams reads week and season, defaulting to the current ones
func (h *Handler) weekParams(r *http.Request) (season, week int, err error) {
	week = parseIntParam(r, "week", 0)
	season = parseIntParam(r, "season", 0)
	if week == 0 || season == 0 {
		curSeason, curWeek := h.svc.CurrentWeek(r.Context())
		if week == 0 {
			week = curWeek
		}
		if season == 0 {
			season = curSeason
		}
	}
	if week < 1 || week > 18 {
		return 0, 0, fmt.Errorf("week must be between 1 and 18, got %d", week)
	}
	if season < 1 {
		return 0, 0, fmt.Errorf("invalid season %d", season)
	}
	return season, week, nil
}

func parseIntParam(r *http.Request, param string, defaultValue int) int {
	valueStr := r.URL.Query().Get(param)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return -1
	}

	return value
}

func parseBoolParam(r *http.Request, param string) bool {
	v, err := strconv.ParseBool(r.URL.Query().Get(param))
	return err == nil && v
}

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

func respondError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Error().Err(err).Int("status", status).Msg(message)
	}

	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
