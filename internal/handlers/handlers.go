package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"github.com/XavierBriggs/fortuna/services/odds-board/internal/digest"
	"github.com/XavierBriggs/fortuna/services/odds-board/internal/schedule"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/contracts"
	"github.com/XavierBriggs/fortuna/services/odds-board/pkg/models"
)

// ScheduleService is the schedule engine as seen by the HTTP layer
type ScheduleService interface {
	FetchSchedule(ctx context.Context, league string, target time.Time) schedule.Result
	Context() string
	ContextFor(league string) string
	Location() *time.Location
}

// LeagueRegistry lists the leagues being served
type LeagueRegistry interface {
	GetModule(sportKey string) (contracts.LeagueModule, error)
	EnabledLeagues() []contracts.LeagueModule
}

// Handler contains dependencies for HTTP handlers
type Handler struct {
	schedule ScheduleService
	leagues  LeagueRegistry
	logger   zerolog.Logger
	now      func() time.Time
}

// NewHandler creates a new handler with dependencies
func NewHandler(svc ScheduleService, leagues LeagueRegistry, logger zerolog.Logger) *Handler {
	return &Handler{
		schedule: svc,
		leagues:  leagues,
		logger:   logger.With().Str("component", "handlers").Logger(),
		now:      time.Now,
	}
}

// ErrorResponse is the body of every non-2xx JSON response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Code    int    `json:"code"`
}

// ScheduleResponse is the body of GET /api/v1/schedule
type ScheduleResponse struct {
	League    string                 `json:"league"`
	Date      string                 `json:"date"`
	Source    schedule.Source        `json:"source"`
	FetchedAt *time.Time             `json:"fetched_at,omitempty"`
	Games     []models.CanonicalGame `json:"games"`
	Count     int                    `json:"count"`
}

// LeagueInfo describes one served league
type LeagueInfo struct {
	SportKey     string `json:"sport_key"`
	DisplayName  string `json:"display_name"`
	SpreadLabel  string `json:"spread_label"`
	HasStandings bool   `json:"has_standings"`
}

// HealthCheck returns the health status of the service
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"service":   "odds-board",
		"leagues":   len(h.leagues.EnabledLeagues()),
	})
}

// GetSchedule returns one league's games for a calendar day
// Query params: league (default: first enabled), date (YYYY-MM-DD, default: today)
func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	league, ok := h.resolveLeague(w, r)
	if !ok {
		return
	}

	loc := h.schedule.Location()
	target := h.now().In(loc)
	if date := r.URL.Query().Get("date"); date != "" {
		parsed, err := time.ParseInLocation("2006-01-02", date, loc)
		if err != nil {
			respondError(w, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		target = parsed
	}

	res := h.schedule.FetchSchedule(r.Context(), league, target)

	resp := ScheduleResponse{
		League: res.League,
		Date:   res.Date,
		Source: res.Source,
		Games:  res.Games,
		Count:  len(res.Games),
	}
	if resp.Games == nil {
		resp.Games = []models.CanonicalGame{}
	}
	if !res.FetchedAt.IsZero() {
		fetchedAt := res.FetchedAt.UTC()
		resp.FetchedAt = &fetchedAt
	}

	status := http.StatusOK
	if res.Source == schedule.SourceFailed {
		status = http.StatusServiceUnavailable
		h.logger.Warn().Str("league", league).Str("date", res.Date).Msg("schedule unavailable")
	}
	respondJSON(w, status, resp)
}

// GetContext returns the chat digest and its preamble
// Query params: league (optional; without it the most recent digest of any league)
func (h *Handler) GetContext(w http.ResponseWriter, r *http.Request) {
	league := r.URL.Query().Get("league")

	var text string
	if league == "" {
		text = h.schedule.Context()
	} else {
		if _, err := h.leagues.GetModule(league); err != nil {
			respondError(w, http.StatusNotFound, "league not found")
			return
		}
		text = h.schedule.ContextFor(league)
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"league":   league,
		"context":  text,
		"preamble": digest.Preamble(text),
	})
}

// GetLeagues lists the enabled leagues
func (h *Handler) GetLeagues(w http.ResponseWriter, r *http.Request) {
	modules := h.leagues.EnabledLeagues()

	leagues := make([]LeagueInfo, 0, len(modules))
	for _, m := range modules {
		leagues = append(leagues, LeagueInfo{
			SportKey:     m.GetSportKey(),
			DisplayName:  m.GetDisplayName(),
			SpreadLabel:  m.GetSpreadLabel(),
			HasStandings: m.GetStandingsPath() != "",
		})
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"leagues": leagues,
		"count":   len(leagues),
	})
}

func (h *Handler) resolveLeague(w http.ResponseWriter, r *http.Request) (string, bool) {
	league := r.URL.Query().Get("league")
	if league == "" {
		enabled := h.leagues.EnabledLeagues()
		if len(enabled) == 0 {
			respondError(w, http.StatusServiceUnavailable, "no leagues enabled")
			return "", false
		}
		return enabled[0].GetSportKey(), true
	}

	if _, err := h.leagues.GetModule(league); err != nil {
		respondError(w, http.StatusNotFound, "league not found")
		return "", false
	}
	return league, true
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, ErrorResponse{
		Error:   http.StatusText(status),
		Message: message,
		Code:    status,
	})
}
