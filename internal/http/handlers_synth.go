package http

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"deliverynav/internal/synth"
)

// The synthetic endpoints are deterministic per identity and local day:
// resolve the identity, take today in the service location, and hand both to
// the generator. No storage reads.

func (s *Server) handleDailyRoute(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	ident, err := s.resolveIdentity(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Identity resolution failed", "error", err)
		InternalServerError("identity resolution failed").Write(w)
		return
	}

	view := synth.DailyRoute(ident.ID, time.Now().In(s.loc))
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleDailySummary(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	ident, err := s.resolveIdentity(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Identity resolution failed", "error", err)
		InternalServerError("identity resolution failed").Write(w)
		return
	}

	goal := s.defaultGoal
	if v := strings.TrimSpace(r.URL.Query().Get("goal")); v != "" {
		if g, err := strconv.Atoi(v); err == nil {
			goal = g
		}
	}

	view := synth.DailySummary(ident.ID, goal, time.Now().In(s.loc))
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleHeatmap(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	ident, err := s.resolveIdentity(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Identity resolution failed", "error", err)
		InternalServerError("identity resolution failed").Write(w)
		return
	}

	view := synth.Heatmap(ident.ID, time.Now().In(s.loc))
	NewJSONResponse().Body(view).Write(w)
}

func (s *Server) handleWeeklyForecast(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	ident, err := s.resolveIdentity(r)
	if err != nil {
		slog.ErrorContext(r.Context(), "Identity resolution failed", "error", err)
		InternalServerError("identity resolution failed").Write(w)
		return
	}

	view := synth.WeeklyForecast(ident.ID, time.Now().In(s.loc))
	NewJSONResponse().Body(view).Write(w)
}
