package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"lexicon/internal/domain"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

var errInvalidLimit = fmt.Errorf("limit must be an integer between 1 and %d", maxLimit)

// GetLeaderboardResponse mirrors domain.Leaderboard with the limit applied
type GetLeaderboardResponse struct {
	Limit int `json:"limit"`
	*domain.Leaderboard
}

// GetTopUsersResponse is a single ranking
type GetTopUsersResponse struct {
	Metric domain.Metric           `json:"metric"`
	Limit  int                     `json:"limit"`
	Users  []domain.UserStatistics `json:"users"`
}

func (s *Server) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())

	limit, err := s.parseLimit(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid limit", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	board, err := s.stats.GetLeaderboard(ctx, limit)
	if err != nil {
		logger.Error("leaderboard error: service error", zap.Error(err))
		writeErrorResponse(w, http.StatusInternalServerError, "internal error while building leaderboard", nil)
		return
	}

	writeJSONResponse(w, http.StatusOK, GetLeaderboardResponse{Limit: limit, Leaderboard: board})
}

func (s *Server) GetTopUsers(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())

	metric, err := domain.ParseMetric(chi.URLParam(r, "metric"))
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "unknown metric", err)
		return
	}
	limit, err := s.parseLimit(r)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid limit", err)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	users, err := s.stats.GetTopUsers(ctx, metric, limit)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidMetric) {
			writeErrorResponse(w, http.StatusBadRequest, "unknown metric", err)
			return
		}
		logger.Error("top users error: service error", zap.Error(err), zap.String("metric", string(metric)))
		writeErrorResponse(w, http.StatusInternalServerError, "internal error while ranking users", nil)
		return
	}

	writeJSONResponse(w, http.StatusOK, GetTopUsersResponse{Metric: metric, Limit: limit, Users: users})
}

func (s *Server) GetUserStatistics(w http.ResponseWriter, r *http.Request) {
	logger := GetLoggerFromCtx(r.Context())

	userID, err := strconv.ParseInt(chi.URLParam(r, "userID"), 10, 64)
	if err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "invalid user id", nil)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	stats, err := s.stats.GetUserStatistics(ctx, userID)
	if err != nil {
		logger.Error("user statistics error: service error", zap.Error(err), zap.Int64("user_id", userID))
		writeErrorResponse(w, http.StatusInternalServerError, "internal error while reading statistics", nil)
		return
	}

	writeJSONResponse(w, http.StatusOK, stats)
}

func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()
	if err := s.db.PingContext(ctx); err != nil {
		GetLoggerFromCtx(r.Context()).Warn("health check failed", zap.Error(err))
		writeErrorResponse(w, http.StatusServiceUnavailable, "database unavailable", nil)
		return
	}
	writeJSONResponse(w, http.StatusOK, map[string]any{"status": "ok"})
}

// parseLimit reads ?limit=N, falling back to the configured default
func (s *Server) parseLimit(r *http.Request) (int, error) {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return s.defaultLimit, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 1 || limit > maxLimit {
		return 0, errInvalidLimit
	}
	return limit, nil
}
