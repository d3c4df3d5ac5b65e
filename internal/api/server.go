package api

import (
	"context"
	"net/http"
	"time"

	"lexicon/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// maxLimit bounds the limit query parameter
const maxLimit = 100

// StatisticsReader serves ranked and per-user statistics
type StatisticsReader interface {
	GetLeaderboard(ctx context.Context, limit int) (*domain.Leaderboard, error)
	GetTopUsers(ctx context.Context, metric domain.Metric, limit int) ([]domain.UserStatistics, error)
	GetUserStatistics(ctx context.Context, userID int64) (*domain.UserStatistics, error)
}

// Pinger reports storage health
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Server is the read-only leaderboard HTTP API
type Server struct {
	mx           *chi.Mux
	stats        StatisticsReader
	db           Pinger
	logger       *zap.Logger
	defaultLimit int
	timeout      time.Duration
}

// New creates the server and registers its routes
func New(stats StatisticsReader, db Pinger, defaultLimit int, logger *zap.Logger) *Server {
	s := &Server{
		mx:           chi.NewMux(),
		stats:        stats,
		db:           db,
		logger:       logger,
		defaultLimit: defaultLimit,
		timeout:      5 * time.Second,
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.mx.Use(middleware.Recoverer)
	s.mx.Use(s.RequestIDMiddleware)
	s.mx.Use(s.LoggerMiddleware)

	s.mx.Get("/healthz", s.Health)

	s.mx.Route("/api/v1", func(r chi.Router) {
		r.Get("/leaderboard", s.GetLeaderboard)
		r.Get("/leaderboard/{metric}", s.GetTopUsers)
		r.Get("/users/{userID}/statistics", s.GetUserStatistics)
	})
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mx.ServeHTTP(w, r)
}
