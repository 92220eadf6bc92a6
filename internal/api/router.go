package api

import (
	"net/http"
	"time"

	"codeclash/internal/api/handler"
	"codeclash/internal/app/service"
	"codeclash/internal/common/security"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	authService *service.AuthService,
	contestService *service.ContestService,
	participationService *service.ParticipationService,
	judgeService *service.JudgeService,
	leaderboardService *service.LeaderboardService,
) http.Handler {
	r := chi.NewRouter()

	// Base Middlewares
	r.Use(chiMiddleware.RequestID)
	r.Use(chiMiddleware.RealIP)
	r.Use(chiMiddleware.Logger)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Timeout(60 * time.Second))

	// Verifies token, puts claims in context ("Authorization: Bearer T").
	r.Use(jwtauth.Verifier(security.TokenAuth))

	// Public health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	// API v1 Routes
	r.Route("/api/v1", func(v1 chi.Router) {
		authHandler := handler.NewAuthHandler(authService)
		v1.Group(func(publicAuth chi.Router) {
			authHandler.RegisterRoutes(publicAuth)
		})

		// Contest routes: registry reads, join, admin writes
		contestHandler := handler.NewContestHandler(contestService, participationService)
		v1.Route("/contests", func(contests chi.Router) {
			contests.Group(contestHandler.RegisterRoutes)

			// Judging and leaderboard live under the contest tree
			submissionHandler := handler.NewSubmissionHandler(judgeService)
			contests.Group(submissionHandler.RegisterRoutes)

			leaderboardHandler := handler.NewLeaderboardHandler(leaderboardService)
			contests.Group(leaderboardHandler.RegisterRoutes)
		})
	})

	return r
}
