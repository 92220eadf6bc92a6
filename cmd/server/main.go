package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codeclash/internal/api"
	"codeclash/internal/app/judge"
	"codeclash/internal/app/service"
	"codeclash/internal/common/clock"
	"codeclash/internal/common/security"
	"codeclash/internal/domain/repository"
	"codeclash/internal/platform/cache"
	"codeclash/internal/platform/config"
	"codeclash/internal/platform/database"
)

func main() {
	// 1. Load Configuration
	config.Load()
	fmt.Println("Configuration loaded.")

	// 2. Initialize JWT
	security.InitJWT()
	fmt.Println("JWT initialized.")

	// 3. Initialize Database
	database.Connect()
	defer database.Close()
	fmt.Println("Database connected.")

	// 4. Initialize Redis
	cache.ConnectRedis()
	defer cache.CloseRedis()
	fmt.Println("Redis connected.")

	// 5. Initialize Repositories
	userRepo := repository.NewPgUserRepository(database.DB)
	contestRepo := repository.NewPgContestRepository(database.DB)
	participantRepo := repository.NewPgParticipantRepository(database.DB)
	submissionRepo := repository.NewPgSubmissionRepository(database.DB)

	// 6. Initialize the executor client behind a bounded pool
	executor := judge.NewPool(
		judge.NewClient(judge.ClientOptions{
			BaseURL:          config.AppConfig.ExecutorBaseURL,
			MaxRetries:       config.AppConfig.ExecutorMaxRetries,
			RetryBackoff:     config.AppConfig.ExecutorRetryBackoff,
			CompileAllowance: time.Duration(config.AppConfig.ExecutorCompileAllowMs) * time.Millisecond,
		}),
		config.AppConfig.ExecutorMaxConcurrent,
	)

	// 7. Initialize Services
	clk := clock.System()
	authService := service.NewAuthService(userRepo)
	contestService := service.NewContestService(contestRepo, clk, database.DB)
	participationService := service.NewParticipationService(participantRepo, contestRepo, clk)
	judgeService := service.NewJudgeService(contestRepo, participantRepo, submissionRepo, executor, clk)
	leaderboardService := service.NewLeaderboardService(
		contestRepo, participantRepo, submissionRepo, cache.RDB,
		config.AppConfig.PenaltyPerWrongAttempt,
		config.AppConfig.LeaderboardCacheTTL,
	)

	// 8. Initialize Router & HTTP Server
	router := api.NewRouter(authService, contestService, participationService, judgeService, leaderboardService)

	server := &http.Server{
		Addr:         ":" + config.AppConfig.APIPort,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 120 * time.Second, // submissions are judged within the request
		IdleTimeout:  120 * time.Second,
	}

	// 9. Graceful Shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Printf("Server starting on port %s", config.AppConfig.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", config.AppConfig.APIPort, err)
		}
	}()
	log.Println("Server started successfully.")

	<-stop // Wait for interrupt signal

	log.Println("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server shutdown failed: %v", err)
	}

	log.Println("Server stopped gracefully.")
}
