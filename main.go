package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"spark-feed/config"
	"spark-feed/database"
	"spark-feed/handlers"
	"spark-feed/logging"
	"spark-feed/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logging.Info().Msg("No .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})
	gin.SetMode(cfg.Server.Mode)

	db, err := database.InitDB(cfg.Database)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize database")
	}
	sqlDB, err := db.DB()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to access database handle")
	}
	defer sqlDB.Close()

	if cfg.Database.Seed {
		if err := database.LoadSeedData(db, cfg.Database.SeedFile); err != nil {
			logging.Fatal().Err(err).Msg("Failed to load seed data")
		}
		if err := database.SeedInteractions(db, time.Now()); err != nil {
			logging.Warn().Err(err).Msg("Failed to seed sample interactions")
		}
	}

	// Stores
	users := database.NewUserDirectory(db)
	content := database.NewContentStore(db, users)
	interactions := database.NewInteractionStore(db)

	// Optional narrator
	var narrator *services.DigestNarrator
	var digestNarrator services.Narrator
	if cfg.Digest.NarrativeEnabled {
		narrator, err = services.NewDigestNarrator(cfg.LLM)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize digest narrator")
		}
		digestNarrator = narrator
		logging.Info().Str("provider", cfg.LLM.Provider).Str("model", cfg.LLM.NarrativeModel).Msg("Digest narrative enabled")
	}

	// Services
	retriever := services.NewContentRetriever(content, cfg, nil)
	assembler := services.NewFeedAssembler(retriever, services.NewRelevanceScorer(nil), interactions)
	profiles := services.NewProfileBuilder(content, interactions, users, nil)
	digests := services.NewDailyDigestAggregator(content, interactions, digestNarrator, cfg.Feed.RevisitConcurrency, nil)
	recorder := services.NewInteractionService(interactions, nil)

	var scheduler *services.Scheduler
	if cfg.Jobs.Enabled {
		scheduler, err = services.NewScheduler(cfg.Jobs, content, narrator, cfg.Database.QueryTimeout)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to create scheduler")
		}
		// expire whatever lapsed while the service was down
		if _, err := services.ExpireSpots(context.Background(), content, time.Now()); err != nil {
			logging.Warn().Err(err).Msg("Initial spot expiry sweep failed")
		}
		scheduler.Start()
	}

	var limiter *handlers.RateLimiter
	if cfg.RateLimit.Enabled {
		limiter = handlers.NewRateLimiter(cfg.RateLimit)
		defer limiter.Stop()
	}

	router := handlers.SetupRoutes(handlers.Router{
		Feed:         handlers.NewFeedHandler(assembler, profiles, digests),
		Interactions: handlers.NewInteractionHandler(recorder),
		RateLimiter:  limiter,
		DB:           sqlDB,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logging.Info().Str("addr", srv.Addr).Msg("Spark feed server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("Server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logging.Info().Msg("Shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logging.Error().Err(err).Msg("Server forced to shutdown")
	}
	if scheduler != nil {
		scheduler.Stop(ctx)
	}
	logging.Info().Msg("Server exited")
}
