package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/competitive-edge/backend/config"
	httpDelivery "github.com/competitive-edge/backend/internal/delivery/http"
	"github.com/competitive-edge/backend/internal/infrastructure/ai"
	"github.com/competitive-edge/backend/internal/infrastructure/cache"
	"github.com/competitive-edge/backend/internal/infrastructure/crawler"
	"github.com/competitive-edge/backend/internal/infrastructure/postgres"
	"github.com/competitive-edge/backend/internal/usecase"
)

func main() {
	// .env is optional; real deployments inject environment variables
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	setupLogger(cfg.Server.Environment)

	log.Info().
		Str("environment", cfg.Server.Environment).
		Str("port", cfg.Server.Port).
		Msg("starting competitive-edge backend")

	db, err := postgres.Open(cfg.Database.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	aiClient, err := ai.NewClient(context.Background(), cfg.AI.APIKey, cfg.AI.ExtractionModel, cfg.AI.EmbeddingModel)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize AI client")
	}
	defer aiClient.Close()

	crawlClient := crawler.NewClient(crawler.Config{
		Timeout:           cfg.Crawler.Timeout,
		RequestsPerSecond: cfg.Crawler.RequestsPerSecond,
		Burst:             cfg.Crawler.Burst,
		MaxRetries:        cfg.Crawler.MaxRetries,
	})

	candidateCache := cache.NewCandidateCache(cfg.Discovery.CacheTTL)

	productRepo := postgres.NewProductRepository(db)
	listingRepo := postgres.NewListingRepository(db)
	historyRepo := postgres.NewPriceHistoryRepository(db)

	discoveryService := usecase.NewDiscoveryService(
		crawlClient,
		aiClient,
		aiClient,
		candidateCache,
		productRepo,
		listingRepo,
		historyRepo,
	)
	comparisonService := usecase.NewComparisonService()

	handler := httpDelivery.NewHandler(
		discoveryService,
		comparisonService,
		productRepo,
		listingRepo,
		historyRepo,
		cfg.Discovery.DefaultMaxResults,
	)

	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Info().Str("addr", addr).Msg("server listening")
	if err := router.Run(addr); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

func setupLogger(environment string) {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if environment != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
}
