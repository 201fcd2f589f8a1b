package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/nutridex/backend/config"
	httpDelivery "github.com/nutridex/backend/internal/delivery/http"
	"github.com/nutridex/backend/internal/domain"
	"github.com/nutridex/backend/internal/infrastructure/cache"
	"github.com/nutridex/backend/internal/infrastructure/fatsecret"
	"github.com/nutridex/backend/internal/infrastructure/openfoodfacts"
	"github.com/nutridex/backend/internal/infrastructure/store"
	"github.com/nutridex/backend/internal/usecase"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	log.Printf("Starting Nutridex Backend v1.0.0")
	log.Printf("Environment: %s", cfg.Server.Environment)
	log.Printf("Port: %s", cfg.Server.Port)

	// Community product store
	communityStore, err := store.Open(cfg.Store.DSN)
	if err != nil {
		log.Fatalf("Failed to open community store: %v", err)
	}
	log.Printf("Community store: %s", cfg.Store.DSN)

	// Cache backend
	var productCache domain.CacheRepository
	switch cfg.Cache.Type {
	case "redis":
		redisCache, err := cache.NewRedisCache(context.Background(), cfg.Cache.RedisURL)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		productCache = redisCache
	default:
		productCache = cache.NewMemoryCache()
	}
	log.Printf("Cache: %s (TTL %s)", cfg.Cache.Type, cfg.Cache.TTL)

	// Provider adapters
	offClient := openfoodfacts.NewClient(cfg.Providers.OpenFoodFacts.BaseURL, cfg.Providers.OpenFoodFacts.UserAgent)

	var augmenter domain.TextSearcher
	if cfg.Providers.FatSecret.ClientID != "" {
		fsClient := fatsecret.NewClient(
			cfg.Providers.FatSecret.ClientID,
			cfg.Providers.FatSecret.ClientSecret,
			cfg.Providers.FatSecret.TokenURL,
			cfg.Providers.FatSecret.APIURL,
		)
		if cfg.Server.Environment == "development" {
			fsClient.SetDebug(true)
		}
		augmenter = fsClient
		log.Printf("FatSecret augmentation enabled (threshold %d)", cfg.Search.AugmentThreshold)
	} else {
		log.Printf("FatSecret augmentation disabled: no credentials configured")
	}

	if cfg.Server.Environment == "development" {
		offClient.SetDebug(true)
	}

	// Usecase layer. The primary provider leads the fan-out; approved
	// community products join it as a second always-on source.
	searchService := usecase.NewSearchService(
		offClient,
		[]domain.TextSearcher{offClient, communityStore},
		augmenter,
		productCache,
		usecase.SearchConfig{
			PageSize:         cfg.Search.PageSize,
			AugmentThreshold: cfg.Search.AugmentThreshold,
			CallTimeout:      cfg.Search.CallTimeout,
			CacheTTL:         cfg.Cache.TTL,
		},
	)
	communityService := usecase.NewCommunityService(communityStore)
	diaryService := usecase.NewDiaryService()

	handler := httpDelivery.NewHandler(searchService, communityService, diaryService)
	router := httpDelivery.SetupRouter(cfg, handler)

	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("Server listening on %s", addr)

	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

func init() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)
	log.SetOutput(os.Stdout)
}
