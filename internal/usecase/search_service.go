package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/nutridex/backend/internal/domain"
	"github.com/nutridex/backend/internal/normalize"
	"golang.org/x/sync/errgroup"
)

// SearchConfig holds configuration for the search service
type SearchConfig struct {
	// PageSize caps the final ranked result list.
	PageSize int
	// AugmentThreshold triggers the quota-limited augmentation provider
	// when the primary returns fewer results than this.
	AugmentThreshold int
	// CallTimeout bounds each individual provider call.
	CallTimeout time.Duration
	// CacheTTL bounds how long resolved barcodes are kept.
	CacheTTL time.Duration
}

// SearchService is the aggregator: it fans a request out to the
// provider adapters, absorbs per-provider failures, and merges and
// ranks whatever came back.
type SearchService struct {
	resolver         domain.BarcodeResolver
	searchers        []domain.TextSearcher
	augmenter        domain.TextSearcher
	cache            domain.CacheRepository
	pageSize         int
	augmentThreshold int
	callTimeout      time.Duration
	cacheTTL         time.Duration
}

// NewSearchService creates a search service. searchers are the always-on
// text sources, ordered: the primary provider must come first because
// the augmentation rule keys off its result count. augmenter may be nil.
func NewSearchService(
	resolver domain.BarcodeResolver,
	searchers []domain.TextSearcher,
	augmenter domain.TextSearcher,
	cache domain.CacheRepository,
	config SearchConfig,
) *SearchService {
	pageSize := config.PageSize
	if pageSize <= 0 {
		pageSize = 20
	}
	threshold := config.AugmentThreshold
	if threshold <= 0 {
		threshold = 10
	}
	callTimeout := config.CallTimeout
	if callTimeout <= 0 {
		callTimeout = 5 * time.Second
	}
	cacheTTL := config.CacheTTL
	if cacheTTL <= 0 {
		cacheTTL = 24 * time.Hour
	}

	return &SearchService{
		resolver:         resolver,
		searchers:        searchers,
		augmenter:        augmenter,
		cache:            cache,
		pageSize:         pageSize,
		augmentThreshold: threshold,
		callTimeout:      callTimeout,
		cacheTTL:         cacheTTL,
	}
}

// ResolveBarcode resolves a single product by barcode. The code is
// validated and aligned to the 13-digit space before any external call.
// Given unchanged upstream data, repeated calls return byte-identical
// records via the cache.
func (s *SearchService) ResolveBarcode(ctx context.Context, code string) (*domain.NormalizedProduct, error) {
	canonical, err := normalize.ValidateBarcode(code)
	if err != nil {
		return nil, err
	}

	cacheKey := "product:" + canonical
	if cached := s.getCachedProduct(ctx, cacheKey); cached != nil {
		return cached, nil
	}

	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	product, err := s.resolver.ResolveByCode(callCtx, canonical)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.ErrProductNotFound
		}
		// Provider failure degrades to not-found rather than surfacing
		// a transient upstream error to the caller.
		log.Printf("[SEARCH] barcode %s: provider failed: %v", canonical, err)
		return nil, domain.ErrProductNotFound
	}

	s.setCachedProduct(ctx, cacheKey, product)
	return product, nil
}

// SearchProducts runs the text-search path: concurrent fan-out over the
// always-on sources, conditional augmentation, relevance ranking, and a
// final cap. A provider failure contributes nothing; all providers
// failing on a valid query yields an empty list, not an error.
func (s *SearchService) SearchProducts(ctx context.Context, query string, limit int) ([]domain.NormalizedProduct, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("%w: query is required", domain.ErrInvalidInput)
	}
	if limit <= 0 || limit > s.pageSize {
		limit = s.pageSize
	}

	// One result slot per searcher keeps merge order deterministic
	// regardless of which call finishes first.
	slots := make([][]domain.NormalizedProduct, len(s.searchers))

	g, groupCtx := errgroup.WithContext(ctx)
	for i, searcher := range s.searchers {
		g.Go(func() error {
			slots[i] = s.callSearcher(groupCtx, searcher, query, limit)
			return nil
		})
	}
	// Workers never return errors; failures are absorbed per provider.
	_ = g.Wait()

	merged := make([]domain.NormalizedProduct, 0, limit)
	for _, slot := range slots {
		merged = append(merged, slot...)
	}

	// The primary occupies slot 0; only bother the quota-limited
	// augmenter when it under-returned. No sources at all counts as
	// under-returning.
	if s.augmenter != nil && (len(slots) == 0 || len(slots[0]) < s.augmentThreshold) {
		merged = append(merged, s.callSearcher(ctx, s.augmenter, query, limit)...)
	}

	rankByRelevance(query, merged)
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

// callSearcher runs one bounded provider call, absorbing not-found and
// provider errors into an empty contribution.
func (s *SearchService) callSearcher(ctx context.Context, searcher domain.TextSearcher, query string, limit int) []domain.NormalizedProduct {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()

	results, err := searcher.SearchByText(callCtx, query, limit)
	if err != nil {
		if !errors.Is(err, domain.ErrProductNotFound) {
			log.Printf("[SEARCH] %s: query %q failed: %v", searcher.Source(), query, err)
		}
		return nil
	}
	return results
}

func (s *SearchService) getCachedProduct(ctx context.Context, key string) *domain.NormalizedProduct {
	if s.cache == nil {
		return nil
	}
	data, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil
	}
	var product domain.NormalizedProduct
	if err := json.Unmarshal(data, &product); err != nil {
		return nil
	}
	return &product
}

func (s *SearchService) setCachedProduct(ctx context.Context, key string, product *domain.NormalizedProduct) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(product)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cacheTTL); err != nil {
		log.Printf("[SEARCH] cache set %s failed: %v", key, err)
	}
}
