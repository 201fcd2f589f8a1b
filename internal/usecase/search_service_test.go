package usecase

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/nutridex/backend/internal/domain"
	"github.com/nutridex/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSearcher is a scripted text-search source.
type fakeSearcher struct {
	source  string
	results []domain.NormalizedProduct
	err     error
	calls   int
}

func (f *fakeSearcher) Source() string { return f.source }

func (f *fakeSearcher) SearchByText(ctx context.Context, query string, limit int) ([]domain.NormalizedProduct, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.results, nil
}

// fakeResolver is a scripted barcode source.
type fakeResolver struct {
	product *domain.NormalizedProduct
	err     error
	calls   int
}

func (f *fakeResolver) ResolveByCode(ctx context.Context, code string) (*domain.NormalizedProduct, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	p := *f.product
	p.Identifier = code
	return &p, nil
}

func named(names ...string) []domain.NormalizedProduct {
	out := make([]domain.NormalizedProduct, 0, len(names))
	for _, n := range names {
		out = append(out, domain.NormalizedProduct{
			Name:      n,
			Nutrition: domain.Nutrition{Calories: 100},
		})
	}
	return out
}

func newService(resolver domain.BarcodeResolver, searchers []domain.TextSearcher, augmenter domain.TextSearcher, c domain.CacheRepository) *SearchService {
	return NewSearchService(resolver, searchers, augmenter, c, SearchConfig{
		PageSize:         20,
		AugmentThreshold: 10,
		CallTimeout:      time.Second,
		CacheTTL:         time.Minute,
	})
}

func TestSearchProductsRanking(t *testing.T) {
	primary := &fakeSearcher{
		source:  "primary",
		results: named("Alpenmilch", "Butterkekse", "Milchschokolade"),
	}
	svc := newService(nil, []domain.TextSearcher{primary}, nil, nil)

	results, err := svc.SearchProducts(context.Background(), "milch", 20)
	require.NoError(t, err)
	require.Len(t, results, 3)

	// "Milchschokolade" matches at position 0, "Alpenmilch" at 5, and
	// "Butterkekse" not at all.
	assert.Equal(t, "Milchschokolade", results[0].Name)
	assert.Equal(t, "Alpenmilch", results[1].Name)
	assert.Equal(t, "Butterkekse", results[2].Name)
}

func TestSearchProductsTiesKeepSourceOrder(t *testing.T) {
	primary := &fakeSearcher{source: "primary", results: named("Milch A", "Milch B")}
	secondary := &fakeSearcher{source: "secondary", results: named("Milch C")}
	svc := newService(nil, []domain.TextSearcher{primary, secondary}, nil, nil)

	results, err := svc.SearchProducts(context.Background(), "milch", 20)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "Milch A", results[0].Name)
	assert.Equal(t, "Milch B", results[1].Name)
	assert.Equal(t, "Milch C", results[2].Name)
}

func TestSearchProductsEmptyQuery(t *testing.T) {
	svc := newService(nil, []domain.TextSearcher{&fakeSearcher{source: "primary"}}, nil, nil)

	_, err := svc.SearchProducts(context.Background(), "   ", 20)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchProductsAbsorbsProviderFailures(t *testing.T) {
	t.Run("one source down, others still contribute", func(t *testing.T) {
		primary := &fakeSearcher{source: "primary", err: domain.ErrProviderUnavailable}
		secondary := &fakeSearcher{source: "secondary", results: named("Milchreis")}
		svc := newService(nil, []domain.TextSearcher{primary, secondary}, nil, nil)

		results, err := svc.SearchProducts(context.Background(), "milch", 20)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, "Milchreis", results[0].Name)
	})

	t.Run("all sources down yields empty list and no error", func(t *testing.T) {
		primary := &fakeSearcher{source: "primary", err: domain.ErrProviderUnavailable}
		secondary := &fakeSearcher{source: "secondary", err: domain.ErrProviderUnavailable}
		svc := newService(nil, []domain.TextSearcher{primary, secondary}, nil, nil)

		results, err := svc.SearchProducts(context.Background(), "milch", 20)
		require.NoError(t, err)
		assert.Empty(t, results)
	})
}

func TestSearchProductsAugmentation(t *testing.T) {
	t.Run("augmenter called when primary under-returns", func(t *testing.T) {
		primary := &fakeSearcher{source: "primary", results: named("Milch A", "Milch B")}
		augmenter := &fakeSearcher{source: "augmenter", results: named("Milk Powder")}
		svc := newService(nil, []domain.TextSearcher{primary}, augmenter, nil)

		results, err := svc.SearchProducts(context.Background(), "milch", 20)
		require.NoError(t, err)
		assert.Equal(t, 1, augmenter.calls)
		assert.Len(t, results, 3)
	})

	t.Run("augmenter skipped when primary returns enough", func(t *testing.T) {
		many := make([]string, 10)
		for i := range many {
			many[i] = fmt.Sprintf("Milch %d", i)
		}
		primary := &fakeSearcher{source: "primary", results: named(many...)}
		augmenter := &fakeSearcher{source: "augmenter", results: named("Milk Powder")}
		svc := newService(nil, []domain.TextSearcher{primary}, augmenter, nil)

		_, err := svc.SearchProducts(context.Background(), "milch", 20)
		require.NoError(t, err)
		assert.Equal(t, 0, augmenter.calls)
	})

	t.Run("no always-on sources still consults the augmenter", func(t *testing.T) {
		augmenter := &fakeSearcher{source: "augmenter", results: named("Milk Powder")}
		svc := newService(nil, nil, augmenter, nil)

		results, err := svc.SearchProducts(context.Background(), "milch", 20)
		require.NoError(t, err)
		assert.Equal(t, 1, augmenter.calls)
		require.Len(t, results, 1)
		assert.Equal(t, "Milk Powder", results[0].Name)
	})

	t.Run("threshold keys off the primary, not the merged count", func(t *testing.T) {
		many := make([]string, 12)
		for i := range many {
			many[i] = fmt.Sprintf("Milch %d", i)
		}
		primary := &fakeSearcher{source: "primary", results: named("Milch A")}
		secondary := &fakeSearcher{source: "secondary", results: named(many...)}
		augmenter := &fakeSearcher{source: "augmenter"}
		svc := newService(nil, []domain.TextSearcher{primary, secondary}, augmenter, nil)

		_, err := svc.SearchProducts(context.Background(), "milch", 20)
		require.NoError(t, err)
		assert.Equal(t, 1, augmenter.calls)
	})
}

func TestSearchProductsCapsResults(t *testing.T) {
	many := make([]string, 30)
	for i := range many {
		many[i] = fmt.Sprintf("Milch %d", i)
	}
	primary := &fakeSearcher{source: "primary", results: named(many...)}
	svc := newService(nil, []domain.TextSearcher{primary}, nil, nil)

	results, err := svc.SearchProducts(context.Background(), "milch", 0)
	require.NoError(t, err)
	assert.Len(t, results, 20)

	results, err = svc.SearchProducts(context.Background(), "milch", 5)
	require.NoError(t, err)
	assert.Len(t, results, 5)

	// A limit above the page size is clamped back down.
	results, err = svc.SearchProducts(context.Background(), "milch", 100)
	require.NoError(t, err)
	assert.Len(t, results, 20)
}

func TestResolveBarcode(t *testing.T) {
	product := &domain.NormalizedProduct{
		Name:      "Vollmilch",
		Brand:     "Weihenstephan",
		Nutrition: domain.Nutrition{Calories: 64},
	}

	t.Run("pads short codes before resolving", func(t *testing.T) {
		resolver := &fakeResolver{product: product}
		svc := newService(resolver, nil, nil, nil)

		got, err := svc.ResolveBarcode(context.Background(), "40040077")
		require.NoError(t, err)
		assert.Equal(t, "0000040040077", got.Identifier)
	})

	t.Run("invalid code never reaches the provider", func(t *testing.T) {
		resolver := &fakeResolver{product: product}
		svc := newService(resolver, nil, nil, nil)

		_, err := svc.ResolveBarcode(context.Background(), "not-a-barcode")
		assert.ErrorIs(t, err, domain.ErrInvalidInput)
		assert.Equal(t, 0, resolver.calls)
	})

	t.Run("repeat lookups hit the cache", func(t *testing.T) {
		resolver := &fakeResolver{product: product}
		svc := newService(resolver, nil, nil, cache.NewMemoryCache())

		first, err := svc.ResolveBarcode(context.Background(), "4000400770013")
		require.NoError(t, err)
		second, err := svc.ResolveBarcode(context.Background(), "4000400770013")
		require.NoError(t, err)

		assert.Equal(t, 1, resolver.calls)
		assert.Equal(t, first, second)
	})

	t.Run("padded and unpadded forms share a cache entry", func(t *testing.T) {
		resolver := &fakeResolver{product: product}
		svc := newService(resolver, nil, nil, cache.NewMemoryCache())

		_, err := svc.ResolveBarcode(context.Background(), "40040077")
		require.NoError(t, err)
		_, err = svc.ResolveBarcode(context.Background(), "0000040040077")
		require.NoError(t, err)

		assert.Equal(t, 1, resolver.calls)
	})

	t.Run("provider failure degrades to not found", func(t *testing.T) {
		resolver := &fakeResolver{err: domain.ErrProviderUnavailable}
		svc := newService(resolver, nil, nil, nil)

		_, err := svc.ResolveBarcode(context.Background(), "4000400770013")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})

	t.Run("not found passes through", func(t *testing.T) {
		resolver := &fakeResolver{err: domain.ErrProductNotFound}
		svc := newService(resolver, nil, nil, nil)

		_, err := svc.ResolveBarcode(context.Background(), "4000400770013")
		assert.ErrorIs(t, err, domain.ErrProductNotFound)
	})
}
