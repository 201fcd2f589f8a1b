package domain

import (
	"context"
	"time"
)

// BarcodeResolver resolves a canonical 13-digit barcode to a product.
type BarcodeResolver interface {
	ResolveByCode(ctx context.Context, code string) (*NormalizedProduct, error)
}

// TextSearcher searches a single source by free-text query.
// Implementations return ErrProviderUnavailable on transient failures
// and an empty slice (not an error) when nothing matches.
type TextSearcher interface {
	Source() string
	SearchByText(ctx context.Context, query string, limit int) ([]NormalizedProduct, error)
}

// CommunityRepository persists community-submitted products. The store's
// unique constraint on the product code is the serialization point for
// concurrent writes; implementations must not rely on in-process locks.
type CommunityRepository interface {
	Create(ctx context.Context, product *NormalizedProduct, sub *Submission) error
	GetByCode(ctx context.Context, code string) (*NormalizedProduct, error)
	FindDuplicates(ctx context.Context, name, brand string) ([]NormalizedProduct, error)
	ListByState(ctx context.Context, state ModerationState) ([]NormalizedProduct, error)
	SearchApproved(ctx context.Context, query string, limit int) ([]NormalizedProduct, error)
	// Transition moves a pending record to a terminal state. It returns
	// ErrInvalidTransition when the record is no longer pending and
	// ErrProductNotFound when no record carries the code.
	Transition(ctx context.Context, code string, moderation Moderation) (*NormalizedProduct, error)
}

// CacheRepository defines the interface for caching operations
type CacheRepository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Exists(ctx context.Context, key string) (bool, error)
}
