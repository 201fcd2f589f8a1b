package domain

import "errors"

var (
	// ErrInvalidInput is returned when a query, barcode, or submission
	// field fails validation before any external call is made
	ErrInvalidInput = errors.New("invalid input")

	// ErrProductNotFound is returned when an identifier resolves to
	// nothing in a given provider
	ErrProductNotFound = errors.New("product not found")

	// ErrProviderUnavailable is returned on transient network, timeout,
	// or parse failures from one provider
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrConflict is returned when a community submission collides with
	// an existing near-duplicate
	ErrConflict = errors.New("duplicate product exists")

	// ErrUnauthorized is returned when a moderation transition is
	// attempted without moderator capability
	ErrUnauthorized = errors.New("moderator capability required")

	// ErrInvalidTransition is returned when a moderation transition is
	// attempted on a record not in pending state
	ErrInvalidTransition = errors.New("invalid moderation state transition")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrCacheUnavailable is returned when the cache backend is unreachable
	ErrCacheUnavailable = errors.New("cache service unavailable")
)
