// Package store persists community-submitted products. Externally
// sourced products never land here; they are recomputed on every search.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/nutridex/backend/internal/domain"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// CommunityStore is the gorm-backed community product repository.
type CommunityStore struct {
	db *gorm.DB
}

// Open connects to the sqlite database at dsn and migrates the schema.
func Open(dsn string) (*CommunityStore, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open community store: %w", err)
	}
	if err := db.AutoMigrate(&communityProduct{}); err != nil {
		return nil, fmt.Errorf("migrate community store: %w", err)
	}
	return &CommunityStore{db: db}, nil
}

// NewCommunityStore wraps an existing gorm connection (used by tests).
func NewCommunityStore(db *gorm.DB) (*CommunityStore, error) {
	if err := db.AutoMigrate(&communityProduct{}); err != nil {
		return nil, fmt.Errorf("migrate community store: %w", err)
	}
	return &CommunityStore{db: db}, nil
}

// Source returns the provider identifier for the text-search fan-out.
func (s *CommunityStore) Source() string {
	return domain.SourceCommunity
}

// Create persists a new record. A unique-constraint violation on the
// code surfaces as ErrConflict; two concurrent submissions of the same
// code cannot both land.
func (s *CommunityStore) Create(ctx context.Context, product *domain.NormalizedProduct, sub *domain.Submission) error {
	row := fromDomain(product, sub.Submitter, sub.Keywords, sub.PriceMin, sub.PriceMax, sub.ImageRef)
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: code %s", domain.ErrConflict, product.Identifier)
		}
		return fmt.Errorf("create community product: %w", err)
	}
	product.CreatedAt = row.CreatedAt
	return nil
}

// GetByCode retrieves a record by its synthetic code.
func (s *CommunityStore) GetByCode(ctx context.Context, code string) (*domain.NormalizedProduct, error) {
	var row communityProduct
	if err := s.db.WithContext(ctx).First(&row, "code = ?", code).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrProductNotFound
		}
		return nil, fmt.Errorf("find community product: %w", err)
	}
	return row.toDomain(), nil
}

// FindDuplicates returns existing records whose name and brand both
// contain the given values, case-insensitively. Rejected records keep
// guarding against resubmission; they are terminal, not deleted.
func (s *CommunityStore) FindDuplicates(ctx context.Context, name, brand string) ([]domain.NormalizedProduct, error) {
	var rows []communityProduct
	err := s.db.WithContext(ctx).
		Where(`name_norm LIKE ? ESCAPE '\' AND brand_norm LIKE ? ESCAPE '\'`, likePattern(name), likePattern(brand)).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find duplicates: %w", err)
	}
	return toDomainSlice(rows), nil
}

// ListByState returns all records in the given moderation state.
func (s *CommunityStore) ListByState(ctx context.Context, state domain.ModerationState) ([]domain.NormalizedProduct, error) {
	var rows []communityProduct
	err := s.db.WithContext(ctx).
		Where("state = ?", string(state)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("list community products: %w", err)
	}
	return toDomainSlice(rows), nil
}

// SearchApproved returns approved records matching the query against
// the name or keyword list, bounded by limit.
func (s *CommunityStore) SearchApproved(ctx context.Context, query string, limit int) ([]domain.NormalizedProduct, error) {
	var rows []communityProduct
	err := s.db.WithContext(ctx).
		Where("state = ?", string(domain.StateApproved)).
		Where(`name_norm LIKE ? ESCAPE '\' OR keywords_norm LIKE ? ESCAPE '\'`, likePattern(query), likePattern(query)).
		Order("id ASC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("search community products: %w", err)
	}
	return toDomainSlice(rows), nil
}

// SearchByText adapts SearchApproved to the text-searcher contract so
// the aggregator can fan out to the community store like any provider.
func (s *CommunityStore) SearchByText(ctx context.Context, query string, limit int) ([]domain.NormalizedProduct, error) {
	return s.SearchApproved(ctx, query, limit)
}

// Transition moves a pending record into a terminal state. The guarded
// UPDATE is the synchronization point: of two concurrent approvals only
// one can flip the row out of pending.
func (s *CommunityStore) Transition(ctx context.Context, code string, moderation domain.Moderation) (*domain.NormalizedProduct, error) {
	result := s.db.WithContext(ctx).
		Model(&communityProduct{}).
		Where("code = ? AND state = ?", code, string(domain.StatePending)).
		Updates(map[string]any{
			"state":     string(moderation.State),
			"moderator": moderation.Moderator,
			"notes":     moderation.Notes,
			"verified":  moderation.Verified,
		})
	if result.Error != nil {
		return nil, fmt.Errorf("update moderation state: %w", result.Error)
	}

	if result.RowsAffected == 0 {
		// Either the code is unknown or the record already left pending.
		if _, err := s.GetByCode(ctx, code); err != nil {
			return nil, err
		}
		return nil, domain.ErrInvalidTransition
	}

	return s.GetByCode(ctx, code)
}

func toDomainSlice(rows []communityProduct) []domain.NormalizedProduct {
	out := make([]domain.NormalizedProduct, 0, len(rows))
	for i := range rows {
		out = append(out, *rows[i].toDomain())
	}
	return out
}

// likeEscaper makes user text safe as a literal LIKE fragment. The
// queries declare backslash as the ESCAPE character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, "%", `\%`, "_", `\_`)

// likePattern builds a contains-pattern for the *_norm columns: Unicode
// lowercased in Go (SQLite's lower() only folds ASCII) with LIKE
// metacharacters escaped so they match literally.
func likePattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}
