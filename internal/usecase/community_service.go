package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/nutridex/backend/internal/domain"
	"github.com/nutridex/backend/internal/normalize"
)

// Sanity bounds for submitted per-100g values. 100g of anything cannot
// carry more than 100g of a single macro.
const (
	maxCaloriesPer100g = 1000.0
	maxMacroPer100g    = 100.0
)

// CommunityService runs the community submission pipeline: boundary
// validation, duplicate detection, and the moderation state machine.
type CommunityService struct {
	repo domain.CommunityRepository
}

// NewCommunityService creates a community service backed by repo.
func NewCommunityService(repo domain.CommunityRepository) *CommunityService {
	return &CommunityService{repo: repo}
}

// Submit validates a submission and persists it as a pending record.
// When near-duplicates exist the submission is refused with ErrConflict
// and the candidates are returned so the caller can decide.
func (s *CommunityService) Submit(ctx context.Context, sub *domain.Submission) (*domain.NormalizedProduct, []domain.NormalizedProduct, error) {
	if err := validateSubmission(sub); err != nil {
		return nil, nil, err
	}

	candidates, err := s.repo.FindDuplicates(ctx, sub.Name, sub.Brand)
	if err != nil {
		return nil, nil, err
	}
	if len(candidates) > 0 {
		return nil, candidates, fmt.Errorf("%w: %d similar products", domain.ErrConflict, len(candidates))
	}

	product := &domain.NormalizedProduct{
		Identifier: uuid.NewString(),
		Name:       strings.TrimSpace(sub.Name),
		Brand:      strings.TrimSpace(sub.Brand),
		Category:   sub.Category,
		Nutrition: domain.Nutrition{
			Calories: normalize.Round2(sub.Calories),
			Protein:  normalize.Round2(sub.Protein),
			Carbs:    normalize.Round2(sub.Carbs),
			Fat:      normalize.Round2(sub.Fat),
			Fiber:    normalize.Coerce(sub.Fiber),
			Sugar:    normalize.Coerce(sub.Sugar),
			Salt:     normalize.Coerce(sub.Salt),
		},
		Allergens: normalize.FilterAllergens(sub.Allergens),
		Stores:    normalize.ExtractStores(strings.Join(sub.Stores, ",")),
		Provenance: domain.Provenance{
			Source:    domain.SourceCommunity,
			Region:    domain.RegionDomestic,
			Community: true,
		},
		Moderation: domain.Moderation{
			State: domain.StatePending,
		},
	}

	if err := s.repo.Create(ctx, product, sub); err != nil {
		return nil, nil, err
	}
	return product, nil, nil
}

// Moderate applies a moderation transition. Only pending records can
// move, only to a terminal state, and only with moderator capability.
func (s *CommunityService) Moderate(ctx context.Context, code string, req *domain.ModerationRequest) (*domain.NormalizedProduct, error) {
	if !req.IsModerator {
		return nil, domain.ErrUnauthorized
	}
	if req.Status != domain.StateApproved && req.Status != domain.StateRejected {
		return nil, fmt.Errorf("%w: status must be %q or %q", domain.ErrInvalidInput, domain.StateApproved, domain.StateRejected)
	}

	moderation := domain.Moderation{
		State:     req.Status,
		Moderator: req.Moderator,
		Notes:     req.Notes,
	}
	// The verified flag only exists on approved records.
	if req.Status == domain.StateApproved {
		moderation.Verified = req.Verified
	}

	return s.repo.Transition(ctx, code, moderation)
}

// List returns community products in the given state, defaulting to the
// pending queue the moderation UI works through.
func (s *CommunityService) List(ctx context.Context, state domain.ModerationState) ([]domain.NormalizedProduct, error) {
	if state == "" {
		state = domain.StatePending
	}
	switch state {
	case domain.StatePending, domain.StateApproved, domain.StateRejected:
	default:
		return nil, fmt.Errorf("%w: unknown state %q", domain.ErrInvalidInput, state)
	}
	return s.repo.ListByState(ctx, state)
}

// Get returns one community product by its code.
func (s *CommunityService) Get(ctx context.Context, code string) (*domain.NormalizedProduct, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, fmt.Errorf("%w: code is required", domain.ErrInvalidInput)
	}
	return s.repo.GetByCode(ctx, code)
}

// validateSubmission enforces the required field set and sanity bounds.
// A violation here is a boundary rejection, never a persisted record.
func validateSubmission(sub *domain.Submission) error {
	if sub == nil {
		return fmt.Errorf("%w: submission body is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(sub.Name) == "" {
		return fmt.Errorf("%w: name is required", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(sub.Brand) == "" {
		return fmt.Errorf("%w: brand is required", domain.ErrInvalidInput)
	}
	if !domain.ValidCategory(sub.Category) {
		return fmt.Errorf("%w: category must be one of %s", domain.ErrInvalidInput, strings.Join(domain.Categories, ", "))
	}
	if sub.Calories <= 0 || sub.Calories > maxCaloriesPer100g {
		return fmt.Errorf("%w: calories must be between 0 and %.0f", domain.ErrInvalidInput, maxCaloriesPer100g)
	}
	for _, macro := range []struct {
		name  string
		value float64
	}{
		{"protein", sub.Protein},
		{"carbs", sub.Carbs},
		{"fat", sub.Fat},
	} {
		if macro.value < 0 || macro.value > maxMacroPer100g {
			return fmt.Errorf("%w: %s must be between 0 and %.0f", domain.ErrInvalidInput, macro.name, maxMacroPer100g)
		}
	}
	if sub.PriceMin < 0 || sub.PriceMax < 0 || (sub.PriceMax > 0 && sub.PriceMin > sub.PriceMax) {
		return fmt.Errorf("%w: invalid price range", domain.ErrInvalidInput)
	}
	return nil
}
