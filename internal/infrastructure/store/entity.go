package store

import (
	"strings"
	"time"

	"github.com/nutridex/backend/internal/domain"
)

// communityProduct is the persisted row for a community submission.
// Code carries the unique constraint that serializes concurrent writes
// across processes; there is no in-process locking in this package.
type communityProduct struct {
	ID        uint      `gorm:"primarykey"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Code      string `gorm:"size:64;uniqueIndex;not null"`
	Name      string `gorm:"size:200;not null"`
	Brand     string `gorm:"size:200;not null"`
	Category  string `gorm:"size:32;not null"`
	Submitter string `gorm:"size:64"`

	// Go-normalized lowercase shadows for matching. SQLite's lower()
	// only folds ASCII, so umlauts would slip through SQL-side lowering.
	NameNorm     string `gorm:"size:200;not null;index"`
	BrandNorm    string `gorm:"size:200;not null;index"`
	KeywordsNorm string `gorm:"size:500"`

	Calories float64
	Protein  float64
	Carbs    float64
	Fat      float64
	Fiber    float64
	Sugar    float64
	Salt     float64

	Allergens string `gorm:"size:500"`
	Keywords  string `gorm:"size:500"`
	Stores    string `gorm:"size:500"`
	PriceMin  float64
	PriceMax  float64
	ImageRef  string `gorm:"size:500"`

	State     string `gorm:"size:16;not null;index"`
	Moderator string `gorm:"size:64"`
	Notes     string `gorm:"size:1000"`
	Verified  bool
}

// TableName returns the table name for the community product model.
func (communityProduct) TableName() string {
	return "community_products"
}

func fromDomain(p *domain.NormalizedProduct, submitter string, keywords []string, priceMin, priceMax float64, imageRef string) *communityProduct {
	return &communityProduct{
		Code:         p.Identifier,
		Name:         p.Name,
		Brand:        p.Brand,
		Category:     p.Category,
		Submitter:    submitter,
		NameNorm:     strings.ToLower(p.Name),
		BrandNorm:    strings.ToLower(p.Brand),
		KeywordsNorm: strings.ToLower(joinList(keywords)),
		Calories:     p.Nutrition.Calories,
		Protein:      p.Nutrition.Protein,
		Carbs:        p.Nutrition.Carbs,
		Fat:          p.Nutrition.Fat,
		Fiber:        p.Nutrition.Fiber,
		Sugar:        p.Nutrition.Sugar,
		Salt:         p.Nutrition.Salt,
		Allergens:    joinList(p.Allergens),
		Keywords:     joinList(keywords),
		Stores:       joinList(p.Stores),
		PriceMin:     priceMin,
		PriceMax:     priceMax,
		ImageRef:     imageRef,
		State:        string(p.Moderation.State),
		Moderator:    p.Moderation.Moderator,
		Notes:        p.Moderation.Notes,
		Verified:     p.Moderation.Verified,
	}
}

func (cp *communityProduct) toDomain() *domain.NormalizedProduct {
	return &domain.NormalizedProduct{
		Identifier: cp.Code,
		Name:       cp.Name,
		Brand:      cp.Brand,
		Category:   cp.Category,
		Nutrition: domain.Nutrition{
			Calories: cp.Calories,
			Protein:  cp.Protein,
			Carbs:    cp.Carbs,
			Fat:      cp.Fat,
			Fiber:    cp.Fiber,
			Sugar:    cp.Sugar,
			Salt:     cp.Salt,
		},
		Allergens: splitList(cp.Allergens),
		Stores:    splitList(cp.Stores),
		Provenance: domain.Provenance{
			Source:    domain.SourceCommunity,
			Region:    domain.RegionDomestic,
			Community: true,
		},
		Moderation: domain.Moderation{
			State:     domain.ModerationState(cp.State),
			Moderator: cp.Moderator,
			Notes:     cp.Notes,
			Verified:  cp.Verified,
		},
		CreatedAt: cp.CreatedAt,
	}
}

func joinList(items []string) string {
	return strings.Join(items, ",")
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
