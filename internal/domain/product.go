package domain

import "time"

// Product sources.
const (
	SourceOpenFoodFacts = "openfoodfacts"
	SourceFatSecret     = "fatsecret"
	SourceCommunity     = "community"
)

// Region classification for provenance.
const (
	RegionDomestic      = "domestic"
	RegionInternational = "international"
	RegionUnknown       = "unknown"
)

// Category vocabulary. Every product carries exactly one of these;
// CategoryOther is the catch-all when no mapping matches.
const (
	CategoryDairy      = "dairy"
	CategoryMeat       = "meat"
	CategoryFish       = "fish"
	CategoryFruit      = "fruit"
	CategoryVegetables = "vegetables"
	CategoryBakery     = "bakery"
	CategoryBeverages  = "beverages"
	CategorySweets     = "sweets"
	CategorySnacks     = "snacks"
	CategoryFrozen     = "frozen"
	CategoryPantry     = "pantry"
	CategoryOther      = "other"
)

// Categories lists the full vocabulary in display order.
var Categories = []string{
	CategoryDairy, CategoryMeat, CategoryFish, CategoryFruit,
	CategoryVegetables, CategoryBakery, CategoryBeverages, CategorySweets,
	CategorySnacks, CategoryFrozen, CategoryPantry, CategoryOther,
}

// ValidCategory reports whether c is part of the category vocabulary.
func ValidCategory(c string) bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// ModerationState is the lifecycle state of a community-submitted product.
type ModerationState string

const (
	StatePending  ModerationState = "pending"
	StateApproved ModerationState = "approved"
	StateRejected ModerationState = "rejected"
)

// Nutrition holds per-100g nutrient values, rounded to 2 decimals.
// A missing real-world value is stored as 0; Calories == 0 means the
// record carries insufficient data and must never be surfaced.
type Nutrition struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Fiber    float64 `json:"fiber"`
	Sugar    float64 `json:"sugar"`
	Salt     float64 `json:"salt"`
}

// Provenance records where a product record came from.
type Provenance struct {
	Source    string `json:"source"`
	Region    string `json:"region"`
	Community bool   `json:"community"`
}

// Moderation is only meaningful for community-submitted products.
type Moderation struct {
	State     ModerationState `json:"state,omitempty"`
	Moderator string          `json:"moderator,omitempty"`
	Notes     string          `json:"notes,omitempty"`
	Verified  bool            `json:"verified,omitempty"`
}

// NormalizedProduct is the canonical representation of a food product
// regardless of which provider it came from.
type NormalizedProduct struct {
	Identifier string     `json:"identifier"`
	Name       string     `json:"name"`
	Brand      string     `json:"brand"`
	Category   string     `json:"category"`
	Nutrition  Nutrition  `json:"nutrition"`
	Allergens  []string   `json:"allergens,omitempty"`
	Stores     []string   `json:"stores,omitempty"`
	Provenance Provenance `json:"provenance"`
	Moderation Moderation `json:"moderation,omitzero"`
	CreatedAt  time.Time  `json:"createdAt,omitzero"`
}

// Submission is the payload for a community product submission.
// Submitter is filled from the authenticated identity, not the body.
type Submission struct {
	Name      string   `json:"name"`
	Brand     string   `json:"brand"`
	Category  string   `json:"category"`
	Calories  float64  `json:"calories"`
	Protein   float64  `json:"protein"`
	Carbs     float64  `json:"carbs"`
	Fat       float64  `json:"fat"`
	Fiber     float64  `json:"fiber,omitempty"`
	Sugar     float64  `json:"sugar,omitempty"`
	Salt      float64  `json:"salt,omitempty"`
	Allergens []string `json:"allergens,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
	Stores    []string `json:"stores,omitempty"`
	PriceMin  float64  `json:"priceMin,omitempty"`
	PriceMax  float64  `json:"priceMax,omitempty"`
	ImageRef  string   `json:"imageRef,omitempty"`
	Submitter string   `json:"-"`
}

// ModerationRequest is the payload for a moderation transition.
// Moderator identity and capability come from the caller's auth layer.
type ModerationRequest struct {
	Status      ModerationState `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	Verified    bool            `json:"verified,omitempty"`
	Moderator   string          `json:"-"`
	IsModerator bool            `json:"-"`
}
