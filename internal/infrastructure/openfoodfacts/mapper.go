package openfoodfacts

import (
	"strings"

	"github.com/nutridex/backend/internal/domain"
	"github.com/nutridex/backend/internal/normalize"
)

// productResponse is the envelope of the by-code endpoint.
type productResponse struct {
	Status        int        `json:"status"`
	StatusVerbose string     `json:"status_verbose"`
	Product       offProduct `json:"product"`
}

// searchResponse is the envelope of the free-text search endpoint.
type searchResponse struct {
	Count    int          `json:"count"`
	Products []offProduct `json:"products"`
}

// offProduct is the subset of an Open Food Facts record this adapter
// reads. Nutriments is a bag of mixed-type fields and is only ever
// touched through normalize.Coerce.
type offProduct struct {
	Code          string         `json:"code"`
	ProductName   string         `json:"product_name"`
	ProductNameDe string         `json:"product_name_de"`
	GenericName   string         `json:"generic_name"`
	Brands        string         `json:"brands"`
	Categories    string         `json:"categories"`
	AllergensTags []string       `json:"allergens_tags"`
	Stores        string         `json:"stores"`
	Countries     string         `json:"countries"`
	Nutriments    map[string]any `json:"nutriments"`
}

// name returns the best available product name, preferring the German
// label the way the diary UI displays it.
func (p *offProduct) name() string {
	if p.ProductNameDe != "" {
		return strings.TrimSpace(p.ProductNameDe)
	}
	if p.ProductName != "" {
		return strings.TrimSpace(p.ProductName)
	}
	return strings.TrimSpace(p.GenericName)
}

// mapProduct converts one OFF record into the canonical shape. The
// second return value is false when the record must be discarded: no
// name and no calories means not found, and calories == 0 after
// coercion means insufficient data.
func mapProduct(p *offProduct) (*domain.NormalizedProduct, bool) {
	name := p.name()
	nutrition := extractNutrition(p.Nutriments)

	if name == "" && nutrition.Calories == 0 {
		return nil, false
	}
	if nutrition.Calories == 0 {
		return nil, false
	}

	brand := strings.TrimSpace(p.Brands)
	if idx := strings.Index(brand, ","); idx > 0 {
		brand = strings.TrimSpace(brand[:idx])
	}
	if brand == "" {
		brand = "unknown"
	}

	return &domain.NormalizedProduct{
		Identifier: p.Code,
		Name:       name,
		Brand:      brand,
		Category:   normalize.MapCategory(p.Categories),
		Nutrition:  nutrition,
		Allergens:  normalize.MapAllergens(p.AllergensTags),
		Stores:     normalize.ExtractStores(p.Stores),
		Provenance: domain.Provenance{
			Source: domain.SourceOpenFoodFacts,
			Region: normalize.ClassifyRegion(p.Countries),
		},
	}, true
}

// extractNutrition pulls the per-100g values out of the nutriments bag.
// Energy reported only in kilojoules is not converted; the record is
// treated as missing calories and rejected upstream.
func extractNutrition(nutriments map[string]any) domain.Nutrition {
	n := domain.Nutrition{
		Calories: normalize.Coerce(nutriments["energy-kcal_100g"]),
		Protein:  normalize.Coerce(nutriments["proteins_100g"]),
		Carbs:    normalize.Coerce(nutriments["carbohydrates_100g"]),
		Fat:      normalize.Coerce(nutriments["fat_100g"]),
		Fiber:    normalize.Coerce(nutriments["fiber_100g"]),
		Sugar:    normalize.Coerce(nutriments["sugars_100g"]),
		Salt:     normalize.Coerce(nutriments["salt_100g"]),
	}
	if n.Salt == 0 {
		// OFF reports sodium in grams per 100g
		sodiumMg := normalize.Coerce(nutriments["sodium_100g"]) * 1000
		n.Salt = normalize.SaltFromSodiumMg(sodiumMg)
	}
	return n
}
