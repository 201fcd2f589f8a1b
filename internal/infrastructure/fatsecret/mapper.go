package fatsecret

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/nutridex/backend/internal/domain"
	"github.com/nutridex/backend/internal/normalize"
)

// searchResponse is the envelope of the foods.search method. FatSecret
// reports failures as an error object inside a 200 response.
type searchResponse struct {
	Foods foods     `json:"foods"`
	Error *apiError `json:"error"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type foods struct {
	Food         foodList `json:"food"`
	MaxResults   string   `json:"max_results"`
	TotalResults string   `json:"total_results"`
}

// food is one FatSecret search hit. The nutrient values live inside the
// free-text description; there is no structured per-100g payload at the
// search level.
type food struct {
	FoodID      string `json:"food_id"`
	Name        string `json:"food_name"`
	Type        string `json:"food_type"`
	BrandName   string `json:"brand_name"`
	Description string `json:"food_description"`
}

// foodList absorbs the FatSecret quirk of returning a bare object
// instead of a single-element array when there is exactly one hit.
type foodList []food

func (fl *foodList) UnmarshalJSON(data []byte) error {
	var many []food
	if err := json.Unmarshal(data, &many); err == nil {
		*fl = many
		return nil
	}
	var one food
	if err := json.Unmarshal(data, &one); err != nil {
		return err
	}
	*fl = foodList{one}
	return nil
}

// Description field patterns, e.g.
// "Per 100g - Calories: 52kcal | Fat: 0.17g | Carbs: 13.81g | Protein: 0.26g"
var (
	caloriesPattern = regexp.MustCompile(`Calories:\s*([\d.]+)\s*kcal`)
	fatPattern      = regexp.MustCompile(`Fat:\s*([\d.]+)\s*g`)
	carbsPattern    = regexp.MustCompile(`Carbs:\s*([\d.]+)\s*g`)
	proteinPattern  = regexp.MustCompile(`Protein:\s*([\d.]+)\s*g`)
	sugarPattern    = regexp.MustCompile(`Sugar:\s*([\d.]+)\s*g`)
	fiberPattern    = regexp.MustCompile(`Fiber:\s*([\d.]+)\s*g`)
	sodiumPattern   = regexp.MustCompile(`Sodium:\s*([\d.]+)\s*mg`)
)

// mapFood converts one search hit into the canonical shape. Hits whose
// description is not per-100g cannot be normalized without a serving
// weight and are dropped, as are hits without a caloric value.
func mapFood(f *food) (*domain.NormalizedProduct, bool) {
	name := strings.TrimSpace(f.Name)
	if !strings.HasPrefix(f.Description, "Per 100g") {
		return nil, false
	}

	nutrition := domain.Nutrition{
		Calories: matchValue(caloriesPattern, f.Description),
		Fat:      matchValue(fatPattern, f.Description),
		Carbs:    matchValue(carbsPattern, f.Description),
		Protein:  matchValue(proteinPattern, f.Description),
		Sugar:    matchValue(sugarPattern, f.Description),
		Fiber:    matchValue(fiberPattern, f.Description),
	}
	nutrition.Salt = normalize.SaltFromSodiumMg(matchValue(sodiumPattern, f.Description))

	if name == "" && nutrition.Calories == 0 {
		return nil, false
	}
	if nutrition.Calories == 0 {
		return nil, false
	}

	brand := strings.TrimSpace(f.BrandName)
	if brand == "" {
		brand = "unknown"
	}

	// Generic (non-branded) entries are ingredients; everything the
	// platform indexes is international from the diary's point of view.
	return &domain.NormalizedProduct{
		Identifier: f.FoodID,
		Name:       name,
		Brand:      brand,
		Category:   normalize.MapCategory(name),
		Nutrition:  nutrition,
		Provenance: domain.Provenance{
			Source: domain.SourceFatSecret,
			Region: domain.RegionInternational,
		},
	}, true
}

// matchValue extracts and coerces the first capture group, 0 on no match.
func matchValue(pattern *regexp.Regexp, s string) float64 {
	m := pattern.FindStringSubmatch(s)
	if len(m) < 2 {
		return 0
	}
	return normalize.Coerce(m[1])
}
