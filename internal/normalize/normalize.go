// Package normalize makes records from unrelated providers comparable:
// numeric coercion, unit reconciliation, and mapping of provider
// taxonomy strings onto the controlled vocabularies in domain.
package normalize

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nutridex/backend/internal/domain"
)

// CanonicalBarcodeLength is the EAN-13 code space all lookups align to.
const CanonicalBarcodeLength = 13

var digitsOnlyRegex = regexp.MustCompile(`^[0-9]+$`)

// Round2 rounds to 2 decimal places, the precision of all per-100g values.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Coerce parses a numeric-like provider value with a fallback of 0 on
// parse failure or negative input, rounded to 2 decimals.
func Coerce(v any) float64 {
	var f float64
	switch x := v.(type) {
	case float64:
		f = x
	case float32:
		f = float64(x)
	case int:
		f = float64(x)
	case int64:
		f = float64(x)
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(strings.ReplaceAll(x, ",", ".")), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0
	}
	return Round2(f)
}

// SaltFromSodiumMg derives salt grams per 100g from sodium mg per 100g.
func SaltFromSodiumMg(sodiumMg float64) float64 {
	if sodiumMg <= 0 {
		return 0
	}
	return Round2(sodiumMg * 2.5 / 1000)
}

// ValidateBarcode checks that a code is a pure-digit string and aligns
// 8-digit (EAN-8) codes to the 13-digit canonical space by zero-padding
// on the left.
func ValidateBarcode(code string) (string, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return "", fmt.Errorf("%w: barcode is required", domain.ErrInvalidInput)
	}
	if !digitsOnlyRegex.MatchString(code) {
		return "", fmt.Errorf("%w: barcode must contain only digits", domain.ErrInvalidInput)
	}
	if len(code) < 8 || len(code) > 14 {
		return "", fmt.Errorf("%w: barcode must be 8 to 14 digits", domain.ErrInvalidInput)
	}
	if len(code) < CanonicalBarcodeLength {
		code = strings.Repeat("0", CanonicalBarcodeLength-len(code)) + code
	}
	return code, nil
}

// categoryKeyword maps a provider taxonomy fragment to a vocabulary
// category. Order matters: the first matching keyword wins.
type categoryKeyword struct {
	keyword  string
	category string
}

var categoryKeywords = []categoryKeyword{
	{"milch", domain.CategoryDairy},
	{"milk", domain.CategoryDairy},
	{"käse", domain.CategoryDairy},
	{"cheese", domain.CategoryDairy},
	{"joghurt", domain.CategoryDairy},
	{"yogurt", domain.CategoryDairy},
	{"quark", domain.CategoryDairy},
	{"dairy", domain.CategoryDairy},
	{"fisch", domain.CategoryFish},
	{"fish", domain.CategoryFish},
	{"seafood", domain.CategoryFish},
	{"fleisch", domain.CategoryMeat},
	{"meat", domain.CategoryMeat},
	{"wurst", domain.CategoryMeat},
	{"sausage", domain.CategoryMeat},
	{"poultry", domain.CategoryMeat},
	{"obst", domain.CategoryFruit},
	{"frucht", domain.CategoryFruit},
	{"fruit", domain.CategoryFruit},
	{"gemüse", domain.CategoryVegetables},
	{"vegetable", domain.CategoryVegetables},
	{"salat", domain.CategoryVegetables},
	{"brot", domain.CategoryBakery},
	{"bread", domain.CategoryBakery},
	{"backware", domain.CategoryBakery},
	{"bakery", domain.CategoryBakery},
	{"pastr", domain.CategoryBakery},
	{"getränk", domain.CategoryBeverages},
	{"beverage", domain.CategoryBeverages},
	{"drink", domain.CategoryBeverages},
	{"saft", domain.CategoryBeverages},
	{"juice", domain.CategoryBeverages},
	{"wasser", domain.CategoryBeverages},
	{"water", domain.CategoryBeverages},
	{"schokolade", domain.CategorySweets},
	{"chocolate", domain.CategorySweets},
	{"süßware", domain.CategorySweets},
	{"bonbon", domain.CategorySweets},
	{"candy", domain.CategorySweets},
	{"sweet", domain.CategorySweets},
	{"dessert", domain.CategorySweets},
	{"chips", domain.CategorySnacks},
	{"snack", domain.CategorySnacks},
	{"cracker", domain.CategorySnacks},
	{"tiefkühl", domain.CategoryFrozen},
	{"frozen", domain.CategoryFrozen},
	{"nudel", domain.CategoryPantry},
	{"pasta", domain.CategoryPantry},
	{"reis", domain.CategoryPantry},
	{"rice", domain.CategoryPantry},
	{"cereal", domain.CategoryPantry},
	{"müsli", domain.CategoryPantry},
	{"konserve", domain.CategoryPantry},
	{"sauce", domain.CategoryPantry},
	{"gewürz", domain.CategoryPantry},
	{"spice", domain.CategoryPantry},
	{"öl", domain.CategoryPantry},
	{"oil", domain.CategoryPantry},
}

// MapCategory maps arbitrary provider category or tag text to the fixed
// vocabulary. No match falls through to the catch-all bucket.
func MapCategory(raw string) string {
	lower := strings.ToLower(raw)
	for _, ck := range categoryKeywords {
		if strings.Contains(lower, ck.keyword) {
			return ck.category
		}
	}
	return domain.CategoryOther
}

// allergenTags translates provider tag identifiers into controlled
// allergen labels. Unmapped tags are dropped, not surfaced.
var allergenTags = map[string]string{
	"en:gluten":               "gluten",
	"en:milk":                 "milk",
	"en:lactose":              "milk",
	"en:eggs":                 "eggs",
	"en:nuts":                 "nuts",
	"en:tree-nuts":            "nuts",
	"en:hazelnuts":            "nuts",
	"en:almonds":              "nuts",
	"en:peanuts":              "peanuts",
	"en:soybeans":             "soy",
	"en:soy":                  "soy",
	"en:fish":                 "fish",
	"en:crustaceans":          "crustaceans",
	"en:molluscs":             "molluscs",
	"en:celery":               "celery",
	"en:mustard":              "mustard",
	"en:sesame-seeds":         "sesame",
	"en:sesame":               "sesame",
	"en:lupin":                "lupin",
	"en:sulphur-dioxide-and-sulphites": "sulphites",
}

// MapAllergens translates provider allergen tags to controlled labels,
// preserving first-seen order and dropping duplicates and unknowns.
func MapAllergens(tags []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, tag := range tags {
		label, ok := allergenTags[strings.ToLower(strings.TrimSpace(tag))]
		if !ok || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

// allergenLabels is the controlled vocabulary itself, for inputs that
// already carry labels (community submissions) rather than provider tags.
var allergenLabels = map[string]bool{
	"gluten": true, "milk": true, "eggs": true, "nuts": true,
	"peanuts": true, "soy": true, "fish": true, "crustaceans": true,
	"molluscs": true, "celery": true, "mustard": true, "sesame": true,
	"lupin": true, "sulphites": true,
}

// FilterAllergens keeps only controlled-vocabulary allergen labels,
// deduplicated, dropping anything unknown.
func FilterAllergens(labels []string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, label := range labels {
		label = strings.ToLower(strings.TrimSpace(label))
		if !allergenLabels[label] || seen[label] {
			continue
		}
		seen[label] = true
		out = append(out, label)
	}
	return out
}

// knownRetailers are the store name fragments extracted from free-text
// store lists. Matching is case-insensitive substring.
var knownRetailers = []string{
	"edeka", "rewe", "aldi", "lidl", "kaufland",
	"netto", "penny", "real", "dm", "rossmann",
	"norma", "tegut", "globus",
}

// ExtractStores matches known retailer fragments against a free-text
// store list. Duplicates are removed; order follows the retailer list.
func ExtractStores(raw string) []string {
	lower := strings.ToLower(raw)
	if lower == "" {
		return nil
	}
	var out []string
	for _, retailer := range knownRetailers {
		if strings.Contains(lower, retailer) {
			out = append(out, retailer)
		}
	}
	return out
}

// domesticMarkers identify the home market in provider country lists.
var domesticMarkers = []string{"germany", "deutschland", "en:germany", "de"}

// ClassifyRegion buckets a provider country list into the provenance
// region vocabulary.
func ClassifyRegion(countries string) string {
	lower := strings.ToLower(strings.TrimSpace(countries))
	if lower == "" {
		return domain.RegionUnknown
	}
	for _, part := range strings.Split(lower, ",") {
		part = strings.TrimSpace(part)
		for _, marker := range domesticMarkers {
			if part == marker {
				return domain.RegionDomestic
			}
		}
	}
	return domain.RegionInternational
}
