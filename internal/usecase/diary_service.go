package usecase

import (
	"fmt"
	"strings"

	"github.com/nutridex/backend/internal/domain"
	"github.com/nutridex/backend/internal/normalize"
)

// maxPatternFlags caps the flags surfaced to downstream consumers.
const maxPatternFlags = 5

// Energy densities in kcal per gram.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// patternRule flags entries whose food name contains one of the
// keywords. Keywords are matched case-insensitively.
type patternRule struct {
	label    string
	keywords []string
}

var patternRules = []patternRule{
	{
		label: "sugary drink",
		keywords: []string{
			"cola", "limonade", "limo", "soda", "energy drink",
			"eistee", "ice tea", "fruchtsaftgetränk",
		},
	},
	{
		label: "fast food",
		keywords: []string{
			"burger", "pommes", "fries", "pizza", "döner", "doner",
			"nugget", "hot dog", "currywurst", "fast food",
		},
	},
	{
		label: "confectionery",
		keywords: []string{
			"schokolade", "chocolate", "bonbon", "gummibär", "kuchen",
			"cookie", "keks", "candy", "donut", "croissant", "torte",
		},
	},
}

// DiaryService aggregates previously-logged diary entries into a
// summary used as context by the assistant. It performs no I/O.
type DiaryService struct{}

// NewDiaryService creates a diary analyzer.
func NewDiaryService() *DiaryService {
	return &DiaryService{}
}

// Analyze folds a window of diary entries into a DiarySummary. The
// entries are assumed to be pre-filtered to the caller's window; the
// distinct-day count comes from the entries themselves, not the window
// length, since users may log on fewer days.
func (s *DiaryService) Analyze(entries []domain.DiaryEntry) *domain.DiarySummary {
	summary := &domain.DiarySummary{
		EntryCount: len(entries),
		FoodCounts: make(map[string]int),
		MealCounts: make(map[string]int),
	}

	days := make(map[string]bool)
	for _, entry := range entries {
		summary.Totals.Calories += entry.Calories
		summary.Totals.Protein += entry.Protein
		summary.Totals.Carbs += entry.Carbs
		summary.Totals.Fat += entry.Fat
		summary.Totals.Sugar += entry.Sugar
		summary.Totals.Fiber += entry.Fiber
		summary.Totals.Sodium += entry.Sodium

		days[entry.LoggedAt.Format("2006-01-02")] = true

		if name := strings.TrimSpace(entry.FoodName); name != "" {
			summary.FoodCounts[name]++
		}
		if meal := strings.TrimSpace(strings.ToLower(entry.MealType)); meal != "" {
			summary.MealCounts[meal]++
		}

		if len(summary.Flags) < maxPatternFlags {
			if flag, ok := matchPattern(entry.FoodName); ok {
				summary.Flags = append(summary.Flags, flag)
			}
		}
	}

	summary.DaysLogged = len(days)
	summary.Totals = roundTotals(summary.Totals)

	den := summary.DaysLogged
	if den < 1 {
		den = 1
	}
	summary.DailyAverages = domain.DiaryTotals{
		Calories: normalize.Round2(summary.Totals.Calories / float64(den)),
		Protein:  normalize.Round2(summary.Totals.Protein / float64(den)),
		Carbs:    normalize.Round2(summary.Totals.Carbs / float64(den)),
		Fat:      normalize.Round2(summary.Totals.Fat / float64(den)),
		Sugar:    normalize.Round2(summary.Totals.Sugar / float64(den)),
		Fiber:    normalize.Round2(summary.Totals.Fiber / float64(den)),
		Sodium:   normalize.Round2(summary.Totals.Sodium / float64(den)),
	}

	summary.Ratios = macroRatios(summary.Totals)
	return summary
}

// macroRatios computes the share of total energy per macro. All zero
// when no calories were logged.
func macroRatios(totals domain.DiaryTotals) domain.MacroRatios {
	if totals.Calories <= 0 {
		return domain.MacroRatios{}
	}
	return domain.MacroRatios{
		ProteinPct: normalize.Round2(totals.Protein * kcalPerGramProtein / totals.Calories * 100),
		CarbsPct:   normalize.Round2(totals.Carbs * kcalPerGramCarbs / totals.Calories * 100),
		FatPct:     normalize.Round2(totals.Fat * kcalPerGramFat / totals.Calories * 100),
	}
}

// matchPattern returns a human-readable flag for the first rule whose
// keywords match the food name.
func matchPattern(foodName string) (string, bool) {
	nameLower := strings.ToLower(foodName)
	for _, rule := range patternRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(nameLower, keyword) {
				return fmt.Sprintf("%s: %s", rule.label, strings.TrimSpace(foodName)), true
			}
		}
	}
	return "", false
}

func roundTotals(t domain.DiaryTotals) domain.DiaryTotals {
	return domain.DiaryTotals{
		Calories: normalize.Round2(t.Calories),
		Protein:  normalize.Round2(t.Protein),
		Carbs:    normalize.Round2(t.Carbs),
		Fat:      normalize.Round2(t.Fat),
		Sugar:    normalize.Round2(t.Sugar),
		Fiber:    normalize.Round2(t.Fiber),
		Sodium:   normalize.Round2(t.Sodium),
	}
}
