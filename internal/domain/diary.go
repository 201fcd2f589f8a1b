package domain

import "time"

// DiaryEntry is a single logged food item within the analysis window.
// Entries are produced and windowed by the caller; the analyzer only
// aggregates them.
type DiaryEntry struct {
	FoodName string    `json:"foodName"`
	MealType string    `json:"mealType"`
	Calories float64   `json:"calories"`
	Protein  float64   `json:"protein"`
	Carbs    float64   `json:"carbs"`
	Fat      float64   `json:"fat"`
	Sugar    float64   `json:"sugar"`
	Fiber    float64   `json:"fiber"`
	Sodium   float64   `json:"sodium"`
	LoggedAt time.Time `json:"loggedAt"`
}

// DiaryTotals holds summed nutrient values over the window.
type DiaryTotals struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Carbs    float64 `json:"carbs"`
	Fat      float64 `json:"fat"`
	Sugar    float64 `json:"sugar"`
	Fiber    float64 `json:"fiber"`
	Sodium   float64 `json:"sodium"`
}

// MacroRatios are the shares of total energy contributed by each macro,
// in percent. All zero when total calories is zero.
type MacroRatios struct {
	ProteinPct float64 `json:"proteinPct"`
	CarbsPct   float64 `json:"carbsPct"`
	FatPct     float64 `json:"fatPct"`
}

// DiarySummary is the derived aggregate over a set of diary entries.
// Computed fresh per request and never mutated in place.
type DiarySummary struct {
	EntryCount    int            `json:"entryCount"`
	DaysLogged    int            `json:"daysLogged"`
	Totals        DiaryTotals    `json:"totals"`
	DailyAverages DiaryTotals    `json:"dailyAverages"`
	Ratios        MacroRatios    `json:"ratios"`
	FoodCounts    map[string]int `json:"foodCounts"`
	MealCounts    map[string]int `json:"mealCounts"`
	Flags         []string       `json:"flags,omitempty"`
}
