package app

import (
	"math"
	"slices"

	"github.com/pscheid92/notecanvas/internal/domain"
)

const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

const (
	DietKetogenic   = "Ketogenic Diet"
	DietLowCarbHigh = "Low-Carb High-Fat"
	DietHighProtein = "High-Protein Diet"
	DietHighCarb    = "High-Carb Diet"
	DietBalanced    = "Balanced Diet"
	DietMixed       = "Mixed Diet"
)

// MacroSplit is the share of macro calories per macronutrient, in whole percent.
type MacroSplit struct {
	Protein int `json:"protein"`
	Carbs   int `json:"carbs"`
	Fat     int `json:"fat"`
}

type DaySummary struct {
	Date     string           `json:"date"`
	Totals   domain.Nutrients `json:"totals"`
	Split    MacroSplit       `json:"split"`
	DietType string           `json:"diet_type"`
}

type DayGroup struct {
	Summary DaySummary
	Entries []domain.FoodEntry
}

func Totals(entries []domain.FoodEntry) domain.Nutrients {
	var t domain.Nutrients
	for _, e := range entries {
		t.Calories += e.Nutrients.Calories
		t.Protein += e.Nutrients.Protein
		t.Carbs += e.Nutrients.Carbs
		t.Fat += e.Nutrients.Fat
	}
	return t
}

// Split computes macro percentages from grams; ok is false when there are no
// macro calories at all.
func Split(n domain.Nutrients) (split MacroSplit, ok bool) {
	protein := float64(n.Protein * kcalPerGramProtein)
	carbs := float64(n.Carbs * kcalPerGramCarbs)
	fat := float64(n.Fat * kcalPerGramFat)
	total := protein + carbs + fat
	if total <= 0 {
		return MacroSplit{}, false
	}
	return MacroSplit{
		Protein: roundHalfUp(protein / total * 100),
		Carbs:   roundHalfUp(carbs / total * 100),
		Fat:     roundHalfUp(fat / total * 100),
	}, true
}

func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}

// ClassifyDiet names the diet a macro split corresponds to. Rules are checked
// in order; the first match wins.
func ClassifyDiet(s MacroSplit) string {
	switch {
	case s.Fat >= 60 && s.Carbs <= 10:
		return DietKetogenic
	case s.Fat >= 50 && s.Carbs <= 20:
		return DietLowCarbHigh
	case s.Protein >= 35:
		return DietHighProtein
	case s.Carbs >= 55:
		return DietHighCarb
	case s.Protein >= 25 && s.Protein <= 35 &&
		s.Carbs >= 40 && s.Carbs <= 50 &&
		s.Fat >= 20 && s.Fat <= 35:
		return DietBalanced
	default:
		return DietMixed
	}
}

func Summarize(date string, entries []domain.FoodEntry) DaySummary {
	totals := Totals(entries)
	summary := DaySummary{Date: date, Totals: totals}
	if split, ok := Split(totals); ok {
		summary.Split = split
		summary.DietType = ClassifyDiet(split)
	}
	return summary
}

// GroupByDate buckets entries per day, newest day first. Entry order within
// a day is preserved.
func GroupByDate(entries []domain.FoodEntry) []DayGroup {
	byDate := make(map[string][]domain.FoodEntry)
	for _, e := range entries {
		byDate[e.Date] = append(byDate[e.Date], e)
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	slices.Sort(dates)
	slices.Reverse(dates)

	groups := make([]DayGroup, 0, len(dates))
	for _, d := range dates {
		groups = append(groups, DayGroup{Summary: Summarize(d, byDate[d]), Entries: byDate[d]})
	}
	return groups
}
