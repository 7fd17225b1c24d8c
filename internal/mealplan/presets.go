package mealplan

import (
	"fmt"
	"sort"
)

// DefaultPresetDays is the plan length of a quick plan.
const DefaultPresetDays = 3

type preset struct {
	prefs []string
	goals Goals
}

var presets = map[string]preset{
	"vegetarian":   {prefs: []string{PrefVegetarian}, goals: DefaultGoals()},
	"high_protein": {prefs: []string{PrefHighProtein}, goals: Goals{Calories: 2200, Protein: 120, Fat: 70, Sodium: 2300}},
	"low_carb":     {prefs: []string{PrefLowCarb}, goals: Goals{Calories: 1800, Protein: 90, Fat: 80, Sodium: 2300}},
	"balanced":     {goals: DefaultGoals()},
}

// PresetNames lists the quick plan presets.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for n := range presets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Preset builds a three-meals-a-day request for a named diet. days <= 0
// selects DefaultPresetDays.
func Preset(name string, days int) (Request, error) {
	p, ok := presets[name]
	if !ok {
		return Request{}, fmt.Errorf("%w: unknown preset %q", ErrInvalidRequest, name)
	}
	if days <= 0 {
		days = DefaultPresetDays
	}
	goals := p.goals
	variety := DefaultVarietyWeight
	return Request{
		Days:          days,
		MealsPerDay:   3,
		Preferences:   append([]string(nil), p.prefs...),
		Goals:         &goals,
		VarietyWeight: &variety,
	}, nil
}
