package mealplan

import (
	"fmt"
	"strings"
)

// Dietary preference names.
const (
	PrefVegetarian  = "vegetarian"
	PrefDairyFree   = "dairy-free"
	PrefGlutenFree  = "gluten-free"
	PrefNutFree     = "nut-free"
	PrefLowCarb     = "low-carb"
	PrefHighProtein = "high-protein"
)

// HighProteinMin is the protein floor applied to main meals.
const HighProteinMin = 20.0

var preferenceExclusions = map[string][]string{
	PrefVegetarian: {
		"chicken", "beef", "pork", "lamb", "turkey", "duck", "goose",
		"bacon", "ham", "sausage", "chorizo", "salami", "prosciutto",
		"pancetta", "pepperoni", "veal", "venison", "meat", "steak",
		"gelatin", "fish", "salmon", "tuna", "sardine", "anchov", "shrimp",
		"prawn", "crab", "lobster", "cod", "tilapia", "scallop", "mussel",
		"clam", "oyster", "squid", "octopus",
	},
	PrefDairyFree: {
		"milk", "cheese", "butter", "cream", "yogurt", "mozzarella",
		"parmesan", "cheddar", "feta", "ricotta", "ghee",
	},
	PrefGlutenFree: {
		"flour", "bread", "pasta", "noodles", "spaghetti", "wheat", "barley",
		"rye", "couscous", "tortilla", "cracker",
	},
	PrefNutFree: {
		"almond", "walnut", "pecan", "cashew", "peanut", "pistachio",
		"hazelnut", "macadamia",
	},
	PrefLowCarb: {
		"bread", "pasta", "rice", "potato", "sugar", "flour", "noodles", "tortilla",
	},
	PrefHighProtein: nil,
}

// KnownPreferences lists the accepted preference names.
func KnownPreferences() []string {
	return []string{PrefVegetarian, PrefDairyFree, PrefGlutenFree, PrefNutFree, PrefLowCarb, PrefHighProtein}
}

// normalizePreference folds "Dairy Free" and "dairy_free" to "dairy-free".
func normalizePreference(p string) string {
	p = strings.ToLower(strings.TrimSpace(p))
	return strings.NewReplacer("_", "-", " ", "-").Replace(p)
}

// constraints is the resolved hard constraint set of a request.
type constraints struct {
	prefs       []string
	excluded    []string
	highProtein bool
}

func resolvePreferences(prefs []string) (constraints, error) {
	var c constraints
	seen := map[string]struct{}{}
	excl := map[string]struct{}{}
	for _, raw := range prefs {
		p := normalizePreference(raw)
		if p == "" {
			continue
		}
		terms, ok := preferenceExclusions[p]
		if !ok {
			return c, fmt.Errorf("%w: unknown preference %q", ErrInvalidRequest, raw)
		}
		if _, dup := seen[p]; dup {
			continue
		}
		seen[p] = struct{}{}
		c.prefs = append(c.prefs, p)
		if p == PrefHighProtein {
			c.highProtein = true
		}
		for _, t := range terms {
			if _, dup := excl[t]; !dup {
				excl[t] = struct{}{}
				c.excluded = append(c.excluded, t)
			}
		}
	}
	return c, nil
}

func (c constraints) describe() string {
	if len(c.prefs) == 0 {
		return "none"
	}
	return strings.Join(c.prefs, ",")
}
