package mealplan

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
	"github.com/pageza/recipe-buddy/backend/internal/search"
)

// dayMaxFactor is the tolerance above a limit goal before a day counts as
// over its maximum.
const dayMaxFactor = 1.10

var limitNutrients = []string{
	nlp.NutrientCalories, nlp.NutrientFat, nlp.NutrientSodium,
	nlp.NutrientSugar, nlp.NutrientSaturates,
}

var fitNutrients = []string{
	nlp.NutrientCalories, nlp.NutrientProtein, nlp.NutrientFat, nlp.NutrientSodium,
}

// slot layouts by meals per day, with each slot's share of the daily goals.
var slotLayouts = map[int][]slotSpec{
	2: {{"breakfast", 0.40}, {"dinner", 0.60}},
	3: {{"breakfast", 0.25}, {"lunch", 0.35}, {"dinner", 0.40}},
	4: {{"breakfast", 0.25}, {"lunch", 0.30}, {"dinner", 0.35}, {"snack", 0.10}},
}

type slotSpec struct {
	mealType string
	share    float64
}

// SlotMealTypes returns the meal type of each slot for n meals per day.
func SlotMealTypes(n int) []string {
	specs := slotLayouts[n]
	out := make([]string, len(specs))
	for i, s := range specs {
		out[i] = s.mealType
	}
	return out
}

func isMainMeal(mealType string) bool {
	return mealType == "lunch" || mealType == "dinner"
}

// Planner builds meal plans from the published corpus.
type Planner struct {
	holder *search.Holder
	scorer *search.Scorer
	now    func() time.Time
}

// NewPlanner creates a planner that scores meal-type fit with scorer.
func NewPlanner(holder *search.Holder, scorer *search.Scorer) *Planner {
	return &Planner{holder: holder, scorer: scorer, now: time.Now}
}

type candidate struct {
	recipe    *model.Recipe
	mealScore float64
	mains     []string
}

// Generate fills Days x MealsPerDay slots. Each slot takes the candidate
// with the best blend of nutrition fit and variety among those keeping
// the day under its maxima, falling back to the smallest overshoot.
func (p *Planner) Generate(ctx context.Context, req Request) (*Plan, error) {
	req, variety, goals, cons, err := normalize(req)
	if err != nil {
		return nil, err
	}
	corpus, err := p.holder.Corpus()
	if err != nil {
		return nil, err
	}

	specs := slotLayouts[req.MealsPerDay]
	pools := make([][]candidate, len(specs))
	for i, spec := range specs {
		pools[i] = p.pool(ctx, corpus, spec.mealType, cons)
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if len(pools[i]) == 0 {
			constraint := cons.describe()
			if cons.highProtein && isMainMeal(spec.mealType) {
				constraint = fmt.Sprintf("%s (protein >= %g)", constraint, HighProteinMin)
			}
			return nil, &SlotUnfillableError{Day: 1, Slot: i + 1, MealType: spec.mealType, Constraint: constraint}
		}
	}

	maxima := dayMaxima(goals)
	used := map[int64]struct{}{}
	mainsSeen := map[string]struct{}{}
	start := p.now().UTC().Truncate(24 * time.Hour)

	plan := &Plan{
		ID:          uuid.NewString(),
		GeneratedAt: p.now().UTC(),
		Request:     req,
		Days:        make([]DayPlan, 0, req.Days),
	}

	for d := 1; d <= req.Days; d++ {
		day := DayPlan{Day: d, Date: start.AddDate(0, 0, d-1).Format("2006-01-02")}
		for i, spec := range specs {
			target := slotTarget(goals, spec.share)
			best, fits := pick(pools[i], day.Totals, maxima, target, variety, used, mainsSeen)
			if !fits {
				plan.Warnings = append(plan.Warnings, fmt.Sprintf("day %d: %s exceeds the daily maximum", d, spec.mealType))
			}
			r := best.c.recipe
			used[r.ID] = struct{}{}
			for _, m := range best.c.mains {
				mainsSeen[m] = struct{}{}
			}
			day.Meals = append(day.Meals, Meal{
				Slot:      i + 1,
				MealType:  spec.mealType,
				RecipeID:  r.ID,
				Title:     r.Title,
				Nutrition: r.Nutrition,
				Score:     best.score,
			})
			day.Totals = day.Totals.Add(r.Nutrition)
		}
		plan.Days = append(plan.Days, day)
	}

	plan.Summary = summarize(plan.Days, goals, len(used))
	return plan, nil
}

func normalize(req Request) (Request, float64, Goals, constraints, error) {
	var cons constraints
	if req.Days < MinDays || req.Days > MaxDays {
		return req, 0, Goals{}, cons, fmt.Errorf("%w: days must be between %d and %d", ErrInvalidRequest, MinDays, MaxDays)
	}
	if req.MealsPerDay < MinMealsPerDay || req.MealsPerDay > MaxMealsPerDay {
		return req, 0, Goals{}, cons, fmt.Errorf("%w: meals_per_day must be between %d and %d", ErrInvalidRequest, MinMealsPerDay, MaxMealsPerDay)
	}
	variety := DefaultVarietyWeight
	if req.VarietyWeight != nil {
		variety = *req.VarietyWeight
		if variety < 0 || variety > 1 || math.IsNaN(variety) {
			return req, 0, Goals{}, cons, fmt.Errorf("%w: variety_weight must be between 0 and 1", ErrInvalidRequest)
		}
	}
	req.VarietyWeight = &variety

	goals := DefaultGoals()
	if req.Goals != nil {
		g := *req.Goals
		if g.Calories < 0 || g.Protein < 0 || g.Fat < 0 || g.Sodium < 0 || g.Sugar < 0 || g.Saturates < 0 {
			return req, 0, Goals{}, cons, fmt.Errorf("%w: nutrition goals must be non-negative", ErrInvalidRequest)
		}
		if g.Calories > 0 {
			goals.Calories = g.Calories
		}
		if g.Protein > 0 {
			goals.Protein = g.Protein
		}
		if g.Fat > 0 {
			goals.Fat = g.Fat
		}
		if g.Sodium > 0 {
			goals.Sodium = g.Sodium
		}
		goals.Sugar = g.Sugar
		goals.Saturates = g.Saturates
	}
	req.Goals = &goals

	cons, err := resolvePreferences(req.Preferences)
	if err != nil {
		return req, 0, Goals{}, cons, err
	}
	req.Preferences = cons.prefs
	return req, variety, goals, cons, nil
}

// pool returns the recipes that pass the slot's hard constraints, with
// their meal-type score precomputed.
func (p *Planner) pool(ctx context.Context, c *search.Corpus, mealType string, cons constraints) []candidate {
	q := &nlp.StructuredQuery{ExcludedIngredients: cons.excluded}
	if cons.highProtein && isMainMeal(mealType) {
		q.SetMin(nlp.NutrientProtein, HighProteinMin)
	}
	mealQ := &nlp.StructuredQuery{MealType: mealType}
	mealWeight := p.scorer.Weights().MealType

	var out []candidate
	for i := 0; i < c.Len(); i++ {
		if i%1024 == 0 && ctx.Err() != nil {
			return nil
		}
		r := c.At(i)
		if !search.Check(r, q).Passed() {
			continue
		}
		points, _ := p.scorer.Score(r, mealQ)
		score := 0.0
		if mealWeight > 0 {
			score = math.Min(1, points/mealWeight)
		}
		out = append(out, candidate{recipe: r, mealScore: score, mains: mainIngredients(r)})
	}
	return out
}

func mainIngredients(r *model.Recipe) []string {
	var out []string
	seen := map[string]struct{}{}
	for _, line := range r.Ingredients {
		m := nlp.MainIngredient(line)
		if m == "" {
			continue
		}
		if _, dup := seen[m]; dup {
			continue
		}
		seen[m] = struct{}{}
		out = append(out, m)
	}
	return out
}

type choice struct {
	c         candidate
	score     float64
	overshoot float64
}

// pick selects the best candidate for a slot. fits is false when every
// candidate pushes the day over a maximum.
func pick(pool []candidate, totals model.Nutrition, maxima map[string]float64, target map[string]float64, variety float64, used map[int64]struct{}, mainsSeen map[string]struct{}) (choice, bool) {
	choices := make([]choice, 0, len(pool))
	for _, c := range pool {
		base := 0.7*nutritionFit(c.recipe.Nutrition, target) + 0.3*c.mealScore

		usedPenalty := 0.0
		if _, ok := used[c.recipe.ID]; ok {
			usedPenalty = 1
		}
		repeated := 0.0
		if len(c.mains) > 0 {
			n := 0
			for _, m := range c.mains {
				if _, ok := mainsSeen[m]; ok {
					n++
				}
			}
			repeated = float64(n) / float64(len(c.mains))
		}
		v := 1 - (0.7*usedPenalty + 0.3*repeated)

		choices = append(choices, choice{
			c:         c,
			score:     (1-variety)*base + variety*v,
			overshoot: overshoot(totals.Add(c.recipe.Nutrition), maxima),
		})
	}

	sort.SliceStable(choices, func(i, j int) bool {
		fi, fj := choices[i].overshoot == 0, choices[j].overshoot == 0
		if fi != fj {
			return fi
		}
		if !fi && choices[i].overshoot != choices[j].overshoot {
			return choices[i].overshoot < choices[j].overshoot
		}
		if choices[i].score != choices[j].score {
			return choices[i].score > choices[j].score
		}
		return choices[i].c.recipe.ID < choices[j].c.recipe.ID
	})
	return choices[0], choices[0].overshoot == 0
}

func dayMaxima(g Goals) map[string]float64 {
	out := map[string]float64{}
	for _, n := range limitNutrients {
		if v := g.get(n); v > 0 {
			out[n] = v * dayMaxFactor
		}
	}
	return out
}

func slotTarget(g Goals, share float64) map[string]float64 {
	out := map[string]float64{}
	for _, n := range fitNutrients {
		if v := g.get(n); v > 0 {
			out[n] = v * share
		}
	}
	return out
}

// overshoot is the summed relative excess over the day maxima.
func overshoot(totals model.Nutrition, maxima map[string]float64) float64 {
	var s float64
	for _, n := range limitNutrients {
		limit, ok := maxima[n]
		if !ok {
			continue
		}
		if v, ok := totals.Get(n); ok && v > limit {
			s += (v - limit) / limit
		}
	}
	return s
}

// nutritionFit averages, over the targeted nutrients, how close the
// recipe is to the slot target. Unknown values contribute 0.
func nutritionFit(n model.Nutrition, target map[string]float64) float64 {
	if len(target) == 0 {
		return 0
	}
	var s float64
	for _, name := range fitNutrients {
		t, ok := target[name]
		if !ok {
			continue
		}
		v, ok := n.Get(name)
		if !ok {
			continue
		}
		s += 1 - math.Min(1, math.Abs(v-t)/t)
	}
	return s / float64(len(target))
}

func summarize(days []DayPlan, goals Goals, distinct int) Summary {
	var total model.Nutrition
	for _, d := range days {
		total = total.Add(d.Totals)
	}
	avg := scale(total, 1/float64(len(days)))

	achievement := map[string]float64{}
	for _, n := range fitNutrients {
		g := goals.get(n)
		v, ok := avg.Get(n)
		if g <= 0 || !ok {
			continue
		}
		achievement[n] = math.Round(v/g*1000) / 10
	}
	return Summary{
		Total:           total,
		DailyAverage:    avg,
		GoalAchievement: achievement,
		DistinctRecipes: distinct,
	}
}

func scale(n model.Nutrition, k float64) model.Nutrition {
	mul := func(p *float64) *float64 {
		if p == nil {
			return nil
		}
		v := *p * k
		return &v
	}
	return model.Nutrition{
		Calories:  mul(n.Calories),
		Protein:   mul(n.Protein),
		Fat:       mul(n.Fat),
		Sodium:    mul(n.Sodium),
		Sugar:     mul(n.Sugar),
		Saturates: mul(n.Saturates),
	}
}
