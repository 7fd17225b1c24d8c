package mealplan

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
	"github.com/pageza/recipe-buddy/backend/internal/search"
)

func n(cal, protein, fat, sodium float64) model.Nutrition {
	return model.Nutrition{Calories: model.Float(cal), Protein: model.Float(protein), Fat: model.Float(fat), Sodium: model.Float(sodium)}
}

func planRecipes() []model.Recipe {
	return []model.Recipe{
		{ID: 1, Title: "Veggie Omelette", Ingredients: model.JSONBStringArray{"3 eggs", "1 cup spinach", "1/4 cup cheese"}, Categories: model.JSONBStringArray{"Breakfast"}, Nutrition: n(300, 20, 15, 400)},
		{ID: 2, Title: "Overnight Oats", Ingredients: model.JSONBStringArray{"1 cup rolled oats", "1 cup almond milk", "berries"}, Categories: model.JSONBStringArray{"Breakfast"}, Nutrition: n(350, 12, 8, 100)},
		{ID: 3, Title: "Grilled Chicken Salad", Ingredients: model.JSONBStringArray{"1 chicken breast", "2 cups lettuce", "1 tomato"}, Categories: model.JSONBStringArray{"Lunch"}, Nutrition: n(400, 35, 12, 500)},
		{ID: 4, Title: "Lentil Curry", Ingredients: model.JSONBStringArray{"1 cup lentils", "2 tomatoes", "1 can coconut milk", "1 cup rice"}, Categories: model.JSONBStringArray{"Dinner"}, Nutrition: n(500, 22, 14, 600)},
		{ID: 5, Title: "Salmon with Asparagus", Ingredients: model.JSONBStringArray{"1 salmon fillet", "asparagus", "lemon"}, Categories: model.JSONBStringArray{"Dinner"}, Nutrition: n(450, 34, 20, 350)},
		{ID: 6, Title: "Beef Stir Fry", Ingredients: model.JSONBStringArray{"8 ounces beef", "broccoli", "soy sauce", "1 cup rice"}, Categories: model.JSONBStringArray{"Dinner"}, Nutrition: n(550, 32, 18, 900)},
		{ID: 7, Title: "Hummus Plate", Ingredients: model.JSONBStringArray{"1 can chickpeas", "tahini", "carrots"}, Categories: model.JSONBStringArray{"Snack"}, Nutrition: n(250, 8, 12, 300)},
		{ID: 8, Title: "Greek Yogurt Parfait", Ingredients: model.JSONBStringArray{"1 cup yogurt", "granola", "honey"}, Categories: model.JSONBStringArray{"Breakfast"}, Nutrition: n(280, 18, 6, 80)},
	}
}

func newTestPlanner(recipes []model.Recipe) *Planner {
	holder := search.NewHolder(nil, search.TFIDFOptions{})
	holder.Set(search.NewCorpus(recipes, search.TFIDFOptions{}))
	p := NewPlanner(holder, search.NewScorer(search.DefaultWeights()))
	p.now = func() time.Time { return time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC) }
	return p
}

func weight(v float64) *float64 { return &v }

func TestGenerateSlotCountInvariant(t *testing.T) {
	p := newTestPlanner(planRecipes())

	plan, err := p.Generate(context.Background(), Request{Days: 3, MealsPerDay: 4})
	require.NoError(t, err)

	require.Len(t, plan.Days, 3)
	assert.NotEmpty(t, plan.ID)
	for i, d := range plan.Days {
		assert.Equal(t, i+1, d.Day)
		require.Len(t, d.Meals, 4)
		for j, m := range d.Meals {
			assert.Equal(t, j+1, m.Slot)
			assert.Equal(t, SlotMealTypes(4)[j], m.MealType)
		}
	}
	assert.Equal(t, "2024-03-01", plan.Days[0].Date)
	assert.Equal(t, "2024-03-03", plan.Days[2].Date)
	assert.Empty(t, plan.Warnings)
}

func TestGenerateHonoursPreferences(t *testing.T) {
	p := newTestPlanner(planRecipes())

	plan, err := p.Generate(context.Background(), Request{Days: 2, MealsPerDay: 3, Preferences: []string{"Vegetarian"}})
	require.NoError(t, err)
	assert.Equal(t, []string{PrefVegetarian}, plan.Request.Preferences)

	cons, err := resolvePreferences([]string{PrefVegetarian})
	require.NoError(t, err)
	q := &nlp.StructuredQuery{ExcludedIngredients: cons.excluded}

	corpus, err := p.holder.Corpus()
	require.NoError(t, err)
	for _, d := range plan.Days {
		require.Len(t, d.Meals, 3)
		for _, m := range d.Meals {
			r, ok := corpus.Recipe(m.RecipeID)
			require.True(t, ok)
			assert.True(t, search.Check(r, q).Passed(), "recipe %d violates vegetarian", m.RecipeID)
			assert.NotContains(t, []int64{3, 5, 6}, m.RecipeID)
		}
	}
}

func TestGenerateVegetarianExcludesCuredMeats(t *testing.T) {
	meaty := []model.Recipe{
		{ID: 101, Title: "Ham and Cheese Omelette", Ingredients: model.JSONBStringArray{"3 eggs", "2 slices ham", "cheddar"}, Categories: model.JSONBStringArray{"Breakfast"}, Nutrition: n(420, 28, 30, 900)},
		{ID: 102, Title: "Chorizo Hash", Ingredients: model.JSONBStringArray{"chorizo", "2 potatoes", "1 onion"}, Categories: model.JSONBStringArray{"Dinner"}, Nutrition: n(520, 22, 32, 1100)},
	}

	_, err := newTestPlanner(meaty).Generate(context.Background(), Request{Days: 1, MealsPerDay: 2, Preferences: []string{PrefVegetarian}})
	var slotErr *SlotUnfillableError
	require.True(t, errors.As(err, &slotErr), "got %v", err)

	plan, err := newTestPlanner(append(planRecipes(), meaty...)).Generate(context.Background(), Request{Days: 2, MealsPerDay: 2, Preferences: []string{PrefVegetarian}})
	require.NoError(t, err)
	for _, d := range plan.Days {
		for _, m := range d.Meals {
			assert.NotContains(t, []int64{101, 102}, m.RecipeID)
		}
	}
}

func TestGenerateSlotUnfillable(t *testing.T) {
	p := newTestPlanner(planRecipes())

	_, err := p.Generate(context.Background(), Request{
		Days:        2,
		MealsPerDay: 3,
		Preferences: []string{"vegetarian", "dairy_free", "gluten free", "nut-free", "high-protein"},
	})
	require.Error(t, err)

	var slotErr *SlotUnfillableError
	require.True(t, errors.As(err, &slotErr))
	assert.Equal(t, 1, slotErr.Day)
	assert.Equal(t, 2, slotErr.Slot)
	assert.Equal(t, "lunch", slotErr.MealType)
	assert.Contains(t, slotErr.Constraint, "high-protein")
}

func TestGenerateVarietyWeight(t *testing.T) {
	p := newTestPlanner(planRecipes())

	plan, err := p.Generate(context.Background(), Request{Days: 2, MealsPerDay: 2, VarietyWeight: weight(1)})
	require.NoError(t, err)
	assert.Equal(t, 4, plan.Summary.DistinctRecipes)

	plan, err = p.Generate(context.Background(), Request{Days: 2, MealsPerDay: 2, VarietyWeight: weight(0)})
	require.NoError(t, err)
	for i := range plan.Days[0].Meals {
		assert.Equal(t, plan.Days[0].Meals[i].RecipeID, plan.Days[1].Meals[i].RecipeID)
	}
}

func TestGenerateSummary(t *testing.T) {
	p := newTestPlanner(planRecipes())

	plan, err := p.Generate(context.Background(), Request{Days: 2, MealsPerDay: 3})
	require.NoError(t, err)

	var total float64
	for _, d := range plan.Days {
		var day float64
		for _, m := range d.Meals {
			day += *m.Nutrition.Calories
		}
		assert.InDelta(t, day, *d.Totals.Calories, 1e-9)
		total += day
	}
	assert.InDelta(t, total, *plan.Summary.Total.Calories, 1e-9)
	assert.InDelta(t, total/2, *plan.Summary.DailyAverage.Calories, 1e-9)
	assert.InDelta(t, total/2/2000*100, plan.Summary.GoalAchievement["calories"], 0.05)
}

func TestGenerateOvershootWarning(t *testing.T) {
	p := newTestPlanner(planRecipes())

	plan, err := p.Generate(context.Background(), Request{Days: 1, MealsPerDay: 2, Goals: &Goals{Calories: 400}})
	require.NoError(t, err)
	require.Len(t, plan.Days[0].Meals, 2)
	assert.NotEmpty(t, plan.Warnings)
}

func TestGenerateInvalidRequests(t *testing.T) {
	p := newTestPlanner(planRecipes())

	tests := []struct {
		name string
		req  Request
	}{
		{"zero days", Request{Days: 0, MealsPerDay: 3}},
		{"too many days", Request{Days: 8, MealsPerDay: 3}},
		{"one meal", Request{Days: 1, MealsPerDay: 1}},
		{"five meals", Request{Days: 1, MealsPerDay: 5}},
		{"variety above one", Request{Days: 1, MealsPerDay: 3, VarietyWeight: weight(1.5)}},
		{"negative goal", Request{Days: 1, MealsPerDay: 3, Goals: &Goals{Calories: -1}}},
		{"unknown preference", Request{Days: 1, MealsPerDay: 3, Preferences: []string{"carnivore"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Generate(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidRequest)
		})
	}
}

func TestGenerateWithoutCorpus(t *testing.T) {
	p := NewPlanner(search.NewHolder(nil, search.TFIDFOptions{}), search.NewScorer(search.DefaultWeights()))

	_, err := p.Generate(context.Background(), Request{Days: 1, MealsPerDay: 2})
	assert.ErrorIs(t, err, search.ErrCorpusUnavailable)
}

func TestPreset(t *testing.T) {
	req, err := Preset("vegetarian", 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultPresetDays, req.Days)
	assert.Equal(t, 3, req.MealsPerDay)
	assert.Equal(t, []string{PrefVegetarian}, req.Preferences)

	_, err = Preset("paleo", 2)
	assert.ErrorIs(t, err, ErrInvalidRequest)

	assert.Equal(t, []string{"balanced", "high_protein", "low_carb", "vegetarian"}, PresetNames())

	p := newTestPlanner(planRecipes())
	for _, name := range PresetNames() {
		req, err := Preset(name, 2)
		require.NoError(t, err)
		_, err = p.Generate(context.Background(), req)
		assert.NoError(t, err, name)
	}
}
