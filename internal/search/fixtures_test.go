package search

import (
	"context"
	"errors"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/nlp"
)

func f(v float64) *float64 { return &v }

func testRecipes() []model.Recipe {
	return []model.Recipe{
		{
			ID:    1,
			Title: "Chicken Breasts Stuffed with Goat Cheese and Sun-Dried Tomatoes",
			Ingredients: model.JSONBStringArray{
				"4 boneless chicken breasts",
				"4 ounces goat cheese",
				"1/2 cup sun-dried tomatoes",
				"2 tablespoons fresh basil",
			},
			Categories: model.JSONBStringArray{"Main Dish"},
			Nutrition:  model.Nutrition{Calories: f(320), Protein: f(18.6), Fat: f(12), Sodium: f(400)},
		},
		{
			ID:    2,
			Title: "Chicken Tomato Bake",
			Ingredients: model.JSONBStringArray{
				"2 chicken thighs",
				"3 tomatoes",
				"1 tsp onion powder",
			},
			Categories: model.JSONBStringArray{"Main Dish"},
			Nutrition:  model.Nutrition{Calories: f(380), Protein: f(30), Fat: f(14), Sodium: f(520)},
		},
		{
			ID:          3,
			Title:       "Creamy Tomato Pasta",
			Ingredients: model.JSONBStringArray{"8 ounces pasta", "2 tomatoes", "1/2 cup heavy cream"},
			Categories:  model.JSONBStringArray{"Italian"},
			Nutrition:   model.Nutrition{Calories: f(450), Protein: f(12), Fat: f(18), Sodium: f(300)},
		},
		{
			ID:          4,
			Title:       "Spaghetti Carbonara",
			Ingredients: model.JSONBStringArray{"1 pound spaghetti", "4 slices bacon", "2 eggs", "parmesan cheese"},
			Categories:  model.JSONBStringArray{"Italian"},
			Nutrition:   model.Nutrition{Calories: f(600), Protein: f(22), Fat: f(28), Sodium: f(700)},
		},
		{
			ID:          5,
			Title:       "Vegetable Soup",
			Ingredients: model.JSONBStringArray{"3 carrots", "2 stalks celery", "2 potatoes", "vegetable broth"},
			Categories:  model.JSONBStringArray{"Soup", "Vegetarian"},
		},
		{
			ID:          6,
			Title:       "Chicken Noodle Soup",
			Ingredients: model.JSONBStringArray{"2 cups shredded chicken", "egg noodles", "3 carrots", "2 stalks celery"},
			Categories:  model.JSONBStringArray{"Soup"},
			Nutrition:   model.Nutrition{Calories: f(250), Protein: f(15), Fat: f(6), Sodium: f(800)},
		},
	}
}

type staticLoader struct {
	recipes []model.Recipe
	err     error
}

func (l *staticLoader) LoadRecipes(ctx context.Context) ([]model.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return l.recipes, l.err
}

var errStoreDown = errors.New("connection refused")

func newTestEngine(opts ...EngineOption) *Engine {
	holder := NewHolder(&staticLoader{recipes: testRecipes()}, TFIDFOptions{})
	if _, err := holder.Refresh(context.Background()); err != nil {
		panic(err)
	}
	return NewEngine(holder, nlp.NewParser(nlp.DefaultVocabulary()), DefaultWeights(), opts...)
}
