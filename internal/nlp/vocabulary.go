package nlp

import "strings"

// Keywords maps a canonical label (a category or meal type) to the words
// that signal it in a query.
type Keywords struct {
	Name     string
	Keywords []string
}

// BoundKind says which side of a nutrition range a modifier sets.
type BoundKind int

const (
	BoundMin BoundKind = iota
	BoundMax
)

// NutritionModifier is one row of the qualitative modifier table, e.g.
// "high protein" sets protein.min = 15.
type NutritionModifier struct {
	Phrase   string
	Nutrient string
	Bound    BoundKind
	Value    float64
}

// Nutrient names understood by the parser and the filter.
const (
	NutrientCalories  = "calories"
	NutrientProtein   = "protein"
	NutrientFat       = "fat"
	NutrientSodium    = "sodium"
	NutrientSugar     = "sugar"
	NutrientSaturates = "saturates"
)

// Vocabulary holds the gazetteers used by the spell corrector and the
// parser. Build it once with DefaultVocabulary and share it; nothing in
// this package modifies a Vocabulary after construction.
type Vocabulary struct {
	Ingredients   []string
	DishNames     []string
	Categories    []Keywords
	MealTypes     []Keywords
	NegationWords []string
	Modifiers     []NutritionModifier

	skip       map[string]struct{}
	dishes     map[string]struct{}
	dictionary []string
	known      map[string]struct{}
}

// DefaultVocabulary returns the built-in food vocabulary.
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{
		Ingredients:   clone(defaultIngredients),
		DishNames:     clone(defaultDishNames),
		Categories:    cloneKeywords(defaultCategories),
		MealTypes:     cloneKeywords(defaultMealTypes),
		NegationWords: clone(defaultNegationWords),
		Modifiers:     append([]NutritionModifier(nil), defaultModifiers...),
	}
	v.index()
	return v
}

// NewVocabulary builds a vocabulary from custom gazetteers. Empty
// arguments fall back to the defaults.
func NewVocabulary(ingredients, dishes []string, categories, mealTypes []Keywords) *Vocabulary {
	v := DefaultVocabulary()
	if len(ingredients) > 0 {
		v.Ingredients = clone(ingredients)
	}
	if len(dishes) > 0 {
		v.DishNames = clone(dishes)
	}
	if len(categories) > 0 {
		v.Categories = cloneKeywords(categories)
	}
	if len(mealTypes) > 0 {
		v.MealTypes = cloneKeywords(mealTypes)
	}
	v.index()
	return v
}

func (v *Vocabulary) index() {
	v.dishes = make(map[string]struct{}, len(v.DishNames))
	for _, d := range v.DishNames {
		v.dishes[d] = struct{}{}
	}

	v.skip = make(map[string]struct{}, len(defaultSkipWords)+len(v.DishNames))
	for _, w := range defaultSkipWords {
		v.skip[w] = struct{}{}
	}
	for _, d := range v.DishNames {
		v.skip[d] = struct{}{}
	}

	// Dictionary order is the tie-breaker for spell correction, so the
	// curated food words come first.
	v.known = make(map[string]struct{})
	v.dictionary = v.dictionary[:0]
	add := func(phrase string) {
		for _, w := range strings.Fields(phrase) {
			if _, ok := v.known[w]; ok {
				continue
			}
			v.known[w] = struct{}{}
			v.dictionary = append(v.dictionary, w)
		}
	}
	for _, w := range defaultSpellWords {
		add(w)
	}
	for _, w := range v.Ingredients {
		add(w)
	}
	for _, w := range v.DishNames {
		add(w)
	}
	for _, c := range v.Categories {
		add(c.Name)
		for _, k := range c.Keywords {
			add(k)
		}
	}
	for _, m := range v.MealTypes {
		add(m.Name)
		for _, k := range m.Keywords {
			add(k)
		}
	}
	for _, w := range v.NegationWords {
		add(w)
	}
	for _, m := range v.Modifiers {
		add(m.Phrase)
	}
	for _, w := range defaultSkipWords {
		add(w)
	}
	for _, w := range defaultStopWords {
		add(w)
	}
	for _, w := range defaultQueryWords {
		add(w)
	}
}

// IsKnown reports whether word is in the spell dictionary.
func (v *Vocabulary) IsKnown(word string) bool {
	_, ok := v.known[word]
	return ok
}

// IsSkipWord reports whether term must never be treated as an ingredient.
func (v *Vocabulary) IsSkipWord(term string) bool {
	_, ok := v.skip[term]
	return ok
}

// IsDishName reports whether term is a gazetteer dish name.
func (v *Vocabulary) IsDishName(term string) bool {
	_, ok := v.dishes[term]
	return ok
}

// IsStopWord reports whether word carries no search meaning.
func (v *Vocabulary) IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// Dictionary returns the spell dictionary in priority order.
func (v *Vocabulary) Dictionary() []string {
	return clone(v.dictionary)
}

// CategoryNames lists the category labels in gazetteer order.
func (v *Vocabulary) CategoryNames() []string {
	names := make([]string, len(v.Categories))
	for i, c := range v.Categories {
		names[i] = c.Name
	}
	return names
}

func clone(in []string) []string {
	return append([]string(nil), in...)
}

func cloneKeywords(in []Keywords) []Keywords {
	out := make([]Keywords, len(in))
	for i, k := range in {
		out[i] = Keywords{Name: k.Name, Keywords: clone(k.Keywords)}
	}
	return out
}

var defaultNegationWords = []string{
	"without", "no", "avoid", "exclude", "not", "don't", "dont", "doesn't", "doesnt",
	"never", "none", "free", "skip", "minus", "except", "hold", "leave out",
	"but no", "and no", "does not", "do not",
}

var defaultMealTypes = []Keywords{
	{Name: "breakfast", Keywords: []string{"breakfast", "brunch", "morning"}},
	{Name: "lunch", Keywords: []string{"lunch", "midday", "noon"}},
	{Name: "dinner", Keywords: []string{"dinner", "supper", "evening"}},
	{Name: "dessert", Keywords: []string{"dessert", "sweet", "cake", "cookie", "pie", "pudding"}},
	{Name: "snack", Keywords: []string{"snack", "appetizer", "starter"}},
	{Name: "drink", Keywords: []string{"drink", "beverage", "smoothie", "juice", "shake"}},
}

var defaultCategories = []Keywords{
	{Name: "vegetarian", Keywords: []string{"vegetarian", "veggie", "meatless"}},
	{Name: "vegan", Keywords: []string{"vegan", "plant-based"}},
	{Name: "gluten-free", Keywords: []string{"gluten-free", "gluten free", "no gluten"}},
	{Name: "dairy-free", Keywords: []string{"dairy-free", "dairy free", "no dairy"}},
	{Name: "low-carb", Keywords: []string{"low-carb", "low carb", "keto"}},
	{Name: "healthy", Keywords: []string{"healthy", "light", "nutritious"}},
	{Name: "quick", Keywords: []string{"quick", "easy", "fast", "simple"}},
	{Name: "spicy", Keywords: []string{"spicy", "hot", "chili"}},
	{Name: "creamy", Keywords: []string{"creamy", "rich"}},
	{Name: "grilled", Keywords: []string{"grilled", "barbecue", "bbq"}},
	{Name: "baked", Keywords: []string{"baked", "oven", "roasted"}},
	{Name: "fried", Keywords: []string{"fried", "pan-fried", "deep-fried"}},
	{Name: "pasta", Keywords: []string{"pasta", "spaghetti", "noodles"}},
	{Name: "salad", Keywords: []string{"salad", "greens"}},
	{Name: "soup", Keywords: []string{"soup", "stew", "chowder"}},
	{Name: "curry", Keywords: []string{"curry", "masala"}},
	{Name: "rice", Keywords: []string{"rice", "risotto", "pilaf"}},
	{Name: "seafood", Keywords: []string{"fish", "seafood", "shrimp"}},
	{Name: "chicken", Keywords: []string{"chicken", "poultry"}},
	{Name: "beef", Keywords: []string{"beef", "steak"}},
	{Name: "lamb", Keywords: []string{"lamb", "mutton"}},
	{Name: "mexican", Keywords: []string{"mexican", "taco", "burrito"}},
	{Name: "italian", Keywords: []string{"italian", "pasta", "pizza"}},
	{Name: "asian", Keywords: []string{"asian", "chinese", "thai", "japanese"}},
	{Name: "indian", Keywords: []string{"indian", "tandoori", "curry"}},
	{Name: "mediterranean", Keywords: []string{"mediterranean", "greek"}},
}

var defaultModifiers = []NutritionModifier{
	{Phrase: "high protein", Nutrient: NutrientProtein, Bound: BoundMin, Value: 15},
	{Phrase: "high-protein", Nutrient: NutrientProtein, Bound: BoundMin, Value: 15},
	{Phrase: "protein rich", Nutrient: NutrientProtein, Bound: BoundMin, Value: 15},
	{Phrase: "high calorie", Nutrient: NutrientCalories, Bound: BoundMin, Value: 400},
	{Phrase: "high fat", Nutrient: NutrientFat, Bound: BoundMin, Value: 15},
	{Phrase: "low protein", Nutrient: NutrientProtein, Bound: BoundMax, Value: 10},
	{Phrase: "low fat", Nutrient: NutrientFat, Bound: BoundMax, Value: 10},
	{Phrase: "low-fat", Nutrient: NutrientFat, Bound: BoundMax, Value: 10},
	{Phrase: "low calorie", Nutrient: NutrientCalories, Bound: BoundMax, Value: 300},
	{Phrase: "low-calorie", Nutrient: NutrientCalories, Bound: BoundMax, Value: 300},
	{Phrase: "light", Nutrient: NutrientCalories, Bound: BoundMax, Value: 300},
	{Phrase: "low sodium", Nutrient: NutrientSodium, Bound: BoundMax, Value: 400},
	{Phrase: "low-sodium", Nutrient: NutrientSodium, Bound: BoundMax, Value: 400},
	{Phrase: "low salt", Nutrient: NutrientSodium, Bound: BoundMax, Value: 400},
	{Phrase: "low sugar", Nutrient: NutrientSugar, Bound: BoundMax, Value: 5},
	{Phrase: "sugar free", Nutrient: NutrientSugar, Bound: BoundMax, Value: 5},
	{Phrase: "sugar-free", Nutrient: NutrientSugar, Bound: BoundMax, Value: 5},
}

var defaultIngredients = []string{
	// proteins
	"chicken", "chicken breast", "chicken thigh", "beef", "ground beef",
	"steak", "lamb", "turkey", "fish", "salmon", "tuna", "shrimp", "prawns",
	"crab", "lobster", "scallops", "cod", "tilapia", "tofu", "tempeh",
	"pork", "bacon", "sausage", "duck",
	// vegetables
	"tomato", "tomatoes", "onion", "onions", "garlic", "potato", "potatoes",
	"carrot", "carrots", "celery", "cucumber", "zucchini", "squash",
	"bell pepper", "peppers", "jalapeno", "eggplant", "broccoli",
	"cauliflower", "spinach", "kale", "lettuce", "cabbage", "mushrooms",
	"corn", "peas", "green beans", "asparagus", "avocado", "beets",
	// legumes
	"beans", "black beans", "kidney beans", "chickpeas", "lentils",
	// grains
	"rice", "pasta", "noodles", "bread", "flour", "oats", "quinoa",
	// dairy
	"cheese", "cheddar", "mozzarella", "parmesan", "feta", "cream cheese",
	"milk", "cream", "butter", "yogurt", "egg", "eggs",
	// fruit
	"apple", "banana", "orange", "lemon", "lime", "strawberry",
	"blueberry", "mango", "pineapple", "peach", "grape", "coconut",
	// nuts and seeds
	"almonds", "walnuts", "peanuts", "cashews", "pistachios", "pecans",
	"sunflower seeds", "sesame seeds", "chia seeds",
	// herbs and spices
	"salt", "pepper", "basil", "oregano", "thyme", "rosemary", "parsley",
	"cilantro", "mint", "dill", "cinnamon", "cumin", "paprika", "turmeric",
	"ginger", "garlic powder", "onion powder", "chili powder", "curry powder",
	// oils and condiments
	"olive oil", "vegetable oil", "coconut oil", "sesame oil",
	"soy sauce", "vinegar", "honey", "maple syrup", "mustard", "ketchup",
	"mayonnaise", "hot sauce", "sriracha",
	// baking
	"sugar", "brown sugar", "vanilla", "chocolate", "cocoa",
	"baking powder", "baking soda", "yeast",
}

var defaultDishNames = []string{
	"pizza", "pasta", "lasagna", "spaghetti", "risotto", "carbonara",
	"taco", "burrito", "enchilada", "quesadilla", "nachos", "fajita",
	"sushi", "ramen", "pad thai", "stir fry", "fried rice", "curry",
	"tikka masala", "biryani", "tandoori", "korma", "vindaloo",
	"burger", "sandwich", "wrap", "salad", "soup", "stew", "chili",
	"omelette", "frittata", "pancake", "waffle", "smoothie",
	"cake", "pie", "cookie", "brownie", "muffin", "cheesecake",
	"falafel", "hummus", "shawarma", "kebab", "gyro",
	"paella", "gumbo", "jambalaya", "casserole", "pot pie",
}

var defaultSpellWords = []string{
	"chicken", "beef", "lamb", "fish", "shrimp", "salmon",
	"turkey", "duck", "tofu", "tempeh",
	"tomato", "tomatoes", "onion", "onions", "garlic", "carrot",
	"celery", "broccoli", "spinach", "kale", "lettuce", "zucchini",
	"rice", "pasta", "noodles", "spaghetti", "quinoa", "couscous",
	"cheese", "milk", "butter", "cream", "yogurt", "mozzarella",
	"cumin", "paprika", "oregano", "basil", "thyme", "rosemary",
	"turmeric", "cinnamon", "cilantro",
	"grilled", "baked", "fried", "roasted", "steamed", "sauteed",
	"soup", "salad", "stew", "curry", "casserole", "pie", "biryani",
	"recipe", "meal", "dish", "food", "quick", "easy", "healthy",
	"vegetarian", "vegan", "halal", "spicy", "sweet", "savory",
	"breakfast", "lunch", "dinner", "dessert", "snack",
}

var defaultSkipWords = []string{
	"meal", "recipe", "dish", "food", "calorie", "calories", "protein",
	"quick", "easy", "healthy", "high", "low", "breakfast", "lunch",
	"dinner", "vegetarian", "vegan", "want", "need", "find", "make",
}

var defaultStopWords = []string{
	"a", "an", "and", "are", "as", "at", "be", "by", "for", "from", "has",
	"in", "is", "it", "its", "of", "on", "or", "that", "the", "to", "was",
	"were", "will", "with", "this", "but", "they", "have", "had", "what",
	"when", "where", "who", "which", "how", "all", "any", "some", "such",
	"nor", "only", "so", "than", "too", "very", "can", "i", "me", "my",
	"you", "your", "we", "our", "please", "into", "about", "just",
}

// defaultQueryWords are ordinary words that show up in recipe queries and
// must never be "corrected" into a nearby food term.
var defaultQueryWords = []string{
	"include", "includes", "including", "contain", "contains", "containing",
	"use", "using", "used", "add", "added", "want", "wants", "need", "needs",
	"like", "love", "show", "give", "get", "find", "make", "cook", "cooking",
	"recipes", "meals", "dishes", "foods", "ideas", "something", "anything",
	"least", "most", "more", "less", "over", "under", "above", "below",
	"grams", "gram", "cal", "kcal", "fat", "sodium", "sugar", "carb", "carbs",
	"high", "low", "rich", "light", "lean", "heavy", "extra", "plenty",
	"tasty", "delicious", "simple", "fresh", "homemade", "crispy", "crunchy",
	"classic", "traditional", "favorite", "best", "good", "great", "perfect",
	"family", "kids", "party", "tonight", "today", "weeknight", "weekend",
	"day", "week", "plan", "serving", "servings", "portion", "per",
	"meat", "meats", "veggies", "vegetables", "vegetable", "fruit", "fruits",
	"dairy", "gluten", "lactose", "nuts", "nut", "seafood", "poultry",
	"keto", "paleo", "whole", "stuffed", "breasts", "thighs", "wings",
	"pork", "ham", "bacon", "sausage", "veal", "goose", "anchovy", "sardine",
	"oil", "sauce", "powder", "seeds", "syrup", "soda", "juice", "water",
	"hot", "cold", "warm", "dried", "sun-dried", "smoked", "raw", "boiled",
	"slow", "cooker", "instant", "pot", "pan", "sheet", "one", "two", "three",
	"then", "also", "either", "neither", "other", "instead", "plus", "has",
	"doesn't", "don't", "dont", "doesnt", "does", "do", "have", "had",
	"avoiding", "excluding", "skipping", "out", "leave", "the", "any",
}
