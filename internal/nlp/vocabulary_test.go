package nlp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultVocabularyIsIndependent(t *testing.T) {
	a := DefaultVocabulary()
	b := DefaultVocabulary()

	a.Ingredients[0] = "changed"
	assert.Equal(t, "chicken", b.Ingredients[0])
}

func TestVocabularyLookups(t *testing.T) {
	v := DefaultVocabulary()

	assert.True(t, v.IsKnown("include"))
	assert.True(t, v.IsKnown("chicken"))
	assert.False(t, v.IsKnown("chiken"))

	assert.True(t, v.IsDishName("pot pie"))
	assert.False(t, v.IsDishName("chicken"))

	assert.True(t, v.IsSkipWord("recipe"))
	assert.True(t, v.IsSkipWord("pasta"))
	assert.False(t, v.IsSkipWord("onion"))

	assert.True(t, v.IsStopWord("the"))
	assert.Equal(t, "vegetarian", v.CategoryNames()[0])
}

func TestNewVocabularyOverrides(t *testing.T) {
	v := NewVocabulary([]string{"jackfruit"}, nil, nil, nil)

	assert.Equal(t, []string{"jackfruit"}, v.Ingredients)
	assert.True(t, v.IsKnown("jackfruit"))
	assert.NotEmpty(t, v.DishNames)
}

func TestKeyIngredientWords(t *testing.T) {
	words := KeyIngredientWords([]string{
		"2 cups chopped chicken breast",
		"1 onion",
		"salt",
	}, 5)
	assert.Equal(t, []string{"chicken", "breast", "onion", "salt"}, words)
}

func TestMainIngredient(t *testing.T) {
	assert.Equal(t, "chicken", MainIngredient("2 cups chopped chicken breast"))
	assert.Equal(t, "", MainIngredient("1 egg"))
}

func TestTerms(t *testing.T) {
	assert.Equal(t, []string{"sun", "dried", "tomatoes", "basil"}, Terms("The Sun-Dried Tomatoes, with basil!"))
}
