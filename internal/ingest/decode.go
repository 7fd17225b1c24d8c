// Package ingest reads recipe corpus snapshots: a JSON array of recipes,
// optionally gzip-compressed, in either the service's own layout or the
// per-100g nutrition layout of the public recipe datasets.
package ingest

import (
	"bufio"
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/pageza/recipe-buddy/backend/internal/model"
)

// textItem accepts either "text" or {"text": "text"}.
type textItem string

func (t *textItem) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = textItem(s)
		return nil
	}
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	var obj struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	*t = textItem(obj.Text)
	return nil
}

// recipeID accepts numeric ids and numeric strings. Anything else is left
// unset and gets an id assigned after decoding.
type recipeID struct {
	value int64
	set   bool
}

func (id *recipeID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(bytes.TrimSpace(data)), `"`)
	if v, err := strconv.ParseInt(s, 10, 64); err == nil && v > 0 {
		id.value, id.set = v, true
	}
	return nil
}

type rawRecipe struct {
	ID           recipeID             `json:"id"`
	Title        string               `json:"title"`
	Desc         string               `json:"desc"`
	Description  string               `json:"description"`
	Categories   []string             `json:"categories"`
	Ingredients  []textItem           `json:"ingredients"`
	Instructions []textItem           `json:"instructions"`
	Directions   []textItem           `json:"directions"`
	Quantity     []textItem           `json:"quantity"`
	Unit         []textItem           `json:"unit"`
	Nutrition    *model.Nutrition     `json:"nutrition"`
	Per100g      map[string]float64   `json:"nutr_values_per100g"`
	PerIngr      []map[string]float64 `json:"nutr_per_ingredient"`
	Rating       *float64             `json:"rating"`
	ImageURL     string               `json:"image_url"`
}

// Decode reads a JSON array of recipes from r, transparently inflating
// gzip input. Recipes without a title are skipped. Recipes without a
// usable id are numbered after the largest id seen.
func Decode(ctx context.Context, r io.Reader) ([]model.Recipe, error) {
	br := bufio.NewReader(r)
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open gzip stream: %w", err)
		}
		defer zr.Close()
		return decodeArray(ctx, zr)
	}
	return decodeArray(ctx, br)
}

func decodeArray(ctx context.Context, r io.Reader) ([]model.Recipe, error) {
	dec := json.NewDecoder(r)
	tok, err := dec.Token()
	if err != nil {
		return nil, fmt.Errorf("failed to read snapshot: %w", err)
	}
	if d, ok := tok.(json.Delim); !ok || d != '[' {
		return nil, fmt.Errorf("snapshot must be a JSON array, got %v", tok)
	}

	var (
		out     []model.Recipe
		pending []int
		maxID   int64
	)
	for i := 0; dec.More(); i++ {
		if i%1000 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		var raw rawRecipe
		if err := dec.Decode(&raw); err != nil {
			return nil, fmt.Errorf("failed to decode recipe %d: %w", i, err)
		}
		if strings.TrimSpace(raw.Title) == "" {
			continue
		}
		r := convert(&raw)
		if raw.ID.set {
			r.ID = raw.ID.value
			if r.ID > maxID {
				maxID = r.ID
			}
		} else {
			pending = append(pending, len(out))
		}
		out = append(out, r)
	}
	for _, idx := range pending {
		maxID++
		out[idx].ID = maxID
	}
	return out, nil
}

func convert(raw *rawRecipe) model.Recipe {
	r := model.Recipe{
		Title:       strings.TrimSpace(raw.Title),
		Description: raw.Description,
		Categories:  model.JSONBStringArray(raw.Categories),
		Rating:      raw.Rating,
		ImageURL:    raw.ImageURL,
	}
	if r.Description == "" {
		r.Description = raw.Desc
	}

	r.Ingredients = make(model.JSONBStringArray, 0, len(raw.Ingredients))
	for i, ing := range raw.Ingredients {
		line := strings.TrimSpace(string(ing))
		if line == "" {
			continue
		}
		qty, unit := itemAt(raw.Quantity, i), itemAt(raw.Unit, i)
		if qty != "" || unit != "" {
			line = strings.Join(strings.Fields(qty+" "+unit+" "+line), " ")
		}
		r.Ingredients = append(r.Ingredients, line)
	}

	steps := raw.Instructions
	if len(steps) == 0 {
		steps = raw.Directions
	}
	r.Directions = make(model.JSONBStringArray, 0, len(steps))
	for _, s := range steps {
		if s := strings.TrimSpace(string(s)); s != "" {
			r.Directions = append(r.Directions, s)
		}
	}

	switch {
	case raw.Nutrition != nil:
		r.Nutrition = *raw.Nutrition
	case len(raw.Per100g) > 0:
		r.Nutrition = per100g(raw.Per100g)
	case len(raw.PerIngr) > 0:
		r.Nutrition = perIngredient(raw.PerIngr)
	}
	r.Normalize()
	return r
}

func itemAt(items []textItem, i int) string {
	if i < len(items) {
		return strings.TrimSpace(string(items[i]))
	}
	return ""
}

// per100g maps the dataset's per-100g values. Salt is in grams and is
// converted to milligrams of sodium the way the dataset's consumers do.
func per100g(m map[string]float64) model.Nutrition {
	get := func(key string, scale float64) *float64 {
		v, ok := m[key]
		if !ok {
			return nil
		}
		return round1(v * scale)
	}
	return model.Nutrition{
		Calories:  get("energy", 1),
		Protein:   get("protein", 1),
		Fat:       get("fat", 1),
		Sodium:    get("salt", 1000),
		Sugar:     get("sugars", 1),
		Saturates: get("saturates", 1),
	}
}

func perIngredient(items []map[string]float64) model.Nutrition {
	sum := func(key string) *float64 {
		var total float64
		found := false
		for _, m := range items {
			if v, ok := m[key]; ok {
				total += v
				found = true
			}
		}
		if !found {
			return nil
		}
		return round1(total)
	}
	return model.Nutrition{
		Calories: sum("nrg"),
		Protein:  sum("pro"),
		Fat:      sum("fat"),
		Sodium:   sum("sod"),
		Sugar:    sum("sug"),
	}
}

func round1(v float64) *float64 {
	r := math.Round(v*10) / 10
	return &r
}
