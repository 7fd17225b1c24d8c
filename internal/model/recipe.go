package model

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	pgvector "github.com/pgvector/pgvector-go"
)

// JSONBStringArray is a custom type for handling string arrays in JSONB
type JSONBStringArray []string

// Value implements the driver.Valuer interface
func (a JSONBStringArray) Value() (driver.Value, error) {
	if len(a) == 0 {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements the sql.Scanner interface
func (a *JSONBStringArray) Scan(value interface{}) error {
	if value == nil {
		*a = JSONBStringArray{}
		return nil
	}

	var bytes []byte
	switch v := value.(type) {
	case []byte:
		bytes = v
	case string:
		bytes = []byte(v)
	default:
		return fmt.Errorf("unsupported JSONBStringArray source %T", value)
	}

	return json.Unmarshal(bytes, a)
}

// Recipe is a corpus entry. Recipes are written by the ingestion tooling
// and are read-only to the search engine.
type Recipe struct {
	ID              int64            `gorm:"primaryKey;autoIncrement:false" json:"id"`
	CreatedAt       time.Time        `json:"-"`
	UpdatedAt       time.Time        `json:"-"`
	Title           string           `gorm:"size:512;not null" json:"title"`
	Description     string           `gorm:"type:text" json:"description,omitempty"`
	Ingredients     JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"ingredients"`
	Directions      JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"directions,omitempty"`
	Categories      JSONBStringArray `gorm:"type:jsonb;not null;default:'[]'" json:"categories"`
	SearchText      string           `gorm:"type:text;not null" json:"-"`
	Nutrition       Nutrition        `gorm:"embedded" json:"nutrition"`
	Rating          *float64         `gorm:"type:float" json:"rating,omitempty"`
	ImageURL        string           `gorm:"size:1024" json:"image_url,omitempty"`
	NutritionVector pgvector.Vector  `gorm:"type:vector(4)" json:"-"`
}

// TableName pins the table name used by migrations.
func (Recipe) TableName() string {
	return "recipes"
}

// BuildSearchText returns the lower-cased text the engine matches terms
// against: title, ingredients and description.
func BuildSearchText(title string, ingredients []string, description string) string {
	parts := make([]string, 0, len(ingredients)+2)
	parts = append(parts, title)
	parts = append(parts, ingredients...)
	if description != "" {
		parts = append(parts, description)
	}
	return strings.ToLower(strings.Join(parts, " "))
}

// Normalize fills the derived columns. It is called by every writer
// before a recipe is stored or indexed.
func (r *Recipe) Normalize() {
	if r.Ingredients == nil {
		r.Ingredients = JSONBStringArray{}
	}
	if r.Directions == nil {
		r.Directions = JSONBStringArray{}
	}
	if r.Categories == nil {
		r.Categories = JSONBStringArray{}
	}
	r.SearchText = BuildSearchText(r.Title, r.Ingredients, r.Description)
	r.NutritionVector = pgvector.NewVector(r.Nutrition.Vector())
}

// IngredientText is the ingredient list joined and lower-cased.
func (r *Recipe) IngredientText() string {
	return strings.ToLower(strings.Join(r.Ingredients, " "))
}

// HasCategory reports whether tag is one of the recipe's categories.
func (r *Recipe) HasCategory(tag string) bool {
	for _, c := range r.Categories {
		if strings.EqualFold(c, tag) {
			return true
		}
	}
	return false
}
