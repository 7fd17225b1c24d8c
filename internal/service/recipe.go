package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/search"
)

// DefaultUpsertBatchSize is the insert batch size used by UpsertRecipes.
const DefaultUpsertBatchSize = 500

const loadBatchSize = 2000

// RecipeService is the gorm-backed recipe store. It loads the corpus and
// serves the candidate and neighbour pre-filters from SQL.
type RecipeService struct {
	db *gorm.DB
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB) *RecipeService {
	return &RecipeService{db: db}
}

var (
	_ search.Loader          = (*RecipeService)(nil)
	_ search.CandidateSource = (*RecipeService)(nil)
	_ search.NeighborSource  = (*RecipeService)(nil)
)

func (s *RecipeService) isPostgres() bool {
	return s.db.Dialector.Name() == "postgres"
}

// LoadRecipes reads every recipe in id order.
func (s *RecipeService) LoadRecipes(ctx context.Context) ([]model.Recipe, error) {
	var all []model.Recipe
	var batch []model.Recipe
	err := s.db.WithContext(ctx).FindInBatches(&batch, loadBatchSize, func(tx *gorm.DB, _ int) error {
		all = append(all, batch...)
		return nil
	}).Error
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}
	return all, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id int64) (*model.Recipe, error) {
	var recipe model.Recipe
	if err := s.db.WithContext(ctx).First(&recipe, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: %d", search.ErrRecipeNotFound, id)
		}
		return nil, err
	}
	return &recipe, nil
}

// Count returns the number of stored recipes.
func (s *RecipeService) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.WithContext(ctx).Model(&model.Recipe{}).Count(&n).Error
	return n, err
}

// UpsertRecipes normalizes and writes recipes in batches, replacing rows
// that share an id.
func (s *RecipeService) UpsertRecipes(ctx context.Context, recipes []model.Recipe, batchSize int) (int, error) {
	if len(recipes) == 0 {
		return 0, nil
	}
	if batchSize <= 0 {
		batchSize = DefaultUpsertBatchSize
	}
	for i := range recipes {
		recipes[i].Normalize()
	}
	res := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).
		CreateInBatches(&recipes, batchSize)
	if res.Error != nil {
		return 0, fmt.Errorf("failed to upsert recipes: %w", res.Error)
	}
	return len(recipes), nil
}

// PreFilter implements search.CandidateSource with LIKE over search_text.
// search_text is stored lower-cased, so terms are lowered here.
func (s *RecipeService) PreFilter(ctx context.Context, terms []string, limit int) ([]int64, error) {
	q := s.db.WithContext(ctx).Model(&model.Recipe{}).Order("id")

	var conds []string
	var args []interface{}
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" {
			continue
		}
		conds = append(conds, `search_text LIKE ? ESCAPE '\'`)
		args = append(args, "%"+escapeLike(t)+"%")
	}
	if len(conds) > 0 {
		q = q.Where(strings.Join(conds, " OR "), args...)
	}
	if limit > 0 {
		q = q.Limit(limit)
	}

	var ids []int64
	if err := q.Pluck("id", &ids).Error; err != nil {
		return nil, fmt.Errorf("candidate query failed: %w", err)
	}
	return ids, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// NearestByNutrition implements search.NeighborSource. Postgres orders by
// the pgvector <-> distance; other dialects compute the same distance in
// process.
func (s *RecipeService) NearestByNutrition(ctx context.Context, id int64, limit int) ([]int64, error) {
	src, err := s.GetRecipe(ctx, id)
	if err != nil {
		return nil, err
	}

	if s.isPostgres() {
		q := s.db.WithContext(ctx).Model(&model.Recipe{}).
			Where("id <> ?", id).
			Order(clause.OrderBy{
				Expression: clause.Expr{SQL: "nutrition_vector <-> ?, id", Vars: []interface{}{src.NutritionVector}},
			})
		if limit > 0 {
			q = q.Limit(limit)
		}
		var ids []int64
		if err := q.Pluck("id", &ids).Error; err != nil {
			return nil, fmt.Errorf("nearest neighbour query failed: %w", err)
		}
		return ids, nil
	}

	var rows []model.Recipe
	if err := s.db.WithContext(ctx).Select("id", "nutrition_vector").Where("id <> ?", id).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("nearest neighbour query failed: %w", err)
	}
	sv := src.NutritionVector.Slice()
	sort.SliceStable(rows, func(i, j int) bool {
		di := model.VectorDistance(sv, rows[i].NutritionVector.Slice())
		dj := model.VectorDistance(sv, rows[j].NutritionVector.Slice())
		if di != dj {
			return di < dj
		}
		return rows[i].ID < rows[j].ID
	})
	if limit > 0 && len(rows) > limit {
		rows = rows[:limit]
	}
	ids := make([]int64, len(rows))
	for i := range rows {
		ids[i] = rows[i].ID
	}
	return ids, nil
}
