package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/recipe-buddy/backend/config"
	"github.com/pageza/recipe-buddy/backend/internal/model"
	"github.com/pageza/recipe-buddy/backend/internal/testhelpers"
)

func TestOpenSQLiteAndMigrate(t *testing.T) {
	cfg := &config.Config{DBDriver: config.DriverSQLite, DBPath: filepath.Join(t.TempDir(), "recipes.db")}

	db, err := Open(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { Close(db) })

	applied, err := RunMigrations(db, "../../migrations")
	require.NoError(t, err)
	assert.Empty(t, applied)
	assert.True(t, db.Migrator().HasTable(&model.Recipe{}))
	assert.NoError(t, HealthCheck(context.Background(), db))
}

func TestOpenUnsupportedDriver(t *testing.T) {
	_, err := Open(&config.Config{DBDriver: "mysql"})
	assert.Error(t, err)
}

func TestRunMigrationsPostgres(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	require.NoError(t, db.Migrator().DropTable(&model.Recipe{}))

	applied, err := RunMigrations(db, "../../migrations")
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_recipes.sql", "0002_recipe_search_indexes.sql"}, applied)

	r := model.Recipe{ID: 1, Title: "Tomato Soup", Ingredients: model.JSONBStringArray{"2 tomatoes"}, Nutrition: model.Nutrition{Calories: model.Float(120)}}
	r.Normalize()
	require.NoError(t, db.Create(&r).Error)

	var got model.Recipe
	require.NoError(t, db.First(&got, 1).Error)
	assert.Equal(t, []float32{120, 0, 0, 0}, got.NutritionVector.Slice())

	applied, err = RunMigrations(db, "../../migrations")
	require.NoError(t, err)
	assert.Empty(t, applied)
}
