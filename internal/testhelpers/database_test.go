package testhelpers

import (
	"testing"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDatabaseSetup(t *testing.T) {
	db := SetupTestDatabase(t)
	require.NotNil(t, db)

	author := CreateUser(t, db, "author")
	assert.NotZero(t, author.ID)

	staff := CreateStaff(t, db, "admin")
	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", staff.ID).Error)
	assert.True(t, stored.IsStaff)

	soups := CreateTag(t, db, "soups")
	stews := CreateTag(t, db, "stews")
	assert.NotEqual(t, soups.Color, stews.Color)

	salt := CreateIngredient(t, db, "Salt", "g")
	first := CreateRecipe(t, db, author, "Soup", []*models.Tag{soups}, RecipeItem{Ingredient: salt, Amount: 5})
	second := CreateRecipe(t, db, author, "Stew", []*models.Tag{stews})
	assert.True(t, second.CreatedAt.After(first.CreatedAt))

	assert.Equal(t, int64(2), CountRows(t, db, &models.Recipe{}, "author_id = ?", author.ID))
	assert.Equal(t, int64(1), CountRows(t, db, &models.RecipeIngredient{}, "recipe_id = ?", first.ID))
}

func TestDatabasesAreIsolated(t *testing.T) {
	one := SetupTestDatabase(t)
	two := SetupTestDatabase(t)

	CreateUser(t, one, "solo")
	assert.Equal(t, int64(0), CountRows(t, two, &models.User{}, "1 = 1"))
}
