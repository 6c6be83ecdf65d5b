package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func writeData(t *testing.T, ingredients, tags string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ingredients.json"), []byte(ingredients), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tags.json"), []byte(tags), 0o600))
	return dir
}

func TestImportDataIsRepeatable(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	cat := service.NewCatalogService(db)
	dir := writeData(t,
		`[{"name":"соль","measurement_unit":"г"},{"name":"sugar","measurement_unit":"g"},{"name":"sugar","measurement_unit":"g"}]`,
		`[{"name":"Breakfast","color":"#E26C2D","slug":"breakfast"},{"name":"Lunch","color":"#49B64E","slug":"lunch"}]`,
	)

	stats, err := importData(context.Background(), cat, dir)
	require.NoError(t, err)
	assert.Equal(t, importStats{IngredientsCreated: 2, IngredientsExisted: 1, TagsCreated: 2}, stats)

	stats, err = importData(context.Background(), cat, dir)
	require.NoError(t, err)
	assert.Equal(t, importStats{IngredientsExisted: 3, TagsExisted: 2}, stats)

	assert.Equal(t, int64(2), testhelpers.CountRows(t, db, &models.Ingredient{}, "1 = 1"))
	assert.Equal(t, int64(2), testhelpers.CountRows(t, db, &models.Tag{}, "1 = 1"))
}

func TestImportDataRejectsBadInput(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	cat := service.NewCatalogService(db)

	dir := writeData(t, `[{"name":"salt","measurement_unit":"g"}]`, `[{"name":"Odd","color":"orange","slug":"odd"}]`)
	_, err := importData(context.Background(), cat, dir)
	require.Error(t, err)
	verrs, ok := service.AsValidation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"color"}, verrs.FieldNames())

	dir = writeData(t, `{not json`, `[]`)
	_, err = importData(context.Background(), cat, dir)
	assert.ErrorContains(t, err, "ingredients.json")

	_, err = importData(context.Background(), cat, t.TempDir())
	assert.ErrorContains(t, err, "failed to read")
}
