package api_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/pageza/foodgram/backend/internal/types"
)

func TestCreateRecipe(t *testing.T) {
	app := newTestApp(t)
	author := testhelpers.CreateUser(t, app.db, "author")
	tag := testhelpers.CreateTag(t, app.db, "soups")
	salt := testhelpers.CreateIngredient(t, app.db, "Salt", "g")

	body := map[string]any{
		"name":         "Soup",
		"text":         "Boil water.",
		"cooking_time": 15,
		"image":        testImage,
		"tags":         []string{tag.ID.String()},
		"ingredients":  []map[string]any{{"id": salt.ID, "amount": 5}},
	}

	rr := app.do(http.MethodPost, "/api/v1/recipes", "", body)
	requireStatus(t, rr, http.StatusUnauthorized)

	rr = app.do(http.MethodPost, "/api/v1/recipes", app.token(author), body)
	requireStatus(t, rr, http.StatusCreated)

	recipe := decode[types.RecipeResponse](t, rr)
	assert.Equal(t, "Soup", recipe.Name)
	assert.Equal(t, 15, recipe.CookingTime)
	assert.Equal(t, author.ID, recipe.Author.ID)
	assert.False(t, recipe.IsFavorited)
	assert.False(t, recipe.IsInShoppingCart)
	require.Len(t, recipe.Tags, 1)
	assert.Equal(t, "soups", recipe.Tags[0].Slug)
	require.Len(t, recipe.Ingredients, 1)
	assert.Equal(t, types.RecipeIngredientResponse{ID: salt.ID, Name: "Salt", MeasurementUnit: "g", Amount: 5}, recipe.Ingredients[0])
	assert.Equal(t, testImage, recipe.Image)
}

func TestCreateRecipeValidation(t *testing.T) {
	app := newTestApp(t)
	author := testhelpers.CreateUser(t, app.db, "author")
	salt := testhelpers.CreateIngredient(t, app.db, "Salt", "g")

	rr := app.do(http.MethodPost, "/api/v1/recipes", app.token(author), map[string]any{
		"name":         "Soup",
		"text":         "Boil water.",
		"cooking_time": 0,
		"image":        testImage,
		"tags":         []string{},
		"ingredients": []map[string]any{
			{"id": salt.ID, "amount": 1},
			{"id": salt.ID, "amount": 2},
		},
	})
	requireStatus(t, rr, http.StatusBadRequest)

	fields := decode[map[string][]string](t, rr)
	assert.Contains(t, fields, "cooking_time")
	assert.Contains(t, fields, "tags")
	assert.Contains(t, fields, "ingredients")
	assert.NotContains(t, fields, "name")
	assert.Zero(t, testhelpers.CountRows(t, app.db, &models.Recipe{}, "1 = 1"))

	rr = app.do(http.MethodPost, "/api/v1/recipes", app.token(author), "not an object")
	requireStatus(t, rr, http.StatusBadRequest)
	assert.JSONEq(t, `{"errors":"Malformed request body."}`, rr.Body.String())
}

func TestUpdateAndDeleteRecipe(t *testing.T) {
	app := newTestApp(t)
	author := testhelpers.CreateUser(t, app.db, "author")
	other := testhelpers.CreateUser(t, app.db, "other")
	soups := testhelpers.CreateTag(t, app.db, "soups")
	stews := testhelpers.CreateTag(t, app.db, "stews")
	salt := testhelpers.CreateIngredient(t, app.db, "Salt", "g")
	pepper := testhelpers.CreateIngredient(t, app.db, "Pepper", "g")
	recipe := testhelpers.CreateRecipe(t, app.db, author, "Soup", []*models.Tag{soups}, testhelpers.RecipeItem{Ingredient: salt, Amount: 1})
	path := "/api/v1/recipes/" + recipe.ID.String()

	update := map[string]any{
		"name":        "Stew",
		"tags":        []string{stews.ID.String()},
		"ingredients": []map[string]any{{"id": pepper.ID, "amount": 3}},
	}

	rr := app.do(http.MethodPatch, path, app.token(other), update)
	requireStatus(t, rr, http.StatusForbidden)

	rr = app.do(http.MethodPatch, path, app.token(author), update)
	requireStatus(t, rr, http.StatusOK)
	updated := decode[types.RecipeResponse](t, rr)
	assert.Equal(t, "Stew", updated.Name)
	assert.Equal(t, recipe.Text, updated.Text)
	require.Len(t, updated.Tags, 1)
	assert.Equal(t, stews.ID, updated.Tags[0].ID)
	require.Len(t, updated.Ingredients, 1)
	assert.Equal(t, pepper.ID, updated.Ingredients[0].ID)

	rr = app.do(http.MethodDelete, path, app.token(other), nil)
	requireStatus(t, rr, http.StatusForbidden)

	rr = app.do(http.MethodDelete, path, app.token(author), nil)
	requireStatus(t, rr, http.StatusNoContent)

	rr = app.do(http.MethodGet, path, "", nil)
	requireStatus(t, rr, http.StatusNotFound)
	assert.Contains(t, rr.Body.String(), `"errors"`)

	rr = app.do(http.MethodGet, "/api/v1/recipes/not-a-uuid", "", nil)
	requireStatus(t, rr, http.StatusBadRequest)
}

func TestRecipeFlagsAndMembership(t *testing.T) {
	app := newTestApp(t)
	author := testhelpers.CreateUser(t, app.db, "author")
	reader := testhelpers.CreateUser(t, app.db, "reader")
	tag := testhelpers.CreateTag(t, app.db, "soups")
	recipe := testhelpers.CreateRecipe(t, app.db, author, "Soup", []*models.Tag{tag})
	token := app.token(reader)
	path := "/api/v1/recipes/" + recipe.ID.String()

	rr := app.do(http.MethodPost, path+"/favorite", token, nil)
	requireStatus(t, rr, http.StatusCreated)
	short := decode[types.ShortRecipe](t, rr)
	assert.Equal(t, types.ShortRecipe{ID: recipe.ID, Name: "Soup", Image: recipe.Image, CookingTime: recipe.CookingTime}, short)

	rr = app.do(http.MethodPost, path+"/favorite", token, nil)
	requireStatus(t, rr, http.StatusBadRequest)
	assert.Contains(t, rr.Body.String(), `"errors"`)
	assert.Equal(t, int64(1), testhelpers.CountRows(t, app.db, &models.Favorite{}, "user_id = ?", reader.ID))

	rr = app.do(http.MethodPost, path+"/shopping_cart", token, nil)
	requireStatus(t, rr, http.StatusCreated)

	rr = app.do(http.MethodGet, path, token, nil)
	requireStatus(t, rr, http.StatusOK)
	got := decode[types.RecipeResponse](t, rr)
	assert.True(t, got.IsFavorited)
	assert.True(t, got.IsInShoppingCart)

	// another viewer sees their own flags
	rr = app.do(http.MethodGet, path, app.token(author), nil)
	got = decode[types.RecipeResponse](t, rr)
	assert.False(t, got.IsFavorited)
	assert.False(t, got.IsInShoppingCart)

	rr = app.do(http.MethodGet, path, "", nil)
	got = decode[types.RecipeResponse](t, rr)
	assert.False(t, got.IsFavorited)

	rr = app.do(http.MethodDelete, path+"/favorite", token, nil)
	requireStatus(t, rr, http.StatusNoContent)
	rr = app.do(http.MethodDelete, path+"/favorite", token, nil)
	requireStatus(t, rr, http.StatusNotFound)

	rr = app.do(http.MethodPost, "/api/v1/recipes/"+uuid.NewString()+"/shopping_cart", token, nil)
	requireStatus(t, rr, http.StatusNotFound)

	rr = app.do(http.MethodPost, path+"/favorite", "", nil)
	requireStatus(t, rr, http.StatusUnauthorized)
}

func TestListRecipesFilters(t *testing.T) {
	app := newTestApp(t)
	author := testhelpers.CreateUser(t, app.db, "author")
	reader := testhelpers.CreateUser(t, app.db, "reader")
	soups := testhelpers.CreateTag(t, app.db, "soups")
	stews := testhelpers.CreateTag(t, app.db, "stews")
	salads := testhelpers.CreateTag(t, app.db, "salads")
	soup := testhelpers.CreateRecipe(t, app.db, author, "Soup", []*models.Tag{soups})
	testhelpers.CreateRecipe(t, app.db, author, "Stew", []*models.Tag{stews})
	testhelpers.CreateRecipe(t, app.db, reader, "Salad", []*models.Tag{salads})
	token := app.token(reader)

	names := func(query, token string) []string {
		rr := app.do(http.MethodGet, "/api/v1/recipes"+query, token, nil)
		requireStatus(t, rr, http.StatusOK)
		page := decode[types.Paginated[types.RecipeResponse]](t, rr)
		out := []string{}
		for _, r := range page.Results {
			out = append(out, r.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Salad", "Stew", "Soup"}, names("", ""))
	assert.Equal(t, []string{"Stew", "Soup"}, names("?tags=soups&tags=stews", ""))
	assert.Equal(t, []string{"Salad"}, names("?author="+reader.ID.String(), ""))

	rr := app.do(http.MethodPost, "/api/v1/recipes/"+soup.ID.String()+"/favorite", token, nil)
	requireStatus(t, rr, http.StatusCreated)

	assert.Equal(t, []string{"Soup"}, names("?is_favorited=1", token))
	assert.Equal(t, []string{"Soup"}, names("?is_favorited=true", token))
	assert.Equal(t, []string{"Salad", "Stew", "Soup"}, names("?is_favorited=0", token))
	assert.Empty(t, names("?is_in_shopping_cart=yes", token))
	// anonymous viewers have no favorites
	assert.Empty(t, names("?is_favorited=1", ""))

	rr = app.do(http.MethodGet, "/api/v1/recipes?author=nobody", "", nil)
	requireStatus(t, rr, http.StatusBadRequest)
	assert.Contains(t, decode[map[string][]string](t, rr), "author")
}

func TestListRecipesPagination(t *testing.T) {
	app := newTestApp(t)
	author := testhelpers.CreateUser(t, app.db, "author")
	tag := testhelpers.CreateTag(t, app.db, "soups")
	for i := 1; i <= 8; i++ {
		testhelpers.CreateRecipe(t, app.db, author, fmt.Sprintf("Recipe %d", i), []*models.Tag{tag})
	}

	rr := app.do(http.MethodGet, "/api/v1/recipes", "", nil)
	requireStatus(t, rr, http.StatusOK)
	first := decode[types.Paginated[types.RecipeResponse]](t, rr)
	assert.Equal(t, int64(8), first.Count)
	assert.Len(t, first.Results, 6)
	require.NotNil(t, first.Next)
	assert.Contains(t, *first.Next, "page=2")
	assert.Nil(t, first.Previous)

	rr = app.do(http.MethodGet, "/api/v1/recipes?page=2&limit=3", "", nil)
	requireStatus(t, rr, http.StatusOK)
	second := decode[types.Paginated[types.RecipeResponse]](t, rr)
	assert.Equal(t, int64(8), second.Count)
	require.Len(t, second.Results, 3)
	assert.Equal(t, "Recipe 5", second.Results[0].Name)
	require.NotNil(t, second.Next)
	assert.Contains(t, *second.Next, "page=3")
	assert.Contains(t, *second.Next, "limit=3")
	require.NotNil(t, second.Previous)
	assert.NotContains(t, *second.Previous, "page=")

	rr = app.do(http.MethodGet, "/api/v1/recipes?page=3&limit=3", "", nil)
	last := decode[types.Paginated[types.RecipeResponse]](t, rr)
	assert.Len(t, last.Results, 2)
	assert.Nil(t, last.Next)

	for _, bad := range []string{"?page=4&limit=3", "?page=0", "?page=abc"} {
		rr = app.do(http.MethodGet, "/api/v1/recipes"+bad, "", nil)
		assert.Equal(t, http.StatusNotFound, rr.Code, bad)
	}
}

func TestAnonymousRecipeReadsCanBeDisabled(t *testing.T) {
	app := newTestApp(t, func(cfg *config.Config) { cfg.AllowAnonymousRecipes = false })
	user := testhelpers.CreateUser(t, app.db, "cook")

	rr := app.do(http.MethodGet, "/api/v1/recipes", "", nil)
	requireStatus(t, rr, http.StatusUnauthorized)

	rr = app.do(http.MethodGet, "/api/v1/recipes", app.token(user), nil)
	requireStatus(t, rr, http.StatusOK)
}

func TestDownloadShoppingCart(t *testing.T) {
	app := newTestApp(t)
	author := testhelpers.CreateUser(t, app.db, "author")
	reader := testhelpers.CreateUser(t, app.db, "reader")
	tag := testhelpers.CreateTag(t, app.db, "soups")
	salt := testhelpers.CreateIngredient(t, app.db, "Salt", "g")
	eggs := testhelpers.CreateIngredient(t, app.db, "Eggs", "pcs")
	soup := testhelpers.CreateRecipe(t, app.db, author, "Soup", []*models.Tag{tag},
		testhelpers.RecipeItem{Ingredient: salt, Amount: 10})
	omelette := testhelpers.CreateRecipe(t, app.db, author, "Omelette", []*models.Tag{tag},
		testhelpers.RecipeItem{Ingredient: salt, Amount: 5},
		testhelpers.RecipeItem{Ingredient: eggs, Amount: 2})
	token := app.token(reader)

	rr := app.do(http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, "Shopping list:", rr.Body.String())

	for _, r := range []*models.Recipe{soup, omelette} {
		requireStatus(t, app.do(http.MethodPost, "/api/v1/recipes/"+r.ID.String()+"/shopping_cart", token, nil), http.StatusCreated)
	}

	rr = app.do(http.MethodGet, "/api/v1/recipes/download_shopping_cart", token, nil)
	requireStatus(t, rr, http.StatusOK)
	assert.Equal(t, "Shopping list:\nEggs - 2 (pcs)\nSalt - 15 (g)", rr.Body.String())
	assert.Equal(t, `attachment; filename="shopping_list.txt"`, rr.Header().Get("Content-Disposition"))
	assert.Contains(t, rr.Header().Get("Content-Type"), "text/plain")

	rr = app.do(http.MethodGet, "/api/v1/recipes/download_shopping_cart", "", nil)
	requireStatus(t, rr, http.StatusUnauthorized)
}
