package integration

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/router"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

const workers = 8

// race runs fn concurrently and returns every result
func race(fn func() error) []error {
	var wg sync.WaitGroup
	start := make(chan struct{})
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			errs[i] = fn()
		}(i)
	}
	close(start)
	wg.Wait()
	return errs
}

func countOutcomes(t *testing.T, errs []error) (ok, conflicts int) {
	t.Helper()
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, service.ErrConflict):
			conflicts++
		default:
			t.Errorf("unexpected error: %v", err)
		}
	}
	return ok, conflicts
}

func TestConcurrentMembershipAddKeepsOneRow(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	user := testhelpers.CreateUser(t, db, "cook")
	recipe := testhelpers.CreateRecipe(t, db, user, "Soup", []*models.Tag{testhelpers.CreateTag(t, db, "soups")})
	memberships := service.NewMembershipService(db)
	viewer := service.AsUser(user.ID)

	for _, kind := range []service.MembershipKind{service.Favorite, service.ShoppingCart} {
		errs := race(func() error {
			_, err := memberships.Add(context.Background(), viewer, kind, recipe.ID)
			return err
		})
		ok, conflicts := countOutcomes(t, errs)
		assert.Equal(t, 1, ok)
		assert.Equal(t, workers-1, conflicts)
	}

	assert.Equal(t, int64(1), testhelpers.CountRows(t, db, &models.Favorite{}, "user_id = ? AND recipe_id = ?", user.ID, recipe.ID))
	assert.Equal(t, int64(1), testhelpers.CountRows(t, db, &models.ShoppingCartEntry{}, "user_id = ? AND recipe_id = ?", user.ID, recipe.ID))
}

func TestConcurrentSubscribeKeepsOneRow(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	reader := testhelpers.CreateUser(t, db, "reader")
	author := testhelpers.CreateUser(t, db, "author")
	users := service.NewUserService(db)

	errs := race(func() error {
		_, err := users.Subscribe(context.Background(), service.AsUser(reader.ID), author.ID, service.NoRecipesLimit)
		return err
	})
	ok, conflicts := countOutcomes(t, errs)
	assert.Equal(t, 1, ok)
	assert.Equal(t, workers-1, conflicts)
	assert.Equal(t, int64(1), testhelpers.CountRows(t, db, &models.Follow{}, "user_id = ? AND author_id = ?", reader.ID, author.ID))
}

func TestShoppingListOnPostgres(t *testing.T) {
	db := testhelpers.SetupPostgresDatabase(t)
	cfg := &config.Config{JWTSecret: "integration-secret", TokenTTL: time.Hour, PageSize: 6, AllowAnonymousRecipes: true}
	deps := router.NewDependencies(cfg, db, nil, nil)
	r := router.SetupRouter(deps)

	cook := testhelpers.CreateUser(t, db, "cook")
	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")
	eggs := testhelpers.CreateIngredient(t, db, "Eggs", "pcs")
	tag := testhelpers.CreateTag(t, db, "breakfast")
	omelette := testhelpers.CreateRecipe(t, db, cook, "Omelette", []*models.Tag{tag},
		testhelpers.RecipeItem{Ingredient: eggs, Amount: 2}, testhelpers.RecipeItem{Ingredient: salt, Amount: 5})
	soup := testhelpers.CreateRecipe(t, db, cook, "Soup", []*models.Tag{tag},
		testhelpers.RecipeItem{Ingredient: salt, Amount: 10})

	viewer := service.AsUser(cook.ID)
	for _, recipe := range []*models.Recipe{omelette, soup} {
		_, err := deps.MembershipService.Add(context.Background(), viewer, service.ShoppingCart, recipe.ID)
		require.NoError(t, err)
	}

	token, err := deps.AuthService.GenerateToken(cook)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodGet, "/api/v1/recipes/download_shopping_cart", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Equal(t, "Shopping list:\nEggs - 2 (pcs)\nSalt - 15 (g)", rr.Body.String())
}
