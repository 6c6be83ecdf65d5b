package service_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/testhelpers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMembershipToggle(t *testing.T) {
	kinds := []struct {
		kind  service.MembershipKind
		model interface{}
	}{
		{service.Favorite, &models.Favorite{}},
		{service.ShoppingCart, &models.ShoppingCartEntry{}},
	}

	for _, k := range kinds {
		t.Run(k.kind.String(), func(t *testing.T) {
			db := testhelpers.SetupTestDatabase(t)
			ctx := context.Background()
			svc := service.NewMembershipService(db)
			author := testhelpers.CreateUser(t, db, "author")
			user := testhelpers.CreateUser(t, db, "reader")
			tag := testhelpers.CreateTag(t, db, "soups")
			salt := testhelpers.CreateIngredient(t, db, "Salt", "g")
			recipe := testhelpers.CreateRecipe(t, db, author, "Soup", []*models.Tag{tag},
				testhelpers.RecipeItem{Ingredient: salt, Amount: 5})
			viewer := service.AsUser(user.ID)

			short, err := svc.Add(ctx, viewer, k.kind, recipe.ID)
			require.NoError(t, err)
			assert.Equal(t, recipe.ID, short.ID)
			assert.Equal(t, "Soup", short.Name)
			assert.Equal(t, recipe.Image, short.Image)
			assert.Equal(t, recipe.CookingTime, short.CookingTime)

			in, err := svc.Contains(ctx, viewer, k.kind, recipe.ID)
			require.NoError(t, err)
			assert.True(t, in)

			_, err = svc.Add(ctx, viewer, k.kind, recipe.ID)
			assert.ErrorIs(t, err, service.ErrConflict)
			assert.Equal(t, int64(1), testhelpers.CountRows(t, db, k.model, "user_id = ? AND recipe_id = ?", user.ID, recipe.ID))

			require.NoError(t, svc.Remove(ctx, viewer, k.kind, recipe.ID))
			assert.Zero(t, testhelpers.CountRows(t, db, k.model, "user_id = ?", user.ID))

			err = svc.Remove(ctx, viewer, k.kind, recipe.ID)
			assert.ErrorIs(t, err, service.ErrNotFound)
			assert.Zero(t, testhelpers.CountRows(t, db, k.model, "user_id = ?", user.ID))
		})
	}
}

func TestMembershipRemoveOnlyTouchesOwnRow(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	svc := service.NewMembershipService(db)
	author := testhelpers.CreateUser(t, db, "author")
	alice := testhelpers.CreateUser(t, db, "alice")
	bob := testhelpers.CreateUser(t, db, "bob")
	tag := testhelpers.CreateTag(t, db, "soups")
	salt := testhelpers.CreateIngredient(t, db, "Salt", "g")
	recipe := testhelpers.CreateRecipe(t, db, author, "Soup", []*models.Tag{tag},
		testhelpers.RecipeItem{Ingredient: salt, Amount: 5})

	_, err := svc.Add(ctx, service.AsUser(alice.ID), service.Favorite, recipe.ID)
	require.NoError(t, err)

	err = svc.Remove(ctx, service.AsUser(bob.ID), service.Favorite, recipe.ID)
	assert.ErrorIs(t, err, service.ErrNotFound)
	assert.Equal(t, int64(1), testhelpers.CountRows(t, db, &models.Favorite{}, "recipe_id = ?", recipe.ID))
}

func TestMembershipErrors(t *testing.T) {
	db := testhelpers.SetupTestDatabase(t)
	ctx := context.Background()
	svc := service.NewMembershipService(db)
	user := testhelpers.CreateUser(t, db, "reader")

	_, err := svc.Add(ctx, service.AsUser(user.ID), service.Favorite, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	err = svc.Remove(ctx, service.AsUser(user.ID), service.ShoppingCart, uuid.New())
	assert.ErrorIs(t, err, service.ErrNotFound)

	_, err = svc.Add(ctx, service.Anonymous(), service.Favorite, uuid.New())
	assert.ErrorIs(t, err, service.ErrPermissionDenied)

	_, err = svc.Add(ctx, service.AsUser(user.ID), service.MembershipKind(42), uuid.New())
	assert.Error(t, err)
}
