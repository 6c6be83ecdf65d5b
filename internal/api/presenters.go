package api

import (
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
)

func toUserResponse(u *models.User) types.UserResponse {
	return types.UserResponse{
		ID:           u.ID,
		Email:        u.Email,
		Username:     u.Username,
		FirstName:    u.FirstName,
		LastName:     u.LastName,
		IsSubscribed: u.IsSubscribed,
	}
}

func toUserResponses(users []models.User) []types.UserResponse {
	out := make([]types.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out
}

func toTagResponse(t *models.Tag) types.TagResponse {
	return types.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Slug: t.Slug}
}

func toTagResponses(tags []models.Tag) []types.TagResponse {
	out := make([]types.TagResponse, 0, len(tags))
	for i := range tags {
		out = append(out, toTagResponse(&tags[i]))
	}
	return out
}

func toIngredientResponse(i *models.Ingredient) types.IngredientResponse {
	return types.IngredientResponse{ID: i.ID, Name: i.Name, MeasurementUnit: i.MeasurementUnit}
}

func toIngredientResponses(items []models.Ingredient) []types.IngredientResponse {
	out := make([]types.IngredientResponse, 0, len(items))
	for i := range items {
		out = append(out, toIngredientResponse(&items[i]))
	}
	return out
}

func toRecipeResponse(r *models.Recipe) types.RecipeResponse {
	tags := make([]types.TagResponse, 0, len(r.RecipeTags))
	for i := range r.RecipeTags {
		tags = append(tags, toTagResponse(&r.RecipeTags[i].Tag))
	}

	ingredients := make([]types.RecipeIngredientResponse, 0, len(r.RecipeIngredients))
	for _, ri := range r.RecipeIngredients {
		ingredients = append(ingredients, types.RecipeIngredientResponse{
			ID:              ri.IngredientID,
			Name:            ri.Ingredient.Name,
			MeasurementUnit: ri.Ingredient.MeasurementUnit,
			Amount:          ri.Amount,
		})
	}

	return types.RecipeResponse{
		ID:               r.ID,
		Tags:             tags,
		Author:           toUserResponse(&r.Author),
		Ingredients:      ingredients,
		IsFavorited:      r.IsFavorited,
		IsInShoppingCart: r.IsInShoppingCart,
		Name:             r.Name,
		Image:            r.Image,
		Text:             r.Text,
		CookingTime:      r.CookingTime,
		CreatedAt:        r.CreatedAt,
	}
}

func toRecipeResponses(recipes []models.Recipe) []types.RecipeResponse {
	out := make([]types.RecipeResponse, 0, len(recipes))
	for i := range recipes {
		out = append(out, toRecipeResponse(&recipes[i]))
	}
	return out
}

func toShortRecipe(r *models.Recipe) types.ShortRecipe {
	return types.ShortRecipe{ID: r.ID, Name: r.Name, Image: r.Image, CookingTime: r.CookingTime}
}

func toSubscriptionResponse(s *service.Subscription) types.SubscriptionResponse {
	recipes := make([]types.ShortRecipe, 0, len(s.Recipes))
	for i := range s.Recipes {
		recipes = append(recipes, toShortRecipe(&s.Recipes[i]))
	}
	return types.SubscriptionResponse{
		UserResponse: toUserResponse(&s.Author),
		Recipes:      recipes,
		RecipesCount: s.RecipesCount,
	}
}

func toSubscriptionResponses(subs []service.Subscription) []types.SubscriptionResponse {
	out := make([]types.SubscriptionResponse, 0, len(subs))
	for i := range subs {
		out = append(out, toSubscriptionResponse(&subs[i]))
	}
	return out
}
