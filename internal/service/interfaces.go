package service

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/types"
)

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	Register(ctx context.Context, req *types.RegisterRequest) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	GenerateToken(user *models.User) (string, error)
	ValidateToken(ctx context.Context, token string) (*types.TokenClaims, error)
	Logout(ctx context.Context, claims *types.TokenClaims) error
	SetPassword(ctx context.Context, viewer Viewer, current, next string) error
}

// IUserService defines the interface for user and follow operations
type IUserService interface {
	GetUser(ctx context.Context, viewer Viewer, id uuid.UUID) (*models.User, error)
	Me(ctx context.Context, viewer Viewer) (*models.User, error)
	ListUsers(ctx context.Context, viewer Viewer, page Page) ([]models.User, int64, error)
	Subscribe(ctx context.Context, viewer Viewer, authorID uuid.UUID, recipesLimit int) (*Subscription, error)
	Unsubscribe(ctx context.Context, viewer Viewer, authorID uuid.UUID) error
	Subscriptions(ctx context.Context, viewer Viewer, page Page, recipesLimit int) ([]Subscription, int64, error)
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	ListRecipes(ctx context.Context, viewer Viewer, filter RecipeFilter, page Page) ([]models.Recipe, int64, error)
	GetRecipe(ctx context.Context, viewer Viewer, id uuid.UUID) (*models.Recipe, error)
	CreateRecipe(ctx context.Context, viewer Viewer, req *types.CreateRecipeRequest) (*models.Recipe, error)
	UpdateRecipe(ctx context.Context, viewer Viewer, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error)
	DeleteRecipe(ctx context.Context, viewer Viewer, id uuid.UUID) error
}

// IMembershipService defines the interface for favorites and the shopping cart
type IMembershipService interface {
	Add(ctx context.Context, viewer Viewer, kind MembershipKind, recipeID uuid.UUID) (*models.Recipe, error)
	Remove(ctx context.Context, viewer Viewer, kind MembershipKind, recipeID uuid.UUID) error
}

// IShoppingService defines the interface for the shopping list export
type IShoppingService interface {
	ShoppingList(ctx context.Context, viewer Viewer) ([]ShoppingItem, error)
}

// ICatalogService defines the interface for tags and ingredients
type ICatalogService interface {
	ListTags(ctx context.Context) ([]models.Tag, error)
	GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error)
	CreateTag(ctx context.Context, viewer Viewer, req *types.CreateTagRequest) (*models.Tag, error)
	ListIngredients(ctx context.Context, search string) ([]models.Ingredient, error)
	GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error)
	CreateIngredient(ctx context.Context, viewer Viewer, req *types.CreateIngredientRequest) (*models.Ingredient, error)
}

var (
	_ IAuthService       = (*AuthService)(nil)
	_ IUserService       = (*UserService)(nil)
	_ IRecipeService     = (*RecipeService)(nil)
	_ IMembershipService = (*MembershipService)(nil)
	_ IShoppingService   = (*ShoppingService)(nil)
	_ ICatalogService    = (*CatalogService)(nil)
)
