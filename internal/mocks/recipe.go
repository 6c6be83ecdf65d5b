package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

var _ service.IRecipeService = (*MockRecipeService)(nil)

func (m *MockRecipeService) ListRecipes(ctx context.Context, viewer service.Viewer, filter service.RecipeFilter, page service.Page) ([]models.Recipe, int64, error) {
	args := m.Called(ctx, viewer, filter, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.Recipe), args.Get(1).(int64), args.Error(2)
}

func (m *MockRecipeService) GetRecipe(ctx context.Context, viewer service.Viewer, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) CreateRecipe(ctx context.Context, viewer service.Viewer, req *types.CreateRecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, viewer, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) UpdateRecipe(ctx context.Context, viewer service.Viewer, id uuid.UUID, req *types.UpdateRecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, viewer, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) DeleteRecipe(ctx context.Context, viewer service.Viewer, id uuid.UUID) error {
	args := m.Called(ctx, viewer, id)
	return args.Error(0)
}

// MockMembershipService is a mock implementation of the favorites and cart service
type MockMembershipService struct {
	mock.Mock
}

var _ service.IMembershipService = (*MockMembershipService)(nil)

func (m *MockMembershipService) Add(ctx context.Context, viewer service.Viewer, kind service.MembershipKind, recipeID uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, viewer, kind, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockMembershipService) Remove(ctx context.Context, viewer service.Viewer, kind service.MembershipKind, recipeID uuid.UUID) error {
	args := m.Called(ctx, viewer, kind, recipeID)
	return args.Error(0)
}

// MockShoppingService is a mock implementation of the shopping list service
type MockShoppingService struct {
	mock.Mock
}

var _ service.IShoppingService = (*MockShoppingService)(nil)

func (m *MockShoppingService) ShoppingList(ctx context.Context, viewer service.Viewer) ([]service.ShoppingItem, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.ShoppingItem), args.Error(1)
}
