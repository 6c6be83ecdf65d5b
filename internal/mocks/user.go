package mocks

import (
	"context"

	"github.com/google/uuid"
	"github.com/pageza/foodgram/backend/internal/models"
	"github.com/pageza/foodgram/backend/internal/service"
	"github.com/pageza/foodgram/backend/internal/types"
	"github.com/stretchr/testify/mock"
)

// MockUserService is a mock implementation of the user service
type MockUserService struct {
	mock.Mock
}

var _ service.IUserService = (*MockUserService)(nil)

func (m *MockUserService) GetUser(ctx context.Context, viewer service.Viewer, id uuid.UUID) (*models.User, error) {
	args := m.Called(ctx, viewer, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) Me(ctx context.Context, viewer service.Viewer) (*models.User, error) {
	args := m.Called(ctx, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserService) ListUsers(ctx context.Context, viewer service.Viewer, page service.Page) ([]models.User, int64, error) {
	args := m.Called(ctx, viewer, page)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]models.User), args.Get(1).(int64), args.Error(2)
}

func (m *MockUserService) Subscribe(ctx context.Context, viewer service.Viewer, authorID uuid.UUID, recipesLimit int) (*service.Subscription, error) {
	args := m.Called(ctx, viewer, authorID, recipesLimit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Subscription), args.Error(1)
}

func (m *MockUserService) Unsubscribe(ctx context.Context, viewer service.Viewer, authorID uuid.UUID) error {
	args := m.Called(ctx, viewer, authorID)
	return args.Error(0)
}

func (m *MockUserService) Subscriptions(ctx context.Context, viewer service.Viewer, page service.Page, recipesLimit int) ([]service.Subscription, int64, error) {
	args := m.Called(ctx, viewer, page, recipesLimit)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]service.Subscription), args.Get(1).(int64), args.Error(2)
}

// MockCatalogService is a mock implementation of the tag and ingredient service
type MockCatalogService struct {
	mock.Mock
}

var _ service.ICatalogService = (*MockCatalogService)(nil)

func (m *MockCatalogService) ListTags(ctx context.Context) ([]models.Tag, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Tag), args.Error(1)
}

func (m *MockCatalogService) GetTag(ctx context.Context, id uuid.UUID) (*models.Tag, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tag), args.Error(1)
}

func (m *MockCatalogService) CreateTag(ctx context.Context, viewer service.Viewer, req *types.CreateTagRequest) (*models.Tag, error) {
	args := m.Called(ctx, viewer, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tag), args.Error(1)
}

func (m *MockCatalogService) ListIngredients(ctx context.Context, search string) ([]models.Ingredient, error) {
	args := m.Called(ctx, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Ingredient), args.Error(1)
}

func (m *MockCatalogService) GetIngredient(ctx context.Context, id uuid.UUID) (*models.Ingredient, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ingredient), args.Error(1)
}

func (m *MockCatalogService) CreateIngredient(ctx context.Context, viewer service.Viewer, req *types.CreateIngredientRequest) (*models.Ingredient, error) {
	args := m.Called(ctx, viewer, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Ingredient), args.Error(1)
}
