package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/service"
)

// MockRecipeService is a mock implementation of the recipe service
type MockRecipeService struct {
	mock.Mock
}

// List mocks the List method
func (m *MockRecipeService) List() []models.Recipe {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.Recipe)
}

// Subscribe mocks the Subscribe method
func (m *MockRecipeService) Subscribe(fn func(service.RecipeEvent)) func() {
	m.Called(fn)
	return func() {}
}

// Get mocks the Get method
func (m *MockRecipeService) Get(id string) (models.Recipe, error) {
	args := m.Called(id)
	return args.Get(0).(models.Recipe), args.Error(1)
}

// Add mocks the Add method
func (m *MockRecipeService) Add(ctx context.Context, draft models.RecipeDraft, user *models.User) (models.Recipe, error) {
	args := m.Called(ctx, draft, user)
	return args.Get(0).(models.Recipe), args.Error(1)
}

// Update mocks the Update method
func (m *MockRecipeService) Update(ctx context.Context, id string, patch models.RecipePatch, user *models.User) (models.Recipe, error) {
	args := m.Called(ctx, id, patch, user)
	return args.Get(0).(models.Recipe), args.Error(1)
}

// Delete mocks the Delete method
func (m *MockRecipeService) Delete(ctx context.Context, id string, user *models.User) error {
	args := m.Called(ctx, id, user)
	return args.Error(0)
}

var _ service.IRecipeService = (*MockRecipeService)(nil)
