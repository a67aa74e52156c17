package service

import (
	"context"

	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/types"
)

// IdentityProvider signs users in. AuthService is the production implementation.
type IdentityProvider interface {
	Register(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, error)
	LoginWithGoogle(ctx context.Context, idToken string) (*models.User, error)
}

// IAuthService defines the interface for authentication operations
type IAuthService interface {
	IdentityProvider
	GenerateToken(user *models.User) (string, error)
	ValidateToken(token string) (*types.TokenClaims, error)
}

// RecipeSource is a list of recipes that announces its changes.
type RecipeSource interface {
	List() []models.Recipe
	Subscribe(fn func(RecipeEvent)) func()
}

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	RecipeSource
	Get(id string) (models.Recipe, error)
	Add(ctx context.Context, draft models.RecipeDraft, user *models.User) (models.Recipe, error)
	Update(ctx context.Context, id string, patch models.RecipePatch, user *models.User) (models.Recipe, error)
	Delete(ctx context.Context, id string, user *models.User) error
}

var (
	_ IAuthService   = (*AuthService)(nil)
	_ IRecipeService = (*RecipeRepository)(nil)
)
