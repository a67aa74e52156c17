package api

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/internal/logging"
	"github.com/pageza/tastybytes/backend/internal/middleware"
	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/service"
)

// Publisher uploads a rendered recipe and returns where it can be fetched.
type Publisher interface {
	Publish(ctx context.Context, recipe models.Recipe) (string, error)
}

// Dependencies are the services the HTTP API is built on. Publisher and the
// rate limiters are optional.
type Dependencies struct {
	Recipes   service.IRecipeService
	Auth      service.IAuthService
	Publisher Publisher
	Logger    *zap.Logger

	CreationLimiter *middleware.RateLimiter
	PublishLimiter  *middleware.RateLimiter

	// Ping reports backend health; nil means always healthy
	Ping func(ctx context.Context) error
}

// RegisterRoutes registers all API routes under group
func RegisterRoutes(group *gin.RouterGroup, deps Dependencies) {
	logger := logging.OrNop(deps.Logger)

	group.GET("/health", HealthCheck(deps.Ping))

	authHandler := NewAuthHandler(deps.Auth, logger)
	recipeHandler := NewRecipeHandler(deps.Recipes, logger)
	exportHandler := NewExportHandler(deps.Recipes, deps.Publisher, logger)
	adminHandler := NewAdminHandler(deps.Recipes)

	requireAuth := middleware.AuthMiddleware(deps.Auth)

	auth := group.Group("/auth")
	{
		auth.POST("/register", authHandler.Register)
		auth.POST("/login", authHandler.Login)
		auth.POST("/google", authHandler.LoginWithGoogle)
		auth.GET("/me", requireAuth, authHandler.Me)
	}

	recipes := group.Group("/recipes")
	{
		recipes.GET("", recipeHandler.ListRecipes)
		recipes.GET("/:id", recipeHandler.GetRecipe)
		recipes.GET("/:id/export", exportHandler.Export)

		create := []gin.HandlerFunc{requireAuth}
		if deps.CreationLimiter != nil {
			create = append(create, deps.CreationLimiter.RateLimitMiddleware())
		}
		recipes.POST("", append(create, recipeHandler.CreateRecipe)...)

		recipes.PUT("/:id", requireAuth, recipeHandler.UpdateRecipe)
		recipes.DELETE("/:id", requireAuth, recipeHandler.DeleteRecipe)

		publish := []gin.HandlerFunc{requireAuth}
		if deps.PublishLimiter != nil {
			publish = append(publish, deps.PublishLimiter.PerRecipeRateLimitMiddleware())
		}
		recipes.POST("/:id/publish", append(publish, exportHandler.Publish)...)
	}

	admin := group.Group("/admin", requireAuth, middleware.RequireAdmin())
	{
		admin.GET("/recipes", adminHandler.ListRecipes)
	}
}

// HealthCheck returns the health status of the API
func HealthCheck(ping func(ctx context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping != nil {
			if err := ping(c.Request.Context()); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{
					"status": "unhealthy",
					"error":  "store unavailable",
				})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "TastyBytes API is running",
		})
	}
}
