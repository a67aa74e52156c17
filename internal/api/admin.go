package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/types"
)

type AdminHandler struct {
	recipes service.IRecipeService
}

func NewAdminHandler(recipes service.IRecipeService) *AdminHandler {
	return &AdminHandler{recipes: recipes}
}

// ListRecipes searches every recipe by title or author.
func (h *AdminHandler) ListRecipes(c *gin.Context) {
	list := service.Search(h.recipes.List(), c.Query("q"))
	if list == nil {
		list = []models.Recipe{}
	}
	c.JSON(http.StatusOK, types.RecipeListResponse{Recipes: list, Total: len(list)})
}
