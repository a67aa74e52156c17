package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/internal/middleware"
	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/types"
)

const maxBodyBytes = 1 << 20

type RecipeHandler struct {
	recipes service.IRecipeService
	logger  *zap.Logger
}

func NewRecipeHandler(recipes service.IRecipeService, logger *zap.Logger) *RecipeHandler {
	return &RecipeHandler{recipes: recipes, logger: logger}
}

// ListRecipes returns the collection, optionally filtered by
// ?vegetarian=true|false and a ?q= search term.
func (h *RecipeHandler) ListRecipes(c *gin.Context) {
	var filter *bool
	if v := c.Query("vegetarian"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			badRequest(c, "vegetarian must be true or false")
			return
		}
		filter = &b
	}

	list := service.Search(service.Project(h.recipes.List(), filter), c.Query("q"))
	if list == nil {
		list = []models.Recipe{}
	}
	c.JSON(http.StatusOK, types.RecipeListResponse{Recipes: list, Total: len(list)})
}

func (h *RecipeHandler) GetRecipe(c *gin.Context) {
	recipe, err := h.recipes.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) CreateRecipe(c *gin.Context) {
	var draft models.RecipeDraft
	if err := decodeStrict(c, &draft); err != nil {
		badRequest(c, err.Error())
		return
	}

	recipe, err := h.recipes.Add(c.Request.Context(), draft, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusCreated, recipe)
}

// UpdateRecipe applies a partial update. Fields other than the mutable
// recipe fields are rejected.
func (h *RecipeHandler) UpdateRecipe(c *gin.Context) {
	var patch models.RecipePatch
	if err := decodeStrict(c, &patch); err != nil {
		badRequest(c, err.Error())
		return
	}

	recipe, err := h.recipes.Update(c.Request.Context(), c.Param("id"), patch, middleware.CurrentUser(c))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, recipe)
}

func (h *RecipeHandler) DeleteRecipe(c *gin.Context) {
	if err := h.recipes.Delete(c.Request.Context(), c.Param("id"), middleware.CurrentUser(c)); err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// decodeStrict decodes a single JSON object, rejecting unknown fields and
// trailing data.
func decodeStrict(c *gin.Context, v interface{}) error {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxBodyBytes+1))
	if err != nil {
		return errors.New("could not read request body")
	}
	if len(body) > maxBodyBytes {
		return errors.New("request body too large")
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	if dec.More() {
		return errors.New("invalid request body: unexpected data after object")
	}
	return nil
}
