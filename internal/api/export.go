package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/internal/export"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/types"
)

type ExportHandler struct {
	recipes   service.IRecipeService
	publisher Publisher
	logger    *zap.Logger
}

func NewExportHandler(recipes service.IRecipeService, publisher Publisher, logger *zap.Logger) *ExportHandler {
	return &ExportHandler{recipes: recipes, publisher: publisher, logger: logger}
}

// Export streams the recipe as a PDF download.
func (h *ExportHandler) Export(c *gin.Context) {
	recipe, err := h.recipes.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	data, err := export.Export(recipe)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.Header("Content-Disposition", export.ContentDisposition(recipe.Title))
	c.Data(http.StatusOK, export.ContentType, data)
}

// Publish uploads the PDF to the export bucket and returns its URL.
func (h *ExportHandler) Publish(c *gin.Context) {
	if h.publisher == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, types.ErrorResponse{Error: "publishing is not configured"})
		return
	}

	recipe, err := h.recipes.Get(c.Param("id"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	url, err := h.publisher.Publish(c.Request.Context(), recipe)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, types.PublishResponse{URL: url})
}
