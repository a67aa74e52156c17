package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/internal/middleware"
	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/service"
	"github.com/pageza/tastybytes/backend/internal/types"
)

type AuthHandler struct {
	auth   service.IAuthService
	logger *zap.Logger
}

func NewAuthHandler(auth service.IAuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{auth: auth, logger: logger}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req types.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.auth.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	h.respondWithToken(c, http.StatusCreated, user, err)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req types.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.auth.Login(c.Request.Context(), req.Email, req.Password)
	h.respondWithToken(c, http.StatusOK, user, err)
}

func (h *AuthHandler) LoginWithGoogle(c *gin.Context) {
	var req types.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body")
		return
	}

	user, err := h.auth.LoginWithGoogle(c.Request.Context(), req.IDToken)
	h.respondWithToken(c, http.StatusOK, user, err)
}

// Me returns the user identified by the request token.
func (h *AuthHandler) Me(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentUser(c))
}

func (h *AuthHandler) respondWithToken(c *gin.Context, status int, user *models.User, err error) {
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	token, err := h.auth.GenerateToken(user)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	c.JSON(status, types.AuthResponse{Token: token, User: user})
}
