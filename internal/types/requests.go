package types

import "github.com/pageza/tastybytes/backend/internal/models"

// RegisterRequest represents the request body for account registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// LoginRequest represents the request body for password login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries a Google ID token obtained by the client
type GoogleLoginRequest struct {
	IDToken string `json:"id_token" binding:"required"`
}

// AuthResponse is returned by every successful sign-in
type AuthResponse struct {
	Token string       `json:"token"`
	User  *models.User `json:"user"`
}

// RecipeListResponse wraps a recipe listing
type RecipeListResponse struct {
	Recipes []models.Recipe `json:"recipes"`
	Total   int             `json:"total"`
}

// PublishResponse is returned after an export is uploaded
type PublishResponse struct {
	URL string `json:"url"`
}

// ErrorResponse is the body of every error reply
type ErrorResponse struct {
	Error  string              `json:"error"`
	Fields []FieldErrorPayload `json:"fields,omitempty"`
}

// FieldErrorPayload is one invalid field of a rejected request
type FieldErrorPayload struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}
