package testhelpers

import "github.com/pageza/tastybytes/backend/internal/models"

// Member returns a member user with the given id.
func Member(id, name string) *models.User {
	return &models.User{ID: id, Name: name, Email: id + "@example.com", Role: models.RoleMember}
}

// Admin returns an administrator.
func Admin() *models.User {
	return &models.User{ID: "admin", Name: "Site Admin", Email: "admin@example.com", Role: models.RoleAdmin}
}

// Draft returns a valid recipe draft titled title.
func Draft(title string, vegetarian bool) models.RecipeDraft {
	return models.RecipeDraft{
		Title:        title,
		Description:  "x",
		Ingredients:  []string{"a"},
		Instructions: []string{"b"},
		PrepTime:     5,
		CookTime:     10,
		Servings:     2,
		IsVegetarian: vegetarian,
	}
}
