package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecipePatchApply(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	original := Recipe{
		ID:           "r1",
		Title:        "Soup",
		Description:  "Warm",
		Ingredients:  []string{"water"},
		Instructions: []string{"boil"},
		Servings:     2,
		AuthorID:     "u1",
		AuthorName:   "Ann",
		CreatedAt:    created,
	}

	title := "Better Soup"
	veg := true
	ingredients := []string{"water", "salt"}
	patched := RecipePatch{Title: &title, IsVegetarian: &veg, Ingredients: &ingredients}.Apply(original)

	assert.Equal(t, "Better Soup", patched.Title)
	assert.True(t, patched.IsVegetarian)
	assert.Equal(t, []string{"water", "salt"}, patched.Ingredients)
	assert.Equal(t, "Warm", patched.Description)
	assert.Equal(t, []string{"boil"}, patched.Instructions)
	assert.Equal(t, "r1", patched.ID)
	assert.Equal(t, "u1", patched.AuthorID)
	assert.Equal(t, "Ann", patched.AuthorName)
	assert.Equal(t, created, patched.CreatedAt)

	// the patch's slice is copied, not aliased
	ingredients[0] = "broth"
	assert.Equal(t, "water", patched.Ingredients[0])
	assert.Equal(t, "Soup", original.Title)
}

func TestNormalizeLines(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, NormalizeLines([]string{"  a ", "", "   ", "b"}))
	assert.Empty(t, NormalizeLines(nil))
	assert.Equal(t, []string{"1 cup flour", "2 eggs"}, SplitLines("1 cup flour\n\n 2 eggs \n"))
}

func TestOwnershipAndRole(t *testing.T) {
	r := Recipe{AuthorID: "u1"}
	assert.True(t, r.IsOwnedBy(&User{ID: "u1"}))
	assert.False(t, r.IsOwnedBy(&User{ID: "u2"}))
	assert.False(t, r.IsOwnedBy(nil))

	var nobody *User
	assert.False(t, nobody.IsAdmin())
	assert.True(t, (&User{Role: RoleAdmin}).IsAdmin())
	assert.False(t, (&User{Email: "admin@tastybytes.com"}).IsAdmin())
	assert.Equal(t, 25, Recipe{PrepTime: 15, CookTime: 10}.TotalTime())
}
