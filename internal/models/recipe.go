package models

import (
	"strings"
	"time"
)

// DefaultImageURL is used when a recipe is added without an image.
const DefaultImageURL = "https://images.unsplash.com/photo-1618160702438-9b02ab6515c9"

// Recipe is a single entry of the recipe collection. The JSON layout is the
// persisted layout of the "recipes" store key.
type Recipe struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	Description  string    `json:"description" yaml:"description"`
	Ingredients  []string  `json:"ingredients" yaml:"ingredients"`
	Instructions []string  `json:"instructions" yaml:"instructions"`
	ImageURL     string    `json:"imageUrl" yaml:"imageUrl"`
	CookTime     int       `json:"cookTime" yaml:"cookTime"`
	PrepTime     int       `json:"prepTime" yaml:"prepTime"`
	Servings     int       `json:"servings" yaml:"servings"`
	IsVegetarian bool      `json:"isVegetarian" yaml:"isVegetarian"`
	AuthorID     string    `json:"authorId" yaml:"authorId"`
	AuthorName   string    `json:"authorName" yaml:"authorName"`
	CreatedAt    time.Time `json:"createdAt" yaml:"-"`
}

// TotalTime returns prep plus cook time in minutes.
func (r Recipe) TotalTime() int {
	return r.PrepTime + r.CookTime
}

// IsOwnedBy reports whether the user authored the recipe.
func (r Recipe) IsOwnedBy(user *User) bool {
	return user != nil && user.ID == r.AuthorID
}

// RecipeDraft holds the caller-supplied fields of a new recipe. Identity,
// authorship and creation time are assigned by the repository.
type RecipeDraft struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
	ImageURL     string   `json:"imageUrl"`
	CookTime     int      `json:"cookTime"`
	PrepTime     int      `json:"prepTime"`
	Servings     int      `json:"servings"`
	IsVegetarian bool     `json:"isVegetarian"`
}

// RecipePatch is a partial update of the mutable recipe fields. A nil field
// keeps the current value.
type RecipePatch struct {
	Title        *string   `json:"title,omitempty"`
	Description  *string   `json:"description,omitempty"`
	Ingredients  *[]string `json:"ingredients,omitempty"`
	Instructions *[]string `json:"instructions,omitempty"`
	ImageURL     *string   `json:"imageUrl,omitempty"`
	CookTime     *int      `json:"cookTime,omitempty"`
	PrepTime     *int      `json:"prepTime,omitempty"`
	Servings     *int      `json:"servings,omitempty"`
	IsVegetarian *bool     `json:"isVegetarian,omitempty"`
}

// Apply returns a copy of r with the patch applied. Identity, authorship
// and CreatedAt are never touched.
func (p RecipePatch) Apply(r Recipe) Recipe {
	if p.Title != nil {
		r.Title = *p.Title
	}
	if p.Description != nil {
		r.Description = *p.Description
	}
	if p.Ingredients != nil {
		r.Ingredients = append([]string(nil), (*p.Ingredients)...)
	}
	if p.Instructions != nil {
		r.Instructions = append([]string(nil), (*p.Instructions)...)
	}
	if p.ImageURL != nil {
		r.ImageURL = *p.ImageURL
	}
	if p.CookTime != nil {
		r.CookTime = *p.CookTime
	}
	if p.PrepTime != nil {
		r.PrepTime = *p.PrepTime
	}
	if p.Servings != nil {
		r.Servings = *p.Servings
	}
	if p.IsVegetarian != nil {
		r.IsVegetarian = *p.IsVegetarian
	}
	return r
}

// NormalizeLines trims every line and drops the blank ones.
func NormalizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

// SplitLines turns a multi-line text block into normalized lines.
func SplitLines(text string) []string {
	return NormalizeLines(strings.Split(text, "\n"))
}
