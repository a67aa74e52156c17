package service

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/pageza/tastybytes/backend/internal/models"
)

//go:embed seed.yaml
var seedYAML []byte

// SeedRecipes returns the sample recipes stamped with createdAt.
func SeedRecipes(createdAt time.Time) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := yaml.Unmarshal(seedYAML, &recipes); err != nil {
		return nil, fmt.Errorf("failed to parse seed recipes: %w", err)
	}
	for i := range recipes {
		recipes[i].CreatedAt = createdAt
	}
	return recipes, nil
}
