package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/pageza/tastybytes/backend/internal/logging"
	"github.com/pageza/tastybytes/backend/internal/models"
	"github.com/pageza/tastybytes/backend/internal/store"
)

// RecipesKey is the store key holding the JSON array of recipes.
const RecipesKey = "recipes"

// EventKind names the change a RecipeEvent reports.
type EventKind string

const (
	EventInitialized EventKind = "initialized"
	EventAdded       EventKind = "added"
	EventUpdated     EventKind = "updated"
	EventDeleted     EventKind = "deleted"
)

// RecipeEvent is delivered to subscribers after a successful change.
type RecipeEvent struct {
	Kind     EventKind
	RecipeID string
}

type subscriber[E any] struct {
	id int
	fn func(E)
}

// subscribers is a registration-ordered list of callbacks.
type subscribers[E any] struct {
	mu     sync.Mutex
	nextID int
	list   []subscriber[E]
}

func (s *subscribers[E]) add(fn func(E)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	id := s.nextID
	s.list = append(s.list, subscriber[E]{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, sub := range s.list {
				if sub.id == id {
					s.list = append(s.list[:i:i], s.list[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *subscribers[E]) notify(e E) {
	s.mu.Lock()
	list := s.list
	s.mu.Unlock()

	for _, sub := range list {
		sub.fn(e)
	}
}

// RecipeRepository owns the canonical recipe list and keeps it in the store.
//
// Mutations are serialized and each one writes the whole list exactly once.
// A new slice is built for every change and only published after the write
// succeeds, so slices returned by List are never modified afterwards.
type RecipeRepository struct {
	store  store.Store
	clock  Clock
	ids    IDGenerator
	logger *zap.Logger

	mu      sync.RWMutex
	recipes []models.Recipe

	subs subscribers[RecipeEvent]
}

// NewRecipeRepository creates a repository. Call Initialize before use.
func NewRecipeRepository(s store.Store, clock Clock, ids IDGenerator, logger *zap.Logger) *RecipeRepository {
	logger = logging.OrNop(logger)
	return &RecipeRepository{
		store:  s,
		clock:  clock,
		ids:    ids,
		logger: logger.Named("recipes"),
	}
}

// Initialize loads the list from the store. An absent or unreadable list is
// replaced by the seed recipes, which are written back.
func (r *RecipeRepository) Initialize(ctx context.Context) error {
	r.mu.Lock()

	raw, ok, err := r.store.Get(ctx, RecipesKey)
	if err != nil {
		r.mu.Unlock()
		return fmt.Errorf("failed to load recipes: %w", err)
	}

	var recipes []models.Recipe
	if ok {
		recipes, err = decodeRecipes(raw)
		if err != nil {
			r.logger.Warn("Stored recipes are unreadable, restoring sample recipes", zap.Error(err))
			ok = false
		}
	}

	if !ok {
		recipes, err = SeedRecipes(r.clock.Now())
		if err != nil {
			r.mu.Unlock()
			return err
		}
		if err := r.persist(ctx, recipes); err != nil {
			r.mu.Unlock()
			return err
		}
		r.logger.Info("Seeded recipe collection", zap.Int("count", len(recipes)))
	}

	r.recipes = recipes
	r.mu.Unlock()

	r.subs.notify(RecipeEvent{Kind: EventInitialized})
	return nil
}

// Reset replaces the collection with the seed recipes.
func (r *RecipeRepository) Reset(ctx context.Context) error {
	recipes, err := SeedRecipes(r.clock.Now())
	if err != nil {
		return err
	}

	r.mu.Lock()
	if err := r.persist(ctx, recipes); err != nil {
		r.mu.Unlock()
		return err
	}
	r.recipes = recipes
	r.mu.Unlock()

	r.logger.Info("Reset recipe collection", zap.Int("count", len(recipes)))
	r.subs.notify(RecipeEvent{Kind: EventInitialized})
	return nil
}

// Add validates draft, stamps it with a new id, the current time and the
// user as author, and appends it to the collection.
func (r *RecipeRepository) Add(ctx context.Context, draft models.RecipeDraft, user *models.User) (models.Recipe, error) {
	if user == nil {
		return models.Recipe{}, ErrAuthRequired
	}

	recipe := models.Recipe{
		Title:        strings.TrimSpace(draft.Title),
		Description:  strings.TrimSpace(draft.Description),
		Ingredients:  models.NormalizeLines(draft.Ingredients),
		Instructions: models.NormalizeLines(draft.Instructions),
		ImageURL:     strings.TrimSpace(draft.ImageURL),
		CookTime:     draft.CookTime,
		PrepTime:     draft.PrepTime,
		Servings:     draft.Servings,
		IsVegetarian: draft.IsVegetarian,
		AuthorID:     user.ID,
		AuthorName:   user.Name,
	}
	if recipe.ImageURL == "" {
		recipe.ImageURL = models.DefaultImageURL
	}
	if err := ValidateRecipe(recipe); err != nil {
		return models.Recipe{}, err
	}

	r.mu.Lock()
	recipe.ID = r.ids.NewID()
	for r.indexOf(recipe.ID) >= 0 {
		recipe.ID = r.ids.NewID()
	}
	recipe.CreatedAt = r.clock.Now()

	next := make([]models.Recipe, len(r.recipes), len(r.recipes)+1)
	copy(next, r.recipes)
	next = append(next, recipe)

	if err := r.persist(ctx, next); err != nil {
		r.mu.Unlock()
		return models.Recipe{}, err
	}
	r.recipes = next
	r.mu.Unlock()

	r.logger.Info("Recipe added",
		zap.String("recipe_id", recipe.ID),
		zap.String("author_id", recipe.AuthorID))
	r.subs.notify(RecipeEvent{Kind: EventAdded, RecipeID: recipe.ID})
	return recipe, nil
}

// Update applies patch to the recipe with the given id. Only the author or
// an administrator may update a recipe.
func (r *RecipeRepository) Update(ctx context.Context, id string, patch models.RecipePatch, user *models.User) (models.Recipe, error) {
	if user == nil {
		return models.Recipe{}, ErrAuthRequired
	}

	r.mu.Lock()
	i, err := r.authorize(id, user)
	if err != nil {
		r.mu.Unlock()
		return models.Recipe{}, err
	}

	updated := patch.Apply(r.recipes[i])
	updated.Title = strings.TrimSpace(updated.Title)
	updated.Description = strings.TrimSpace(updated.Description)
	updated.Ingredients = models.NormalizeLines(updated.Ingredients)
	updated.Instructions = models.NormalizeLines(updated.Instructions)
	updated.ImageURL = strings.TrimSpace(updated.ImageURL)
	if updated.ImageURL == "" {
		updated.ImageURL = models.DefaultImageURL
	}
	if err := ValidateRecipe(updated); err != nil {
		r.mu.Unlock()
		return models.Recipe{}, err
	}

	next := make([]models.Recipe, len(r.recipes))
	copy(next, r.recipes)
	next[i] = updated

	if err := r.persist(ctx, next); err != nil {
		r.mu.Unlock()
		return models.Recipe{}, err
	}
	r.recipes = next
	r.mu.Unlock()

	r.logger.Info("Recipe updated", zap.String("recipe_id", id), zap.String("user_id", user.ID))
	r.subs.notify(RecipeEvent{Kind: EventUpdated, RecipeID: id})
	return updated, nil
}

// Delete removes the recipe with the given id. Only the author or an
// administrator may delete a recipe.
func (r *RecipeRepository) Delete(ctx context.Context, id string, user *models.User) error {
	if user == nil {
		return ErrAuthRequired
	}

	r.mu.Lock()
	i, err := r.authorize(id, user)
	if err != nil {
		r.mu.Unlock()
		return err
	}

	next := make([]models.Recipe, 0, len(r.recipes)-1)
	next = append(next, r.recipes[:i]...)
	next = append(next, r.recipes[i+1:]...)

	if err := r.persist(ctx, next); err != nil {
		r.mu.Unlock()
		return err
	}
	r.recipes = next
	r.mu.Unlock()

	r.logger.Info("Recipe deleted", zap.String("recipe_id", id), zap.String("user_id", user.ID))
	r.subs.notify(RecipeEvent{Kind: EventDeleted, RecipeID: id})
	return nil
}

// List returns the collection in insertion order. Callers must not modify it.
func (r *RecipeRepository) List() []models.Recipe {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recipes
}

// Get returns the recipe with the given id.
func (r *RecipeRepository) Get(id string) (models.Recipe, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexOf(id)
	if i < 0 {
		return models.Recipe{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return r.recipes[i], nil
}

// Subscribe registers fn to be called after every successful change. The
// returned function removes the registration.
func (r *RecipeRepository) Subscribe(fn func(RecipeEvent)) func() {
	return r.subs.add(fn)
}

// authorize must be called with mu held.
func (r *RecipeRepository) authorize(id string, user *models.User) (int, error) {
	i := r.indexOf(id)
	if i < 0 {
		return -1, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if !r.recipes[i].IsOwnedBy(user) && !user.IsAdmin() {
		return -1, ErrForbidden
	}
	return i, nil
}

func (r *RecipeRepository) indexOf(id string) int {
	for i := range r.recipes {
		if r.recipes[i].ID == id {
			return i
		}
	}
	return -1
}

func (r *RecipeRepository) persist(ctx context.Context, recipes []models.Recipe) error {
	data, err := json.Marshal(recipes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := r.store.Set(ctx, RecipesKey, string(data)); err != nil {
		r.logger.Error("Failed to write recipes", zap.Error(err))
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	return nil
}

func decodeRecipes(raw string) ([]models.Recipe, error) {
	var recipes []models.Recipe
	if err := json.Unmarshal([]byte(raw), &recipes); err != nil {
		return nil, err
	}
	if recipes == nil {
		return nil, errors.New("recipes value is not an array")
	}
	seen := make(map[string]struct{}, len(recipes))
	for i, recipe := range recipes {
		if recipe.ID == "" {
			return nil, fmt.Errorf("recipe at index %d has no id", i)
		}
		if _, dup := seen[recipe.ID]; dup {
			return nil, fmt.Errorf("duplicate recipe id %q", recipe.ID)
		}
		seen[recipe.ID] = struct{}{}
	}
	return recipes, nil
}

// ValidateRecipe reports every invalid mutable field of recipe.
func ValidateRecipe(recipe models.Recipe) error {
	verr := &ValidationError{}
	if recipe.Title == "" {
		verr.add("title", "is required")
	}
	if recipe.Description == "" {
		verr.add("description", "is required")
	}
	if len(recipe.Ingredients) == 0 {
		verr.add("ingredients", "at least one ingredient is required")
	}
	if len(recipe.Instructions) == 0 {
		verr.add("instructions", "at least one instruction is required")
	}
	if recipe.PrepTime < 0 {
		verr.add("prepTime", "must not be negative")
	}
	if recipe.CookTime < 0 {
		verr.add("cookTime", "must not be negative")
	}
	if recipe.Servings < 1 {
		verr.add("servings", "must be at least 1")
	}
	if u, err := url.Parse(recipe.ImageURL); err != nil || u.Scheme == "" || u.Host == "" {
		verr.add("imageUrl", "must be an absolute URL")
	}
	return verr.orNil()
}
