package service

import (
	"strings"
	"sync"

	"github.com/pageza/tastybytes/backend/internal/models"
)

// Project returns the recipes whose IsVegetarian equals *filter, in their
// original order. A nil filter returns list itself.
func Project(list []models.Recipe, filter *bool) []models.Recipe {
	if filter == nil {
		return list
	}
	out := make([]models.Recipe, 0, len(list))
	for _, recipe := range list {
		if recipe.IsVegetarian == *filter {
			out = append(out, recipe)
		}
	}
	return out
}

// Search returns the recipes whose title or author name contains term,
// ignoring case. An empty term returns list itself.
func Search(list []models.Recipe, term string) []models.Recipe {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return list
	}
	out := make([]models.Recipe, 0)
	for _, recipe := range list {
		if strings.Contains(strings.ToLower(recipe.Title), term) ||
			strings.Contains(strings.ToLower(recipe.AuthorName), term) {
			out = append(out, recipe)
		}
	}
	return out
}

// Projector keeps the filtered view of a recipe source up to date.
type Projector struct {
	source RecipeSource

	mu     sync.RWMutex
	filter *bool
	view   []models.Recipe

	unsubscribe func()
}

// NewProjector subscribes to source and computes the initial view.
func NewProjector(source RecipeSource) *Projector {
	p := &Projector{source: source}
	p.unsubscribe = source.Subscribe(func(RecipeEvent) { p.recompute() })
	p.recompute()
	return p
}

// SetFilter replaces the active filter and recomputes the view.
func (p *Projector) SetFilter(filter *bool) {
	p.mu.Lock()
	if filter == nil {
		p.filter = nil
	} else {
		v := *filter
		p.filter = &v
	}
	p.mu.Unlock()
	p.recompute()
}

// Filter returns the active filter.
func (p *Projector) Filter() *bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.filter == nil {
		return nil
	}
	v := *p.filter
	return &v
}

// View returns the current projection. Callers must not modify it.
func (p *Projector) View() []models.Recipe {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.view
}

// Close stops following the source.
func (p *Projector) Close() {
	p.unsubscribe()
}

func (p *Projector) recompute() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.view = Project(p.source.List(), p.filter)
}
