package service

import (
	"context"
	"log/slog"

	"github.com/pageza/gecko-recipes/backend/internal/repository"
	"github.com/pageza/gecko-recipes/backend/internal/types"
)

var _ IRecipeService = (*RecipeService)(nil)

// RecipeService handles recipe operations. Drafts are validated here, once,
// before they reach the repository.
type RecipeService struct {
	repo repository.RecipeRepository
	log  *slog.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(repo repository.RecipeRepository, log *slog.Logger) *RecipeService {
	return &RecipeService{
		repo: repo,
		log:  log.With("component", "recipe_service"),
	}
}

// CreateRecipe validates and stores a new recipe
func (s *RecipeService) CreateRecipe(ctx context.Context, draft types.RecipeDraft) (*types.Recipe, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	recipe, err := s.repo.Create(ctx, draft)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "recipe created", "recipe_id", recipe.ID, "ingredients", len(recipe.Ingredients))
	return recipe, nil
}

// GetRecipe retrieves a recipe by ID
func (s *RecipeService) GetRecipe(ctx context.Context, id int64) (*types.Recipe, error) {
	return s.repo.Get(ctx, id)
}

// ListRecipes returns every stored recipe
func (s *RecipeService) ListRecipes(ctx context.Context) ([]types.Recipe, error) {
	return s.repo.List(ctx)
}

// UpdateRecipe validates draft and replaces the stored recipe with it
func (s *RecipeService) UpdateRecipe(ctx context.Context, id int64, draft types.RecipeDraft) (*types.Recipe, error) {
	if err := draft.Validate(); err != nil {
		return nil, err
	}
	recipe, err := s.repo.Update(ctx, id, draft)
	if err != nil {
		return nil, err
	}
	s.log.InfoContext(ctx, "recipe updated", "recipe_id", id, "ingredients", len(recipe.Ingredients))
	return recipe, nil
}

// DeleteRecipe deletes a recipe and its ingredients
func (s *RecipeService) DeleteRecipe(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.InfoContext(ctx, "recipe deleted", "recipe_id", id)
	return nil
}
