package service

import (
	"context"

	"github.com/pageza/gecko-recipes/backend/internal/types"
)

// IRecipeService defines the interface for recipe operations
type IRecipeService interface {
	CreateRecipe(ctx context.Context, draft types.RecipeDraft) (*types.Recipe, error)
	GetRecipe(ctx context.Context, id int64) (*types.Recipe, error)
	ListRecipes(ctx context.Context) ([]types.Recipe, error)
	UpdateRecipe(ctx context.Context, id int64, draft types.RecipeDraft) (*types.Recipe, error)
	DeleteRecipe(ctx context.Context, id int64) error
}
