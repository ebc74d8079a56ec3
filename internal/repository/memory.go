package repository

import (
	"context"
	"maps"
	"slices"
	"sync"

	"github.com/pageza/gecko-recipes/backend/internal/types"
)

// Compile-time interface check.
var _ RecipeRepository = (*MemoryRecipeRepo)(nil)

// MemoryRecipeRepo is an in-memory RecipeRepository. Safe for concurrent access.
// It follows the same identity and ordering rules as the relational store.
type MemoryRecipeRepo struct {
	mu               sync.RWMutex
	recipes          map[int64]types.Recipe
	nextRecipeID     int64
	nextIngredientID int64
}

// NewMemoryRecipeRepo creates an empty repository.
func NewMemoryRecipeRepo() *MemoryRecipeRepo {
	return &MemoryRecipeRepo{
		recipes:          make(map[int64]types.Recipe),
		nextRecipeID:     1,
		nextIngredientID: 1,
	}
}

func (m *MemoryRecipeRepo) Create(ctx context.Context, draft types.RecipeDraft) (*types.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.StorageError{Op: "create recipe", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextRecipeID
	m.nextRecipeID++
	recipe := m.build(id, draft)
	m.recipes[id] = recipe

	out := cloneRecipe(recipe)
	return &out, nil
}

func (m *MemoryRecipeRepo) Get(ctx context.Context, id int64) (*types.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.StorageError{Op: "get recipe", Err: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	recipe, ok := m.recipes[id]
	if !ok {
		return nil, &types.NotFoundError{RecipeID: id}
	}
	out := cloneRecipe(recipe)
	return &out, nil
}

func (m *MemoryRecipeRepo) List(ctx context.Context) ([]types.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.StorageError{Op: "list recipes", Err: err}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := slices.Sorted(maps.Keys(m.recipes))
	out := make([]types.Recipe, 0, len(ids))
	for _, id := range ids {
		out = append(out, cloneRecipe(m.recipes[id]))
	}
	return out, nil
}

func (m *MemoryRecipeRepo) Update(ctx context.Context, id int64, draft types.RecipeDraft) (*types.Recipe, error) {
	if err := ctx.Err(); err != nil {
		return nil, &types.StorageError{Op: "update recipe", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[id]; !ok {
		return nil, &types.NotFoundError{RecipeID: id}
	}
	recipe := m.build(id, draft)
	m.recipes[id] = recipe

	out := cloneRecipe(recipe)
	return &out, nil
}

func (m *MemoryRecipeRepo) Delete(ctx context.Context, id int64) error {
	if err := ctx.Err(); err != nil {
		return &types.StorageError{Op: "delete recipe", Err: err}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.recipes[id]; !ok {
		return &types.NotFoundError{RecipeID: id}
	}
	delete(m.recipes, id)
	return nil
}

// build assigns fresh ingredient ids. Caller holds the write lock.
func (m *MemoryRecipeRepo) build(id int64, draft types.RecipeDraft) types.Recipe {
	recipe := types.Recipe{
		ID:          id,
		Name:        draft.Name,
		Description: cloneString(draft.Description),
		MealType:    draft.MealType,
		Ingredients: make([]types.Ingredient, 0, len(draft.Ingredients)),
	}
	if draft.CookingTime != nil {
		ct := *draft.CookingTime
		recipe.CookingTime = &ct
	}
	for i, d := range draft.Ingredients {
		recipe.Ingredients = append(recipe.Ingredients, types.Ingredient{
			ID:           m.nextIngredientID,
			RecipeID:     id,
			Order:        i,
			Name:         d.Name,
			Quantity:     d.Quantity,
			QuantityType: d.QuantityType,
		})
		m.nextIngredientID++
	}
	return recipe
}

func cloneRecipe(r types.Recipe) types.Recipe {
	out := r
	out.Description = cloneString(r.Description)
	if r.CookingTime != nil {
		ct := *r.CookingTime
		out.CookingTime = &ct
	}
	out.Ingredients = slices.Clone(r.Ingredients)
	if out.Ingredients == nil {
		out.Ingredients = []types.Ingredient{}
	}
	return out
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
