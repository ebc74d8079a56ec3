package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/gecko-recipes/backend/internal/testhelpers"
	"github.com/pageza/gecko-recipes/backend/internal/types"
)

// runContract exercises behavior every RecipeRepository must share.
func runContract(t *testing.T, newRepo func(t *testing.T) RecipeRepository) {
	ctx := context.Background()

	t.Run("create then get round trips", func(t *testing.T) {
		repo := newRepo(t)
		draft := testhelpers.PancakesDraft()

		created, err := repo.Create(ctx, draft)
		require.NoError(t, err)
		assert.NotZero(t, created.ID)
		assert.Equal(t, draft, created.Draft())
		for i, ing := range created.Ingredients {
			assert.NotZero(t, ing.ID)
			assert.Equal(t, created.ID, ing.RecipeID)
			assert.Equal(t, i, ing.Order)
		}

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, created, got)
	})

	t.Run("optional fields stay absent", func(t *testing.T) {
		repo := newRepo(t)

		created, err := repo.Create(ctx, testhelpers.SoupDraft())
		require.NoError(t, err)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Nil(t, got.Description)
		assert.Nil(t, got.CookingTime)
	})

	t.Run("zero cooking time is kept", func(t *testing.T) {
		repo := newRepo(t)
		draft := testhelpers.SoupDraft()
		draft.CookingTime = testhelpers.Ptr(time.Duration(0))

		created, err := repo.Create(ctx, draft)
		require.NoError(t, err)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		require.NotNil(t, got.CookingTime)
		assert.Zero(t, *got.CookingTime)
	})

	t.Run("empty ingredient list", func(t *testing.T) {
		repo := newRepo(t)
		draft := testhelpers.SoupDraft()
		draft.Ingredients = nil

		created, err := repo.Create(ctx, draft)
		require.NoError(t, err)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.NotNil(t, got.Ingredients)
		assert.Empty(t, got.Ingredients)
	})

	t.Run("ids are distinct", func(t *testing.T) {
		repo := newRepo(t)

		a, err := repo.Create(ctx, testhelpers.PancakesDraft())
		require.NoError(t, err)
		b, err := repo.Create(ctx, testhelpers.PancakesDraft())
		require.NoError(t, err)
		assert.NotEqual(t, a.ID, b.ID)
		assert.NotEqual(t, a.Ingredients[0].ID, b.Ingredients[0].ID)
	})

	t.Run("list returns every recipe by id", func(t *testing.T) {
		repo := newRepo(t)

		empty, err := repo.List(ctx)
		require.NoError(t, err)
		assert.NotNil(t, empty)
		assert.Empty(t, empty)

		first, err := repo.Create(ctx, testhelpers.PancakesDraft())
		require.NoError(t, err)
		second, err := repo.Create(ctx, testhelpers.SoupDraft())
		require.NoError(t, err)

		all, err := repo.List(ctx)
		require.NoError(t, err)
		require.Len(t, all, 2)
		assert.Equal(t, *first, all[0])
		assert.Equal(t, *second, all[1])
	})

	t.Run("update replaces fields and ingredients", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, testhelpers.PancakesDraft())
		require.NoError(t, err)

		draft := testhelpers.PancakesDraft()
		draft.Name = "Crepes"
		draft.Description = nil
		draft.MealType = types.Lunch
		draft.Ingredients = []types.IngredientDraft{
			{Name: "Batter", Quantity: 0.5, QuantityType: types.Liter},
		}

		oldIDs := make([]int64, 0, len(created.Ingredients))
		for _, ing := range created.Ingredients {
			oldIDs = append(oldIDs, ing.ID)
		}

		updated, err := repo.Update(ctx, created.ID, draft)
		require.NoError(t, err)
		assert.Equal(t, created.ID, updated.ID)
		assert.Equal(t, draft, updated.Draft())
		require.Len(t, updated.Ingredients, 1)
		assert.Equal(t, 0, updated.Ingredients[0].Order)
		assert.NotContains(t, oldIDs, updated.Ingredients[0].ID)

		got, err := repo.Get(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, updated, got)
	})

	t.Run("update can grow the ingredient list", func(t *testing.T) {
		repo := newRepo(t)
		created, err := repo.Create(ctx, testhelpers.SoupDraft())
		require.NoError(t, err)

		draft := testhelpers.SoupDraft()
		draft.Ingredients = append(draft.Ingredients,
			types.IngredientDraft{Name: "Salt", Quantity: 5, QuantityType: types.Gram},
			types.IngredientDraft{Name: "Carrot", Quantity: 2, QuantityType: types.Count},
		)

		updated, err := repo.Update(ctx, created.ID, draft)
		require.NoError(t, err)
		require.Len(t, updated.Ingredients, 3)
		for i, ing := range updated.Ingredients {
			assert.Equal(t, i, ing.Order)
		}
		assert.Equal(t, "Carrot", updated.Ingredients[2].Name)
	})

	t.Run("update missing recipe", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Update(ctx, 4242, testhelpers.SoupDraft())
		require.Error(t, err)
		assert.True(t, types.IsNotFound(err))

		all, err := repo.List(ctx)
		require.NoError(t, err)
		assert.Empty(t, all)
	})

	t.Run("delete removes the recipe", func(t *testing.T) {
		repo := newRepo(t)
		keep, err := repo.Create(ctx, testhelpers.SoupDraft())
		require.NoError(t, err)
		gone, err := repo.Create(ctx, testhelpers.PancakesDraft())
		require.NoError(t, err)

		require.NoError(t, repo.Delete(ctx, gone.ID))

		_, err = repo.Get(ctx, gone.ID)
		assert.True(t, types.IsNotFound(err))

		err = repo.Delete(ctx, gone.ID)
		assert.True(t, types.IsNotFound(err))

		got, err := repo.Get(ctx, keep.ID)
		require.NoError(t, err)
		assert.Equal(t, keep, got)
	})

	t.Run("get missing recipe", func(t *testing.T) {
		repo := newRepo(t)

		_, err := repo.Get(ctx, 1)
		require.Error(t, err)
		var notFound *types.NotFoundError
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, int64(1), notFound.RecipeID)
	})

	t.Run("cancelled context is a storage error", func(t *testing.T) {
		repo := newRepo(t)
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := repo.List(cancelled)
		require.Error(t, err)
		assert.True(t, types.IsStorage(err))
	})
}

func TestMemoryRecipeRepo(t *testing.T) {
	runContract(t, func(t *testing.T) RecipeRepository {
		return NewMemoryRecipeRepo()
	})
}

func TestGormRecipeRepoSQLite(t *testing.T) {
	runContract(t, func(t *testing.T) RecipeRepository {
		return NewRecipeRepo(testhelpers.SetupSQLiteDB(t), 5*time.Second)
	})
}

func TestMemoryRecipeRepoReturnsCopies(t *testing.T) {
	repo := NewMemoryRecipeRepo()
	ctx := context.Background()

	created, err := repo.Create(ctx, testhelpers.PancakesDraft())
	require.NoError(t, err)
	created.Ingredients[0].Name = "Sawdust"
	*created.Description = "Changed"

	got, err := repo.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flour", got.Ingredients[0].Name)
	assert.Equal(t, "Fluffy", *got.Description)
}
