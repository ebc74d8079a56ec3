package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/pageza/gecko-recipes/backend/internal/mocks"
	"github.com/pageza/gecko-recipes/backend/internal/repository"
	"github.com/pageza/gecko-recipes/backend/internal/testhelpers"
	"github.com/pageza/gecko-recipes/backend/internal/types"
)

func newService() *RecipeService {
	return NewRecipeService(repository.NewMemoryRecipeRepo(), testhelpers.Logger())
}

func TestRecipeServiceLifecycle(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.CreateRecipe(ctx, testhelpers.PancakesDraft())
	require.NoError(t, err)
	assert.Equal(t, "Pancakes", created.Name)

	got, err := svc.GetRecipe(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created, got)

	updated, err := svc.UpdateRecipe(ctx, created.ID, testhelpers.SoupDraft())
	require.NoError(t, err)
	assert.Equal(t, "Soup", updated.Name)

	all, err := svc.ListRecipes(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, svc.DeleteRecipe(ctx, created.ID))
	_, err = svc.GetRecipe(ctx, created.ID)
	assert.True(t, types.IsNotFound(err))
}

func TestCreateRecipeRejectsInvalidDraft(t *testing.T) {
	repo := &mocks.MockRecipeRepository{}
	svc := NewRecipeService(repo, testhelpers.Logger())

	draft := testhelpers.PancakesDraft()
	draft.Name = ""

	_, err := svc.CreateRecipe(context.Background(), draft)
	require.Error(t, err)
	assert.True(t, types.IsValidation(err))
	repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUpdateRecipeValidatesBeforeLookup(t *testing.T) {
	repo := &mocks.MockRecipeRepository{}
	svc := NewRecipeService(repo, testhelpers.Logger())

	draft := testhelpers.SoupDraft()
	draft.Ingredients[0].QuantityType = "Cup"

	_, err := svc.UpdateRecipe(context.Background(), 99, draft)
	assert.True(t, types.IsValidation(err))
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecipeServicePassesStorageErrorsThrough(t *testing.T) {
	repo := &mocks.MockRecipeRepository{}
	svc := NewRecipeService(repo, testhelpers.Logger())
	ctx := context.Background()
	storageErr := &types.StorageError{Op: "list recipes", Err: errors.New("connection refused")}

	repo.On("List", ctx).Return(nil, storageErr)
	repo.On("Delete", ctx, int64(5)).Return(&types.NotFoundError{RecipeID: 5})

	_, err := svc.ListRecipes(ctx)
	assert.Same(t, storageErr, err)

	err = svc.DeleteRecipe(ctx, 5)
	assert.True(t, types.IsNotFound(err))
	repo.AssertExpectations(t)
}
