package testhelpers

import (
	"time"

	"github.com/pageza/gecko-recipes/backend/internal/types"
)

// Ptr returns a pointer to v.
func Ptr[T any](v T) *T {
	return &v
}

// PancakesDraft is a valid breakfast recipe with three ingredients.
func PancakesDraft() types.RecipeDraft {
	return types.RecipeDraft{
		Name:        "Pancakes",
		Description: Ptr("Fluffy"),
		CookingTime: Ptr(20 * time.Minute),
		MealType:    types.Breakfast,
		Ingredients: []types.IngredientDraft{
			{Name: "Flour", Quantity: 200, QuantityType: types.Gram},
			{Name: "Milk", Quantity: 300, QuantityType: types.Milliliter},
			{Name: "Egg", Quantity: 2, QuantityType: types.Count},
		},
	}
}

// SoupDraft is a valid dinner recipe without optional fields.
func SoupDraft() types.RecipeDraft {
	return types.RecipeDraft{
		Name:     "Soup",
		MealType: types.Dinner,
		Ingredients: []types.IngredientDraft{
			{Name: "Water", Quantity: 1.5, QuantityType: types.Liter},
		},
	}
}
