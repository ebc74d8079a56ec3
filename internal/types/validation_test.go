package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func validDraft() RecipeDraft {
	return RecipeDraft{
		Name:        "Pancakes",
		Description: ptr("Fluffy"),
		CookingTime: ptr(20 * time.Minute),
		MealType:    Breakfast,
		Ingredients: []IngredientDraft{
			{Name: "Flour", Quantity: 200, QuantityType: Gram},
			{Name: "Milk", Quantity: 300, QuantityType: Milliliter},
		},
	}
}

func TestRecipeDraftValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RecipeDraft)
		fields []string
	}{
		{name: "valid", mutate: func(d *RecipeDraft) {}},
		{name: "no optional fields", mutate: func(d *RecipeDraft) {
			d.Description = nil
			d.CookingTime = nil
		}},
		{name: "no ingredients", mutate: func(d *RecipeDraft) { d.Ingredients = nil }},
		{name: "zero cooking time", mutate: func(d *RecipeDraft) { d.CookingTime = ptr(time.Duration(0)) }},
		{name: "zero quantity", mutate: func(d *RecipeDraft) { d.Ingredients[0].Quantity = 0 }},
		{name: "whitespace name is not empty", mutate: func(d *RecipeDraft) { d.Name = " " }},
		{
			name:   "empty name",
			mutate: func(d *RecipeDraft) { d.Name = "" },
			fields: []string{"name"},
		},
		{
			name:   "empty description",
			mutate: func(d *RecipeDraft) { d.Description = ptr("") },
			fields: []string{"description"},
		},
		{
			name:   "negative cooking time",
			mutate: func(d *RecipeDraft) { d.CookingTime = ptr(-time.Second) },
			fields: []string{"cooking_time"},
		},
		{
			name:   "unknown meal type",
			mutate: func(d *RecipeDraft) { d.MealType = "Brunch" },
			fields: []string{"meal_type"},
		},
		{
			name:   "meal type is case sensitive",
			mutate: func(d *RecipeDraft) { d.MealType = "breakfast" },
			fields: []string{"meal_type"},
		},
		{
			name:   "missing meal type",
			mutate: func(d *RecipeDraft) { d.MealType = "" },
			fields: []string{"meal_type"},
		},
		{
			name: "bad ingredients",
			mutate: func(d *RecipeDraft) {
				d.Ingredients[0].Name = ""
				d.Ingredients[1].Quantity = -1
				d.Ingredients[1].QuantityType = "Cup"
			},
			fields: []string{"ingredients[0].name", "ingredients[1].quantity", "ingredients[1].quantity_type"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)

			err := d.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			require.Error(t, err)
			assert.True(t, IsValidation(err))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)

			got := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				got = append(got, f.Field)
			}
			assert.ElementsMatch(t, tt.fields, got)
		})
	}
}

func TestValidationMessages(t *testing.T) {
	d := validDraft()
	d.MealType = "Brunch"

	var verr *ValidationError
	require.ErrorAs(t, d.Validate(), &verr)
	require.Len(t, verr.Fields, 1)
	assert.Equal(t, "must be one of Breakfast, Lunch, Dinner", verr.Fields[0].Message)
	assert.Equal(t, "validation failed: meal_type: must be one of Breakfast, Lunch, Dinner", verr.Error())
}

func TestParseEnums(t *testing.T) {
	for _, m := range MealTypes {
		got, err := ParseMealType(m.String())
		require.NoError(t, err)
		assert.Equal(t, m, got)
	}
	for _, q := range QuantityTypes {
		got, err := ParseQuantityType(q.String())
		require.NoError(t, err)
		assert.Equal(t, q, got)
	}

	_, err := ParseMealType("Supper")
	assert.Error(t, err)
	_, err = ParseQuantityType("gram")
	assert.Error(t, err)
	assert.False(t, QuantityType("Pinch").Valid())
}

func TestErrorKinds(t *testing.T) {
	notFound := &NotFoundError{RecipeID: 7}
	assert.Equal(t, "recipe 7 not found", notFound.Error())
	assert.True(t, IsNotFound(notFound))
	assert.False(t, IsStorage(notFound))

	cause := assert.AnError
	storage := &StorageError{Op: "get recipe", Err: cause}
	assert.True(t, IsStorage(storage))
	assert.ErrorIs(t, storage, cause)
	assert.False(t, IsValidation(storage))
}
