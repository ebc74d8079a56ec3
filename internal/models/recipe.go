package models

import (
	"cmp"
	"fmt"
	"slices"
	"time"

	"github.com/pageza/gecko-recipes/backend/internal/types"
)

// Recipe is a row of the recipe table.
type Recipe struct {
	ID              int64        `gorm:"column:recipe_id;primaryKey;autoIncrement"`
	Name            string       `gorm:"column:name;type:text;not null;check:chk_recipe_name,name <> ''"`
	Description     *string      `gorm:"column:description;type:text;check:chk_recipe_description,description <> ''"`
	CookingTimeSecs *int64       `gorm:"column:cooking_time_secs;check:chk_recipe_cooking_time,cooking_time_secs >= 0"`
	MealType        string       `gorm:"column:meal_type;not null"`
	Ingredients     []Ingredient `gorm:"foreignKey:RecipeID;references:ID;constraint:OnDelete:CASCADE"`
}

func (Recipe) TableName() string {
	return "recipe"
}

// Ingredient is a row of the ingredient table. (RecipeID, Order) is unique.
type Ingredient struct {
	ID           int64   `gorm:"column:ingredient_id;primaryKey;autoIncrement"`
	RecipeID     int64   `gorm:"column:recipe_id;not null;uniqueIndex:idx_ingredient_recipe_order"`
	Order        int     `gorm:"column:ingredient_order;not null;uniqueIndex:idx_ingredient_recipe_order"`
	Name         string  `gorm:"column:name;type:text;not null;check:chk_ingredient_name,name <> ''"`
	Quantity     float32 `gorm:"column:quantity;not null"`
	QuantityType string  `gorm:"column:quantity_type;not null"`
}

func (Ingredient) TableName() string {
	return "ingredient"
}

// NewRecipe builds the recipe row for d. Ingredients are not attached; use
// NewIngredients once the recipe id is known.
func NewRecipe(d types.RecipeDraft) Recipe {
	r := Recipe{
		Name:        d.Name,
		Description: d.Description,
		MealType:    string(d.MealType),
	}
	if d.CookingTime != nil {
		secs := int64(*d.CookingTime / time.Second)
		r.CookingTimeSecs = &secs
	}
	return r
}

// NewIngredients builds ingredient rows for recipeID with orders 0..n-1 in input order.
func NewIngredients(recipeID int64, drafts []types.IngredientDraft) []Ingredient {
	rows := make([]Ingredient, 0, len(drafts))
	for i, d := range drafts {
		rows = append(rows, Ingredient{
			RecipeID:     recipeID,
			Order:        i,
			Name:         d.Name,
			Quantity:     d.Quantity,
			QuantityType: string(d.QuantityType),
		})
	}
	return rows
}

// ToDomain converts the row and its loaded ingredients. Enum labels the domain
// does not know are rejected here rather than trusted.
func (r Recipe) ToDomain() (types.Recipe, error) {
	mealType, err := types.ParseMealType(r.MealType)
	if err != nil {
		return types.Recipe{}, fmt.Errorf("recipe %d: %w", r.ID, err)
	}

	out := types.Recipe{
		ID:          r.ID,
		Name:        r.Name,
		Description: r.Description,
		MealType:    mealType,
		Ingredients: make([]types.Ingredient, 0, len(r.Ingredients)),
	}
	if r.CookingTimeSecs != nil {
		ct := time.Duration(*r.CookingTimeSecs) * time.Second
		out.CookingTime = &ct
	}
	for _, row := range r.Ingredients {
		ing, err := row.ToDomain()
		if err != nil {
			return types.Recipe{}, fmt.Errorf("recipe %d: %w", r.ID, err)
		}
		out.Ingredients = append(out.Ingredients, ing)
	}
	slices.SortFunc(out.Ingredients, func(a, b types.Ingredient) int {
		return cmp.Compare(a.Order, b.Order)
	})
	return out, nil
}

// ToDomain converts the ingredient row.
func (i Ingredient) ToDomain() (types.Ingredient, error) {
	qt, err := types.ParseQuantityType(i.QuantityType)
	if err != nil {
		return types.Ingredient{}, fmt.Errorf("ingredient %d: %w", i.ID, err)
	}
	return types.Ingredient{
		ID:           i.ID,
		RecipeID:     i.RecipeID,
		Order:        i.Order,
		Name:         i.Name,
		Quantity:     i.Quantity,
		QuantityType: qt,
	}, nil
}
