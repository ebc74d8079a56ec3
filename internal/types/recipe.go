package types

import (
	"fmt"
	"time"
)

// MealType is the closed set of meals a recipe can be served at.
type MealType string

const (
	Breakfast MealType = "Breakfast"
	Lunch     MealType = "Lunch"
	Dinner    MealType = "Dinner"
)

// MealTypes lists every valid MealType in declaration order.
var MealTypes = []MealType{Breakfast, Lunch, Dinner}

// ParseMealType maps a label to its MealType. Labels are case sensitive.
func ParseMealType(label string) (MealType, error) {
	for _, m := range MealTypes {
		if string(m) == label {
			return m, nil
		}
	}
	return "", fmt.Errorf("unknown meal type %q", label)
}

// Valid reports whether m is a member of the closed set.
func (m MealType) Valid() bool {
	_, err := ParseMealType(string(m))
	return err == nil
}

func (m MealType) String() string {
	return string(m)
}

// QuantityType is the closed set of units an ingredient quantity is expressed in.
type QuantityType string

const (
	Count      QuantityType = "Count"
	Kilo       QuantityType = "Kilo"
	Gram       QuantityType = "Gram"
	Liter      QuantityType = "Liter"
	Milliliter QuantityType = "Milliliter"
)

// QuantityTypes lists every valid QuantityType in declaration order.
var QuantityTypes = []QuantityType{Count, Kilo, Gram, Liter, Milliliter}

// ParseQuantityType maps a label to its QuantityType. Labels are case sensitive.
func ParseQuantityType(label string) (QuantityType, error) {
	for _, q := range QuantityTypes {
		if string(q) == label {
			return q, nil
		}
	}
	return "", fmt.Errorf("unknown quantity type %q", label)
}

// Valid reports whether q is a member of the closed set.
func (q QuantityType) Valid() bool {
	_, err := ParseQuantityType(string(q))
	return err == nil
}

func (q QuantityType) String() string {
	return string(q)
}

// Recipe is a stored recipe with its ingredients in display order.
type Recipe struct {
	ID          int64
	Name        string
	Description *string
	CookingTime *time.Duration
	MealType    MealType
	Ingredients []Ingredient
}

// Ingredient belongs to exactly one recipe. Order is its position within that recipe.
type Ingredient struct {
	ID           int64
	RecipeID     int64
	Order        int
	Name         string
	Quantity     float32
	QuantityType QuantityType
}

// RecipeDraft is the input to create and update: a recipe without identity.
type RecipeDraft struct {
	Name        string            `validate:"required"`
	Description *string           `validate:"omitnil,min=1"`
	CookingTime *time.Duration    `validate:"omitnil,gte=0"`
	MealType    MealType          `validate:"required,mealtype"`
	Ingredients []IngredientDraft `validate:"dive"`
}

// IngredientDraft is an ingredient without identity or order. Its position in
// RecipeDraft.Ingredients becomes its order.
type IngredientDraft struct {
	Name         string       `validate:"required"`
	Quantity     float32      `validate:"gte=0"`
	QuantityType QuantityType `validate:"required,quantitytype"`
}

// Draft returns the draft that would recreate r.
func (r Recipe) Draft() RecipeDraft {
	d := RecipeDraft{
		Name:        r.Name,
		Description: r.Description,
		CookingTime: r.CookingTime,
		MealType:    r.MealType,
		Ingredients: make([]IngredientDraft, 0, len(r.Ingredients)),
	}
	for _, i := range r.Ingredients {
		d.Ingredients = append(d.Ingredients, IngredientDraft{
			Name:         i.Name,
			Quantity:     i.Quantity,
			QuantityType: i.QuantityType,
		})
	}
	return d
}
