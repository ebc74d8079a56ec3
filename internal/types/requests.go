package types

import (
	"math"
	"time"
)

// IngredientRequest is one ingredient in a create or update request body.
type IngredientRequest struct {
	Name         string       `json:"name"`
	Quantity     float32      `json:"quantity"`
	QuantityType QuantityType `json:"quantity_type"`
}

// RecipeRequest is the request body for POST /recipes and PUT /recipes/{id}.
// CookingTime is in seconds. Any recipe_id sent by the client is ignored.
type RecipeRequest struct {
	Name        string              `json:"name"`
	Description *string             `json:"description"`
	CookingTime *int64              `json:"cooking_time"`
	MealType    MealType            `json:"meal_type"`
	Ingredients []IngredientRequest `json:"ingredients"`
}

// Draft converts the request into a RecipeDraft. It only fails when
// cooking_time cannot be represented as a duration.
func (r RecipeRequest) Draft() (RecipeDraft, error) {
	d := RecipeDraft{
		Name:        r.Name,
		Description: r.Description,
		MealType:    r.MealType,
		Ingredients: make([]IngredientDraft, 0, len(r.Ingredients)),
	}
	if r.CookingTime != nil {
		secs := *r.CookingTime
		if secs > math.MaxInt64/int64(time.Second) || secs < math.MinInt64/int64(time.Second) {
			return RecipeDraft{}, NewValidationError("cooking_time", "is out of range")
		}
		ct := time.Duration(secs) * time.Second
		d.CookingTime = &ct
	}
	for _, i := range r.Ingredients {
		d.Ingredients = append(d.Ingredients, IngredientDraft(i))
	}
	return d, nil
}

// IngredientResponse is one ingredient of a RecipeResponse.
type IngredientResponse struct {
	IngredientID int64        `json:"ingredient_id"`
	Order        int          `json:"order"`
	Name         string       `json:"name"`
	Quantity     float32      `json:"quantity"`
	QuantityType QuantityType `json:"quantity_type"`
}

// RecipeResponse is the JSON representation of a stored recipe.
type RecipeResponse struct {
	RecipeID    int64                `json:"recipe_id"`
	Name        string               `json:"name"`
	Description *string              `json:"description,omitempty"`
	CookingTime *int64               `json:"cooking_time,omitempty"`
	MealType    MealType             `json:"meal_type"`
	Ingredients []IngredientResponse `json:"ingredients"`
}

// NewRecipeResponse renders r for the wire.
func NewRecipeResponse(r Recipe) RecipeResponse {
	resp := RecipeResponse{
		RecipeID:    r.ID,
		Name:        r.Name,
		Description: r.Description,
		MealType:    r.MealType,
		Ingredients: make([]IngredientResponse, 0, len(r.Ingredients)),
	}
	if r.CookingTime != nil {
		secs := int64(*r.CookingTime / time.Second)
		resp.CookingTime = &secs
	}
	for _, i := range r.Ingredients {
		resp.Ingredients = append(resp.Ingredients, IngredientResponse{
			IngredientID: i.ID,
			Order:        i.Order,
			Name:         i.Name,
			Quantity:     i.Quantity,
			QuantityType: i.QuantityType,
		})
	}
	return resp
}

// NewRecipeResponses renders a list of recipes, never returning nil.
func NewRecipeResponses(recipes []Recipe) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, NewRecipeResponse(r))
	}
	return out
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error     string       `json:"error"`
	RequestID string       `json:"request_id,omitempty"`
	Details   []FieldError `json:"details,omitempty"`
}
