package types

import (
	"errors"
	"reflect"
	"strings"
	"unicode"

	"github.com/go-playground/validator/v10"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return snakeCase(f.Name)
	})
	_ = v.RegisterValidation("mealtype", func(fl validator.FieldLevel) bool {
		return MealType(fl.Field().String()).Valid()
	})
	_ = v.RegisterValidation("quantitytype", func(fl validator.FieldLevel) bool {
		return QuantityType(fl.Field().String()).Valid()
	})
	return v
}

// Validate checks d against the recipe invariants and returns a
// *ValidationError listing every violation, or nil.
func (d RecipeDraft) Validate() error {
	err := validate.Struct(d)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: []FieldError{{Field: "recipe", Message: err.Error()}}}
	}

	out := &ValidationError{Fields: make([]FieldError, 0, len(fieldErrs))}
	for _, fe := range fieldErrs {
		out.Fields = append(out.Fields, FieldError{
			Field:   fieldPath(fe.Namespace()),
			Message: fieldMessage(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name: "RecipeDraft.ingredients[0].name" -> "ingredients[0].name".
func fieldPath(namespace string) string {
	if _, rest, ok := strings.Cut(namespace, "."); ok {
		return rest
	}
	return namespace
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "must not be empty"
	case "min":
		return "must not be empty when present"
	case "gte":
		return "must not be negative"
	case "mealtype":
		return "must be one of " + joinLabels(MealTypes)
	case "quantitytype":
		return "must be one of " + joinLabels(QuantityTypes)
	default:
		return "is invalid"
	}
}

func joinLabels[T ~string](labels []T) string {
	parts := make([]string, len(labels))
	for i, l := range labels {
		parts[i] = string(l)
	}
	return strings.Join(parts, ", ")
}

func snakeCase(name string) string {
	var b strings.Builder
	for i, r := range name {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			r = unicode.ToLower(r)
		}
		b.WriteRune(r)
	}
	return b.String()
}
