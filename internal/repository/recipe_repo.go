package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/pageza/gecko-recipes/backend/internal/models"
	"github.com/pageza/gecko-recipes/backend/internal/types"
)

// RecipeRepository stores recipes together with their ingredient lists.
//
// Every call runs in exactly one transaction. Failures are returned as
// *types.NotFoundError or *types.StorageError. Drafts are not validated here;
// callers pass drafts that already satisfy RecipeDraft.Validate.
type RecipeRepository interface {
	Create(ctx context.Context, draft types.RecipeDraft) (*types.Recipe, error)
	Get(ctx context.Context, id int64) (*types.Recipe, error)
	List(ctx context.Context) ([]types.Recipe, error)
	Update(ctx context.Context, id int64, draft types.RecipeDraft) (*types.Recipe, error)
	Delete(ctx context.Context, id int64) error
}

var _ RecipeRepository = (*recipeRepo)(nil)

type recipeRepo struct {
	db      *gorm.DB
	timeout time.Duration
}

// NewRecipeRepo returns a RecipeRepository backed by db. When timeout is
// positive every call is bounded by it.
func NewRecipeRepo(db *gorm.DB, timeout time.Duration) RecipeRepository {
	return &recipeRepo{db: db, timeout: timeout}
}

func (r *recipeRepo) Create(ctx context.Context, draft types.RecipeDraft) (*types.Recipe, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	row := models.NewRecipe(draft)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&row).Error; err != nil {
			return err
		}
		row.Ingredients = models.NewIngredients(row.ID, draft.Ingredients)
		return insertIngredients(tx, row.Ingredients)
	})
	if err != nil {
		return nil, classify("create recipe", err)
	}
	return toDomain("create recipe", row)
}

func (r *recipeRepo) Get(ctx context.Context, id int64) (*types.Recipe, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var row models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return findRecipe(tx, id, &row)
	}, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, classify("get recipe", err)
	}
	return toDomain("get recipe", row)
}

func (r *recipeRepo) List(ctx context.Context) ([]types.Recipe, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	var rows []models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return withIngredients(tx).Order("recipe_id ASC").Find(&rows).Error
	}, &sql.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, classify("list recipes", err)
	}

	recipes := make([]types.Recipe, 0, len(rows))
	for _, row := range rows {
		recipe, err := toDomain("list recipes", row)
		if err != nil {
			return nil, err
		}
		recipes = append(recipes, *recipe)
	}
	return recipes, nil
}

// Update replaces the scalar fields and the whole ingredient list. Old
// ingredient rows are deleted and new ones inserted, so ingredient ids change.
func (r *recipeRepo) Update(ctx context.Context, id int64, draft types.RecipeDraft) (*types.Recipe, error) {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	values := models.NewRecipe(draft)
	var row models.Recipe
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).Where("recipe_id = ?", id).Updates(map[string]any{
			"name":              values.Name,
			"description":       values.Description,
			"cooking_time_secs": values.CookingTimeSecs,
			"meal_type":         values.MealType,
		})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &types.NotFoundError{RecipeID: id}
		}

		if err := tx.Where("recipe_id = ?", id).Delete(&models.Ingredient{}).Error; err != nil {
			return err
		}
		if err := insertIngredients(tx, models.NewIngredients(id, draft.Ingredients)); err != nil {
			return err
		}
		return findRecipe(tx, id, &row)
	})
	if err != nil {
		return nil, classify("update recipe", err)
	}
	return toDomain("update recipe", row)
}

// Delete removes the recipe and its ingredients. The ingredient rows are
// removed explicitly so the result does not depend on the cascade rule.
func (r *recipeRepo) Delete(ctx context.Context, id int64) error {
	ctx, cancel := r.bound(ctx)
	defer cancel()

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id).Delete(&models.Ingredient{}).Error; err != nil {
			return err
		}
		res := tx.Where("recipe_id = ?", id).Delete(&models.Recipe{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &types.NotFoundError{RecipeID: id}
		}
		return nil
	})
	return classify("delete recipe", err)
}

func (r *recipeRepo) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	if r.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, r.timeout)
}

func withIngredients(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Ingredients", func(db *gorm.DB) *gorm.DB {
		return db.Order("ingredient_order ASC")
	})
}

func findRecipe(tx *gorm.DB, id int64, row *models.Recipe) error {
	err := withIngredients(tx).Where("recipe_id = ?", id).Take(row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return &types.NotFoundError{RecipeID: id}
	}
	return err
}

func insertIngredients(tx *gorm.DB, rows []models.Ingredient) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

func toDomain(op string, row models.Recipe) (*types.Recipe, error) {
	recipe, err := row.ToDomain()
	if err != nil {
		return nil, &types.StorageError{Op: op, Err: err}
	}
	return &recipe, nil
}

// classify leaves not-found errors alone and turns everything else,
// including context cancellation, into a StorageError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var notFound *types.NotFoundError
	if errors.As(err, &notFound) {
		return notFound
	}
	return &types.StorageError{Op: op, Err: err}
}
