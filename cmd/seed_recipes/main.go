package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/pageza/gecko-recipes/backend/config"
	"github.com/pageza/gecko-recipes/backend/internal/database"
	"github.com/pageza/gecko-recipes/backend/internal/logging"
	"github.com/pageza/gecko-recipes/backend/internal/repository"
	"github.com/pageza/gecko-recipes/backend/internal/service"
	"github.com/pageza/gecko-recipes/backend/internal/types"
)

const name = "recipes-seed"

// overridden during build with ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := &cli.Command{
		Name:    name,
		Version: version,
		Usage:   "Insert sample recipes into the configured database",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "force",
				Usage: "Seed even when recipes already exist",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return seed(ctx, cmd.Bool("force"))
		},
	}
	if err := cmd.Run(ctx, os.Args); err != nil {
		slog.Error("seeding failed", "error", err)
		os.Exit(1)
	}
}

func seed(ctx context.Context, force bool) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	log := logging.SetDefault(name, version, cfg.LogLevel)

	db, err := database.New(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = database.Close(db) }()

	if err := database.RunMigrations(ctx, db, log); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	svc := service.NewRecipeService(repository.NewRecipeRepo(db, cfg.DBStatementTimeout), log)

	existing, err := svc.ListRecipes(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 && !force {
		log.Info("recipes already present, skipping seed", "count", len(existing))
		return nil
	}

	for _, draft := range sampleRecipes() {
		recipe, err := svc.CreateRecipe(ctx, draft)
		if err != nil {
			return fmt.Errorf("failed to seed %q: %w", draft.Name, err)
		}
		fmt.Printf("Seeded recipe %d: %s\n", recipe.ID, recipe.Name)
	}
	return nil
}

func ptr[T any](v T) *T { return &v }

func sampleRecipes() []types.RecipeDraft {
	return []types.RecipeDraft{
		{
			Name:        "Pancakes",
			Description: ptr("Thin pancakes for a slow weekend morning"),
			CookingTime: ptr(20 * time.Minute),
			MealType:    types.Breakfast,
			Ingredients: []types.IngredientDraft{
				{Name: "Flour", Quantity: 200, QuantityType: types.Gram},
				{Name: "Milk", Quantity: 300, QuantityType: types.Milliliter},
				{Name: "Egg", Quantity: 2, QuantityType: types.Count},
			},
		},
		{
			Name:        "Tomato soup",
			CookingTime: ptr(45 * time.Minute),
			MealType:    types.Lunch,
			Ingredients: []types.IngredientDraft{
				{Name: "Tomatoes", Quantity: 1, QuantityType: types.Kilo},
				{Name: "Vegetable stock", Quantity: 0.5, QuantityType: types.Liter},
				{Name: "Onion", Quantity: 1, QuantityType: types.Count},
			},
		},
		{
			Name:        "Risotto",
			Description: ptr("Mushroom risotto"),
			CookingTime: ptr(35 * time.Minute),
			MealType:    types.Dinner,
			Ingredients: []types.IngredientDraft{
				{Name: "Arborio rice", Quantity: 320, QuantityType: types.Gram},
				{Name: "Mushrooms", Quantity: 250, QuantityType: types.Gram},
				{Name: "Stock", Quantity: 1, QuantityType: types.Liter},
				{Name: "White wine", Quantity: 100, QuantityType: types.Milliliter},
			},
		},
	}
}
