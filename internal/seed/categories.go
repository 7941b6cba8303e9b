package seed

import (
	"context"
	"fmt"

	"causeboard/internal/store"
	"causeboard/internal/utils"
	"causeboard/pkg/types"
)

// SeedCategories syncs the database with the category definitions below.
// This file is the source of truth for the built-in set:
// - Inserts new categories that don't exist
// - Updates existing categories that have changed
// - Leaves admin-created dynamic categories alone
//
// To generate new IDs: `go run ./cmd/causeboard nanoid`
func SeedCategories(ctx context.Context, categories *store.CategoryRepository, fields *store.FieldRepository) error {
	builtins := []types.Category{
		{
			ID:           "b0FoodCat000000000000000000000001",
			Name:         types.CategoryFood,
			DisplayName:  "Food",
			Description:  utils.StringPtr("Groceries, meals, and nutrition support"),
			Icon:         utils.StringPtr("utensils"),
			Color:        utils.StringPtr("#E8590C"),
			Kind:         types.CategoryKindBuiltin,
			IsActive:     true,
			DisplayOrder: 1,
		},
		{
			ID:           "b0ClothesCat00000000000000000002",
			Name:         types.CategoryClothes,
			DisplayName:  "Clothes",
			Description:  utils.StringPtr("Clothing and footwear in wearable condition"),
			Icon:         utils.StringPtr("shirt"),
			Color:        utils.StringPtr("#1971C2"),
			Kind:         types.CategoryKindBuiltin,
			IsActive:     true,
			DisplayOrder: 2,
		},
		{
			ID:           "b0EducationCat000000000000000003",
			Name:         types.CategoryEducation,
			DisplayName:  "Education",
			Description:  utils.StringPtr("Tutoring, courses, school supplies, and training"),
			Icon:         utils.StringPtr("book"),
			Color:        utils.StringPtr("#2F9E44"),
			Kind:         types.CategoryKindBuiltin,
			IsActive:     true,
			DisplayOrder: 3,
		},
	}

	fmt.Println("Starting category sync...")
	fmt.Printf("  Seed file contains %d built-in categories\n", len(builtins))

	for _, cat := range builtins {
		fmt.Printf("  Upserting category: %s (name: %s)\n", cat.DisplayName, cat.Name)
		if err := categories.UpsertCategory(ctx, &cat); err != nil {
			return fmt.Errorf("failed to upsert category %s: %w", cat.Name, err)
		}
	}

	if err := seedSampleDynamicCategory(ctx, categories, fields); err != nil {
		return err
	}

	fmt.Println("\nSync complete")
	return nil
}

// seedSampleDynamicCategory installs one admin-style category with a
// field schema, handy for local development and demos.
func seedSampleDynamicCategory(ctx context.Context, categories *store.CategoryRepository, fields *store.FieldRepository) error {
	category := types.Category{
		ID:           "d0BicyclesCat0000000000000000001",
		Name:         "bicycles",
		DisplayName:  "Bicycles",
		Description:  utils.StringPtr("Bikes for commuting, school runs, and deliveries"),
		Icon:         utils.StringPtr("bike"),
		Color:        utils.StringPtr("#862E9C"),
		Kind:         types.CategoryKindDynamic,
		IsActive:     true,
		DisplayOrder: 10,
	}

	fmt.Printf("  Upserting sample dynamic category: %s\n", category.Name)
	if err := categories.UpsertCategory(ctx, &category); err != nil {
		return fmt.Errorf("failed to upsert category %s: %w", category.Name, err)
	}

	schema := []types.CategoryField{
		{
			ID:           "d0BicyclesFld0000000000000000001",
			CategoryID:   category.ID,
			Name:         "frame_size",
			Label:        "Frame size",
			Type:         types.FieldTypeSelect,
			Required:     true,
			Options:      []string{"S", "M", "L", "XL"},
			DisplayOrder: 1,
		},
		{
			ID:           "d0BicyclesFld0000000000000000002",
			CategoryID:   category.ID,
			Name:         "gears",
			Label:        "Number of gears",
			Type:         types.FieldTypeNumber,
			DisplayOrder: 2,
		},
		{
			ID:           "d0BicyclesFld0000000000000000003",
			CategoryID:   category.ID,
			Name:         "needs_repair",
			Label:        "Needs repair",
			Type:         types.FieldTypeCheckbox,
			DisplayOrder: 3,
		},
	}

	for _, field := range schema {
		fmt.Printf("  Upserting field: %s.%s\n", category.Name, field.Name)
		if err := fields.UpsertField(ctx, &field); err != nil {
			return fmt.Errorf("failed to upsert field %s: %w", field.Name, err)
		}
	}

	return nil
}
