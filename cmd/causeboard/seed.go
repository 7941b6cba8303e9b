package main

import (
	"context"
	"fmt"

	"causeboard/internal/db"
	"causeboard/internal/seed"
	"causeboard/internal/store"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var seedCommand = &cli.Command{
	Name:  "seed",
	Usage: "Seed the database with the built-in categories",
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		ctx := context.Background()

		pool, err := db.Connect(ctx, cfg)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer pool.Close()

		logrus.Info("Connected to database")

		categoryRepo := store.NewCategoryRepository(pool)
		fieldRepo := store.NewFieldRepository(pool)

		logrus.Info("Seeding categories...")
		if err := seed.SeedCategories(ctx, categoryRepo, fieldRepo); err != nil {
			return fmt.Errorf("failed to seed categories: %w", err)
		}

		logrus.Info("Categories seeded successfully")

		return nil
	},
}
