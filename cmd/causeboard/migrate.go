package main

import (
	"fmt"

	"causeboard/internal/db"
	"causeboard/migrations"

	"github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

var migrateCommand = &cli.Command{
	Name:  "migrate",
	Usage: "Apply pending database migrations",
	Flags: []cli.Flag{
		&cli.BoolFlag{
			Name:  "status",
			Usage: "Print the migration ledger instead of applying",
		},
	},
	Action: func(c *cli.Context) error {
		cfg, err := loadConfig()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		handle, err := db.ConnectStd(cfg)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer handle.Close()

		if c.Bool("status") {
			return migrations.Status(handle)
		}

		if err := migrations.Up(handle); err != nil {
			return err
		}

		logrus.Info("migrations applied")
		return nil
	},
}
