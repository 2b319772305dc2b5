package main

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/iliyamo/song-sponsorship/internal/config"
	"github.com/iliyamo/song-sponsorship/internal/database"
)

// openStore opens and migrates the catalog store for the maintenance
// commands.
func openStore() (*gorm.DB, config.Config, error) {
	cfg, err := config.LoadStore()
	if err != nil {
		return nil, config.Config{}, fmt.Errorf("config: %w", err)
	}
	db, err := database.OpenGorm(cfg)
	if err != nil {
		return nil, cfg, err
	}
	if err := database.Migrate(db); err != nil {
		_ = database.Close(db)
		return nil, cfg, fmt.Errorf("migrate: %w", err)
	}
	return db, cfg, nil
}
