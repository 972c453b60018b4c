package main

import (
	"errors"
	"log"

	"bingocall/pkg/config"
	"bingocall/pkg/history"
)

// runMigrate creates the draw history schema and exits; used by `bingocall migrate`.
func runMigrate(cfg *config.Config) error {
	if cfg.Database.DSN == "" {
		return errors.New("DB_DSN is not set; nothing to migrate")
	}
	r, err := history.Open(cfg.Database.DSN, false)
	if err != nil {
		return err
	}
	if err := r.Migrate(); err != nil {
		return err
	}
	if sqlDB, err := r.DB().DB(); err == nil {
		_ = sqlDB.Close()
	}
	log.Printf("draws table ready")
	return nil
}
