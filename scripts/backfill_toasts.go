// Manual trigger for the weekly toast run.
//
// The same job runs inside the main application on a cron schedule. This
// script exists for backfills: first deployment over existing note data, or
// re-running a week after a generation outage. Generation is idempotent per
// (user, week), so running it repeatedly is safe.
//
// Usage: go run scripts/backfill_toasts.go

package main

import (
	"context"
	"log"
	"toast_backend/internal/config"
	"toast_backend/internal/repository"
	"toast_backend/internal/service"
	"toast_backend/pkg/database"
	"toast_backend/pkg/logger"
)

func main() {
	// Same loader as the server: underscore keys (ai.base_url, jwt.expire_hours)
	// only bind through the mapstructure tags, and the loader normalizes the
	// duration fields.
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	logger.InitLogger(cfg)

	db, err := database.InitDB(&cfg.Database, false)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}

	users := repository.NewUserRepository(db)
	notes := repository.NewNoteRepository(db)
	toasts := repository.NewToastRepository(db)
	badges := repository.NewBadgeRepository(db)
	activities := repository.NewActivityRepository(db)
	stats := repository.NewStatsRepository(db)

	storage := service.NewStorageService(cfg)
	generation := service.NewGenerationService(cfg.AI)
	speech := service.NewSpeechService(cfg.Speech)

	// No hub here; awards and toasts land in the database and users see them
	// on their next poll.
	badgeService := service.NewBadgeService(badges, badges, badges, stats, users, nil)
	toastService := service.NewToastService(
		notes, toasts, users, activities,
		generation, speech, storage,
		badgeService, nil,
		cfg.Toast.GenerationTimeout, cfg.AI.Model,
	)

	active, err := users.ListActive()
	if err != nil {
		log.Fatalf("listing users failed: %v", err)
	}

	log.Printf("running weekly toast generation for %d users...", len(active))
	toastService.GenerateForAllUsers(context.Background(), active)
	log.Println("done")
}
