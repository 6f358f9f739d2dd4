package database

import (
	"fmt"
	"log"
	"toast_backend/internal/config"
	"toast_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB opens the MySQL connection and, when migrate is set, runs
// AutoMigrate and seeds the badge catalog. Release deployments pass
// migrate=false and run schema changes explicitly via the -migrate flags.
func InitDB(cfg *config.DatabaseConfig, migrate bool) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=UTC",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
		// Duplicate-key inserts must surface as gorm.ErrDuplicatedKey: the
		// badge evaluator and toast aggregator both rely on unique indexes
		// as their only concurrency guard.
		TranslateError: true,
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if !migrate {
		return db, nil
	}

	err = db.AutoMigrate(
		&model.User{},
		&model.Note{},
		&model.Toast{},
		&model.Badge{},
		&model.UserBadge{},
		&model.UserActivity{},
		&model.Friendship{},
		&model.FriendRequest{},
		&model.ToastShare{},
		&model.ToastReaction{},
		&model.ToastComment{},
		&model.Notification{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaultBadges(db)

	return db, nil
}

// seedDefaultBadges inserts the badge catalog on first boot. Admins can edit
// it later; thresholds within a category must stay distinct since evaluation
// order is (category, threshold asc).
func seedDefaultBadges(db *gorm.DB) {
	var count int64
	db.Model(&model.Badge{}).Count(&count)
	if count > 0 {
		return
	}

	defaults := []model.Badge{
		{Name: "First Words", Description: "Write your first reflection", Category: "notes", Requirement: "note_total", Threshold: 1, Enabled: true},
		{Name: "Regular", Description: "Write 25 reflections", Category: "notes", Requirement: "note_total", Threshold: 25, Enabled: true},
		{Name: "Chronicler", Description: "Write 100 reflections", Category: "notes", Requirement: "note_total", Threshold: 100, Enabled: true},
		{Name: "Warm Week", Description: "Reflect 7 days in a row", Category: "streak", Requirement: "note_streak", Threshold: 7, Enabled: true},
		{Name: "Double Digits", Description: "Reflect 10 days in a row", Category: "streak", Requirement: "note_streak", Threshold: 10, Enabled: true},
		{Name: "Month of You", Description: "Reflect 30 days in a row", Category: "streak", Requirement: "note_streak", Threshold: 30, Enabled: true},
		{Name: "First Toast", Description: "Receive your first weekly toast", Category: "toasts", Requirement: "toast_total", Threshold: 1, Enabled: true},
		{Name: "Toastmaster", Description: "Collect 10 weekly toasts", Category: "toasts", Requirement: "toast_total", Threshold: 10, Enabled: true},
		{Name: "Sharing Is Caring", Description: "Share a toast with a friend", Category: "social", Requirement: "share_total", Threshold: 1, Enabled: true},
		{Name: "Life of the Party", Description: "Share 10 toasts", Category: "social", Requirement: "share_total", Threshold: 10, Enabled: true},
		{Name: "Crowd Favorite", Description: "Receive 10 reactions", Category: "social", Requirement: "reaction_total", Threshold: 10, Enabled: true},
	}
	for _, b := range defaults {
		db.Create(&b)
	}
}
