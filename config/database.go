// stm-dashboard/config/database.go
package config

import (
	"log/slog"
	"os"

	"github.com/riajulpro/stm-dashboard/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB() {
	dsn := os.Getenv("DB_URL")
	if dsn == "" {
		slog.Error("DB_URL environment variable is not set")
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		slog.Error("Failed to connect to the database", "error", err)
		os.Exit(1)
	}

	if err := db.AutoMigrate(
		&models.Teacher{},
		&models.Batch{},
		&models.Student{},
		&models.Course{},
		&models.CourseSubscription{},
		&models.Attendance{},
		&models.Routine{},
		&models.Result{},
		&models.Feedback{},
	); err != nil {
		slog.Error("Database migration failed", "error", err)
		os.Exit(1)
	}

	DB = db
	slog.Info("Connected to the database")
}
