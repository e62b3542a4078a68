package database

import (
	"log"
	"os"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// InitDB initializes the database connection and migrates the schema.
// Postgres is used when DATABASE_URL is set; otherwise sqlite with WAL
// journaling and a 30s lock-wait budget.
func InitDB() *gorm.DB {
	var db *gorm.DB
	var err error

	dsn := os.Getenv("DATABASE_URL")
	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		dbPath := os.Getenv("DATA_PATH")
		if dbPath == "" {
			dbPath = "shavzak.db"
		}
		db, err = gorm.Open(sqlite.Open(dbPath+"?_journal_mode=WAL&_busy_timeout=30000"), &gorm.Config{})
	}

	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}

	// Auto Migration
	db.AutoMigrate(
		&User{},
		&JoinRequest{},
		&PlatoonRecord{},
		&SquadRecord{},
		&PersonRecord{},
		&UnavailabilityRecord{},
		&TemplateRecord{},
		&RosterRecord{},
		&InstanceRecord{},
		&FeedbackRecord{},
	)

	return db
}
