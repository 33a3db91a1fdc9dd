package database

import (
	"fmt"
	"log"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/umarijaz5156/jobpilot-sub000/models"
)

type DB struct {
	*gorm.DB
}

func InitDB(path string) (*DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Reduce log noise
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %v", err)
	}

	err = db.AutoMigrate(
		&models.Job{},
		&models.JobRevision{},
		&models.Company{},
		&models.User{},
		&models.Media{},
		&models.Category{},
		&models.JobRole{},
		&models.Tag{},
		&models.Skill{},
		&models.Benefit{},
		&models.Education{},
		&models.Experience{},
		&models.JobType{},
		&models.State{},
		&models.City{},
		&models.Bookmark{},
		&models.Application{},
		&models.Setting{},
		&models.ImportBatch{},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to auto migrate: %v", err)
	}

	wrapped := &DB{db}
	if err := wrapped.seedDefaults(); err != nil {
		return nil, err
	}

	log.Println("Database initialized and migrated successfully")
	return wrapped, nil
}

func (db *DB) seedDefaults() error {
	defaultStates := []string{
		"ACT (Australian Capital Territory)",
		"NSW (New South Wales)",
		"NT (Northern Territory)",
		"QLD (Queensland)",
		"SA (South Australia)",
		"TAS (Tasmania)",
		"VIC (Victoria)",
		"WA (Western Australia)",
	}
	for _, name := range defaultStates {
		state := models.State{Name: name}
		if err := db.FirstOrCreate(&state, models.State{Name: name}).Error; err != nil {
			log.Printf("Error seeding state %s: %v", name, err)
		}
	}

	// Settings is a single row; make sure it exists so token refreshes
	// always have something to update.
	setting := models.Setting{ID: 1}
	if err := db.FirstOrCreate(&setting, models.Setting{ID: 1}).Error; err != nil {
		return fmt.Errorf("failed to seed settings row: %v", err)
	}
	return nil
}

// Close releases the connection pool. No error return on purpose: a
// Close() error method would make DB satisfy io.Closer, and fasthttp
// closes any io.Closer left in request storage when a request context
// is recycled, which would tear down the shared pool after the first
// request that stored the DB in Locals.
func (db *DB) Close() {
	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Printf("Error closing database: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Error closing database: %v", err)
	}
}
