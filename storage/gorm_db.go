package storage

import (
	"database/sql"
	"log"

	"cotizador/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var gormDB *gorm.DB

// InitGormDB initializes GORM on top of the lib/pq connection opened by
// InitDB, so constraint failures keep surfacing as *pq.Error.
func InitGormDB(sqlDB *sql.DB) *gorm.DB {
	var err error
	gormDB, err = gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: false,
	})
	if err != nil {
		log.Fatal("Failed to connect to database with GORM:", err)
	}

	if err := AutoMigrate(gormDB); err != nil {
		log.Fatal("Failed to migrate schema:", err)
	}

	return gormDB
}

// GetGormDB returns the GORM database instance.
func GetGormDB() *gorm.DB {
	return gormDB
}

// AutoMigrate creates or updates the schema for every model.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Company{},
		&models.Client{},
		&models.Product{},
		&models.Quote{},
		&models.QuoteItem{},
		&models.EmailLog{},
		&models.Session{},
	)
}
