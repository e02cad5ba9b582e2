package database

import (
	"fmt"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Database struct {
	DB *gorm.DB
}

func New(databaseURL string) (*Database, error) {
	var db *gorm.DB
	var err error

	if strings.HasPrefix(databaseURL, "sqlite://") {
		// SQLite for development
		dbPath := strings.TrimPrefix(databaseURL, "sqlite://")
		db, err = gorm.Open(sqlite.Open(dbPath), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	} else {
		// PostgreSQL for production
		db, err = gorm.Open(postgres.Open(databaseURL), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
	}

	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	createTablesSQL := `
	CREATE TABLE IF NOT EXISTS migration_records (
		id TEXT PRIMARY KEY,
		operator_id TEXT NOT NULL,
		from_store_id TEXT NOT NULL,
		to_store_id TEXT NOT NULL,
		entity_type TEXT NOT NULL,
		source_id TEXT NOT NULL,
		source_name TEXT,
		dest_id TEXT,
		status TEXT DEFAULT 'PENDING',
		error_message TEXT,
		created_at TIMESTAMP,
		updated_at TIMESTAMP
	);

	CREATE UNIQUE INDEX IF NOT EXISTS idx_migration_key
		ON migration_records (operator_id, from_store_id, entity_type, source_id);
	`

	err = db.Exec(createTablesSQL).Error
	if err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Database{DB: db}, nil
}

func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
