package database

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/yeremiapane/restaurant-booking/config"
	"github.com/yeremiapane/restaurant-booking/models"
	"github.com/yeremiapane/restaurant-booking/utils"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Opener returns the OpenFunc used by the production gateway: connect,
// migrate, seed the menu and bootstrap the admin account.
func Opener(cfg *config.Config) OpenFunc {
	return func(ctx context.Context) (*gorm.DB, error) {
		db, err := Connect(cfg.DBDriver, cfg.DBDSN)
		if err != nil {
			return nil, err
		}
		db = db.WithContext(ctx)

		if err := AutoMigrate(db); err != nil {
			return nil, err
		}
		if err := SeedMenu(db, cfg.MenuSeedFile); err != nil {
			return nil, err
		}
		if cfg.AdminEmail != "" {
			if err := EnsureAdmin(db, cfg.AdminName, cfg.AdminEmail, cfg.AdminPassword); err != nil {
				return nil, err
			}
		}

		utils.InfoLogger.Printf("Database ready (driver=%s)", cfg.DBDriver)
		return db.WithContext(context.Background()), nil
	}
}

func Connect(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case config.DriverMySQL:
		dialector = mysql.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Warn),
		TranslateError: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.User{},
		&models.MenuItem{},
		&models.Booking{},
		&models.Order{},
	)
	if err != nil {
		return fmt.Errorf("failed to AutoMigrate: %w", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
	return nil
}

// MemoryDSN returns a DSN for a private shared-cache in-memory sqlite
// database.
func MemoryDSN() string {
	return fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
}

// OpenMemory opens a migrated in-memory sqlite database with a single
// connection. It backs tests and local demos.
func OpenMemory() (*gorm.DB, error) {
	db, err := Connect(config.DriverSQLite, MemoryDSN())
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	return db, nil
}
