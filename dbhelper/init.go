package dbhelper

import (
	"fmt"
	"os"
	"time"

	"wewearapi/config"
	"wewearapi/models"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open connects with the given driver ("postgres" or "sqlite").
// For sqlite the dsn is a file path or "file::memory:?cache=shared".
func Open(driver, dsn string, logLevel gormlogger.LogLevel) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres":
		dialector = postgres.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported db driver %q", driver)
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// a single writer keeps sqlite transactions from hitting SQLITE_BUSY
		sqlDB.SetMaxOpenConns(1)
		db.Exec("PRAGMA foreign_keys = ON")
	} else {
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(300)
		sqlDB.SetConnMaxLifetime(time.Minute * 5)
	}
	return db, nil
}

func MigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.UserAccount{},
		&models.UserPushToken{},
		&models.ClothingItem{},
		&models.Outfit{},
		&models.OutfitItem{},
		&models.Notification{},
		&models.Trip{},
		&models.PackingList{},
		&models.PackingListItem{},
	)
}

func dsnFor(driver string) string {
	if driver == "sqlite" {
		return config.GetEnv("SQLITE_PATH", "wewear.db")
	}
	return config.PostgresDSN()
}

// Connect opens the configured database without migrating it.
func Connect() (*gorm.DB, error) {
	cfg := config.Load()
	return Open(cfg.DBDriver, dsnFor(cfg.DBDriver), gormlogger.Warn)
}

func SetupDB() *gorm.DB {
	db, err := Connect()
	if err != nil {
		panic(err)
	}
	if err := MigrateAll(db); err != nil {
		panic(err)
	}
	return db
}

// SetupTestDB uses an in-memory sqlite database unless TEST_DB_DRIVER=postgres.
func SetupTestDB() *gorm.DB {
	os.Setenv("JWT_SECRET", config.GetEnv("JWT_SECRET", "test-secret"))
	driver := config.GetEnv("TEST_DB_DRIVER", "sqlite")
	dsn := "file::memory:?cache=shared"
	if driver == "postgres" {
		os.Setenv("DB_USERNAME", config.GetEnv("DB_USERNAME", "wewear"))
		os.Setenv("DB_PASSWORD", config.GetEnv("DB_PASSWORD", "wewear"))
		os.Setenv("DB_HOST", config.GetEnv("DB_HOST", "localhost"))
		os.Setenv("DB_NAME", config.GetEnv("DB_NAME", "wewear_test"))
		os.Setenv("DB_PORT", config.GetEnv("DB_PORT", "5432"))
		dsn = config.PostgresDSN()
	}
	db, err := Open(driver, dsn, gormlogger.Silent)
	if err != nil {
		panic(err)
	}
	if err := MigrateAll(db); err != nil {
		panic(err)
	}
	return db
}
