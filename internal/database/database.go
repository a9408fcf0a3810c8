package database

import (
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// sqliteParams enforce foreign keys and make every transaction take the
// write lock at BEGIN, so concurrent writers queue on the busy timeout
// instead of failing to upgrade a read lock.
var sqliteParams = []string{
	"_foreign_keys=on",
	"_txlock=immediate",
	"_busy_timeout=5000",
}

// SQLiteDSN turns a file path or a "file:" URI into a DSN
// carrying sqliteParams.
func SQLiteDSN(path string) string {
	if !strings.HasPrefix(path, "file:") {
		path = "file:" + path
	}

	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + strings.Join(sqliteParams, "&")
}

func OpenSQLite(dsn string, logger gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	return db, nil
}

// OpenPostgres wraps an already connected pgx pool.
// Closing the returned gorm DB does not close the pool.
func OpenPostgres(pool *pgxpool.Pool, logger gormlogger.Interface) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn: stdlib.OpenDBFromPool(pool),
	}), &gorm.Config{
		Logger: logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	return db, nil
}
