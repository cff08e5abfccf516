// Package repo implements the local persistence layer, backed by GORM over
// pure-Go SQLite. The engine does not own the budget ledger; it stores only
// idempotency records for allocation submits and tracking events for the
// dashboard's analytics relay.
//
// This file contains database bootstrapping helpers and schema migrations.
package repo

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
	"gorm.io/plugin/opentelemetry/tracing"

	"github.com/tbourn/go-budget-assign/internal/domain"
)

// pragmas are applied to every connection opened by OpenSQLite. WAL lets the
// tracking list read while an allocation writes its idempotency record.
var pragmas = []string{
	"PRAGMA journal_mode=WAL;",
	"PRAGMA synchronous=NORMAL;",
	"PRAGMA foreign_keys=ON;",
	"PRAGMA busy_timeout=5000;",
}

// OpenSQLite opens (or creates) the database at path, applies pragmas, tunes
// the pool and installs the OpenTelemetry GORM plugin. path may also be a
// "file:" URI or ":memory:", in which case no directory check is made.
func OpenSQLite(path string) (*gorm.DB, error) {
	if !strings.HasPrefix(path, "file:") && path != ":memory:" {
		if dir := filepath.Dir(path); dir != "." {
			// Fail early instead of the driver's opaque "out of memory (14)".
			if _, err := os.Stat(dir); err != nil {
				return nil, err
			}
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}
	if err := db.Use(tracing.NewPlugin(tracing.WithoutMetrics())); err != nil {
		return nil, err
	}
	for _, p := range pragmas {
		if err := db.Exec(p).Error; err != nil {
			return nil, fmt.Errorf("sqlite %s: %w", strings.TrimSuffix(p, ";"), err)
		}
	}

	if sqlDB, err := db.DB(); err == nil {
		sqlDB.SetMaxOpenConns(10)
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetConnMaxIdleTime(5 * time.Minute)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}
	return db, nil
}

// AutoMigrate creates or updates the local tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&domain.Idempotency{},
		&domain.TrackingEvent{},
	)
}
