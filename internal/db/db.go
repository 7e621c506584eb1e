// Copyright (c) 2026 Keymaster Team
// Keymaster - SSH key management system
// This source code is licensed under the MIT license found in the LICENSE file.

// package db records snapshots of key files in a database so earlier states
// can be listed, inspected and restored. SQLite is the default backend;
// PostgreSQL and MySQL are selected by type.
package db // import "github.com/toeirei/authkeys/internal/db"

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/toeirei/authkeys/internal/logging"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/mysqldialect"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
)

// sqlOpenFunc allows tests to override database opening behavior.
var sqlOpenFunc = sql.Open

// Store is a snapshot store backed by bun.
type Store struct {
	bun    *bun.DB
	dbType string
	now    func() time.Time
	newID  func() string
}

// Open connects to the database of the given type ("sqlite", "postgres" or
// "mysql") and creates the snapshot tables if needed.
func Open(ctx context.Context, dbType, dsn string) (*Store, error) {
	driverName := dbType
	// The pgx stdlib registers driver name "pgx"; map "postgres" to that driver.
	switch dbType {
	case "sqlite", "mysql":
	case "postgres":
		driverName = "pgx"
	default:
		return nil, fmt.Errorf("unsupported database type: '%s'", dbType)
	}

	start := time.Now()
	sqlDB, err := sqlOpenFunc(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	maxOpen := envInt("AUTHKEYS_DB_MAX_OPEN_CONNS", 4)
	// An in-memory SQLite database exists per connection; keep exactly one.
	if dbType == "sqlite" && dsn == ":memory:" {
		maxOpen = 1
	}
	sqlDB.SetMaxOpenConns(maxOpen)
	sqlDB.SetMaxIdleConns(maxOpen)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)

	s := &Store{
		bun:    createBunDB(sqlDB, dbType),
		dbType: dbType,
		now:    time.Now,
		newID:  uuid.NewString,
	}
	if err := s.createSchema(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	logging.Debugf("db: opened %s store in %s (max open conns=%d)", dbType, time.Since(start), maxOpen)
	return s, nil
}

func createBunDB(sqlDB *sql.DB, dbType string) *bun.DB {
	switch dbType {
	case "postgres":
		return bun.NewDB(sqlDB, pgdialect.New())
	case "mysql":
		return bun.NewDB(sqlDB, mysqldialect.New())
	default:
		return bun.NewDB(sqlDB, sqlitedialect.New())
	}
}

func envInt(name string, def int) int {
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

func (s *Store) createSchema(ctx context.Context) error {
	models := []interface{}{(*SnapshotModel)(nil), (*SnapshotKeyModel)(nil)}
	for _, m := range models {
		if _, err := s.bun.NewCreateTable().Model(m).IfNotExists().Exec(ctx); err != nil {
			return err
		}
	}
	_, err := s.bun.NewCreateIndex().
		Model((*SnapshotKeyModel)(nil)).
		Index("idx_snapshot_keys_snapshot").
		IfNotExists().
		Column("snapshot_id").
		Exec(ctx)
	// MySQL has no CREATE INDEX IF NOT EXISTS; a duplicate index is fine.
	if err != nil && s.dbType == "mysql" && MapDBError(err) == ErrDuplicate {
		return nil
	}
	return err
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.bun.Close()
}
