// internal/db/db.go
package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/mattn/go-sqlite3"

	"github.com/codr1/Runway/internal/config"
	dbgen "github.com/codr1/Runway/internal/db/generated"
)

type DB struct {
	*sql.DB
	Queries *dbgen.Queries
}

// New opens the SQLite database at dataSourceName with foreign keys enforced,
// applies the embedded migrations and binds the generated queries.
func New(dataSourceName string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite3", ensureForeignKeysEnabledDSN(dataSourceName))
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}
	// One writer keeps SQLite from returning SQLITE_BUSY under concurrent handlers.
	sqlDB.SetMaxOpenConns(1)

	if err := migrateUp(sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("error running migrations: %w", err)
	}

	return &DB{
		DB:      sqlDB,
		Queries: dbgen.New(sqlDB),
	}, nil
}

// NewFromConfig creates the database directory when needed and opens the
// configured database.
func NewFromConfig(cfg *config.Config) (*DB, error) {
	switch cfg.Database.Driver {
	case "sqlite":
		if err := os.MkdirAll(filepath.Dir(cfg.Database.Filename), 0755); err != nil {
			return nil, fmt.Errorf("error creating database directory: %w", err)
		}
		return New(cfg.Database.Filename)
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", cfg.Database.Driver)
	}
}

// ensureForeignKeysEnabledDSN appends `_fk=1` unless the DSN already sets it.
// Season deletes rely on ON DELETE CASCADE / SET NULL being enforced.
func ensureForeignKeysEnabledDSN(dataSourceName string) string {
	if strings.Contains(dataSourceName, "_fk=") {
		return dataSourceName
	}
	if strings.Contains(dataSourceName, "?") {
		return dataSourceName + "&_fk=1"
	}
	return dataSourceName + "?_fk=1"
}

// WithTx returns a DB whose queries run inside tx.
func (db *DB) WithTx(tx *sql.Tx) *DB {
	return &DB{DB: db.DB, Queries: db.Queries.WithTx(tx)}
}

// RunInTx runs fn in one transaction. fn's error or panic rolls it back;
// otherwise it commits.
func (db *DB) RunInTx(ctx context.Context, fn func(*DB) error) (err error) {
	tx, err := db.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	committed := false
	defer func() {
		if committed {
			return
		}
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			err = fmt.Errorf("rollback: %v (original error: %w)", rbErr, err)
		}
	}()

	if err = fn(db.WithTx(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	committed = true
	return nil
}
