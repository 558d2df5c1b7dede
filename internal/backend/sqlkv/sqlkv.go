// Package sqlkv implements repository.KeyValue on a SQL table, using sqlite
// (modernc.org/sqlite) or MySQL (github.com/go-sql-driver/mysql).
package sqlkv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// dialect holds the statements that differ between drivers.
type dialect struct {
	createTable string
	upsert      string
}

var dialects = map[string]dialect{
	DriverSQLite: {
		createTable: "CREATE TABLE IF NOT EXISTS kv (`key` TEXT PRIMARY KEY, value TEXT NOT NULL)",
		upsert:      "INSERT INTO kv (`key`, value) VALUES (?, ?) ON CONFLICT(`key`) DO UPDATE SET value = excluded.value",
	},
	DriverMySQL: {
		createTable: "CREATE TABLE IF NOT EXISTS kv (`key` VARCHAR(191) PRIMARY KEY, value LONGTEXT NOT NULL)",
		upsert:      "INSERT INTO kv (`key`, value) VALUES (?, ?) ON DUPLICATE KEY UPDATE value = VALUES(value)",
	},
}

const selectValue = "SELECT value FROM kv WHERE `key` = ?"

// Store is a SQL-backed key-value slot.
type Store struct {
	db      *sql.DB
	dialect dialect
}

// Open connects to the database and creates the kv table if needed.
func Open(ctx context.Context, driver, dsn string) (*Store, error) {
	d, ok := dialects[driver]
	if !ok {
		return nil, fmt.Errorf("unsupported sql driver: %s", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	if driver == DriverSQLite {
		// A single connection serializes writers on the database file.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}

	s := &Store{db: db, dialect: d}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, s.dialect.createTable); err != nil {
		return fmt.Errorf("create kv table: %w", err)
	}
	return nil
}

// Get implements repository.KeyValue.
func (s *Store) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value string
	err := s.db.QueryRowContext(ctx, selectValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return []byte(value), true, nil
}

// Set implements repository.KeyValue.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetMany(ctx, map[string][]byte{key: value})
}

// SetMany implements repository.KeyValue. The upserts share one
// transaction.
func (s *Store) SetMany(ctx context.Context, values map[string][]byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	for key, value := range values {
		if _, err := tx.ExecContext(ctx, s.dialect.upsert, key, string(value)); err != nil {
			return fmt.Errorf("upsert %s: %w", key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Close implements repository.KeyValue.
func (s *Store) Close() error {
	return s.db.Close()
}
