package db

import (
	"context"
	"fmt"
	"time"

	"database/sql"

	"github.com/itemtrace/indexer/internal/storage"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

const (
	dbBaseFolder   = "data"
	dbConfigString = "cache=private&_journal=WAL&mode=rwc&_txlock=immediate&_busy_timeout=10000"

	acquireTimeout = 10 * time.Second
)

type DB struct {
	db  *sql.DB
	rdb *sql.DB

	SettingsDB *SettingsDB
	ItemDB     *ItemDB
}

// NewDB instantiates a sqlite backed DB for local mode
func NewDB(basePath string) (*DB, error) {
	folderPath := fmt.Sprintf("%s/%s", basePath, dbBaseFolder)
	path := fmt.Sprintf("%s/tracker.db", folderPath)

	// check if directory exists
	if !storage.Exists(folderPath) {
		err := storage.CreateDir(folderPath)
		if err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", path, dbConfigString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(1)

	// separate read handle, the indexing loop holds the single write
	// connection for its whole lifetime and must not starve the query side
	rdb, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?%s", path, dbConfigString))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = rdb.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newDB(db, rdb)
}

// NewPostgresDB instantiates a postgres backed DB, rhost points at a read
// replica used by the query handlers
func NewPostgresDB(username, password, name, host, rhost string) (*DB, error) {
	connStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=5432 sslmode=disable", username, password, name, host)
	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = db.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	rconnStr := fmt.Sprintf("user=%s password=%s dbname=%s host=%s port=5432 sslmode=disable", username, password, name, rhost)
	rdb, err := sql.Open("postgres", rconnStr)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	err = rdb.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newDB(db, rdb)
}

func newDB(db, rdb *sql.DB) (*DB, error) {
	settingsDB, err := NewSettingsDB(db, rdb)
	if err != nil {
		return nil, err
	}

	itemDB, err := NewItemDB(db, rdb)
	if err != nil {
		return nil, err
	}

	d := &DB{
		db:         db,
		rdb:        rdb,
		SettingsDB: settingsDB,
		ItemDB:     itemDB,
	}

	// create tables
	err = settingsDB.CreateSettingsTable()
	if err != nil {
		return nil, err
	}

	err = itemDB.CreateItemTables()
	if err != nil {
		return nil, err
	}

	// create indexes
	err = itemDB.CreateItemTableIndexes()
	if err != nil {
		return nil, err
	}

	return d, nil
}

// Acquire checks a fresh connection out of the pool. The indexing loop holds
// exactly one of these at a time and discards it on a failed statement.
// An error here means the pool itself is unreachable.
func (d *DB) Acquire(ctx context.Context) (*sql.Conn, error) {
	actx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()

	conn, err := d.db.Conn(actx)
	if err != nil {
		return nil, fmt.Errorf("failed to acquire connection from pool: %w", err)
	}

	err = conn.PingContext(actx)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping acquired connection: %w", err)
	}

	return conn, nil
}

// Close closes the db and all its sub dbs
func (d *DB) Close() error {
	if d.rdb != d.db {
		err := d.rdb.Close()
		if err != nil {
			return err
		}
	}

	return d.db.Close()
}
