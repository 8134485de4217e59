package db

import (
	"context"
	"errors"
	"time"

	"database/sql"

	com "github.com/itemtrace/indexer/internal/common"
	"github.com/itemtrace/indexer/pkg/indexer"
)

var (
	// ErrContractMismatch means the settings row was initialized for a
	// different contract than the one the indexer is configured for
	ErrContractMismatch = errors.New("persisted contract address does not match the configured contract address")
)

type SettingsDB struct {
	db  *sql.DB
	rdb *sql.DB
}

// NewSettingsDB creates a new DB
func NewSettingsDB(db, rdb *sql.DB) (*SettingsDB, error) {
	sdb := &SettingsDB{
		db:  db,
		rdb: rdb,
	}

	return sdb, nil
}

// CreateSettingsTable creates the singleton settings table in the given db
func (db *SettingsDB) CreateSettingsTable() error {
	_, err := db.db.Exec(`
	CREATE TABLE IF NOT EXISTS t_settings(
		singleton integer NOT NULL PRIMARY KEY,
		contract text NOT NULL,
		start_block bigint NOT NULL,
		last_block bigint NOT NULL,
		last_tx_hash text NOT NULL,
		last_event_index bigint NOT NULL,
		created_at timestamp NOT NULL,
		updated_at timestamp NOT NULL
	);
	`)

	return err
}

// InitSettings creates the settings row if it is absent. A second run is a
// no-op, an existing row is never overwritten.
func (db *SettingsDB) InitSettings(contract string, startBlock int64) error {
	t := time.Now().UTC()

	_, err := db.db.Exec(`
	INSERT INTO t_settings (singleton, contract, start_block, last_block, last_tx_hash, last_event_index, created_at, updated_at)
	VALUES (1, $1, $2, $3, '', -1, $4, $5)
	ON CONFLICT(singleton) DO NOTHING
	`, contract, startBlock, startBlock, t, t)

	return err
}

// GetSettings gets the settings row from the db
func (db *SettingsDB) GetSettings() (*indexer.Settings, error) {
	var settings indexer.Settings
	err := db.rdb.QueryRow(`
	SELECT contract, start_block, last_block, last_tx_hash, last_event_index, created_at, updated_at
	FROM t_settings
	WHERE singleton = 1
	`).Scan(&settings.Contract, &settings.StartBlock, &settings.LastBlock, &settings.LastTxHash, &settings.LastEventIndex, &settings.CreatedAt, &settings.UpdatedAt)
	if err != nil {
		return nil, err
	}

	return &settings, nil
}

// GetCheckedSettings gets the settings row and verifies it belongs to the
// given contract, returning ErrContractMismatch otherwise
func (db *SettingsDB) GetCheckedSettings(contract string) (*indexer.Settings, error) {
	settings, err := db.GetSettings()
	if err != nil {
		return nil, err
	}

	if !com.IsSameHexAddress(settings.Contract, contract) {
		return nil, ErrContractMismatch
	}

	return settings, nil
}

// AdvanceCheckpointTx moves the checkpoint forward within the caller's
// transaction. The guard keeps (last_block, last_event_index) from ever
// moving backwards when the stream re-delivers old events after a restart.
func (db *SettingsDB) AdvanceCheckpointTx(ctx context.Context, tx *sql.Tx, key indexer.EventKey) error {
	_, err := tx.ExecContext(ctx, `
	UPDATE t_settings
	SET last_block = $1, last_tx_hash = $2, last_event_index = $3, updated_at = $4
	WHERE singleton = 1
		AND (last_block < $5 OR (last_block = $6 AND last_event_index <= $7))
	`, key.BlockHeight, key.TxHash, key.EventIndex, time.Now().UTC(), key.BlockHeight, key.BlockHeight, key.EventIndex)

	return err
}
