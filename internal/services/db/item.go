package db

import (
	"context"
	"time"

	"database/sql"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/itemtrace/indexer/pkg/indexer"
)

type ItemDB struct {
	db  *sql.DB
	rdb *sql.DB
}

// NewItemDB creates a new DB
func NewItemDB(db, rdb *sql.DB) (*ItemDB, error) {
	idb := &ItemDB{
		db:  db,
		rdb: rdb,
	}

	return idb, nil
}

// CreateItemTables creates one append-only table per event variant. Rows are
// keyed by (block_height, tx_hash, event_index) and never updated or deleted.
func (db *ItemDB) CreateItemTables() error {
	_, err := db.db.Exec(`
	CREATE TABLE IF NOT EXISTS t_item_creations(
		block_height bigint NOT NULL,
		tx_hash text NOT NULL,
		event_index bigint NOT NULL,
		item_id bigint NOT NULL,
		metadata text NOT NULL,
		created_at timestamp NOT NULL,
		UNIQUE (block_height, tx_hash, event_index)
	);
	`)
	if err != nil {
		return err
	}

	_, err = db.db.Exec(`
	CREATE TABLE IF NOT EXISTS t_item_status_changes(
		block_height bigint NOT NULL,
		tx_hash text NOT NULL,
		event_index bigint NOT NULL,
		item_id bigint NOT NULL,
		new_status text NOT NULL,
		additional_data text NOT NULL,
		created_at timestamp NOT NULL,
		UNIQUE (block_height, tx_hash, event_index)
	);
	`)

	return err
}

// CreateItemTableIndexes creates the indexes for the item tables in the given db
func (db *ItemDB) CreateItemTableIndexes() error {
	_, err := db.db.Exec(`
	CREATE INDEX IF NOT EXISTS idx_item_creations_item_id ON t_item_creations (item_id);
	`)
	if err != nil {
		return err
	}

	_, err = db.db.Exec(`
	CREATE INDEX IF NOT EXISTS idx_item_status_changes_item_id ON t_item_status_changes (item_id, block_height, event_index);
	`)

	return err
}

// InsertItemCreatedTx inserts an item creation row within the caller's
// transaction. Returns false without error when the row already exists.
func (db *ItemDB) InsertItemCreatedTx(ctx context.Context, tx *sql.Tx, key indexer.EventKey, ev *indexer.ItemCreated) (bool, error) {
	res, err := tx.ExecContext(ctx, `
	INSERT INTO t_item_creations (block_height, tx_hash, event_index, item_id, metadata, created_at)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (block_height, tx_hash, event_index) DO NOTHING
	`, key.BlockHeight, key.TxHash, key.EventIndex, ev.ItemID, ev.Metadata, time.Now().UTC())
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// InsertItemStatusChangedTx inserts a status change row within the caller's
// transaction. Returns false without error when the row already exists.
func (db *ItemDB) InsertItemStatusChangedTx(ctx context.Context, tx *sql.Tx, key indexer.EventKey, ev *indexer.ItemStatusChanged) (bool, error) {
	res, err := tx.ExecContext(ctx, `
	INSERT INTO t_item_status_changes (block_height, tx_hash, event_index, item_id, new_status, additional_data, created_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)
	ON CONFLICT (block_height, tx_hash, event_index) DO NOTHING
	`, key.BlockHeight, key.TxHash, key.EventIndex, ev.ItemID, ev.NewStatus, hexutil.Encode(ev.AdditionalData), time.Now().UTC())
	if err != nil {
		return false, err
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

// GetPaginatedItems gets the most recently created items from the db
func (db *ItemDB) GetPaginatedItems(limit, offset int) ([]*indexer.ItemCreationRow, error) {
	rows, err := db.rdb.Query(`
	SELECT block_height, tx_hash, event_index, item_id, metadata, created_at
	FROM t_item_creations
	ORDER BY block_height DESC, event_index DESC
	LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []*indexer.ItemCreationRow{}
	for rows.Next() {
		var item indexer.ItemCreationRow
		err = rows.Scan(&item.BlockHeight, &item.TxHash, &item.EventIndex, &item.ItemID, &item.Metadata, &item.CreatedAt)
		if err != nil {
			return nil, err
		}

		items = append(items, &item)
	}

	return items, nil
}

// GetItemsCount gets the total amount of created items in the db
func (db *ItemDB) GetItemsCount() (int, error) {
	var count int
	err := db.rdb.QueryRow(`
	SELECT COUNT(*) FROM t_item_creations
	`).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// GetItemStatusChanges gets the status history of an item in chain order
func (db *ItemDB) GetItemStatusChanges(itemID int64) ([]*indexer.ItemStatusChangeRow, error) {
	rows, err := db.rdb.Query(`
	SELECT block_height, tx_hash, event_index, item_id, new_status, additional_data, created_at
	FROM t_item_status_changes
	WHERE item_id = $1
	ORDER BY block_height ASC, event_index ASC
	`, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	changes := []*indexer.ItemStatusChangeRow{}
	for rows.Next() {
		var change indexer.ItemStatusChangeRow
		var data string
		err = rows.Scan(&change.BlockHeight, &change.TxHash, &change.EventIndex, &change.ItemID, &change.NewStatus, &data, &change.CreatedAt)
		if err != nil {
			return nil, err
		}

		change.AdditionalData, err = hexutil.Decode(data)
		if err != nil {
			return nil, err
		}

		changes = append(changes, &change)
	}

	return changes, nil
}
