package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"database/sql"

	"github.com/itemtrace/indexer/pkg/indexer"
)

var (
	ErrUnknownEventType = errors.New("unknown item event type")
)

// InsertEvent commits a checkpoint advance and an event insert as one
// transaction on the given pooled connection. Re-delivery of an already
// committed event is a no-op success, the insert is keyed on
// (block_height, tx_hash, event_index). Returns the elapsed duration.
//
// On any error the transaction is rolled back, neither the checkpoint nor
// the row is persisted and the caller is expected to retry.
func (d *DB) InsertEvent(ctx context.Context, conn *sql.Conn, key indexer.EventKey, ev *indexer.ItemEvent) (time.Duration, error) {
	start := time.Now()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	err = d.SettingsDB.AdvanceCheckpointTx(ctx, tx, key)
	if err != nil {
		return 0, fmt.Errorf("failed to advance checkpoint: %w", err)
	}

	switch ev.Type {
	case indexer.ItemEventTypeCreated:
		_, err = d.ItemDB.InsertItemCreatedTx(ctx, tx, key, ev.Created)
	case indexer.ItemEventTypeStatusChanged:
		_, err = d.ItemDB.InsertItemStatusChangedTx(ctx, tx, key, ev.StatusChanged)
	default:
		return 0, ErrUnknownEventType
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert event: %w", err)
	}

	err = tx.Commit()
	if err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return time.Since(start), nil
}
