package index

import (
	"context"
	"log"

	"database/sql"

	"github.com/ethereum/go-ethereum/common"
	"github.com/itemtrace/indexer/internal/services/db"
	"github.com/itemtrace/indexer/pkg/indexer"
)

const (
	streamBufferSize = 20
)

// Indexer drives the pipeline: stream -> classifier -> supervisor -> writer.
// Events are processed strictly one at a time so the checkpoint advances in
// chain order.
type Indexer struct {
	contract   common.Address
	db         *db.DB
	streamer   indexer.BlockStreamer
	classifier *Classifier
	supervisor *Supervisor

	conn *sql.Conn
}

func New(contract common.Address, d *db.DB, streamer indexer.BlockStreamer) (*Indexer, error) {
	classifier, err := NewClassifier(contract)
	if err != nil {
		return nil, err
	}

	return &Indexer{
		contract:   contract,
		db:         d,
		streamer:   streamer,
		classifier: classifier,
		supervisor: NewSupervisor(),
	}, nil
}

// Start validates the persisted checkpoint against the configured contract,
// resumes from it and consumes the stream until it closes or ctx is
// cancelled. Cancellation is only checked between stream items, an in-flight
// db transaction always runs to completion.
func (i *Indexer) Start(ctx context.Context) error {
	settings, err := i.db.SettingsDB.GetCheckedSettings(i.contract.Hex())
	if err != nil {
		return err
	}

	from := settings.StartBlock
	if settings.LastBlock > from {
		from = settings.LastBlock
	}

	log.Default().Println("[index] indexing from block ", from)

	conn, err := i.db.Acquire(ctx)
	if err != nil {
		return err
	}
	i.conn = conn
	defer func() {
		i.conn.Close()
	}()

	updates := make(chan indexer.BlockUpdate, streamBufferSize)
	streamAck := make(chan error, 1)

	go func() {
		streamAck <- i.streamer.Listen(ctx, from, updates)
	}()

	for {
		select {
		case <-ctx.Done():
			return <-streamAck
		case upd, ok := <-updates:
			if !ok {
				return <-streamAck
			}

			err := i.processBlock(upd)
			if err != nil {
				return err
			}
		}
	}
}

// processBlock runs every event of the block through the pipeline in order.
// The db work deliberately runs on a background context so a shutdown never
// cancels a transaction halfway through.
func (i *Indexer) processBlock(upd indexer.BlockUpdate) error {
	ctx := context.Background()

	for _, tx := range upd.Txs {
		for idx, lg := range tx.Logs {
			ev, err := i.classifier.Classify(lg)
			if err != nil {
				return err
			}

			key := indexer.EventKey{
				BlockHeight: upd.Height,
				TxHash:      tx.Hash.Hex(),
				EventIndex:  int64(idx),
			}

			err = i.supervisor.Do(func() error {
				elapsed, err := i.db.InsertEvent(ctx, i.conn, key, ev)
				if err != nil {
					return err
				}

				log.Default().Printf("[index] processed %s at event index %d in tx %s in block %d, db transaction took %dms", ev.Type, key.EventIndex, key.TxHash, key.BlockHeight, elapsed.Milliseconds())

				return nil
			}, func() error {
				// the failed connection is assumed poisoned
				i.conn.Close()

				conn, err := i.db.Acquire(ctx)
				if err != nil {
					return err
				}
				i.conn = conn

				return nil
			})
			if err != nil {
				return err
			}
		}
	}

	return nil
}
