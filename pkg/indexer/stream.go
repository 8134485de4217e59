package indexer

import (
	"context"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

// TxUpdate is a single transaction of the tracked contract with its raw
// logs in event index order
type TxUpdate struct {
	Hash common.Hash
	Logs []types.Log
}

// BlockUpdate is one stream item: a block and the tracked contract's
// transactions in it, in chain order
type BlockUpdate struct {
	Height int64
	Txs    []TxUpdate
}

// BlockStreamer delivers BlockUpdates ordered by strictly increasing block
// height. Delivery is at-least-once across restarts: the stream re-delivers
// from the height it is started at. Closing the channel means end of input,
// not an error.
type BlockStreamer interface {
	Listen(ctx context.Context, fromBlock int64, updates chan<- BlockUpdate) error
}
