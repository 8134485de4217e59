package index

import (
	"context"
	"log"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/itemtrace/indexer/pkg/indexer"
)

const (
	recoverableWait = 250 * time.Millisecond
)

// Follower tails the chain for the tracked contract and feeds ordered
// BlockUpdates into the stream channel. It fetches logs in rate sized block
// windows while catching up and then polls the chain head at syncrate.
type Follower struct {
	rate     int64
	syncrate time.Duration
	contract common.Address
	evm      indexer.EVMRequester
}

func NewFollower(rate, syncrate int, contract common.Address, evm indexer.EVMRequester) *Follower {
	return &Follower{
		rate:     int64(rate),
		syncrate: time.Duration(syncrate) * time.Second,
		contract: contract,
		evm:      evm,
	}
}

// Listen implements indexer.BlockStreamer. The channel is closed on return
// so consumers treat it as end of input.
func (f *Follower) Listen(ctx context.Context, fromBlock int64, updates chan<- indexer.BlockUpdate) error {
	defer close(updates)

	curr := fromBlock

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		latest, err := f.evm.LatestBlock()
		if err != nil {
			log.Default().Println("[follower] recoverable error: ", err)
			<-time.After(recoverableWait)
			continue
		}

		if curr > latest.Int64() {
			// caught up, wait for new blocks
			<-time.After(f.syncrate)
			continue
		}

		to := curr + f.rate
		if to > latest.Int64() {
			to = latest.Int64()
		}

		logs, err := f.evm.FilterLogs(ethereum.FilterQuery{
			FromBlock: big.NewInt(curr),
			ToBlock:   big.NewInt(to),
			Addresses: []common.Address{f.contract},
		})
		if err != nil {
			log.Default().Println("[follower] recoverable error: ", err)
			<-time.After(recoverableWait)
			continue
		}

		for _, upd := range groupLogs(logs) {
			select {
			case updates <- upd:
			case <-ctx.Done():
				return nil
			}
		}

		curr = to + 1
	}
}

// groupLogs folds a flat, chain ordered log slice into per block updates,
// preserving order and the zero based event index within each transaction
func groupLogs(logs []types.Log) []indexer.BlockUpdate {
	updates := []indexer.BlockUpdate{}

	for _, lg := range logs {
		height := int64(lg.BlockNumber)

		if len(updates) == 0 || updates[len(updates)-1].Height != height {
			updates = append(updates, indexer.BlockUpdate{Height: height})
		}
		upd := &updates[len(updates)-1]

		if len(upd.Txs) == 0 || upd.Txs[len(upd.Txs)-1].Hash != lg.TxHash {
			upd.Txs = append(upd.Txs, indexer.TxUpdate{Hash: lg.TxHash})
		}
		tx := &upd.Txs[len(upd.Txs)-1]

		tx.Logs = append(tx.Logs, lg)
	}

	return updates
}
