package indexer

import "time"

// Settings is the singleton checkpoint row for the tracked contract.
// Contract is written once on init and never changes afterwards.
// (LastBlock, LastEventIndex) only ever moves forward.
type Settings struct {
	Contract       string    `json:"contract"`
	StartBlock     int64     `json:"start_block"`
	LastBlock      int64     `json:"last_block"`
	LastTxHash     string    `json:"last_tx_hash"`
	LastEventIndex int64     `json:"last_event_index"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}
