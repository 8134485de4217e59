package indexer

import (
	"errors"
	"time"
)

type ItemStatus string

const (
	ItemStatusUnknown   ItemStatus = ""
	ItemStatusProduced  ItemStatus = "produced"
	ItemStatusInTransit ItemStatus = "in_transit"
	ItemStatusInStore   ItemStatus = "in_store"
	ItemStatusSold      ItemStatus = "sold"
)

// ItemStatusFromByte maps the on-chain status enum to its string form
func ItemStatusFromByte(b uint8) (ItemStatus, error) {
	switch b {
	case 0:
		return ItemStatusProduced, nil
	case 1:
		return ItemStatusInTransit, nil
	case 2:
		return ItemStatusInStore, nil
	case 3:
		return ItemStatusSold, nil
	}

	return ItemStatusUnknown, errors.New("unknown item status")
}

type ItemEventType string

const (
	ItemEventTypeCreated       ItemEventType = "item_created"
	ItemEventTypeStatusChanged ItemEventType = "item_status_changed"
)

type ItemCreated struct {
	ItemID   int64  `json:"item_id"`
	Metadata string `json:"metadata"`
}

type ItemStatusChanged struct {
	ItemID         int64      `json:"item_id"`
	NewStatus      ItemStatus `json:"new_status"`
	AdditionalData []byte     `json:"additional_data"`
}

// ItemEvent is the closed set of decoded events from the tracked contract,
// exactly one of the variant pointers is set
type ItemEvent struct {
	Type          ItemEventType      `json:"type"`
	Created       *ItemCreated       `json:"created,omitempty"`
	StatusChanged *ItemStatusChanged `json:"status_changed,omitempty"`
}

// EventKey is the natural unique identity of an indexed event
type EventKey struct {
	BlockHeight int64  `json:"block_height"`
	TxHash      string `json:"tx_hash"`
	EventIndex  int64  `json:"event_index"`
}

type ItemCreationRow struct {
	EventKey
	ItemID    int64     `json:"item_id"`
	Metadata  string    `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
}

type ItemStatusChangeRow struct {
	EventKey
	ItemID         int64      `json:"item_id"`
	NewStatus      ItemStatus `json:"new_status"`
	AdditionalData []byte     `json:"additional_data"`
	CreatedAt      time.Time  `json:"created_at"`
}
