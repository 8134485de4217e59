package index

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/itemtrace/indexer/internal/sc"
	"github.com/itemtrace/indexer/pkg/indexer"
)

var (
	// ErrUnclassifiedEvent means a log from the tracked contract matched none
	// of the known event schemas. This halts indexing rather than dropping
	// the event.
	ErrUnclassifiedEvent = errors.New("event does not match any known schema")

	// ErrWrongContract means the stream delivered a log from a contract other
	// than the tracked one, which breaks the upstream filter contract
	ErrWrongContract = errors.New("event originates from an unexpected contract")
)

type Classifier struct {
	contract common.Address
	abi      abi.ABI

	createdTopic common.Hash
	statusTopic  common.Hash
}

func NewClassifier(contract common.Address) (*Classifier, error) {
	cabi, err := sc.TrackerABIJSON()
	if err != nil {
		return nil, err
	}

	return &Classifier{
		contract:     contract,
		abi:          cabi,
		createdTopic: crypto.Keccak256Hash([]byte(sc.ItemCreatedEvent)),
		statusTopic:  crypto.Keccak256Hash([]byte(sc.ItemStatusChangedEvent)),
	}, nil
}

// Classify decodes a raw log into one of the known event variants by
// matching its signature topic against each schema in turn
func (c *Classifier) Classify(lg types.Log) (*indexer.ItemEvent, error) {
	if lg.Address != c.contract {
		return nil, fmt.Errorf("%w: expected %s, got %s", ErrWrongContract, c.contract.Hex(), lg.Address.Hex())
	}

	if len(lg.Topics) < 2 {
		return nil, fmt.Errorf("%w: missing topics", ErrUnclassifiedEvent)
	}

	itemID := lg.Topics[1].Big()
	if !itemID.IsInt64() {
		return nil, fmt.Errorf("%w: item id %s out of range", ErrUnclassifiedEvent, itemID.String())
	}

	switch lg.Topics[0] {
	case c.createdTopic:
		var ev sc.LogItemCreated

		err := c.abi.UnpackIntoInterface(&ev, "ItemCreated", lg.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: bad ItemCreated payload: %v", ErrUnclassifiedEvent, err)
		}

		return &indexer.ItemEvent{
			Type: indexer.ItemEventTypeCreated,
			Created: &indexer.ItemCreated{
				ItemID:   itemID.Int64(),
				Metadata: ev.Metadata,
			},
		}, nil
	case c.statusTopic:
		var ev sc.LogItemStatusChanged

		err := c.abi.UnpackIntoInterface(&ev, "ItemStatusChanged", lg.Data)
		if err != nil {
			return nil, fmt.Errorf("%w: bad ItemStatusChanged payload: %v", ErrUnclassifiedEvent, err)
		}

		status, err := indexer.ItemStatusFromByte(ev.NewStatus)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrUnclassifiedEvent, err)
		}

		return &indexer.ItemEvent{
			Type: indexer.ItemEventTypeStatusChanged,
			StatusChanged: &indexer.ItemStatusChanged{
				ItemID:         itemID.Int64(),
				NewStatus:      status,
				AdditionalData: ev.AdditionalData,
			},
		}, nil
	}

	return nil, fmt.Errorf("%w: topic %s", ErrUnclassifiedEvent, lg.Topics[0].Hex())
}
