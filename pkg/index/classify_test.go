package index

import (
	"errors"
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/itemtrace/indexer/internal/sc"
	"github.com/itemtrace/indexer/pkg/indexer"
)

var (
	testContract = common.HexToAddress("0x480fbe37526226b6c6e2a7afa449cdf661939d2f")
	otherAddress = common.HexToAddress("0x1234567890123456789012345678901234567890")
)

func itemCreatedLog(t *testing.T, addr common.Address, itemID int64, metadata string) types.Log {
	t.Helper()

	cabi, err := sc.TrackerABIJSON()
	if err != nil {
		t.Fatal(err)
	}

	data, err := cabi.Events["ItemCreated"].Inputs.NonIndexed().Pack(metadata)
	if err != nil {
		t.Fatal(err)
	}

	return types.Log{
		Address: addr,
		Topics: []common.Hash{
			crypto.Keccak256Hash([]byte(sc.ItemCreatedEvent)),
			common.BigToHash(big.NewInt(itemID)),
		},
		Data: data,
	}
}

func itemStatusChangedLog(t *testing.T, addr common.Address, itemID int64, status uint8, additional []byte) types.Log {
	t.Helper()

	cabi, err := sc.TrackerABIJSON()
	if err != nil {
		t.Fatal(err)
	}

	data, err := cabi.Events["ItemStatusChanged"].Inputs.NonIndexed().Pack(status, additional)
	if err != nil {
		t.Fatal(err)
	}

	return types.Log{
		Address: addr,
		Topics: []common.Hash{
			crypto.Keccak256Hash([]byte(sc.ItemStatusChangedEvent)),
			common.BigToHash(big.NewInt(itemID)),
		},
		Data: data,
	}
}

func TestClassifyItemCreated(t *testing.T) {
	c, err := NewClassifier(testContract)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := c.Classify(itemCreatedLog(t, testContract, 42, "ipfs://item-42"))
	if err != nil {
		t.Fatal(err)
	}

	if ev.Type != indexer.ItemEventTypeCreated {
		t.Fatalf("expected %s, got %s", indexer.ItemEventTypeCreated, ev.Type)
	}

	if ev.Created == nil {
		t.Fatal("expected created variant to be set")
	}

	if ev.Created.ItemID != 42 {
		t.Errorf("expected item id 42, got %d", ev.Created.ItemID)
	}

	if ev.Created.Metadata != "ipfs://item-42" {
		t.Errorf("expected metadata ipfs://item-42, got %s", ev.Created.Metadata)
	}
}

func TestClassifyItemStatusChanged(t *testing.T) {
	c, err := NewClassifier(testContract)
	if err != nil {
		t.Fatal(err)
	}

	ev, err := c.Classify(itemStatusChangedLog(t, testContract, 7, 1, []byte("gps:52.52,13.40")))
	if err != nil {
		t.Fatal(err)
	}

	if ev.Type != indexer.ItemEventTypeStatusChanged {
		t.Fatalf("expected %s, got %s", indexer.ItemEventTypeStatusChanged, ev.Type)
	}

	if ev.StatusChanged == nil {
		t.Fatal("expected status changed variant to be set")
	}

	if ev.StatusChanged.ItemID != 7 {
		t.Errorf("expected item id 7, got %d", ev.StatusChanged.ItemID)
	}

	if ev.StatusChanged.NewStatus != indexer.ItemStatusInTransit {
		t.Errorf("expected status %s, got %s", indexer.ItemStatusInTransit, ev.StatusChanged.NewStatus)
	}

	if string(ev.StatusChanged.AdditionalData) != "gps:52.52,13.40" {
		t.Errorf("unexpected additional data: %s", ev.StatusChanged.AdditionalData)
	}
}

func TestClassifyErrors(t *testing.T) {
	c, err := NewClassifier(testContract)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name     string
		log      types.Log
		expected error
	}{
		{
			name:     "wrong contract",
			log:      itemCreatedLog(t, otherAddress, 1, "x"),
			expected: ErrWrongContract,
		},
		{
			name: "unknown topic",
			log: types.Log{
				Address: testContract,
				Topics: []common.Hash{
					crypto.Keccak256Hash([]byte("Transfer(address,address,uint256)")),
					common.BigToHash(big.NewInt(1)),
				},
			},
			expected: ErrUnclassifiedEvent,
		},
		{
			name: "missing topics",
			log: types.Log{
				Address: testContract,
			},
			expected: ErrUnclassifiedEvent,
		},
		{
			name:     "out of range status",
			log:      itemStatusChangedLog(t, testContract, 1, 9, nil),
			expected: ErrUnclassifiedEvent,
		},
		{
			name: "item id exceeds int64",
			log: func() types.Log {
				lg := itemCreatedLog(t, testContract, 1, "x")
				lg.Topics[1] = common.BigToHash(new(big.Int).Lsh(big.NewInt(1), 64))
				return lg
			}(),
			expected: ErrUnclassifiedEvent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Classify(tt.log)
			if err == nil {
				t.Fatal("expected an error")
			}

			if !errors.Is(err, tt.expected) {
				t.Errorf("expected error to wrap %s, got %s", tt.expected, err)
			}
		})
	}
}
