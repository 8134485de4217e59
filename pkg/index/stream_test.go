package index

import (
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
)

func TestGroupLogs(t *testing.T) {
	tx1 := common.HexToHash("0x01")
	tx2 := common.HexToHash("0x02")
	tx3 := common.HexToHash("0x03")

	logs := []types.Log{
		{BlockNumber: 5, TxHash: tx1},
		{BlockNumber: 5, TxHash: tx1},
		{BlockNumber: 5, TxHash: tx2},
		{BlockNumber: 8, TxHash: tx3},
	}

	updates := groupLogs(logs)

	if len(updates) != 2 {
		t.Fatalf("expected 2 block updates, got %d", len(updates))
	}

	if updates[0].Height != 5 || updates[1].Height != 8 {
		t.Fatalf("unexpected block heights: %d, %d", updates[0].Height, updates[1].Height)
	}

	if len(updates[0].Txs) != 2 {
		t.Fatalf("expected 2 txs in block 5, got %d", len(updates[0].Txs))
	}

	if updates[0].Txs[0].Hash != tx1 || updates[0].Txs[1].Hash != tx2 {
		t.Error("unexpected tx order in block 5")
	}

	if len(updates[0].Txs[0].Logs) != 2 {
		t.Errorf("expected 2 logs in tx1, got %d", len(updates[0].Txs[0].Logs))
	}

	if len(updates[1].Txs) != 1 || updates[1].Txs[0].Hash != tx3 {
		t.Error("unexpected txs in block 8")
	}
}

func TestGroupLogsEmpty(t *testing.T) {
	updates := groupLogs(nil)

	if len(updates) != 0 {
		t.Fatalf("expected no updates, got %d", len(updates))
	}
}
