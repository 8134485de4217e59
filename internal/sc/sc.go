package sc

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const (
	ItemCreatedEvent       = "ItemCreated(uint256,string)"
	ItemStatusChangedEvent = "ItemStatusChanged(uint256,uint8,bytes)"
)

// TrackerABI covers the events emitted by the item tracking contract. The
// item id is indexed, everything else travels in the log data.
const TrackerABI = `[
	{
		"anonymous": false,
		"inputs": [
			{ "indexed": true, "internalType": "uint256", "name": "itemId", "type": "uint256" },
			{ "indexed": false, "internalType": "string", "name": "metadata", "type": "string" }
		],
		"name": "ItemCreated",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{ "indexed": true, "internalType": "uint256", "name": "itemId", "type": "uint256" },
			{ "indexed": false, "internalType": "uint8", "name": "newStatus", "type": "uint8" },
			{ "indexed": false, "internalType": "bytes", "name": "additionalData", "type": "bytes" }
		],
		"name": "ItemStatusChanged",
		"type": "event"
	}
]`

type LogItemCreated struct {
	Metadata string
}

type LogItemStatusChanged struct {
	NewStatus      uint8
	AdditionalData []byte
}

// TrackerABIJSON parses the tracker contract ABI
func TrackerABIJSON() (abi.ABI, error) {
	return abi.JSON(strings.NewReader(TrackerABI))
}
