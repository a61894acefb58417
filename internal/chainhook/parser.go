package chainhook

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/stackpulse/pulse-server/internal/clarity"
)

// MicroSTXFactor converts microSTX to STX.
const MicroSTXFactor = 1_000_000

// LargeSwapMinTransfers is the heuristic threshold for classifying a
// transaction as a large swap: two or more fungible token transfers in one
// transaction. There is no protocol-level swap signal; this is a deliberate
// structural heuristic.
const LargeSwapMinTransfers = 2

// WhaleTransfer is an STX transfer extracted from a transfer event.
type WhaleTransfer struct {
	Sender      string
	Recipient   string
	AmountMicro uint64
	AmountSTX   float64
}

// ContractDeployment describes a deployed contract extracted from a
// transaction's kind metadata.
type ContractDeployment struct {
	ContractID   string
	Deployer     string
	ContractName string
}

// NFTMint describes a minted NFT extracted from a mint event.
type NFTMint struct {
	AssetIdentifier string
	ContractAddress string
	AssetName       string
	TokenID         string
	Recipient       string
}

// PrintEvent is a contract-emitted application event. EventType is the
// "event" tag inside the decoded print payload; Data holds the full payload.
type PrintEvent struct {
	ContractID string
	EventType  string
	Data       map[string]interface{}
}

// ParseWhaleTransfer extracts a transfer record from an event. The second
// return is false when the event is not an STX transfer or its payload is
// malformed; parsers never fail any other way.
func ParseWhaleTransfer(ev Event) (*WhaleTransfer, bool) {
	if ev.Type != EventSTXTransfer {
		return nil, false
	}
	var data stxTransferData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return nil, false
	}
	amount, err := strconv.ParseUint(data.Amount, 10, 64)
	if err != nil {
		return nil, false
	}
	return &WhaleTransfer{
		Sender:      data.Sender,
		Recipient:   data.Recipient,
		AmountMicro: amount,
		AmountSTX:   float64(amount) / MicroSTXFactor,
	}, true
}

// ParseContractDeployment extracts a deployment record from a transaction.
// A contract identifier without a "." separator yields contract name
// "unknown" with the deployer falling back to the transaction sender.
func ParseContractDeployment(tx Transaction) (*ContractDeployment, bool) {
	if tx.Metadata.Kind.Type != KindContractDeployment {
		return nil, false
	}
	contractID := tx.Metadata.Kind.Data.ContractIdentifier

	deployer, name, found := strings.Cut(contractID, ".")
	if !found || name == "" {
		name = "unknown"
	}
	if deployer == "" {
		deployer = tx.Metadata.Sender
	}
	return &ContractDeployment{
		ContractID:   contractID,
		Deployer:     deployer,
		ContractName: name,
	}, true
}

// ParseNFTMint extracts a mint record from an event. An asset identifier
// without a "::" separator yields asset name "unknown" and an empty contract
// address.
func ParseNFTMint(ev Event) (*NFTMint, bool) {
	if ev.Type != EventNFTMint {
		return nil, false
	}
	var data nftMintData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return nil, false
	}

	contractAddr, assetName, found := strings.Cut(data.AssetIdentifier, "::")
	if !found {
		contractAddr = ""
		assetName = "unknown"
	}
	return &NFTMint{
		AssetIdentifier: data.AssetIdentifier,
		ContractAddress: contractAddr,
		AssetName:       assetName,
		TokenID:         mintTokenID(data),
		Recipient:       data.Recipient,
	}, true
}

// mintTokenID resolves the minted token id from the pre-decoded value when
// present, falling back to decoding the raw Clarity hex. Defaults to "0".
func mintTokenID(data nftMintData) string {
	if len(data.Value) > 0 {
		var n json.Number
		if err := json.Unmarshal(data.Value, &n); err == nil {
			return n.String()
		}
		var s string
		if err := json.Unmarshal(data.Value, &s); err == nil && s != "" {
			return s
		}
	}
	if data.RawValue != "" {
		if v, err := clarity.Decode(data.RawValue); err == nil {
			if id, ok := v.Interface().(uint64); ok {
				return strconv.FormatUint(id, 10)
			}
		}
	}
	return "0"
}

// ParsePrintEvent extracts a contract print event whose payload carries an
// "event" tag. A pre-decoded value is used when the indexer supplied one;
// otherwise the raw hex is decoded. Decode failures degrade to not
// applicable rather than an error.
func ParsePrintEvent(ev Event) (*PrintEvent, bool) {
	if ev.Type != EventSmartContract {
		return nil, false
	}
	var data contractEventData
	if err := json.Unmarshal(ev.Data, &data); err != nil {
		return nil, false
	}

	payload := decodePrintPayload(data)
	if payload == nil {
		return nil, false
	}
	tag, ok := payload["event"].(string)
	if !ok || tag == "" {
		return nil, false
	}
	return &PrintEvent{
		ContractID: data.ContractIdentifier,
		EventType:  tag,
		Data:       payload,
	}, true
}

func decodePrintPayload(data contractEventData) map[string]interface{} {
	if len(data.Value) > 0 {
		var m map[string]interface{}
		if err := json.Unmarshal(data.Value, &m); err == nil && m != nil {
			return m
		}
	}
	if data.RawValue != "" {
		if m, err := clarity.DecodePrintEvent(data.RawValue); err == nil {
			return m
		}
	}
	return nil
}

// CountFTTransfers counts fungible token transfer events in a list.
func CountFTTransfers(events []Event) int {
	n := 0
	for _, ev := range events {
		if ev.Type == EventFTTransfer {
			n++
		}
	}
	return n
}

// IsLargeSwap reports whether a transaction matches the large-swap
// heuristic.
func IsLargeSwap(tx Transaction) bool {
	return CountFTTransfers(tx.Metadata.Receipt.Events) >= LargeSwapMinTransfers
}
