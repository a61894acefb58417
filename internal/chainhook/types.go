// Package chainhook defines the wire types of a Hiro chainhook delivery and
// the pure parsers that extract typed domain records from its loosely-typed
// transaction and event payloads.
package chainhook

import "encoding/json"

// Event categories recognized in event payloads. The discriminant is the
// top-level "type" field; payload shape varies per tag.
const (
	EventSTXTransfer   = "STXTransferEvent"
	EventFTTransfer    = "FTTransferEvent"
	EventNFTMint       = "NFTMintEvent"
	EventSmartContract = "SmartContractEvent"
)

// KindContractDeployment marks a transaction whose top-level kind is a
// contract deployment.
const KindContractDeployment = "ContractDeployment"

// Payload is the body of a chainhook POST: newly applied blocks plus any
// rolled-back ones.
type Payload struct {
	Apply     []Block `json:"apply"`
	Rollback  []Block `json:"rollback,omitempty"`
	Chainhook Info    `json:"chainhook"`
}

// Info identifies the chainhook predicate that produced a delivery.
type Info struct {
	UUID      string          `json:"uuid"`
	Predicate json.RawMessage `json:"predicate,omitempty"`
}

type Block struct {
	BlockIdentifier BlockIdentifier `json:"block_identifier"`
	Transactions    []Transaction   `json:"transactions"`
}

type BlockIdentifier struct {
	Index int64  `json:"index"`
	Hash  string `json:"hash"`
}

type Transaction struct {
	TransactionIdentifier TransactionIdentifier `json:"transaction_identifier"`
	Metadata              TransactionMetadata   `json:"metadata"`
}

type TransactionIdentifier struct {
	Hash string `json:"hash"`
}

type TransactionMetadata struct {
	Success bool    `json:"success"`
	Sender  string  `json:"sender"`
	Fee     int64   `json:"fee"`
	Kind    Kind    `json:"kind"`
	Receipt Receipt `json:"receipt"`
}

// Kind is the transaction-level discriminant (contract call, deployment,
// token transfer). Only deployments carry data this service reads.
type Kind struct {
	Type string   `json:"type"`
	Data KindData `json:"data"`
}

type KindData struct {
	ContractIdentifier string `json:"contract_identifier"`
}

type Receipt struct {
	Events []Event `json:"events"`
}

// Event is the tagged union of chain event payloads. Data is left raw and
// unmarshalled per tag by the parser that handles it.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// stxTransferData is the inner payload of an STXTransferEvent. Amount
// arrives as a decimal string of microSTX.
type stxTransferData struct {
	Sender    string `json:"sender"`
	Recipient string `json:"recipient"`
	Amount    string `json:"amount"`
}

// nftMintData is the inner payload of an NFTMintEvent.
type nftMintData struct {
	AssetIdentifier string          `json:"asset_identifier"`
	Recipient       string          `json:"recipient"`
	Value           json.RawMessage `json:"value"`
	RawValue        string          `json:"raw_value"`
}

// contractEventData is the inner payload of a SmartContractEvent. The
// indexer may deliver the print value pre-decoded (value) or hex-encoded
// (raw_value); parsers accept either.
type contractEventData struct {
	ContractIdentifier string          `json:"contract_identifier"`
	Topic              string          `json:"topic"`
	Value              json.RawMessage `json:"value"`
	RawValue           string          `json:"raw_value"`
}
