package chainhook

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stxTransferEvent(t *testing.T, sender, recipient, amount string) Event {
	t.Helper()
	data, err := json.Marshal(map[string]string{
		"sender":    sender,
		"recipient": recipient,
		"amount":    amount,
	})
	require.NoError(t, err)
	return Event{Type: EventSTXTransfer, Data: data}
}

func TestParseWhaleTransfer(t *testing.T) {
	ev := stxTransferEvent(t, "SP1SENDER", "SP2RECIPIENT", "5000000000")

	transfer, ok := ParseWhaleTransfer(ev)
	require.True(t, ok)
	assert.Equal(t, "SP1SENDER", transfer.Sender)
	assert.Equal(t, "SP2RECIPIENT", transfer.Recipient)
	assert.Equal(t, uint64(5000000000), transfer.AmountMicro)
	assert.Equal(t, 5000.0, transfer.AmountSTX)
}

func TestParseWhaleTransfer_NotApplicable(t *testing.T) {
	_, ok := ParseWhaleTransfer(Event{Type: EventFTTransfer, Data: json.RawMessage(`{}`)})
	assert.False(t, ok)

	_, ok = ParseWhaleTransfer(Event{Type: EventSTXTransfer, Data: json.RawMessage(`not json`)})
	assert.False(t, ok)

	_, ok = ParseWhaleTransfer(stxTransferEvent(t, "a", "b", "not-a-number"))
	assert.False(t, ok)
}

func deploymentTx(contractID, sender string) Transaction {
	return Transaction{
		TransactionIdentifier: TransactionIdentifier{Hash: "0xabc"},
		Metadata: TransactionMetadata{
			Sender: sender,
			Kind: Kind{
				Type: KindContractDeployment,
				Data: KindData{ContractIdentifier: contractID},
			},
		},
	}
}

func TestParseContractDeployment(t *testing.T) {
	d, ok := ParseContractDeployment(deploymentTx("SP1DEPLOYER.my-contract", "SP1DEPLOYER"))
	require.True(t, ok)
	assert.Equal(t, "SP1DEPLOYER.my-contract", d.ContractID)
	assert.Equal(t, "SP1DEPLOYER", d.Deployer)
	assert.Equal(t, "my-contract", d.ContractName)
}

func TestParseContractDeployment_NoSeparator(t *testing.T) {
	d, ok := ParseContractDeployment(deploymentTx("SP1DEPLOYER", "SP1SENDER"))
	require.True(t, ok)
	assert.Equal(t, "SP1DEPLOYER", d.Deployer)
	assert.Equal(t, "unknown", d.ContractName)
}

func TestParseContractDeployment_NotDeployment(t *testing.T) {
	tx := deploymentTx("SP1.c", "SP1")
	tx.Metadata.Kind.Type = "ContractCall"
	_, ok := ParseContractDeployment(tx)
	assert.False(t, ok)
}

func TestParseNFTMint(t *testing.T) {
	data, err := json.Marshal(map[string]interface{}{
		"asset_identifier": "SP1X.cool-cats::cool-cat",
		"recipient":        "SP2OWNER",
		"value":            json.Number("42"),
	})
	require.NoError(t, err)

	mint, ok := ParseNFTMint(Event{Type: EventNFTMint, Data: data})
	require.True(t, ok)
	assert.Equal(t, "SP1X.cool-cats", mint.ContractAddress)
	assert.Equal(t, "cool-cat", mint.AssetName)
	assert.Equal(t, "42", mint.TokenID)
	assert.Equal(t, "SP2OWNER", mint.Recipient)
}

func TestParseNFTMint_RawClarityValue(t *testing.T) {
	data, err := json.Marshal(map[string]interface{}{
		"asset_identifier": "SP1X.cool-cats::cool-cat",
		"recipient":        "SP2OWNER",
		"raw_value":        "0x01" + strings.Repeat("00", 15) + "07",
	})
	require.NoError(t, err)

	mint, ok := ParseNFTMint(Event{Type: EventNFTMint, Data: data})
	require.True(t, ok)
	assert.Equal(t, "7", mint.TokenID)
}

func TestParseNFTMint_NoAssetName(t *testing.T) {
	data, err := json.Marshal(map[string]string{
		"asset_identifier": "bare-identifier",
		"recipient":        "SP2OWNER",
	})
	require.NoError(t, err)

	mint, ok := ParseNFTMint(Event{Type: EventNFTMint, Data: data})
	require.True(t, ok)
	assert.Equal(t, "", mint.ContractAddress)
	assert.Equal(t, "unknown", mint.AssetName)
	assert.Equal(t, "0", mint.TokenID)
}

func printEventJSON(t *testing.T, value map[string]interface{}) Event {
	t.Helper()
	data, err := json.Marshal(map[string]interface{}{
		"contract_identifier": "SP1X.pulse-core",
		"topic":               "print",
		"value":               value,
	})
	require.NoError(t, err)
	return Event{Type: EventSmartContract, Data: data}
}

func TestParsePrintEvent(t *testing.T) {
	ev := printEventJSON(t, map[string]interface{}{
		"event": "subscription-created",
		"user":  "SP2USER",
		"tier":  float64(2),
	})

	p, ok := ParsePrintEvent(ev)
	require.True(t, ok)
	assert.Equal(t, "SP1X.pulse-core", p.ContractID)
	assert.Equal(t, "subscription-created", p.EventType)
	assert.Equal(t, "SP2USER", p.Data["user"])
}

func TestParsePrintEvent_RawClarityValue(t *testing.T) {
	// {event: "test", amount: u42} hex-encoded.
	raw := "0x0c00000002" +
		"056576656e74" + "0d0000000474657374" +
		"06616d6f756e74" + "01" + strings.Repeat("00", 15) + "2a"
	data, err := json.Marshal(map[string]string{
		"contract_identifier": "SP1X.pulse-core",
		"topic":               "print",
		"raw_value":           raw,
	})
	require.NoError(t, err)

	p, ok := ParsePrintEvent(Event{Type: EventSmartContract, Data: data})
	require.True(t, ok)
	assert.Equal(t, "test", p.EventType)
	assert.Equal(t, uint64(42), p.Data["amount"])
}

func TestParsePrintEvent_NotApplicable(t *testing.T) {
	// Missing event tag.
	_, ok := ParsePrintEvent(printEventJSON(t, map[string]interface{}{"amount": 1.0}))
	assert.False(t, ok)

	// Wrong event type.
	_, ok = ParsePrintEvent(Event{Type: EventNFTMint, Data: json.RawMessage(`{}`)})
	assert.False(t, ok)

	// Undecodable payload.
	data, err := json.Marshal(map[string]string{
		"contract_identifier": "SP1X.pulse-core",
		"raw_value":           "0xzz",
	})
	require.NoError(t, err)
	_, ok = ParsePrintEvent(Event{Type: EventSmartContract, Data: data})
	assert.False(t, ok)
}

func TestIsLargeSwap(t *testing.T) {
	ft := Event{Type: EventFTTransfer, Data: json.RawMessage(`{}`)}
	stx := Event{Type: EventSTXTransfer, Data: json.RawMessage(`{}`)}

	tx := Transaction{Metadata: TransactionMetadata{Receipt: Receipt{Events: []Event{ft}}}}
	assert.False(t, IsLargeSwap(tx))

	tx.Metadata.Receipt.Events = []Event{ft, stx, ft}
	assert.True(t, IsLargeSwap(tx))
	assert.Equal(t, 2, CountFTTransfers(tx.Metadata.Receipt.Events))
}
