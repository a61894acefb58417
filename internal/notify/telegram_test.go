package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTelegramTestSender(t *testing.T, handler http.HandlerFunc) *TelegramSender {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	s, err := NewTelegramSender("123:test-token", server.URL, "https://explorer.stacks.co", zap.NewNop())
	require.NoError(t, err)
	return s
}

func TestTelegramSend(t *testing.T) {
	var path string
	s := newTelegramTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true,"result":{"message_id":1}}`))
	})

	ok := s.Send(context.Background(), "12345", Notification{
		Title:    "Whale Transfer Detected",
		Message:  "5,000.00 STX transferred",
		Category: CategoryWhale,
		Data:     []Field{{Label: "Amount", Value: "5,000.00 STX"}},
		TxHash:   "0xabc",
	})
	assert.True(t, ok)
	assert.True(t, strings.HasSuffix(path, "/sendMessage"), path)
}

func TestTelegramSend_APIError(t *testing.T) {
	s := newTelegramTestSender(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":false,"error_code":400,"description":"Bad Request: chat not found"}`))
	})

	// Delivery problems surface as false, never as an error or panic.
	ok := s.Send(context.Background(), "does-not-exist", Notification{
		Title:    "Alert",
		Category: CategoryAlert,
	})
	assert.False(t, ok)
}

func TestTelegramFormatMessage(t *testing.T) {
	s := &TelegramSender{explorerURL: "https://explorer.stacks.co", logger: zap.NewNop()}

	msg := s.formatMessage(Notification{
		Title:       "Whale Transfer Detected!",
		Message:     "5,000.00 STX transferred",
		Category:    CategoryWhale,
		Data:        []Field{{Label: "Amount", Value: "5,000.00 STX"}},
		TxHash:      "0xabc",
		BlockHeight: 150000,
	})

	assert.Contains(t, msg, `*Whale Transfer Detected\!*`)
	assert.Contains(t, msg, `5,000\.00 STX transferred`)
	assert.Contains(t, msg, `*Amount:* 5,000\.00 STX`)
	assert.Contains(t, msg, "[View Transaction](https://explorer.stacks.co/txid/0xabc?chain=mainnet)")
	assert.Contains(t, msg, "_Block: 150000_")
}
