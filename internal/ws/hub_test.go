package ws

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func dialHub(t *testing.T, h *Hub) *websocket.Conn {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(h.Serve))
	t.Cleanup(server.Close)

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func TestHub_PublishReachesClient(t *testing.T) {
	h := NewHub(zap.NewNop())
	defer h.Close()

	conn := dialHub(t, h)

	// Registration happens during the upgrade handshake, before Dial returns.
	h.Publish(LiveEvent{
		Category:    "whale",
		Title:       "Whale Transfer Detected",
		BlockHeight: 150000,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev LiveEvent
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, "whale", ev.Category)
	assert.Equal(t, int64(150000), ev.BlockHeight)
}

func TestHub_PublishWithoutClients(t *testing.T) {
	h := NewHub(zap.NewNop())
	defer h.Close()

	// Must not panic or block.
	h.Publish(LiveEvent{Category: "nft"})
}

func TestHub_ConcurrentPublish(t *testing.T) {
	h := NewHub(zap.NewNop())
	defer h.Close()

	conn := dialHub(t, h)

	// Concurrent webhook handlers publish simultaneously; writes to one
	// connection must be serialized, never interleaved.
	const publishers = 4
	const perPublisher = 25

	var wg sync.WaitGroup
	for i := 0; i < publishers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perPublisher; j++ {
				h.Publish(LiveEvent{Category: "whale", Title: "t"})
			}
		}()
	}
	wg.Wait()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for i := 0; i < publishers*perPublisher; i++ {
		var ev LiveEvent
		require.NoError(t, conn.ReadJSON(&ev))
		assert.Equal(t, "whale", ev.Category)
	}
}

func TestHub_DroppedClientIsRemoved(t *testing.T) {
	h := NewHub(zap.NewNop())
	defer h.Close()

	conn := dialHub(t, h)
	conn.Close()

	// The read pump notices the close and unregisters the client; publishing
	// afterwards must not fail.
	time.Sleep(50 * time.Millisecond)
	h.Publish(LiveEvent{Category: "whale"})
}
