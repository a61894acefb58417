package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/stackpulse/pulse-server/internal/stats"
	"github.com/stackpulse/pulse-server/internal/ws"
)

const serverVersion = "1.0.0"

// registeredChainhooks lists the predicate names this server expects
// deliveries from.
var registeredChainhooks = []string{
	"whale-transfer-alert",
	"new-contract-deployed",
	"nft-mint-tracker",
	"token-launch-detector",
	"large-swap-alert",
	"user-subscription-created",
	"alert-triggered",
	"fee-collected",
	"badge-earned",
}

// StatusHandler serves health, statistics, and chainhook status endpoints
// plus the live WebSocket feed.
type StatusHandler struct {
	stats   *stats.Stats
	hub     *ws.Hub
	started time.Time
}

func NewStatusHandler(st *stats.Stats, hub *ws.Hub) *StatusHandler {
	return &StatusHandler{stats: st, hub: hub, started: time.Now()}
}

// Health handles GET /health.
func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"version":   serverVersion,
	})
}

// Stats handles GET /api/stats. Uptime is reported in seconds.
func (h *StatusHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"stats":     h.stats.Snapshot(),
		"uptime":    time.Since(h.started).Seconds(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Chainhooks handles GET /api/chainhooks/status.
func (h *StatusHandler) Chainhooks(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"registered": len(registeredChainhooks),
		"active":     len(registeredChainhooks),
		"chainhooks": registeredChainhooks,
	})
}

// Live handles GET /ws, upgrading the connection into the event feed.
func (h *StatusHandler) Live(c *gin.Context) {
	h.hub.Serve(c.Writer, c.Request)
}
