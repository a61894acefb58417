package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stackpulse/pulse-server/internal/chainhook"
	"github.com/stackpulse/pulse-server/internal/metrics"
	"github.com/stackpulse/pulse-server/internal/notify"
	"github.com/stackpulse/pulse-server/internal/stats"
	"github.com/stackpulse/pulse-server/internal/ws"
)

// WebhookHandler processes chainhook deliveries: it walks the applied
// blocks, parses matching events, fans out notifications, and maintains the
// event statistics.
type WebhookHandler struct {
	broadcaster *notify.Broadcaster
	stats       *stats.Stats
	hub         *ws.Hub
	logger      *zap.Logger
}

func NewWebhookHandler(broadcaster *notify.Broadcaster, st *stats.Stats, hub *ws.Hub, logger *zap.Logger) *WebhookHandler {
	return &WebhookHandler{
		broadcaster: broadcaster,
		stats:       st,
		hub:         hub,
		logger:      logger,
	}
}

// readPayload binds the delivery body. Rollback blocks are acknowledged in
// their wire shape and counted, but no retraction of previously broadcast
// notifications is performed; the known limitation is logged instead.
func (h *WebhookHandler) readPayload(c *gin.Context, hook string) (*chainhook.Payload, bool) {
	var payload chainhook.Payload
	if err := c.ShouldBindJSON(&payload); err != nil {
		h.logger.Error("malformed chainhook delivery",
			zap.String("hook", hook),
			zap.Error(err))
		metrics.WebhookDeliveries.WithLabelValues(hook, "failed").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Processing failed"})
		return nil, false
	}

	if len(payload.Rollback) > 0 {
		metrics.RollbackBlocks.WithLabelValues(hook).Add(float64(len(payload.Rollback)))
		h.logger.Warn("rollback blocks received; previously sent notifications are not retracted",
			zap.String("hook", hook),
			zap.Int("blocks", len(payload.Rollback)))
	}
	return &payload, true
}

func (h *WebhookHandler) acknowledge(c *gin.Context, hook string) {
	metrics.WebhookDeliveries.WithLabelValues(hook, "processed").Inc()
	c.JSON(http.StatusOK, gin.H{"success": true, "processed": hook})
}

// processed records one matched event across statistics, metrics, and the
// live dashboard feed.
func (h *WebhookHandler) processed(n notify.Notification, inc func()) {
	inc()
	metrics.EventsProcessed.WithLabelValues(string(n.Category)).Inc()
	if h.hub != nil {
		h.hub.Publish(ws.LiveEvent{
			Category:    string(n.Category),
			Title:       n.Title,
			Message:     n.Message,
			TxHash:      n.TxHash,
			BlockHeight: n.BlockHeight,
			Timestamp:   time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// WhaleTransfer handles POST /api/chainhooks/whale-transfer. Scans events
// for STX transfers.
func (h *WebhookHandler) WhaleTransfer(c *gin.Context) {
	payload, ok := h.readPayload(c, "whale-transfer")
	if !ok {
		return
	}

	for _, block := range payload.Apply {
		for _, tx := range block.Transactions {
			for _, ev := range tx.Metadata.Receipt.Events {
				transfer, ok := chainhook.ParseWhaleTransfer(ev)
				if !ok {
					continue
				}

				h.logger.Info("whale transfer detected",
					zap.Float64("amount_stx", transfer.AmountSTX),
					zap.String("sender", transfer.Sender),
					zap.String("recipient", transfer.Recipient),
					zap.String("tx_hash", tx.TransactionIdentifier.Hash),
					zap.Int64("block", block.BlockIdentifier.Index))

				n := notify.Notification{
					Title:    "\U0001F40B Whale Transfer Detected",
					Message:  fmt.Sprintf("%s STX transferred from %s to %s", chainhook.FormatSTX(transfer.AmountMicro), chainhook.ShortAddress(transfer.Sender), chainhook.ShortAddress(transfer.Recipient)),
					Category: notify.CategoryWhale,
					Data: []notify.Field{
						{Label: "Amount", Value: chainhook.FormatSTX(transfer.AmountMicro) + " STX"},
						{Label: "Sender", Value: transfer.Sender},
						{Label: "Recipient", Value: transfer.Recipient},
					},
					TxHash:      tx.TransactionIdentifier.Hash,
					BlockHeight: block.BlockIdentifier.Index,
				}
				h.broadcaster.Broadcast(c.Request.Context(), n)
				h.processed(n, h.stats.IncWhaleTransfers)
			}
		}
	}
	h.acknowledge(c, "whale-transfer")
}

// ContractDeployed handles POST /api/chainhooks/contract-deployed. Scans
// transactions (not events) for deployments.
func (h *WebhookHandler) ContractDeployed(c *gin.Context) {
	payload, ok := h.readPayload(c, "contract-deployed")
	if !ok {
		return
	}

	for _, block := range payload.Apply {
		for _, tx := range block.Transactions {
			deployment, ok := chainhook.ParseContractDeployment(tx)
			if !ok {
				continue
			}

			h.logger.Info("contract deployed",
				zap.String("contract_id", deployment.ContractID),
				zap.String("deployer", deployment.Deployer),
				zap.String("tx_hash", tx.TransactionIdentifier.Hash),
				zap.Int64("block", block.BlockIdentifier.Index))

			n := notify.Notification{
				Title:    "\U0001F4DC New Contract Deployed",
				Message:  fmt.Sprintf("New contract %s deployed by %s", deployment.ContractName, chainhook.ShortAddress(deployment.Deployer)),
				Category: notify.CategoryContract,
				Data: []notify.Field{
					{Label: "Contract", Value: deployment.ContractName},
					{Label: "Contract ID", Value: deployment.ContractID},
					{Label: "Deployer", Value: deployment.Deployer},
				},
				TxHash:      tx.TransactionIdentifier.Hash,
				BlockHeight: block.BlockIdentifier.Index,
			}
			h.broadcaster.Broadcast(c.Request.Context(), n)
			h.processed(n, h.stats.IncContractDeployments)
		}
	}
	h.acknowledge(c, "contract-deployed")
}

// NFTMint handles POST /api/chainhooks/nft-mint. Scans events for mints.
func (h *WebhookHandler) NFTMint(c *gin.Context) {
	payload, ok := h.readPayload(c, "nft-mint")
	if !ok {
		return
	}

	for _, block := range payload.Apply {
		for _, tx := range block.Transactions {
			for _, ev := range tx.Metadata.Receipt.Events {
				mint, ok := chainhook.ParseNFTMint(ev)
				if !ok {
					continue
				}

				h.logger.Info("nft minted",
					zap.String("asset_id", mint.AssetIdentifier),
					zap.String("token_id", mint.TokenID),
					zap.String("recipient", mint.Recipient),
					zap.String("tx_hash", tx.TransactionIdentifier.Hash),
					zap.Int64("block", block.BlockIdentifier.Index))

				n := notify.Notification{
					Title:    "\U0001F3A8 NFT Minted",
					Message:  fmt.Sprintf("%s #%s minted to %s", mint.AssetName, mint.TokenID, chainhook.ShortAddress(mint.Recipient)),
					Category: notify.CategoryNFT,
					Data: []notify.Field{
						{Label: "Collection", Value: mint.AssetName},
						{Label: "Token ID", Value: mint.TokenID},
						{Label: "Recipient", Value: mint.Recipient},
					},
					TxHash:      tx.TransactionIdentifier.Hash,
					BlockHeight: block.BlockIdentifier.Index,
				}
				h.broadcaster.Broadcast(c.Request.Context(), n)
				h.processed(n, h.stats.IncNFTMints)
			}
		}
	}
	h.acknowledge(c, "nft-mint")
}

// TokenLaunch handles POST /api/chainhooks/token-launch. Checks each
// transaction's top-level kind tag directly; the registered predicate
// already narrows deliveries to token contracts.
func (h *WebhookHandler) TokenLaunch(c *gin.Context) {
	payload, ok := h.readPayload(c, "token-launch")
	if !ok {
		return
	}

	for _, block := range payload.Apply {
		for _, tx := range block.Transactions {
			if tx.Metadata.Kind.Type != chainhook.KindContractDeployment {
				continue
			}
			contractID := tx.Metadata.Kind.Data.ContractIdentifier
			deployer := tx.Metadata.Sender

			h.logger.Info("token launched",
				zap.String("contract_id", contractID),
				zap.String("deployer", deployer),
				zap.String("tx_hash", tx.TransactionIdentifier.Hash),
				zap.Int64("block", block.BlockIdentifier.Index))

			n := notify.Notification{
				Title:    "\U0001FA99 New Token Launched",
				Message:  fmt.Sprintf("New token contract deployed: %s", contractID),
				Category: notify.CategoryToken,
				Data: []notify.Field{
					{Label: "Contract", Value: contractID},
					{Label: "Deployer", Value: deployer},
				},
				TxHash:      tx.TransactionIdentifier.Hash,
				BlockHeight: block.BlockIdentifier.Index,
			}
			h.broadcaster.Broadcast(c.Request.Context(), n)
			h.processed(n, h.stats.IncTokenLaunches)
		}
	}
	h.acknowledge(c, "token-launch")
}

// LargeSwap handles POST /api/chainhooks/large-swap. A transaction with two
// or more fungible token transfers is classified as a swap.
func (h *WebhookHandler) LargeSwap(c *gin.Context) {
	payload, ok := h.readPayload(c, "large-swap")
	if !ok {
		return
	}

	for _, block := range payload.Apply {
		for _, tx := range block.Transactions {
			if !chainhook.IsLargeSwap(tx) {
				continue
			}
			ftEvents := chainhook.CountFTTransfers(tx.Metadata.Receipt.Events)

			h.logger.Info("large swap detected",
				zap.String("swapper", tx.Metadata.Sender),
				zap.Int("ft_events", ftEvents),
				zap.String("tx_hash", tx.TransactionIdentifier.Hash),
				zap.Int64("block", block.BlockIdentifier.Index))

			n := notify.Notification{
				Title:    "\U0001F4B1 Large Swap Detected",
				Message:  fmt.Sprintf("Large swap executed by %s", chainhook.ShortAddress(tx.Metadata.Sender)),
				Category: notify.CategorySwap,
				Data: []notify.Field{
					{Label: "Swapper", Value: tx.Metadata.Sender},
					{Label: "Events", Value: fmt.Sprintf("%d", ftEvents)},
				},
				TxHash:      tx.TransactionIdentifier.Hash,
				BlockHeight: block.BlockIdentifier.Index,
			}
			h.broadcaster.Broadcast(c.Request.Context(), n)
			h.processed(n, h.stats.IncLargeSwaps)
		}
	}
	h.acknowledge(c, "large-swap")
}
