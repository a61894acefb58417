package handler

import (
	"fmt"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/stackpulse/pulse-server/internal/chainhook"
	"github.com/stackpulse/pulse-server/internal/notify"
)

// Print-event tags emitted by the StackPulse contracts.
const (
	printSubscriptionCreated = "subscription-created"
	printAlertTriggered      = "alert-triggered"
	printFeeCollected        = "fee-collected"
	printBadgeMinted         = "badge-minted"
)

// printContext carries the position of a matched print event within a
// delivery.
type printContext struct {
	event *chainhook.PrintEvent
	tx    chainhook.Transaction
	block chainhook.Block
}

// scanPrintEvents walks the applied blocks and invokes handle for every
// contract print event whose payload tag matches.
func (h *WebhookHandler) scanPrintEvents(payload *chainhook.Payload, tag string, handle func(pc printContext)) {
	for _, block := range payload.Apply {
		for _, tx := range block.Transactions {
			for _, ev := range tx.Metadata.Receipt.Events {
				printEvent, ok := chainhook.ParsePrintEvent(ev)
				if !ok || printEvent.EventType != tag {
					continue
				}
				handle(printContext{event: printEvent, tx: tx, block: block})
			}
		}
	}
}

// printField renders one field of a decoded print payload for display.
func printField(data map[string]interface{}, key string) string {
	v, ok := data[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprintf("%v", v)
}

// printAddress extracts a principal field used for recipient routing.
func printAddress(data map[string]interface{}, key string) string {
	s, _ := data[key].(string)
	return s
}

// SubscriptionCreated handles POST /api/chainhooks/subscription-created.
// The notification is routed to the subscribing user, not broadcast.
func (h *WebhookHandler) SubscriptionCreated(c *gin.Context) {
	payload, ok := h.readPayload(c, "subscription-created")
	if !ok {
		return
	}

	h.scanPrintEvents(payload, printSubscriptionCreated, func(pc printContext) {
		user := printAddress(pc.event.Data, "user")
		tier := printField(pc.event.Data, "tier")

		h.logger.Info("subscription created",
			zap.String("user", user),
			zap.String("tier", tier),
			zap.String("tx_hash", pc.tx.TransactionIdentifier.Hash))

		n := notify.Notification{
			Title:    "✨ Subscription Activated",
			Message:  fmt.Sprintf("Welcome to StackPulse! Your tier %s subscription is now active.", tier),
			Category: notify.CategorySubscription,
			Data: []notify.Field{
				{Label: "Tier", Value: tier},
				{Label: "Price", Value: chainhook.FormatSTX(pc.event.Data["price"]) + " STX"},
			},
			TxHash:      pc.tx.TransactionIdentifier.Hash,
			BlockHeight: pc.block.BlockIdentifier.Index,
		}
		h.broadcaster.Broadcast(c.Request.Context(), n, user)
		h.processed(n, h.stats.IncSubscriptions)
	})
	h.acknowledge(c, "subscription-created")
}

// AlertTriggered handles POST /api/chainhooks/alert-triggered. Routed to
// the alert owner.
func (h *WebhookHandler) AlertTriggered(c *gin.Context) {
	payload, ok := h.readPayload(c, "alert-triggered")
	if !ok {
		return
	}

	h.scanPrintEvents(payload, printAlertTriggered, func(pc printContext) {
		owner := printAddress(pc.event.Data, "owner")
		alertID := printField(pc.event.Data, "alert-id")
		alertType := printField(pc.event.Data, "alert-type")

		h.logger.Info("alert triggered",
			zap.String("alert_id", alertID),
			zap.String("owner", owner),
			zap.String("alert_type", alertType),
			zap.String("tx_hash", pc.tx.TransactionIdentifier.Hash))

		n := notify.Notification{
			Title:    "\U0001F514 Your Alert Was Triggered!",
			Message:  fmt.Sprintf("Alert #%s (%s) has been triggered.", alertID, alertType),
			Category: notify.CategoryAlert,
			Data: []notify.Field{
				{Label: "Alert ID", Value: alertID},
				{Label: "Type", Value: alertType},
			},
			TxHash:      pc.tx.TransactionIdentifier.Hash,
			BlockHeight: pc.block.BlockIdentifier.Index,
		}
		h.broadcaster.Broadcast(c.Request.Context(), n, owner)
		h.processed(n, h.stats.IncAlertsTriggered)
	})
	h.acknowledge(c, "alert-triggered")
}

// FeeCollected handles POST /api/chainhooks/fee-collected. An operator
// notification: broadcast to every opted-in user rather than one address.
func (h *WebhookHandler) FeeCollected(c *gin.Context) {
	payload, ok := h.readPayload(c, "fee-collected")
	if !ok {
		return
	}

	h.scanPrintEvents(payload, printFeeCollected, func(pc printContext) {
		source := printField(pc.event.Data, "source")
		amount := chainhook.FormatSTX(pc.event.Data["amount"])

		h.logger.Info("fee collected",
			zap.String("source", source),
			zap.String("amount_stx", amount),
			zap.String("tx_hash", pc.tx.TransactionIdentifier.Hash))

		n := notify.Notification{
			Title:    "\U0001F4B0 Fee Collected",
			Message:  fmt.Sprintf("%s STX collected from %s", amount, source),
			Category: notify.CategoryFee,
			Data: []notify.Field{
				{Label: "Source", Value: source},
				{Label: "Amount", Value: amount + " STX"},
			},
			TxHash:      pc.tx.TransactionIdentifier.Hash,
			BlockHeight: pc.block.BlockIdentifier.Index,
		}
		h.broadcaster.Broadcast(c.Request.Context(), n)
		h.processed(n, h.stats.IncFeesCollected)
	})
	h.acknowledge(c, "fee-collected")
}

// BadgeEarned handles POST /api/chainhooks/badge-earned. Routed to the
// badge recipient. The contract emits the tag "badge-minted".
func (h *WebhookHandler) BadgeEarned(c *gin.Context) {
	payload, ok := h.readPayload(c, "badge-earned")
	if !ok {
		return
	}

	h.scanPrintEvents(payload, printBadgeMinted, func(pc printContext) {
		recipient := printAddress(pc.event.Data, "recipient")
		badgeName := printField(pc.event.Data, "badge-name")

		h.logger.Info("badge earned",
			zap.String("token_id", printField(pc.event.Data, "token-id")),
			zap.String("recipient", recipient),
			zap.String("badge_name", badgeName),
			zap.String("tx_hash", pc.tx.TransactionIdentifier.Hash))

		n := notify.Notification{
			Title:    "\U0001F3C6 You Earned a Badge!",
			Message:  fmt.Sprintf("Congratulations! You earned the %q badge.", badgeName),
			Category: notify.CategoryBadge,
			Data: []notify.Field{
				{Label: "Badge", Value: badgeName},
				{Label: "Type", Value: printField(pc.event.Data, "badge-type")},
				{Label: "Token ID", Value: printField(pc.event.Data, "token-id")},
			},
			TxHash:      pc.tx.TransactionIdentifier.Hash,
			BlockHeight: pc.block.BlockIdentifier.Index,
		}
		h.broadcaster.Broadcast(c.Request.Context(), n, recipient)
		h.processed(n, h.stats.IncBadgesEarned)
	})
	h.acknowledge(c, "badge-earned")
}
