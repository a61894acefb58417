package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/stackpulse/pulse-server/internal/metrics"
)

// DiscordSender posts rich embeds to a fixed Discord webhook. The
// per-recipient destination is ignored: a configured discord handle only
// opts the user in, delivery always goes to the process-level webhook.
type DiscordSender struct {
	webhookURL  string
	explorerURL string
	client      *http.Client
	logger      *zap.Logger
}

var _ Sender = (*DiscordSender)(nil)

func NewDiscordSender(webhookURL, explorerURL string, logger *zap.Logger) *DiscordSender {
	return &DiscordSender{
		webhookURL:  webhookURL,
		explorerURL: explorerURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

func (s *DiscordSender) Name() string {
	return "discord"
}

type discordEmbed struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Color       int                 `json:"color"`
	Fields      []discordEmbedField `json:"fields"`
	Footer      discordEmbedFooter  `json:"footer"`
	Timestamp   string              `json:"timestamp"`
}

type discordEmbedField struct {
	Name   string `json:"name"`
	Value  string `json:"value"`
	Inline bool   `json:"inline"`
}

type discordEmbedFooter struct {
	Text string `json:"text"`
}

// Send posts the notification embed. Network failures and non-2xx responses
// are logged and reported as false.
func (s *DiscordSender) Send(ctx context.Context, _ string, n Notification) bool {
	embed := discordEmbed{
		Title:       n.Title,
		Description: n.Message,
		Color:       n.Category.Color(),
		Fields:      make([]discordEmbedField, 0, len(n.Data)+1),
		Footer:      discordEmbedFooter{Text: fmt.Sprintf("StackPulse Alert • Block %s", blockLabel(n.BlockHeight))},
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, field := range n.Data {
		embed.Fields = append(embed.Fields, discordEmbedField{Name: field.Label, Value: field.Value, Inline: true})
	}
	if n.TxHash != "" {
		embed.Fields = append(embed.Fields, discordEmbedField{
			Name:  "Transaction",
			Value: fmt.Sprintf("[View on Explorer](%s)", ExplorerTxURL(s.explorerURL, n.TxHash)),
		})
	}

	body, err := json.Marshal(map[string]interface{}{
		"username": "StackPulse",
		"embeds":   []discordEmbed{embed},
	})
	if err != nil {
		s.logger.Error("discord payload marshal failed", zap.Error(err))
		return s.record(false)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.webhookURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("discord request build failed", zap.Error(err))
		return s.record(false)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("discord notification failed",
			zap.String("title", n.Title),
			zap.Error(err))
		return s.record(false)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("discord notification rejected",
			zap.String("title", n.Title),
			zap.Int("status", resp.StatusCode))
		return s.record(false)
	}

	s.logger.Info("discord notification sent",
		zap.String("category", string(n.Category)),
		zap.String("title", n.Title))
	return s.record(true)
}

func (s *DiscordSender) record(ok bool) bool {
	status := "sent"
	if !ok {
		status = "failed"
	}
	metrics.NotificationsSent.WithLabelValues(s.Name(), status).Inc()
	return ok
}

func blockLabel(height int64) string {
	if height == 0 {
		return "N/A"
	}
	return fmt.Sprintf("%d", height)
}
