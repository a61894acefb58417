package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"go.uber.org/zap"

	"github.com/stackpulse/pulse-server/internal/metrics"
)

// TelegramSender delivers notifications as MarkdownV2 bot messages to
// per-recipient chat ids.
type TelegramSender struct {
	bot         *bot.Bot
	explorerURL string
	logger      *zap.Logger
}

var _ Sender = (*TelegramSender)(nil)

// NewTelegramSender builds a sender on the Telegram Bot API. apiURL
// overrides the API server for tests; empty means the production endpoint.
func NewTelegramSender(token, apiURL, explorerURL string, logger *zap.Logger) (*TelegramSender, error) {
	opts := []bot.Option{bot.WithSkipGetMe()}
	if apiURL != "" {
		opts = append(opts, bot.WithServerURL(apiURL))
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	return &TelegramSender{bot: b, explorerURL: explorerURL, logger: logger}, nil
}

func (s *TelegramSender) Name() string {
	return "telegram"
}

// Send posts the notification to a chat. Failures are logged and reported
// as false.
func (s *TelegramSender) Send(ctx context.Context, chatID string, n Notification) bool {
	_, err := s.bot.SendMessage(ctx, &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      s.formatMessage(n),
		ParseMode: models.ParseModeMarkdown,
	})
	ok := err == nil

	status := "sent"
	if ok {
		s.logger.Info("telegram notification sent",
			zap.String("category", string(n.Category)),
			zap.String("title", n.Title),
			zap.String("chat_id", chatID))
	} else {
		status = "failed"
		s.logger.Error("telegram notification failed",
			zap.String("title", n.Title),
			zap.String("chat_id", chatID),
			zap.Error(err))
	}
	metrics.NotificationsSent.WithLabelValues(s.Name(), status).Inc()
	return ok
}

func (s *TelegramSender) formatMessage(n Notification) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s *%s*\n\n", n.Category.Emoji(), EscapeMarkdownV2(n.Title))
	fmt.Fprintf(&b, "%s\n\n", EscapeMarkdownV2(n.Message))

	for _, field := range n.Data {
		fmt.Fprintf(&b, "*%s:* %s\n", EscapeMarkdownV2(field.Label), EscapeMarkdownV2(field.Value))
	}
	if n.TxHash != "" {
		fmt.Fprintf(&b, "\n[View Transaction](%s)", ExplorerTxURL(s.explorerURL, n.TxHash))
	}
	if n.BlockHeight != 0 {
		fmt.Fprintf(&b, "\n_Block: %d_", n.BlockHeight)
	}
	return b.String()
}

// markdownV2Escaper escapes every MarkdownV2 metacharacter, the backslash
// included, so user- and chain-supplied text cannot break message markup.
var markdownV2Escaper = strings.NewReplacer(
	`\`, `\\`,
	"_", `\_`,
	"*", `\*`,
	"[", `\[`,
	"]", `\]`,
	"(", `\(`,
	")", `\)`,
	"~", `\~`,
	"`", "\\`",
	">", `\>`,
	"#", `\#`,
	"+", `\+`,
	"-", `\-`,
	"=", `\=`,
	"|", `\|`,
	"{", `\{`,
	"}", `\}`,
	".", `\.`,
	"!", `\!`,
)

// EscapeMarkdownV2 escapes text for safe interpolation into a MarkdownV2
// message.
func EscapeMarkdownV2(text string) string {
	return markdownV2Escaper.Replace(text)
}
