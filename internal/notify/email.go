package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/stackpulse/pulse-server/internal/metrics"
)

// DefaultEmailAPIURL is the Resend transactional email endpoint.
const DefaultEmailAPIURL = "https://api.resend.com/emails"

// EmailSender renders notifications as HTML email and submits them through a
// transactional email API keyed by recipient address.
type EmailSender struct {
	apiURL      string
	apiKey      string
	from        string
	explorerURL string
	client      *http.Client
	logger      *zap.Logger
}

var _ Sender = (*EmailSender)(nil)

func NewEmailSender(apiURL, apiKey, from, explorerURL string, logger *zap.Logger) *EmailSender {
	if apiURL == "" {
		apiURL = DefaultEmailAPIURL
	}
	return &EmailSender{
		apiURL:      apiURL,
		apiKey:      apiKey,
		from:        from,
		explorerURL: explorerURL,
		client:      &http.Client{Timeout: 10 * time.Second},
		logger:      logger,
	}
}

func (s *EmailSender) Name() string {
	return "email"
}

// Send submits the notification email. Failures are logged and reported as
// false; the API key is never logged.
func (s *EmailSender) Send(ctx context.Context, toEmail string, n Notification) bool {
	body, err := json.Marshal(map[string]interface{}{
		"from":    s.from,
		"to":      []string{toEmail},
		"subject": fmt.Sprintf("%s %s", n.Category.Emoji(), n.Title),
		"html":    s.renderHTML(n),
	})
	if err != nil {
		s.logger.Error("email payload marshal failed", zap.Error(err))
		return s.record(false)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.apiURL, bytes.NewReader(body))
	if err != nil {
		s.logger.Error("email request build failed", zap.Error(err))
		return s.record(false)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.Error("email notification failed",
			zap.String("title", n.Title),
			zap.String("to", toEmail),
			zap.Error(err))
		return s.record(false)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		s.logger.Error("email notification rejected",
			zap.String("title", n.Title),
			zap.String("to", toEmail),
			zap.Int("status", resp.StatusCode))
		return s.record(false)
	}

	s.logger.Info("email notification sent",
		zap.String("category", string(n.Category)),
		zap.String("title", n.Title),
		zap.String("to", toEmail))
	return s.record(true)
}

func (s *EmailSender) record(ok bool) bool {
	status := "sent"
	if !ok {
		status = "failed"
	}
	metrics.NotificationsSent.WithLabelValues(s.Name(), status).Inc()
	return ok
}

func (s *EmailSender) renderHTML(n Notification) string {
	var b strings.Builder

	b.WriteString(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto; background: #1a1a2e; color: #fff; padding: 20px; border-radius: 12px;">`)
	fmt.Fprintf(&b, `<div style="text-align: center; margin-bottom: 20px;"><h1 style="color: #a855f7; margin: 0;">%s StackPulse Alert</h1></div>`, n.Category.Emoji())
	fmt.Fprintf(&b, `<div style="background: #16213e; padding: 20px; border-radius: 8px; margin-bottom: 20px;"><h2 style="color: #fff; margin-top: 0;">%s</h2><p style="color: #94a3b8; line-height: 1.6;">%s</p></div>`,
		html.EscapeString(n.Title), html.EscapeString(n.Message))

	if len(n.Data) > 0 {
		b.WriteString(`<div style="background: #16213e; padding: 20px; border-radius: 8px; margin-bottom: 20px;"><h3 style="color: #a855f7; margin-top: 0;">Details</h3><table style="width: 100%; color: #fff;">`)
		for _, field := range n.Data {
			fmt.Fprintf(&b, `<tr><td style="padding: 8px 0; color: #94a3b8;">%s</td><td style="padding: 8px 0; text-align: right;">%s</td></tr>`,
				html.EscapeString(field.Label), html.EscapeString(field.Value))
		}
		b.WriteString(`</table></div>`)
	}

	if n.TxHash != "" {
		fmt.Fprintf(&b, `<div style="text-align: center; margin-top: 20px;"><a href="%s" style="display: inline-block; background: linear-gradient(to right, #a855f7, #3b82f6); color: #fff; padding: 12px 24px; border-radius: 8px; text-decoration: none; font-weight: bold;">View Transaction</a></div>`,
			ExplorerTxURL(s.explorerURL, n.TxHash))
	}

	b.WriteString(`<div style="text-align: center; margin-top: 30px; padding-top: 20px; border-top: 1px solid #374151;"><p style="color: #6b7280; font-size: 12px;">You received this alert from StackPulse.</p></div></div>`)
	return b.String()
}
