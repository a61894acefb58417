// Package store holds user notification preferences and user-defined alert
// rules behind a backend-agnostic interface.
package store

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned when a preference record or alert rule does not
// exist.
var ErrNotFound = errors.New("store: not found")

// DefaultEnabledAlerts is the category set enabled on first preference save:
// every category, so targeted notifications (subscription, alert, badge)
// reach a user who has not customized anything.
var DefaultEnabledAlerts = []string{
	"whale", "contract", "nft", "token", "swap",
	"subscription", "alert", "fee", "badge",
}

// UserPreferences is a user's notification configuration keyed by Stacks
// address. Channel fields are destination identifiers; an empty field means
// the channel is not configured.
type UserPreferences struct {
	Address       string    `json:"address"`
	Username      string    `json:"username,omitempty"`
	Email         string    `json:"email,omitempty"`
	Discord       string    `json:"discord,omitempty"`
	Telegram      string    `json:"telegram,omitempty"`
	EnabledAlerts []string  `json:"enabledAlerts"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// AlertsEnabled reports whether the user opted in to a category.
func (p *UserPreferences) AlertsEnabled(category string) bool {
	for _, c := range p.EnabledAlerts {
		if c == category {
			return true
		}
	}
	return false
}

// PreferencesUpdate is a partial preference record. Empty fields retain the
// stored value; a nil EnabledAlerts keeps the stored (or default) set.
type PreferencesUpdate struct {
	Address       string   `json:"address"`
	Username      string   `json:"username"`
	Email         string   `json:"email"`
	Discord       string   `json:"discord"`
	Telegram      string   `json:"telegram"`
	EnabledAlerts []string `json:"enabledAlerts"`
}

// AlertRule is a user-defined alert. TriggerCount is maintained by the
// on-chain contract and surfaced through webhooks; the store never
// increments it on its own.
type AlertRule struct {
	ID            int64     `json:"id"`
	Type          string    `json:"type"`
	Name          string    `json:"name"`
	Threshold     float64   `json:"threshold"`
	TargetAddress string    `json:"targetAddress,omitempty"`
	Enabled       bool      `json:"enabled"`
	TriggerCount  int       `json:"triggerCount"`
	TxID          string    `json:"txId,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}

// AlertInput carries the caller-supplied fields of a new alert rule.
type AlertInput struct {
	Type          string  `json:"type"`
	Name          string  `json:"name"`
	Threshold     float64 `json:"threshold"`
	TargetAddress string  `json:"targetAddress"`
	TxID          string  `json:"txId"`
}

// AlertUpdate is a partial alert edit; nil fields are left unchanged.
type AlertUpdate struct {
	Type          *string  `json:"type"`
	Name          *string  `json:"name"`
	Threshold     *float64 `json:"threshold"`
	TargetAddress *string  `json:"targetAddress"`
	Enabled       *bool    `json:"enabled"`
	TxID          *string  `json:"txId"`
}

// DefaultAlertThreshold applies when an alert is created without one.
const DefaultAlertThreshold = 10000

// Store is the preference and alert repository. The in-memory backend never
// fails; the error returns exist so a durable backend can substitute without
// touching the pipeline.
type Store interface {
	UpsertPreferences(ctx context.Context, update PreferencesUpdate) (*UserPreferences, error)
	GetPreferences(ctx context.Context, address string) (*UserPreferences, error)
	ListPreferences(ctx context.Context) ([]*UserPreferences, error)
	DeletePreferences(ctx context.Context, address string) (bool, error)

	CreateAlert(ctx context.Context, address string, input AlertInput) (*AlertRule, error)
	ListAlerts(ctx context.Context, address string) ([]*AlertRule, error)
	UpdateAlert(ctx context.Context, address string, id int64, update AlertUpdate) (*AlertRule, error)
	DeleteAlert(ctx context.Context, address string, id int64) error
}

// mergePreferences applies update over existing (which may be nil) using the
// upsert semantics: empty update fields keep stored values and a first save
// gets the default category set.
func mergePreferences(existing *UserPreferences, update PreferencesUpdate, now time.Time) *UserPreferences {
	merged := &UserPreferences{
		Address:   update.Address,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if existing != nil {
		*merged = *existing
		merged.UpdatedAt = now
	}
	if update.Username != "" {
		merged.Username = update.Username
	}
	if update.Email != "" {
		merged.Email = update.Email
	}
	if update.Discord != "" {
		merged.Discord = update.Discord
	}
	if update.Telegram != "" {
		merged.Telegram = update.Telegram
	}
	if update.EnabledAlerts != nil {
		merged.EnabledAlerts = append([]string(nil), update.EnabledAlerts...)
	}
	if merged.EnabledAlerts == nil {
		merged.EnabledAlerts = append([]string(nil), DefaultEnabledAlerts...)
	}
	return merged
}

// applyAlertUpdate applies a partial edit in place.
func applyAlertUpdate(rule *AlertRule, update AlertUpdate) {
	if update.Type != nil {
		rule.Type = *update.Type
	}
	if update.Name != nil {
		rule.Name = *update.Name
	}
	if update.Threshold != nil {
		rule.Threshold = *update.Threshold
	}
	if update.TargetAddress != nil {
		rule.TargetAddress = *update.TargetAddress
	}
	if update.Enabled != nil {
		rule.Enabled = *update.Enabled
	}
	if update.TxID != nil {
		rule.TxID = *update.TxID
	}
}
