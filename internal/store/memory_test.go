package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testAddr = "SP2J6ZY48GV1EZ5V2V5RB9MP66SW86PYKKNRV9EJ7"

func TestMemoryStore_UpsertDefaults(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	prefs, err := s.UpsertPreferences(ctx, PreferencesUpdate{
		Address: testAddr,
		Email:   "user@example.com",
	})
	require.NoError(t, err)
	assert.Equal(t, testAddr, prefs.Address)
	assert.Equal(t, "user@example.com", prefs.Email)
	assert.Equal(t, DefaultEnabledAlerts, prefs.EnabledAlerts)
	assert.False(t, prefs.CreatedAt.IsZero())

	// Targeted categories must be on by default, or a fresh user never
	// receives subscription, alert, or badge notifications routed to them.
	for _, category := range []string{"subscription", "alert", "fee", "badge"} {
		assert.True(t, prefs.AlertsEnabled(category), category)
	}
}

func TestMemoryStore_UpsertMergesPartialUpdate(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.UpsertPreferences(ctx, PreferencesUpdate{
		Address: testAddr,
		Email:   "user@example.com",
		Discord: "hook-id",
	})
	require.NoError(t, err)

	// An update omitting email must not clear it.
	prefs, err := s.UpsertPreferences(ctx, PreferencesUpdate{
		Address:       testAddr,
		Telegram:      "12345",
		EnabledAlerts: []string{"whale"},
	})
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", prefs.Email)
	assert.Equal(t, "hook-id", prefs.Discord)
	assert.Equal(t, "12345", prefs.Telegram)
	assert.Equal(t, []string{"whale"}, prefs.EnabledAlerts)
	assert.True(t, prefs.AlertsEnabled("whale"))
	assert.False(t, prefs.AlertsEnabled("nft"))
}

func TestMemoryStore_GetAndDelete(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.GetPreferences(ctx, testAddr)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.UpsertPreferences(ctx, PreferencesUpdate{Address: testAddr})
	require.NoError(t, err)

	prefs, err := s.GetPreferences(ctx, testAddr)
	require.NoError(t, err)
	assert.Equal(t, testAddr, prefs.Address)

	removed, err := s.DeletePreferences(ctx, testAddr)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = s.DeletePreferences(ctx, testAddr)
	require.NoError(t, err)
	assert.False(t, removed)
}

func TestMemoryStore_ListCopies(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	_, err := s.UpsertPreferences(ctx, PreferencesUpdate{Address: testAddr})
	require.NoError(t, err)

	list, err := s.ListPreferences(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Mutating the returned record must not touch stored state.
	list[0].Email = "mutated@example.com"
	prefs, err := s.GetPreferences(ctx, testAddr)
	require.NoError(t, err)
	assert.Empty(t, prefs.Email)
}

func TestMemoryStore_AlertLifecycle(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	alert, err := s.CreateAlert(ctx, testAddr, AlertInput{
		Type: "whale",
		Name: "Big moves",
	})
	require.NoError(t, err)
	assert.Equal(t, float64(DefaultAlertThreshold), alert.Threshold)
	assert.True(t, alert.Enabled)
	assert.NotZero(t, alert.ID)

	second, err := s.CreateAlert(ctx, testAddr, AlertInput{Type: "nft", Threshold: 5})
	require.NoError(t, err)
	assert.Greater(t, second.ID, alert.ID)

	alerts, err := s.ListAlerts(ctx, testAddr)
	require.NoError(t, err)
	assert.Len(t, alerts, 2)

	disabled := false
	newName := "Quiet"
	updated, err := s.UpdateAlert(ctx, testAddr, alert.ID, AlertUpdate{
		Name:    &newName,
		Enabled: &disabled,
	})
	require.NoError(t, err)
	assert.Equal(t, "Quiet", updated.Name)
	assert.False(t, updated.Enabled)
	assert.Equal(t, "whale", updated.Type)

	require.NoError(t, s.DeleteAlert(ctx, testAddr, alert.ID))
	assert.ErrorIs(t, s.DeleteAlert(ctx, testAddr, alert.ID), ErrNotFound)

	_, err = s.UpdateAlert(ctx, testAddr, alert.ID, AlertUpdate{})
	assert.ErrorIs(t, err, ErrNotFound)
}
