package store

import (
	"context"
	"sync"
	"time"
)

// MemoryStore keeps all records in process memory. State does not survive a
// restart; it exists for single-instance deployments and tests.
type MemoryStore struct {
	mu          sync.RWMutex
	preferences map[string]*UserPreferences
	alerts      map[string][]*AlertRule
	nextAlertID int64
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		preferences: make(map[string]*UserPreferences),
		alerts:      make(map[string][]*AlertRule),
		// Seeded from the clock so ids stay monotonic across restarts.
		nextAlertID: time.Now().UnixMilli(),
	}
}

func (s *MemoryStore) UpsertPreferences(_ context.Context, update PreferencesUpdate) (*UserPreferences, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	merged := mergePreferences(s.preferences[update.Address], update, time.Now().UTC())
	s.preferences[update.Address] = merged
	return copyPreferences(merged), nil
}

func (s *MemoryStore) GetPreferences(_ context.Context, address string) (*UserPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	prefs, ok := s.preferences[address]
	if !ok {
		return nil, ErrNotFound
	}
	return copyPreferences(prefs), nil
}

func (s *MemoryStore) ListPreferences(_ context.Context) ([]*UserPreferences, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*UserPreferences, 0, len(s.preferences))
	for _, prefs := range s.preferences {
		out = append(out, copyPreferences(prefs))
	}
	return out, nil
}

func (s *MemoryStore) DeletePreferences(_ context.Context, address string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.preferences[address]
	delete(s.preferences, address)
	return ok, nil
}

func (s *MemoryStore) CreateAlert(_ context.Context, address string, input AlertInput) (*AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	threshold := input.Threshold
	if threshold == 0 {
		threshold = DefaultAlertThreshold
	}

	rule := &AlertRule{
		ID:            s.nextAlertID,
		Type:          input.Type,
		Name:          input.Name,
		Threshold:     threshold,
		TargetAddress: input.TargetAddress,
		Enabled:       true,
		TxID:          input.TxID,
		CreatedAt:     time.Now().UTC(),
	}
	s.nextAlertID++

	s.alerts[address] = append(s.alerts[address], rule)
	out := *rule
	return &out, nil
}

func (s *MemoryStore) ListAlerts(_ context.Context, address string) ([]*AlertRule, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rules := s.alerts[address]
	out := make([]*AlertRule, 0, len(rules))
	for _, rule := range rules {
		cp := *rule
		out = append(out, &cp)
	}
	return out, nil
}

func (s *MemoryStore) UpdateAlert(_ context.Context, address string, id int64, update AlertUpdate) (*AlertRule, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, rule := range s.alerts[address] {
		if rule.ID == id {
			applyAlertUpdate(rule, update)
			cp := *rule
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) DeleteAlert(_ context.Context, address string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rules := s.alerts[address]
	for i, rule := range rules {
		if rule.ID == id {
			s.alerts[address] = append(rules[:i], rules[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func copyPreferences(p *UserPreferences) *UserPreferences {
	cp := *p
	cp.EnabledAlerts = append([]string(nil), p.EnabledAlerts...)
	return &cp
}
