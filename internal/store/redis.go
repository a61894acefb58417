package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// RedisStore is the durable Store backend. Preference records are JSON
// values keyed by address, alert rules live in a per-address hash keyed by
// rule id, and rule ids come from a shared counter.
type RedisStore struct {
	client *redis.Client
	prefix string
	logger *zap.Logger
}

var _ Store = (*RedisStore)(nil)

func NewRedisStore(client *redis.Client, prefix string, logger *zap.Logger) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		logger: logger,
	}
}

func (s *RedisStore) userKey(address string) string {
	return fmt.Sprintf("%s:user:%s", s.prefix, address)
}

func (s *RedisStore) userIndexKey() string {
	return s.prefix + ":users"
}

func (s *RedisStore) alertsKey(address string) string {
	return fmt.Sprintf("%s:alerts:%s", s.prefix, address)
}

func (s *RedisStore) alertIDKey() string {
	return s.prefix + ":alert-id"
}

func (s *RedisStore) UpsertPreferences(ctx context.Context, update PreferencesUpdate) (*UserPreferences, error) {
	existing, err := s.GetPreferences(ctx, update.Address)
	if err != nil && err != ErrNotFound {
		return nil, err
	}

	merged := mergePreferences(existing, update, time.Now().UTC())
	data, err := json.Marshal(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal preferences: %w", err)
	}

	pipe := s.client.TxPipeline()
	pipe.Set(ctx, s.userKey(update.Address), data, 0)
	pipe.SAdd(ctx, s.userIndexKey(), update.Address)
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("failed to save preferences: %w", err)
	}

	s.logger.Debug("preferences saved", zap.String("address", update.Address))
	return merged, nil
}

func (s *RedisStore) GetPreferences(ctx context.Context, address string) (*UserPreferences, error) {
	data, err := s.client.Get(ctx, s.userKey(address)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get preferences: %w", err)
	}

	var prefs UserPreferences
	if err := json.Unmarshal(data, &prefs); err != nil {
		return nil, fmt.Errorf("failed to unmarshal preferences: %w", err)
	}
	return &prefs, nil
}

func (s *RedisStore) ListPreferences(ctx context.Context) ([]*UserPreferences, error) {
	addresses, err := s.client.SMembers(ctx, s.userIndexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}

	out := make([]*UserPreferences, 0, len(addresses))
	for _, address := range addresses {
		prefs, err := s.GetPreferences(ctx, address)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, prefs)
	}
	return out, nil
}

func (s *RedisStore) DeletePreferences(ctx context.Context, address string) (bool, error) {
	pipe := s.client.TxPipeline()
	del := pipe.Del(ctx, s.userKey(address))
	pipe.SRem(ctx, s.userIndexKey(), address)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to delete preferences: %w", err)
	}
	return del.Val() > 0, nil
}

func (s *RedisStore) CreateAlert(ctx context.Context, address string, input AlertInput) (*AlertRule, error) {
	id, err := s.client.Incr(ctx, s.alertIDKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to allocate alert id: %w", err)
	}

	threshold := input.Threshold
	if threshold == 0 {
		threshold = DefaultAlertThreshold
	}

	rule := &AlertRule{
		ID:            id,
		Type:          input.Type,
		Name:          input.Name,
		Threshold:     threshold,
		TargetAddress: input.TargetAddress,
		Enabled:       true,
		TxID:          input.TxID,
		CreatedAt:     time.Now().UTC(),
	}

	if err := s.saveAlert(ctx, address, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *RedisStore) ListAlerts(ctx context.Context, address string) ([]*AlertRule, error) {
	entries, err := s.client.HGetAll(ctx, s.alertsKey(address)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}

	out := make([]*AlertRule, 0, len(entries))
	for _, data := range entries {
		var rule AlertRule
		if err := json.Unmarshal([]byte(data), &rule); err != nil {
			s.logger.Warn("skipping undecodable alert rule", zap.String("address", address), zap.Error(err))
			continue
		}
		out = append(out, &rule)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *RedisStore) UpdateAlert(ctx context.Context, address string, id int64, update AlertUpdate) (*AlertRule, error) {
	rule, err := s.getAlert(ctx, address, id)
	if err != nil {
		return nil, err
	}

	applyAlertUpdate(rule, update)
	if err := s.saveAlert(ctx, address, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *RedisStore) DeleteAlert(ctx context.Context, address string, id int64) error {
	removed, err := s.client.HDel(ctx, s.alertsKey(address), strconv.FormatInt(id, 10)).Result()
	if err != nil {
		return fmt.Errorf("failed to delete alert: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *RedisStore) getAlert(ctx context.Context, address string, id int64) (*AlertRule, error) {
	data, err := s.client.HGet(ctx, s.alertsKey(address), strconv.FormatInt(id, 10)).Bytes()
	if err == redis.Nil {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get alert: %w", err)
	}

	var rule AlertRule
	if err := json.Unmarshal(data, &rule); err != nil {
		return nil, fmt.Errorf("failed to unmarshal alert: %w", err)
	}
	return &rule, nil
}

func (s *RedisStore) saveAlert(ctx context.Context, address string, rule *AlertRule) error {
	data, err := json.Marshal(rule)
	if err != nil {
		return fmt.Errorf("failed to marshal alert: %w", err)
	}
	if err := s.client.HSet(ctx, s.alertsKey(address), strconv.FormatInt(rule.ID, 10), data).Err(); err != nil {
		return fmt.Errorf("failed to save alert: %w", err)
	}
	return nil
}
