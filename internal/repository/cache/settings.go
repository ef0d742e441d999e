// Package cache fronts hot, rarely written records with Redis.
package cache

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"time"

	"github.com/redis/go-redis/v9"

	"accelerator-portal/internal/common/logger"
	"accelerator-portal/internal/models"
)

const settingsKey = "settings:system"

type SettingsStore interface {
	Get(ctx context.Context) (models.SystemSettings, error)
	Update(ctx context.Context, s models.SystemSettings) (models.SystemSettings, error)
}

// Settings is a read-through cache over the settings table. Every phase decision reads
// the settings, so they are served from Redis until the next admin update. Redis
// failures fall back to the store.
type Settings struct {
	next   SettingsStore
	rdb    *redis.Client
	ttl    time.Duration
	logger logger.Logger
}

func NewSettings(next SettingsStore, rdb *redis.Client, ttl time.Duration, log logger.Logger) *Settings {
	return &Settings{next: next, rdb: rdb, ttl: ttl, logger: log}
}

func (c *Settings) Get(ctx context.Context) (models.SystemSettings, error) {
	raw, err := c.rdb.Get(ctx, settingsKey).Bytes()
	if err == nil {
		var s models.SystemSettings
		if err := json.Unmarshal(raw, &s); err == nil {
			return s, nil
		}
	} else if !stderrors.Is(err, redis.Nil) {
		c.logger.Warn("settings cache read failed", map[string]interface{}{"error": err.Error()})
	}

	s, err := c.next.Get(ctx)
	if err != nil {
		return models.SystemSettings{}, err
	}
	// SETNX: a read that raced an Update must not replace the value Update stored.
	if data, err := json.Marshal(s); err == nil {
		if err := c.rdb.SetNX(ctx, settingsKey, string(data), c.ttl).Err(); err != nil {
			c.logger.Warn("settings cache write failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return s, nil
}

// Update writes through and stores the saved value in the cache so the next decision
// sees the change. If the cache cannot be written the key is dropped instead.
func (c *Settings) Update(ctx context.Context, s models.SystemSettings) (models.SystemSettings, error) {
	saved, err := c.next.Update(ctx, s)
	if err != nil {
		return models.SystemSettings{}, err
	}
	data, err := json.Marshal(saved)
	if err == nil {
		err = c.rdb.Set(ctx, settingsKey, string(data), c.ttl).Err()
	}
	if err != nil {
		c.logger.Warn("settings cache write failed", map[string]interface{}{"error": err.Error()})
		if err := c.rdb.Del(ctx, settingsKey).Err(); err != nil {
			c.logger.Warn("settings cache invalidation failed", map[string]interface{}{"error": err.Error()})
		}
	}
	return saved, nil
}
