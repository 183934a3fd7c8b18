package cache

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	redisv9 "github.com/redis/go-redis/v9"

	"kpbu-assistant/internal/model"
)

const historyKeyPrefix = "kpbu:chat:history:"

// HistoryCache keeps the most recent chat turns of a session in a Redis list,
// newest last.
type HistoryCache struct {
	client   redisv9.Cmdable
	ttl      time.Duration
	maxTurns int
}

func NewHistoryCache(client redisv9.Cmdable, ttl time.Duration, maxTurns int) *HistoryCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if maxTurns <= 0 {
		maxTurns = 50
	}
	return &HistoryCache{
		client:   client,
		ttl:      ttl,
		maxTurns: maxTurns,
	}
}

// Append adds a turn, drops turns beyond the limit and refreshes the TTL.
func (c *HistoryCache) Append(ctx context.Context, sessionID string, turn model.ChatTurn) error {
	key, err := historyKey(sessionID)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(turn)
	if err != nil {
		return fmt.Errorf("marshal chat turn failed: %w", err)
	}

	pipe := c.client.TxPipeline()
	pipe.RPush(ctx, key, payload)
	pipe.LTrim(ctx, key, int64(-c.maxTurns), -1)
	pipe.Expire(ctx, key, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis append history failed: %w", err)
	}
	return nil
}

// Recent returns up to limit of the latest turns in chronological order.
// limit <= 0 returns everything kept.
func (c *HistoryCache) Recent(ctx context.Context, sessionID string, limit int) ([]model.ChatTurn, error) {
	key, err := historyKey(sessionID)
	if err != nil {
		return nil, err
	}
	start := int64(0)
	if limit > 0 {
		start = int64(-limit)
	}
	raw, err := c.client.LRange(ctx, key, start, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis read history failed: %w", err)
	}

	turns := make([]model.ChatTurn, 0, len(raw))
	for _, item := range raw {
		var turn model.ChatTurn
		if err := json.Unmarshal([]byte(item), &turn); err != nil {
			return nil, fmt.Errorf("unmarshal cached chat turn failed: %w", err)
		}
		turns = append(turns, turn)
	}
	return turns, nil
}

func (c *HistoryCache) Delete(ctx context.Context, sessionID string) error {
	key, err := historyKey(sessionID)
	if err != nil {
		return err
	}
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete history failed: %w", err)
	}
	return nil
}

func historyKey(sessionID string) (string, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return "", fmt.Errorf("session id is required")
	}
	return historyKeyPrefix + sessionID, nil
}
