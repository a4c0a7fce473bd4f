// Package redisdb keeps ephemeral session bookkeeping and the sliding-window
// rate-limit state. Nothing here is required for correctness of the real-time
// core; callers treat failures as best-effort.
package redisdb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/s21platform/chat-server/internal/config"
	"github.com/s21platform/chat-server/internal/model"
)

const sessionTTL = 7 * 24 * time.Hour

type Client struct {
	rdb *redis.Client
}

func New(cfg *config.Config) *Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", cfg.Redis.Host, cfg.Redis.Port),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	return &Client{rdb: rdb}
}

func (c *Client) Close() {
	_ = c.rdb.Close()
}

func sessionKey(userID uuid.UUID) string {
	return "session:" + userID.String()
}

func (c *Client) SetSession(ctx context.Context, session model.Session) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %v", err)
	}

	if err = c.rdb.Set(ctx, sessionKey(session.UserID), data, sessionTTL).Err(); err != nil {
		return fmt.Errorf("failed to store session: %v", err)
	}

	return nil
}

func (c *Client) GetSession(ctx context.Context, userID uuid.UUID) (*model.Session, error) {
	data, err := c.rdb.Get(ctx, sessionKey(userID)).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get session: %v", err)
	}

	var session model.Session
	if err = json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %v", err)
	}

	return &session, nil
}

// TouchSession refreshes last_active for an existing session. Missing
// sessions are ignored.
func (c *Client) TouchSession(ctx context.Context, userID uuid.UUID) error {
	session, err := c.GetSession(ctx, userID)
	if err != nil || session == nil {
		return err
	}

	session.LastActive = time.Now()

	return c.SetSession(ctx, *session)
}

func (c *Client) DeleteSession(ctx context.Context, userID uuid.UUID) error {
	if err := c.rdb.Del(ctx, sessionKey(userID)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %v", err)
	}

	return nil
}

// Allow implements sliding-window rate limiting over a sorted set, one
// member per request scored by timestamp.
func (c *Client) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := time.Now()
	windowStart := now.Add(-window)
	redisKey := "ratelimit:" + key

	pipe := c.rdb.TxPipeline()
	pipe.ZRemRangeByScore(ctx, redisKey, "-inf", fmt.Sprintf("%d", windowStart.UnixNano()))
	count := pipe.ZCard(ctx, redisKey)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count.Val() >= int64(limit) {
		return false, nil
	}

	pipe = c.rdb.TxPipeline()
	pipe.ZAdd(ctx, redisKey, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: fmt.Sprintf("%d:%s", now.UnixNano(), uuid.NewString()),
	})
	pipe.Expire(ctx, redisKey, window)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("failed to record rate limit hit: %v", err)
	}

	return true, nil
}
