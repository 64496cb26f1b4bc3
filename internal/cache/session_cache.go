package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	redisv9 "github.com/redis/go-redis/v9"

	"path2prevention/internal/chat"
)

// SessionCache keeps chat sessions in Redis; every save refreshes the TTL so
// idle conversations expire on their own.
type SessionCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewSessionCache(client *redisv9.Client, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &SessionCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *SessionCache) Get(ctx context.Context, id string) (*chat.Session, error) {
	raw, err := c.client.Get(ctx, c.sessionKey(id)).Bytes()
	if err == redisv9.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session failed: %w", err)
	}

	var session chat.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("unmarshal cached session failed: %w", err)
	}
	return &session, nil
}

func (c *SessionCache) Save(ctx context.Context, session *chat.Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session failed: %w", err)
	}
	if err := c.client.Set(ctx, c.sessionKey(session.ID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("redis set session failed: %w", err)
	}
	return nil
}

func (c *SessionCache) Delete(ctx context.Context, id string) (bool, error) {
	n, err := c.client.Del(ctx, c.sessionKey(id)).Result()
	if err != nil {
		return false, fmt.Errorf("redis delete session failed: %w", err)
	}
	return n > 0, nil
}

func (c *SessionCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func (c *SessionCache) sessionKey(id string) string {
	return fmt.Sprintf("chat:session:%s", id)
}
