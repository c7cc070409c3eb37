package cache

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// AnswerCache memoizes composed query responses in Redis, keyed by normalized
// query + resolved fund + as-of date. Entries carry a TTL and are invalidated
// per fund when ingestion commits new transactions, since a metrics snapshot
// is stale the moment the fund's transaction set changes. The cache is an
// optimization layer only: every method degrades to a miss on Redis errors.
type AnswerCache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func NewAnswerCache(client *redisv9.Client, ttl time.Duration) *AnswerCache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &AnswerCache{client: client, ttl: ttl}
}

// Get loads a cached response into dest. Returns false on miss or any Redis
// failure.
func (c *AnswerCache) Get(ctx context.Context, query string, fundID *uint, asOf string, dest interface{}) bool {
	if c.client == nil {
		return false
	}
	raw, err := c.client.Get(ctx, c.answerKey(query, fundID, asOf)).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (c *AnswerCache) Set(ctx context.Context, query string, fundID *uint, asOf string, value interface{}) error {
	if c.client == nil {
		return nil
	}
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("marshal cached answer failed: %w", err)
	}

	key := c.answerKey(query, fundID, asOf)
	pipe := c.client.TxPipeline()
	pipe.Set(ctx, key, payload, c.ttl)
	fundSet := c.fundSetKey(fundID)
	pipe.SAdd(ctx, fundSet, key)
	pipe.Expire(ctx, fundSet, c.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis set answer failed: %w", err)
	}
	return nil
}

// InvalidateFund drops every cached answer touching the fund, plus the
// fund-unscoped answers (those may have drawn on the fund's documents).
func (c *AnswerCache) InvalidateFund(ctx context.Context, fundID uint) error {
	if c.client == nil {
		return nil
	}
	for _, setKey := range []string{c.fundSetKey(&fundID), c.fundSetKey(nil)} {
		keys, err := c.client.SMembers(ctx, setKey).Result()
		if err != nil {
			return fmt.Errorf("redis list fund answer keys failed: %w", err)
		}
		if len(keys) > 0 {
			if err := c.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis invalidate fund answers failed: %w", err)
			}
		}
		if err := c.client.Del(ctx, setKey).Err(); err != nil {
			return fmt.Errorf("redis drop fund answer set failed: %w", err)
		}
	}
	return nil
}

func (c *AnswerCache) answerKey(query string, fundID *uint, asOf string) string {
	normalized := strings.ToLower(strings.Join(strings.Fields(query), " "))
	fund := uint(0)
	if fundID != nil {
		fund = *fundID
	}
	sum := md5.Sum([]byte(fmt.Sprintf("%s|%d|%s", normalized, fund, asOf)))
	return "answer:" + hex.EncodeToString(sum[:])
}

func (c *AnswerCache) fundSetKey(fundID *uint) string {
	fund := uint(0)
	if fundID != nil {
		fund = *fundID
	}
	return fmt.Sprintf("answer:fund:%d", fund)
}
