package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"kalamitraah/internal/usecase"

	"github.com/redis/go-redis/v9"
)

const (
	baseTTL = 15 * time.Minute
	// outlives any cached view so a write-back cannot see a reset counter
	genTTL = 24 * time.Hour
)

// CartRedisCache stores rendered cart views under cart:<buyerID> and an
// invalidation counter under cart:gen:<buyerID>.
type CartRedisCache struct {
	client  *redis.Client
	baseTTL time.Duration
}

var _ usecase.CartCache = (*CartRedisCache)(nil)

func NewCartRedisCache(client *redis.Client) *CartRedisCache {
	return &CartRedisCache{client: client, baseTTL: baseTTL}
}

// NewClient parses a redis:// URL and checks the server answers.
func NewClient(ctx context.Context, url string) (*redis.Client, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return client, nil
}

func (c *CartRedisCache) Get(ctx context.Context, buyerID int64) (usecase.CartView, bool, error) {
	data, err := c.client.Get(ctx, cacheKey(buyerID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return usecase.CartView{}, false, nil
	}
	if err != nil {
		return usecase.CartView{}, false, fmt.Errorf("redis get failed: %w", err)
	}

	var view usecase.CartView
	if err := json.Unmarshal(data, &view); err != nil {
		return usecase.CartView{}, false, fmt.Errorf("unmarshal cart failed: %w", err)
	}
	return view, true, nil
}

// Generation returns the invalidation counter for a buyer. A missing key
// reads as zero.
func (c *CartRedisCache) Generation(ctx context.Context, buyerID int64) (int64, error) {
	gen, err := c.client.Get(ctx, genKey(buyerID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("redis get generation failed: %w", err)
	}
	return gen, nil
}

// Set writes the view only while the buyer's generation still equals gen.
// A view rendered before a concurrent Invalidate is silently dropped.
func (c *CartRedisCache) Set(ctx context.Context, buyerID int64, gen int64, view usecase.CartView) error {
	data, err := json.Marshal(view)
	if err != nil {
		return fmt.Errorf("marshal cart failed: %w", err)
	}

	// spread expiry so carts cached together do not expire together
	ttl := c.baseTTL + time.Duration(rand.Intn(5))*time.Minute
	gk := genKey(buyerID)
	err = c.client.Watch(ctx, func(tx *redis.Tx) error {
		current, err := tx.Get(ctx, gk).Int64()
		if errors.Is(err, redis.Nil) {
			current, err = 0, nil
		}
		if err != nil {
			return err
		}
		if current != gen {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, cacheKey(buyerID), data, ttl)
			return nil
		})
		return err
	}, gk)
	if errors.Is(err, redis.TxFailedErr) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("redis set failed: %w", err)
	}
	return nil
}

// Invalidate drops the cached view and bumps the generation so in-flight
// readers cannot write back what they loaded before the change.
func (c *CartRedisCache) Invalidate(ctx context.Context, buyerID int64) error {
	_, err := c.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, cacheKey(buyerID))
		pipe.Incr(ctx, genKey(buyerID))
		pipe.Expire(ctx, genKey(buyerID), genTTL)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis invalidate failed: %w", err)
	}
	return nil
}

func cacheKey(buyerID int64) string {
	return fmt.Sprintf("cart:%d", buyerID)
}

func genKey(buyerID int64) string {
	return fmt.Sprintf("cart:gen:%d", buyerID)
}
