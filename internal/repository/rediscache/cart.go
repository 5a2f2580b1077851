// Package rediscache decorates the cart repository with a Redis cache-aside
// layer for the read path. Writes go straight to Postgres and invalidate the
// cached cart; cache failures degrade to the underlying store.
package rediscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/BothSann/kdmv-sub002/internal/domain"
	"github.com/BothSann/kdmv-sub002/internal/repository"
)

const keyPrefix = "cart:"

// CartCache wraps a CartRepository with cache-aside reads.
type CartCache struct {
	inner  repository.CartRepository
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

// NewCartCache creates the caching decorator.
func NewCartCache(inner repository.CartRepository, client *redis.Client, ttl time.Duration, logger *slog.Logger) *CartCache {
	return &CartCache{
		inner:  inner,
		client: client,
		ttl:    ttl,
		logger: logger,
	}
}

// GetByUserID returns the cached cart when present, otherwise reads through
// to the underlying store and populates the cache.
func (c *CartCache) GetByUserID(ctx context.Context, userID string) ([]domain.CartLine, error) {
	key := keyPrefix + userID

	data, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var lines []domain.CartLine
		if err := json.Unmarshal(data, &lines); err == nil {
			return lines, nil
		}
		// Corrupt entry; fall through to the store and rewrite it.
		c.logger.WarnContext(ctx, "corrupt cached cart, refetching",
			slog.String("user_id", userID),
		)
	} else if !errors.Is(err, redis.Nil) {
		c.logger.WarnContext(ctx, "cart cache read failed",
			slog.String("user_id", userID),
			slog.String("error", err.Error()),
		)
	}

	lines, err := c.inner.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(lines); err == nil {
		if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.WarnContext(ctx, "cart cache write failed",
				slog.String("user_id", userID),
				slog.String("error", err.Error()),
			)
		}
	}

	return lines, nil
}

// AddLine writes through to the store and invalidates the cached cart.
func (c *CartCache) AddLine(ctx context.Context, userID, variantID string, quantity int) (*domain.CartLine, error) {
	line, err := c.inner.AddLine(ctx, userID, variantID, quantity)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, userID)
	return line, nil
}

// UpdateQuantity writes through to the store and invalidates the cached cart.
func (c *CartCache) UpdateQuantity(ctx context.Context, userID, variantID string, quantity int) (*domain.CartLine, error) {
	line, err := c.inner.UpdateQuantity(ctx, userID, variantID, quantity)
	if err != nil {
		return nil, err
	}
	c.invalidate(ctx, userID)
	return line, nil
}

// RemoveLine writes through to the store and invalidates the cached cart.
func (c *CartCache) RemoveLine(ctx context.Context, userID, variantID string) error {
	if err := c.inner.RemoveLine(ctx, userID, variantID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

// Clear writes through to the store and invalidates the cached cart.
func (c *CartCache) Clear(ctx context.Context, userID string) error {
	if err := c.inner.Clear(ctx, userID); err != nil {
		return err
	}
	c.invalidate(ctx, userID)
	return nil
}

func (c *CartCache) invalidate(ctx context.Context, userID string) {
	if err := c.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		c.logger.WarnContext(ctx, "cart cache invalidation failed",
			slog.String("user_id", userID),
			slog.String("error", fmt.Sprintf("%v", err)),
		)
	}
}
