package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shenikar/ghostnet/internal/models"
	"github.com/shenikar/ghostnet/internal/service"
)

const (
	rolesCacheKey    = "catalog:roles"
	statusesCacheKey = "catalog:statuses"
)

// CatalogCache кеширует справочники ролей и статусов в Redis.
// Справочники меняются редко, переходы читают их на каждый запрос.
type CatalogCache struct {
	client *redis.Client
	ttl    time.Duration
}

// Compile-time check that CatalogCache implements service.CatalogCache.
var _ service.CatalogCache = (*CatalogCache)(nil)

func NewCatalogCache(client *redis.Client, ttl time.Duration) *CatalogCache {
	return &CatalogCache{
		client: client,
		ttl:    ttl,
	}
}

func (c *CatalogCache) GetRoles(ctx context.Context) ([]*models.Role, error) {
	var roles []*models.Role
	if err := c.get(ctx, rolesCacheKey, &roles); err != nil {
		return nil, err
	}
	return roles, nil
}

func (c *CatalogCache) SetRoles(ctx context.Context, roles []*models.Role) error {
	return c.set(ctx, rolesCacheKey, roles)
}

func (c *CatalogCache) GetStatuses(ctx context.Context) ([]*models.Status, error) {
	var statuses []*models.Status
	if err := c.get(ctx, statusesCacheKey, &statuses); err != nil {
		return nil, err
	}
	return statuses, nil
}

func (c *CatalogCache) SetStatuses(ctx context.Context, statuses []*models.Status) error {
	return c.set(ctx, statusesCacheKey, statuses)
}

// Invalidate удаляет оба справочника из кеша
func (c *CatalogCache) Invalidate(ctx context.Context) error {
	if err := c.client.Del(ctx, rolesCacheKey, statusesCacheKey).Err(); err != nil {
		return fmt.Errorf("failed to invalidate catalog cache: %w", err)
	}
	return nil
}

// get оставляет dest пустым при промахе
func (c *CatalogCache) get(ctx context.Context, key string, dest any) error {
	payload, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read %s from cache: %w", key, err)
	}
	if err := json.Unmarshal(payload, dest); err != nil {
		return fmt.Errorf("failed to decode %s from cache: %w", key, err)
	}
	return nil
}

func (c *CatalogCache) set(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s for cache: %w", key, err)
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s to cache: %w", key, err)
	}
	return nil
}
