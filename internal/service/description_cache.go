package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DescriptionCache guarda la descripcion derivada de personalidad.
// Toda escritura de rasgos o nivel debe invalidarla: una ventana de
// staleness mayor a un request no es aceptable, el flujo de celebracion
// lee el nivel recien subido.
type DescriptionCache interface {
	Get(ctx context.Context, kidID string) (string, bool)
	Set(ctx context.Context, kidID string, description string)
	Invalidate(ctx context.Context, kidID string)
}

type memoryDescriptionCache struct {
	mu    sync.Mutex
	items map[string]string
}

func NewMemoryDescriptionCache() DescriptionCache {
	return &memoryDescriptionCache{items: make(map[string]string)}
}

func (c *memoryDescriptionCache) Get(_ context.Context, kidID string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	desc, ok := c.items[kidID]
	return desc, ok
}

func (c *memoryDescriptionCache) Set(_ context.Context, kidID string, description string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items[kidID] = description
}

func (c *memoryDescriptionCache) Invalidate(_ context.Context, kidID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.items, kidID)
}

type redisDescriptionCache struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisDescriptionCache(client *redis.Client) DescriptionCache {
	if client == nil {
		return nil
	}
	return &redisDescriptionCache{
		client: client,
		prefix: "personality:desc:",
		ttl:    time.Hour,
	}
}

func (c *redisDescriptionCache) Get(ctx context.Context, kidID string) (string, bool) {
	if strings.TrimSpace(kidID) == "" {
		return "", false
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	desc, err := c.client.Get(ctx, c.prefix+kidID).Result()
	if err != nil {
		return "", false
	}
	return desc, true
}

func (c *redisDescriptionCache) Set(ctx context.Context, kidID string, description string) {
	if strings.TrimSpace(kidID) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = c.client.Set(ctx, c.prefix+kidID, description, c.ttl).Err()
}

func (c *redisDescriptionCache) Invalidate(ctx context.Context, kidID string) {
	if strings.TrimSpace(kidID) == "" {
		return
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	_ = c.client.Del(ctx, c.prefix+kidID).Err()
}
