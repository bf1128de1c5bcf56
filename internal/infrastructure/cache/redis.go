package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/hszk-dev/streamdir/internal/domain/model"
	"github.com/hszk-dev/streamdir/internal/infrastructure/metrics"
)

const (
	// streamCacheKeyPrefix is the prefix for stream cache keys in Redis.
	streamCacheKeyPrefix = "stream:"
)

// mediaServerJSON is the JSON representation of a MediaServer for caching.
type mediaServerJSON struct {
	Quality  string `json:"quality"`
	Addr     uint32 `json:"addr"`
	Region   string `json:"region"`
	MediaURL string `json:"media_url"`
}

// streamJSON is the JSON representation of a Stream for caching.
// Using an explicit struct avoids coupling to domain model changes.
type streamJSON struct {
	Creator      string            `json:"creator"`
	Title        string            `json:"title"`
	Category     string            `json:"category"`
	IsPublic     bool              `json:"is_public"`
	IngestKey    string            `json:"ingest_key"`
	IngestAddr   string            `json:"ingest_addr"`
	ViewCount    int64             `json:"view_count"`
	StartedAt    string            `json:"started_at"`
	MediaServers []mediaServerJSON `json:"media_servers"`
}

// RedisStreamCache implements StreamCache using Redis as the backing store.
type RedisStreamCache struct {
	client *redis.Client
}

// NewRedisStreamCache creates a new Redis-backed stream cache.
func NewRedisStreamCache(client *redis.Client) *RedisStreamCache {
	return &RedisStreamCache{client: client}
}

var _ StreamCache = (*RedisStreamCache)(nil)

// Get retrieves a stream from Redis cache.
// Returns nil, nil on cache miss.
func (c *RedisStreamCache) Get(ctx context.Context, creator string) (*model.Stream, error) {
	data, err := c.client.Get(ctx, buildKey(creator)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusMiss).Inc()
			return nil, nil // Cache miss
		}
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError).Inc()
		return nil, fmt.Errorf("redis get: %w", err)
	}

	stream, err := deserialize(data)
	if err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusError).Inc()
		return nil, fmt.Errorf("deserialize stream: %w", err)
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpGet, metrics.CacheStatusHit).Inc()
	return stream, nil
}

// Set stores a stream in Redis cache with the specified TTL.
func (c *RedisStreamCache) Set(ctx context.Context, stream *model.Stream, ttl time.Duration) error {
	data, err := serialize(stream)
	if err != nil {
		return fmt.Errorf("serialize stream: %w", err)
	}

	if err := c.client.Set(ctx, buildKey(stream.Creator), data, ttl).Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusError).Inc()
		return fmt.Errorf("redis set: %w", err)
	}

	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpSet, metrics.CacheStatusSuccess).Inc()
	return nil
}

// Delete removes a creator's entry from Redis cache.
func (c *RedisStreamCache) Delete(ctx context.Context, creator string) error {
	if err := c.client.Del(ctx, buildKey(creator)).Err(); err != nil {
		metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusError).Inc()
		return fmt.Errorf("redis del: %w", err)
	}
	metrics.CacheOperationsTotal.WithLabelValues(metrics.CacheOpDelete, metrics.CacheStatusSuccess).Inc()
	return nil
}

// buildKey constructs the Redis key for a creator.
func buildKey(creator string) string {
	return streamCacheKeyPrefix + creator
}

// serialize converts a Stream to JSON bytes.
func serialize(stream *model.Stream) ([]byte, error) {
	servers := make([]mediaServerJSON, 0, len(stream.MediaServers))
	for _, ms := range stream.MediaServers {
		servers = append(servers, mediaServerJSON{
			Quality:  ms.Quality,
			Addr:     ms.Addr,
			Region:   ms.Region,
			MediaURL: ms.MediaURL,
		})
	}

	return json.Marshal(streamJSON{
		Creator:      stream.Creator,
		Title:        stream.Title,
		Category:     stream.Category,
		IsPublic:     stream.IsPublic,
		IngestKey:    stream.IngestKey,
		IngestAddr:   stream.IngestAddr,
		ViewCount:    stream.ViewCount,
		StartedAt:    stream.StartedAt.Format(time.RFC3339Nano),
		MediaServers: servers,
	})
}

// deserialize converts JSON bytes to a Stream.
func deserialize(data []byte) (*model.Stream, error) {
	var s streamJSON
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}

	startedAt, err := time.Parse(time.RFC3339Nano, s.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("parse started_at: %w", err)
	}

	servers := make([]model.MediaServer, 0, len(s.MediaServers))
	for _, ms := range s.MediaServers {
		servers = append(servers, model.MediaServer{
			Quality:  ms.Quality,
			Addr:     ms.Addr,
			Region:   ms.Region,
			MediaURL: ms.MediaURL,
		})
	}

	return &model.Stream{
		Creator:      s.Creator,
		Title:        s.Title,
		Category:     s.Category,
		IsPublic:     s.IsPublic,
		IngestKey:    s.IngestKey,
		IngestAddr:   s.IngestAddr,
		ViewCount:    s.ViewCount,
		StartedAt:    startedAt,
		MediaServers: servers,
	}, nil
}
