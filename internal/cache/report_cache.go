package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/acoopRD/poc-finance/internal/models"
)

// ReportCacheStats tracks cache performance metrics.
type ReportCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.RWMutex
}

// RedisReportCache keeps the latest analysis report per symbol in Redis so
// API consumers read the last cycle's output without recomputing it.
type RedisReportCache struct {
	redis  *redis.Client
	ttl    time.Duration
	stats  *ReportCacheStats
	prefix string
}

// NewRedisReportCache creates a report cache with the given entry TTL.
func NewRedisReportCache(redisClient *redis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{
		redis:  redisClient,
		ttl:    ttl,
		stats:  &ReportCacheStats{},
		prefix: "analysis_report:",
	}
}

// Store writes the report as the latest entry for its symbol. It satisfies
// the pipeline's report sink.
func (c *RedisReportCache) Store(ctx context.Context, report *models.AnalysisReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	if err := c.redis.Set(ctx, c.prefix+report.Symbol, data, c.ttl).Err(); err != nil {
		return err
	}

	c.stats.mu.Lock()
	c.stats.Sets++
	c.stats.mu.Unlock()
	return nil
}

// Get retrieves the latest report for a symbol, reporting whether one was
// cached.
func (c *RedisReportCache) Get(ctx context.Context, symbol string) (*models.AnalysisReport, bool) {
	data, err := c.redis.Get(ctx, c.prefix+symbol).Result()
	if err == redis.Nil {
		c.miss()
		return nil, false
	}
	if err != nil {
		log.Printf("Redis error getting report for %s: %v", symbol, err)
		c.miss()
		return nil, false
	}

	var report models.AnalysisReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		log.Printf("Error deserializing cached report for %s: %v", symbol, err)
		c.miss()
		return nil, false
	}

	c.stats.mu.Lock()
	c.stats.Hits++
	c.stats.mu.Unlock()
	return &report, true
}

// All returns every cached report.
func (c *RedisReportCache) All(ctx context.Context) ([]*models.AnalysisReport, error) {
	keys, err := c.redis.Keys(ctx, c.prefix+"*").Result()
	if err != nil {
		return nil, err
	}

	reports := make([]*models.AnalysisReport, 0, len(keys))
	for _, key := range keys {
		data, err := c.redis.Get(ctx, key).Result()
		if err != nil {
			// Entry expired between KEYS and GET; skip it.
			continue
		}
		var report models.AnalysisReport
		if err := json.Unmarshal([]byte(data), &report); err != nil {
			log.Printf("Error deserializing cached report at %s: %v", key, err)
			continue
		}
		reports = append(reports, &report)
	}
	return reports, nil
}

// Stats returns a snapshot of cache counters.
func (c *RedisReportCache) Stats() (hits, misses, sets int64) {
	c.stats.mu.RLock()
	defer c.stats.mu.RUnlock()
	return c.stats.Hits, c.stats.Misses, c.stats.Sets
}

func (c *RedisReportCache) miss() {
	c.stats.mu.Lock()
	c.stats.Misses++
	c.stats.mu.Unlock()
}
