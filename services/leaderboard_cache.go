// services/leaderboard_cache.go - optional Redis mirror of the points ledger.
//
// When REDIS_URL is set the three ranking windows are kept in sorted sets so
// leaderboard reads skip the database. The ledger in PostgreSQL stays the
// source of truth; every cache write is best-effort.
package services

import (
	"context"
	"log"
	"os"
	"strconv"
	"time"

	"newsiq/models"

	"github.com/redis/go-redis/v9"
)

const (
	WindowAllTime = "alltime"
	WindowWeekly  = "weekly"
	WindowMonthly = "monthly"
)

var leaderboardKeys = map[string]string{
	WindowAllTime: "newsiq:leaderboard:alltime",
	WindowWeekly:  "newsiq:leaderboard:weekly",
	WindowMonthly: "newsiq:leaderboard:monthly",
}

type LeaderboardCache struct {
	rdb *redis.Client
}

// CachedEntry is one ranked row from a sorted set.
type CachedEntry struct {
	UserID uint `json:"user_id"`
	Points int  `json:"points"`
	Rank   int  `json:"rank"`
}

var (
	redisClient      *redis.Client
	leaderboardCache *LeaderboardCache
)

// InitRedis connects to Redis when REDIS_URL is configured. Without it the
// cache and the scheduler's job locks are simply disabled.
func InitRedis() {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		log.Println("REDIS_URL not set, leaderboard cache and job locks disabled")
		return
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Printf("Invalid REDIS_URL, cache disabled: %v", err)
		return
	}

	client := redis.NewClient(opts)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unreachable, cache disabled: %v", err)
		return
	}

	redisClient = client
	leaderboardCache = &LeaderboardCache{rdb: client}
	log.Println("✅ Redis connected, leaderboard cache enabled")
}

// GetRedis returns the shared client, or nil when Redis is not configured.
func GetRedis() *redis.Client {
	return redisClient
}

// GetLeaderboardCache returns the cache, or nil when Redis is not configured.
func GetLeaderboardCache() *LeaderboardCache {
	return leaderboardCache
}

// Record mirrors a user's current counters into all three windows.
func (c *LeaderboardCache) Record(userID uint, row models.LeaderboardPoints) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	member := strconv.FormatUint(uint64(userID), 10)
	pipe := c.rdb.Pipeline()
	pipe.ZAdd(ctx, leaderboardKeys[WindowAllTime], redis.Z{Score: float64(row.Points), Member: member})
	pipe.ZAdd(ctx, leaderboardKeys[WindowWeekly], redis.Z{Score: float64(row.WeeklyPoints), Member: member})
	pipe.ZAdd(ctx, leaderboardKeys[WindowMonthly], redis.Z{Score: float64(row.MonthlyPoints), Member: member})
	if _, err := pipe.Exec(ctx); err != nil {
		log.Printf("Failed to mirror points for user %d to Redis: %v", userID, err)
	}
}

// Top returns the highest-scoring entries for a window.
func (c *LeaderboardCache) Top(window string, limit int64) ([]CachedEntry, error) {
	key, ok := leaderboardKeys[window]
	if !ok {
		key = leaderboardKeys[WindowAllTime]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	zs, err := c.rdb.ZRevRangeWithScores(ctx, key, 0, limit-1).Result()
	if err != nil {
		return nil, err
	}

	entries := make([]CachedEntry, 0, len(zs))
	for i, z := range zs {
		member, ok := z.Member.(string)
		if !ok {
			continue
		}
		id, err := strconv.ParseUint(member, 10, 64)
		if err != nil {
			continue
		}
		entries = append(entries, CachedEntry{
			UserID: uint(id),
			Points: int(z.Score),
			Rank:   i + 1,
		})
	}
	return entries, nil
}

// Rank returns a user's 1-based rank in a window, or 0 if absent.
func (c *LeaderboardCache) Rank(window string, userID uint) int64 {
	key, ok := leaderboardKeys[window]
	if !ok {
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	rank, err := c.rdb.ZRevRank(ctx, key, strconv.FormatUint(uint64(userID), 10)).Result()
	if err != nil {
		return 0
	}
	return rank + 1
}

// Reset drops a window's sorted set. Called by the scheduler after zeroing
// the corresponding ledger column.
func (c *LeaderboardCache) Reset(window string) {
	key, ok := leaderboardKeys[window]
	if !ok {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := c.rdb.Del(ctx, key).Err(); err != nil {
		log.Printf("Failed to reset %s leaderboard cache: %v", window, err)
	}
}
