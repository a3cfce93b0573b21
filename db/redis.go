package db

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client
var Ctx = context.Background()

const (
	// LabelQueueKey carries url hashes of freshly ingested articles to the
	// downstream labeler.
	LabelQueueKey   = "sentstocks:queue:label"
	DeadLetterKey   = "sentstocks:queue:failed"
	newsCachePrefix = "sentstocks:cache:news:"
)

func ConnectRedis(redisURL string) error {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(Ctx).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

func PushToQueue(queueKey string, data string) error {
	return Redis.LPush(Ctx, queueKey, data).Err()
}

func PopFromQueue(queueKey string, timeout time.Duration) (string, error) {
	result, err := Redis.BRPop(Ctx, timeout, queueKey).Result()
	if err != nil {
		return "", err
	}
	return result[1], nil
}

func GetQueueLength(queueKey string) (int64, error) {
	return Redis.LLen(Ctx, queueKey).Result()
}

// CacheNewsResponse stores a rendered read-API payload under the request
// key. TTL is short; the feed changes with every ingest run.
func CacheNewsResponse(key string, payload []byte, ttl time.Duration) error {
	return Redis.Set(Ctx, newsCachePrefix+key, payload, ttl).Err()
}

// GetCachedNewsResponse returns the cached payload, or nil on a miss.
func GetCachedNewsResponse(key string) ([]byte, error) {
	payload, err := Redis.Get(Ctx, newsCachePrefix+key).Bytes()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return payload, nil
}
