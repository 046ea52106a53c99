package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-redis/redis/v8"
)

// redisStorage 以 Redis key 保存每個 item, 不設 TTL
type redisStorage struct {
	client *redis.Client
	prefix string
}

// NewRedisClient connect a single redis node
func NewRedisClient(addr, password string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return rdb, nil
}

// NewRedisFailoverClient inti Redis Sentinel connection
func NewRedisFailoverClient(masterName string, sentinelAddrs []string, password string, db int) (*redis.Client, error) {
	rdb := redis.NewFailoverClient(&redis.FailoverOptions{
		MasterName:    masterName,
		SentinelAddrs: sentinelAddrs,
		Password:      password,
		DB:            db,
	})

	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis sentinel: %w", err)
	}

	return rdb, nil
}

// NewRedisStorage wrap client as LocalStorage, keys are stored as prefix+key
func NewRedisStorage(client *redis.Client, prefix string) LocalStorage {
	return &redisStorage{client: client, prefix: prefix}
}

func (r *redisStorage) GetItem(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, fmt.Errorf("failed to get item[%s]: %w", key, err)
	}
	return val, true, nil
}

func (r *redisStorage) SetItem(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, r.prefix+key, value, 0).Err()
}

func (r *redisStorage) RemoveItem(ctx context.Context, key string) error {
	return r.client.Del(ctx, r.prefix+key).Err()
}

func (r *redisStorage) Close() error {
	return r.client.Close()
}
