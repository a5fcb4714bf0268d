package blobstore

import (
	"context"

	"github.com/zeromicro/go-zero/core/stores/redis"
)

const redisPrefix = "pocketledger:"

// Redis stores each blob as a plain string value under a prefixed key.
type Redis struct {
	rds *redis.Redis
}

func NewRedis(conf redis.RedisConf) (*Redis, error) {
	rds, err := redis.NewRedis(conf)
	if err != nil {
		return nil, err
	}
	return &Redis{rds: rds}, nil
}

// WrapRedis adapts an existing client.
func WrapRedis(rds *redis.Redis) *Redis {
	return &Redis{rds: rds}
}

func (r *Redis) Load(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := r.rds.GetCtx(ctx, redisPrefix+key)
	if err != nil {
		return nil, false, err
	}
	if val == "" {
		// go-zero maps a missing key to "", so ask explicitly.
		ok, err := r.rds.ExistsCtx(ctx, redisPrefix+key)
		if err != nil || !ok {
			return nil, false, err
		}
	}
	return []byte(val), true, nil
}

func (r *Redis) Save(ctx context.Context, key string, data []byte) error {
	return r.rds.SetCtx(ctx, redisPrefix+key, string(data))
}

// SaveBatch sends every SET in one pipeline.
func (r *Redis) SaveBatch(ctx context.Context, blobs map[string][]byte) error {
	return r.rds.PipelinedCtx(ctx, func(p redis.Pipeliner) error {
		for key, data := range blobs {
			p.Set(ctx, redisPrefix+key, string(data), 0)
		}
		return nil
	})
}
