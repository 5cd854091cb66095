package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"bd-geo/internal/geo"
	"bd-geo/internal/logger"
)

// getter：*redis.Client 的最小子集，便于注入替身
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// 文档注释：Redis 数据源
// 约束：五个集合各存为一个 JSON 数组字符串，键为 <prefix>:divisions、<prefix>:districts、
// <prefix>:upazilas、<prefix>:unions、<prefix>:district-area；省级键缺失返回 ErrNoData，其余缺失视为空集合。
type Redis struct {
	rc     getter
	prefix string
}

func NewRedis(rc getter, prefix string) *Redis {
	if prefix == "" {
		prefix = "bdgeo"
	}
	return &Redis{rc: rc, prefix: prefix}
}

func (r *Redis) Name() string { return "redis:" + r.prefix }

func (r *Redis) Key(collection string) string { return r.prefix + ":" + collection }

func (r *Redis) Load(ctx context.Context) (*geo.Dataset, error) {
	var ds geo.Dataset
	found, err := r.get(ctx, "divisions", &ds.Divisions)
	if err != nil {
		return nil, err
	}
	if !found || len(ds.Divisions) == 0 {
		return nil, ErrNoData
	}
	rest := []struct {
		name string
		dst  any
	}{
		{"districts", &ds.Districts},
		{"upazilas", &ds.Upazilas},
		{"unions", &ds.Unions},
		{"district-area", &ds.DistrictAreas},
	}
	for _, c := range rest {
		if _, err := r.get(ctx, c.name, c.dst); err != nil {
			return nil, err
		}
	}
	logger.L().Debug("redis_load_done", "prefix", r.prefix, "divisions", len(ds.Divisions), "districts", len(ds.Districts))
	return &ds, nil
}

func (r *Redis) get(ctx context.Context, collection string, dst any) (bool, error) {
	key := r.Key(collection)
	s, err := r.rc.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		logger.L().Debug("redis_key_missing", "key", key)
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("redis get %s: %w", key, err)
	}
	if err := json.Unmarshal([]byte(s), dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}
