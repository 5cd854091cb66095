// 包 utils：数据库与 Redis 连接工具
package utils

import (
	"github.com/redis/go-redis/v9"

	"bd-geo/internal/logger"
)

// OpenRedis：使用地址、密码与库号打开 Redis 客户端；未配置地址时返回 nil
func OpenRedis(addr, pass string, db int) *redis.Client {
	if addr == "" {
		return nil
	}
	if db < 0 {
		db = 0
	}
	logger.L().Debug("redis_open", "addr", addr, "db", db)
	return redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})
}
