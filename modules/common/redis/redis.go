package redis

import (
	"context"
	"crypto/tls"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"style-assistant-server/modules/common/config"
	"style-assistant-server/modules/common/logger"
)

// Connect - Redis 연결 생성
// REDIS_HOST가 없으면 (nil, nil): 호출자는 메모리 구현으로 대체한다.
func Connect(ctx context.Context, cfg *config.Config) (*redis.Client, error) {
	if !cfg.HasRedis() {
		return nil, nil
	}

	l := logger.For(ctx, "redis")
	l.Info().Str("addr", cfg.GetRedisAddr()).Bool("tls", cfg.RedisUseTLS).Msg("🔌 Connecting to Redis")

	var tlsConfig *tls.Config
	if cfg.RedisUseTLS {
		tlsConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.GetRedisAddr(),
		Username:     cfg.RedisUsername,
		Password:     cfg.RedisPassword,
		TLSConfig:    tlsConfig,
		DB:           0,
		DialTimeout:  10 * time.Second,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := rdb.Ping(pingCtx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.GetRedisAddr(), err)
	}

	l.Info().Msg("✅ Redis connected")
	return rdb, nil
}
