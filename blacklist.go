package main

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

// Redis-backed token blacklist for logout. When Redis is not configured the
// client stays nil and logout becomes a no-op: tokens then simply age out.
var redisClient *redis.Client

func initRedis(cfg *Config) error {
	if cfg.RedisAddr == "" {
		logger.Infow("redis not configured, token blacklist disabled")
		return nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		return err
	}
	redisClient = client
	return nil
}

// blacklistToken stores the token with a TTL matching its remaining lifetime,
// so the blacklist never outgrows the set of live tokens.
func blacklistToken(ctx context.Context, tokenStr string) error {
	if redisClient == nil {
		return nil
	}
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenStr, claims); err != nil {
		return err
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		// No expiry claim: fall back to the issue TTL.
		return redisClient.Set(ctx, "blacklisted:"+tokenStr, "true", tokenTTL).Err()
	}
	remaining := time.Until(exp.Time)
	if remaining <= 0 {
		return nil
	}
	return redisClient.Set(ctx, "blacklisted:"+tokenStr, "true", remaining).Err()
}

func isTokenBlacklisted(ctx context.Context, tokenStr string) bool {
	if redisClient == nil {
		return false
	}
	val, err := redisClient.Get(ctx, "blacklisted:"+tokenStr).Result()
	if err != nil {
		// Treat lookup failures (including a missing key) as not blacklisted.
		return false
	}
	return val == "true"
}
