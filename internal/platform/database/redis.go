package database

import (
	"context"
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/config"
	"github.com/redis/go-redis/v9"
)

// RDB 是全局的Redis客户端实例。Redis承载两类派生热数据：
// 每用户的当前营养目标缓存，以及餐食镜像写入后的推送订阅通道。
// Redis被禁用时它保持为nil。
var RDB *redis.Client

// Ctx 是一个全局的上下文，用于Redis操作
var Ctx = context.Background()

// InitRedis 初始化与Redis数据库的连接。
// Redis是可选组件：连接失败只会降级（无目标缓存、无订阅通道），不会阻止启动。
func InitRedis(cfg config.RedisConfig) {
	if !cfg.Enabled {
		fmt.Println("Redis未启用，目标缓存与订阅通道不可用。")
		return
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if _, err := client.Ping(Ctx).Result(); err != nil {
		fmt.Printf("无法连接到Redis，降级运行: %v\n", err)
		UpdateRedisStatus(false)
		return
	}

	RDB = client
	fmt.Println("Redis 连接成功！")
}

// IsRedisEnabled 返回Redis客户端是否已经建立连接。
func IsRedisEnabled() bool {
	return RDB != nil
}
