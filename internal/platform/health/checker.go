package health

import (
	"context"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/pkg/lifecycle"
)

const (
	checkInterval = 5 * time.Second
	pingTimeout   = 2 * time.Second
)

// PerformCheck 执行一次完整的健康检查，更新Redis和远程镜像的状态标记。
func PerformCheck() {
	if database.IsRedisEnabled() {
		ctx, cancel := context.WithTimeout(database.Ctx, pingTimeout)
		_, err := database.RDB.Ping(ctx).Result()
		cancel()
		database.UpdateRedisStatus(err == nil)
	}

	if database.IsMirrorEnabled() {
		checkMirror()
	}
}

// checkMirror 对镜像连接池执行一次带超时的Ping。
func checkMirror() {
	sqlDB, err := database.MirrorDB.DB()
	if err != nil {
		database.UpdateMirrorStatus(false)
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	database.UpdateMirrorStatus(sqlDB.PingContext(ctx) == nil)
}

// StartHealthCheck 启动后台的持续健康检查器。
// 镜像或Redis短暂不可用只会翻转状态标记，写后队列据此跳过并重试，
// 本地流程完全不受影响。
func StartHealthCheck(handle *lifecycle.Handle) {
	defer handle.Close()

	for {
		if err := handle.Sleep(checkInterval); err != nil {
			return
		}
		PerformCheck()
	}
}
