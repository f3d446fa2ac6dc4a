package database

import (
	"fmt"
	"sync"
)

// statusManager 负责线程安全地管理和提供外部存储的健康状态。
type statusManager struct {
	mu              sync.RWMutex
	isRedisHealthy  bool
	isMirrorHealthy bool
}

// 全局的状态管理器实例
var globalStatus = &statusManager{
	isRedisHealthy:  true, // 默认启动时是健康的
	isMirrorHealthy: true,
}

// IsRedisHealthy 返回当前Redis的健康状态。
func IsRedisHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isRedisHealthy
}

// IsMirrorHealthy 返回当前远程镜像的健康状态。
func IsMirrorHealthy() bool {
	globalStatus.mu.RLock()
	defer globalStatus.mu.RUnlock()
	return globalStatus.isMirrorHealthy
}

// UpdateRedisStatus 用于线程安全地更新Redis健康状态。
func UpdateRedisStatus(isHealthy bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	// 只有当状态发生变化时才打印日志
	if globalStatus.isRedisHealthy != isHealthy {
		globalStatus.isRedisHealthy = isHealthy
		if isHealthy {
			fmt.Println("健康检查: Redis服务状态已更新为 [可用]")
		} else {
			fmt.Println("健康检查警告: Redis服务状态已更新为 [不可用]")
		}
	}
}

// UpdateMirrorStatus 用于线程安全地更新远程镜像健康状态。
func UpdateMirrorStatus(isHealthy bool) {
	globalStatus.mu.Lock()
	defer globalStatus.mu.Unlock()

	if globalStatus.isMirrorHealthy != isHealthy {
		globalStatus.isMirrorHealthy = isHealthy
		if isHealthy {
			fmt.Println("健康检查: 远程镜像状态已更新为 [可用]")
		} else {
			fmt.Println("健康检查警告: 远程镜像状态已更新为 [不可用]")
		}
	}
}
