package identity

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/mirror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CreateProvisionalID 生成一个临时的、尚未持久化的新用户UUID。
// 这个UUID将被设置到cookie中，但此时尚未被“激活”。
func CreateProvisionalID() (string, error) {
	newUUID, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("无法生成UUID v7: %w", err)
	}
	return newUUID.String(), nil
}

// IsValidUUID 检查一个字符串是否是合法的UUID格式。
func IsValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// IsActivated 检查一个给定的UUID是否已经被激活（即存在于持久化系统中）。
// Redis可用时优先查缓存；否则回落到本地库查询。
func IsActivated(uuidStr string) (bool, error) {
	if uuidStr == "" {
		return false, nil
	}
	if database.IsRedisEnabled() && database.IsRedisHealthy() {
		exists, err := database.RDB.SIsMember(database.Ctx, KnownUsersKey, uuidStr).Result()
		if err == nil {
			return exists, nil
		}
		// 缓存查询失败时继续走本地库，不让缓存故障影响请求路径
	}

	var count int64
	if err := database.DB.Model(&Identity{}).Where("uuid = ?", uuidStr).Count(&count).Error; err != nil {
		return false, fmt.Errorf("查询本地身份记录时出错: %w", err)
	}
	return count > 0, nil
}

// ActivateLocal 将一个临时的UUID持久化到本地库和缓存中。
// 它只负责本地侧；远程镜像的身份创建由调用方通过 MirrorCreateOp 安排，
// 以便账户创建Saga可以分别补偿两侧。
func ActivateLocal(uuidStr string) error {
	newIdentity := Identity{UUID: uuidStr}
	if err := database.DB.Create(&newIdentity).Error; err != nil {
		// 记录已存在不是真正的错误：激活是幂等的
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil
		}
		return fmt.Errorf("无法在本地库中创建身份记录: %w", err)
	}

	if database.IsRedisEnabled() {
		if err := database.RDB.SAdd(database.Ctx, KnownUsersKey, uuidStr).Err(); err != nil {
			fmt.Printf("无法将身份 %s 写入Redis缓存: %v\n", uuidStr, err)
		}
	}
	return nil
}

// DestroyLocal 删除本地库和缓存中的身份记录。
// 它是账户创建Saga中本地激活步骤的补偿动作。
func DestroyLocal(uuidStr string) error {
	if err := database.DB.Unscoped().Where("uuid = ?", uuidStr).Delete(&Identity{}).Error; err != nil {
		return fmt.Errorf("无法删除本地身份记录: %w", err)
	}
	if database.IsRedisEnabled() {
		if err := database.RDB.SRem(database.Ctx, KnownUsersKey, uuidStr).Err(); err != nil {
			fmt.Printf("无法从Redis缓存移除身份 %s: %v\n", uuidStr, err)
		}
	}
	return nil
}

// MirrorCreateOp 构造远程镜像中创建身份记录的写入。
// 使用合并写，重复执行不会产生第二条记录。
func MirrorCreateOp(uuidStr string) mirror.Op {
	return mirror.Op{
		Name: "identity:create:" + uuidStr,
		Apply: func(ctx context.Context, db *gorm.DB) error {
			rec := MirrorIdentity{UserID: uuidStr}
			return db.WithContext(ctx).FirstOrCreate(&rec).Error
		},
	}
}

// MirrorDeleteOp 构造远程镜像中销毁身份记录的写入。
// 它是Saga中远程身份创建步骤的补偿动作。
func MirrorDeleteOp(uuidStr string) mirror.Op {
	return mirror.Op{
		Name: "identity:delete:" + uuidStr,
		Apply: func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).Where("user_id = ?", uuidStr).Delete(&MirrorIdentity{}).Error
		},
	}
}
