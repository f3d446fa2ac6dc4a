package identity

import (
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&Identity{}); err != nil {
		return fmt.Errorf("无法迁移identity表: %w", err)
	}
	if database.IsMirrorEnabled() {
		if err := database.MirrorDB.AutoMigrate(&MirrorIdentity{}); err != nil {
			return fmt.Errorf("无法迁移镜像identity表: %w", err)
		}
	}
	fmt.Println("Identity数据库表迁移成功。")
	return nil
}

// WarmupCache 从SQLite加载所有已激活的用户UUID，并预热到Redis的Set中
func WarmupCache() error {
	if !database.IsRedisEnabled() {
		return nil
	}

	var identities []Identity
	if err := database.DB.Select("uuid").Find(&identities).Error; err != nil {
		return fmt.Errorf("无法从SQLite读取用户UUID: %w", err)
	}

	if len(identities) == 0 {
		fmt.Println("无现有用户数据，无需预热身份缓存。")
		return nil
	}

	userUUIDs := make([]interface{}, len(identities))
	for i, id := range identities {
		userUUIDs[i] = id.UUID
	}

	// 使用Pipeline批量重建缓存，先清空旧的Set确保一致性
	pipe := database.RDB.Pipeline()
	pipe.Del(database.Ctx, KnownUsersKey)
	pipe.SAdd(database.Ctx, KnownUsersKey, userUUIDs...)

	if _, err := pipe.Exec(database.Ctx); err != nil {
		return fmt.Errorf("预热用户UUID到Redis失败: %w", err)
	}

	fmt.Printf("成功预热 %d 个用户UUID到Redis。\n", len(identities))
	return nil
}

// PrimeModule 是identity模块的初始化总入口
func PrimeModule() error {
	if err := migrateDB(); err != nil {
		return err
	}
	if err := WarmupCache(); err != nil {
		return err
	}
	return nil
}
