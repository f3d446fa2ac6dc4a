package weight

import (
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
)

// migrateDB 负责自动迁移数据库表结构
func migrateDB() error {
	if err := database.DB.AutoMigrate(&WeightSample{}); err != nil {
		return fmt.Errorf("无法迁移weight表: %w", err)
	}
	if database.IsMirrorEnabled() {
		if err := database.MirrorDB.AutoMigrate(&MirrorWeightSample{}); err != nil {
			return fmt.Errorf("无法迁移镜像weight表: %w", err)
		}
	}
	fmt.Println("Weight数据库表迁移成功。")
	return nil
}

// PrimeModule 是weight模块的初始化总入口
func PrimeModule() error {
	return migrateDB()
}
