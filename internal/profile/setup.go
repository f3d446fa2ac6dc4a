package profile

import (
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
)

// migrateDB 负责迁移档案表结构。
// 迁移契约是可追加且幂等的：首发之后新增的列（experience_level）
// 先通过EnsureColumn补齐并回填默认值，再执行常规的AutoMigrate。
func migrateDB() error {
	if database.DB.Migrator().HasTable(&OnboardingProfile{}) {
		if err := database.EnsureColumn(&OnboardingProfile{}, "experience_level", ExperienceBeginner); err != nil {
			return err
		}
	}
	if err := database.DB.AutoMigrate(&OnboardingProfile{}); err != nil {
		return fmt.Errorf("无法迁移onboarding表: %w", err)
	}
	if database.IsMirrorEnabled() {
		if err := database.MirrorDB.AutoMigrate(&MirrorUser{}); err != nil {
			return fmt.Errorf("无法迁移镜像users表: %w", err)
		}
	}
	fmt.Println("Onboarding数据库表迁移成功。")
	return nil
}

// PrimeModule 是profile模块的初始化总入口
func PrimeModule() error {
	return migrateDB()
}
