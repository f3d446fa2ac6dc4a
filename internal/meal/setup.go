package meal

import (
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
)

// migrateDB 负责迁移餐食表结构。
// portion_size/portion_unit是首发之后追加的列，走可追加迁移契约。
func migrateDB() error {
	if database.DB.Migrator().HasTable(&MealFact{}) {
		if err := database.EnsureColumn(&MealFact{}, "portion_size", 0); err != nil {
			return err
		}
		if err := database.EnsureColumn(&MealFact{}, "portion_unit", ""); err != nil {
			return err
		}
	}
	if err := database.DB.AutoMigrate(&MealFact{}); err != nil {
		return fmt.Errorf("无法迁移meals表: %w", err)
	}
	if database.IsMirrorEnabled() {
		if err := database.MirrorDB.AutoMigrate(&MirrorMealFact{}); err != nil {
			return fmt.Errorf("无法迁移镜像meals表: %w", err)
		}
	}
	fmt.Println("Meals数据库表迁移成功。")
	return nil
}

// PrimeModule 是meal模块的初始化总入口
func PrimeModule() error {
	return migrateDB()
}
