package nutrition

import (
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/internal/profile"
	"github.com/SlpAus/nutrition-ledger-backend/internal/weight"
)

// migrateDB 负责迁移覆盖账本的表结构。
func migrateDB() error {
	if err := database.DB.AutoMigrate(&CustomNutritionOverride{}); err != nil {
		return fmt.Errorf("无法迁移覆盖账本表: %w", err)
	}
	if database.IsMirrorEnabled() {
		if err := database.MirrorDB.AutoMigrate(&MirrorOverride{}); err != nil {
			return fmt.Errorf("无法迁移镜像覆盖表: %w", err)
		}
	}
	fmt.Println("营养目标数据库表迁移成功。")
	return nil
}

// registerHooks 把目标重算挂到档案与体重的变化钩子上。
// 钩子在变化方的本地提交之后被调用；重算失败只打印警告，
// 绝不把读模型的问题回传给写入方。
func registerHooks() {
	trigger := func(userID string) {
		if err := Recalculate(userID); err != nil {
			fmt.Printf("警告: 用户 %s 的目标重算失败: %v\n", userID, err)
		}
	}
	profile.RegisterChangeHook(trigger)
	weight.RegisterChangeHook(trigger)
}

// warmStore 从本地库为所有已建档用户预热目标store。
// 失败的个别用户跳过并警告，首个请求到来时会再触发惰性重算。
func warmStore() error {
	profiles, err := profile.ListAll()
	if err != nil {
		return err
	}
	for i := range profiles {
		if err := Recalculate(profiles[i].UserID); err != nil {
			fmt.Printf("警告: 预热用户 %s 的目标失败: %v\n", profiles[i].UserID, err)
		}
	}
	fmt.Printf("营养目标store预热完成，共 %d 个用户。\n", len(profiles))
	return nil
}

// PrimeModule 是nutrition模块的初始化总入口
func PrimeModule() error {
	globalStore = newStore()
	if err := migrateDB(); err != nil {
		return err
	}
	registerHooks()
	return warmStore()
}
