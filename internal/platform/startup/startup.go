package startup

import (
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/identity"
	"github.com/SlpAus/nutrition-ledger-backend/internal/meal"
	"github.com/SlpAus/nutrition-ledger-backend/internal/nutrition"
	"github.com/SlpAus/nutrition-ledger-backend/internal/profile"
	"github.com/SlpAus/nutrition-ledger-backend/internal/weight"
)

// InitializeApplication 是应用首次启动时执行的总入口。
// 初始化顺序即依赖顺序：身份先行，档案与账本其次，
// 派生目标最后——它的钩子注册和store预热需要前面的表都已就绪。
func InitializeApplication() error {
	fmt.Println("开始应用首次初始化...")

	if err := identity.PrimeModule(); err != nil {
		return err
	}
	if err := profile.PrimeModule(); err != nil {
		return err
	}
	if err := weight.PrimeModule(); err != nil {
		return err
	}
	if err := meal.PrimeModule(); err != nil {
		return err
	}
	if err := nutrition.PrimeModule(); err != nil {
		return err
	}

	fmt.Println("应用初始化完成！")
	return nil
}
