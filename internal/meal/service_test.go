package meal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 用内存SQLite替换全局本地库。
// 镜像与Redis保持禁用，写后入队退化为无操作。
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("无法打开内存数据库: %v", err)
	}
	if err := db.AutoMigrate(&MealFact{}); err != nil {
		t.Fatalf("无法迁移测试表: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

type fakeLookup struct {
	products map[string]*ProductFacts
}

func (f *fakeLookup) Lookup(ctx context.Context, barcode string) (*ProductFacts, error) {
	p, ok := f.products[barcode]
	if !ok {
		return nil, ErrProductNotFound
	}
	return p, nil
}

func TestLogBarcodeWithPortion(t *testing.T) {
	setupTestDB(t)

	lookup := &fakeLookup{products: map[string]*ProductFacts{
		"690123": {Barcode: "690123", Name: "酸奶", Calories: 72, ProteinG: 3.2, CarbsG: 10, FatG: 2.1},
	}}
	Configure(nil, lookup)
	t.Cleanup(func() { Configure(nil, nil) })

	f, err := LogBarcode(context.Background(), "user-1", "690123", 250)
	if err != nil {
		t.Fatalf("条码录入失败: %v", err)
	}
	if f.Calories != 180 || f.PortionSize != 250 {
		t.Fatalf("录入结果 = %+v, 期望热量180份量250", f)
	}

	// 本地提交是同步的，录入后立刻可见
	facts, err := ListByUser("user-1", 0)
	if err != nil || len(facts) != 1 {
		t.Fatalf("账本应有1条记录: %v, err=%v", facts, err)
	}

	if _, err := LogBarcode(context.Background(), "user-1", "000000", 0); !errors.Is(err, ErrProductNotFound) {
		t.Fatalf("未知条码应返回ErrProductNotFound, 实得 %v", err)
	}
}

func TestLogBarcodeUnconfigured(t *testing.T) {
	setupTestDB(t)

	if _, err := LogBarcode(context.Background(), "user-1", "690123", 0); !errors.Is(err, ErrCollaboratorUnavailable) {
		t.Fatalf("未配置商品库应返回ErrCollaboratorUnavailable, 实得 %v", err)
	}
}

func TestDeleteMealScopedToUser(t *testing.T) {
	setupTestDB(t)

	f, err := LogManual("user-a", ManualInput{Name: "早餐", Calories: 400})
	if err != nil {
		t.Fatalf("手动录入失败: %v", err)
	}

	// 不属于该用户的记录不可删除
	if err := DeleteMeal("user-b", f.ID); !errors.Is(err, ErrMealNotFound) {
		t.Fatalf("跨用户删除应返回ErrMealNotFound, 实得 %v", err)
	}
	if err := DeleteMeal("user-a", f.ID); err != nil {
		t.Fatalf("删除失败: %v", err)
	}
	if err := DeleteMeal("user-a", f.ID); !errors.Is(err, ErrMealNotFound) {
		t.Fatalf("重复删除应返回ErrMealNotFound, 实得 %v", err)
	}
}

func TestFactsInRangeHalfOpen(t *testing.T) {
	setupTestDB(t)

	day := time.Date(2024, 3, 11, 0, 0, 0, 0, time.UTC)
	for _, ts := range []time.Time{
		day.Add(-time.Second),                  // 窗口前
		day,                                    // 起点含
		day.Add(12 * time.Hour),                // 窗口内
		day.AddDate(0, 0, 1),                   // 终点不含
		day.AddDate(0, 0, 1).Add(-time.Second), // 终点前1秒
	} {
		if _, err := LogManual("user-r", ManualInput{Name: "餐", Calories: 100, Timestamp: ts}); err != nil {
			t.Fatalf("录入失败: %v", err)
		}
	}

	facts, err := FactsInRange("user-r", day, day.AddDate(0, 0, 1))
	if err != nil {
		t.Fatalf("区间查询失败: %v", err)
	}
	if len(facts) != 3 {
		t.Fatalf("半开区间应命中3条, 实得 %d", len(facts))
	}
}
