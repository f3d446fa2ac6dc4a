package nutrition

import (
	"testing"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/internal/profile"
	"github.com/SlpAus/nutrition-ledger-backend/internal/weight"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 用内存SQLite替换全局本地库并迁移所需表。
// 镜像与Redis保持禁用，所有双写路径自然退化为纯本地提交。
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("无法打开内存数据库: %v", err)
	}
	if err := db.AutoMigrate(&profile.OnboardingProfile{}, &weight.WeightSample{}, &CustomNutritionOverride{}); err != nil {
		t.Fatalf("无法迁移测试表: %v", err)
	}

	prevDB := database.DB
	prevStore := globalStore
	database.DB = db
	globalStore = newStore()
	t.Cleanup(func() {
		database.DB = prevDB
		globalStore = prevStore
	})
}

func seedProfile(t *testing.T, userID string) {
	t.Helper()
	p := &profile.OnboardingProfile{
		UserID:        userID,
		Goal:          profile.GoalMaintainWeight,
		BirthDate:     time.Date(1996, 8, 1, 0, 0, 0, 0, time.UTC),
		Sex:           profile.SexFemale,
		HeightCM:      165,
		WeightKG:      70,
		ActivityLevel: profile.ActivityModerate,
	}
	if err := profile.CreateLocal(p); err != nil {
		t.Fatalf("无法写入测试档案: %v", err)
	}
}

func seedWeight(t *testing.T, userID string, kg float64, ts time.Time) uint {
	t.Helper()
	s := &weight.WeightSample{UserID: userID, WeightKG: kg, Timestamp: ts}
	if err := weight.CreateLocal(s); err != nil {
		t.Fatalf("无法写入测试体重: %v", err)
	}
	return s.ID
}

func TestOverridePrecedence(t *testing.T) {
	setupTestDB(t)
	const userID = "user-override"
	seedProfile(t, userID)

	if err := Recalculate(userID); err != nil {
		t.Fatalf("首次重算失败: %v", err)
	}
	auto, ok := globalStore.Get(userID)
	if !ok {
		t.Fatal("重算后store应被填充")
	}

	manual := Targets{Calories: 1800, ProteinG: 120, CarbsG: 180, FatG: 60}
	if err := SetOverride(userID, manual); err != nil {
		t.Fatalf("写入覆盖失败: %v", err)
	}

	// 档案变化触发的重算不得改写手动覆盖
	if err := Recalculate(userID); err != nil {
		t.Fatalf("覆盖后重算失败: %v", err)
	}
	got, _ := globalStore.Get(userID)
	if got != manual {
		t.Fatalf("重算后目标 = %+v, 应保持覆盖值 %+v", got, manual)
	}
	if !globalStore.IsManuallyEdited(userID) {
		t.Fatal("手动旗标应保持置位")
	}

	// 清除覆盖后立刻回到自动计算值
	if err := ClearOverride(userID); err != nil {
		t.Fatalf("清除覆盖失败: %v", err)
	}
	got, _ = globalStore.Get(userID)
	if got != auto {
		t.Fatalf("清除覆盖后目标 = %+v, 期望自动值 %+v", got, auto)
	}
	if globalStore.IsManuallyEdited(userID) {
		t.Fatal("清除覆盖后手动旗标应复位")
	}
}

func TestOverrideBoundsRejected(t *testing.T) {
	setupTestDB(t)
	const userID = "user-bounds"
	seedProfile(t, userID)

	cases := []Targets{
		{Calories: 900, ProteinG: 120, CarbsG: 180, FatG: 60},
		{Calories: 5200, ProteinG: 120, CarbsG: 180, FatG: 60},
		{Calories: 1800, ProteinG: 10, CarbsG: 180, FatG: 60},
		{Calories: 1800, ProteinG: 120, CarbsG: 600, FatG: 60},
		{Calories: 1800, ProteinG: 120, CarbsG: 180, FatG: 250},
	}
	for _, tc := range cases {
		if err := SetOverride(userID, tc); err == nil {
			t.Fatalf("越界覆盖 %+v 应被拒绝", tc)
		}
	}

	if o, err := getOverride(userID); err != nil || o != nil {
		t.Fatalf("被拒绝的覆盖不应留下账本行: o=%v err=%v", o, err)
	}
}

func TestWeightPromotionOnDelete(t *testing.T) {
	setupTestDB(t)
	const userID = "user-promotion"
	seedProfile(t, userID)

	now := time.Now()
	seedWeight(t, userID, 70, now.Add(-48*time.Hour))
	latestID := seedWeight(t, userID, 68, now)

	if err := Recalculate(userID); err != nil {
		t.Fatalf("重算失败: %v", err)
	}
	atLatest, _ := globalStore.Get(userID)

	// 删除最新样本，次新样本自然晋升为当前体重
	if err := weight.DeleteByUser(userID, latestID); err != nil {
		t.Fatalf("删除最新样本失败: %v", err)
	}
	if err := Recalculate(userID); err != nil {
		t.Fatalf("删除后重算失败: %v", err)
	}
	atPrev, _ := globalStore.Get(userID)

	if atPrev.Calories <= atLatest.Calories {
		t.Fatalf("回到70kg后的目标 %d 应高于68kg时的 %d", atPrev.Calories, atLatest.Calories)
	}

	latest, err := weight.LatestByUser(userID)
	if err != nil {
		t.Fatalf("读取最新样本失败: %v", err)
	}
	if latest.WeightKG != 70 {
		t.Fatalf("晋升后的当前体重 = %g, 期望 70", latest.WeightKG)
	}
}

func TestStoreEmptyUntilFirstRecalc(t *testing.T) {
	setupTestDB(t)
	const userID = "user-cold"

	if _, ok := globalStore.Get(userID); ok {
		t.Fatal("未建档用户的store应为空")
	}
	if _, _, err := CurrentTargets(userID); err == nil {
		t.Fatal("无档案时CurrentTargets应返回错误")
	}

	seedProfile(t, userID)
	targets, manual, err := CurrentTargets(userID)
	if err != nil {
		t.Fatalf("建档后读取目标失败: %v", err)
	}
	if manual {
		t.Fatal("新档案不应处于手动覆盖状态")
	}
	if targets.Calories < 1200 {
		t.Fatalf("目标热量 %d 低于下限", targets.Calories)
	}
}

func TestStoreBroadcast(t *testing.T) {
	setupTestDB(t)
	const userID = "user-subscribe"
	seedProfile(t, userID)

	updates := globalStore.Subscribe()
	if err := Recalculate(userID); err != nil {
		t.Fatalf("重算失败: %v", err)
	}

	select {
	case u := <-updates:
		if u.UserID != userID || u.Manual {
			t.Fatalf("收到异常通知: %+v", u)
		}
	case <-time.After(time.Second):
		t.Fatal("重算后应收到store变化通知")
	}
}
