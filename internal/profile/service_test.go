package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/SlpAus/nutrition-ledger-backend/internal/identity"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/internal/weight"
	"github.com/SlpAus/nutrition-ledger-backend/pkg/saga"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 用内存SQLite替换全局本地库并迁移账户创建涉及的全部表。
// 镜像保持禁用，Saga的远程步骤退化为无操作的成功。
func setupTestDB(t *testing.T) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("无法打开内存数据库: %v", err)
	}
	if err := db.AutoMigrate(&identity.Identity{}, &OnboardingProfile{}, &weight.WeightSample{}); err != nil {
		t.Fatalf("无法迁移测试表: %v", err)
	}

	prev := database.DB
	database.DB = db
	t.Cleanup(func() { database.DB = prev })
}

func validInput() OnboardingInput {
	return OnboardingInput{
		Goal:          GoalLoseWeight,
		BirthDate:     "1996-08-01",
		Sex:           SexFemale,
		HeightCM:      165,
		WeightKG:      70,
		ActivityLevel: ActivityModerate,
		WeeklyRateKG:  0.5,
	}
}

func TestCompleteOnboarding(t *testing.T) {
	setupTestDB(t)
	userID, err := identity.CreateProvisionalID()
	if err != nil {
		t.Fatalf("无法生成用户ID: %v", err)
	}

	var hookFired string
	RegisterChangeHook(func(uid string) { hookFired = uid })
	t.Cleanup(func() { changeHooks = nil })

	p, err := CompleteOnboarding(context.Background(), userID, validInput())
	if err != nil {
		t.Fatalf("账户创建失败: %v", err)
	}
	if p.UserID != userID {
		t.Fatalf("档案归属 = %s, 期望 %s", p.UserID, userID)
	}
	if hookFired != userID {
		t.Fatal("账户创建后应触发重算钩子")
	}

	// 身份已激活，初始体重样本已写入
	activated, err := identity.IsActivated(userID)
	if err != nil || !activated {
		t.Fatalf("身份应已激活: activated=%v err=%v", activated, err)
	}
	latest, err := weight.LatestByUser(userID)
	if err != nil || latest.WeightKG != 70 {
		t.Fatalf("初始体重样本缺失: %+v, err=%v", latest, err)
	}

	// 重复问卷被拒绝
	if _, err := CompleteOnboarding(context.Background(), userID, validInput()); err == nil {
		t.Fatal("重复问卷应被拒绝")
	}
}

func TestOnboardingValidation(t *testing.T) {
	setupTestDB(t)

	in := validInput()
	in.Goal = "become_immortal"
	_, err := CompleteOnboarding(context.Background(), "user-v", in)
	var vErr *ValidationError
	if !errors.As(err, &vErr) || vErr.Field != "goal" {
		t.Fatalf("未知目标应产生goal字段错误, 实得 %v", err)
	}

	in = validInput()
	in.BirthDate = ""
	in.Age = 0
	if _, err := CompleteOnboarding(context.Background(), "user-v", in); err == nil {
		t.Fatal("既无出生日期又无年龄应被拒绝")
	}

	// 只上报年龄数字的历史客户端在仓库边界被归一为出生日期
	in = validInput()
	in.BirthDate = ""
	in.Age = 30
	p, err := CompleteOnboarding(context.Background(), "user-v", in)
	if err != nil {
		t.Fatalf("仅年龄的输入应被接受: %v", err)
	}
	if p.BirthDate.IsZero() {
		t.Fatal("年龄输入应被归一为出生日期")
	}
}

func TestSagaCompensationRemovesCommittedRows(t *testing.T) {
	setupTestDB(t)
	const userID = "user-rollback"

	p := &OnboardingProfile{UserID: userID, Goal: GoalMaintainWeight, Sex: SexFemale, HeightCM: 165, WeightKG: 70}

	// 与账户创建同构的流程：本地提交成功后，后续步骤失败
	s := saga.New("测试回滚")
	s.AddStep(saga.Step{
		Name:       "本地档案",
		Commit:     func(ctx context.Context) error { return CreateLocal(p) },
		Compensate: func(ctx context.Context) error { return DeleteLocalByUserID(userID) },
	})
	s.AddStep(saga.Step{
		Name:   "远端确认",
		Commit: func(ctx context.Context) error { return errors.New("远端不可达") },
	})

	if err := s.Run(context.Background()); err == nil {
		t.Fatal("后续步骤失败时Run应返回错误")
	}

	// 已提交的本地行必须被补偿删除
	if _, err := GetByUserID(userID); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("补偿后档案行应不存在, 实得 %v", err)
	}
}
