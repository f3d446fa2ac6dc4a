package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/identity"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/mirror"
	"github.com/SlpAus/nutrition-ledger-backend/internal/weight"
	"github.com/SlpAus/nutrition-ledger-backend/pkg/saga"
)

// ValidationError 是写入边界的字段级校验错误。
// 出现它时没有任何部分写入发生。
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("字段 %s 无效: %s", e.Field, e.Reason)
}

// --- 重算触发钩子 ---
// nutrition模块在启动时注册钩子，档案变化后被调用以触发目标重算。
// 用回调解耦，避免profile与nutrition的循环依赖。

var changeHooks []func(userID string)

// RegisterChangeHook 注册一个档案变化后的回调。
// 只应在启动阶段（单线程）调用。
func RegisterChangeHook(hook func(userID string)) {
	changeHooks = append(changeHooks, hook)
}

func fireChange(userID string) {
	for _, hook := range changeHooks {
		hook(userID)
	}
}

// OnboardingInput 是完成问卷时的归一化输入。
type OnboardingInput struct {
	Goal            string
	BirthDate       string
	Age             int
	Sex             string
	HeightCM        float64
	WeightKG        float64
	ActivityLevel   string
	ActivityType    string
	ExperienceLevel string
	TargetWeightKG  float64
	WeeklyRateKG    float64
}

func validateOnboarding(in *OnboardingInput) error {
	if !ValidGoal(in.Goal) {
		return &ValidationError{Field: "goal", Reason: "未知的目标类型"}
	}
	if !ValidSex(in.Sex) {
		return &ValidationError{Field: "sex", Reason: "未知的性别"}
	}
	if !ValidActivityLevel(in.ActivityLevel) {
		return &ValidationError{Field: "activity_level", Reason: "未知的活动水平"}
	}
	if in.ActivityType != "" && !ValidActivityType(in.ActivityType) {
		return &ValidationError{Field: "activity_type", Reason: "未知的活动类型"}
	}
	if in.HeightCM <= 0 {
		return &ValidationError{Field: "height_cm", Reason: "身高必须为正数"}
	}
	if in.WeightKG <= 0 {
		return &ValidationError{Field: "weight_kg", Reason: "体重必须为正数"}
	}
	return nil
}

// CompleteOnboarding 完成问卷并创建账户。
// 提交顺序：远程身份 → 本地身份 → 本地档案与初始体重 → 远程档案文档。
// 任何一步失败都会按严格逆序补偿此前的提交，调用方只看到一个合并错误。
// 远程写入在这条路径上是被等待的：账户创建需要跨设备持久性。
func CompleteOnboarding(ctx context.Context, userID string, in OnboardingInput) (*OnboardingProfile, error) {
	if err := validateOnboarding(&in); err != nil {
		return nil, err
	}

	birthDate, err := NormalizeBirthDate(in.BirthDate, in.Age)
	if err != nil {
		return nil, &ValidationError{Field: "birth_date", Reason: err.Error()}
	}

	if existing, err := GetByUserID(userID); err == nil && existing != nil {
		return nil, &ValidationError{Field: "user_id", Reason: "该用户已完成问卷"}
	}

	now := time.Now()
	p := &OnboardingProfile{
		UserID:          userID,
		Goal:            in.Goal,
		BirthDate:       birthDate,
		Sex:             in.Sex,
		HeightCM:        in.HeightCM,
		WeightKG:        in.WeightKG,
		ActivityLevel:   in.ActivityLevel,
		ActivityType:    in.ActivityType,
		ExperienceLevel: in.ExperienceLevel,
		TargetWeightKG:  in.TargetWeightKG,
		WeeklyRateKG:    in.WeeklyRateKG,
	}
	sample := &weight.WeightSample{UserID: userID, WeightKG: in.WeightKG, Timestamp: now}

	s := saga.New("账户创建")
	s.AddStep(saga.Step{
		Name: "远程身份",
		Commit: func(ctx context.Context) error {
			return mirror.Apply(ctx, identity.MirrorCreateOp(userID))
		},
		Compensate: func(ctx context.Context) error {
			return mirror.Apply(ctx, identity.MirrorDeleteOp(userID))
		},
	})
	s.AddStep(saga.Step{
		Name: "本地身份",
		Commit: func(ctx context.Context) error {
			return identity.ActivateLocal(userID)
		},
		Compensate: func(ctx context.Context) error {
			return identity.DestroyLocal(userID)
		},
	})
	s.AddStep(saga.Step{
		Name: "本地档案",
		Commit: func(ctx context.Context) error {
			if err := CreateLocal(p); err != nil {
				return err
			}
			return weight.CreateLocal(sample)
		},
		Compensate: func(ctx context.Context) error {
			if err := weight.DeleteLocalByID(sample.ID); err != nil {
				return err
			}
			return DeleteLocalByUserID(userID)
		},
	})
	s.AddStep(saga.Step{
		Name: "远程档案",
		Commit: func(ctx context.Context) error {
			if err := mirror.Apply(ctx, MirrorUpsertOp(p)); err != nil {
				return err
			}
			return mirror.Apply(ctx, weight.MirrorCreateOp(sample))
		},
	})

	if err := s.Run(ctx); err != nil {
		return nil, err
	}

	fireChange(userID)
	return p, nil
}

// UpdateInput 是设置页对档案的部分更新。nil字段保持不变。
type UpdateInput struct {
	Goal            *string
	BirthDate       *string
	Age             *int
	Sex             *string
	HeightCM        *float64
	ActivityLevel   *string
	ActivityType    *string
	ExperienceLevel *string
	TargetWeightKG  *float64
	WeeklyRateKG    *float64
}

// UpdateProfile 应用部分字段更新：本地先行提交，镜像走写后队列，
// 最后触发目标重算（是否真正重算由覆盖账本决定）。
func UpdateProfile(userID string, in UpdateInput) (*OnboardingProfile, error) {
	patch := map[string]interface{}{}

	if in.Goal != nil {
		if !ValidGoal(*in.Goal) {
			return nil, &ValidationError{Field: "goal", Reason: "未知的目标类型"}
		}
		patch["goal"] = *in.Goal
	}
	if in.Sex != nil {
		if !ValidSex(*in.Sex) {
			return nil, &ValidationError{Field: "sex", Reason: "未知的性别"}
		}
		patch["sex"] = *in.Sex
	}
	if in.ActivityLevel != nil {
		if !ValidActivityLevel(*in.ActivityLevel) {
			return nil, &ValidationError{Field: "activity_level", Reason: "未知的活动水平"}
		}
		patch["activity_level"] = *in.ActivityLevel
	}
	if in.ActivityType != nil {
		if !ValidActivityType(*in.ActivityType) {
			return nil, &ValidationError{Field: "activity_type", Reason: "未知的活动类型"}
		}
		patch["activity_type"] = *in.ActivityType
	}
	if in.ExperienceLevel != nil {
		patch["experience_level"] = *in.ExperienceLevel
	}
	if in.BirthDate != nil || in.Age != nil {
		var dateStr string
		var age int
		if in.BirthDate != nil {
			dateStr = *in.BirthDate
		}
		if in.Age != nil {
			age = *in.Age
		}
		birthDate, err := NormalizeBirthDate(dateStr, age)
		if err != nil {
			return nil, &ValidationError{Field: "birth_date", Reason: err.Error()}
		}
		patch["birth_date"] = birthDate
	}
	if in.HeightCM != nil {
		if *in.HeightCM <= 0 {
			return nil, &ValidationError{Field: "height_cm", Reason: "身高必须为正数"}
		}
		patch["height_cm"] = *in.HeightCM
	}
	if in.TargetWeightKG != nil {
		patch["target_weight_kg"] = *in.TargetWeightKG
	}
	if in.WeeklyRateKG != nil {
		patch["weekly_rate_kg"] = *in.WeeklyRateKG
	}

	if len(patch) == 0 {
		return GetByUserID(userID)
	}

	if err := UpdateLocal(userID, patch); err != nil {
		return nil, err
	}

	p, err := GetByUserID(userID)
	if err != nil {
		return nil, err
	}

	// 本地提交已完成，镜像同步不阻塞调用方
	mirror.Enqueue(MirrorUpsertOp(p))

	fireChange(userID)
	return p, nil
}
