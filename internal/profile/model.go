package profile

import (
	"time"
)

// --- 档案枚举 ---
// 枚举以字符串形式持久化。与目标无关的字段允许存储但会被计算器忽略。

const (
	GoalLoseWeight     = "lose_weight"
	GoalGainWeight     = "gain_weight"
	GoalMaintainWeight = "maintain_weight"
	GoalBuildMuscle    = "build_muscle"

	SexMale   = "male"
	SexFemale = "female"
	SexOther  = "other"

	ActivitySedentary = "sedentary"
	ActivityModerate  = "moderate"
	ActivityActive    = "active"

	ActivityTypeAerobic   = "aerobic"
	ActivityTypeAnaerobic = "anaerobic"
	ActivityTypeMixed     = "mixed"

	ExperienceBeginner = "beginner"
	ExperienceAdvanced = "advanced"
)

// ValidGoal 报告goal是否是已知枚举值。
// 注意计算器对未知goal回落到维持计算，这里的校验只约束写入边界。
func ValidGoal(g string) bool {
	switch g {
	case GoalLoseWeight, GoalGainWeight, GoalMaintainWeight, GoalBuildMuscle:
		return true
	}
	return false
}

// ValidSex 报告sex是否是已知枚举值。
func ValidSex(s string) bool {
	return s == SexMale || s == SexFemale || s == SexOther
}

// ValidActivityLevel 报告活动水平是否是已知枚举值。
func ValidActivityLevel(a string) bool {
	return a == ActivitySedentary || a == ActivityModerate || a == ActivityActive
}

// ValidActivityType 报告活动类型是否是已知枚举值。
func ValidActivityType(a string) bool {
	return a == ActivityTypeAerobic || a == ActivityTypeAnaerobic || a == ActivityTypeMixed
}

// OnboardingProfile 定义了用户问卷结果在SQLite中的持久化模型。
// 不变量：每个用户ID恰好一行。
type OnboardingProfile struct {
	ID     uint   `gorm:"primarykey" json:"id"`
	UserID string `gorm:"uniqueIndex;type:varchar(36)" json:"user_id"`

	Goal      string    `json:"goal"`
	BirthDate time.Time `json:"birth_date"`
	Sex       string    `json:"sex"`
	HeightCM  float64   `json:"height_cm"`
	// WeightKG 仅作问卷留档；所有派生计算使用weight模块的最新样本
	WeightKG float64 `json:"weight_kg"`

	ActivityLevel   string `json:"activity_level"`
	ActivityType    string `json:"activity_type"`
	ExperienceLevel string `json:"experience_level"`

	TargetWeightKG float64 `json:"target_weight_kg"`
	WeeklyRateKG   float64 `json:"weekly_rate_kg"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MirrorUser 是远程镜像users集合中的用户文档：
// 每个用户一个文档，onboarding字段整体存放档案的JSON序列化。
// 写入是合并写，文档中不在补丁里的字段保持不变。
type MirrorUser struct {
	UserID     string    `gorm:"primaryKey;type:varchar(36)" json:"user_id"`
	Onboarding string    `gorm:"type:text" json:"onboarding"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MirrorUser) TableName() string { return "mirror_users" }
