package nutrition

import (
	"math"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/profile"
)

// 本文件是派生指标计算器：一组纯函数，同样的输入永远得到同样的输出，
// 没有隐藏状态、没有I/O。唯一的例外是年龄——它在每次调用时从出生日期
// 现算（绝不缓存），所以同一份档案随时间推移会得到变化的结果。

// Macros 是每日宏量营养素目标（克）。
type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// 域外输入的保守默认值。计算器对声明的输入域是全函数：
// 零身高、零体重、缺失出生日期都不会除零或报错，只会退到保守默认。
const (
	defaultWeightKG = 70.0
	defaultHeightCM = 170.0
	defaultAge      = 30
	minDailyKcal    = 1200

	kcalPerKG = 7700.0 // 每公斤体脂约7700千卡
)

// ageAt 在给定时刻从出生日期现算年龄。
func ageAt(birthDate time.Time, now time.Time) int {
	if birthDate.IsZero() || birthDate.After(now) {
		return defaultAge
	}
	age := now.Year() - birthDate.Year()
	if now.YearDay() < birthDate.YearDay() {
		age--
	}
	if age <= 0 {
		return defaultAge
	}
	return age
}

// activityMultiplier 返回活动水平系数，附加活动类型的小幅修正。
// 未知枚举值退到久坐系数，保证函数对全部输入组合都有数值结果。
func activityMultiplier(level, activityType string) float64 {
	var mult float64
	switch level {
	case profile.ActivitySedentary:
		mult = 1.2
	case profile.ActivityModerate:
		mult = 1.55
	case profile.ActivityActive:
		mult = 1.725
	default:
		mult = 1.2
	}

	switch activityType {
	case profile.ActivityTypeAerobic:
		mult += 0.05
	case profile.ActivityTypeAnaerobic:
		mult += 0.10
	case profile.ActivityTypeMixed:
		mult += 0.075
	}
	return mult
}

// basalMetabolicRate 按Mifflin-St Jeor公式计算基础代谢。
// 公式只定义了男(+5)女(-161)两个常数项；other取两者中点(-78)。
func basalMetabolicRate(sex string, weightKG, heightCM float64, age int) float64 {
	base := 10*weightKG + 6.25*heightCM - 5*float64(age)
	switch sex {
	case profile.SexMale:
		return base + 5
	case profile.SexFemale:
		return base - 161
	default:
		return base - 78
	}
}

// goalAdjustment 返回目标带来的每日热量调整。
// 减重/增重按每周速率折算每日盈亏；增肌按经验水平给固定盈余；
// 未知目标回落到维持计算（没有“未知目标”失败路径）。
func goalAdjustment(goal string, weeklyRateKG float64, experienceLevel string) float64 {
	switch goal {
	case profile.GoalLoseWeight:
		if weeklyRateKG <= 0 {
			weeklyRateKG = 0.5
		}
		return -weeklyRateKG * kcalPerKG / 7
	case profile.GoalGainWeight:
		if weeklyRateKG <= 0 {
			weeklyRateKG = 0.5
		}
		return weeklyRateKG * kcalPerKG / 7
	case profile.GoalBuildMuscle:
		if experienceLevel == profile.ExperienceAdvanced {
			return 150
		}
		return 300
	default:
		return 0
	}
}

// ComputeDailyCalories 从档案和当前体重计算每日热量目标。
// 当前体重来自体重账本的最新样本，不是问卷里的留档体重。
func ComputeDailyCalories(p *profile.OnboardingProfile, currentWeightKG float64) int {
	return computeDailyCaloriesAt(p, currentWeightKG, time.Now())
}

// computeDailyCaloriesAt 是带显式时刻的实现，便于测试固定时间。
func computeDailyCaloriesAt(p *profile.OnboardingProfile, currentWeightKG float64, now time.Time) int {
	weight := currentWeightKG
	if weight <= 0 {
		weight = defaultWeightKG
	}
	height := p.HeightCM
	if height <= 0 {
		height = defaultHeightCM
	}
	age := ageAt(p.BirthDate, now)

	bmr := basalMetabolicRate(p.Sex, weight, height, age)
	tdee := bmr * activityMultiplier(p.ActivityLevel, p.ActivityType)
	calories := tdee + goalAdjustment(p.Goal, p.WeeklyRateKG, p.ExperienceLevel)

	if calories < minDailyKcal {
		calories = minDailyKcal
	}
	return int(math.Round(calories))
}

// proteinPerKG 返回目标对应的每公斤体重蛋白质克数。
func proteinPerKG(goal, experienceLevel string) float64 {
	switch goal {
	case profile.GoalLoseWeight:
		return 1.8
	case profile.GoalBuildMuscle:
		if experienceLevel == profile.ExperienceAdvanced {
			return 2.2
		}
		return 2.0
	default:
		return 1.6
	}
}

// ComputeDailyMacros 从每日热量目标拆分宏量营养素：
// 蛋白质按体重与目标定克数，脂肪取热量的27.5%，碳水吃掉剩余热量。
func ComputeDailyMacros(p *profile.OnboardingProfile, currentWeightKG float64, dailyCalories int) Macros {
	weight := currentWeightKG
	if weight <= 0 {
		weight = defaultWeightKG
	}

	proteinG := weight * proteinPerKG(p.Goal, p.ExperienceLevel)
	fatG := float64(dailyCalories) * 0.275 / 9

	carbsKcal := float64(dailyCalories) - proteinG*4 - fatG*9
	carbsG := carbsKcal / 4
	if carbsG < 0 {
		carbsG = 0
	}

	return Macros{
		ProteinG: math.Round(proteinG),
		CarbsG:   math.Round(carbsG),
		FatG:     math.Round(fatG),
	}
}

// GoalProgress 是体重目标的派生进度。
type GoalProgress struct {
	StartWeightKG   float64 `json:"start_weight_kg"`
	CurrentWeightKG float64 `json:"current_weight_kg"`
	TargetWeightKG  float64 `json:"target_weight_kg"`
	RemainingKG     float64 `json:"remaining_kg"`
	ProgressPercent float64 `json:"progress_percent"`
	// EstimatedWeeks 为0表示无法估计（无速率或已达标）
	EstimatedWeeks float64 `json:"estimated_weeks"`
}

// ComputeGoalProgress 从档案和当前体重计算体重目标进度。
// 起点是问卷留档的体重，当前值来自体重账本。
func ComputeGoalProgress(p *profile.OnboardingProfile, currentWeightKG float64) GoalProgress {
	start := p.WeightKG
	if start <= 0 {
		start = defaultWeightKG
	}
	current := currentWeightKG
	if current <= 0 {
		current = start
	}
	target := p.TargetWeightKG
	if target <= 0 {
		target = start
	}

	gp := GoalProgress{
		StartWeightKG:   start,
		CurrentWeightKG: current,
		TargetWeightKG:  target,
		RemainingKG:     math.Abs(current - target),
	}

	total := math.Abs(start - target)
	if total > 0 {
		done := math.Abs(start - current)
		pct := done / total * 100
		if pct > 100 {
			pct = 100
		}
		gp.ProgressPercent = math.Round(pct*10) / 10
	}

	if p.WeeklyRateKG > 0 && gp.RemainingKG > 0 {
		gp.EstimatedWeeks = math.Round(gp.RemainingKG/p.WeeklyRateKG*10) / 10
	}
	return gp
}
