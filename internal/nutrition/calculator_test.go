package nutrition

import (
	"testing"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/profile"
)

var calcNow = time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

func baseProfile() *profile.OnboardingProfile {
	return &profile.OnboardingProfile{
		Goal:          profile.GoalMaintainWeight,
		BirthDate:     time.Date(1996, 8, 1, 0, 0, 0, 0, time.UTC), // 30岁
		Sex:           profile.SexFemale,
		HeightCM:      165,
		WeightKG:      70,
		ActivityLevel: profile.ActivityModerate,
	}
}

func TestLoseWeightBelowMaintain(t *testing.T) {
	t.Parallel()

	maintain := baseProfile()
	lose := baseProfile()
	lose.Goal = profile.GoalLoseWeight
	lose.WeeklyRateKG = 0.5

	m := computeDailyCaloriesAt(maintain, 70, calcNow)
	l := computeDailyCaloriesAt(lose, 70, calcNow)
	if l >= m {
		t.Fatalf("减重目标 %d 应严格低于维持目标 %d", l, m)
	}
}

func TestMaintainMatchesFormula(t *testing.T) {
	t.Parallel()

	// 女 30岁 165cm 70kg: BMR = 10*70 + 6.25*165 - 5*30 - 161 = 1420.25
	// moderate: 1420.25 * 1.55 = 2201.3875 → 2201
	got := computeDailyCaloriesAt(baseProfile(), 70, calcNow)
	if got != 2201 {
		t.Fatalf("维持目标 = %d, 期望 2201", got)
	}
}

func TestCalculatorTotalOverEnums(t *testing.T) {
	t.Parallel()

	goals := []string{
		profile.GoalLoseWeight, profile.GoalGainWeight,
		profile.GoalMaintainWeight, profile.GoalBuildMuscle, "time_travel",
	}
	sexes := []string{profile.SexMale, profile.SexFemale, profile.SexOther, ""}
	levels := []string{profile.ActivitySedentary, profile.ActivityModerate, profile.ActivityActive, "couch"}
	types := []string{profile.ActivityTypeAerobic, profile.ActivityTypeAnaerobic, profile.ActivityTypeMixed, ""}

	for _, goal := range goals {
		for _, sex := range sexes {
			for _, level := range levels {
				for _, at := range types {
					p := baseProfile()
					p.Goal = goal
					p.Sex = sex
					p.ActivityLevel = level
					p.ActivityType = at
					cal := computeDailyCaloriesAt(p, 70, calcNow)
					if cal < minDailyKcal {
						t.Fatalf("组合 %s/%s/%s/%s 得到 %d, 低于下限 %d", goal, sex, level, at, cal, minDailyKcal)
					}
					mac := ComputeDailyMacros(p, 70, cal)
					if mac.ProteinG <= 0 || mac.FatG <= 0 || mac.CarbsG < 0 {
						t.Fatalf("组合 %s/%s/%s/%s 的宏量无效: %+v", goal, sex, level, at, mac)
					}
				}
			}
		}
	}
}

func TestCalculatorGuardsBadInputs(t *testing.T) {
	t.Parallel()

	p := baseProfile()
	p.HeightCM = 0
	p.BirthDate = time.Time{}
	cal := computeDailyCaloriesAt(p, -5, calcNow)
	if cal < minDailyKcal {
		t.Fatalf("域外输入应退到保守默认而不是 %d", cal)
	}
}

func TestAggressiveLossFlooredAt1200(t *testing.T) {
	t.Parallel()

	p := baseProfile()
	p.Goal = profile.GoalLoseWeight
	p.WeeklyRateKG = 2.0 // 每日赤字2200千卡
	p.ActivityLevel = profile.ActivitySedentary
	p.WeightKG = 50

	if got := computeDailyCaloriesAt(p, 50, calcNow); got != minDailyKcal {
		t.Fatalf("激进减重应触发热量下限 %d, 实得 %d", minDailyKcal, got)
	}
}

func TestAgeComputedFromBirthDate(t *testing.T) {
	t.Parallel()

	p := baseProfile()
	young := computeDailyCaloriesAt(p, 70, calcNow)
	older := computeDailyCaloriesAt(p, 70, calcNow.AddDate(10, 0, 0))
	if older >= young {
		t.Fatalf("同一档案十年后的目标 %d 应低于当前 %d（年龄现算）", older, young)
	}
}

func TestBuildMuscleProteinByExperience(t *testing.T) {
	t.Parallel()

	p := baseProfile()
	p.Goal = profile.GoalBuildMuscle
	p.ExperienceLevel = profile.ExperienceBeginner
	beginner := ComputeDailyMacros(p, 70, 2500)
	p.ExperienceLevel = profile.ExperienceAdvanced
	advanced := ComputeDailyMacros(p, 70, 2500)

	if beginner.ProteinG != 140 {
		t.Fatalf("新手蛋白质 = %g, 期望 140", beginner.ProteinG)
	}
	if advanced.ProteinG != 154 {
		t.Fatalf("进阶蛋白质 = %g, 期望 154", advanced.ProteinG)
	}
}

func TestGoalProgress(t *testing.T) {
	t.Parallel()

	p := baseProfile()
	p.Goal = profile.GoalLoseWeight
	p.TargetWeightKG = 60
	p.WeeklyRateKG = 0.5

	gp := ComputeGoalProgress(p, 65)
	if gp.RemainingKG != 5 {
		t.Fatalf("剩余 = %g, 期望 5", gp.RemainingKG)
	}
	if gp.ProgressPercent != 50 {
		t.Fatalf("进度 = %g, 期望 50", gp.ProgressPercent)
	}
	if gp.EstimatedWeeks != 10 {
		t.Fatalf("预估周数 = %g, 期望 10", gp.EstimatedWeeks)
	}
}
