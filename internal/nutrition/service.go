package nutrition

import (
	"errors"
	"fmt"
	"sync"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/mirror"
	"github.com/SlpAus/nutrition-ledger-backend/internal/profile"
	"github.com/SlpAus/nutrition-ledger-backend/internal/weight"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 覆盖账本的取值边界。越界的手动目标在写入边界整体拒绝。
const (
	MinCalories = 1000
	MaxCalories = 5000
	MinProteinG = 20
	MaxProteinG = 300
	MinCarbsG   = 20
	MaxCarbsG   = 500
	MinFatG     = 20
	MaxFatG     = 200
)

// BoundsError 是覆盖值越界的字段级错误。
type BoundsError struct {
	Field string
	Min   float64
	Max   float64
	Value float64
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("字段 %s 超出允许范围 [%g, %g]: %g", e.Field, e.Min, e.Max, e.Value)
}

// ValidateOverride 校验一组手动目标是否落在允许边界内。
func ValidateOverride(t Targets) error {
	if t.Calories < MinCalories || t.Calories > MaxCalories {
		return &BoundsError{Field: "calories", Min: MinCalories, Max: MaxCalories, Value: float64(t.Calories)}
	}
	if t.ProteinG < MinProteinG || t.ProteinG > MaxProteinG {
		return &BoundsError{Field: "protein_g", Min: MinProteinG, Max: MaxProteinG, Value: t.ProteinG}
	}
	if t.CarbsG < MinCarbsG || t.CarbsG > MaxCarbsG {
		return &BoundsError{Field: "carbs_g", Min: MinCarbsG, Max: MaxCarbsG, Value: t.CarbsG}
	}
	if t.FatG < MinFatG || t.FatG > MaxFatG {
		return &BoundsError{Field: "fat_g", Min: MinFatG, Max: MaxFatG, Value: t.FatG}
	}
	return nil
}

// moduleMu 串行化覆盖账本与重算：并发的“清除覆盖”和“设置覆盖”
// 以锁的获取顺序定先后，后到者的结果为准（last-write-wins）。
var moduleMu sync.Mutex

// getOverride 读取该用户的覆盖行；不存在时返回(nil, nil)。
func getOverride(userID string) (*CustomNutritionOverride, error) {
	var o CustomNutritionOverride
	err := database.DB.Where("user_id = ?", userID).First(&o).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("无法读取覆盖账本: %w", err)
	}
	return &o, nil
}

// IsOverridden 报告该用户的目标是否存在持久化的手动覆盖。
func IsOverridden(userID string) (bool, error) {
	o, err := getOverride(userID)
	if err != nil {
		return false, err
	}
	return o != nil, nil
}

// Recalculate 为该用户重算目标并更新store。
// 覆盖账本优先：存在覆盖行时重算退化为把覆盖值重新发布到store，
// 计算器的结果绝不会改写用户亲手设定的目标。
func Recalculate(userID string) error {
	moduleMu.Lock()
	defer moduleMu.Unlock()
	return recalculateLocked(userID)
}

func recalculateLocked(userID string) error {
	o, err := getOverride(userID)
	if err != nil {
		return err
	}
	if o != nil {
		globalStore.set(userID, o.targets(), true)
		return nil
	}

	p, err := profile.GetByUserID(userID)
	if err != nil {
		return err
	}

	currentWeight := p.WeightKG
	if latest, err := weight.LatestByUser(userID); err == nil {
		currentWeight = latest.WeightKG
	} else if !errors.Is(err, weight.ErrNoSamples) {
		return err
	}

	calories := ComputeDailyCalories(p, currentWeight)
	macros := ComputeDailyMacros(p, currentWeight, calories)
	globalStore.set(userID, Targets{
		Calories: calories,
		ProteinG: macros.ProteinG,
		CarbsG:   macros.CarbsG,
		FatG:     macros.FatG,
	}, false)
	return nil
}

// SetOverride 写入手动覆盖：校验边界、落盘覆盖行、入队镜像写入，
// 最后把覆盖值发布到store。此后的自动重算都会被覆盖行短路。
func SetOverride(userID string, t Targets) error {
	if err := ValidateOverride(t); err != nil {
		return err
	}

	moduleMu.Lock()
	defer moduleMu.Unlock()

	o := &CustomNutritionOverride{
		UserID:   userID,
		Calories: t.Calories,
		ProteinG: t.ProteinG,
		CarbsG:   t.CarbsG,
		FatG:     t.FatG,
	}
	err := database.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"calories", "protein_g", "carbs_g", "fat_g"}),
	}).Create(o).Error
	if err != nil {
		return fmt.Errorf("无法写入覆盖账本: %w", err)
	}

	mirror.Enqueue(MirrorUpsertOp(o))
	globalStore.set(userID, t, true)
	return nil
}

// ClearOverride 删除覆盖行并立刻回到自动计算的目标。
// 删除行与重算发布在同一把锁内完成，其他调用方看不到
// “无覆盖但目标还是旧覆盖值”的中间状态。
func ClearOverride(userID string) error {
	moduleMu.Lock()
	defer moduleMu.Unlock()

	if err := database.DB.Where("user_id = ?", userID).Delete(&CustomNutritionOverride{}).Error; err != nil {
		return fmt.Errorf("无法删除覆盖记录: %w", err)
	}
	mirror.Enqueue(MirrorDeleteOp(userID))

	globalStore.ResetManuallyEdited(userID)
	return recalculateLocked(userID)
}

// CurrentTargets 返回该用户当前的目标与手动旗标。
// store为空时先触发一次重算（冷启动或新档案）。
func CurrentTargets(userID string) (Targets, bool, error) {
	if t, ok := globalStore.Get(userID); ok {
		return t, globalStore.IsManuallyEdited(userID), nil
	}
	if err := Recalculate(userID); err != nil {
		return Targets{}, false, err
	}
	t, _ := globalStore.Get(userID)
	return t, globalStore.IsManuallyEdited(userID), nil
}

// GoalProgressFor 计算该用户的体重目标进度。
func GoalProgressFor(userID string) (*GoalProgress, error) {
	p, err := profile.GetByUserID(userID)
	if err != nil {
		return nil, err
	}
	currentWeight := p.WeightKG
	if latest, err := weight.LatestByUser(userID); err == nil {
		currentWeight = latest.WeightKG
	} else if !errors.Is(err, weight.ErrNoSamples) {
		return nil, err
	}
	gp := ComputeGoalProgress(p, currentWeight)
	return &gp, nil
}
