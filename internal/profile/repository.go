package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/mirror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrProfileNotFound 表示该用户尚未完成问卷。
var ErrProfileNotFound = errors.New("用户档案不存在")

// NormalizeBirthDate 在仓库边界把松散类型的年龄输入归一为唯一的出生日期表示。
// 历史客户端可能提交日期字符串，也可能只提交一个年龄数字；
// 进入计算器之前必须收敛为 time.Time。
func NormalizeBirthDate(birthDate string, age int) (time.Time, error) {
	if birthDate != "" {
		t, err := time.Parse("2006-01-02", birthDate)
		if err != nil {
			return time.Time{}, fmt.Errorf("无法解析出生日期 %q: %w", birthDate, err)
		}
		return t, nil
	}
	if age > 0 && age < 150 {
		now := time.Now()
		return time.Date(now.Year()-age, now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, errors.New("必须提供出生日期或有效的年龄")
}

// GetByUserID 从本地库读取用户档案。
func GetByUserID(userID string) (*OnboardingProfile, error) {
	var p OnboardingProfile
	if err := database.DB.Where("user_id = ?", userID).First(&p).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("无法读取用户档案: %w", err)
	}
	return &p, nil
}

// ListAll 返回本地库中的全部档案，供启动时预热派生目标。
func ListAll() ([]OnboardingProfile, error) {
	var profiles []OnboardingProfile
	if err := database.DB.Find(&profiles).Error; err != nil {
		return nil, fmt.Errorf("无法读取档案列表: %w", err)
	}
	return profiles, nil
}

// CreateLocal 在本地库写入档案行。每用户至多一行由唯一索引保证。
func CreateLocal(p *OnboardingProfile) error {
	if err := database.DB.Create(p).Error; err != nil {
		return fmt.Errorf("无法创建本地档案行: %w", err)
	}
	return nil
}

// DeleteLocalByUserID 删除本地档案行。
// 它是账户创建Saga中本地写入步骤的补偿动作。
func DeleteLocalByUserID(userID string) error {
	if err := database.DB.Where("user_id = ?", userID).Delete(&OnboardingProfile{}).Error; err != nil {
		return fmt.Errorf("无法删除本地档案行: %w", err)
	}
	return nil
}

// UpdateLocal 对本地档案行应用字段补丁。
func UpdateLocal(userID string, patch map[string]interface{}) error {
	res := database.DB.Model(&OnboardingProfile{}).Where("user_id = ?", userID).Updates(patch)
	if res.Error != nil {
		return fmt.Errorf("无法更新本地档案: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrProfileNotFound
	}
	return nil
}

// MirrorUpsertOp 构造远程镜像中用户文档的合并写。
// onboarding字段整体替换为档案的最新JSON，created_at保持首次写入的值。
func MirrorUpsertOp(p *OnboardingProfile) mirror.Op {
	doc, _ := json.Marshal(p)
	return mirror.Op{
		Name: "profile:upsert:" + p.UserID,
		Apply: func(ctx context.Context, db *gorm.DB) error {
			rec := MirrorUser{UserID: p.UserID, Onboarding: string(doc)}
			return db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"onboarding"}),
			}).Create(&rec).Error
		},
	}
}
