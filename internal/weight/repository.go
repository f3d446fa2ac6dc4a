package weight

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/mirror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNoSamples 表示体重账本中没有该用户的任何样本。
var ErrNoSamples = errors.New("没有体重记录")

// ErrSampleNotFound 表示指定的样本不存在或不属于该用户。
var ErrSampleNotFound = errors.New("体重记录不存在")

// CreateLocal 向本地账本追加一条体重样本。
// 只负责本地侧，供Saga和服务层分别安排镜像写入。
func CreateLocal(s *WeightSample) error {
	if err := database.DB.Create(s).Error; err != nil {
		return fmt.Errorf("无法写入体重样本: %w", err)
	}
	return nil
}

// DeleteLocalByID 按主键删除一条本地样本。
// 它同时是账户创建Saga中初始体重写入的补偿动作。
func DeleteLocalByID(id uint) error {
	if err := database.DB.Delete(&WeightSample{}, id).Error; err != nil {
		return fmt.Errorf("无法删除体重样本: %w", err)
	}
	return nil
}

// LatestByUser 返回该用户时间戳最新的样本。
// 删除最新样本后，次新样本自然成为新的“当前体重”——
// 这里每次都按时间戳排序读取，没有任何缓存可失效。
func LatestByUser(userID string) (*WeightSample, error) {
	var s WeightSample
	err := database.DB.Where("user_id = ?", userID).
		Order("timestamp DESC").Order("id DESC").First(&s).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNoSamples
		}
		return nil, fmt.Errorf("无法读取最新体重样本: %w", err)
	}
	return &s, nil
}

// ListByUser 按时间倒序返回该用户的全部样本。
func ListByUser(userID string) ([]WeightSample, error) {
	var samples []WeightSample
	err := database.DB.Where("user_id = ?", userID).
		Order("timestamp DESC").Order("id DESC").Find(&samples).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取体重账本: %w", err)
	}
	return samples, nil
}

// DeleteByUser 删除属于该用户的一条样本。
func DeleteByUser(userID string, id uint) error {
	res := database.DB.Where("user_id = ? AND id = ?", userID, id).Delete(&WeightSample{})
	if res.Error != nil {
		return fmt.Errorf("无法删除体重样本: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrSampleNotFound
	}
	return nil
}

// MirrorCreateOp 构造镜像weight子集合的合并写。
// 以本地主键为镜像主键，重复投递只会覆盖同一文档。
func MirrorCreateOp(s *WeightSample) mirror.Op {
	rec := MirrorWeightSample{ID: s.ID, UserID: s.UserID, WeightKG: s.WeightKG, Timestamp: s.Timestamp}
	return mirror.Op{
		Name: fmt.Sprintf("weight:upsert:%d", s.ID),
		Apply: func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{"weight_kg", "timestamp"}),
			}).Create(&rec).Error
		},
	}
}

// MirrorDeleteOp 构造镜像weight子集合的删除。
func MirrorDeleteOp(id uint) mirror.Op {
	return mirror.Op{
		Name: fmt.Sprintf("weight:delete:%d", id),
		Apply: func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).Delete(&MirrorWeightSample{}, id).Error
		},
	}
}
