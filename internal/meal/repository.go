package meal

import (
	"context"
	"errors"
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/mirror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"time"
)

// ErrMealNotFound 表示指定的餐食记录不存在或不属于该用户。
var ErrMealNotFound = errors.New("餐食记录不存在")

// CreateLocal 向本地账本写入一条餐食记录。
func CreateLocal(f *MealFact) error {
	if f.Timestamp.IsZero() {
		f.Timestamp = time.Now()
	}
	if err := database.DB.Create(f).Error; err != nil {
		return fmt.Errorf("无法写入餐食记录: %w", err)
	}
	return nil
}

// FactsInRange 返回该用户在[from, to)内的全部餐食记录，时间升序。
// 聚合器依赖这个平坦序列来构造完整基数的分桶。
func FactsInRange(userID string, from, to time.Time) ([]MealFact, error) {
	var facts []MealFact
	err := database.DB.Where("user_id = ? AND timestamp >= ? AND timestamp < ?", userID, from, to).
		Order("timestamp ASC").Find(&facts).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取餐食记录: %w", err)
	}
	return facts, nil
}

// ListByUser 按时间倒序返回该用户的餐食账本。
func ListByUser(userID string, limit int) ([]MealFact, error) {
	if limit <= 0 {
		limit = 100
	}
	var facts []MealFact
	err := database.DB.Where("user_id = ?", userID).
		Order("timestamp DESC").Limit(limit).Find(&facts).Error
	if err != nil {
		return nil, fmt.Errorf("无法读取餐食账本: %w", err)
	}
	return facts, nil
}

// DeleteByUser 删除属于该用户的一条餐食记录。
func DeleteByUser(userID string, id uint) error {
	res := database.DB.Where("user_id = ? AND id = ?", userID, id).Delete(&MealFact{})
	if res.Error != nil {
		return fmt.Errorf("无法删除餐食记录: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrMealNotFound
	}
	return nil
}

// publishFeed 在镜像文档变化后向推送通道广播用户ID。
// 订阅方以全量重算响应，重复广播是无害的。
func publishFeed(userID string) {
	if !database.IsRedisEnabled() || !database.IsRedisHealthy() {
		return
	}
	if err := database.RDB.Publish(database.Ctx, FeedChannel, userID).Err(); err != nil {
		fmt.Printf("无法广播餐食推送: %v\n", err)
	}
}

// MirrorCreateOp 构造镜像meals子集合的合并写，成功后广播推送。
func MirrorCreateOp(f *MealFact) mirror.Op {
	rec := MirrorMealFact{
		ID: f.ID, UserID: f.UserID, Name: f.Name,
		Calories: f.Calories, ProteinG: f.ProteinG, CarbsG: f.CarbsG, FatG: f.FatG,
		Timestamp: f.Timestamp, PortionSize: f.PortionSize, PortionUnit: f.PortionUnit,
		Ingredients: f.Ingredients,
	}
	return mirror.Op{
		Name: fmt.Sprintf("meal:upsert:%d", f.ID),
		Apply: func(ctx context.Context, db *gorm.DB) error {
			err := db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns: []clause.Column{{Name: "id"}},
				DoUpdates: clause.AssignmentColumns([]string{
					"name", "calories", "protein_g", "carbs_g", "fat_g",
					"timestamp", "portion_size", "portion_unit", "ingredients",
				}),
			}).Create(&rec).Error
			if err != nil {
				return err
			}
			publishFeed(rec.UserID)
			return nil
		},
	}
}

// MirrorDeleteOp 构造镜像meals子集合的删除，成功后同样广播推送。
func MirrorDeleteOp(userID string, id uint) mirror.Op {
	return mirror.Op{
		Name: fmt.Sprintf("meal:delete:%d", id),
		Apply: func(ctx context.Context, db *gorm.DB) error {
			if err := db.WithContext(ctx).Delete(&MirrorMealFact{}, id).Error; err != nil {
				return err
			}
			publishFeed(userID)
			return nil
		},
	}
}
