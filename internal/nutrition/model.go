package nutrition

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/mirror"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CustomNutritionOverride 是手动覆盖账本：用户亲手设定的目标值。
// 每用户至多一行；行的存在与否就是“是否被手动覆盖”的持久事实，
// 自动重算只有在这一行不存在时才允许改写目标。
type CustomNutritionOverride struct {
	ID        uint      `gorm:"primarykey" json:"-"`
	UserID    string    `gorm:"type:varchar(36);uniqueIndex" json:"user_id"`
	Calories  int       `json:"calories"`
	ProteinG  float64   `json:"protein_g"`
	CarbsG    float64   `json:"carbs_g"`
	FatG      float64   `json:"fat_g"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}

// Targets 是对外可见的每日营养目标。
type Targets struct {
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

func (o *CustomNutritionOverride) targets() Targets {
	return Targets{Calories: o.Calories, ProteinG: o.ProteinG, CarbsG: o.CarbsG, FatG: o.FatG}
}

// MirrorOverride 是覆盖账本在远程镜像里的文档。
type MirrorOverride struct {
	UserID    string `gorm:"type:varchar(36);primarykey"`
	Calories  int
	ProteinG  float64
	CarbsG    float64
	FatG      float64
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

// TableName 指定镜像端的表名
func (MirrorOverride) TableName() string {
	return "mirror_overrides"
}

// TargetsCacheKey 是Redis中目标快照的哈希键。
const TargetsCacheKey = "nutrition:targets"

// MirrorUpsertOp 构造覆盖账本的镜像合并写。
func MirrorUpsertOp(o *CustomNutritionOverride) mirror.Op {
	rec := MirrorOverride{
		UserID:   o.UserID,
		Calories: o.Calories,
		ProteinG: o.ProteinG,
		CarbsG:   o.CarbsG,
		FatG:     o.FatG,
	}
	return mirror.Op{
		Name: fmt.Sprintf("nutrition:override:upsert:%s", o.UserID),
		Apply: func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "user_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"calories", "protein_g", "carbs_g", "fat_g"}),
			}).Create(&rec).Error
		},
	}
}

// MirrorDeleteOp 构造覆盖账本的镜像删除。
func MirrorDeleteOp(userID string) mirror.Op {
	return mirror.Op{
		Name: fmt.Sprintf("nutrition:override:delete:%s", userID),
		Apply: func(ctx context.Context, db *gorm.DB) error {
			return db.WithContext(ctx).Where("user_id = ?", userID).Delete(&MirrorOverride{}).Error
		},
	}
}
