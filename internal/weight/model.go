package weight

import "time"

// WeightSample 是只追加的体重账本中的一条记录。
// 不变量：所有派生计算使用时间戳最新的样本作为“当前体重”，
// 而不是问卷里留档的体重字段。
type WeightSample struct {
	ID        uint      `gorm:"primarykey" json:"id"`
	UserID    string    `gorm:"index;type:varchar(36)" json:"user_id"`
	WeightKG  float64   `json:"weight_kg"`
	Timestamp time.Time `gorm:"index" json:"timestamp"`
}

// MirrorWeightSample 是远程镜像weight子集合中的文档，
// 字段名与本地模式逐一对应，时间戳由服务端生成。
type MirrorWeightSample struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    string    `gorm:"index;type:varchar(36)" json:"user_id"`
	WeightKG  float64   `json:"weight_kg"`
	Timestamp time.Time `json:"timestamp"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MirrorWeightSample) TableName() string { return "mirror_weight" }
