package meal

import "time"

// MealFact 是餐食账本中的一条记录。
// 一经保存不可修改，只能整条删除后重新记录；
// 创建来源可以是图像分析、条码扫描或手动录入。
type MealFact struct {
	ID       uint    `gorm:"primarykey" json:"id"`
	UserID   string  `gorm:"index;type:varchar(36)" json:"user_id"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`

	Timestamp time.Time `gorm:"index" json:"timestamp"`

	// 可选的份量与成分明细
	PortionSize float64 `json:"portion_size,omitempty"`
	PortionUnit string  `json:"portion_unit,omitempty"`
	// Ingredients 存放成分明细的JSON序列化，允许为空
	Ingredients string `gorm:"type:text" json:"ingredients,omitempty"`
}

// Ingredient 是成分明细中的一项。
type Ingredient struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// MirrorMealFact 是远程镜像meals子集合中的文档，
// 字段名与本地模式逐一对应，时间戳由服务端生成。
type MirrorMealFact struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	UserID      string    `gorm:"index;type:varchar(36)" json:"user_id"`
	Name        string    `json:"name"`
	Calories    int       `json:"calories"`
	ProteinG    float64   `json:"protein_g"`
	CarbsG      float64   `json:"carbs_g"`
	FatG        float64   `json:"fat_g"`
	Timestamp   time.Time `json:"timestamp"`
	PortionSize float64   `json:"portion_size"`
	PortionUnit string    `json:"portion_unit"`
	Ingredients string    `gorm:"type:text" json:"ingredients"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (MirrorMealFact) TableName() string { return "mirror_meals" }

// FeedChannel 是餐食镜像文档变化时的推送通道。
// 任何文档变化都会重新触发推送，订阅方的处理必须幂等。
const FeedChannel = "mirror:meals:feed"

// DailySummaryKey 是一个 Redis Hash 的键，缓存每个用户当日的营养汇总。
// Field: 用户UUID；Value: 汇总JSON。由订阅处理器全量重算写入，天然幂等。
const DailySummaryKey = "meal:summary:today"
