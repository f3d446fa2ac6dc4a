package meal

import (
	"context"
	"errors"
	"math"
)

// ErrProductNotFound 表示条码在商品库中不存在。
var ErrProductNotFound = errors.New("商品未找到")

// DefaultPortionSize 是条码商品映射为餐食记录时的默认份量。
// 商品库的营养字段按每100单位给出。
const DefaultPortionSize = 100.0

// ProductFacts 是商品库返回的条码商品信息，营养字段均为每100单位。
type ProductFacts struct {
	Barcode  string  `json:"barcode"`
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	Unit     string  `json:"unit"`
}

// LookupClient 是条码商品库的外部协作方接口。
// 本模块只消费它，不关心其实现（HTTP商品库、本地缓存等）。
type LookupClient interface {
	Lookup(ctx context.Context, barcode string) (*ProductFacts, error)
}

// FromProduct 把商品信息映射为一条餐食草稿，默认份量100单位。
func FromProduct(userID string, p *ProductFacts) *MealFact {
	unit := p.Unit
	if unit == "" {
		unit = "g"
	}
	return &MealFact{
		UserID:      userID,
		Name:        p.Name,
		Calories:    p.Calories,
		ProteinG:    p.ProteinG,
		CarbsG:      p.CarbsG,
		FatG:        p.FatG,
		PortionSize: DefaultPortionSize,
		PortionUnit: unit,
	}
}

// ScaleToPortion 把一条以100单位为基准的餐食草稿换算到新的份量，
// 四个营养字段按比例重算。非法份量保持草稿不变。
func ScaleToPortion(f *MealFact, portionSize float64) {
	if portionSize <= 0 || f.PortionSize <= 0 {
		return
	}
	ratio := portionSize / f.PortionSize
	f.Calories = int(math.Round(float64(f.Calories) * ratio))
	f.ProteinG = f.ProteinG * ratio
	f.CarbsG = f.CarbsG * ratio
	f.FatG = f.FatG * ratio
	f.PortionSize = portionSize
}
