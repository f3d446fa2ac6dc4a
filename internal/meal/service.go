package meal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/config"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/mirror"
)

// ErrCollaboratorUnavailable 表示对应的外部协作方尚未接入。
var ErrCollaboratorUnavailable = errors.New("外部服务未配置")

// 外部协作方由main在启动时注入；保持为nil表示该能力不可用。
var (
	configuredAnalyzer Analyzer
	configuredLookup   LookupClient
)

// Configure 注入外部协作方实现。只应在启动阶段调用。
func Configure(analyzer Analyzer, lookup LookupClient) {
	configuredAnalyzer = analyzer
	configuredLookup = lookup
}

// ManualInput 是手动录入一餐的归一化输入。
type ManualInput struct {
	Name        string
	Calories    int
	ProteinG    float64
	CarbsG      float64
	FatG        float64
	Timestamp   time.Time
	PortionSize float64
	PortionUnit string
	Ingredients []Ingredient
}

// LogManual 手动记录一餐：本地先行提交，镜像走写后队列。
func LogManual(userID string, in ManualInput) (*MealFact, error) {
	f := &MealFact{
		UserID:      userID,
		Name:        in.Name,
		Calories:    in.Calories,
		ProteinG:    in.ProteinG,
		CarbsG:      in.CarbsG,
		FatG:        in.FatG,
		Timestamp:   in.Timestamp,
		PortionSize: in.PortionSize,
		PortionUnit: in.PortionUnit,
	}
	if len(in.Ingredients) > 0 {
		raw, err := json.Marshal(in.Ingredients)
		if err != nil {
			return nil, fmt.Errorf("无法序列化成分明细: %w", err)
		}
		f.Ingredients = string(raw)
	}

	if err := CreateLocal(f); err != nil {
		return nil, err
	}
	mirror.Enqueue(MirrorCreateOp(f))
	return f, nil
}

// LogBarcode 通过条码记录一餐：查询商品库，映射为默认份量100的草稿，
// 调用方指定份量时按比例重算四个营养字段。
func LogBarcode(ctx context.Context, userID, barcode string, portionSize float64) (*MealFact, error) {
	if configuredLookup == nil {
		return nil, ErrCollaboratorUnavailable
	}

	p, err := configuredLookup.Lookup(ctx, barcode)
	if err != nil {
		return nil, err
	}

	f := FromProduct(userID, p)
	if portionSize > 0 {
		ScaleToPortion(f, portionSize)
	}

	if err := CreateLocal(f); err != nil {
		return nil, err
	}
	mirror.Enqueue(MirrorCreateOp(f))
	return f, nil
}

// LogAnalysis 提交图像分析任务并轮询直至完成或超出预算。
// 超时或失败时不提交任何餐食记录，只向用户呈现一条错误。
func LogAnalysis(ctx context.Context, userID string, image []byte, description string) (*MealFact, error) {
	if configuredAnalyzer == nil {
		return nil, ErrCollaboratorUnavailable
	}

	interval := 2 * time.Second
	maxAttempts := 15
	if config.Cfg != nil {
		if config.Cfg.Analysis.PollIntervalMS > 0 {
			interval = time.Duration(config.Cfg.Analysis.PollIntervalMS) * time.Millisecond
		}
		if config.Cfg.Analysis.MaxAttempts > 0 {
			maxAttempts = config.Cfg.Analysis.MaxAttempts
		}
	}

	result, err := runAnalysisJob(ctx, configuredAnalyzer, image, description, interval, maxAttempts)
	if err != nil {
		return nil, err
	}

	in := ManualInput{
		Name:        result.Name,
		Calories:    result.Calories,
		ProteinG:    result.ProteinG,
		CarbsG:      result.CarbsG,
		FatG:        result.FatG,
		Ingredients: result.Ingredients,
	}
	return LogManual(userID, in)
}

// DeleteMeal 整条删除一条餐食记录（记录不可修改，只能删除后重录）。
func DeleteMeal(userID string, id uint) error {
	if err := DeleteByUser(userID, id); err != nil {
		return err
	}
	mirror.Enqueue(MirrorDeleteOp(userID, id))
	return nil
}

// DailySummary 是当日营养汇总，由订阅处理器缓存到Redis。
type DailySummary struct {
	Date     string  `json:"date"`
	Calories int     `json:"calories"`
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
}

// RefreshDailySummary 从本地账本全量重算该用户当日的营养汇总并写入缓存。
// 推送通道可能对同一变化重复触发，全量重算保证处理天然幂等。
func RefreshDailySummary(userID string) error {
	now := time.Now()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	facts, err := FactsInRange(userID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return err
	}

	summary := DailySummary{Date: dayStart.Format("2006-01-02")}
	for i := range facts {
		summary.Calories += facts[i].Calories
		summary.ProteinG += facts[i].ProteinG
		summary.CarbsG += facts[i].CarbsG
		summary.FatG += facts[i].FatG
	}

	if !database.IsRedisEnabled() || !database.IsRedisHealthy() {
		return nil
	}
	raw, _ := json.Marshal(summary)
	if err := database.RDB.HSet(database.Ctx, DailySummaryKey, userID, raw).Err(); err != nil {
		return fmt.Errorf("无法写入当日汇总缓存: %w", err)
	}
	return nil
}
