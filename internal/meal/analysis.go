package meal

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// AnalysisStatus 是外部分析任务上报的状态。
type AnalysisStatus string

const (
	AnalysisPending AnalysisStatus = "pending"
	AnalysisDone    AnalysisStatus = "done"
	AnalysisError   AnalysisStatus = "error"
)

// AnalysisResult 是分析任务完成时返回的餐食识别结果。
type AnalysisResult struct {
	Name        string       `json:"name"`
	Calories    int          `json:"calories"`
	ProteinG    float64      `json:"protein_g"`
	CarbsG      float64      `json:"carbs_g"`
	FatG        float64      `json:"fat_g"`
	Ingredients []Ingredient `json:"ingredients,omitempty"`
}

// Analyzer 是图像分析任务的外部协作方接口。
// 任务本身运行在远端；本模块只负责提交与带上限的轮询。
type Analyzer interface {
	Submit(ctx context.Context, image []byte, description string) (string, error)
	Poll(ctx context.Context, jobID string) (AnalysisStatus, *AnalysisResult, error)
}

var (
	// ErrAnalysisTimeout 表示轮询超出尝试次数预算，任务被放弃。
	ErrAnalysisTimeout = errors.New("餐食分析超时")
	// ErrAnalysisFailed 表示分析任务自身上报了失败。
	ErrAnalysisFailed = errors.New("餐食分析失败")
)

// jobPhase 是轮询状态机的内部状态。
// submitted → polling → done | failed | timedOut
type jobPhase int

const (
	phaseSubmitted jobPhase = iota
	phasePolling
	phaseDone
	phaseFailed
	phaseTimedOut
)

// runAnalysisJob 驱动一次完整的分析任务：提交后以固定间隔轮询，
// 由单一的尝试计数器约束总时长，调用方取消上下文即放弃任务。
// 只有 done 状态返回结果；超时或失败时不提交任何餐食记录。
func runAnalysisJob(ctx context.Context, analyzer Analyzer, image []byte, description string, interval time.Duration, maxAttempts int) (*AnalysisResult, error) {
	phase := phaseSubmitted

	jobID, err := analyzer.Submit(ctx, image, description)
	if err != nil {
		return nil, fmt.Errorf("无法提交分析任务: %w", err)
	}
	phase = phasePolling

	attempts := 0
	for phase == phasePolling {
		if attempts >= maxAttempts {
			phase = phaseTimedOut
			break
		}

		// 固定间隔的可取消休眠
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}

		attempts++
		status, result, err := analyzer.Poll(ctx, jobID)
		if err != nil {
			// 单次轮询失败计入预算，继续重试
			fmt.Printf("分析任务 %s 第%d次轮询失败: %v\n", jobID, attempts, err)
			continue
		}

		switch status {
		case AnalysisDone:
			phase = phaseDone
			return result, nil
		case AnalysisError:
			phase = phaseFailed
		case AnalysisPending:
			// 继续轮询
		}
	}

	if phase == phaseFailed {
		return nil, ErrAnalysisFailed
	}
	return nil, ErrAnalysisTimeout
}
