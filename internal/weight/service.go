package weight

import (
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/mirror"
)

// --- 重算触发钩子 ---
// 当前体重变化（新样本或删除了最新样本）后触发目标重算。
// nutrition模块在启动时注册，避免循环依赖。

var changeHooks []func(userID string)

// RegisterChangeHook 注册一个体重变化后的回调。
// 只应在启动阶段（单线程）调用。
func RegisterChangeHook(hook func(userID string)) {
	changeHooks = append(changeHooks, hook)
}

func fireChange(userID string) {
	for _, hook := range changeHooks {
		hook(userID)
	}
}

// RecordWeight 记录一次体重：本地先行提交，镜像走写后队列，随后触发重算。
func RecordWeight(userID string, weightKG float64, at time.Time) (*WeightSample, error) {
	if at.IsZero() {
		at = time.Now()
	}
	s := &WeightSample{UserID: userID, WeightKG: weightKG, Timestamp: at}
	if err := CreateLocal(s); err != nil {
		return nil, err
	}

	mirror.Enqueue(MirrorCreateOp(s))

	fireChange(userID)
	return s, nil
}

// DeleteSample 删除一条体重样本。
// 如果删掉的是最新样本，次新样本会被重新提升为“当前体重”，
// 之后的重算自然以它为准。
func DeleteSample(userID string, id uint) error {
	if err := DeleteByUser(userID, id); err != nil {
		return err
	}

	mirror.Enqueue(MirrorDeleteOp(id))

	fireChange(userID)
	return nil
}
