package saga

import (
	"context"
	"fmt"
)

// Step 是一次多存储变更中的一个有序步骤。
// Commit 提交该步骤；Compensate 在后续步骤失败时撤销它。
// Compensate 可以为nil，表示该步骤无需补偿（例如幂等的缓存刷新）。
type Step struct {
	Name       string
	Commit     func(ctx context.Context) error
	Compensate func(ctx context.Context) error
}

// Saga 把一次跨本地库/远程镜像的多步变更建模为有序的提交列表，
// 以及与之匹配的补偿列表。任何一步失败时，已提交的步骤会被严格
// 按提交的逆序补偿，调用方最终只看到一个合并后的错误。
type Saga struct {
	name  string
	steps []Step
}

// New 创建一个命名的Saga。名字只用于日志和错误信息。
func New(name string) *Saga {
	return &Saga{name: name}
}

// AddStep 按提交顺序追加一个步骤。
func (s *Saga) AddStep(step Step) *Saga {
	s.steps = append(s.steps, step)
	return s
}

// Run 依次提交所有步骤。某一步失败时，按逆序执行此前所有已提交
// 步骤的补偿动作，然后返回失败步骤的错误。补偿自身的失败不会中断
// 剩余的补偿，只会被追加到最终错误中。
func (s *Saga) Run(ctx context.Context) error {
	for i, step := range s.steps {
		if err := step.Commit(ctx); err != nil {
			commitErr := fmt.Errorf("事务 [%s] 在步骤 [%s] 失败: %w", s.name, step.Name, err)
			// 逆序补偿所有已成功提交的步骤
			for j := i - 1; j >= 0; j-- {
				prev := s.steps[j]
				if prev.Compensate == nil {
					continue
				}
				if cerr := prev.Compensate(ctx); cerr != nil {
					commitErr = fmt.Errorf("%w; 补偿步骤 [%s] 也失败: %v", commitErr, prev.Name, cerr)
				}
			}
			return commitErr
		}
	}
	return nil
}
