package saga_test

import (
	"context"
	"errors"
	"testing"

	"github.com/SlpAus/nutrition-ledger-backend/pkg/saga"
)

func TestRunCommitsInOrder(t *testing.T) {
	t.Parallel()
	var order []string
	s := saga.New("test")
	for _, name := range []string{"a", "b", "c"} {
		name := name
		s.AddStep(saga.Step{
			Name:   name,
			Commit: func(ctx context.Context) error { order = append(order, name); return nil },
		})
	}
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("预期全部步骤提交成功, 实际错误: %v", err)
	}
	if len(order) != 3 || order[0] != "a" || order[1] != "b" || order[2] != "c" {
		t.Fatalf("提交顺序错误: %v", order)
	}
}

func TestRunCompensatesInReverseOrder(t *testing.T) {
	t.Parallel()
	var compensated []string
	s := saga.New("test")
	s.AddStep(saga.Step{
		Name:       "identity",
		Commit:     func(ctx context.Context) error { return nil },
		Compensate: func(ctx context.Context) error { compensated = append(compensated, "identity"); return nil },
	})
	s.AddStep(saga.Step{
		Name:       "local",
		Commit:     func(ctx context.Context) error { return nil },
		Compensate: func(ctx context.Context) error { compensated = append(compensated, "local"); return nil },
	})
	s.AddStep(saga.Step{
		Name:   "mirror",
		Commit: func(ctx context.Context) error { return errors.New("远程不可用") },
	})

	err := s.Run(context.Background())
	if err == nil {
		t.Fatalf("预期Saga返回失败步骤的错误")
	}
	if len(compensated) != 2 || compensated[0] != "local" || compensated[1] != "identity" {
		t.Fatalf("补偿顺序应为提交的严格逆序, 实际: %v", compensated)
	}
}

func TestRunCompensationFailureDoesNotStopRemaining(t *testing.T) {
	t.Parallel()
	var compensated []string
	s := saga.New("test")
	s.AddStep(saga.Step{
		Name:       "first",
		Commit:     func(ctx context.Context) error { return nil },
		Compensate: func(ctx context.Context) error { compensated = append(compensated, "first"); return nil },
	})
	s.AddStep(saga.Step{
		Name:       "second",
		Commit:     func(ctx context.Context) error { return nil },
		Compensate: func(ctx context.Context) error { return errors.New("补偿失败") },
	})
	s.AddStep(saga.Step{
		Name:   "third",
		Commit: func(ctx context.Context) error { return errors.New("提交失败") },
	})

	err := s.Run(context.Background())
	if err == nil {
		t.Fatalf("预期返回合并后的错误")
	}
	if len(compensated) != 1 || compensated[0] != "first" {
		t.Fatalf("即使某步补偿失败, 也应继续补偿更早的步骤, 实际: %v", compensated)
	}
}

func TestRunNilCompensateIsSkipped(t *testing.T) {
	t.Parallel()
	s := saga.New("test")
	s.AddStep(saga.Step{
		Name:   "no-compensation",
		Commit: func(ctx context.Context) error { return nil },
	})
	s.AddStep(saga.Step{
		Name:   "fails",
		Commit: func(ctx context.Context) error { return errors.New("失败") },
	})
	if err := s.Run(context.Background()); err == nil {
		t.Fatalf("预期返回错误")
	}
}
