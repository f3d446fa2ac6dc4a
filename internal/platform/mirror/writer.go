package mirror

import (
	"context"
	"fmt"
	"time"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/pkg/lifecycle"
	"gorm.io/gorm"
)

// Op 是一次对远程镜像的逻辑写入。
// Apply 在镜像连接上执行该写入；镜像写入必须是合并写(upsert)或删除，
// 以便同一个Op被重复执行时结果不变。
type Op struct {
	Name    string
	Attempt int
	Apply   func(ctx context.Context, db *gorm.DB) error
}

const (
	queueSize     = 1024
	maxAttempts   = 3
	retryInterval = 5 * time.Second
)

// opChan 是写后(write-behind)队列。本地提交总是先行，
// 之后调用方把镜像写入塞进该队列即返回，不等待远端确认。
var opChan = make(chan Op, queueSize)

// Enqueue 把一次镜像写入加入写后队列。
// 镜像未启用时静默丢弃；队列已满时丢弃并打印警告——
// 镜像是尽力而为的，绝不允许阻塞面向用户的流程。
func Enqueue(op Op) {
	if !database.IsMirrorEnabled() {
		return
	}
	select {
	case opChan <- op:
	default:
		fmt.Printf("镜像队列已满，丢弃写入 [%s]。\n", op.Name)
	}
}

// Apply 同步执行一次镜像写入，供需要跨设备持久性的调用方
// （如账户创建Saga）等待远端确认。
// 镜像未启用时视为成功：没有远端身份即是纯本地模式。
func Apply(ctx context.Context, op Op) error {
	if !database.IsMirrorEnabled() {
		return nil
	}
	if err := op.Apply(ctx, database.MirrorDB); err != nil {
		return fmt.Errorf("镜像写入 [%s] 失败: %w", op.Name, err)
	}
	return nil
}

// StartWorker 启动写后队列的单一消费者。
// 同一逻辑写入的本地提交先于镜像提交；该Goroutine是Saga之外
// 唯一的镜像写入者，所以镜像端的写入顺序与入队顺序一致。
func StartWorker(handle *lifecycle.Handle) {
	defer handle.Close()
	fmt.Println("镜像同步器已启动。")

	for {
		select {
		case <-handle.Done():
			fmt.Println("镜像同步器: 收到停机信号，正在退出...")
			return
		case op := <-opChan:
			processOp(handle, op)
		}
	}
}

// processOp 执行一次队列中的镜像写入。
// 镜像暂时不可用或写入失败时，有限次重新入队；
// 超过次数后放弃——本地库仍是事实来源，镜像只是尽力而为。
func processOp(handle *lifecycle.Handle, op Op) {
	if !database.IsMirrorHealthy() {
		requeue(handle, op)
		return
	}

	if err := op.Apply(handle.Ctx(), database.MirrorDB); err != nil {
		fmt.Printf("镜像同步器: 写入 [%s] 失败: %v\n", op.Name, err)
		requeue(handle, op)
		return
	}
}

func requeue(handle *lifecycle.Handle, op Op) {
	op.Attempt++
	if op.Attempt >= maxAttempts {
		fmt.Printf("镜像同步器: 写入 [%s] 重试%d次后放弃。\n", op.Name, op.Attempt)
		return
	}
	// 退避后重新入队，避免在镜像宕机期间空转
	go func() {
		if err := handle.Sleep(retryInterval); err != nil {
			return
		}
		Enqueue(op)
	}()
}

// Flush 在停机时尽力清空残留的队列。
// 它不保证成功——镜像本就只承诺尽力而为的一致性。
func Flush(ctx context.Context) {
	if !database.IsMirrorEnabled() {
		return
	}
	for {
		select {
		case op := <-opChan:
			if err := op.Apply(ctx, database.MirrorDB); err != nil {
				fmt.Printf("停机清空: 镜像写入 [%s] 失败: %v\n", op.Name, err)
			}
		default:
			return
		}
	}
}
