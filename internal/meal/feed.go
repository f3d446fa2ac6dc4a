package meal

import (
	"fmt"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
	"github.com/SlpAus/nutrition-ledger-backend/pkg/lifecycle"
)

// StartFeedSubscriber 订阅餐食镜像的推送通道，用于后台刷新派生汇总。
// 通道对任何文档变化都会重新触发，处理器通过全量重算保持幂等；
// 关键路径从不同步读取镜像，这里是镜像数据影响本进程的唯一入口。
func StartFeedSubscriber(handle *lifecycle.Handle) {
	defer handle.Close()

	if !database.IsRedisEnabled() {
		fmt.Println("餐食推送订阅器: Redis未启用，跳过。")
		return
	}

	pubsub := database.RDB.Subscribe(database.Ctx, FeedChannel)
	defer pubsub.Close()
	ch := pubsub.Channel()

	fmt.Println("餐食推送订阅器已启动。")

	for {
		select {
		case <-handle.Done():
			fmt.Println("餐食推送订阅器: 收到停机信号，正在退出...")
			return
		case msg, ok := <-ch:
			if !ok {
				fmt.Println("餐食推送订阅器: 通道已关闭。")
				return
			}
			userID := msg.Payload
			if err := RefreshDailySummary(userID); err != nil {
				fmt.Printf("餐食推送订阅器: 刷新用户 %s 的汇总失败: %v\n", userID, err)
			}
		}
	}
}
