package nutrition

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/SlpAus/nutrition-ledger-backend/internal/platform/database"
)

// Update 是目标store推送给订阅者的一次变化通知。
type Update struct {
	UserID  string  `json:"user_id"`
	Targets Targets `json:"targets"`
	Manual  bool    `json:"manual"`
}

// Store 是响应式目标store：内存中的目标快照加变化广播。
// 它本身不做任何计算与持久化——写入路径全部经过服务层，
// 服务层算好（或读好）目标后调用set，store只负责保存和扇出。
type Store struct {
	mu      sync.RWMutex
	targets map[string]Targets
	manual  map[string]bool
	subs    []chan Update
}

func newStore() *Store {
	return &Store{
		targets: make(map[string]Targets),
		manual:  make(map[string]bool),
	}
}

// 包内单例，由PrimeModule赋值
var globalStore *Store

// TargetStore 返回目标store单例。
func TargetStore() *Store {
	return globalStore
}

// Get 返回该用户当前的目标快照。
// 档案尚未完成或重算尚未发生时返回false——store可以为空，
// 首次成功重算之后才会被填充。
func (s *Store) Get(userID string) (Targets, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.targets[userID]
	return t, ok
}

// IsManuallyEdited 返回该用户的目标是否处于手动覆盖状态。
func (s *Store) IsManuallyEdited(userID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.manual[userID]
}

// ResetManuallyEdited 只清除内存中的手动旗标，不触碰覆盖账本。
// 自动重算落盘后防御性调用，保证旗标与账本行的存在性一致。
func (s *Store) ResetManuallyEdited(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.manual[userID] = false
}

// Subscribe 返回一个接收目标变化的通道。
// 只应在启动阶段调用；通道带缓冲，广播从不阻塞写入方。
func (s *Store) Subscribe() <-chan Update {
	s.mu.Lock()
	defer s.mu.Unlock()
	ch := make(chan Update, 16)
	s.subs = append(s.subs, ch)
	return ch
}

// Set 是目标写入的统一入口：手动写入经过覆盖账本（校验、落盘、
// 置旗标），自动写入只更新内存快照与缓存。
func (s *Store) Set(userID string, t Targets, manual bool) error {
	if manual {
		return SetOverride(userID, t)
	}
	s.set(userID, t, false)
	return nil
}

// set 写入新目标并广播。订阅者迟钝时丢弃通知而不是阻塞——
// 快照永远可以从Get重新读到，通知只是“该刷新了”的信号。
func (s *Store) set(userID string, t Targets, manual bool) {
	s.mu.Lock()
	s.targets[userID] = t
	s.manual[userID] = manual
	subs := s.subs
	s.mu.Unlock()

	u := Update{UserID: userID, Targets: t, Manual: manual}
	for _, ch := range subs {
		select {
		case ch <- u:
		default:
		}
	}

	cacheTargets(userID, u)
}

// drop 移除该用户的快照（账户注销时使用）。
func (s *Store) drop(userID string) {
	s.mu.Lock()
	delete(s.targets, userID)
	delete(s.manual, userID)
	s.mu.Unlock()
}

// cacheTargets 把目标快照写入Redis哈希，供其他进程读取。
// 缓存是尽力而为的，失败只打印警告。
func cacheTargets(userID string, u Update) {
	if !database.IsRedisEnabled() || !database.IsRedisHealthy() {
		return
	}
	raw, _ := json.Marshal(u)
	if err := database.RDB.HSet(database.Ctx, TargetsCacheKey, userID, raw).Err(); err != nil {
		fmt.Printf("警告: 无法写入目标缓存: %v\n", err)
	}
}
