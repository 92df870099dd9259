package bot

import (
	"sync"
	"sync/atomic"
	"time"
)

// Stats 会话统计
//
// 计数器在一个会话内单调不减，只有 Reset 会清零。
// 所有组件都可以写入，展示层通过 Snapshot 读取。
type Stats struct {
	Cycles          atomic.Int64
	Harvests        atomic.Int64
	Sells           atomic.Int64
	Moves           atomic.Int64
	Errors          atomic.Int64
	InventoryChecks atomic.Int64
	Purchases       atomic.Int64
	ShopVisits      atomic.Int64

	mu           sync.Mutex
	startTime    time.Time
	lastSellTime time.Time
}

// StatsSnapshot 统计快照
type StatsSnapshot struct {
	Cycles          int64     `json:"cycles"`
	Harvests        int64     `json:"total_harvests"`
	Sells           int64     `json:"total_sells"`
	Moves           int64     `json:"total_moves"`
	Errors          int64     `json:"errors"`
	InventoryChecks int64     `json:"inventory_checks"`
	Purchases       int64     `json:"purchases"`
	ShopVisits      int64     `json:"shop_visits"`
	StartTime       time.Time `json:"start_time"`
	LastSellTime    time.Time `json:"last_sell_time"`
}

// Uptime 自启动以来的运行时长，未启动返回 0
func (s StatsSnapshot) Uptime(now time.Time) time.Duration {
	if s.StartTime.IsZero() {
		return 0
	}
	return now.Sub(s.StartTime)
}

// MarkStart 记录会话开始时间
func (s *Stats) MarkStart(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = t
}

// MarkSell 记录一次出售
func (s *Stats) MarkSell(t time.Time) {
	s.Sells.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastSellTime = t
}

// AddError 错误计数加一
func (s *Stats) AddError() {
	s.Errors.Add(1)
}

// Snapshot 读取当前统计
func (s *Stats) Snapshot() StatsSnapshot {
	s.mu.Lock()
	start, lastSell := s.startTime, s.lastSellTime
	s.mu.Unlock()

	return StatsSnapshot{
		Cycles:          s.Cycles.Load(),
		Harvests:        s.Harvests.Load(),
		Sells:           s.Sells.Load(),
		Moves:           s.Moves.Load(),
		Errors:          s.Errors.Load(),
		InventoryChecks: s.InventoryChecks.Load(),
		Purchases:       s.Purchases.Load(),
		ShopVisits:      s.ShopVisits.Load(),
		StartTime:       start,
		LastSellTime:    lastSell,
	}
}

// Reset 清零所有计数并清除开始时间
func (s *Stats) Reset() {
	for _, c := range []*atomic.Int64{
		&s.Cycles, &s.Harvests, &s.Sells, &s.Moves,
		&s.Errors, &s.InventoryChecks, &s.Purchases, &s.ShopVisits,
	} {
		c.Store(0)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.startTime = time.Time{}
	s.lastSellTime = time.Time{}
}
