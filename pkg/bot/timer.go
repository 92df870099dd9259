package bot

import (
	"sync"
	"time"
)

// AutobuyTimer 自动购买计时器
//
// 倒计时由 last + interval - now 推导；每次尝试购买（无论成败）后重置为完整间隔。
type AutobuyTimer struct {
	mu       sync.Mutex
	last     time.Time
	interval time.Duration
	now      func() time.Time
}

// NewAutobuyTimer 创建计时器，now 为 nil 时使用 time.Now
func NewAutobuyTimer(interval time.Duration, now func() time.Time) *AutobuyTimer {
	if now == nil {
		now = time.Now
	}
	return &AutobuyTimer{
		last:     now(),
		interval: interval,
		now:      now,
	}
}

// Interval 购买间隔
func (t *AutobuyTimer) Interval() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.interval
}

// SetInterval 修改购买间隔，不影响上次购买时间
func (t *AutobuyTimer) SetInterval(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.interval = d
}

// Reset 以当前时间作为上次购买时间
func (t *AutobuyTimer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.now()
}

// ResetWithin 让下一次购买在 d 之后到期
func (t *AutobuyTimer) ResetWithin(d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.last = t.now().Add(d - t.interval)
}

// Remaining 距离下一次购买的剩余时间，不小于 0
func (t *AutobuyTimer) Remaining() time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()

	remaining := t.interval - t.now().Sub(t.last)
	if remaining < 0 {
		return 0
	}
	return remaining
}

// Due 倒计时是否已归零
func (t *AutobuyTimer) Due() bool {
	return t.Remaining() == 0
}
