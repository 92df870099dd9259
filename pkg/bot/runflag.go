package bot

import (
	"sync"
	"sync/atomic"
	"time"
)

// RunFlag 协作式运行标志
//
// 工作协程在每一步（按键、截图、购买）之前轮询它；清除后正在进行的等待会立即返回。
type RunFlag struct {
	running atomic.Bool

	mu   sync.Mutex
	done chan struct{}
}

// NewRunFlag 创建处于停止状态的运行标志
func NewRunFlag() *RunFlag {
	done := make(chan struct{})
	close(done)
	return &RunFlag{done: done}
}

// Raise 置位运行标志，已在运行时返回 false
func (f *RunFlag) Raise() bool {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.running.Load() {
		return false
	}
	f.done = make(chan struct{})
	f.running.Store(true)
	return true
}

// Clear 清除运行标志，唤醒所有可中断等待
func (f *RunFlag) Clear() {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.running.Load() {
		return
	}
	f.running.Store(false)
	close(f.done)
}

// Running 是否应继续运行
func (f *RunFlag) Running() bool {
	return f.running.Load()
}

// Done 返回在标志清除时关闭的通道
func (f *RunFlag) Done() <-chan struct{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.done
}

// Check 标志已清除时返回 ErrStopped
func (f *RunFlag) Check() error {
	if !f.Running() {
		return ErrStopped
	}
	return nil
}

// Sleep 可中断等待，等待期间标志被清除则返回 ErrStopped
func (f *RunFlag) Sleep(d time.Duration) error {
	if err := f.Check(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-f.Done():
		return ErrStopped
	}
}
