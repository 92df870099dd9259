package input

import (
	"fmt"
	"time"
)

// 常用按键
const (
	KeySpace  = "space"
	KeyEscape = "esc"
	KeyShift  = "shift"
)

// Driver 输入驱动
//
// 所有操作同步执行并阻塞到配置的时长结束；操作间的间隔由调用方负责。
// 单次输入失败会被计数并返回，但按下的键在任何路径上都会被释放。
type Driver struct {
	backend    Backend
	keyHold    time.Duration
	hotkeyHold time.Duration
	hotkeyPost time.Duration
	sleep      func(time.Duration)
	onError    func(error)
}

// Option Driver 选项
type Option func(*Driver)

// WithErrorHook 输入失败时回调
func WithErrorHook(fn func(error)) Option {
	return func(d *Driver) {
		d.onError = fn
	}
}

// WithTiming 设置默认按键时长
func WithTiming(keyHold, hotkeyHold, hotkeyPost time.Duration) Option {
	return func(d *Driver) {
		d.keyHold = keyHold
		d.hotkeyHold = hotkeyHold
		d.hotkeyPost = hotkeyPost
	}
}

// WithSleep 替换等待函数
func WithSleep(fn func(time.Duration)) Option {
	return func(d *Driver) {
		d.sleep = fn
	}
}

// NewDriver 创建输入驱动
func NewDriver(backend Backend, opts ...Option) *Driver {
	d := &Driver{
		backend:    backend,
		keyHold:    50 * time.Millisecond,
		hotkeyHold: 200 * time.Millisecond,
		hotkeyPost: 500 * time.Millisecond,
		sleep:      time.Sleep,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// KeyDown 按下键
func (d *Driver) KeyDown(key string) error {
	return d.do("按下 "+key, func() error { return d.backend.KeyDown(key) })
}

// KeyUp 释放键
func (d *Driver) KeyUp(key string) error {
	return d.do("释放 "+key, func() error { return d.backend.KeyUp(key) })
}

// Press 按住 hold 后释放，hold <= 0 时使用默认时长
func (d *Driver) Press(key string, hold time.Duration) (err error) {
	if hold <= 0 {
		hold = d.keyHold
	}

	defer func() {
		if upErr := d.KeyUp(key); err == nil {
			err = upErr
		}
	}()

	if err := d.KeyDown(key); err != nil {
		return err
	}
	d.pause(hold)
	return nil
}

// Tap 使用默认时长按键
func (d *Driver) Tap(key string) error {
	return d.Press(key, 0)
}

// Hotkey 组合键：按下 k1，等待 pre，按下 k2，等待 pre，按相反顺序释放，再等待 post
func (d *Driver) Hotkey(k1, k2 string, pre, post time.Duration) (err error) {
	var pressed []string
	defer func() {
		for i := len(pressed) - 1; i >= 0; i-- {
			if upErr := d.KeyUp(pressed[i]); err == nil {
				err = upErr
			}
		}
		if err == nil {
			d.pause(post)
		}
	}()

	for _, key := range []string{k1, k2} {
		if err := d.KeyDown(key); err != nil {
			return err
		}
		pressed = append(pressed, key)
		d.pause(pre)
	}
	return nil
}

// Shortcut 使用默认时长的组合键
func (d *Driver) Shortcut(k1, k2 string) error {
	return d.Hotkey(k1, k2, d.hotkeyHold, d.hotkeyPost)
}

// MoveTo 移动鼠标
func (d *Driver) MoveTo(x, y int) error {
	return d.do(fmt.Sprintf("移动到 (%d,%d)", x, y), func() error { return d.backend.MoveTo(x, y) })
}

// Click 在指定位置单击
func (d *Driver) Click(x, y int) error {
	return d.do(fmt.Sprintf("点击 (%d,%d)", x, y), func() error { return d.backend.Click(x, y) })
}

// Scroll 滚动滚轮，负数向下
func (d *Driver) Scroll(notches int) error {
	return d.do(fmt.Sprintf("滚动 %d", notches), func() error { return d.backend.Scroll(notches) })
}

func (d *Driver) pause(dur time.Duration) {
	if dur > 0 {
		d.sleep(dur)
	}
}

// do 执行一次输入，panic 转为错误并回调计数
func (d *Driver) do(op string, fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s 异常: %v", op, r)
		}
		if err != nil && d.onError != nil {
			d.onError(err)
		}
	}()

	if err := fn(); err != nil {
		return fmt.Errorf("%s 失败: %w", op, err)
	}
	return nil
}
