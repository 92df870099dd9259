package grid

import (
	"sync"
	"time"

	"github.com/zoeyai/gardenworker/pkg/bot"
)

// Stepper 发出一次移动按键
type Stepper interface {
	Tap(key string) error
}

// Controller 网格遍历控制器
//
// 独占维护当前位置；其他组件只通过 Position 读取。
// 每一步之后执行 afterStep（背包检查），因为游戏可能在移动途中提示背包已满。
type Controller struct {
	size    Size
	stepper Stepper
	flag    *bot.RunFlag
	stats   *bot.Stats
	delay   time.Duration

	mu        sync.RWMutex
	pos       Position
	away      bool
	afterStep func() error
}

// NewController 创建控制器，delay 为每步之后的等待
func NewController(size Size, stepper Stepper, flag *bot.RunFlag, stats *bot.Stats, delay time.Duration) *Controller {
	return &Controller{
		size:    size,
		stepper: stepper,
		flag:    flag,
		stats:   stats,
		delay:   delay,
	}
}

// SetAfterStep 设置每步之后的回调
func (c *Controller) SetAfterStep(fn func() error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.afterStep = fn
}

// Size 网格尺寸
func (c *Controller) Size() Size {
	return c.size
}

// Position 当前位置
func (c *Controller) Position() Position {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.pos
}

// Away 是否正在离开网格（出售或购买途中）
func (c *Controller) Away() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.away
}

// Reset 位置归零
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pos = Position{}
	c.away = false
}

// Move 沿 dir 移动 steps 步
//
// 运行标志清除时立即返回 bot.ErrStopped，已走的步数保留在 Position 中，
// 此时位置不保证符合遍历顺序。单次按键失败由输入驱动计数，不中断移动。
func (c *Controller) Move(dir Direction, steps int) error {
	dRow, dCol := dir.Delta()

	for i := 0; i < steps; i++ {
		if err := c.flag.Check(); err != nil {
			return err
		}

		_ = c.stepper.Tap(dir.Key())
		c.stats.Moves.Add(1)

		c.mu.Lock()
		c.pos.Row += dRow
		c.pos.Col += dCol
		after := c.afterStep
		c.mu.Unlock()

		if err := c.flag.Sleep(c.delay); err != nil {
			return err
		}
		if after != nil {
			if err := after(); err != nil {
				return err
			}
		}
	}
	return nil
}

// ReturnToOrigin 先向上 row 步，再向左 col 步，完成后位置为 (0,0)
func (c *Controller) ReturnToOrigin() error {
	pos := c.Position()

	if pos.Row > 0 {
		if err := c.Move(Up, pos.Row); err != nil {
			return err
		}
	}
	if pos.Col > 0 {
		if err := c.Move(Left, pos.Col); err != nil {
			return err
		}
	}

	c.Reset()
	return nil
}

// Excursion 离开网格执行 fn，结束后恢复离开前的位置
func (c *Controller) Excursion(fn func() error) error {
	c.mu.Lock()
	saved := c.pos
	c.away = true
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.pos = saved
		c.away = false
		c.mu.Unlock()
	}()

	return fn()
}

// Walk 从 (0,0) 按蛇形顺序访问每个格子，结束后返回原点
//
// visit 在到达格子后调用；格子之间各移动一步（每行最后一格和最后一行之后不移动）。
func (c *Controller) Walk(visit func(Position) error) error {
	c.Reset()

	it := NewSnakeIterator(c.size)
	for cell, ok := it.Next(); ok; cell, ok = it.Next() {
		if err := c.flag.Check(); err != nil {
			return err
		}

		if visit != nil {
			if err := visit(cell); err != nil {
				return err
			}
		}

		if dir, more := NextMove(c.size, cell); more {
			if err := c.Move(dir, 1); err != nil {
				return err
			}
		}
	}

	return c.ReturnToOrigin()
}
