// Package farm 实现收获/出售循环
//
// 状态流转: 扫描格子 → 收获 → 背包检查 → [出售] → 移动 → 扫描格子 …
// 遍历完全部格子或运行标志清除时结束。
package farm

import (
	"fmt"
	"time"

	"github.com/zoeyai/gardenworker/pkg/auto/grid"
	"github.com/zoeyai/gardenworker/pkg/auto/input"
	"github.com/zoeyai/gardenworker/pkg/auto/screen"
	"github.com/zoeyai/gardenworker/pkg/bot"
	"github.com/zoeyai/gardenworker/pkg/config"
	"github.com/zoeyai/gardenworker/pkg/vision"
)

// 模板文件名
const (
	TemplateInventoryFull = "inventory_full.png"
	TemplateGoToJournal   = "go_to_journal.png"
	TemplateLogNewItems   = "log_new_items_in_journal.png"
	TemplateHarvestButton = "harvest_button.png"
)

// 游戏热键（与 shift 组合）
const (
	HotkeyShop   = "1"
	HotkeyGarden = "2"
	HotkeySell   = "3"
)

// Keys 收获循环用到的输入操作
type Keys interface {
	Tap(key string) error
	Hotkey(k1, k2 string, pre, post time.Duration) error
	Click(x, y int) error
}

// Cycle 收获/出售循环
type Cycle struct {
	cfg     *config.Config
	keys    Keys
	locator vision.Locator
	grid    *grid.Controller
	flag    *bot.RunFlag
	stats   *bot.Stats
	log     bot.Sink
	now     func() time.Time
}

// NewCycle 创建收获循环，并把背包检查挂到控制器的每一步之后
func NewCycle(cfg *config.Config, keys Keys, locator vision.Locator, ctrl *grid.Controller,
	flag *bot.RunFlag, stats *bot.Stats, log bot.Sink) *Cycle {
	if log == nil {
		log = bot.Discard
	}
	c := &Cycle{
		cfg:     cfg,
		keys:    keys,
		locator: locator,
		grid:    ctrl,
		flag:    flag,
		stats:   stats,
		log:     log,
		now:     time.Now,
	}
	ctrl.SetAfterStep(c.sellIfFull)
	return c
}

// Run 执行一轮完整的网格收获，before 在每个格子收获前调用（可为 nil）
//
// 收获和自动购买都未启用时清除运行标志并返回 config.ErrNothingEnabled。
func (c *Cycle) Run(before func(grid.Position) error) error {
	if c.cfg.Mode() == config.ModeNone {
		c.log.Log("配置错误: 收获和自动购买都未启用", bot.SeverityError)
		c.flag.Clear()
		return config.ErrNothingEnabled
	}

	c.log.Log(fmt.Sprintf("开始收获 %v 网格", c.grid.Size()), bot.SeverityInfo)

	err := c.grid.Walk(func(cell grid.Position) error {
		if before != nil {
			if err := before(cell); err != nil {
				return err
			}
		}
		return c.Harvest(cell)
	})
	if err != nil {
		return err
	}

	c.log.Log("网格完成，已返回起点", bot.SeverityInfo)
	return nil
}

// Harvest 在当前格子重复收获，每次之后检查背包
func (c *Cycle) Harvest(cell grid.Position) error {
	for i := 0; i < c.cfg.Harvest.Count; i++ {
		if err := c.flag.Check(); err != nil {
			return err
		}

		_ = c.keys.Tap(input.KeySpace)
		if err := c.flag.Sleep(c.cfg.Harvest.Delay); err != nil {
			return err
		}

		// 单个格子的收获本身就可能把背包装满
		if err := c.sellIfFull(); err != nil {
			return err
		}
	}

	c.stats.Harvests.Add(1)
	return nil
}

// InventoryFull 检查背包已满提示
func (c *Cycle) InventoryFull() bool {
	c.stats.InventoryChecks.Add(1)

	probe := c.locator.Locate(TemplateInventoryFull, c.cfg.Match.InventoryConfidence,
		vision.WithMode(vision.ModeBinary),
		vision.WithArea(screen.ParseArea(c.cfg.Match.InventoryRegion)),
	)
	if probe.Found {
		c.log.Log(fmt.Sprintf("检测到背包已满 (匹配度 %.3f)", probe.Confidence), bot.SeverityInfo)
	}
	return probe.Found
}

// HarvestReady 检查收获按钮是否可见
func (c *Cycle) HarvestReady() vision.Probe {
	return c.locator.Locate(TemplateHarvestButton, c.cfg.Match.Confidence, vision.WithMode(vision.ModeBinary))
}

func (c *Cycle) sellIfFull() error {
	if c.InventoryFull() {
		return c.Sell()
	}
	return nil
}

// Sell 离开网格出售全部作物，结束后恢复原位置
//
// 出售后如果出现图鉴提示，做一次恢复（打开图鉴、记录新物品、关闭、重新出售），
// 不验证结果，也不重试。
func (c *Cycle) Sell() error {
	pos := c.grid.Position()
	c.stats.MarkSell(c.now())
	c.log.Log(fmt.Sprintf("背包已满 %v，开始出售", pos), bot.SeverityWarning)

	err := c.grid.Excursion(func() error {
		if err := c.sellAll(); err != nil {
			return err
		}
		if err := c.recoverJournal(); err != nil {
			return err
		}

		_ = c.shortcut(HotkeyGarden)
		return c.flag.Sleep(c.cfg.Harvest.SellReturnDelay)
	})
	if err != nil {
		return err
	}

	c.log.Log(fmt.Sprintf("出售完成，回到 %v 继续收获", c.grid.Position()), bot.SeveritySuccess)
	return nil
}

// sellAll 打开出售菜单并确认全部出售
func (c *Cycle) sellAll() error {
	t := c.cfg.Timing

	_ = c.shortcut(HotkeySell)
	if err := c.flag.Sleep(t.SellMenuSettle); err != nil {
		return err
	}
	_ = c.keys.Tap(input.KeySpace)
	return c.flag.Sleep(t.SellConfirmSettle)
}

func (c *Cycle) recoverJournal() error {
	t := c.cfg.Timing

	journal := c.locator.Locate(TemplateGoToJournal, c.cfg.Match.Confidence)
	if !journal.Found {
		return nil
	}

	c.log.Log("检测到图鉴提示，正在处理", bot.SeverityWarning)
	center := journal.Center()
	_ = c.keys.Click(center.X, center.Y)
	if err := c.flag.Sleep(t.JournalOpen); err != nil {
		return err
	}

	if c.locator.Locate(TemplateLogNewItems, c.cfg.Match.Confidence).Found {
		c.log.Log("记录新物品", bot.SeverityInfo)
		_ = c.keys.Tap(input.KeySpace)
	}

	if err := c.flag.Sleep(t.JournalRead); err != nil {
		return err
	}
	_ = c.keys.Tap(input.KeyEscape)
	if err := c.flag.Sleep(t.JournalClose); err != nil {
		return err
	}

	// 图鉴提示会取消出售，重新打开菜单确认
	c.log.Log("重新出售", bot.SeverityInfo)
	return c.sellAll()
}

func (c *Cycle) shortcut(key string) error {
	return c.keys.Hotkey(input.KeyShift, key, c.cfg.Timing.HotkeyHold, c.cfg.Timing.HotkeyPost)
}
