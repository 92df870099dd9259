// Package shop 实现商店自动购买
package shop

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/zoeyai/gardenworker/pkg/auto/input"
	"github.com/zoeyai/gardenworker/pkg/bot"
	"github.com/zoeyai/gardenworker/pkg/config"
	"github.com/zoeyai/gardenworker/pkg/vision"
)

var (
	// ErrShopNotOpened 打开商店后未检测到商店标题
	ErrShopNotOpened = errors.New("商店未打开")
	// ErrNoTargets 没有要购买的种子
	ErrNoTargets = errors.New("没有选择要购买的种子")
)

// 模板文件名
const (
	TemplateShopHeader = "seed_shop_header.png"
	TemplateBuyButton  = "buy_button_green.png"
)

// 游戏热键（与 shift 组合）
const (
	hotkeyShop   = "1"
	hotkeyGarden = "2"
)

// Keys 商店用到的输入操作
type Keys interface {
	Tap(key string) error
	Press(key string, hold time.Duration) error
	Hotkey(k1, k2 string, pre, post time.Duration) error
	Click(x, y int) error
	MoveTo(x, y int) error
	Scroll(notches int) error
}

// Result 一次自动购买的结果
type Result struct {
	// Purchased 点击购买按钮的总次数
	Purchased int
	// Bought 成功购买的种子
	Bought []string
	// OutOfStock 找到了但没有购买按钮（缺货）
	OutOfStock []string
	// NotFound 搜索预算内没有出现，或缺少模板
	NotFound []string
}

// Unresolved 未能购买的种子
func (r Result) Unresolved() []string {
	return append(slices.Clone(r.OutOfStock), r.NotFound...)
}

// Engine 商店购买引擎
type Engine struct {
	cfg     *config.Config
	keys    Keys
	locator vision.Locator
	flag    *bot.RunFlag
	stats   *bot.Stats
	log     bot.Sink

	// sleep 关闭商店时使用的不可中断等待
	sleep func(time.Duration)
}

// NewEngine 创建购买引擎
func NewEngine(cfg *config.Config, keys Keys, locator vision.Locator,
	flag *bot.RunFlag, stats *bot.Stats, log bot.Sink) *Engine {
	if log == nil {
		log = bot.Discard
	}
	return &Engine{
		cfg:     cfg,
		keys:    keys,
		locator: locator,
		flag:    flag,
		stats:   stats,
		log:     log,
		sleep:   time.Sleep,
	}
}

type sighting struct {
	seed  string
	probe vision.Probe
}

// RunAutobuy 打开商店，滚动搜索所有目标并购买，最后关闭商店
//
// 每张截图上检查全部剩余目标，按屏幕纵坐标从上到下购买；目标全部处理完即停止滚动。
// 商店标题丢失时最多恢复一次，再次丢失则提前结束搜索。
// 运行标志在每次截图和每次点击购买前检查，停止时强制关闭商店并返回 bot.ErrStopped。
func (e *Engine) RunAutobuy(targets []string, quantity, maxScrolls int) (Result, error) {
	var result Result

	remaining := lo.Uniq(lo.Compact(targets))
	if len(remaining) == 0 {
		e.log.Log("没有选择要购买的种子", bot.SeverityWarning)
		return result, ErrNoTargets
	}
	quantity = max(quantity, 1)
	maxScrolls = max(maxScrolls, 1)

	e.stats.ShopVisits.Add(1)
	e.log.Log(fmt.Sprintf("开始自动购买 %d 种种子", len(remaining)), bot.SeverityInfo)

	if err := e.open(); err != nil {
		result.NotFound = remaining
		return result, err
	}

	recovered := false
	for attempt := 0; attempt < maxScrolls && len(remaining) > 0; attempt++ {
		if err := e.flag.Check(); err != nil {
			return e.abort(result, remaining)
		}

		view, err := e.locator.Snapshot()
		if err != nil {
			e.log.Log(fmt.Sprintf("商店截图失败: %v", err), bot.SeverityError)
			continue
		}

		var seen []sighting
		for _, seed := range remaining {
			probe := view.Find(TemplateName(seed), e.cfg.Shop.ItemConfidence, vision.WithMode(vision.ModeBinary))
			var tmplErr *vision.TemplateError
			switch {
			case errors.As(probe.Err, &tmplErr):
				e.log.Log(fmt.Sprintf("缺少 %s 的模板，跳过", seed), bot.SeverityWarning)
				result.NotFound = append(result.NotFound, seed)
			case probe.Found:
				seen = append(seen, sighting{seed: seed, probe: probe})
			}
		}
		header := view.Find(TemplateShopHeader, e.cfg.Shop.ScrollHeaderConfidence, vision.WithMode(vision.ModeBinary))
		view.Close()

		remaining = lo.Without(remaining, result.NotFound...)

		// 从上到下购买
		slices.SortStableFunc(seen, func(a, b sighting) int {
			return a.probe.Location.Y - b.probe.Location.Y
		})

		for _, s := range seen {
			if err := e.flag.Check(); err != nil {
				return e.abort(result, remaining)
			}

			center := s.probe.Center()
			e.log.Log(fmt.Sprintf("找到 %s (%d,%d)", s.seed, center.X, center.Y), bot.SeveritySuccess)

			bought, err := e.buy(s.seed, center.X, center.Y, quantity)
			if bought > 0 {
				result.Purchased += bought
				result.Bought = append(result.Bought, s.seed)
			} else if err == nil {
				result.OutOfStock = append(result.OutOfStock, s.seed)
			}
			if err != nil {
				if bought > 0 {
					remaining = lo.Without(remaining, s.seed)
				}
				if errors.Is(err, bot.ErrStopped) {
					return e.abort(result, remaining)
				}
				return e.fail(result, remaining, err)
			}
			remaining = lo.Without(remaining, s.seed)

			if err := e.flag.Sleep(e.cfg.Timing.BetweenItems); err != nil {
				return e.abort(result, remaining)
			}
		}

		if len(remaining) == 0 || attempt == maxScrolls-1 {
			break
		}

		if header.Found {
			if err := e.scroll(header, attempt+1, maxScrolls); err != nil {
				return e.abort(result, remaining)
			}
			continue
		}

		if recovered {
			e.log.Log("商店界面再次丢失，停止搜索", bot.SeverityWarning)
			break
		}
		recovered = true
		if err := e.reopen(); err != nil {
			return e.abort(result, remaining)
		}
	}

	result.NotFound = append(result.NotFound, remaining...)
	if len(result.NotFound) > 0 {
		e.log.Log("未找到: "+strings.Join(result.NotFound, ", "), bot.SeverityWarning)
	}

	e.close()
	e.log.Log(fmt.Sprintf("自动购买完成: 购买 %d 件，共 %d 种", result.Purchased, len(result.Bought)), bot.SeveritySuccess)
	return result, nil
}

// open 传送到商店并交互，然后确认商店标题可见
func (e *Engine) open() error {
	t := e.cfg.Timing

	e.log.Log("传送到商店", bot.SeverityInfo)
	_ = e.shortcut(hotkeyShop)

	e.log.Log("打开商店", bot.SeverityInfo)
	_ = e.keys.Press(input.KeySpace, t.InteractHold)
	if err := e.flag.Sleep(t.ShopOpenSettle); err != nil {
		e.close()
		return err
	}

	header := e.locator.Locate(TemplateShopHeader, e.cfg.Shop.HeaderConfidence, vision.WithMode(vision.ModeGray))
	if !header.Found {
		e.log.Log(fmt.Sprintf("未检测到商店 (匹配度 %.2f)", header.Confidence), bot.SeverityError)
		return ErrShopNotOpened
	}

	if err := e.flag.Check(); err != nil {
		e.close()
		return err
	}

	e.log.Log("商店已打开", bot.SeveritySuccess)
	return nil
}

// buy 点击种子，等待详情面板，然后按数量点击购买按钮
func (e *Engine) buy(seed string, x, y, quantity int) (int, error) {
	t := e.cfg.Timing

	_ = e.keys.Click(x, y)
	if err := e.flag.Sleep(t.ItemDetail); err != nil {
		return 0, err
	}

	button := e.locator.Locate(TemplateBuyButton, e.cfg.Shop.ItemConfidence, vision.WithMode(vision.ModeBinary))
	var tmplErr *vision.TemplateError
	if errors.As(button.Err, &tmplErr) {
		return 0, fmt.Errorf("无法识别购买按钮: %w", button.Err)
	}
	if !button.Found {
		e.log.Log(fmt.Sprintf("没有找到 %s 的购买按钮（可能缺货）", seed), bot.SeverityWarning)
		return 0, nil
	}

	center := button.Center()
	e.log.Log(fmt.Sprintf("购买 %d 个 %s", quantity, seed), bot.SeverityInfo)

	bought := 0
	for i := 0; i < quantity; i++ {
		if err := e.flag.Check(); err != nil {
			return bought, err
		}
		_ = e.keys.Click(center.X, center.Y)
		bought++
		e.stats.Purchases.Add(1)
		if err := e.flag.Sleep(t.BuyClick); err != nil {
			return bought, err
		}
	}

	e.log.Log(fmt.Sprintf("已购买 %d 个 %s", bought, seed), bot.SeveritySuccess)
	return bought, nil
}

// scroll 在商店标题下方滚动列表
func (e *Engine) scroll(header vision.Probe, n, total int) error {
	t := e.cfg.Timing
	center := header.Center()

	_ = e.keys.MoveTo(center.X, center.Y+e.cfg.Shop.ScrollOffsetY)
	if err := e.flag.Sleep(t.ScrollHover); err != nil {
		return err
	}
	_ = e.keys.Scroll(e.cfg.Shop.ScrollNotches)
	if err := e.flag.Sleep(t.ScrollSettle); err != nil {
		return err
	}

	e.log.Log(fmt.Sprintf("滚动商店 (%d/%d)", n, total), bot.SeverityInfo)
	return nil
}

// reopen 关闭并重新打开商店，不验证结果
func (e *Engine) reopen() error {
	t := e.cfg.Timing

	e.log.Log("商店界面丢失，尝试恢复", bot.SeverityWarning)
	_ = e.keys.Tap(input.KeyEscape)
	if err := e.flag.Sleep(t.RecoveryClose); err != nil {
		return err
	}
	_ = e.shortcut(hotkeyShop)
	_ = e.keys.Tap(input.KeySpace)
	return e.flag.Sleep(t.RecoveryReopen)
}

// close 关闭商店并回到花园，不受运行标志影响
func (e *Engine) close() {
	t := e.cfg.Timing

	e.log.Log("关闭商店", bot.SeverityInfo)
	_ = e.keys.Tap(input.KeyEscape)
	e.pause(t.ShopClose)
	_ = e.keys.Tap(input.KeyEscape)
	e.pause(t.ShopClose)

	e.log.Log("返回花园", bot.SeverityInfo)
	_ = e.shortcut(hotkeyGarden)
}

// abort 运行标志清除时强制关闭商店
func (e *Engine) abort(result Result, remaining []string) (Result, error) {
	e.log.Log("自动购买已停止", bot.SeverityWarning)
	result.NotFound = append(result.NotFound, remaining...)
	e.close()
	return result, bot.ErrStopped
}

// fail 购买无法继续时关闭商店并返回错误
func (e *Engine) fail(result Result, remaining []string, err error) (Result, error) {
	e.log.Log(fmt.Sprintf("自动购买中止: %v", err), bot.SeverityError)
	result.NotFound = append(result.NotFound, remaining...)
	e.close()
	return result, err
}

func (e *Engine) pause(d time.Duration) {
	if d > 0 {
		e.sleep(d)
	}
}

func (e *Engine) shortcut(key string) error {
	return e.keys.Hotkey(input.KeyShift, key, e.cfg.Timing.HotkeyHold, e.cfg.Timing.HotkeyPost)
}
