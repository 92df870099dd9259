// Package scheduler 按配置模式驱动收获循环与自动购买
//
// 三种模式共享同一个运行标志和统计：
//   - 仅收获：循环执行收获，每轮之间冷却
//   - 仅购买：每秒检查倒计时，到期时执行一次购买
//   - 收获 + 定时购买：每个格子收获前检查倒计时，到期时原地购买再继续收获
package scheduler

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/zoeyai/gardenworker/pkg/auto/grid"
	"github.com/zoeyai/gardenworker/pkg/bot"
	"github.com/zoeyai/gardenworker/pkg/config"
	"github.com/zoeyai/gardenworker/pkg/shop"
)

var (
	// ErrAlreadyRunning 调度器正在运行
	ErrAlreadyRunning = errors.New("调度器已在运行")
	// ErrNothingEnabled 收获和自动购买都未启用
	ErrNothingEnabled = config.ErrNothingEnabled
)

// cycleWindow 保留的最近循环耗时数量
const cycleWindow = 10

// 仅购买模式的倒计时日志
const (
	countdownLogMin   = 10 * time.Second
	countdownLogEvery = 30 * time.Second
)

// Harvester 完整的一轮网格收获
type Harvester interface {
	Run(before func(grid.Position) error) error
}

// Buyer 一次商店购买
type Buyer interface {
	RunAutobuy(targets []string, quantity, maxScrolls int) (shop.Result, error)
}

// Telemetry 供显示端轮询的只读状态
type Telemetry struct {
	Running      bool              `json:"running"`
	Mode         config.Mode       `json:"mode"`
	Position     grid.Position     `json:"position"`
	Stats        bot.StatsSnapshot `json:"stats"`
	NextBuy      time.Duration     `json:"next_buy"`
	LastCycle    time.Duration     `json:"last_cycle"`
	AverageCycle time.Duration     `json:"average_cycle"`
}

// Option 调度器选项
type Option func(*Scheduler)

// WithClock 替换时钟
func WithClock(now func() time.Time) Option {
	return func(s *Scheduler) {
		s.now = now
	}
}

// WithPollInterval 修改仅购买模式的倒计时检查间隔
func WithPollInterval(d time.Duration) Option {
	return func(s *Scheduler) {
		s.poll = d
	}
}

// Scheduler 模式调度器，拥有运行标志、统计和计时器
type Scheduler struct {
	cfg     *config.Config
	harvest Harvester
	buyer   Buyer
	grid    *grid.Controller
	flag    *bot.RunFlag
	stats   *bot.Stats
	timer   *bot.AutobuyTimer
	log     bot.Sink
	now     func() time.Time
	poll    time.Duration

	mu         sync.Mutex
	done       chan struct{}
	err        error
	cycles     []time.Duration
	lastLogged time.Time
}

// New 创建调度器
func New(cfg *config.Config, harvest Harvester, buyer Buyer, ctrl *grid.Controller,
	flag *bot.RunFlag, stats *bot.Stats, log bot.Sink, opts ...Option) *Scheduler {
	if log == nil {
		log = bot.Discard
	}
	s := &Scheduler{
		cfg:     cfg,
		harvest: harvest,
		buyer:   buyer,
		grid:    ctrl,
		flag:    flag,
		stats:   stats,
		log:     log,
		now:     time.Now,
		poll:    time.Second,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.timer = bot.NewAutobuyTimer(cfg.Shop.Interval, s.now)
	return s
}

// Timer 自动购买计时器
func (s *Scheduler) Timer() *bot.AutobuyTimer {
	return s.timer
}

// Start 在后台启动自动化
//
// 收获和自动购买都未启用时不启动，清除运行标志并返回 ErrNothingEnabled。
func (s *Scheduler) Start() error {
	mode := s.cfg.Mode()
	if mode == config.ModeNone {
		s.log.Log("配置错误: 请至少启用收获或自动购买", bot.SeverityError)
		s.flag.Clear()
		return ErrNothingEnabled
	}

	if !s.flag.Raise() {
		return ErrAlreadyRunning
	}

	s.mu.Lock()
	s.done = make(chan struct{})
	s.err = nil
	s.lastLogged = time.Time{}
	done := s.done
	s.mu.Unlock()

	s.stats.MarkStart(s.now())
	s.timer.SetInterval(s.cfg.Shop.Interval)
	s.timer.Reset()

	go func() {
		defer close(done)
		err := s.run(mode)

		s.mu.Lock()
		s.err = err
		s.mu.Unlock()
	}()
	return nil
}

// Stop 请求停止，工作协程在下一个检查点退出
func (s *Scheduler) Stop() {
	if s.flag.Running() {
		s.log.Log("正在停止...", bot.SeverityWarning)
	}
	s.flag.Clear()
}

// Wait 等待工作协程退出，返回导致退出的错误（正常停止为 nil）
func (s *Scheduler) Wait() error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()

	if done == nil {
		return nil
	}
	<-done

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Running 是否正在运行
func (s *Scheduler) Running() bool {
	return s.flag.Running()
}

// ResetStats 清零统计、循环耗时并把位置重置到 (0,0)，运行中拒绝
func (s *Scheduler) ResetStats() error {
	if s.flag.Running() {
		return ErrAlreadyRunning
	}

	s.stats.Reset()
	s.grid.Reset()

	s.mu.Lock()
	s.cycles = nil
	s.mu.Unlock()

	s.log.Log("统计已重置", bot.SeverityInfo)
	return nil
}

// Telemetry 当前状态快照
func (s *Scheduler) Telemetry() Telemetry {
	t := Telemetry{
		Running:  s.flag.Running(),
		Mode:     s.cfg.Mode(),
		Position: s.grid.Position(),
		Stats:    s.stats.Snapshot(),
	}
	if s.cfg.Shop.Enabled {
		t.NextBuy = s.timer.Remaining()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.cycles); n > 0 {
		t.LastCycle = s.cycles[n-1]
	}
	t.AverageCycle = s.averageLocked()
	return t
}

// AverageCycle 最近若干轮收获的平均耗时
func (s *Scheduler) AverageCycle() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.averageLocked()
}

func (s *Scheduler) averageLocked() time.Duration {
	if len(s.cycles) == 0 {
		return 0
	}
	var total time.Duration
	for _, d := range s.cycles {
		total += d
	}
	return total / time.Duration(len(s.cycles))
}

func (s *Scheduler) recordCycle(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cycles = append(s.cycles, d)
	if len(s.cycles) > cycleWindow {
		s.cycles = s.cycles[len(s.cycles)-cycleWindow:]
	}
}

func (s *Scheduler) run(mode config.Mode) error {
	defer s.flag.Clear()

	s.log.Log(fmt.Sprintf("已启动 (%s)，%v 后开始，请切换到游戏窗口", mode, s.cfg.Scheduler.GraceDelay), bot.SeverityInfo)
	if err := s.flag.Sleep(s.cfg.Scheduler.GraceDelay); err != nil {
		s.log.Log("已停止", bot.SeverityInfo)
		return nil
	}

	var err error
	switch mode {
	case config.ModeShop:
		err = s.runShopOnly()
	default:
		err = s.runHarvest(mode == config.ModeHarvestShop)
	}

	if errors.Is(err, bot.ErrStopped) {
		err = nil
	}
	s.log.Log("已停止", bot.SeverityInfo)
	return err
}

// runHarvest 循环执行完整收获，withShop 时在每个格子前检查自动购买
func (s *Scheduler) runHarvest(withShop bool) error {
	var before func(grid.Position) error
	if withShop {
		before = s.buyIfDue
	}

	for s.flag.Running() {
		s.stats.Cycles.Add(1)
		n := s.stats.Cycles.Load()
		s.log.Log(fmt.Sprintf("第 %d 轮收获开始", n), bot.SeverityInfo)

		start := s.now()
		err := s.guard(func() error { return s.harvest.Run(before) })
		switch {
		case errors.Is(err, bot.ErrStopped):
			return err
		case errors.Is(err, config.ErrNothingEnabled):
			return err
		case err != nil:
			s.fault(err)
			if err := s.flag.Sleep(s.cfg.Scheduler.ErrorPause); err != nil {
				return err
			}
			continue
		}

		elapsed := s.now().Sub(start)
		s.recordCycle(elapsed)
		s.log.Log(fmt.Sprintf("第 %d 轮收获完成，用时 %.1fs", n, elapsed.Seconds()), bot.SeveritySuccess)

		if err := s.flag.Sleep(s.cfg.Scheduler.LoopCooldown); err != nil {
			return err
		}
	}
	return bot.ErrStopped
}

// buyIfDue 倒计时到期时在当前格子暂停收获去商店，完成后回到同一格子
func (s *Scheduler) buyIfDue(cell grid.Position) error {
	if !s.timer.Due() {
		return nil
	}

	s.log.Log(fmt.Sprintf("到达自动购买时间，在 %v 暂停收获", cell), bot.SeverityInfo)
	err := s.grid.Excursion(s.buy)
	if err != nil {
		return err
	}
	s.log.Log(fmt.Sprintf("自动购买结束，从 %v 继续收获", cell), bot.SeverityInfo)
	return nil
}

// runShopOnly 每个检查间隔查看一次倒计时，到期时购买
func (s *Scheduler) runShopOnly() error {
	first := s.cfg.Scheduler.FirstBuyDelay
	s.timer.ResetWithin(first)
	s.log.Log(fmt.Sprintf("仅自动购买模式，首次购买在 %v 后", first), bot.SeverityInfo)

	for {
		if err := s.flag.Check(); err != nil {
			return err
		}

		if s.timer.Due() {
			err := s.guard(s.buy)
			if errors.Is(err, bot.ErrStopped) {
				return err
			}
			if err != nil {
				s.fault(err)
				if err := s.flag.Sleep(s.cfg.Scheduler.ErrorPause); err != nil {
					return err
				}
			}
			continue
		}

		s.logCountdown()
		if err := s.flag.Sleep(s.poll); err != nil {
			return err
		}
	}
}

// buy 执行一次购买，无论结果如何都把计时器重置为完整间隔
func (s *Scheduler) buy() error {
	defer s.timer.Reset()

	shopCfg := s.cfg.Shop
	result, err := s.buyer.RunAutobuy(shopCfg.Seeds, shopCfg.SeedsPerTrip, shopCfg.SearchAttempts)
	switch {
	case errors.Is(err, bot.ErrStopped):
		return err
	case errors.Is(err, shop.ErrNoTargets), errors.Is(err, shop.ErrShopNotOpened):
		s.log.Log(fmt.Sprintf("自动购买未完成: %v，%v 后重试", err, shopCfg.Interval), bot.SeverityWarning)
		return nil
	case err != nil:
		return fmt.Errorf("自动购买失败: %w", err)
	}

	if unresolved := result.Unresolved(); len(unresolved) > 0 {
		s.log.Log(fmt.Sprintf("%d 种种子未买到", len(unresolved)), bot.SeverityWarning)
	}
	return nil
}

func (s *Scheduler) logCountdown() {
	remaining := s.timer.Remaining()
	if remaining <= countdownLogMin {
		return
	}

	now := s.now()
	s.mu.Lock()
	if !s.lastLogged.IsZero() && now.Sub(s.lastLogged) < countdownLogEvery {
		s.mu.Unlock()
		return
	}
	s.lastLogged = now
	s.mu.Unlock()

	s.log.Log(fmt.Sprintf("下次购买: %ds", int(remaining.Seconds())), bot.SeverityInfo)
}

// guard 把工作中的 panic 转成错误
func (s *Scheduler) guard(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("运行异常: %v", r)
		}
	}()
	return fn()
}

func (s *Scheduler) fault(err error) {
	s.stats.AddError()
	s.log.Log(fmt.Sprintf("错误: %v", err), bot.SeverityError)
}
