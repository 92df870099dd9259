package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/zoeyai/gardenworker/internal/logger"
	"github.com/zoeyai/gardenworker/pkg/auto/grid"
	"github.com/zoeyai/gardenworker/pkg/auto/input"
	"github.com/zoeyai/gardenworker/pkg/auto/screen"
	"github.com/zoeyai/gardenworker/pkg/bot"
	"github.com/zoeyai/gardenworker/pkg/config"
	"github.com/zoeyai/gardenworker/pkg/farm"
	"github.com/zoeyai/gardenworker/pkg/permissions"
	"github.com/zoeyai/gardenworker/pkg/process"
	"github.com/zoeyai/gardenworker/pkg/shop"
	"github.com/zoeyai/gardenworker/pkg/vision"
)

// app 一次命令运行所需的全部组件
type app struct {
	cfg      *config.Config
	manager  *config.Manager
	log      *logger.Logger
	flag     *bot.RunFlag
	stats    *bot.Stats
	capturer *screen.Capturer
	matcher  *vision.Matcher
	driver   *input.Driver
	grid     *grid.Controller
}

func (o *rootOptions) manager() *config.Manager {
	if o.configPath != "" {
		return config.NewManagerWithFile(o.configPath)
	}
	return config.GetDefaultManager()
}

// newApp 加载配置并组装组件
func newApp(opts *rootOptions) *app {
	log := logger.New()
	manager := opts.manager()

	cfg, err := manager.Load()
	if err != nil {
		log.Warn("加载配置失败，使用默认配置: %v", err)
	}

	level := cfg.Log.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	log.SetLevel(logger.ParseLevel(level))
	if cfg.Log.File != "" {
		if err := log.SetFile(true, cfg.Log.File); err != nil {
			log.Warn("无法打开日志文件: %v", err)
		}
	}
	if opts.quiet {
		log.SetConsole(false)
		log.SetEnabled(cfg.Log.File != "")
	}

	flag := bot.NewRunFlag()
	stats := &bot.Stats{}
	onError := newFaultReporter(stats, log).Report

	capturer := screen.NewCapturer(cfg.Match.Display)
	t := cfg.Timing
	driver := input.NewDriver(input.RobotgoBackend{},
		input.WithErrorHook(onError),
		input.WithTiming(t.KeyHold, t.HotkeyHold, t.HotkeyPost),
	)

	return &app{
		cfg:      cfg,
		manager:  manager,
		log:      log,
		flag:     flag,
		stats:    stats,
		capturer: capturer,
		matcher:  vision.NewMatcher(capturer, cfg.Match.ImageFolder, vision.WithErrorHook(onError)),
		driver:   driver,
		grid: grid.NewController(grid.Size{Rows: cfg.Grid.Rows, Cols: cfg.Grid.Cols},
			driver, flag, stats, cfg.Grid.MoveDelay),
	}
}

func (a *app) cycle() *farm.Cycle {
	return farm.NewCycle(a.cfg, a.driver, a.matcher, a.grid, a.flag, a.stats, a.log)
}

func (a *app) shop() *shop.Engine {
	return shop.NewEngine(a.cfg, a.driver, a.matcher, a.flag, a.stats, a.log)
}

// Close 释放模板并关闭日志文件
func (a *app) Close() {
	a.matcher.Close()
	_ = a.log.Close()
}

// precheck 检查系统权限、游戏进程，并把游戏窗口切到前台
func (a *app) precheck() error {
	status := permissions.Check()
	if !status.AllGranted() {
		a.log.Error("%s", permissions.Instructions(status))
		permissions.OpenSettings(status)
		return fmt.Errorf("缺少系统权限")
	}

	game, err := process.CheckGame(a.cfg.Game.Process)
	if err != nil {
		return err
	}
	if game != nil {
		a.log.Info("找到游戏进程 %s (PID %d)", game.Name, game.PID)
	}
	if err := process.Focus(game, a.cfg.Game.Window); err != nil {
		a.log.Warn("切换游戏窗口失败: %v", err)
	}

	if unknown := lo.Reject(a.cfg.Shop.Seeds, func(s string, _ int) bool {
		_, ok := shop.TierOf(s)
		return ok
	}); len(unknown) > 0 {
		a.log.Warn("未知种子 (仍会尝试匹配模板): %v", unknown)
	}
	return nil
}

// supervise 运行 work，直到完成、收到中断信号或按下停止热键
func (a *app) supervise(ctx context.Context, stop func(), work func() error, watchers ...func(context.Context) error) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer cancel()
		return work()
	})

	g.Go(func() error {
		<-ctx.Done()
		stop()
		return nil
	})

	g.Go(func() error {
		return watchStopHotkey(ctx, a.cfg.Game.StopHotkey, stop, a.log)
	})

	for _, watch := range watchers {
		g.Go(func() error {
			return watch(ctx)
		})
	}

	return g.Wait()
}
