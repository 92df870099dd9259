package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoeyai/gardenworker/pkg/auto/grid"
	"github.com/zoeyai/gardenworker/pkg/bot"
)

// runOnce 置位运行标志，等待宽限时间后执行 fn，用户停止不视为错误
func (a *app) runOnce(name string, fn func() error) error {
	if !a.flag.Raise() {
		return fmt.Errorf("%s 已在运行", name)
	}
	defer a.flag.Clear()

	a.log.Info("%s: %v 后开始，请切换到游戏窗口", name, a.cfg.Scheduler.GraceDelay)
	err := a.flag.Sleep(a.cfg.Scheduler.GraceDelay)
	if err == nil {
		err = fn()
	}
	if errors.Is(err, bot.ErrStopped) {
		a.log.Warn("%s 已停止", name)
		return nil
	}
	return err
}

func newMoveTestCmd(opts *rootOptions) *cobra.Command {
	var size string

	cmd := &cobra.Command{
		Use:   "move-test",
		Short: "按蛇形顺序走完整个网格 (不收获)，然后回到起点",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(opts)
			defer a.Close()

			if size != "" {
				s, err := grid.ParseSize(size)
				if err != nil {
					return err
				}
				a.grid = grid.NewController(s, a.driver, a.flag, a.stats, a.cfg.Grid.MoveDelay)
			}

			return a.supervise(cmd.Context(), a.flag.Clear, func() error {
				return a.runOnce("移动测试", func() error {
					a.log.Info("移动测试 %v", a.grid.Size())
					if err := a.grid.Walk(func(grid.Position) error { return nil }); err != nil {
						return err
					}
					a.log.Success("移动测试完成，共 %d 步，位置 %v", a.stats.Moves.Load(), a.grid.Position())
					return nil
				})
			})
		},
	}

	cmd.Flags().StringVar(&size, "size", "", "网格尺寸，如 10x10 (默认使用配置)")
	return cmd
}

func newShopTestCmd(opts *rootOptions) *cobra.Command {
	var (
		seeds    []string
		quantity int
		attempts int
	)

	cmd := &cobra.Command{
		Use:   "shop-test",
		Short: "执行一次自动购买",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(opts)
			defer a.Close()

			flags := cmd.Flags()
			if flags.Changed("seeds") {
				a.cfg.Shop.Seeds = seeds
			}
			if flags.Changed("quantity") {
				a.cfg.Shop.SeedsPerTrip = quantity
			}
			if flags.Changed("attempts") {
				a.cfg.Shop.SearchAttempts = attempts
			}
			for _, msg := range a.cfg.Normalize() {
				a.log.Warn("%s", msg)
			}

			engine := a.shop()
			return a.supervise(cmd.Context(), a.flag.Clear, func() error {
				return a.runOnce("购买测试", func() error {
					start := time.Now()
					result, err := engine.RunAutobuy(a.cfg.Shop.Seeds, a.cfg.Shop.SeedsPerTrip, a.cfg.Shop.SearchAttempts)
					elapsed := float64(time.Since(start).Microseconds()) / 1000
					a.log.LogEvent("shop", err == nil, elapsed, fmt.Sprintf("购买 %d 件: %s", result.Purchased, strings.Join(result.Bought, ", ")))
					if unresolved := result.Unresolved(); len(unresolved) > 0 {
						a.log.Warn("未买到: %s", strings.Join(unresolved, ", "))
					}
					return err
				})
			})
		},
	}

	cmd.Flags().StringSliceVar(&seeds, "seeds", nil, "要购买的种子 (逗号分隔，默认使用配置)")
	cmd.Flags().IntVar(&quantity, "quantity", 1, "每种种子购买数量")
	cmd.Flags().IntVar(&attempts, "attempts", 7, "最多截图/滚动次数")
	return cmd
}
