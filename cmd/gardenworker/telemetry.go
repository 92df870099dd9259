package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/zoeyai/gardenworker/pkg/scheduler"
)

// telemetryInterval 运行状态输出间隔
const telemetryInterval = 30 * time.Second

// formatTelemetry 单行状态摘要
func formatTelemetry(t scheduler.Telemetry, now time.Time) string {
	s := t.Stats
	parts := []string{
		fmt.Sprintf("运行 %s", t.Stats.Uptime(now).Truncate(time.Second)),
		fmt.Sprintf("位置 %v", t.Position),
		fmt.Sprintf("轮次 %d", s.Cycles),
		fmt.Sprintf("收获 %d", s.Harvests),
		fmt.Sprintf("出售 %d", s.Sells),
		fmt.Sprintf("移动 %d", s.Moves),
	}
	if s.ShopVisits > 0 || t.NextBuy > 0 {
		parts = append(parts,
			fmt.Sprintf("购买 %d/%d", s.Purchases, s.ShopVisits),
			fmt.Sprintf("下次购买 %ds", int(t.NextBuy.Seconds())),
		)
	}
	if t.AverageCycle > 0 {
		parts = append(parts, fmt.Sprintf("平均每轮 %.1fs", t.AverageCycle.Seconds()))
	}
	if s.Errors > 0 {
		parts = append(parts, fmt.Sprintf("错误 %d", s.Errors))
	}
	return strings.Join(parts, " | ")
}

// pollTelemetry 定期输出运行状态，只读取不修改
func (a *app) pollTelemetry(sched *scheduler.Scheduler, every time.Duration) func(context.Context) error {
	return func(ctx context.Context) error {
		ticker := time.NewTicker(every)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if !sched.Running() {
					continue
				}
				a.log.Info("%s", formatTelemetry(sched.Telemetry(), time.Now()))
			}
		}
	}
}
