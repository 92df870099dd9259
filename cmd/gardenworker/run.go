package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/zoeyai/gardenworker/pkg/scheduler"
)

func newRunCmd(opts *rootOptions) *cobra.Command {
	var (
		harvest  bool
		buy      bool
		seeds    []string
		interval time.Duration
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "按配置的模式运行 (仅收获 / 仅购买 / 收获 + 定时购买)",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(opts)
			defer a.Close()

			flags := cmd.Flags()
			if flags.Changed("harvest") {
				a.cfg.Harvest.Enabled = harvest
			}
			if flags.Changed("shop") {
				a.cfg.Shop.Enabled = buy
			}
			if flags.Changed("seeds") {
				a.cfg.Shop.Seeds = seeds
			}
			if flags.Changed("interval") {
				a.cfg.Shop.Interval = interval
			}
			for _, msg := range a.cfg.Normalize() {
				a.log.Warn("%s", msg)
			}

			if err := a.precheck(); err != nil {
				return err
			}

			sched := scheduler.New(a.cfg, a.cycle(), a.shop(), a.grid, a.flag, a.stats, a.log)
			err := a.supervise(cmd.Context(), sched.Stop,
				func() error {
					if err := sched.Start(); err != nil {
						return err
					}
					return sched.Wait()
				},
				a.pollTelemetry(sched, telemetryInterval),
			)

			a.log.Info("%s", formatTelemetry(sched.Telemetry(), time.Now()))
			return err
		},
	}

	cmd.Flags().BoolVar(&harvest, "harvest", true, "启用收获")
	cmd.Flags().BoolVar(&buy, "shop", false, "启用定时自动购买")
	cmd.Flags().StringSliceVar(&seeds, "seeds", nil, "要购买的种子 (逗号分隔)")
	cmd.Flags().DurationVar(&interval, "interval", 0, "自动购买间隔")
	return cmd
}
