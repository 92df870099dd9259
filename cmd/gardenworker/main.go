// gardenworker 自动化 Magic Garden 的网格收获、出售和商店购买
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// 版本信息 (可通过 ldflags 注入)
var (
	Version   = "1.0.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// rootOptions 所有子命令共享的参数
type rootOptions struct {
	configPath string
	logLevel   string
	quiet      bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "gardenworker",
		Short:         "Magic Garden 自动收获与自动购买",
		Version:       fmt.Sprintf("%s (build %s, commit %s)", Version, BuildTime, GitCommit),
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "配置文件路径 (默认 ~/.gardenworker/config.yaml)")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "日志级别 debug|info|warn|error (覆盖配置)")
	cmd.PersistentFlags().BoolVarP(&opts.quiet, "quiet", "q", false, "不输出到控制台 (仍写入日志文件)")

	cmd.AddCommand(
		newRunCmd(opts),
		newProbeCmd(opts),
		newMoveTestCmd(opts),
		newShopTestCmd(opts),
		newGrabCmd(opts),
		newConfigCmd(opts),
	)
	return cmd
}
