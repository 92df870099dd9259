package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/zoeyai/gardenworker/pkg/config"
	"github.com/zoeyai/gardenworker/pkg/shop"
)

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "查看或初始化配置",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "打印当前生效的配置",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := opts.manager().Load()
				if err != nil {
					return err
				}
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("序列化配置失败: %w", err)
				}
				fmt.Fprint(cmd.OutOrStdout(), string(data))
				return nil
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "打印配置文件路径",
			Run: func(cmd *cobra.Command, _ []string) {
				fmt.Fprintln(cmd.OutOrStdout(), opts.manager().GetConfigFile())
			},
		},
		newConfigInitCmd(opts),
		&cobra.Command{
			Use:   "seeds",
			Short: "按稀有度列出商店种子，* 为已选择",
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := opts.manager().Load()
				if err != nil {
					return err
				}
				fmt.Fprint(cmd.OutOrStdout(), formatCatalog(cfg.Shop.Seeds))
				return nil
			},
		},
	)
	return cmd
}

func newConfigInitCmd(opts *rootOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "写入默认配置",
		RunE: func(cmd *cobra.Command, _ []string) error {
			m := opts.manager()
			if m.Exists() && !force {
				return fmt.Errorf("配置文件已存在: %s (使用 --force 覆盖)", m.GetConfigFile())
			}
			if err := m.Save(config.Default()); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "配置已保存到 %s\n", m.GetConfigFile())
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "覆盖已有配置")
	return cmd
}

// formatCatalog 按稀有度排版种子目录
func formatCatalog(selected []string) string {
	var b strings.Builder
	for _, tier := range shop.Catalog {
		fmt.Fprintf(&b, "%s\n", tier.Tier)
		for _, seed := range tier.Seeds {
			mark := " "
			if slices.ContainsFunc(selected, func(s string) bool { return strings.EqualFold(s, seed) }) {
				mark = "*"
			}
			fmt.Fprintf(&b, "  %s %-14s %s\n", mark, seed, shop.TemplateName(seed))
		}
	}
	return b.String()
}
