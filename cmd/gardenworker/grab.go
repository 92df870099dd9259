package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoeyai/gardenworker/pkg/auto/screen"
	"github.com/zoeyai/gardenworker/pkg/vision/cv"
)

// parseRect 解析 "x,y,w,h" 为 [xMin, yMin, xMax, yMax]
func parseRect(s string) ([4]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return [4]int{}, fmt.Errorf("区域格式应为 x,y,w,h: %q", s)
	}

	var v [4]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return [4]int{}, fmt.Errorf("区域数值无效 %q: %w", p, err)
		}
		v[i] = n
	}
	if v[0] < 0 || v[1] < 0 || v[2] <= 0 || v[3] <= 0 {
		return [4]int{}, fmt.Errorf("区域超出范围: %q", s)
	}
	return [4]int{v[0], v[1], v[0] + v[2], v[1] + v[3]}, nil
}

// templatePath 模板文件保存路径，缺少扩展名时补 .png
func templatePath(folder, name string) string {
	if filepath.Ext(name) == "" {
		name += ".png"
	}
	return filepath.Join(folder, name)
}

func newGrabCmd(opts *rootOptions) *cobra.Command {
	var (
		rect      string
		area      string
		countdown time.Duration
	)

	cmd := &cobra.Command{
		Use:   "grab <name>",
		Short: "截取屏幕区域并保存为模板",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := newApp(opts)
			defer a.Close()

			crop, err := parseRect(rect)
			if err != nil {
				return err
			}

			for left := countdown; left > 0; left -= time.Second {
				a.log.Info("%d 秒后截图，请切换到游戏窗口", int(left.Seconds()))
				time.Sleep(min(time.Second, left))
			}

			img, _, err := a.capturer.Capture(screen.ParseArea(area))
			if err != nil {
				return err
			}
			mat, err := cv.ImageToMat(img)
			if err != nil {
				return err
			}
			defer mat.Close()

			region := cv.CropImage(mat, crop)
			defer region.Close()
			if region.Empty() {
				return fmt.Errorf("裁剪区域为空: %s", rect)
			}

			out := templatePath(a.cfg.Match.ImageFolder, args[0])
			if err := cv.WriteImage(out, region); err != nil {
				return err
			}
			a.log.Success("已保存模板 %s (%dx%d)", out, region.Cols(), region.Rows())
			return nil
		},
	}

	cmd.Flags().StringVar(&rect, "rect", "", "裁剪区域 x,y,w,h (截图内像素坐标)")
	cmd.Flags().StringVar(&area, "area", "full", "截图区域 full|top|bottom")
	cmd.Flags().DurationVar(&countdown, "countdown", 3*time.Second, "截图前倒计时")
	_ = cmd.MarkFlagRequired("rect")
	return cmd
}
