package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/zoeyai/gardenworker/pkg/auto/screen"
	"github.com/zoeyai/gardenworker/pkg/farm"
	"github.com/zoeyai/gardenworker/pkg/vision/cv"
)

// 阈值建议区间
const (
	recommendLow  = 0.4
	recommendHigh = 0.8
	recommendGap  = 0.05
)

// recommendThreshold 根据最佳匹配度给出阈值建议
func recommendThreshold(best float64) (float64, bool) {
	if best >= recommendLow && best < recommendHigh {
		return best - recommendGap, true
	}
	return 0, false
}

type modeScore struct {
	mode  cv.Mode
	match cv.Probe
}

// pickBest 返回匹配度最高的结果，并列时保留靠前的模式
func pickBest(scores []modeScore) modeScore {
	if len(scores) == 0 {
		return modeScore{}
	}
	best := scores[0]
	for _, s := range scores[1:] {
		if s.match.Confidence > best.match.Confidence {
			best = s
		}
	}
	return best
}

func newProbeCmd(opts *rootOptions) *cobra.Command {
	var (
		template  string
		area      string
		countdown time.Duration
		threshold float64
		save      string
	)

	cmd := &cobra.Command{
		Use:   "probe",
		Short: "截图一次，报告模板在灰度和二值模式下的匹配度",
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := newApp(opts)
			defer a.Close()

			if !cmd.Flags().Changed("threshold") {
				threshold = a.cfg.Match.InventoryConfidence
			}
			if !cmd.Flags().Changed("area") {
				area = a.cfg.Match.InventoryRegion
			}

			for left := countdown; left > 0; left -= time.Second {
				a.log.Info("%d 秒后截图，请切换到游戏窗口", int(left.Seconds()))
				time.Sleep(min(time.Second, left))
			}

			img, meta, err := a.capturer.Capture(screen.ParseArea(area))
			if err != nil {
				return err
			}
			scr, err := cv.NewScreenFromImage(img)
			if err != nil {
				return err
			}
			defer scr.Close()

			var scores []modeScore
			for _, mode := range []cv.Mode{cv.ModeGray, cv.ModeBinary} {
				tmpl, err := a.matcher.Template(template, mode)
				if err != nil {
					return err
				}
				p, elapsed, err := tmpl.MatchTimed(scr, threshold)
				if err != nil {
					return err
				}

				at := screen.AdjustRegion(p.Location, meta).Center()
				detail := fmt.Sprintf("匹配度 %.3f  位置 (%d,%d)", p.Confidence, at.X, at.Y)
				a.log.LogEvent(mode.String(), p.Found, float64(elapsed.Microseconds())/1000, detail)
				scores = append(scores, modeScore{mode: mode, match: p})
			}
			best := pickBest(scores)

			switch rec, ok := recommendThreshold(best.match.Confidence); {
			case ok:
				a.log.Warn("匹配度偏低，建议阈值 %.2f (当前 %.2f)", rec, threshold)
			case best.match.Confidence >= recommendHigh:
				a.log.Success("匹配良好 (%s %.3f)", best.mode, best.match.Confidence)
			default:
				a.log.Error("匹配度过低 (%.3f)，请重新截取模板", best.match.Confidence)
			}

			if template == farm.TemplateInventoryFull {
				ready := a.cycle().HarvestReady()
				a.log.Info("收获提示: found=%v 匹配度 %.3f", ready.Found, ready.Confidence)
			}

			if save != "" {
				label := fmt.Sprintf("%s %s %.3f", template, best.mode, best.match.Confidence)
				if err := screen.SavePNG(save, annotate(img, best.match.Location, label)); err != nil {
					return err
				}
				a.log.Info("已保存标注截图: %s", save)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&template, "template", "t", farm.TemplateInventoryFull, "模板文件名")
	cmd.Flags().StringVar(&area, "area", "", "截图区域 full|top|bottom (默认使用背包检查区域)")
	cmd.Flags().DurationVar(&countdown, "countdown", 3*time.Second, "截图前倒计时")
	cmd.Flags().Float64Var(&threshold, "threshold", 0, "判定阈值 (默认使用背包阈值)")
	cmd.Flags().StringVar(&save, "save", "", "保存标注截图到此路径")
	return cmd
}
