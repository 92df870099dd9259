package vision

import (
	"github.com/zoeyai/gardenworker/pkg/auto/screen"
	"github.com/zoeyai/gardenworker/pkg/vision/cv"
)

// Option 匹配选项
type Option func(*matchConfig)

// matchConfig 匹配时的临时配置
type matchConfig struct {
	mode cv.Mode
	area screen.Area
}

// defaultMatchConfig 默认匹配配置：全屏、二值化
func defaultMatchConfig() *matchConfig {
	return &matchConfig{
		mode: cv.ModeBinary,
		area: screen.AreaFull,
	}
}

func applyOptions(opts []Option) *matchConfig {
	cfg := defaultMatchConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(cfg)
		}
	}
	return cfg
}

// WithMode 设置预处理模式
func WithMode(mode cv.Mode) Option {
	return func(c *matchConfig) {
		c.mode = mode
	}
}

// WithArea 限制截图区域，对 View.Find 无效
func WithArea(area screen.Area) Option {
	return func(c *matchConfig) {
		c.area = area
	}
}
