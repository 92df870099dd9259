package cv

import (
	"fmt"
	"image"
	"strings"
)

// Point 表示二维坐标点
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Region 矩形区域（左上角 + 宽高）
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Center 返回区域中心点
func (r Region) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Offset 平移区域
func (r Region) Offset(dx, dy int) Region {
	r.X += dx
	r.Y += dy
	return r
}

// Rect 转换为 image.Rectangle
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// Probe 一次匹配的结果
//
// Confidence 总是最佳位置的得分，即使 Found 为 false；
// Err 非空表示匹配本身失败（截图失败、模板缺失），此时 Found 为 false。
type Probe struct {
	Found      bool    `json:"found"`
	Location   Region  `json:"location"`
	Confidence float64 `json:"confidence"`
	Err        error   `json:"-"`
}

// Center 返回匹配区域中心点
func (p Probe) Center() Point {
	return p.Location.Center()
}

func (p Probe) String() string {
	if p.Err != nil {
		return fmt.Sprintf("probe failed: %v", p.Err)
	}
	return fmt.Sprintf("found=%v conf=%.3f at (%d,%d %dx%d)",
		p.Found, p.Confidence, p.Location.X, p.Location.Y, p.Location.Width, p.Location.Height)
}

// Mode 预处理模式
type Mode int

const (
	// ModeBinary 灰度后按固定阈值二值化
	ModeBinary Mode = iota
	// ModeGray 仅灰度
	ModeGray
	// ModeColor 保留 BGR 彩色
	ModeColor
)

func (m Mode) String() string {
	switch m {
	case ModeGray:
		return "gray"
	case ModeColor:
		return "color"
	default:
		return "binary"
	}
}

// ParseMode 解析预处理模式
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "binary", "":
		return ModeBinary, nil
	case "gray", "grey":
		return ModeGray, nil
	case "color", "colour", "rgb":
		return ModeColor, nil
	default:
		return ModeBinary, fmt.Errorf("未知的匹配模式: %s", s)
	}
}
