// Package screen 提供按显示器截图的功能
package screen

import (
	"fmt"
	"image"
	"math"
	"strings"

	"github.com/kbinani/screenshot"

	"github.com/zoeyai/gardenworker/pkg/vision/cv"
)

// Area 截图区域
type Area int

const (
	AreaFull Area = iota
	AreaTop
	AreaBottom
)

func (a Area) String() string {
	switch a {
	case AreaTop:
		return "top"
	case AreaBottom:
		return "bottom"
	default:
		return "full"
	}
}

// ParseArea 解析截图区域，未知值视为全屏
func ParseArea(s string) Area {
	switch strings.ToLower(s) {
	case "top":
		return AreaTop
	case "bottom":
		return AreaBottom
	default:
		return AreaFull
	}
}

// AreaRect 计算显示器范围内的截图矩形
func AreaRect(bounds image.Rectangle, area Area) image.Rectangle {
	half := bounds.Dy() / 2
	switch area {
	case AreaTop:
		return image.Rect(bounds.Min.X, bounds.Min.Y, bounds.Max.X, bounds.Min.Y+half)
	case AreaBottom:
		return image.Rect(bounds.Min.X, bounds.Min.Y+half, bounds.Max.X, bounds.Max.Y)
	default:
		return bounds
	}
}

// CaptureMeta 截图元信息（缩放和偏移量）
type CaptureMeta struct {
	ScaleX  float64
	ScaleY  float64
	OffsetX int
	OffsetY int
}

// BuildCaptureMeta 根据截图矩形和实际图像尺寸构建元信息
func BuildCaptureMeta(rect image.Rectangle, img image.Image) CaptureMeta {
	bounds := img.Bounds()

	scaleX := 1.0
	if rect.Dx() > 0 && bounds.Dx() > 0 {
		scaleX = float64(bounds.Dx()) / float64(rect.Dx())
	}
	scaleY := 1.0
	if rect.Dy() > 0 && bounds.Dy() > 0 {
		scaleY = float64(bounds.Dy()) / float64(rect.Dy())
	}

	return CaptureMeta{
		ScaleX:  scaleX,
		ScaleY:  scaleY,
		OffsetX: rect.Min.X,
		OffsetY: rect.Min.Y,
	}
}

// ScaleCoord 将截图像素坐标换算回屏幕坐标
func ScaleCoord(value int, scale float64) int {
	if scale <= 0 {
		return value
	}
	return int(math.Round(float64(value) / scale))
}

// AdjustPoint 调整点坐标（反向缩放 + 偏移）
func AdjustPoint(p cv.Point, meta CaptureMeta) cv.Point {
	return cv.Point{
		X: ScaleCoord(p.X, meta.ScaleX) + meta.OffsetX,
		Y: ScaleCoord(p.Y, meta.ScaleY) + meta.OffsetY,
	}
}

// AdjustRegion 将截图内的匹配区域换算为屏幕坐标
func AdjustRegion(r cv.Region, meta CaptureMeta) cv.Region {
	tl := AdjustPoint(cv.Point{X: r.X, Y: r.Y}, meta)
	return cv.Region{
		X:      tl.X,
		Y:      tl.Y,
		Width:  ScaleCoord(r.Width, meta.ScaleX),
		Height: ScaleCoord(r.Height, meta.ScaleY),
	}
}

// Capturer 截取指定显示器
type Capturer struct {
	Display int
}

// NewCapturer 创建截图器
func NewCapturer(display int) *Capturer {
	return &Capturer{Display: display}
}

// Bounds 显示器范围
func (c *Capturer) Bounds() (image.Rectangle, error) {
	n := GetDisplayCount()
	if n <= 0 {
		return image.Rectangle{}, fmt.Errorf("未检测到显示器")
	}
	if c.Display < 0 || c.Display >= n {
		return image.Rectangle{}, fmt.Errorf("显示器索引越界: %d (共 %d 个)", c.Display, n)
	}
	return screenshot.GetDisplayBounds(c.Display), nil
}

// Capture 截取显示器的指定区域
func (c *Capturer) Capture(area Area) (image.Image, CaptureMeta, error) {
	bounds, err := c.Bounds()
	if err != nil {
		return nil, CaptureMeta{}, err
	}

	rect := AreaRect(bounds, area)
	img, err := screenshot.CaptureRect(rect)
	if err != nil {
		return nil, CaptureMeta{}, fmt.Errorf("截屏失败: %w", err)
	}

	return img, BuildCaptureMeta(rect, img), nil
}

// GetDisplayCount 获取显示器数量
func GetDisplayCount() int {
	return screenshot.NumActiveDisplays()
}
