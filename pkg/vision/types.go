package vision

import (
	"fmt"

	"github.com/zoeyai/gardenworker/pkg/vision/cv"
)

// 类型别名
type (
	Probe  = cv.Probe
	Region = cv.Region
	Point  = cv.Point
	Mode   = cv.Mode
)

const (
	ModeBinary = cv.ModeBinary
	ModeGray   = cv.ModeGray
	ModeColor  = cv.ModeColor
)

// Locator 在当前屏幕上定位模板
//
// 每次调用都重新截图，结果不跨调用缓存。失败（截图、模板缺失）通过 Probe.Err 报告。
type Locator interface {
	Locate(name string, threshold float64, opts ...Option) Probe
	Snapshot(opts ...Option) (View, error)
}

// View 一张截图，可以在上面匹配多个模板
type View interface {
	Find(name string, threshold float64, opts ...Option) Probe
	Close()
}

// TemplateError 模板文件缺失或无法读取
type TemplateError struct {
	Name string
	Path string
	Err  error
}

func (e *TemplateError) Error() string {
	return fmt.Sprintf("模板不可用 %s (%s): %v", e.Name, e.Path, e.Err)
}

func (e *TemplateError) Unwrap() error {
	return e.Err
}
