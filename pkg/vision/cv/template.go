package cv

import (
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"gocv.io/x/gocv"
)

// DefaultThreshold 默认匹配阈值
var DefaultThreshold = 0.8

// Template 模板图像及其匹配方式
//
// 预处理后的图像在首次使用时读取并缓存，之后不再变化。
type Template struct {
	// Filename 模板文件路径
	Filename string
	// Threshold 匹配阈值
	Threshold float64
	// Mode 预处理模式
	Mode Mode

	mu        sync.Mutex
	cachedMat *gocv.Mat
}

// TemplateOption 模板选项
type TemplateOption func(*Template)

// NewTemplate 创建新的 Template
func NewTemplate(filename string, opts ...TemplateOption) *Template {
	t := &Template{
		Filename:  filename,
		Threshold: DefaultThreshold,
		Mode:      ModeBinary,
	}

	for _, opt := range opts {
		opt(t)
	}

	return t
}

// WithTemplateThreshold 设置阈值
func WithTemplateThreshold(threshold float64) TemplateOption {
	return func(t *Template) {
		t.Threshold = threshold
	}
}

// WithTemplateMode 设置预处理模式
func WithTemplateMode(mode Mode) TemplateOption {
	return func(t *Template) {
		t.Mode = mode
	}
}

// Load 读取并预处理模板，重复调用只读取一次
func (t *Template) Load() error {
	_, err := t.image()
	return err
}

// Size 模板尺寸 (width, height)，未加载时为 0
func (t *Template) Size() (int, int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cachedMat == nil {
		return 0, 0
	}
	return t.cachedMat.Cols(), t.cachedMat.Rows()
}

// MatchIn 在截图中匹配模板，使用模板自身的阈值
func (t *Template) MatchIn(screen *Screen) (Probe, error) {
	return t.MatchInWithThreshold(screen, t.Threshold)
}

// MatchInWithThreshold 在截图中匹配模板
func (t *Template) MatchInWithThreshold(screen *Screen, threshold float64) (Probe, error) {
	search, err := t.image()
	if err != nil {
		return Probe{}, err
	}

	m := NewTemplateMatching(search, screen.Prepared(t.Mode), threshold)
	return m.FindBestResult()
}

// MatchTimed 在截图中匹配模板并返回匹配耗时（不含模板加载）
func (t *Template) MatchTimed(screen *Screen, threshold float64) (Probe, time.Duration, error) {
	search, err := t.image()
	if err != nil {
		return Probe{}, 0, err
	}

	m := NewTemplateMatching(search, screen.Prepared(t.Mode), threshold)
	return m.MatchTimed()
}

// image 返回缓存的预处理模板，由 Template 持有
func (t *Template) image() (gocv.Mat, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.cachedMat != nil && !t.cachedMat.Empty() {
		return *t.cachedMat, nil
	}

	read := ReadImageGray
	if t.Mode == ModeColor {
		read = ReadImage
	}
	raw, err := read(filepath.Clean(t.Filename))
	if err != nil {
		raw.Close()
		return gocv.Mat{}, err
	}
	defer raw.Close()

	prepared := Prepare(raw, t.Mode)
	t.cachedMat = &prepared
	return prepared, nil
}

// Close 释放资源
func (t *Template) Close() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.cachedMat != nil {
		t.cachedMat.Close()
		t.cachedMat = nil
	}
}

// String 返回字符串表示
func (t *Template) String() string {
	return fmt.Sprintf("Template(%s, %s)", t.Filename, t.Mode)
}
