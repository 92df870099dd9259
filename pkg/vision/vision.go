// Package vision 提供屏幕状态匹配
//
// Matcher 负责截图、按名称懒加载模板并缓存，以及把匹配坐标换算回屏幕坐标。
// 上层组件只依赖 Locator / View 接口。
//
// 基本用法:
//
//	m := vision.NewMatcher(screen.NewCapturer(0), "images")
//	probe := m.Locate("inventory_full.png", 0.7, vision.WithArea(screen.AreaBottom))
//	if probe.Found {
//	    fmt.Printf("背包已满 (%.3f)\n", probe.Confidence)
//	}
package vision

import (
	"fmt"
	"image"
	"path/filepath"
	"sync"

	"github.com/zoeyai/gardenworker/pkg/auto/screen"
	"github.com/zoeyai/gardenworker/pkg/vision/cv"
)

// Capturer 截图来源
type Capturer interface {
	Capture(area screen.Area) (image.Image, screen.CaptureMeta, error)
}

type templateKey struct {
	name string
	mode cv.Mode
}

// Matcher 基于截图和 gocv 的 Locator 实现
type Matcher struct {
	capturer Capturer
	folder   string
	onError  func(error)

	mu        sync.Mutex
	templates map[templateKey]*cv.Template
}

// MatcherOption Matcher 选项
type MatcherOption func(*Matcher)

// WithErrorHook 匹配失败时回调（用于错误计数）
func WithErrorHook(fn func(error)) MatcherOption {
	return func(m *Matcher) {
		m.onError = fn
	}
}

// NewMatcher 创建 Matcher，folder 为模板目录
func NewMatcher(capturer Capturer, folder string, opts ...MatcherOption) *Matcher {
	m := &Matcher{
		capturer:  capturer,
		folder:    folder,
		templates: make(map[templateKey]*cv.Template),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Folder 模板目录
func (m *Matcher) Folder() string {
	return m.folder
}

// Template 返回已加载的模板，首次使用时读取
//
// 读取失败不缓存，文件补上后下次调用可以成功。
func (m *Matcher) Template(name string, mode cv.Mode) (*cv.Template, error) {
	key := templateKey{name: name, mode: mode}

	m.mu.Lock()
	defer m.mu.Unlock()

	if tmpl, ok := m.templates[key]; ok {
		return tmpl, nil
	}

	path := filepath.Join(m.folder, name)
	tmpl := cv.NewTemplate(path, cv.WithTemplateMode(mode))
	if err := tmpl.Load(); err != nil {
		tmpl.Close()
		return nil, &TemplateError{Name: name, Path: path, Err: err}
	}
	m.templates[key] = tmpl
	return tmpl, nil
}

// Locate 截图并匹配一个模板
func (m *Matcher) Locate(name string, threshold float64, opts ...Option) Probe {
	cfg := applyOptions(opts)

	tmpl, err := m.Template(name, cfg.mode)
	if err != nil {
		return m.fail(err)
	}

	v, err := m.snapshot(cfg.area)
	if err != nil {
		return Probe{Err: err}
	}
	defer v.Close()

	return v.match(tmpl, threshold)
}

// Snapshot 截图一次，返回可复用的 View
func (m *Matcher) Snapshot(opts ...Option) (View, error) {
	cfg := applyOptions(opts)
	return m.snapshot(cfg.area)
}

func (m *Matcher) snapshot(area screen.Area) (*view, error) {
	img, meta, err := m.capturer.Capture(area)
	if err != nil {
		m.fail(err)
		return nil, err
	}

	s, err := cv.NewScreenFromImage(img)
	if err != nil {
		m.fail(err)
		return nil, err
	}
	return &view{matcher: m, screen: s, meta: meta}, nil
}

func (m *Matcher) fail(err error) Probe {
	if m.onError != nil {
		m.onError(err)
	}
	return Probe{Err: err}
}

// Close 释放所有缓存的模板
func (m *Matcher) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for key, tmpl := range m.templates {
		tmpl.Close()
		delete(m.templates, key)
	}
}

type view struct {
	matcher *Matcher
	screen  *cv.Screen
	meta    screen.CaptureMeta
}

// Find 在截图中匹配模板，忽略 WithArea
func (v *view) Find(name string, threshold float64, opts ...Option) Probe {
	cfg := applyOptions(opts)

	tmpl, err := v.matcher.Template(name, cfg.mode)
	if err != nil {
		return v.matcher.fail(err)
	}
	return v.match(tmpl, threshold)
}

func (v *view) match(tmpl *cv.Template, threshold float64) Probe {
	probe, err := tmpl.MatchInWithThreshold(v.screen, threshold)
	if err != nil {
		return v.matcher.fail(fmt.Errorf("匹配 %s 失败: %w", tmpl.Filename, err))
	}
	probe.Location = screen.AdjustRegion(probe.Location, v.meta)
	return probe
}

func (v *view) Close() {
	v.screen.Close()
}
