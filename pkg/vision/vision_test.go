package vision

import (
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/zoeyai/gardenworker/pkg/auto/screen"
)

// fakeCapturer 返回固定图像的截图器
type fakeCapturer struct {
	img   image.Image
	meta  screen.CaptureMeta
	err   error
	calls int
	areas []screen.Area
}

func (f *fakeCapturer) Capture(area screen.Area) (image.Image, screen.CaptureMeta, error) {
	f.calls++
	f.areas = append(f.areas, area)
	if f.err != nil {
		return nil, screen.CaptureMeta{}, f.err
	}
	return f.img, f.meta, nil
}

// newScene 生成 200x150 黑底图像，(60,40) 处有一个白色方块，(150,100) 处有一个浅灰条
func newScene() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, 200, 150))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(60, 40, 100, 70), image.NewUniform(color.White), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(70, 48, 90, 62), image.NewUniform(color.Gray{Y: 90}), image.Point{}, draw.Src)
	draw.Draw(img, image.Rect(150, 100, 170, 110), image.NewUniform(color.Gray{Y: 230}), image.Point{}, draw.Src)
	return img
}

func writeTemplate(t *testing.T, dir, name string, src *image.RGBA, rect image.Rectangle) {
	t.Helper()
	sub := image.NewRGBA(image.Rect(0, 0, rect.Dx(), rect.Dy()))
	draw.Draw(sub, sub.Bounds(), src, rect.Min, draw.Src)

	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		t.Fatalf("创建模板失败: %v", err)
	}
	defer f.Close()
	if err := png.Encode(f, sub); err != nil {
		t.Fatalf("编码模板失败: %v", err)
	}
}

func newTestMatcher(t *testing.T) (*Matcher, *fakeCapturer, *int) {
	t.Helper()
	dir := t.TempDir()
	scene := newScene()
	writeTemplate(t, dir, "block.png", scene, image.Rect(50, 30, 110, 80))
	writeTemplate(t, dir, "bar.png", scene, image.Rect(140, 95, 180, 115))

	capturer := &fakeCapturer{img: scene, meta: screen.CaptureMeta{ScaleX: 1, ScaleY: 1, OffsetX: 1000, OffsetY: 500}}
	errCount := 0
	m := NewMatcher(capturer, dir, WithErrorHook(func(error) { errCount++ }))
	t.Cleanup(m.Close)
	return m, capturer, &errCount
}

func TestMatcherLocate(t *testing.T) {
	m, capturer, errCount := newTestMatcher(t)

	probe := m.Locate("block.png", 0.9, WithArea(screen.AreaBottom))
	if probe.Err != nil {
		t.Fatalf("Locate 失败: %v", probe.Err)
	}
	if !probe.Found {
		t.Fatalf("应找到模板, 置信度=%.3f", probe.Confidence)
	}
	// 坐标应加上截图偏移
	if probe.Location.X != 1050 || probe.Location.Y != 530 {
		t.Errorf("位置 = (%d,%d), want (1050,530)", probe.Location.X, probe.Location.Y)
	}
	if capturer.areas[0] != screen.AreaBottom {
		t.Errorf("截图区域 = %v, want bottom", capturer.areas[0])
	}
	if *errCount != 0 {
		t.Errorf("不应计入错误, 实际 %d", *errCount)
	}

	// 不可能的阈值：未找到，但仍报告得分
	probe = m.Locate("block.png", 1.01)
	if probe.Found || probe.Confidence < 0.9 {
		t.Errorf("高阈值下结果不符: %v", probe)
	}
}

func TestMatcherSnapshotReusesCapture(t *testing.T) {
	m, capturer, _ := newTestMatcher(t)

	v, err := m.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot 失败: %v", err)
	}
	defer v.Close()

	block := v.Find("block.png", 0.9)
	bar := v.Find("bar.png", 0.9, WithMode(ModeGray))
	if !block.Found || !bar.Found {
		t.Errorf("两个模板都应找到: block=%v bar=%v", block, bar)
	}
	if block.Location.Y >= bar.Location.Y {
		t.Errorf("block 应在 bar 上方: %d >= %d", block.Location.Y, bar.Location.Y)
	}
	if capturer.calls != 1 {
		t.Errorf("同一 View 只应截图一次, 实际 %d 次", capturer.calls)
	}
}

func TestMatcherMissingTemplate(t *testing.T) {
	m, capturer, errCount := newTestMatcher(t)

	probe := m.Locate("missing.png", 0.8)
	var tmplErr *TemplateError
	if !errors.As(probe.Err, &tmplErr) {
		t.Fatalf("应返回 TemplateError, 实际 %v", probe.Err)
	}
	if tmplErr.Name != "missing.png" {
		t.Errorf("Name = %q", tmplErr.Name)
	}
	if probe.Found {
		t.Error("失败的匹配不应 Found")
	}
	if *errCount != 1 {
		t.Errorf("错误计数 = %d, want 1", *errCount)
	}
	if capturer.calls != 0 {
		t.Errorf("模板缺失时不应截图, 实际 %d 次", capturer.calls)
	}
}

func TestMatcherCaptureFailure(t *testing.T) {
	m, capturer, errCount := newTestMatcher(t)
	capturer.err = errors.New("display lost")

	probe := m.Locate("block.png", 0.8)
	if probe.Err == nil || probe.Found {
		t.Errorf("截图失败应报告错误: %v", probe)
	}
	if *errCount != 1 {
		t.Errorf("错误计数 = %d, want 1", *errCount)
	}

	if _, err := m.Snapshot(); err == nil {
		t.Error("Snapshot 应返回截图错误")
	}
	if *errCount != 2 {
		t.Errorf("错误计数 = %d, want 2", *errCount)
	}
}
