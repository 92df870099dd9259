package screen

import (
	"image"
	"path/filepath"
	"testing"

	"github.com/zoeyai/gardenworker/pkg/vision/cv"
)

func TestAreaRect(t *testing.T) {
	bounds := image.Rect(1920, 0, 3840, 1080)

	tests := []struct {
		area Area
		want image.Rectangle
	}{
		{AreaFull, bounds},
		{AreaTop, image.Rect(1920, 0, 3840, 540)},
		{AreaBottom, image.Rect(1920, 540, 3840, 1080)},
	}
	for _, tt := range tests {
		t.Run(tt.area.String(), func(t *testing.T) {
			if got := AreaRect(bounds, tt.area); got != tt.want {
				t.Errorf("AreaRect() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseArea(t *testing.T) {
	tests := map[string]Area{
		"bottom": AreaBottom,
		"TOP":    AreaTop,
		"full":   AreaFull,
		"":       AreaFull,
		"left":   AreaFull,
	}
	for in, want := range tests {
		if got := ParseArea(in); got != want {
			t.Errorf("ParseArea(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestAdjustRegion(t *testing.T) {
	rect := image.Rect(100, 540, 1100, 1040)

	// 截图分辨率为逻辑尺寸的 2 倍（高 DPI）
	img := image.NewRGBA(image.Rect(0, 0, 2000, 1000))
	meta := BuildCaptureMeta(rect, img)
	if meta.ScaleX != 2 || meta.ScaleY != 2 {
		t.Fatalf("缩放 = %v,%v, want 2,2", meta.ScaleX, meta.ScaleY)
	}

	got := AdjustRegion(cv.Region{X: 200, Y: 100, Width: 40, Height: 20}, meta)
	want := cv.Region{X: 200, Y: 590, Width: 20, Height: 10}
	if got != want {
		t.Errorf("AdjustRegion() = %+v, want %+v", got, want)
	}
}

func TestSavePNG(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug", "probe.png")
	if err := SavePNG(path, image.NewRGBA(image.Rect(0, 0, 4, 4))); err != nil {
		t.Fatalf("SavePNG() error = %v", err)
	}
	if err := SavePNG(path, nil); err == nil {
		t.Error("空图像应返回错误")
	}
}

func TestCaptureFull(t *testing.T) {
	if GetDisplayCount() == 0 {
		t.Skip("跳过测试：无可用显示器")
	}

	img, meta, err := NewCapturer(0).Capture(AreaBottom)
	if err != nil {
		t.Skipf("跳过测试：截图失败: %v", err)
	}
	if img.Bounds().Empty() {
		t.Error("截图为空")
	}
	t.Logf("截图尺寸: %v, 元信息: %+v", img.Bounds(), meta)
}
