package cv

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

// Screen 一次截图，按需缓存各模式的预处理结果
//
// 同一张截图上匹配多个模板时只做一次灰度/二值化。
type Screen struct {
	mu       sync.Mutex
	source   gocv.Mat
	prepared map[Mode]gocv.Mat
}

// NewScreen 包装一张 BGR 截图，Screen 接管 mat 的所有权
func NewScreen(mat gocv.Mat) *Screen {
	return &Screen{
		source:   mat,
		prepared: make(map[Mode]gocv.Mat),
	}
}

// NewScreenFromImage 从 image.Image 创建 Screen
func NewScreenFromImage(img image.Image) (*Screen, error) {
	mat, err := ImageToMat(img)
	if err != nil {
		return nil, err
	}
	return NewScreen(mat), nil
}

// Source 原始截图
func (s *Screen) Source() gocv.Mat {
	return s.source
}

// Size 截图尺寸 (width, height)
func (s *Screen) Size() (int, int) {
	return s.source.Cols(), s.source.Rows()
}

// Prepared 返回指定模式的预处理图像，由 Screen 持有
func (s *Screen) Prepared(mode Mode) gocv.Mat {
	s.mu.Lock()
	defer s.mu.Unlock()

	if mat, ok := s.prepared[mode]; ok {
		return mat
	}
	mat := Prepare(s.source, mode)
	s.prepared[mode] = mat
	return mat
}

// Close 释放资源
func (s *Screen) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for mode, mat := range s.prepared {
		mat.Close()
		delete(s.prepared, mode)
	}
	s.source.Close()
}
