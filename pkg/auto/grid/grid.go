// Package grid 提供蛇形网格遍历和位置跟踪
package grid

import (
	"fmt"
	"strconv"
	"strings"
)

// Position 当前格子位置 (0-based)
type Position struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (p Position) String() string {
	return fmt.Sprintf("(%d,%d)", p.Row, p.Col)
}

// Size 网格尺寸
type Size struct {
	Rows int `json:"rows"`
	Cols int `json:"cols"`
}

// Contains 位置是否在网格内
func (s Size) Contains(p Position) bool {
	return p.Row >= 0 && p.Row < s.Rows && p.Col >= 0 && p.Col < s.Cols
}

// Cells 格子总数
func (s Size) Cells() int {
	return s.Rows * s.Cols
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%d", s.Rows, s.Cols)
}

// ParseSize 解析网格尺寸字符串
// 格式: rowsxcols 或 rows.cols (如 "10x10")
func ParseSize(s string) (Size, error) {
	if s == "" {
		return Size{}, fmt.Errorf("网格尺寸字符串为空")
	}

	sep := "x"
	if strings.Contains(s, ".") {
		sep = "."
	}
	parts := strings.Split(strings.ToLower(s), sep)
	if len(parts) != 2 {
		return Size{}, fmt.Errorf("无效的网格尺寸格式: %s (期望格式: rowsxcols)", s)
	}

	rows, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Size{}, fmt.Errorf("无效的行数: %s", parts[0])
	}

	cols, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Size{}, fmt.Errorf("无效的列数: %s", parts[1])
	}

	if rows < 1 || cols < 1 {
		return Size{}, fmt.Errorf("行数和列数必须大于 0: rows=%d, cols=%d", rows, cols)
	}

	return Size{Rows: rows, Cols: cols}, nil
}

// Direction 移动方向
type Direction int

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Key 方向对应的按键
func (d Direction) Key() string {
	switch d {
	case Up:
		return "w"
	case Down:
		return "s"
	case Left:
		return "a"
	default:
		return "d"
	}
}

// Delta 方向对应的行列增量
func (d Direction) Delta() (dRow, dCol int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	default:
		return 0, 1
	}
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	default:
		return "right"
	}
}
