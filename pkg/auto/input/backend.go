// Package input 提供键盘和鼠标输入
package input

import "github.com/go-vgo/robotgo"

// Backend 底层输入实现
type Backend interface {
	KeyDown(key string) error
	KeyUp(key string) error
	MoveTo(x, y int) error
	Click(x, y int) error
	// Scroll 滚动滚轮，负数向下
	Scroll(notches int) error
}

// RobotgoBackend 基于 robotgo 的输入实现
type RobotgoBackend struct{}

// KeyDown 按下键
func (RobotgoBackend) KeyDown(key string) error {
	return robotgo.KeyToggle(key, "down")
}

// KeyUp 释放键
func (RobotgoBackend) KeyUp(key string) error {
	return robotgo.KeyToggle(key, "up")
}

// MoveTo 移动鼠标到指定位置
func (RobotgoBackend) MoveTo(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

// Click 移动到指定位置并左键单击
func (RobotgoBackend) Click(x, y int) error {
	robotgo.Move(x, y)
	robotgo.MilliSleep(50)
	robotgo.Click("left", false)
	return nil
}

// Scroll 滚动
func (RobotgoBackend) Scroll(notches int) error {
	robotgo.Scroll(0, notches)
	return nil
}
