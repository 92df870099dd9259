// Package process 检查游戏进程并把游戏窗口切到前台
package process

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-vgo/robotgo"
	"github.com/shirou/gopsutil/v4/process"
)

// ErrGameNotRunning 没有找到游戏进程
var ErrGameNotRunning = errors.New("游戏未运行")

// Info 进程信息
type Info struct {
	PID  int    `json:"pid"`
	Name string `json:"name"`
	Path string `json:"path"`
}

// Find 按名称查找进程 (不区分大小写，支持部分匹配)
func Find(name string) ([]Info, error) {
	pids, err := process.Pids()
	if err != nil {
		return nil, fmt.Errorf("获取进程列表失败: %w", err)
	}

	var matches []Info
	for _, pid := range pids {
		proc, err := process.NewProcess(pid)
		if err != nil {
			continue
		}

		procName, err := proc.Name()
		if err != nil || !Matches(procName, name) {
			continue
		}

		exe, _ := proc.Exe()
		matches = append(matches, Info{
			PID:  int(pid),
			Name: procName,
			Path: exe,
		})
	}

	return matches, nil
}

// Matches 进程名是否包含 name（不区分大小写）
func Matches(procName, name string) bool {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return false
	}
	return strings.Contains(strings.ToLower(procName), name)
}

// IsRunning 检查进程是否正在运行
func IsRunning(pid int) bool {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return false
	}
	running, err := proc.IsRunning()
	if err != nil {
		return false
	}
	return running
}

// CheckGame 确认游戏进程存在，name 为空时跳过检查
func CheckGame(name string) (*Info, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}

	matches, err := Find(name)
	if err != nil {
		return nil, err
	}
	for _, m := range matches {
		if IsRunning(m.PID) {
			return &m, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrGameNotRunning, name)
}

// Focus 把游戏窗口切到前台：优先按进程，其次按窗口名
func Focus(game *Info, window string) error {
	if game != nil {
		if err := robotgo.ActivePid(game.PID); err != nil {
			return fmt.Errorf("激活窗口失败: %w", err)
		}
		return nil
	}
	if window != "" {
		robotgo.ActiveName(window)
	}
	return nil
}
