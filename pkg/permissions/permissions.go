// Package permissions 检查按键模拟和截屏所需的系统权限（macOS 需要授权）
package permissions

import "strings"

// Status 权限状态
type Status struct {
	Accessibility   bool `json:"accessibility"`
	ScreenRecording bool `json:"screen_recording"`
}

// AllGranted 是否全部已授权
func (s Status) AllGranted() bool {
	return s.Accessibility && s.ScreenRecording
}

// Instructions 缺失权限的授权说明，全部已授权时为空
func Instructions(s Status) string {
	if s.AllGranted() {
		return ""
	}

	var b strings.Builder
	b.WriteString("需要授权以下权限才能正常工作:\n\n")
	if !s.Accessibility {
		b.WriteString("- 辅助功能 (模拟按键和鼠标)\n")
		b.WriteString("  系统设置 > 隐私与安全性 > 辅助功能\n")
	}
	if !s.ScreenRecording {
		b.WriteString("- 屏幕录制 (截屏识别背包和商店)\n")
		b.WriteString("  系统设置 > 隐私与安全性 > 屏幕录制\n")
	}
	b.WriteString("\n授权后需要重启终端才能生效。")
	return b.String()
}
