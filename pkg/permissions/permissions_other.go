//go:build !darwin

package permissions

// Check 非 macOS 系统不需要额外授权
func Check() Status {
	return Status{Accessibility: true, ScreenRecording: true}
}

// OpenSettings 非 macOS 系统无操作
func OpenSettings(Status) {}
