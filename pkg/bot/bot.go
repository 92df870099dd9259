// Package bot 提供自动化核心共享的会话状态：运行标志、统计计数、自动购买计时器和日志接口。
//
// 这些对象由调度器在启动时创建，以指针形式传给各个组件；
// 展示层只读取快照（Snapshot / Telemetry），从不持有可写句柄。
package bot

import "errors"

// ErrStopped 运行标志已被清除，当前操作在下一个检查点放弃
var ErrStopped = errors.New("运行已停止")

// Severity 日志严重级别
type Severity int

const (
	SeverityInfo Severity = iota
	SeveritySuccess
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeveritySuccess:
		return "success"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	default:
		return "unknown"
	}
}

// Sink 日志输出端，接收 (消息, 级别)
type Sink interface {
	Log(message string, severity Severity)
}

// SinkFunc 允许普通函数作为 Sink 使用
type SinkFunc func(message string, severity Severity)

// Log 实现 Sink
func (f SinkFunc) Log(message string, severity Severity) {
	f(message, severity)
}

// Discard 丢弃所有日志
var Discard Sink = SinkFunc(func(string, Severity) {})
