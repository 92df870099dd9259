// Package logger 提供统一的日志工具
package logger

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/lmittmann/tint"

	"github.com/zoeyai/gardenworker/pkg/bot"
)

// Level 日志级别
type Level = slog.Level

const (
	DEBUG   = slog.LevelDebug
	INFO    = slog.LevelInfo
	SUCCESS = slog.LevelInfo + 2
	WARN    = slog.LevelWarn
	ERROR   = slog.LevelError
)

// ParseLevel 解析日志级别字符串
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "debug":
		return DEBUG
	case "info":
		return INFO
	case "success":
		return SUCCESS
	case "warn", "warning":
		return WARN
	case "error":
		return ERROR
	default:
		return INFO
	}
}

// LevelFor 将会话日志级别映射为 slog 级别
func LevelFor(sev bot.Severity) Level {
	switch sev {
	case bot.SeveritySuccess:
		return SUCCESS
	case bot.SeverityWarning:
		return WARN
	case bot.SeverityError:
		return ERROR
	default:
		return INFO
	}
}

// Logger 日志记录器
//
// 控制台使用 tint 彩色输出，文件使用 slog 文本格式。实现 bot.Sink。
type Logger struct {
	mu         sync.Mutex
	level      *slog.LevelVar
	enabled    bool
	console    bool
	consoleOut io.Writer
	file       bool
	filePath   string
	fileOut    *os.File
	logger     *slog.Logger
}

// New 创建新的 Logger 实例
func New() *Logger {
	return NewWithWriter(os.Stdout)
}

// NewWithWriter 创建输出到指定控制台 writer 的 Logger
func NewWithWriter(w io.Writer) *Logger {
	l := &Logger{
		level:      new(slog.LevelVar),
		enabled:    true,
		console:    true,
		consoleOut: w,
	}
	l.level.Set(INFO)
	l.rebuild()
	return l
}

// SetLevel 设置日志级别
func (l *Logger) SetLevel(level Level) {
	l.level.Set(level)
}

// SetEnabled 设置是否启用日志
func (l *Logger) SetEnabled(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.enabled = enabled
}

// SetConsole 设置是否输出到控制台
func (l *Logger) SetConsole(enabled bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.console = enabled
	l.rebuild()
}

// SetFile 设置是否输出到文件
func (l *Logger) SetFile(enabled bool, path string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	// 关闭旧文件
	if l.fileOut != nil {
		l.fileOut.Close()
		l.fileOut = nil
	}

	l.file = enabled
	l.filePath = path

	if enabled && path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			l.rebuild()
			return fmt.Errorf("无法打开日志文件: %w", err)
		}
		l.fileOut = f
	}

	l.rebuild()
	return nil
}

func (l *Logger) rebuild() {
	var handlers []slog.Handler

	if l.console && l.consoleOut != nil {
		handlers = append(handlers, tint.NewHandler(l.consoleOut, &tint.Options{
			Level:       l.level,
			TimeFormat:  time.TimeOnly,
			ReplaceAttr: replaceLevel,
		}))
	}
	if l.file && l.fileOut != nil {
		handlers = append(handlers, slog.NewTextHandler(l.fileOut, &slog.HandlerOptions{
			Level:       l.level,
			ReplaceAttr: replaceLevel,
		}))
	}

	switch len(handlers) {
	case 0:
		l.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	case 1:
		l.logger = slog.New(handlers[0])
	default:
		l.logger = slog.New(fanout(handlers))
	}
}

func replaceLevel(_ []string, a slog.Attr) slog.Attr {
	if a.Key != slog.LevelKey {
		return a
	}
	if lvl, ok := a.Value.Any().(slog.Level); ok && lvl == SUCCESS {
		return slog.String(slog.LevelKey, "SUCCESS")
	}
	return a
}

// log 内部日志方法
func (l *Logger) log(level Level, format string, args ...interface{}) {
	l.mu.Lock()
	enabled, logger := l.enabled, l.logger
	l.mu.Unlock()

	if !enabled {
		return
	}
	logger.Log(context.Background(), level, fmt.Sprintf(format, args...))
}

// Debug 输出 DEBUG 级别日志
func (l *Logger) Debug(format string, args ...interface{}) {
	l.log(DEBUG, format, args...)
}

// Info 输出 INFO 级别日志
func (l *Logger) Info(format string, args ...interface{}) {
	l.log(INFO, format, args...)
}

// Success 输出 SUCCESS 级别日志
func (l *Logger) Success(format string, args ...interface{}) {
	l.log(SUCCESS, format, args...)
}

// Warn 输出 WARN 级别日志
func (l *Logger) Warn(format string, args ...interface{}) {
	l.log(WARN, format, args...)
}

// Error 输出 ERROR 级别日志
func (l *Logger) Error(format string, args ...interface{}) {
	l.log(ERROR, format, args...)
}

// Log 实现 bot.Sink
func (l *Logger) Log(message string, severity bot.Severity) {
	l.log(LevelFor(severity), "%s", message)
}

// LogEvent 记录带分类的事件日志
func (l *Logger) LogEvent(category string, ok bool, elapsedMs float64, detail string) {
	status := "OK"
	if !ok {
		status = "NG"
	}

	if ok {
		l.Info("%-4s | %s | %6.1fms | %s", category, status, elapsedMs, detail)
	} else {
		l.Error("%-4s | %s | %6.1fms | %s", category, status, elapsedMs, detail)
	}
}

// Close 关闭 logger，释放资源
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fileOut != nil {
		err := l.fileOut.Close()
		l.fileOut = nil
		l.rebuild()
		return err
	}
	return nil
}

type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}
