package main

import (
	"context"
	"strings"

	hook "github.com/robotn/gohook"

	"github.com/zoeyai/gardenworker/internal/logger"
)

// watchStopHotkey 监听全局停止热键，key 为空时只等待 ctx 结束
func watchStopHotkey(ctx context.Context, key string, stop func(), log *logger.Logger) error {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		<-ctx.Done()
		return nil
	}

	log.Info("按 %s 停止", strings.ToUpper(key))
	hook.Register(hook.KeyDown, []string{key}, func(hook.Event) {
		log.Warn("收到停止热键")
		stop()
	})

	s := hook.Start()
	done := hook.Process(s)

	select {
	case <-ctx.Done():
		hook.End()
	case <-done:
	}
	return nil
}
