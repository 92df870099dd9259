package main

import (
	"errors"
	"sync"
	"time"

	"github.com/zoeyai/gardenworker/internal/logger"
	"github.com/zoeyai/gardenworker/pkg/bot"
	"github.com/zoeyai/gardenworker/pkg/vision"
)

// faultRepeat 相同错误的最短输出间隔
const faultRepeat = 30 * time.Second

// faultReporter 统计并输出截图、输入和模板错误
//
// 每次都计数；相同的错误信息在 every 内只输出一次。缺失模板按错误级别输出，其余按警告。
type faultReporter struct {
	stats *bot.Stats
	log   *logger.Logger
	every time.Duration
	now   func() time.Time

	mu   sync.Mutex
	last map[string]time.Time
}

func newFaultReporter(stats *bot.Stats, log *logger.Logger) *faultReporter {
	return &faultReporter{
		stats: stats,
		log:   log,
		every: faultRepeat,
		now:   time.Now,
		last:  make(map[string]time.Time),
	}
}

// Report 记录一次错误
func (r *faultReporter) Report(err error) {
	if err == nil {
		return
	}
	r.stats.AddError()

	msg := err.Error()
	now := r.now()

	r.mu.Lock()
	last, seen := r.last[msg]
	if seen && now.Sub(last) < r.every {
		r.mu.Unlock()
		return
	}
	r.last[msg] = now
	r.mu.Unlock()

	var tmplErr *vision.TemplateError
	if errors.As(err, &tmplErr) {
		r.log.Error("%s", msg)
		return
	}
	r.log.Warn("%s", msg)
}
