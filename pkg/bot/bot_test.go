package bot

import (
	"errors"
	"sync"
	"testing"
	"time"
)

func TestRunFlagRaiseClear(t *testing.T) {
	f := NewRunFlag()
	if f.Running() {
		t.Fatal("新建的运行标志应处于停止状态")
	}
	if err := f.Check(); !errors.Is(err, ErrStopped) {
		t.Errorf("Check() = %v, want ErrStopped", err)
	}

	if !f.Raise() {
		t.Fatal("第一次 Raise 应成功")
	}
	if f.Raise() {
		t.Error("重复 Raise 应返回 false")
	}
	if err := f.Check(); err != nil {
		t.Errorf("运行中 Check() = %v", err)
	}

	f.Clear()
	f.Clear()
	if f.Running() {
		t.Error("Clear 后仍在运行")
	}

	// 可以再次启动
	if !f.Raise() {
		t.Error("Clear 后应可再次 Raise")
	}
}

func TestRunFlagSleepInterrupted(t *testing.T) {
	f := NewRunFlag()
	f.Raise()

	go func() {
		time.Sleep(20 * time.Millisecond)
		f.Clear()
	}()

	start := time.Now()
	err := f.Sleep(5 * time.Second)
	if !errors.Is(err, ErrStopped) {
		t.Fatalf("Sleep() = %v, want ErrStopped", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Sleep 未被及时打断: %v", elapsed)
	}
}

func TestRunFlagSleepCompletes(t *testing.T) {
	f := NewRunFlag()
	f.Raise()

	if err := f.Sleep(5 * time.Millisecond); err != nil {
		t.Errorf("Sleep() = %v", err)
	}
	if err := f.Sleep(0); err != nil {
		t.Errorf("Sleep(0) = %v", err)
	}

	f.Clear()
	if err := f.Sleep(0); !errors.Is(err, ErrStopped) {
		t.Errorf("停止后 Sleep(0) = %v, want ErrStopped", err)
	}
}

func TestStatsConcurrentAndReset(t *testing.T) {
	var s Stats
	s.MarkStart(time.Unix(100, 0))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				s.Moves.Add(1)
				s.Harvests.Add(1)
			}
		}()
	}
	wg.Wait()
	s.MarkSell(time.Unix(200, 0))
	s.AddError()

	snap := s.Snapshot()
	if snap.Moves != 800 || snap.Harvests != 800 {
		t.Errorf("Moves=%d Harvests=%d, want 800", snap.Moves, snap.Harvests)
	}
	if snap.Sells != 1 || snap.Errors != 1 {
		t.Errorf("Sells=%d Errors=%d, want 1", snap.Sells, snap.Errors)
	}
	if got := snap.Uptime(time.Unix(160, 0)); got != time.Minute {
		t.Errorf("Uptime = %v, want 1m", got)
	}

	s.Reset()
	snap = s.Snapshot()
	if snap.Moves != 0 || snap.Sells != 0 || !snap.StartTime.IsZero() {
		t.Errorf("Reset 后快照未清零: %+v", snap)
	}
	if snap.Uptime(time.Now()) != 0 {
		t.Error("未启动时 Uptime 应为 0")
	}
}

func TestAutobuyTimer(t *testing.T) {
	now := time.Unix(1000, 0)
	clock := func() time.Time { return now }

	timer := NewAutobuyTimer(180*time.Second, clock)
	if got := timer.Remaining(); got != 180*time.Second {
		t.Errorf("Remaining = %v, want 3m", got)
	}
	if timer.Due() {
		t.Error("刚创建不应到期")
	}

	now = now.Add(179 * time.Second)
	if timer.Due() {
		t.Error("179s 时不应到期")
	}

	now = now.Add(5 * time.Second)
	if !timer.Due() || timer.Remaining() != 0 {
		t.Errorf("超时后应到期, Remaining = %v", timer.Remaining())
	}

	timer.Reset()
	if got := timer.Remaining(); got != 180*time.Second {
		t.Errorf("Reset 后 Remaining = %v, want 3m", got)
	}

	timer.ResetWithin(5 * time.Second)
	if got := timer.Remaining(); got != 5*time.Second {
		t.Errorf("ResetWithin 后 Remaining = %v, want 5s", got)
	}
}

func TestSeverityString(t *testing.T) {
	tests := []struct {
		sev  Severity
		want string
	}{
		{SeverityInfo, "info"},
		{SeveritySuccess, "success"},
		{SeverityWarning, "warning"},
		{SeverityError, "error"},
		{Severity(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.sev.String(); got != tt.want {
			t.Errorf("Severity(%d).String() = %q, want %q", tt.sev, got, tt.want)
		}
	}
}
