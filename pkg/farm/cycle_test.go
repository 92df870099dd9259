package farm

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/zoeyai/gardenworker/pkg/auto/grid"
	"github.com/zoeyai/gardenworker/pkg/bot"
	"github.com/zoeyai/gardenworker/pkg/config"
	"github.com/zoeyai/gardenworker/pkg/vision"
)

type keyEvent struct {
	key  string
	pos  grid.Position
	away bool
}

// fakeKeys 记录按键及按下时的网格位置
type fakeKeys struct {
	ctrl   *grid.Controller
	events []keyEvent
	onTap  func(key string)
}

func (k *fakeKeys) record(key string) {
	ev := keyEvent{key: key}
	if k.ctrl != nil {
		ev.pos = k.ctrl.Position()
		ev.away = k.ctrl.Away()
	}
	k.events = append(k.events, ev)
}

func (k *fakeKeys) Tap(key string) error {
	k.record(key)
	if k.onTap != nil {
		k.onTap(key)
	}
	return nil
}

func (k *fakeKeys) Hotkey(k1, k2 string, _, _ time.Duration) error {
	k.record(k1 + "+" + k2)
	return nil
}

func (k *fakeKeys) Click(x, y int) error {
	k.record(fmt.Sprintf("click:%d,%d", x, y))
	return nil
}

func (k *fakeKeys) count(key string) int {
	n := 0
	for _, ev := range k.events {
		if ev.key == key {
			n++
		}
	}
	return n
}

// harvestTaps 在网格上（非出售途中）按下的收获键
func (k *fakeKeys) harvestTaps(pos grid.Position) int {
	n := 0
	for _, ev := range k.events {
		if ev.key == "space" && !ev.away && ev.pos == pos {
			n++
		}
	}
	return n
}

// fakeLocator 按模板名返回预设结果
type fakeLocator struct {
	respond func(name string) vision.Probe
	calls   map[string]int
}

func (l *fakeLocator) Locate(name string, _ float64, _ ...vision.Option) vision.Probe {
	if l.calls == nil {
		l.calls = make(map[string]int)
	}
	l.calls[name]++
	if l.respond == nil {
		return vision.Probe{}
	}
	return l.respond(name)
}

func (l *fakeLocator) Snapshot(...vision.Option) (vision.View, error) {
	return nil, errors.New("not supported")
}

type logLine struct {
	msg string
	sev bot.Severity
}

type fixture struct {
	cycle *Cycle
	keys  *fakeKeys
	loc   *fakeLocator
	ctrl  *grid.Controller
	flag  *bot.RunFlag
	stats *bot.Stats
	logs  *[]logLine
}

func newFixture(rows, cols int) *fixture {
	cfg := config.Default()
	cfg.Grid.Rows, cfg.Grid.Cols = rows, cols
	cfg.Grid.MoveDelay = 0
	cfg.Harvest.Delay = 0
	cfg.Harvest.SellReturnDelay = 0
	cfg.Timing = config.Timing{}

	flag := bot.NewRunFlag()
	flag.Raise()
	stats := &bot.Stats{}
	keys := &fakeKeys{}
	ctrl := grid.NewController(grid.Size{Rows: rows, Cols: cols}, keys, flag, stats, 0)
	keys.ctrl = ctrl

	var logs []logLine
	sink := bot.SinkFunc(func(msg string, sev bot.Severity) {
		logs = append(logs, logLine{msg, sev})
	})
	loc := &fakeLocator{}

	return &fixture{
		cycle: NewCycle(cfg, keys, loc, ctrl, flag, stats, sink),
		keys:  keys,
		loc:   loc,
		ctrl:  ctrl,
		flag:  flag,
		stats: stats,
		logs:  &logs,
	}
}

func TestRunFullGridWithoutSales(t *testing.T) {
	f := newFixture(10, 10)

	if err := f.cycle.Run(nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	snap := f.stats.Snapshot()
	if snap.Harvests != 100 {
		t.Errorf("Harvests = %d, want 100", snap.Harvests)
	}
	if snap.Moves != 99+9 {
		t.Errorf("Moves = %d, want 108", snap.Moves)
	}
	if snap.Sells != 0 {
		t.Errorf("Sells = %d, want 0", snap.Sells)
	}
	if got := f.keys.count("space"); got != 500 {
		t.Errorf("收获按键 %d 次, want 500", got)
	}
	// 每次收获和每步移动之后都检查背包
	if snap.InventoryChecks != 500+108 {
		t.Errorf("InventoryChecks = %d, want 608", snap.InventoryChecks)
	}
	if f.ctrl.Position() != (grid.Position{}) {
		t.Errorf("结束位置 = %v, want (0,0)", f.ctrl.Position())
	}
}

func TestRunTwiceDoublesMoves(t *testing.T) {
	f := newFixture(4, 3)

	if err := f.cycle.Run(nil); err != nil {
		t.Fatal(err)
	}
	once := f.stats.Snapshot().Moves
	if err := f.cycle.Run(nil); err != nil {
		t.Fatal(err)
	}
	if got := f.stats.Snapshot().Moves; got != 2*once {
		t.Errorf("Moves = %d, want %d", got, 2*once)
	}
	if f.ctrl.Position() != (grid.Position{}) {
		t.Errorf("结束位置 = %v", f.ctrl.Position())
	}
}

func TestSellMidHarvestResumesAtSameCell(t *testing.T) {
	f := newFixture(10, 10)
	target := grid.Position{Row: 3, Col: 7}

	fired := false
	f.loc.respond = func(name string) vision.Probe {
		if name == TemplateInventoryFull && !fired &&
			f.keys.harvestTaps(target) == 2 && !f.ctrl.Away() {
			fired = true
			return vision.Probe{Found: true, Confidence: 0.75}
		}
		return vision.Probe{}
	}

	if err := f.cycle.Run(nil); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	snap := f.stats.Snapshot()
	if snap.Sells != 1 {
		t.Fatalf("Sells = %d, want 1", snap.Sells)
	}
	if f.keys.harvestTaps(target) != 5 {
		t.Errorf("(3,7) 收获 %d 次, want 5", f.keys.harvestTaps(target))
	}
	if snap.Harvests != 100 {
		t.Errorf("Harvests = %d, want 100", snap.Harvests)
	}

	// 出售之后的第一个收获键仍在 (3,7)
	sold := slices.IndexFunc(f.keys.events, func(ev keyEvent) bool { return ev.key == "shift+2" })
	if sold < 0 {
		t.Fatal("未返回花园")
	}
	next := f.keys.events[sold+1]
	if next.key != "space" || next.pos != target || next.away {
		t.Errorf("出售后的下一个按键 = %+v, want space at %v", next, target)
	}

	// 出售途中的按键: shift+3, space, shift+2
	var during []string
	for _, ev := range f.keys.events {
		if ev.away {
			during = append(during, ev.key)
		}
	}
	if want := []string{"shift+3", "space", "shift+2"}; !slices.Equal(during, want) {
		t.Errorf("出售按键 = %v, want %v", during, want)
	}
	if f.ctrl.Position() != (grid.Position{}) {
		t.Errorf("结束位置 = %v", f.ctrl.Position())
	}
}

func TestSellDuringMove(t *testing.T) {
	f := newFixture(2, 3)

	// 第一步移动之后检测到背包已满
	checks := 0
	f.loc.respond = func(name string) vision.Probe {
		if name != TemplateInventoryFull {
			return vision.Probe{}
		}
		checks++
		return vision.Probe{Found: f.ctrl.Position() == grid.Position{Row: 0, Col: 1} && checks == 6}
	}

	if err := f.cycle.Run(nil); err != nil {
		t.Fatal(err)
	}
	if f.stats.Snapshot().Sells != 1 {
		t.Errorf("Sells = %d, want 1", f.stats.Snapshot().Sells)
	}
	if f.keys.harvestTaps(grid.Position{Row: 0, Col: 1}) != 5 {
		t.Errorf("(0,1) 收获次数 = %d, want 5", f.keys.harvestTaps(grid.Position{Row: 0, Col: 1}))
	}
}

func TestSellJournalRecovery(t *testing.T) {
	f := newFixture(1, 1)

	journalShown := true
	f.loc.respond = func(name string) vision.Probe {
		switch name {
		case TemplateGoToJournal:
			if journalShown {
				journalShown = false
				return vision.Probe{Found: true, Location: vision.Region{X: 100, Y: 200, Width: 40, Height: 20}}
			}
		case TemplateLogNewItems:
			return vision.Probe{Found: true}
		}
		return vision.Probe{}
	}

	if err := f.cycle.Sell(); err != nil {
		t.Fatalf("Sell() error = %v", err)
	}

	var keys []string
	for _, ev := range f.keys.events {
		keys = append(keys, ev.key)
	}
	want := []string{
		"shift+3", "space", // 出售
		"click:120,210", "space", "esc", // 图鉴
		"shift+3", "space", // 重新出售
		"shift+2",
	}
	if !slices.Equal(keys, want) {
		t.Errorf("按键 = %v, want %v", keys, want)
	}
	// 只做一次恢复
	if f.loc.calls[TemplateGoToJournal] != 1 {
		t.Errorf("图鉴检测 %d 次, want 1", f.loc.calls[TemplateGoToJournal])
	}
}

func TestRunCancelledMidHarvest(t *testing.T) {
	f := newFixture(3, 3)

	taps := 0
	f.keys.onTap = func(key string) {
		if key == "space" {
			taps++
			if taps == 7 {
				f.flag.Clear()
			}
		}
	}

	err := f.cycle.Run(nil)
	if !errors.Is(err, bot.ErrStopped) {
		t.Fatalf("Run() error = %v, want ErrStopped", err)
	}
	if taps != 7 {
		t.Errorf("停止后仍有按键: %d", taps)
	}
	if got := f.stats.Snapshot().Harvests; got != 1 {
		t.Errorf("Harvests = %d, want 1", got)
	}
}

func TestRunBeforeCellHook(t *testing.T) {
	f := newFixture(2, 2)

	var cells []grid.Position
	err := f.cycle.Run(func(p grid.Position) error {
		cells = append(cells, p)
		return nil
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []grid.Position{{0, 0}, {0, 1}, {1, 1}, {1, 0}}
	if !slices.Equal(cells, want) {
		t.Errorf("cells = %v, want %v", cells, want)
	}
}

func TestRunNothingEnabled(t *testing.T) {
	f := newFixture(2, 2)
	f.cycle.cfg.Harvest.Enabled = false
	f.cycle.cfg.Shop.Enabled = false

	err := f.cycle.Run(nil)
	if !errors.Is(err, config.ErrNothingEnabled) {
		t.Fatalf("Run() error = %v, want ErrNothingEnabled", err)
	}
	if f.flag.Running() {
		t.Error("配置错误应清除运行标志")
	}
	if len(f.keys.events) != 0 {
		t.Errorf("不应有任何输入: %v", f.keys.events)
	}
	if len(*f.logs) == 0 || (*f.logs)[0].sev != bot.SeverityError || !strings.Contains((*f.logs)[0].msg, "配置错误") {
		t.Errorf("应记录配置错误: %v", *f.logs)
	}
}
