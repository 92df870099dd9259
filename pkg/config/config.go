// Package config 提供自动化运行所需的配置快照及其持久化
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"
	"gopkg.in/yaml.v3"
)

// ErrNothingEnabled 收获和自动购买都未启用
var ErrNothingEnabled = errors.New("收获和自动购买都未启用")

// Mode 调度模式
type Mode int

const (
	// ModeNone 收获和购买都未启用（配置错误）
	ModeNone Mode = iota
	ModeHarvest
	ModeShop
	ModeHarvestShop
)

func (m Mode) String() string {
	switch m {
	case ModeHarvest:
		return "收获"
	case ModeShop:
		return "购买"
	case ModeHarvestShop:
		return "收获 + 购买"
	default:
		return "未启用"
	}
}

// 截图搜索区域
const (
	RegionFull   = "full"
	RegionTop    = "top"
	RegionBottom = "bottom"
)

// GridConfig 网格配置
type GridConfig struct {
	Rows      int           `yaml:"rows"`
	Cols      int           `yaml:"cols"`
	MoveDelay time.Duration `yaml:"move_delay"`
}

// HarvestConfig 收获配置
type HarvestConfig struct {
	Enabled         bool          `yaml:"enabled"`
	Count           int           `yaml:"count"`
	Delay           time.Duration `yaml:"delay"`
	SellReturnDelay time.Duration `yaml:"sell_return_delay"`
}

// MatchConfig 图像匹配配置
type MatchConfig struct {
	ImageFolder         string  `yaml:"image_folder"`
	Confidence          float64 `yaml:"confidence"`
	InventoryConfidence float64 `yaml:"inventory_confidence"`
	InventoryRegion     string  `yaml:"inventory_region"`
	Display             int     `yaml:"display"`
}

// ShopConfig 商店自动购买配置
type ShopConfig struct {
	Enabled                bool          `yaml:"enabled"`
	Seeds                  []string      `yaml:"seeds"`
	SeedsPerTrip           int           `yaml:"seeds_per_trip"`
	SearchAttempts         int           `yaml:"search_attempts"`
	Interval               time.Duration `yaml:"interval"`
	HeaderConfidence       float64       `yaml:"header_confidence"`
	ScrollHeaderConfidence float64       `yaml:"scroll_header_confidence"`
	ItemConfidence         float64       `yaml:"item_confidence"`
	ScrollNotches          int           `yaml:"scroll_notches"`
	ScrollOffsetY          int           `yaml:"scroll_offset_y"`
}

// SchedulerConfig 调度配置
type SchedulerConfig struct {
	LoopCooldown  time.Duration `yaml:"loop_cooldown"`
	GraceDelay    time.Duration `yaml:"grace_delay"`
	ErrorPause    time.Duration `yaml:"error_pause"`
	FirstBuyDelay time.Duration `yaml:"first_buy_delay"`
}

// GameConfig 游戏进程与热键配置
type GameConfig struct {
	Process    string `yaml:"process"`
	Window     string `yaml:"window"`
	StopHotkey string `yaml:"stop_hotkey"`
}

// LogConfig 日志配置
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Timing 游戏界面固定等待时间
type Timing struct {
	KeyHold           time.Duration `yaml:"key_hold"`
	HotkeyHold        time.Duration `yaml:"hotkey_hold"`
	HotkeyPost        time.Duration `yaml:"hotkey_post"`
	InteractHold      time.Duration `yaml:"interact_hold"`
	SellMenuSettle    time.Duration `yaml:"sell_menu_settle"`
	SellConfirmSettle time.Duration `yaml:"sell_confirm_settle"`
	JournalOpen       time.Duration `yaml:"journal_open"`
	JournalRead       time.Duration `yaml:"journal_read"`
	JournalClose      time.Duration `yaml:"journal_close"`
	ShopOpenSettle    time.Duration `yaml:"shop_open_settle"`
	ItemDetail        time.Duration `yaml:"item_detail"`
	BuyClick          time.Duration `yaml:"buy_click"`
	BetweenItems      time.Duration `yaml:"between_items"`
	ScrollHover       time.Duration `yaml:"scroll_hover"`
	ScrollSettle      time.Duration `yaml:"scroll_settle"`
	RecoveryClose     time.Duration `yaml:"recovery_close"`
	RecoveryReopen    time.Duration `yaml:"recovery_reopen"`
	ShopClose         time.Duration `yaml:"shop_close"`
}

// Config 自动化配置快照
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Harvest   HarvestConfig   `yaml:"harvest"`
	Match     MatchConfig     `yaml:"match"`
	Shop      ShopConfig      `yaml:"shop"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Game      GameConfig      `yaml:"game"`
	Log       LogConfig       `yaml:"log"`
	Timing    Timing          `yaml:"timing"`
}

// DefaultTiming 默认界面等待时间
func DefaultTiming() Timing {
	return Timing{
		KeyHold:           50 * time.Millisecond,
		HotkeyHold:        200 * time.Millisecond,
		HotkeyPost:        500 * time.Millisecond,
		InteractHold:      200 * time.Millisecond,
		SellMenuSettle:    300 * time.Millisecond,
		SellConfirmSettle: 500 * time.Millisecond,
		JournalOpen:       time.Second,
		JournalRead:       5 * time.Second,
		JournalClose:      500 * time.Millisecond,
		ShopOpenSettle:    500 * time.Millisecond,
		ItemDetail:        time.Second,
		BuyClick:          300 * time.Millisecond,
		BetweenItems:      300 * time.Millisecond,
		ScrollHover:       300 * time.Millisecond,
		ScrollSettle:      time.Second,
		RecoveryClose:     300 * time.Millisecond,
		RecoveryReopen:    time.Second,
		ShopClose:         500 * time.Millisecond,
	}
}

// Default 默认配置
func Default() *Config {
	return &Config{
		Grid: GridConfig{
			Rows:      10,
			Cols:      10,
			MoveDelay: 150 * time.Millisecond,
		},
		Harvest: HarvestConfig{
			Enabled:         true,
			Count:           5,
			Delay:           100 * time.Millisecond,
			SellReturnDelay: time.Second,
		},
		Match: MatchConfig{
			ImageFolder:         "images",
			Confidence:          0.8,
			InventoryConfidence: 0.7,
			InventoryRegion:     RegionFull,
		},
		Shop: ShopConfig{
			Enabled:                false,
			SeedsPerTrip:           1,
			SearchAttempts:         7,
			Interval:               180 * time.Second,
			HeaderConfidence:       0.8,
			ScrollHeaderConfidence: 0.7,
			ItemConfidence:         0.8,
			ScrollNotches:          -5,
			ScrollOffsetY:          200,
		},
		Scheduler: SchedulerConfig{
			LoopCooldown:  2 * time.Second,
			GraceDelay:    3 * time.Second,
			ErrorPause:    2 * time.Second,
			FirstBuyDelay: 5 * time.Second,
		},
		Game: GameConfig{
			StopHotkey: "f8",
		},
		Log: LogConfig{
			Level: "info",
		},
		Timing: DefaultTiming(),
	}
}

// Mode 根据启用标志推导调度模式
func (c *Config) Mode() Mode {
	switch {
	case c.Harvest.Enabled && c.Shop.Enabled:
		return ModeHarvestShop
	case c.Harvest.Enabled:
		return ModeHarvest
	case c.Shop.Enabled:
		return ModeShop
	default:
		return ModeNone
	}
}

// Normalize 将越界值夹回合法范围，返回被修正的字段名
func (c *Config) Normalize() []string {
	var fixed []string
	clampInt := func(name string, v *int, low, high int) {
		switch {
		case *v < low:
			*v = low
			fixed = append(fixed, name)
		case high > 0 && *v > high:
			*v = high
			fixed = append(fixed, name)
		}
	}
	clampProb := func(name string, v *float64, def float64) {
		if *v <= 0 || *v > 1 {
			*v = def
			fixed = append(fixed, name)
		}
	}

	def := Default()

	clampInt("grid.rows", &c.Grid.Rows, 1, 20)
	clampInt("grid.cols", &c.Grid.Cols, 1, 20)
	clampInt("harvest.count", &c.Harvest.Count, 1, 0)
	clampInt("shop.seeds_per_trip", &c.Shop.SeedsPerTrip, 1, 0)
	clampInt("shop.search_attempts", &c.Shop.SearchAttempts, 1, 0)

	if c.Shop.Interval < 10*time.Second {
		c.Shop.Interval = 10 * time.Second
		fixed = append(fixed, "shop.interval")
	}

	clampProb("match.confidence", &c.Match.Confidence, def.Match.Confidence)
	clampProb("match.inventory_confidence", &c.Match.InventoryConfidence, def.Match.InventoryConfidence)
	clampProb("shop.header_confidence", &c.Shop.HeaderConfidence, def.Shop.HeaderConfidence)
	clampProb("shop.scroll_header_confidence", &c.Shop.ScrollHeaderConfidence, def.Shop.ScrollHeaderConfidence)
	clampProb("shop.item_confidence", &c.Shop.ItemConfidence, def.Shop.ItemConfidence)

	switch c.Match.InventoryRegion {
	case RegionFull, RegionTop, RegionBottom:
	default:
		c.Match.InventoryRegion = RegionFull
		fixed = append(fixed, "match.inventory_region")
	}

	seeds := lo.Uniq(lo.Compact(lo.Map(c.Shop.Seeds, func(s string, _ int) string {
		return strings.TrimSpace(s)
	})))
	if len(seeds) != len(c.Shop.Seeds) {
		fixed = append(fixed, "shop.seeds")
	}
	c.Shop.Seeds = seeds

	if c.Match.ImageFolder == "" {
		c.Match.ImageFolder = def.Match.ImageFolder
		fixed = append(fixed, "match.image_folder")
	}

	return fixed
}

// Manager 配置管理器
type Manager struct {
	configDir  string
	configFile string
	mu         sync.RWMutex
}

// NewManager 创建配置管理器
func NewManager() *Manager {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		homeDir = "."
	}

	return NewManagerWithDir(filepath.Join(homeDir, ".gardenworker"))
}

// NewManagerWithDir 使用指定目录创建配置管理器
func NewManagerWithDir(configDir string) *Manager {
	return &Manager{
		configDir:  configDir,
		configFile: filepath.Join(configDir, "config.yaml"),
	}
}

// NewManagerWithFile 使用指定配置文件创建配置管理器
func NewManagerWithFile(path string) *Manager {
	return &Manager{
		configDir:  filepath.Dir(path),
		configFile: path,
	}
}

// ensureDir 确保配置目录存在
func (m *Manager) ensureDir() error {
	return os.MkdirAll(m.configDir, 0755)
}

// Load 加载配置，缺失字段使用默认值
func (m *Manager) Load() (*Config, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return Default(), nil
	}

	data, err := os.ReadFile(m.configFile)
	if err != nil {
		return Default(), fmt.Errorf("读取配置文件失败: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return Default(), fmt.Errorf("解析配置文件失败: %w", err)
	}

	config.Normalize()
	return config, nil
}

// Save 保存配置
func (m *Manager) Save(config *Config) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.ensureDir(); err != nil {
		return fmt.Errorf("创建配置目录失败: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("序列化配置失败: %w", err)
	}

	if err := os.WriteFile(m.configFile, data, 0600); err != nil {
		return fmt.Errorf("写入配置文件失败: %w", err)
	}

	return nil
}

// Clear 清除配置
func (m *Manager) Clear() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, err := os.Stat(m.configFile); os.IsNotExist(err) {
		return nil
	}

	return os.Remove(m.configFile)
}

// GetConfigDir 获取配置目录
func (m *Manager) GetConfigDir() string {
	return m.configDir
}

// GetConfigFile 获取配置文件路径
func (m *Manager) GetConfigFile() string {
	return m.configFile
}

// Exists 检查配置文件是否存在
func (m *Manager) Exists() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, err := os.Stat(m.configFile)
	return err == nil
}

// 全局配置管理器
var defaultManager = NewManager()

// GetDefaultManager 获取默认配置管理器
func GetDefaultManager() *Manager {
	return defaultManager
}

// Load 使用默认管理器加载配置
func Load() (*Config, error) {
	return defaultManager.Load()
}

// Save 使用默认管理器保存配置
func Save(config *Config) error {
	return defaultManager.Save(config)
}

// Clear 使用默认管理器清除配置
func Clear() error {
	return defaultManager.Clear()
}
